// Package filter resolves user criteria against the canonical record set.
package filter

import "strings"

// All leaves a structured filter unconstrained.
const All = "All"

// Criteria is one session's query state. When Search is non-blank the
// structured fields are ignored for matching but kept for display.
type Criteria struct {
	Sex           string `json:"sex" yaml:"sex"`
	Division      string `json:"division" yaml:"division"`
	TestingStatus string `json:"testing_status" yaml:"testing_status"`
	Equipment     string `json:"equipment" yaml:"equipment"`
	WeightClass   string `json:"weight_class" yaml:"weight_class"`
	Search        string `json:"search" yaml:"search"`
}

// Default returns criteria with every filter unconstrained and no search.
func Default() Criteria {
	return Criteria{
		Sex:           All,
		Division:      All,
		TestingStatus: All,
		Equipment:     All,
		WeightClass:   All,
	}
}

// Normalized fills empty structured fields with All so callers can send
// partial criteria.
func (c Criteria) Normalized() Criteria {
	for _, f := range []*string{&c.Sex, &c.Division, &c.TestingStatus, &c.Equipment, &c.WeightClass} {
		if *f == "" {
			*f = All
		}
	}
	return c
}

// SearchMode reports whether the free-text query takes precedence. Any
// non-empty query counts, even one with no terms.
func (c Criteria) SearchMode() bool {
	return c.Search != ""
}

// Terms splits the search query into lowercase whitespace-delimited terms.
func (c Criteria) Terms() []string {
	return strings.Fields(strings.ToLower(c.Search))
}

func constrained(v string) bool {
	return v != "" && v != All
}
