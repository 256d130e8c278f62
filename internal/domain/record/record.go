// Package record contains the canonical powerlifting record model shared by
// the normalizer, the filter resolver and the reducer.
package record

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DrugTestedSuffix marks a division that requires in-competition testing.
const DrugTestedSuffix = "DT"

// TestingStatus is derived from the division suffix.
type TestingStatus int

const (
	Untested TestingStatus = iota
	DrugTested
)

// Labels used for testing status in filters, search and display.
const (
	DrugTestedLabel = "Drug Tested"
	UntestedLabel   = "Untested"
)

func (s TestingStatus) String() string {
	if s == DrugTested {
		return DrugTestedLabel
	}
	return UntestedLabel
}

// ParseTestingStatus maps a label back to a status. ok is false for
// anything other than the two known labels.
func ParseTestingStatus(label string) (TestingStatus, bool) {
	switch label {
	case DrugTestedLabel:
		return DrugTested, true
	case UntestedLabel:
		return Untested, true
	}
	return Untested, false
}

// SplitDivision strips the drug-tested suffix from a raw division.
// base + DrugTestedSuffix reconstructs raw whenever status is DrugTested.
func SplitDivision(raw string) (base string, status TestingStatus) {
	if strings.HasSuffix(raw, DrugTestedSuffix) {
		return strings.TrimSuffix(raw, DrugTestedSuffix), DrugTested
	}
	return raw, Untested
}

// InvalidWeightClasses are class tokens produced by malformed source rows.
var InvalidWeightClasses = map[string]struct{}{
	"736":  {},
	"737":  {},
	"738":  {},
	"739":  {},
	"cell": {},
}

// IsInvalidWeightClass reports whether class is a known garbage token.
func IsInvalidWeightClass(class string) bool {
	_, bad := InvalidWeightClasses[class]
	return bad
}

// ClassNumber parses a weight class as a number. ok is false for
// classes such as "140+" or "".
func ClassNumber(class string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(class), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// CompareClasses orders numeric classes before non-numeric ones; numeric
// ties and non-numeric classes fall back to string comparison.
func CompareClasses(a, b string) int {
	na, aok := ClassNumber(a)
	nb, bok := ClassNumber(b)
	switch {
	case aok && bok && na != nb:
		if na < nb {
			return -1
		}
		return 1
	case aok && !bok:
		return -1
	case !aok && bok:
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Record is one competitive lift entry after normalization.
// Records are shared read-only between sessions; never mutate one that
// came out of a snapshot.
type Record struct {
	FullName     string
	Weight       float64
	WeightClass  string
	DivisionRaw  string
	DivisionBase string
	Testing      TestingStatus
	Lift         Lift
	Date         string
	DateParsed   time.Time
	Equipment    string
	RecordType   string
	Location     string
	Sex          string
	RecordName   string

	// Extra holds every other source column, missing values as "".
	Extra map[string]string
}

// HasDate reports whether the date column could be parsed.
func (r Record) HasDate() bool { return !r.DateParsed.IsZero() }

// Key identifies the (weight class, lift) group a record competes in.
type Key struct {
	WeightClass string
	Lift        string
}

// GroupKey returns the reducer grouping key.
func (r Record) GroupKey() Key {
	return Key{WeightClass: r.WeightClass, Lift: r.Lift.String()}
}
