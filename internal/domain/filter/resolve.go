package filter

import (
	"strings"

	"github.com/wrpfuk/records/internal/domain/record"
)

// Result is the matching subset in input order.
type Result struct {
	Records []record.Record
	// FiltersBypassed is set when a search query overrode the structured
	// filters. Callers must surface it.
	FiltersBypassed bool
}

// Predicate tests one record.
type Predicate func(r *record.Record) bool

// Resolve returns the records matching c. The input slice is never
// modified and the relative order is preserved.
func Resolve(records []record.Record, c Criteria) Result {
	if c.SearchMode() {
		return Result{Records: Apply(records, SearchPredicate(c.Terms())), FiltersBypassed: true}
	}
	return Result{Records: Apply(records, StructuredPredicates(c)...)}
}

// Apply keeps the records accepted by every predicate.
func Apply(records []record.Record, preds ...Predicate) []record.Record {
	out := make([]record.Record, 0, len(records))
	for i := range records {
		if matchAll(&records[i], preds) {
			out = append(out, records[i])
		}
	}
	return out
}

func matchAll(r *record.Record, preds []Predicate) bool {
	for _, p := range preds {
		if !p(r) {
			return false
		}
	}
	return true
}

// StructuredPredicates builds one exact-match predicate per constrained
// field. Unconstrained fields contribute nothing.
func StructuredPredicates(c Criteria) []Predicate {
	var preds []Predicate
	if constrained(c.Sex) {
		sex := c.Sex
		preds = append(preds, func(r *record.Record) bool { return r.Sex == sex })
	}
	if constrained(c.Division) {
		div := c.Division
		preds = append(preds, func(r *record.Record) bool { return r.DivisionBase == div })
	}
	if constrained(c.TestingStatus) {
		status, ok := record.ParseTestingStatus(c.TestingStatus)
		preds = append(preds, func(r *record.Record) bool { return ok && r.Testing == status })
	}
	if constrained(c.Equipment) {
		code := record.EquipmentCode(c.Equipment)
		preds = append(preds, func(r *record.Record) bool { return r.Equipment == code })
	}
	if constrained(c.WeightClass) {
		class := c.WeightClass
		preds = append(preds, func(r *record.Record) bool { return r.WeightClass == class })
	}
	return preds
}

// SearchPredicate matches records containing every term in at least one
// searchable field. Terms must already be lowercase.
func SearchPredicate(terms []string) Predicate {
	return func(r *record.Record) bool {
		fields := searchFields(r)
		for _, term := range terms {
			if !anyContains(fields, term) {
				return false
			}
		}
		return true
	}
}

func searchFields(r *record.Record) []string {
	return []string{
		strings.ToLower(r.FullName),
		strings.ToLower(r.RecordName),
		strings.ToLower(r.WeightClass),
		strings.ToLower(r.DivisionBase),
		strings.ToLower(r.Equipment),
		strings.ToLower(r.Testing.String()),
		strings.ToLower(r.Location),
	}
}

func anyContains(fields []string, term string) bool {
	for _, f := range fields {
		if strings.Contains(f, term) {
			return true
		}
	}
	return false
}
