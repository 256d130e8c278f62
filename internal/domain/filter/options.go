package filter

import (
	"sort"

	"github.com/wrpfuk/records/internal/domain/record"
)

// DivisionOrder is the preferred position of well-known divisions in
// option lists. Unlisted divisions follow in first-seen order.
var DivisionOrder = []string{
	"T14-15", "T16-17", "T18-19", "Junior", "Opens",
	"M40-49", "M50-59", "M60-69", "M70-79",
}

// Options lists the selectable values for each structured filter, without
// the leading All entry.
type Options struct {
	Sex           []string `json:"sex"`
	Division      []string `json:"division"`
	TestingStatus []string `json:"testing_status"`
	Equipment     []string `json:"equipment"`
	WeightClass   []string `json:"weight_class"`
}

// BuildOptions derives option lists from a record collection.
func BuildOptions(records []record.Record) Options {
	sexes := map[string]struct{}{}
	equipment := map[string]struct{}{}
	classes := map[string]struct{}{}
	var divisions []string
	seenDiv := map[string]struct{}{}

	for i := range records {
		r := &records[i]
		if r.Sex != "" {
			sexes[r.Sex] = struct{}{}
		}
		if r.Equipment != "" {
			equipment[r.Equipment] = struct{}{}
		}
		classes[r.WeightClass] = struct{}{}
		if _, ok := seenDiv[r.DivisionBase]; !ok {
			seenDiv[r.DivisionBase] = struct{}{}
			divisions = append(divisions, r.DivisionBase)
		}
	}

	codes := sortedKeys(equipment)
	labels := make([]string, len(codes))
	for i, c := range codes {
		labels[i] = record.EquipmentLabel(c)
	}

	classList := sortedKeys(classes)
	SortClasses(classList)

	return Options{
		Sex:           sortedKeys(sexes),
		Division:      orderDivisions(divisions),
		TestingStatus: []string{record.DrugTestedLabel, record.UntestedLabel},
		Equipment:     labels,
		WeightClass:   classList,
	}
}

// SortClasses orders weight classes numerically, then non-numeric classes
// by string.
func SortClasses(classes []string) {
	sort.SliceStable(classes, func(i, j int) bool {
		return record.CompareClasses(classes[i], classes[j]) < 0
	})
}

func orderDivisions(seen []string) []string {
	present := make(map[string]struct{}, len(seen))
	for _, d := range seen {
		present[d] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	known := make(map[string]struct{}, len(DivisionOrder))
	for _, d := range DivisionOrder {
		known[d] = struct{}{}
		if _, ok := present[d]; ok {
			out = append(out, d)
		}
	}
	for _, d := range seen {
		if _, ok := known[d]; !ok {
			out = append(out, d)
		}
	}
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
