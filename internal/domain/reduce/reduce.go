// Package reduce collapses a record set to the best record per
// (weight class, lift) group.
package reduce

import (
	"sort"

	"github.com/wrpfuk/records/internal/domain/record"
)

// BestPerClassAndLift keeps the heaviest record of each (weight class,
// lift) group. Within a group the first record seen at the maximum weight
// wins. The result is ordered by Less.
func BestPerClassAndLift(records []record.Record) []record.Record {
	if len(records) == 0 {
		return []record.Record{}
	}

	best := make(map[record.Key]int, len(records))
	order := make([]record.Key, 0)
	for i := range records {
		k := records[i].GroupKey()
		cur, ok := best[k]
		if !ok {
			best[k] = i
			order = append(order, k)
			continue
		}
		if records[i].Weight > records[cur].Weight {
			best[k] = i
		}
	}

	out := make([]record.Record, 0, len(order))
	for _, k := range order {
		out = append(out, records[best[k]])
	}
	sort.SliceStable(out, func(i, j int) bool { return Less(&out[i], &out[j]) })
	return out
}

// Less is the canonical display order: weight class (numeric first), then
// lift in Squat, Bench, Deadlift, Total order with unrecognized lifts last.
func Less(a, b *record.Record) bool {
	if c := record.CompareClasses(a.WeightClass, b.WeightClass); c != 0 {
		return c < 0
	}
	if ao, bo := a.Lift.Order(), b.Lift.Order(); ao != bo {
		return ao < bo
	}
	return a.Lift.String() < b.Lift.String()
}
