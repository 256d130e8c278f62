// Package view narrows a record set to one of the leaderboard tabs.
package view

import (
	"errors"
	"sort"
	"strings"

	"github.com/wrpfuk/records/internal/domain/record"
)

// Kind selects a view.
type Kind string

const (
	All            Kind = "all"
	FullPower      Kind = "full"
	SingleLifts    Kind = "single"
	LocationCounts Kind = "locations"
)

// ErrUnknownView is returned by Parse for unsupported names.
var ErrUnknownView = errors.New("unknown view")

// Parse accepts a view name, case-insensitively. Empty means All.
func Parse(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case "", All:
		return All, nil
	case FullPower, "full_power", "fullpower":
		return FullPower, nil
	case SingleLifts, "single_lifts", "singles":
		return SingleLifts, nil
	case LocationCounts, "location", "by_location":
		return LocationCounts, nil
	}
	return "", ErrUnknownView
}

// Select returns the records shown by the view. LocationCounts selects
// everything; aggregate with CountLocations.
func Select(k Kind, records []record.Record) []record.Record {
	switch k {
	case FullPower:
		return keep(records, isFullPower)
	case SingleLifts:
		return keep(records, isSingleLift)
	}
	return records
}

// A full power record type never mentions "single".
func isFullPower(r *record.Record) bool {
	return !strings.Contains(strings.ToLower(r.RecordType), "single")
}

func isSingleLift(r *record.Record) bool {
	if !record.IsSingleLiftType(r.RecordType) {
		return false
	}
	return r.Lift.Kind == record.LiftBench || r.Lift.Kind == record.LiftDeadlift
}

func keep(records []record.Record, pred func(*record.Record) bool) []record.Record {
	out := make([]record.Record, 0, len(records))
	for i := range records {
		if pred(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

// LocationCount is the number of records set at one location.
type LocationCount struct {
	Location string `json:"location" yaml:"location"`
	Count    int    `json:"count" yaml:"count"`
}

// CountLocations tallies records per non-blank location, busiest first.
func CountLocations(records []record.Record) []LocationCount {
	counts := map[string]int{}
	for i := range records {
		loc := strings.TrimSpace(records[i].Location)
		if loc == "" {
			continue
		}
		counts[loc]++
	}
	out := make([]LocationCount, 0, len(counts))
	for loc, n := range counts {
		out = append(out, LocationCount{Location: loc, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Location < out[j].Location
	})
	return out
}
