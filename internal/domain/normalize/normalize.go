// Package normalize turns raw tabular rows into canonical records.
//
// Normalization is best-effort per row: a row either survives with valid
// fields or is dropped with a reason. No row aborts the batch.
package normalize

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/wrpfuk/records/internal/domain/record"
)

// Source column names, compared after trimming header whitespace.
const (
	ColFullName   = "Full Name"
	ColWeight     = "Weight"
	ColClass      = "Class"
	ColDivision   = "Division"
	ColLift       = "Lift"
	ColDate       = "Date"
	ColEquipment  = "Equipment"
	ColRecordType = "Record Type"
	ColLocation   = "Location"
	ColSex        = "Sex"
	ColRecordName = "Record Name"
)

// RequiredColumns must be present in the header for a dataset to load.
var RequiredColumns = []string{ColFullName, ColWeight, ColClass, ColDivision, ColLift}

var knownColumns = map[string]struct{}{
	ColFullName: {}, ColWeight: {}, ColClass: {}, ColDivision: {}, ColLift: {}, ColDate: {},
	ColEquipment: {}, ColRecordType: {}, ColLocation: {}, ColSex: {}, ColRecordName: {},
}

// DropReason classifies why a row was discarded.
type DropReason string

const (
	DropMissingName   DropReason = "missing_name"
	DropMissingWeight DropReason = "missing_weight"
	DropInvalidWeight DropReason = "invalid_weight"
	DropInvalidClass  DropReason = "invalid_class"
)

// Table is a raw dataset: a header row and string cells. Rows may be
// shorter than the header; absent cells count as missing.
type Table struct {
	Header []string
	Rows   [][]string
}

// Stats summarizes one normalization pass.
type Stats struct {
	RowsRead      int                `json:"rows_read"`
	RowsKept      int                `json:"rows_kept"`
	Dropped       map[DropReason]int `json:"dropped"`
	UnparsedDates int                `json:"unparsed_dates"`
}

// DroppedTotal returns the number of discarded rows.
func (s Stats) DroppedTotal() int {
	n := 0
	for _, c := range s.Dropped {
		n += c
	}
	return n
}

// Result is the canonical collection plus its load statistics.
type Result struct {
	Records []record.Record
	Stats   Stats
}

// dateLayouts are tried in order. Day-first layouts win over month-first
// because the source federation publishes UK dates.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2/1/2006",
	"02/01/06",
	"02-01-2006",
	"02.01.2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2006",
	"Jan 2006",
	"2006",
}

// ParseDate parses a source date. The zero time means "unparseable".
func ParseDate(s string) time.Time {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ParseWeight coerces a weight cell to a finite number.
func ParseWeight(s string) (float64, bool) {
	v := strings.TrimSpace(s)
	if v == "" {
		return 0, false
	}
	w, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) {
		return 0, false
	}
	return w, true
}

// Normalize converts a raw table into canonical records. It only fails
// when ctx is canceled; malformed rows are dropped and counted.
func Normalize(ctx context.Context, t Table) (Result, error) {
	header := make([]string, len(t.Header))
	index := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		header[i] = strings.TrimSpace(h)
		if _, dup := index[header[i]]; !dup {
			index[header[i]] = i
		}
	}

	res := Result{
		Records: make([]record.Record, 0, len(t.Rows)),
		Stats:   Stats{RowsRead: len(t.Rows), Dropped: make(map[DropReason]int)},
	}

	for n, row := range t.Rows {
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}

		cell := func(col string) (string, bool) {
			i, ok := index[col]
			if !ok || i >= len(row) {
				return "", false
			}
			return row[i], row[i] != ""
		}
		get := func(col string) string {
			v, _ := cell(col)
			return v
		}

		name, ok := cell(ColFullName)
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			res.Stats.Dropped[DropMissingName]++
			continue
		}
		rawWeight, ok := cell(ColWeight)
		if !ok || strings.TrimSpace(rawWeight) == "" {
			res.Stats.Dropped[DropMissingWeight]++
			continue
		}
		weight, ok := ParseWeight(rawWeight)
		if !ok {
			res.Stats.Dropped[DropInvalidWeight]++
			continue
		}
		class := strings.TrimSpace(get(ColClass))
		if record.IsInvalidWeightClass(class) {
			res.Stats.Dropped[DropInvalidClass]++
			continue
		}

		divisionRaw := strings.TrimSpace(get(ColDivision))
		base, testing := record.SplitDivision(divisionRaw)
		date := get(ColDate)

		rec := record.Record{
			FullName:     name,
			Weight:       weight,
			WeightClass:  class,
			DivisionRaw:  divisionRaw,
			DivisionBase: base,
			Testing:      testing,
			Lift:         record.ParseLift(get(ColLift)),
			Date:         date,
			DateParsed:   ParseDate(date),
			Equipment:    get(ColEquipment),
			RecordType:   get(ColRecordType),
			Location:     get(ColLocation),
			Sex:          get(ColSex),
			RecordName:   get(ColRecordName),
			Extra:        extraColumns(header, row),
		}
		if !rec.HasDate() {
			res.Stats.UnparsedDates++
		}
		res.Records = append(res.Records, rec)
	}
	res.Stats.RowsKept = len(res.Records)
	return res, nil
}

// extraColumns copies columns outside the canonical set, defaulting
// missing cells to "".
func extraColumns(header []string, row []string) map[string]string {
	var extra map[string]string
	for i, h := range header {
		if _, known := knownColumns[h]; known || h == "" {
			continue
		}
		if extra == nil {
			extra = make(map[string]string)
		}
		if i < len(row) {
			extra[h] = row[i]
		} else {
			extra[h] = ""
		}
	}
	return extra
}

// MissingColumns lists required columns absent from header.
func MissingColumns(header []string) []string {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = struct{}{}
	}
	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := present[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}
