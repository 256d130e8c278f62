// Package display turns records into the rows and titles shown to users
// and written by exporters.
package display

import (
	"strconv"
	"strings"

	"github.com/wrpfuk/records/internal/domain/filter"
	"github.com/wrpfuk/records/internal/domain/record"
)

// Columns are the display column names in output order.
var Columns = []string{
	"Class", "Lift", "Weight", "Name", "Gender", "Division",
	"Testing", "Equipment", "Lift Type", "Date", "Event",
}

// Row is a record with display labels applied.
type Row struct {
	Class     string  `json:"Class" yaml:"Class"`
	Lift      string  `json:"Lift" yaml:"Lift"`
	Weight    float64 `json:"Weight" yaml:"Weight"`
	Name      string  `json:"Name" yaml:"Name"`
	Gender    string  `json:"Gender" yaml:"Gender"`
	Division  string  `json:"Division" yaml:"Division"`
	Testing   string  `json:"Testing" yaml:"Testing"`
	Equipment string  `json:"Equipment" yaml:"Equipment"`
	LiftType  string  `json:"Lift Type" yaml:"Lift Type"`
	Date      string  `json:"Date" yaml:"Date"`
	Event     string  `json:"Event" yaml:"Event"`
}

// FromRecord builds the display row for r.
func FromRecord(r *record.Record) Row {
	return Row{
		Class:     r.WeightClass,
		Lift:      r.Lift.String(),
		Weight:    r.Weight,
		Name:      r.FullName,
		Gender:    r.Sex,
		Division:  r.DivisionBase,
		Testing:   r.Testing.String(),
		Equipment: record.EquipmentLabel(r.Equipment),
		LiftType:  record.LiftType(r.RecordType),
		Date:      r.Date,
		Event:     r.Location,
	}
}

// FromRecords converts records in order.
func FromRecords(records []record.Record) []Row {
	rows := make([]Row, len(records))
	for i := range records {
		rows[i] = FromRecord(&records[i])
	}
	return rows
}

// Strings returns the row's cells in Columns order.
func (r Row) Strings() []string {
	return []string{
		r.Class, r.Lift, FormatWeight(r.Weight), r.Name, r.Gender, r.Division,
		r.Testing, r.Equipment, r.LiftType, r.Date, r.Event,
	}
}

// FormatWeight prints integral weights without a decimal point.
func FormatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}

const titleSep = " – "

// Title describes what a result shows. showAll is true in search mode,
// where every match is listed rather than the top record per group.
func Title(showAll bool, c filter.Criteria) string {
	c = c.Normalized()
	head := "Top Records"
	if showAll {
		head = "All Matches"
	}
	parts := []string{
		head,
		orDefault(c.Division, "All Divisions"),
		orDefault(c.WeightClass, "All Weight Classes"),
		c.TestingStatus,
		orDefault(c.Equipment, "All Equipment"),
	}
	return strings.Join(parts, titleSep)
}

func orDefault(v, fallback string) string {
	if v == filter.All {
		return fallback
	}
	return v
}
