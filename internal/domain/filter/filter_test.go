package filter_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/wrpfuk/records/internal/domain/filter"
	"github.com/wrpfuk/records/internal/domain/record"
)

func rec(name, class, division, equipment, location, sex string) record.Record {
	base, status := record.SplitDivision(division)
	return record.Record{
		FullName:     name,
		Weight:       100,
		WeightClass:  class,
		DivisionRaw:  division,
		DivisionBase: base,
		Testing:      status,
		Lift:         record.Squat,
		Equipment:    equipment,
		Location:     location,
		Sex:          sex,
		RecordName:   "British " + base,
	}
}

func sample() []record.Record {
	return []record.Record{
		rec("Alice Smith", "110", "JuniorDT", "Bare", "Manchester Open 2023", "F"),
		rec("Bob Jones", "110", "Opens", "Multi-ply", "Manchester Open 2023", "M"),
		rec("Cara White", "82.5", "Junior", "Bare", "Leeds Classic", "F"),
		rec("Dan Black", "110", "Junior", "Single-ply", "Leeds Classic", "M"),
		rec("Eve Green", "100", "Opens", "Bare", "Manchester Open 2023", "F"),
	}
}

func names(rs []record.Record) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.FullName
	}
	return out
}

func TestResolveStructured(t *testing.T) {
	Convey("Given a record set with mixed divisions", t, func() {
		records := sample()

		Convey("Default criteria return everything in input order", func() {
			res := filter.Resolve(records, filter.Default())
			So(res.FiltersBypassed, ShouldBeFalse)
			So(names(res.Records), ShouldResemble, names(records))
		})

		Convey("Division Opens with equipment All keeps only Opens records", func() {
			c := filter.Default()
			c.Division = "Opens"
			res := filter.Resolve(records, c)
			So(names(res.Records), ShouldResemble, []string{"Bob Jones", "Eve Green"})
		})

		Convey("Division matches the base, so tested and untested Juniors both match", func() {
			c := filter.Default()
			c.Division = "Junior"
			So(filter.Resolve(records, c).Records, ShouldHaveLength, 3)

			c.TestingStatus = record.DrugTestedLabel
			So(names(filter.Resolve(records, c).Records), ShouldResemble, []string{"Alice Smith"})
		})

		Convey("Equipment labels are mapped back to raw codes", func() {
			c := filter.Default()
			c.Equipment = "Raw"
			So(names(filter.Resolve(records, c).Records), ShouldResemble, []string{"Alice Smith", "Cara White", "Eve Green"})

			c.Equipment = "Equipped"
			So(names(filter.Resolve(records, c).Records), ShouldResemble, []string{"Bob Jones"})

			c.Equipment = "Single-ply"
			So(names(filter.Resolve(records, c).Records), ShouldResemble, []string{"Dan Black"})
		})

		Convey("Empty fields count as unconstrained", func() {
			res := filter.Resolve(records, filter.Criteria{Sex: "F"})
			So(res.Records, ShouldHaveLength, 3)
		})

		Convey("No match is an empty result, not an error", func() {
			c := filter.Default()
			c.WeightClass = "52"
			res := filter.Resolve(records, c)
			So(res.Records, ShouldBeEmpty)
		})

		Convey("An unknown testing label matches nothing", func() {
			c := filter.Default()
			c.TestingStatus = "Tested"
			So(filter.Resolve(records, c).Records, ShouldBeEmpty)
		})

		Convey("The input slice is left untouched", func() {
			before := names(records)
			c := filter.Default()
			c.Sex = "M"
			filter.Resolve(records, c)
			So(names(records), ShouldResemble, before)
		})
	})
}

func TestStructuredPredicatesCommute(t *testing.T) {
	Convey("Applying structured predicates in any order gives the same set", t, func() {
		records := sample()
		c := filter.Criteria{Sex: "M", WeightClass: "110", Equipment: filter.All, Division: filter.All, TestingStatus: record.UntestedLabel}
		preds := filter.StructuredPredicates(c)
		So(preds, ShouldHaveLength, 3)

		forward := filter.Apply(records, preds...)
		reversed := filter.Apply(records, preds[2], preds[1], preds[0])
		nested := filter.Apply(filter.Apply(records, preds[1]), preds[0], preds[2])

		So(names(forward), ShouldResemble, []string{"Bob Jones", "Dan Black"})
		So(names(reversed), ShouldResemble, names(forward))
		So(names(nested), ShouldResemble, names(forward))
	})
}

func TestResolveSearch(t *testing.T) {
	Convey("Given a free-text search", t, func() {
		records := sample()

		Convey("Every term must match some searchable field", func() {
			c := filter.Default()
			c.Search = "110 junior manchester"
			res := filter.Resolve(records, c)
			So(res.FiltersBypassed, ShouldBeTrue)
			So(names(res.Records), ShouldResemble, []string{"Alice Smith"})
		})

		Convey("Structured filters have no effect while searching", func() {
			a := filter.Default()
			a.Search = "manchester"
			b := filter.Criteria{Sex: "M", Division: "Junior", TestingStatus: record.DrugTestedLabel, Equipment: "Raw", WeightClass: "52", Search: "manchester"}
			So(names(filter.Resolve(records, b).Records), ShouldResemble, names(filter.Resolve(records, a).Records))
			So(filter.Resolve(records, a).Records, ShouldHaveLength, 3)
		})

		Convey("Matching is case-insensitive and covers testing labels", func() {
			c := filter.Default()
			c.Search = "  DRUG   tested "
			So(names(filter.Resolve(records, c).Records), ShouldResemble, []string{"Alice Smith"})
		})

		Convey("Terms are literal substrings", func() {
			c := filter.Default()
			c.Search = "82.5"
			So(names(filter.Resolve(records, c).Records), ShouldResemble, []string{"Cara White"})
			c.Search = "8.*5"
			So(filter.Resolve(records, c).Records, ShouldBeEmpty)
		})

		Convey("A whitespace-only search has no terms and matches everything", func() {
			c := filter.Default()
			c.Search = "   "
			c.Sex = "F"
			res := filter.Resolve(records, c)
			So(res.FiltersBypassed, ShouldBeTrue)
			So(res.Records, ShouldHaveLength, len(records))

			c.Sex = "M"
			So(filter.Resolve(records, c).Records, ShouldHaveLength, len(records))
		})
	})
}

func TestBuildOptions(t *testing.T) {
	Convey("Given records with assorted values", t, func() {
		records := append(sample(),
			rec("Finn Grey", "140+", "M40-49DT", "Bare", "York", "M"),
			rec("Gus Red", "56", "Sub-Junior", "Bare", "York", "M"),
		)
		opts := filter.BuildOptions(records)

		Convey("Divisions follow the preferred order, unknown ones last", func() {
			So(opts.Division, ShouldResemble, []string{"Junior", "Opens", "M40-49", "Sub-Junior"})
		})

		Convey("Weight classes are numeric first", func() {
			So(opts.WeightClass, ShouldResemble, []string{"56", "82.5", "100", "110", "140+"})
		})

		Convey("Equipment is offered by label", func() {
			So(opts.Equipment, ShouldResemble, []string{"Raw", "Equipped", "Single-ply"})
		})

		Convey("Sexes are sorted and testing labels fixed", func() {
			So(opts.Sex, ShouldResemble, []string{"F", "M"})
			So(opts.TestingStatus, ShouldResemble, []string{record.DrugTestedLabel, record.UntestedLabel})
		})
	})
}

func TestCriteria(t *testing.T) {
	Convey("Criteria helpers", t, func() {
		So(filter.Criteria{}.Normalized(), ShouldResemble, filter.Default())
		c := filter.Criteria{Search: "Bench  Only"}
		So(c.SearchMode(), ShouldBeTrue)
		So(c.Terms(), ShouldResemble, []string{"bench", "only"})
	})
}
