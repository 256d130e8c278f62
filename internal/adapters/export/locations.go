package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/wrpfuk/records/internal/domain/view"
	"github.com/wrpfuk/records/pkg/metrics"
)

// LocationColumns are the headers of a location count export.
var LocationColumns = []string{"Location", "Number of Records"}

// WriteLocations encodes location counts in format f. SQLite is not
// offered for counts.
func WriteLocations(_ context.Context, w io.Writer, f Format, title string, counts []view.LocationCount) error {
	if counts == nil {
		counts = []view.LocationCount{}
	}
	lines := make([][]string, 0, len(counts))
	for _, c := range counts {
		lines = append(lines, []string{c.Location, strconv.Itoa(c.Count)})
	}

	var err error
	switch f {
	case CSV:
		cw := csv.NewWriter(w)
		if err = cw.Write(LocationColumns); err == nil {
			err = cw.WriteAll(lines)
		}
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(counts)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(counts); err == nil {
			err = enc.Close()
		}
	case Table:
		err = writeGrid(w, title, LocationColumns, lines, "No locations found.")
	default:
		return fmt.Errorf("%w: %q for location counts", ErrUnknownFormat, string(f))
	}
	if err != nil {
		metrics.RecordErrorByComponent("export", string(f))
		return fmt.Errorf("export locations %s: %w", f, err)
	}
	metrics.RecordExport(string(f))
	return nil
}
