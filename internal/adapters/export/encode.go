package export

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/wrpfuk/records/internal/domain/display"
)

// WriteCSV writes a header row and one line per row.
func WriteCSV(w io.Writer, rows []display.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(display.Columns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.Strings()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes an array of objects keyed by display column.
func WriteJSON(w io.Writer, rows []display.Row) error {
	if rows == nil {
		rows = []display.Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// WriteYAML writes a YAML sequence of mappings keyed by display column.
func WriteYAML(w io.Writer, rows []display.Row) error {
	if rows == nil {
		rows = []display.Row{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rows); err != nil {
		return err
	}
	return enc.Close()
}
