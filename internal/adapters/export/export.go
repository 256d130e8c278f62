// Package export writes display rows as CSV, JSON, YAML, SQLite or an
// aligned text table.
package export

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/wrpfuk/records/internal/domain/display"
	"github.com/wrpfuk/records/pkg/metrics"
)

// Format is an export encoding.
type Format string

const (
	CSV    Format = "csv"
	JSON   Format = "json"
	YAML   Format = "yaml"
	SQLite Format = "sqlite"
	Table  Format = "table"
)

// Formats lists every supported format.
var Formats = []Format{CSV, JSON, YAML, SQLite, Table}

// FilenameBase is the download name without extension.
const FilenameBase = "filtered_records"

// ParseFormat accepts a format name case-insensitively. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return CSV, nil
	case "yml":
		return YAML, nil
	case "txt", "text":
		return Table, nil
	case "db", "sqlite3":
		return SQLite, nil
	case CSV, JSON, YAML, SQLite, Table:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Extension returns the file extension without the dot.
func (f Format) Extension() string {
	if f == Table {
		return "txt"
	}
	return string(f)
}

// ContentType returns the MIME type used for downloads.
func (f Format) ContentType() string {
	switch f {
	case CSV:
		return "text/csv; charset=utf-8"
	case JSON:
		return "application/json"
	case YAML:
		return "application/yaml"
	case SQLite:
		return "application/vnd.sqlite3"
	}
	return "text/plain; charset=utf-8"
}

// Filename returns the download file name.
func (f Format) Filename() string {
	return FilenameBase + "." + f.Extension()
}

// Write encodes rows to w in format f. title is only used by Table.
func Write(ctx context.Context, w io.Writer, f Format, title string, rows []display.Row) error {
	var err error
	switch f {
	case CSV:
		err = WriteCSV(w, rows)
	case JSON:
		err = WriteJSON(w, rows)
	case YAML:
		err = WriteYAML(w, rows)
	case SQLite:
		err = WriteSQLite(ctx, w, rows)
	case Table:
		err = WriteTable(w, title, rows)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
	if err != nil {
		metrics.RecordErrorByComponent("export", string(f))
		return fmt.Errorf("export %s: %w", f, err)
	}
	metrics.RecordExport(string(f))
	return nil
}
