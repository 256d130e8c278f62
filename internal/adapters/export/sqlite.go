package export

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/wrpfuk/records/internal/domain/display"
)

// SQLiteTable is the table written by the SQLite exporter.
const SQLiteTable = "records"

// WriteSQLiteFile writes rows to a fresh SQLite database at path, replacing
// any existing file. Weight is REAL, every other column TEXT.
func WriteSQLiteFile(ctx context.Context, path string, rows []display.Row) error {
	_ = os.Remove(path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	defs := make([]string, len(display.Columns))
	cols := make([]string, len(display.Columns))
	for i, c := range display.Columns {
		typ := "TEXT"
		if c == "Weight" {
			typ = "REAL"
		}
		cols[i] = fmt.Sprintf("%q", c)
		defs[i] = cols[i] + " " + typ
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE %q (%s)`, SQLiteTable, strings.Join(defs, ","))); err != nil {
		return err
	}
	ph := strings.TrimRight(strings.Repeat("?,", len(cols)), ",")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %q (%s) VALUES (%s)`, SQLiteTable, strings.Join(cols, ","), ph))
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx,
			r.Class, r.Lift, r.Weight, r.Name, r.Gender, r.Division,
			r.Testing, r.Equipment, r.LiftType, r.Date, r.Event,
		); err != nil {
			return err
		}
	}
	for _, idx := range []string{
		fmt.Sprintf(`CREATE INDEX idx_%s_class_lift ON %q ("Class", "Lift")`, SQLiteTable, SQLiteTable),
		fmt.Sprintf(`CREATE INDEX idx_%s_division ON %q ("Division")`, SQLiteTable, SQLiteTable),
	} {
		if _, err := tx.ExecContext(ctx, idx); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// WriteSQLite builds the database in a temporary file and copies it to w.
func WriteSQLite(ctx context.Context, w io.Writer, rows []display.Row) error {
	dir, err := os.MkdirTemp("", "records-export-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.RemoveAll(dir) }()

	path := filepath.Join(dir, FilenameBase+".sqlite")
	if err := WriteSQLiteFile(ctx, path, rows); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = io.Copy(w, f)
	return err
}
