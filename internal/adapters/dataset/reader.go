// Package dataset reads the records CSV and serves immutable normalized
// snapshots of it.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wrpfuk/records/internal/domain/normalize"
)

const (
	utf8BOM        = "\ufeff"
	ctxCheckStride = 1024
)

// ReadCSV reads a header row and every following row. Ragged rows and
// stray quotes are tolerated; spreadsheets export both.
func ReadCSV(ctx context.Context, r io.Reader) (normalize.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return normalize.Table{}, ErrEmptyDataset
	}
	if err != nil {
		return normalize.Table{}, fmt.Errorf("%w: header: %w", ErrDatasetUnavailable, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	t := normalize.Table{Header: header}
	for i := 0; ; i++ {
		if i%ctxCheckStride == 0 {
			if err := ctx.Err(); err != nil {
				return normalize.Table{}, err
			}
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return normalize.Table{}, fmt.Errorf("%w: row %d: %w", ErrDatasetUnavailable, i+2, err)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Parse reads, checks and normalizes a CSV stream.
func Parse(ctx context.Context, r io.Reader) (normalize.Result, error) {
	t, err := ReadCSV(ctx, r)
	if err != nil {
		return normalize.Result{}, err
	}
	if missing := normalize.MissingColumns(t.Header); len(missing) > 0 {
		return normalize.Result{}, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return normalize.Normalize(ctx, t)
}

// ReadFile parses the CSV at path.
func ReadFile(ctx context.Context, path string) (normalize.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return normalize.Result{}, fmt.Errorf("%w: %w", ErrDatasetUnavailable, err)
	}
	defer func() { _ = f.Close() }()
	return Parse(ctx, f)
}
