// Package cli implements the records command: query the records sheet from
// a terminal and print or export the result.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wrpfuk/records/internal/adapters/export"
	service "github.com/wrpfuk/records/internal/app"
	"github.com/wrpfuk/records/internal/domain/display"
	"github.com/wrpfuk/records/internal/domain/view"
	"github.com/wrpfuk/records/pkg/logger"
)

// File permission constants.
const (
	outFilePermission = 0o644
)

// locationsTitle heads the location count table.
const locationsTitle = "Records by Location"

// ShowHelp prints usage information for the records tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `WRPF UK Records
===============

Query the records sheet and print the best record per weight class and lift,
or every match of a free-text search.

Usage:
  records [options]

Options:
  -data string
        Records CSV file (default "Records Master Sheet.csv")
  -sex, -division, -testing, -equipment, -class string
        Structured filters (default "All")
  -search string
        Free-text search; when set the structured filters are ignored
  -view string
        all, full, single or locations (default "all")
  -format string
        table, csv, json, yaml or sqlite (default "table")
  -out string
        Write to a file instead of stdout (required for sqlite)
  -options
        Print the available filter values
  -log-level string
        debug, info, warn or error (default "warn")
  -help
        Show this help message

Examples:
  # Junior drug tested records
  records -division Junior -testing "Drug Tested"

  # Every record mentioning Manchester, as CSV
  records -search manchester -format csv -out manchester.csv

  # Record counts per event
  records -view locations
`)
}

// Run loads the dataset, runs the query described by cfg and writes the
// result to stdout or cfg.Out. Diagnostics and notices go to stderr.
func Run(ctx context.Context, cfg *Config, stdout, stderr io.Writer) (err error) {
	if err := logger.InitWithOptions(logger.Options{Writer: stderr, Level: cfg.LogLevel}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	svc := service.New(
		service.WithDatasetPath(cfg.DataPath),
		service.WithLogger(logger.Named("records")),
		service.WithSystemMetrics(false),
		service.WithMaxExportRows(0),
		service.WithMaxSessions(0),
	)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	out := stdout
	if cfg.Out != "" {
		f, openErr := os.OpenFile(cfg.Out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, outFilePermission)
		if openErr != nil {
			return fmt.Errorf("failed to create output file: %w", openErr)
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		out = f
	}

	switch {
	case cfg.Options:
		return printOptions(ctx, svc, out, cfg.Format)
	case cfg.View == view.LocationCounts:
		return printLocations(ctx, svc, cfg, out, stderr)
	}
	return printRecords(ctx, svc, cfg, out, stderr)
}

func printRecords(ctx context.Context, svc *service.Service, cfg *Config, out, stderr io.Writer) error {
	res, err := svc.Query(ctx, cfg.Criteria, cfg.View)
	if err != nil {
		return err
	}
	if res.Notice != "" {
		_, _ = fmt.Fprintln(stderr, res.Notice)
	}
	// The table carries its own title; other encodings stay machine readable.
	if cfg.Format != export.Table || cfg.Out != "" {
		_, _ = fmt.Fprintf(stderr, "%s (%d rows)\n", res.Title, res.Count)
	}
	return export.Write(ctx, out, cfg.Format, res.Title, res.Rows)
}

func printLocations(ctx context.Context, svc *service.Service, cfg *Config, out, stderr io.Writer) error {
	if cfg.Criteria.SearchMode() {
		_, _ = fmt.Fprintln(stderr, display.BypassNotice)
	}
	counts, err := svc.Locations(ctx, cfg.Criteria)
	if err != nil {
		return err
	}
	return export.WriteLocations(ctx, out, cfg.Format, locationsTitle, counts)
}

// printOptions writes the option lists as JSON for -format json and as YAML
// otherwise.
func printOptions(ctx context.Context, svc *service.Service, out io.Writer, f export.Format) error {
	opts, err := svc.Options(ctx)
	if err != nil {
		return err
	}
	if f == export.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(opts)
	}
	doc := map[string][]string{
		"sex":            opts.Sex,
		"division":       opts.Division,
		"testing_status": opts.TestingStatus,
		"equipment":      opts.Equipment,
		"weight_class":   opts.WeightClass,
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
