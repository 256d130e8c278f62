package cli

import (
	"flag"
	"fmt"
	"io"

	"github.com/wrpfuk/records/internal/adapters/export"
	"github.com/wrpfuk/records/internal/domain/filter"
	"github.com/wrpfuk/records/internal/domain/view"
)

// Config holds the parsed command line.
type Config struct {
	DataPath string          // CSV to read
	Criteria filter.Criteria // Structured filters and search
	View     view.Kind       // Rows or location counts to show
	Format   export.Format   // Output encoding
	Out      string          // Output file; empty means stdout
	Options  bool            // Print filter options instead of records
	LogLevel string          // Diagnostics on stderr
	Help     bool            // Show help and exit
}

// ParseFlags parses args (without the program name). Flag errors are
// written to stderr and returned.
func ParseFlags(args []string, stderr io.Writer) (*Config, error) {
	fs := flag.NewFlagSet("records", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		cfg      Config
		viewName string
		format   string
		criteria filter.Criteria
	)
	fs.StringVar(&cfg.DataPath, "data", "Records Master Sheet.csv", "Records CSV file")
	fs.StringVar(&criteria.Sex, "sex", filter.All, "Sex filter")
	fs.StringVar(&criteria.Division, "division", filter.All, "Division filter, e.g. Junior or Opens")
	fs.StringVar(&criteria.TestingStatus, "testing", filter.All, `Testing filter: "Drug Tested" or "Untested"`)
	fs.StringVar(&criteria.Equipment, "equipment", filter.All, "Equipment filter, e.g. Raw or Equipped")
	fs.StringVar(&criteria.WeightClass, "class", filter.All, "Weight class filter")
	fs.StringVar(&criteria.Search, "search", "", "Free-text search; overrides the other filters")
	fs.StringVar(&viewName, "view", string(view.All), "View: all, full, single or locations")
	fs.StringVar(&format, "format", string(export.Table), "Output format: table, csv, json, yaml or sqlite")
	fs.StringVar(&cfg.Out, "out", "", "Write output to this file instead of stdout")
	fs.BoolVar(&cfg.Options, "options", false, "Print the available filter values")
	fs.StringVar(&cfg.LogLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	fs.BoolVar(&cfg.Help, "help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if cfg.Help {
		return &cfg, nil
	}

	k, err := view.Parse(viewName)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, viewName)
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if f == export.SQLite {
		switch {
		case cfg.Out == "":
			return nil, fmt.Errorf("sqlite output needs -out")
		case k == view.LocationCounts:
			return nil, fmt.Errorf("%w: sqlite is not available for location counts", export.ErrUnknownFormat)
		case cfg.Options:
			return nil, fmt.Errorf("%w: sqlite is not available for -options", export.ErrUnknownFormat)
		}
	}
	cfg.View, cfg.Format, cfg.Criteria = k, f, criteria.Normalized()
	return &cfg, nil
}
