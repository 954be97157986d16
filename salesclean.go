// Package salesclean cleans a messy sales export and summarizes it by month
// and by region. This package is the public API; the stages live under
// internal/.
package salesclean

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/salesclean/internal/clean"
	"github.com/paveg/salesclean/internal/config"
	"github.com/paveg/salesclean/internal/dataframe"
	tableio "github.com/paveg/salesclean/internal/io"
	"github.com/paveg/salesclean/internal/profile"
	"github.com/paveg/salesclean/internal/summary"
	"github.com/paveg/salesclean/internal/version"
)

// Output base names, written with a .csv or .parquet extension
const (
	CleanedName  = "cleaned_sales_data"
	ByMonthName  = "summary_by_month"
	ByRegionName = "summary_by_region"
	ReportName   = "cleaning_report.yaml"
)

type (
	// Config configures a run
	Config = config.Config
	// LoadOptions names the optional configuration sources
	LoadOptions = config.LoadOptions
	// Table is an in-memory table
	Table = dataframe.DataFrame
	// Report describes what cleaning did to each column
	Report = profile.Report
)

// NewConfig returns the default configuration
func NewConfig() Config {
	return config.NewConfig()
}

// LoadConfig reads defaults, an optional file and the environment
func LoadConfig(opts LoadOptions) (Config, error) {
	return config.Load(opts)
}

// Result holds the tables produced by Process. Release must be called.
type Result struct {
	Cleaned  *Table
	ByMonth  *Table
	ByRegion *Table
	Report   *Report
}

// Release releases the tables
func (r *Result) Release() {
	for _, df := range []*Table{r.Cleaned, r.ByMonth, r.ByRegion} {
		if df != nil {
			df.Release()
		}
	}
}

// Process reads a CSV sales table from r, cleans it and builds both
// summaries. Nothing is written.
func Process(r io.Reader, cfg Config, logger *slog.Logger) (*Result, error) {
	mem := memory.NewGoAllocator()
	raw, err := tableio.NewCSVReader(r, cfg.CSVOptions(), mem).Read()
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	defer raw.Release()

	return process(raw, cfg, logger, mem)
}

func process(raw *Table, cfg Config, logger *slog.Logger, mem memory.Allocator) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Info("read input", "rows", raw.Len(), "columns", raw.Width())

	tracer := dataframe.NewTracer()
	cleanOptions := cfg.CleanOptions()
	cleanOptions.Allocator = mem
	cleanOptions.Logger = logger
	cleanOptions.Tracer = tracer

	derived, err := clean.Clean(raw, cleanOptions)
	if err != nil {
		return nil, fmt.Errorf("cleaning: %w", err)
	}
	defer derived.Release()

	summaryOptions := cfg.SummaryOptions()
	summaryOptions.Allocator = mem
	summaryOptions.Logger = logger

	result := &Result{}
	steps := []struct {
		name   string
		target **Table
		run    func() (*Table, error)
	}{
		{"with_month", &result.Cleaned, func() (*Table, error) {
			return summary.WithMonth(derived, summaryOptions.MissingMonthLabel, mem)
		}},
		{"by_month", &result.ByMonth, func() (*Table, error) {
			return summary.ByMonth(result.Cleaned, summaryOptions)
		}},
		{"by_region", &result.ByRegion, func() (*Table, error) {
			return summary.ByRegion(result.Cleaned, summaryOptions)
		}},
	}
	for _, step := range steps {
		input := derived
		if result.Cleaned != nil {
			input = result.Cleaned
		}
		df, err := tracer.Trace(step.name, input, step.run)
		if err != nil {
			result.Release()
			return nil, fmt.Errorf("summarizing: %w", err)
		}
		*step.target = df
	}

	report, err := profile.Build(raw, result.Cleaned, tracer)
	if err != nil {
		result.Release()
		return nil, err
	}
	report.Version = version.Info().Short()
	report.AddSummary(ByMonthName, result.ByMonth)
	report.AddSummary(ByRegionName, result.ByRegion)
	result.Report = report

	for _, column := range report.Columns {
		if column.Coerced > 0 {
			logger.Warn("unparsable values set to missing", "column", column.Name, "count", column.Coerced)
		}
	}
	logger.Info("cleaned", "rows", result.Cleaned.Len(),
		"months", result.ByMonth.Len(), "regions", result.ByRegion.Len(),
		"duration", report.Trace.TotalDuration)

	return result, nil
}

// WriteOutputs writes the three tables, and the report when cfg.Report is
// set, into cfg.OutDir. Every file is first written under a temporary name
// and renamed only once all of them are complete, so a failed run leaves no
// partial output set behind. It returns the committed paths.
func (r *Result) WriteOutputs(cfg Config) ([]string, error) {
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	ext := ".csv"
	if cfg.Format == config.FormatParquet {
		ext = ".parquet"
	}

	type output struct {
		name  string
		write func(io.Writer) error
	}
	outputs := []output{
		{CleanedName + ext, tableWriter(r.Cleaned, cfg)},
		{ByMonthName + ext, tableWriter(r.ByMonth, cfg)},
		{ByRegionName + ext, tableWriter(r.ByRegion, cfg)},
	}
	if cfg.Report && r.Report != nil {
		outputs = append(outputs, output{ReportName, r.Report.WriteYAML})
	}

	temps := make([]string, 0, len(outputs))
	cleanup := func() {
		for _, temp := range temps {
			_ = os.Remove(temp)
		}
	}

	for _, out := range outputs {
		temp, err := writeTemp(cfg.OutDir, out.name, out.write)
		if temp != "" {
			temps = append(temps, temp)
		}
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("writing %s: %w", out.name, err)
		}
	}

	paths := make([]string, 0, len(outputs))
	for i, out := range outputs {
		path := filepath.Join(cfg.OutDir, out.name)
		if err := os.Rename(temps[i], path); err != nil {
			temps = temps[i:]
			cleanup()
			return paths, fmt.Errorf("committing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func tableWriter(df *Table, cfg Config) func(io.Writer) error {
	return func(w io.Writer) error {
		if cfg.Format == config.FormatParquet {
			return tableio.NewParquetWriter(w, cfg.ParquetOptions()).Write(df)
		}
		return tableio.NewCSVWriter(w, cfg.CSVOptions()).Write(df)
	}
}

func writeTemp(dir, name string, write func(io.Writer) error) (string, error) {
	f, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return "", err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return f.Name(), err
	}
	return f.Name(), f.Close()
}

// Run reads cfg.Input, processes it and writes the outputs. Inputs ending in
// .parquet are read as Parquet, anything else as CSV.
func Run(cfg Config, logger *slog.Logger) ([]string, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f, err := os.Open(cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	mem := memory.NewGoAllocator()
	var reader tableio.DataReader = tableio.NewCSVReader(f, cfg.CSVOptions(), mem)
	if strings.EqualFold(filepath.Ext(cfg.Input), ".parquet") {
		reader = tableio.NewParquetReader(f, cfg.ParquetOptions(), mem)
	}

	raw, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", cfg.Input, err)
	}
	defer raw.Release()

	result, err := process(raw, cfg, logger, mem)
	if err != nil {
		return nil, err
	}
	defer result.Release()

	return result.WriteOutputs(cfg)
}
