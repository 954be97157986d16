package clean

import (
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/salesclean/internal/dataframe"
	"github.com/paveg/salesclean/internal/validation"
)

// Options configures Clean
type Options struct {
	TextColumns     []string
	CurrencyColumns []string
	DateColumn      string
	DateLayouts     []string
	UnitsColumn     string
	ImputeRules     []ImputeRule

	// Allocator backs every series the stages build; nil uses the Go allocator
	Allocator memory.Allocator
	// Logger receives per-stage debug output; nil discards it
	Logger *slog.Logger
	// Tracer, when set, records the shape and duration of every stage
	Tracer *dataframe.Tracer
}

// DefaultOptions returns the column sets of the standard sales layout
func DefaultOptions() Options {
	return Options{
		TextColumns:     append([]string(nil), DefaultTextColumns...),
		CurrencyColumns: append([]string(nil), DefaultCurrencyColumns...),
		DateColumn:      "order_date",
		DateLayouts:     append([]string(nil), DefaultDateLayouts...),
		UnitsColumn:     ColumnUnits,
		ImputeRules:     DefaultImputeRules(),
	}
}

type stage struct {
	name string
	run  func(*dataframe.DataFrame) (*dataframe.DataFrame, error)
}

// Clean runs the cleaning stages over raw in order: column normalization,
// text, dates, currency, imputation, units and derivation. The date and
// units columns must exist once names are normalized. raw is not modified.
func Clean(raw *dataframe.DataFrame, opts Options) (*dataframe.DataFrame, error) {
	mem := opts.Allocator
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = dataframe.NewTracer()
	}

	stages := []stage{
		{"normalize_columns", NormalizeColumns},
		{"check_required", func(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
			if err := validation.ValidateColumns(df, "Clean", opts.DateColumn, opts.UnitsColumn); err != nil {
				return nil, err
			}
			return df.Select(df.Columns()...), nil
		}},
		{"clean_text", func(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
			return CleanText(df, opts.TextColumns, mem)
		}},
		{"parse_dates", func(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
			return ParseDates(df, opts.DateColumn, opts.DateLayouts, mem)
		}},
		{"parse_currency", func(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
			return ParseCurrency(df, opts.CurrencyColumns, mem)
		}},
		{"impute", func(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
			return Impute(df, opts.ImputeRules, mem)
		}},
		{"coerce_units", func(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
			return CoerceUnits(df, opts.UnitsColumn, mem)
		}},
		{"derive", func(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
			return Derive(df, mem)
		}},
	}

	current := raw.Select(raw.Columns()...)
	for _, s := range stages {
		next, err := tracer.Trace(s.name, current, func() (*dataframe.DataFrame, error) {
			return s.run(current)
		})
		current.Release()
		if err != nil {
			logger.Debug("stage failed", "stage", s.name, "error", err)
			return nil, err
		}
		logger.Debug("stage complete", "stage", s.name, "rows", next.Len(), "columns", next.Width(), "nulls", next.NullCount())
		current = next
	}

	if skipped := missing(current, opts.TextColumns); len(skipped) > 0 {
		logger.Info("text columns not present, skipped", "columns", skipped)
	}
	return current, nil
}

func missing(df *dataframe.DataFrame, columns []string) []string {
	var result []string
	for _, column := range columns {
		if !df.HasColumn(column) {
			result = append(result, column)
		}
	}
	return result
}
