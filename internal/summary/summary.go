// Package summary builds the month and region revenue/profit tables from a
// cleaned sales table.
package summary

import (
	"log/slog"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/salesclean/internal/dataframe"
	"github.com/paveg/salesclean/internal/errors"
	"github.com/paveg/salesclean/internal/series"
	"github.com/paveg/salesclean/internal/validation"
)

// Column names read and produced by the summaries
const (
	ColumnOrderDate  = "order_date"
	ColumnOrderMonth = "order_month"
	ColumnRegion     = "region"
	ColumnRevenue    = "revenue"
	ColumnProfit     = "profit"
)

// DefaultMissingMonthLabel labels rows whose order date is missing
const DefaultMissingMonthLabel = "NaT"

const monthLayout = "2006-01"

// Options configures the summaries
type Options struct {
	// MissingMonthLabel labels the bucket of rows without an order date
	MissingMonthLabel string
	Allocator         memory.Allocator
	Logger            *slog.Logger
}

// DefaultOptions returns the standard summary options
func DefaultOptions() Options {
	return Options{MissingMonthLabel: DefaultMissingMonthLabel}
}

func (o Options) withDefaults() Options {
	if o.MissingMonthLabel == "" {
		o.MissingMonthLabel = DefaultMissingMonthLabel
	}
	if o.Allocator == nil {
		o.Allocator = memory.NewGoAllocator()
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// WithMonth appends order_month, the "YYYY-MM" label of order_date. Rows
// without a date get missingLabel. An existing order_month is replaced.
func WithMonth(df *dataframe.DataFrame, missingLabel string, mem memory.Allocator) (*dataframe.DataFrame, error) {
	dates, err := dataframe.ColumnAs[time.Time](df, ColumnOrderDate)
	if err != nil {
		return nil, err
	}

	labels := make([]string, dates.Len())
	for i := range labels {
		if dates.IsNull(i) {
			labels[i] = missingLabel
			continue
		}
		labels[i] = dates.Value(i).Format(monthLayout)
	}

	months, err := series.NewSafe(ColumnOrderMonth, labels, mem)
	if err != nil {
		return nil, err
	}
	result, err := df.WithColumn(months)
	if err != nil {
		months.Release()
		return nil, err
	}
	return result, nil
}

// ByMonth sums revenue and profit per order month. Rows are ascending by
// month label and the missing-date bucket is always last. order_month is
// derived from order_date when df does not carry it.
func ByMonth(df *dataframe.DataFrame, opts Options) (*dataframe.DataFrame, error) {
	opts = opts.withDefaults()
	if err := validation.ValidateColumns(df, "ByMonth", ColumnRevenue, ColumnProfit); err != nil {
		return nil, err
	}

	source := df
	if !df.HasColumn(ColumnOrderMonth) {
		withMonth, err := WithMonth(df, opts.MissingMonthLabel, opts.Allocator)
		if err != nil {
			return nil, err
		}
		defer withMonth.Release()
		source = withMonth
	}

	sorted, err := sumSorted(source, ColumnOrderMonth, true)
	if err != nil {
		return nil, err
	}
	defer sorted.Release()

	months, err := dataframe.ColumnAs[string](sorted, ColumnOrderMonth)
	if err != nil {
		return nil, err
	}

	order := make([]int, 0, sorted.Len())
	missing := -1
	for i := 0; i < months.Len(); i++ {
		if months.Value(i) == opts.MissingMonthLabel {
			missing = i
			continue
		}
		order = append(order, i)
	}
	if missing >= 0 {
		order = append(order, missing)
	}

	return sorted.Take(order)
}

// ByRegion sums revenue and profit per region, rows descending by profit.
// Rows without a region form their own bucket. Tied profits keep the order
// in which their regions first appear. A table with no region column is
// summarized as a single bucket with a null region.
func ByRegion(df *dataframe.DataFrame, opts Options) (*dataframe.DataFrame, error) {
	opts = opts.withDefaults()
	if err := validation.ValidateColumns(df, "ByRegion", ColumnRevenue, ColumnProfit); err != nil {
		return nil, err
	}

	source := df
	if !df.HasColumn(ColumnRegion) {
		opts.Logger.Warn("no region column, summarizing every row as a missing region")
		regions, err := series.NewNullable(ColumnRegion, make([]string, df.Len()), make([]bool, df.Len()), opts.Allocator)
		if err != nil {
			return nil, err
		}
		withRegion, err := df.WithColumn(regions)
		if err != nil {
			regions.Release()
			return nil, err
		}
		defer withRegion.Release()
		source = withRegion
	}

	return sumSorted(source, ColumnRegion, false)
}

// sumSorted groups df by key, sums revenue and profit and sorts the result:
// by key when ascending, otherwise by descending profit
func sumSorted(df *dataframe.DataFrame, key string, ascending bool) (*dataframe.DataFrame, error) {
	if _, ok := df.Column(key); !ok {
		return nil, errors.NewColumnNotFoundError("Summary", key)
	}

	groups, err := df.GroupBy(key)
	if err != nil {
		return nil, err
	}
	sums, err := groups.Sum(ColumnRevenue, ColumnProfit)
	if err != nil {
		return nil, err
	}
	defer sums.Release()

	if ascending {
		return sums.Sort(key, true)
	}
	return sums.Sort(ColumnProfit, false)
}
