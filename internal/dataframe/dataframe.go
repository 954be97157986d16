// Package dataframe provides the in-memory table the cleaning pipeline operates on
package dataframe

import (
	"fmt"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/salesclean/internal/errors"
	"github.com/paveg/salesclean/internal/series"
	"github.com/paveg/salesclean/internal/validation"
)

// DataFrame represents a table of data with typed columns.
// A DataFrame owns one reference to each of its series; Release drops them.
type DataFrame struct {
	columns map[string]ISeries
	order   []string // Maintains column order
}

// New creates a new DataFrame from a slice of ISeries, taking ownership of them
func New(series ...ISeries) *DataFrame {
	columns := make(map[string]ISeries)
	order := make([]string, 0, len(series))

	for _, s := range series {
		name := s.Name()
		if _, dup := columns[name]; !dup {
			order = append(order, name)
		}
		columns[name] = s
	}

	return &DataFrame{
		columns: columns,
		order:   order,
	}
}

// NewSafe is New with checks for duplicate names and ragged lengths
func NewSafe(series ...ISeries) (*DataFrame, error) {
	seen := make(map[string]bool, len(series))
	for _, s := range series {
		if seen[s.Name()] {
			return nil, errors.NewInvalidInputError("NewDataFrame",
				fmt.Sprintf("duplicate column name %q", s.Name()))
		}
		seen[s.Name()] = true
		if err := validation.ValidateLength(series[0].Len(), s.Len(), "NewDataFrame", s.Name()); err != nil {
			return nil, err
		}
	}
	return New(series...), nil
}

// Columns returns the names of all columns in order
func (df *DataFrame) Columns() []string {
	if len(df.order) == 0 {
		return []string{}
	}
	return append([]string(nil), df.order...)
}

// Len returns the number of rows (assumes all columns have same length)
func (df *DataFrame) Len() int {
	if len(df.order) == 0 {
		return 0
	}
	return df.columns[df.order[0]].Len()
}

// Width returns the number of columns
func (df *DataFrame) Width() int {
	return len(df.columns)
}

// Column returns the series for the given column name
func (df *DataFrame) Column(name string) (ISeries, bool) {
	series, exists := df.columns[name]
	return series, exists
}

// HasColumn checks if a column exists
func (df *DataFrame) HasColumn(name string) bool {
	_, exists := df.columns[name]
	return exists
}

// NullCount returns the number of null cells across all columns
func (df *DataFrame) NullCount() int {
	total := 0
	for _, s := range df.columns {
		total += s.NullCount()
	}
	return total
}

// Select returns a new DataFrame with only the specified columns
func (df *DataFrame) Select(names ...string) *DataFrame {
	selected := make([]ISeries, 0, len(names))
	for _, name := range names {
		if s, exists := df.columns[name]; exists {
			selected = append(selected, retainSeries(s))
		}
	}
	return New(selected...)
}

// Drop returns a new DataFrame without the specified columns
func (df *DataFrame) Drop(names ...string) *DataFrame {
	dropSet := make(map[string]bool)
	for _, name := range names {
		dropSet[name] = true
	}

	kept := make([]ISeries, 0, len(df.order))
	for _, name := range df.order {
		if !dropSet[name] {
			kept = append(kept, retainSeries(df.columns[name]))
		}
	}
	return New(kept...)
}

// WithColumn returns a new DataFrame where s replaces the column of the same
// name in place, or is appended if no such column exists. The new frame takes
// ownership of s and retains the other columns.
func (df *DataFrame) WithColumn(s ISeries) (*DataFrame, error) {
	if len(df.order) > 0 && s.Len() != df.Len() {
		return nil, errors.NewInvalidInputError("WithColumn",
			fmt.Sprintf("column %q has %d rows, table has %d", s.Name(), s.Len(), df.Len()))
	}

	result := make([]ISeries, 0, len(df.order)+1)
	replaced := false
	for _, name := range df.order {
		if name == s.Name() {
			result = append(result, s)
			replaced = true
			continue
		}
		result = append(result, retainSeries(df.columns[name]))
	}
	if !replaced {
		result = append(result, s)
	}
	return New(result...), nil
}

// RenameAll returns a new DataFrame whose columns, in order, carry names.
// Names must be unique and match the column count.
func (df *DataFrame) RenameAll(names []string) (*DataFrame, error) {
	if err := validation.ValidateLength(len(df.order), len(names), "RenameAll", "column names"); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(names))
	renamed := make([]ISeries, 0, len(names))
	for i, name := range names {
		if seen[name] {
			releaseAll(renamed)
			return nil, errors.NewInvalidInputError("RenameAll", fmt.Sprintf("duplicate column name %q", name))
		}
		seen[name] = true

		s, err := renameSeries(df.columns[df.order[i]], name)
		if err != nil {
			releaseAll(renamed)
			return nil, err
		}
		renamed = append(renamed, s)
	}
	return New(renamed...), nil
}

// Take returns a new DataFrame holding the rows at indices, in that order
func (df *DataFrame) Take(indices []int) (*DataFrame, error) {
	mem := memory.NewGoAllocator()
	taken := make([]ISeries, 0, len(df.order))
	for _, name := range df.order {
		s, err := takeSeries(df.columns[name], indices, mem)
		if err != nil {
			releaseAll(taken)
			return nil, err
		}
		taken = append(taken, s)
	}
	return New(taken...), nil
}

// String returns a string representation of the DataFrame
func (df *DataFrame) String() string {
	if len(df.columns) == 0 {
		return "DataFrame[empty]"
	}

	parts := []string{fmt.Sprintf("DataFrame[%dx%d]", df.Len(), df.Width())}

	for _, name := range df.order {
		series := df.columns[name]
		parts = append(parts, fmt.Sprintf("  %s: %s", name, series.DataType().String()))
	}

	return strings.Join(parts, "\n")
}

// Release releases all underlying Arrow memory
func (df *DataFrame) Release() {
	for _, series := range df.columns {
		series.Release()
	}
}

// ColumnAs returns the named column as a concrete Series[T]
func ColumnAs[T any](df *DataFrame, name string) (*series.Series[T], error) {
	col, exists := df.Column(name)
	if !exists {
		return nil, errors.NewColumnNotFoundError("ColumnAs", name)
	}
	typed, ok := col.(*series.Series[T])
	if !ok {
		err := errors.NewUnsupportedTypeError("ColumnAs", col.DataType().String())
		err.Column = name
		return nil, err
	}
	return typed, nil
}

func releaseAll(list []ISeries) {
	for _, s := range list {
		s.Release()
	}
}

func retainSeries(s ISeries) ISeries {
	renamed, err := renameSeries(s, s.Name())
	if err != nil {
		// every series the package builds is one of the supported types
		panic(err.Error())
	}
	return renamed
}

func renameSeries(s ISeries, name string) (ISeries, error) {
	switch typed := s.(type) {
	case *series.Series[string]:
		return typed.Rename(name), nil
	case *series.Series[int64]:
		return typed.Rename(name), nil
	case *series.Series[float64]:
		return typed.Rename(name), nil
	case *series.Series[bool]:
		return typed.Rename(name), nil
	case *series.Series[time.Time]:
		return typed.Rename(name), nil
	default:
		return nil, errors.NewUnsupportedTypeError("Rename", fmt.Sprintf("%T", s))
	}
}

func takeSeries(s ISeries, indices []int, mem memory.Allocator) (ISeries, error) {
	switch typed := s.(type) {
	case *series.Series[string]:
		return typed.Take(indices, mem)
	case *series.Series[int64]:
		return typed.Take(indices, mem)
	case *series.Series[float64]:
		return typed.Take(indices, mem)
	case *series.Series[bool]:
		return typed.Take(indices, mem)
	case *series.Series[time.Time]:
		return typed.Take(indices, mem)
	default:
		return nil, errors.NewUnsupportedTypeError("Take", fmt.Sprintf("%T", s))
	}
}
