package clean

import (
	"math"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/salesclean/internal/dataframe"
	"github.com/paveg/salesclean/internal/errors"
	"github.com/paveg/salesclean/internal/series"
	"github.com/shopspring/decimal"
)

// stringValues renders a column as text, keeping its nulls
func stringValues(col dataframe.ISeries) ([]string, []bool) {
	values := make([]string, col.Len())
	valid := make([]bool, col.Len())
	for i := range values {
		if col.IsNull(i) {
			continue
		}
		values[i] = col.GetAsString(i)
		valid[i] = true
	}
	return values, valid
}

// asStrings returns col as a string series. Non-string columns are rendered
// to a new series; string columns are shared. The result must be released.
func asStrings(col dataframe.ISeries, mem memory.Allocator) (*series.Series[string], error) {
	if typed, ok := col.(*series.Series[string]); ok {
		return typed.Rename(typed.Name()), nil
	}
	values, valid := stringValues(col)
	return series.NewNullable(col.Name(), values, valid, mem)
}

// decimalAt reads row i of a numeric column. ok is false for nulls and for
// NaN or infinite floats.
func decimalAt(col dataframe.ISeries, i int) (decimal.Decimal, bool, error) {
	if col.IsNull(i) {
		return decimal.Zero, false, nil
	}
	switch typed := col.(type) {
	case *series.Series[float64]:
		v := typed.Value(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, false, nil
		}
		return decimal.NewFromFloat(v), true, nil
	case *series.Series[int64]:
		return decimal.NewFromInt(typed.Value(i)), true, nil
	default:
		err := errors.NewUnsupportedTypeError("Derive", col.DataType().String())
		err.Column = col.Name()
		return decimal.Zero, false, err
	}
}

// replace swaps s into df and releases df. On failure s is released too.
func replace(df *dataframe.DataFrame, s dataframe.ISeries) (*dataframe.DataFrame, error) {
	next, err := df.WithColumn(s)
	df.Release()
	if err != nil {
		s.Release()
		return nil, err
	}
	return next, nil
}
