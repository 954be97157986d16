package clean

import (
	"math"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/salesclean/internal/dataframe"
	"github.com/paveg/salesclean/internal/series"
	"github.com/shopspring/decimal"
)

// Column names the derivation rules read and write
const (
	ColumnUnits     = "units"
	ColumnUnitPrice = "unit_price"
	ColumnRevenue   = "revenue"
	ColumnCost      = "cost"
	ColumnProfit    = "profit"
)

// Derive fills missing revenue and profit from the other money columns:
//
//	revenue = units * unit_price   when unit_price is present
//	profit  = revenue - cost       when cost is present
//
// Only null rows are written (NaN and infinite cells count as null); revenue is filled first so profit can use it.
// A row stays null when any operand is null. A target column that does not
// exist is created as all-null and then filled.
func Derive(df *dataframe.DataFrame, mem memory.Allocator) (*dataframe.DataFrame, error) {
	result := df.Select(df.Columns()...)

	rules := []struct {
		target string
		left   string
		right  string
		apply  func(a, b decimal.Decimal) decimal.Decimal
	}{
		{ColumnRevenue, ColumnUnits, ColumnUnitPrice, decimal.Decimal.Mul},
		{ColumnProfit, ColumnRevenue, ColumnCost, decimal.Decimal.Sub},
	}

	for _, rule := range rules {
		if !result.HasColumn(rule.right) || !result.HasColumn(rule.left) {
			continue
		}

		if !result.HasColumn(rule.target) {
			empty, err := series.NewNullable(rule.target, make([]float64, result.Len()), make([]bool, result.Len()), mem)
			if err != nil {
				result.Release()
				return nil, err
			}
			if result, err = replace(result, empty); err != nil {
				return nil, err
			}
		}

		target, _ := result.Column(rule.target)

		left, _ := result.Column(rule.left)
		right, _ := result.Column(rule.right)
		filled, err := fillMissing(target, left, right, rule.apply, mem)
		if err != nil {
			result.Release()
			return nil, err
		}
		if result, err = replace(result, filled); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// fillMissing computes apply(left, right) for the null rows of target and
// keeps its other rows as they are. NaN and infinite cells count as null,
// and a result too large for float64 stays null.
func fillMissing(target, left, right dataframe.ISeries, apply func(a, b decimal.Decimal) decimal.Decimal, mem memory.Allocator) (*series.Series[float64], error) {
	values := make([]float64, target.Len())
	valid := make([]bool, target.Len())

	for i := range values {
		current, ok, err := decimalAt(target, i)
		if err != nil {
			return nil, err
		}
		if ok {
			values[i] = current.InexactFloat64()
			valid[i] = true
			continue
		}

		a, okA, err := decimalAt(left, i)
		if err != nil {
			return nil, err
		}
		b, okB, err := decimalAt(right, i)
		if err != nil {
			return nil, err
		}
		if okA && okB {
			values[i] = apply(a, b).InexactFloat64()
			valid[i] = !math.IsInf(values[i], 0)
		}
	}

	return series.NewNullable(target.Name(), values, valid, mem)
}
