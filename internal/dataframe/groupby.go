package dataframe

import (
	"math"

	"github.com/apache/arrow-go/v18/arrow/memory"
	xxhash "github.com/cespare/xxhash/v2"
	"github.com/paveg/salesclean/internal/errors"
	"github.com/paveg/salesclean/internal/series"
	"github.com/shopspring/decimal"
)

// GroupBy represents a table partitioned by the values of one key column.
// Groups keep the order in which their key was first seen; null keys form
// a group of their own.
type GroupBy struct {
	df     *DataFrame
	key    string
	keys   []string
	isNull []bool
	rows   [][]int
}

// groupIndex maps key hashes to group ids. Colliding keys share a bucket
// and are told apart by comparing the key text.
type groupIndex struct {
	buckets map[uint64][]int
}

// GroupBy partitions the rows of df by the text of column
func (df *DataFrame) GroupBy(column string) (*GroupBy, error) {
	col, exists := df.Column(column)
	if !exists {
		return nil, errors.NewColumnNotFoundError("GroupBy", column)
	}

	gb := &GroupBy{df: df, key: column}
	index := groupIndex{buckets: make(map[uint64][]int)}
	nullGroup := -1

	for row := 0; row < col.Len(); row++ {
		if col.IsNull(row) {
			if nullGroup < 0 {
				nullGroup = gb.addGroup("", true)
			}
			gb.rows[nullGroup] = append(gb.rows[nullGroup], row)
			continue
		}

		key := col.GetAsString(row)
		hash := xxhash.Sum64String(key)
		group := -1
		for _, candidate := range index.buckets[hash] {
			if gb.keys[candidate] == key {
				group = candidate
				break
			}
		}
		if group < 0 {
			group = gb.addGroup(key, false)
			index.buckets[hash] = append(index.buckets[hash], group)
		}
		gb.rows[group] = append(gb.rows[group], row)
	}

	return gb, nil
}

func (gb *GroupBy) addGroup(key string, isNull bool) int {
	gb.keys = append(gb.keys, key)
	gb.isNull = append(gb.isNull, isNull)
	gb.rows = append(gb.rows, nil)
	return len(gb.keys) - 1
}

// Len returns the number of groups
func (gb *GroupBy) Len() int {
	return len(gb.keys)
}

// Rows returns the row indices of group i
func (gb *GroupBy) Rows(i int) []int {
	return append([]int(nil), gb.rows[i]...)
}

// Sum aggregates each named numeric column per group. Nulls, NaN and
// infinite values contribute zero, so a group whose values are all null sums
// to 0. Sums are accumulated in
// decimal and do not depend on row order. The result has the key column
// (nullable string) followed by one float64 column per input column.
func (gb *GroupBy) Sum(columns ...string) (*DataFrame, error) {
	mem := memory.NewGoAllocator()

	valid := make([]bool, len(gb.keys))
	for i, isNull := range gb.isNull {
		valid[i] = !isNull
	}
	keySeries, err := series.NewNullable(gb.key, gb.keys, valid, mem)
	if err != nil {
		return nil, err
	}
	result := []ISeries{keySeries}

	for _, column := range columns {
		sums, err := gb.sumColumn(column)
		if err != nil {
			releaseAll(result)
			return nil, err
		}
		s, err := series.NewSafe(column, sums, mem)
		if err != nil {
			releaseAll(result)
			return nil, err
		}
		result = append(result, s)
	}

	return NewSafe(result...)
}

func (gb *GroupBy) sumColumn(column string) ([]float64, error) {
	col, exists := gb.df.Column(column)
	if !exists {
		return nil, errors.NewColumnNotFoundError("Sum", column)
	}

	var valueAt func(row int) (decimal.Decimal, bool)
	switch typed := col.(type) {
	case *series.Series[float64]:
		valueAt = func(row int) (decimal.Decimal, bool) {
			v := typed.Value(row)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return decimal.Zero, false
			}
			return decimal.NewFromFloat(v), true
		}
	case *series.Series[int64]:
		valueAt = func(row int) (decimal.Decimal, bool) { return decimal.NewFromInt(typed.Value(row)), true }
	default:
		err := errors.NewUnsupportedTypeError("Sum", col.DataType().String())
		err.Column = column
		return nil, err
	}

	sums := make([]float64, len(gb.rows))
	for i, rows := range gb.rows {
		total := decimal.Zero
		for _, row := range rows {
			if col.IsNull(row) {
				continue
			}
			if value, ok := valueAt(row); ok {
				total = total.Add(value)
			}
		}
		sums[i] = total.InexactFloat64()
	}
	return sums, nil
}
