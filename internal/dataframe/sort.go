package dataframe

import (
	"cmp"
	"sort"
	"time"

	"github.com/paveg/salesclean/internal/errors"
	"github.com/paveg/salesclean/internal/series"
)

// Sort returns a new DataFrame ordered by column. The sort is stable, so rows
// with equal keys keep their current order, and nulls go last in either direction.
func (df *DataFrame) Sort(column string, ascending bool) (*DataFrame, error) {
	col, exists := df.Column(column)
	if !exists {
		return nil, errors.NewColumnNotFoundError("Sort", column)
	}

	compare, err := comparator(col)
	if err != nil {
		return nil, err
	}

	indices := make([]int, df.Len())
	for i := range indices {
		indices[i] = i
	}

	sort.SliceStable(indices, func(a, b int) bool {
		i, j := indices[a], indices[b]
		iNull, jNull := col.IsNull(i), col.IsNull(j)
		switch {
		case iNull || jNull:
			return !iNull && jNull
		case ascending:
			return compare(i, j) < 0
		default:
			return compare(i, j) > 0
		}
	})

	return df.Take(indices)
}

func comparator(col ISeries) (func(i, j int) int, error) {
	switch typed := col.(type) {
	case *series.Series[string]:
		return func(i, j int) int { return cmp.Compare(typed.Value(i), typed.Value(j)) }, nil
	case *series.Series[int64]:
		return func(i, j int) int { return cmp.Compare(typed.Value(i), typed.Value(j)) }, nil
	case *series.Series[float64]:
		return func(i, j int) int { return cmp.Compare(typed.Value(i), typed.Value(j)) }, nil
	case *series.Series[time.Time]:
		return func(i, j int) int { return typed.Value(i).Compare(typed.Value(j)) }, nil
	default:
		err := errors.NewUnsupportedTypeError("Sort", col.DataType().String())
		err.Column = col.Name()
		return nil, err
	}
}
