package clean

import (
	"math"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/salesclean/internal/dataframe"
	"github.com/paveg/salesclean/internal/errors"
	"github.com/paveg/salesclean/internal/series"
	"github.com/shopspring/decimal"
)

var (
	minUnits = decimal.NewFromInt(math.MinInt64)
	maxUnits = decimal.NewFromInt(math.MaxInt64)
)

// ParseUnits parses text as a count. Fractions are truncated toward zero;
// counts an int64 cannot hold do not parse.
func ParseUnits(text string) (int64, bool) {
	value, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return 0, false
	}
	value = value.Truncate(0)
	if value.LessThan(minUnits) || value.GreaterThan(maxUnits) {
		return 0, false
	}
	return value.IntPart(), true
}

// CoerceUnits converts column to a non-null int64 column. Nulls and values
// that are not numbers become 0.
func CoerceUnits(df *dataframe.DataFrame, column string, mem memory.Allocator) (*dataframe.DataFrame, error) {
	col, exists := df.Column(column)
	if !exists {
		return nil, errors.NewColumnNotFoundError("CoerceUnits", column)
	}

	values := make([]int64, col.Len())
	for i := range values {
		if col.IsNull(i) {
			continue
		}
		switch typed := col.(type) {
		case *series.Series[int64]:
			values[i] = typed.Value(i)
		case *series.Series[float64]:
			// the upper bound rounds to 2^63, which is already out of range
			if v := typed.Value(i); v >= math.MinInt64 && v < math.MaxInt64 {
				values[i] = int64(v)
			}
		default:
			values[i], _ = ParseUnits(col.GetAsString(i))
		}
	}

	units, err := series.NewSafe(column, values, mem)
	if err != nil {
		return nil, err
	}
	return replace(df.Select(df.Columns()...), units)
}
