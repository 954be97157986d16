//nolint:testpackage // requires internal access to unexported types and functions
package dataframe

import (
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/salesclean/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByFirstSeenOrder(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := newSalesFrame(t, mem)
	defer df.Release()

	gb, err := df.GroupBy("region")
	require.NoError(t, err)

	require.Equal(t, 3, gb.Len())
	assert.Equal(t, []string{"East", "West", ""}, gb.keys)
	assert.Equal(t, []bool{false, false, true}, gb.isNull)
	assert.Equal(t, []int{0, 3}, gb.Rows(0))
	assert.Equal(t, []int{2}, gb.Rows(2))
}

func TestGroupBySum(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := newSalesFrame(t, mem)
	defer df.Release()

	gb, err := df.GroupBy("region")
	require.NoError(t, err)

	result, err := gb.Sum("profit", "units")
	require.NoError(t, err)
	defer result.Release()

	assert.Equal(t, []string{"region", "profit", "units"}, result.Columns())

	region, err := ColumnAs[string](result, "region")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, false}, region.Valid(), "null key is kept as its own group")

	profit, err := ColumnAs[float64](result, "profit")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 50, 5}, profit.Values(), "null profit contributes zero")

	units, err := ColumnAs[float64](result, "units")
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 2, 3}, units.Values())
}

func TestGroupBySumIsExactForCurrency(t *testing.T) {
	mem := memory.NewGoAllocator()
	key := series.New("k", []string{"a", "a", "a"}, mem)
	amount := series.New("amount", []float64{0.1, 0.2, 0.3}, mem)
	df := New(key, amount)
	defer df.Release()

	gb, err := df.GroupBy("k")
	require.NoError(t, err)
	result, err := gb.Sum("amount")
	require.NoError(t, err)
	defer result.Release()

	sums, err := ColumnAs[float64](result, "amount")
	require.NoError(t, err)
	assert.Equal(t, 0.6, sums.Value(0))
}

func TestGroupBySumSkipsNonFiniteValues(t *testing.T) {
	mem := memory.NewGoAllocator()
	key := series.New("k", []string{"a", "a", "b", "b"}, mem)
	amount := series.New("amount", []float64{math.Inf(1), 2.5, math.NaN(), math.Inf(-1)}, mem)
	df := New(key, amount)
	defer df.Release()

	gb, err := df.GroupBy("k")
	require.NoError(t, err)
	result, err := gb.Sum("amount")
	require.NoError(t, err)
	defer result.Release()

	sums, err := ColumnAs[float64](result, "amount")
	require.NoError(t, err)
	assert.Equal(t, []float64{2.5, 0}, sums.Values())
}

func TestGroupByErrors(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := newSalesFrame(t, mem)
	defer df.Release()

	_, err := df.GroupBy("segment")
	require.Error(t, err)

	gb, err := df.GroupBy("region")
	require.NoError(t, err)
	_, err = gb.Sum("region")
	require.Error(t, err, "text columns cannot be summed")
	_, err = gb.Sum("revenue")
	require.Error(t, err)
}

func TestGroupByEmptyFrame(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := New(series.New("region", []string{}, mem), series.New("profit", []float64{}, mem))
	defer df.Release()

	gb, err := df.GroupBy("region")
	require.NoError(t, err)
	result, err := gb.Sum("profit")
	require.NoError(t, err)
	defer result.Release()
	assert.Equal(t, 0, result.Len())
	assert.Equal(t, []string{"region", "profit"}, result.Columns())
}
