//nolint:testpackage // requires internal access to unexported types and functions
package dataframe

import (
	"errors"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracerRecordsStages(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := newSalesFrame(t, mem)
	defer df.Release()

	tracer := NewTracer()

	out, err := tracer.Trace("DropProfit", df, func() (*DataFrame, error) {
		return df.Drop("profit"), nil
	})
	require.NoError(t, err)
	defer out.Release()

	_, err = tracer.Trace("Broken", out, func() (*DataFrame, error) {
		return nil, errors.New("boom")
	})
	require.Error(t, err)

	ops := tracer.Operations()
	require.Len(t, ops, 2)

	assert.Equal(t, "DropProfit", ops[0].Operation)
	assert.Equal(t, DataFrameStats{Rows: 4, Columns: 3, Nulls: 2, Schema: []string{"region", "profit", "units"}}, ops[0].Input)
	assert.Equal(t, 2, ops[0].Output.Columns)
	assert.Equal(t, 1, ops[0].Output.Nulls)
	assert.False(t, ops[0].Failed)

	assert.True(t, ops[1].Failed)
	assert.Equal(t, DataFrameStats{}, ops[1].Output)

	summary := tracer.Summary()
	assert.Equal(t, 2, summary.TotalOperations)
	assert.NotEmpty(t, summary.SlowestOperation)
}
