// Package testutil provides shared fixtures for the cleaning pipeline tests:
// memory setup, a messy sales CSV and frame assertions.
package testutil

import (
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/salesclean/internal/dataframe"
	"github.com/paveg/salesclean/internal/io"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MessySalesCSV is a small input with the usual problems: ragged header
// spelling, stray whitespace, mixed date formats, currency text, bad units
// and missing values.
const MessySalesCSV = `Order ID,Order Date, Region ,Segment,City,Product,Units,Unit Price,Revenue,Cost,Profit
1,2024/03/05,  west ,A,Seattle,widget,3,$10.50,,$5,
2,03/18/2024,East,A,,gadget  pro,2,"$1,000.00","$2,000.00",$1500,$500
3,2024-01-15,east,B,Boston,widget,abc,$4.00,$0.00,$0,$0
4,not a date,WEST,,Denver,gizmo,1.5,$20,$20,$5,$15
5,2024-02-01,,A,Austin,widget,,$3,$6,$2,
`

// TestMemoryContext provides memory allocator with automatic cleanup.
type TestMemoryContext struct {
	Allocator memory.Allocator
	cleanup   func()
}

// Release performs cleanup of the memory context.
func (tmc *TestMemoryContext) Release() {
	if tmc.cleanup != nil {
		tmc.cleanup()
	}
}

// SetupMemoryTest creates a memory allocator for a test.
//
//	mem := testutil.SetupMemoryTest(t)
//	defer mem.Release()
func SetupMemoryTest(tb testing.TB) *TestMemoryContext {
	tb.Helper()
	return &TestMemoryContext{
		Allocator: memory.NewGoAllocator(),
		cleanup:   func() {},
	}
}

// ReadCSV parses text with the default CSV options
func ReadCSV(tb testing.TB, text string, allocator memory.Allocator) *dataframe.DataFrame {
	tb.Helper()
	df, err := io.NewCSVReader(strings.NewReader(text), io.DefaultCSVOptions(), allocator).Read()
	require.NoError(tb, err)
	return df
}

// CreateMessySalesDataFrame reads MessySalesCSV
func CreateMessySalesDataFrame(tb testing.TB, allocator memory.Allocator) *dataframe.DataFrame {
	tb.Helper()
	return ReadCSV(tb, MessySalesCSV, allocator)
}

// Cells renders every row of column as text, with "<null>" for nulls
func Cells(tb testing.TB, df *dataframe.DataFrame, column string) []string {
	tb.Helper()
	col, exists := df.Column(column)
	require.True(tb, exists, "column %s should exist", column)

	cells := make([]string, col.Len())
	for i := range cells {
		if col.IsNull(i) {
			cells[i] = "<null>"
			continue
		}
		cells[i] = col.GetAsString(i)
	}
	return cells
}

// AssertDataFrameEqual compares shape, column order, types and every cell
func AssertDataFrameEqual(t *testing.T, expected, actual *dataframe.DataFrame) {
	t.Helper()

	require.NotNil(t, expected, "expected DataFrame should not be nil")
	require.NotNil(t, actual, "actual DataFrame should not be nil")

	assert.Equal(t, expected.Len(), actual.Len(), "DataFrame lengths should match")
	require.Equal(t, expected.Columns(), actual.Columns(), "DataFrame columns should match")

	for _, name := range expected.Columns() {
		expectedCol, _ := expected.Column(name)
		actualCol, _ := actual.Column(name)
		assert.True(t, arrowTypesEqual(expectedCol, actualCol), "column %s types should match", name)
		assert.Equal(t, Cells(t, expected, name), Cells(t, actual, name), "column %s data should match", name)
	}
}

// AssertDataFrameHasColumns verifies that a DataFrame has the expected columns.
func AssertDataFrameHasColumns(t *testing.T, df *dataframe.DataFrame, expectedColumns []string) {
	t.Helper()

	require.NotNil(t, df, "DataFrame should not be nil")
	for _, col := range expectedColumns {
		assert.True(t, df.HasColumn(col), "DataFrame should have column %s", col)
	}
}

func arrowTypesEqual(a, b dataframe.ISeries) bool {
	return a.DataType().ID() == b.DataType().ID()
}
