package clean_test

import (
	"testing"

	"github.com/paveg/salesclean/internal/clean"
	"github.com/paveg/salesclean/internal/dataframe"
	"github.com/paveg/salesclean/internal/series"
	"github.com/paveg/salesclean/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Order Date", "order_date"},
		{"  Unit-Price ", "unit_price"},
		{"REGION", "region"},
		{"order_date", "order_date"},
		{"", ""},
		{"a b-c", "a_b_c"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := clean.CanonicalName(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, got, clean.CanonicalName(got))
		})
	}
}

func TestNormalizeColumns(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	t.Run("renames every column and keeps values", func(t *testing.T) {
		raw := testutil.CreateMessySalesDataFrame(t, mem.Allocator)
		defer raw.Release()

		normalized, err := clean.NormalizeColumns(raw)
		require.NoError(t, err)
		defer normalized.Release()

		assert.Equal(t, []string{
			"order_id", "order_date", "region", "segment", "city", "product",
			"units", "unit_price", "revenue", "cost", "profit",
		}, normalized.Columns())
		assert.Equal(t, testutil.Cells(t, raw, " Region "), testutil.Cells(t, normalized, "region"))
	})

	t.Run("is idempotent", func(t *testing.T) {
		raw := testutil.CreateMessySalesDataFrame(t, mem.Allocator)
		defer raw.Release()

		once, err := clean.NormalizeColumns(raw)
		require.NoError(t, err)
		defer once.Release()

		twice, err := clean.NormalizeColumns(once)
		require.NoError(t, err)
		defer twice.Release()

		testutil.AssertDataFrameEqual(t, once, twice)
	})

	t.Run("suffixes colliding names", func(t *testing.T) {
		df := dataframe.New(
			series.New("Unit Price", []string{"a"}, mem.Allocator),
			series.New("unit-price", []string{"b"}, mem.Allocator),
			series.New("unit_price", []string{"c"}, mem.Allocator),
		)
		defer df.Release()

		normalized, err := clean.NormalizeColumns(df)
		require.NoError(t, err)
		defer normalized.Release()

		assert.Equal(t, []string{"unit_price", "unit_price_1", "unit_price_2"}, normalized.Columns())
	})
}
