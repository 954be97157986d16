package clean_test

import (
	"cmp"
	"testing"

	"github.com/paveg/salesclean/internal/clean"
	"github.com/paveg/salesclean/internal/dataframe"
	"github.com/paveg/salesclean/internal/errors"
	"github.com/paveg/salesclean/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImpute(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	t.Run("fills segment with its mode and city with Unknown", func(t *testing.T) {
		df := dataframe.New(
			mustNullable(t, "segment", []string{"A", "A", "B", ""}, []bool{true, true, true, false}),
			mustNullable(t, "city", []string{"Boston", "", "Austin", "Reno"}, []bool{true, false, true, true}),
		)
		defer df.Release()

		imputed, err := clean.Impute(df, clean.DefaultImputeRules(), mem.Allocator)
		require.NoError(t, err)
		defer imputed.Release()

		assert.Equal(t, []string{"A", "A", "B", "A"}, testutil.Cells(t, imputed, "segment"))
		assert.Equal(t, []string{"Boston", "Unknown", "Austin", "Reno"}, testutil.Cells(t, imputed, "city"))
	})

	t.Run("ties pick the smallest value whatever the row order", func(t *testing.T) {
		for _, values := range [][]string{{"B", "A", "B", "A", ""}, {"A", "B", "A", "B", ""}} {
			df := dataframe.New(mustNullable(t, "segment", values, []bool{true, true, true, true, false}))

			imputed, err := clean.Impute(df, clean.DefaultImputeRules(), mem.Allocator)
			require.NoError(t, err)

			assert.Equal(t, "A", testutil.Cells(t, imputed, "segment")[4])
			imputed.Release()
			df.Release()
		}
	})

	t.Run("columns without nulls are untouched", func(t *testing.T) {
		df := dataframe.New(mustNullable(t, "city", []string{"Boston"}, nil))
		defer df.Release()

		imputed, err := clean.Impute(df, clean.DefaultImputeRules(), mem.Allocator)
		require.NoError(t, err)
		defer imputed.Release()

		assert.Equal(t, []string{"Boston"}, testutil.Cells(t, imputed, "city"))
	})

	t.Run("absent columns are skipped", func(t *testing.T) {
		df := dataframe.New(mustNullable(t, "region", []string{""}, []bool{false}))
		defer df.Release()

		imputed, err := clean.Impute(df, clean.DefaultImputeRules(), mem.Allocator)
		require.NoError(t, err)
		defer imputed.Release()

		assert.Equal(t, []string{"region"}, imputed.Columns())
	})

	t.Run("all-null mode column has no fill value", func(t *testing.T) {
		df := dataframe.New(mustNullable(t, "segment", []string{"", ""}, []bool{false, false}))
		defer df.Release()

		_, err := clean.Impute(df, clean.DefaultImputeRules(), mem.Allocator)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrNoFillValue)
		assert.Contains(t, err.Error(), "segment")
	})

	t.Run("mode works on numeric columns", func(t *testing.T) {
		df := dataframe.New(mustNullable(t, "units", []int64{3, 2, 3, 0}, []bool{true, true, true, false}))
		defer df.Release()

		rules := []clean.ImputeRule{{Column: "units", Strategy: clean.StrategyMode}}
		imputed, err := clean.Impute(df, rules, mem.Allocator)
		require.NoError(t, err)
		defer imputed.Release()

		assert.Equal(t, []string{"3", "2", "3", "3"}, testutil.Cells(t, imputed, "units"))
	})

	t.Run("unknown strategy is rejected", func(t *testing.T) {
		df := dataframe.New(mustNullable(t, "city", []string{""}, []bool{false}))
		defer df.Release()

		_, err := clean.Impute(df, []clean.ImputeRule{{Column: "city", Strategy: "median"}}, mem.Allocator)
		assert.ErrorIs(t, err, errors.ErrInvalidInput)
	})
}

func TestMode(t *testing.T) {
	s := mustNullable(t, "segment", []string{"C", "B", "C", "B", "A"}, nil)
	defer s.Release()

	mode, ok := clean.Mode(s, cmp.Compare[string])
	require.True(t, ok)
	assert.Equal(t, "B", mode)

	empty := mustNullable(t, "segment", []string{""}, []bool{false})
	defer empty.Release()

	_, ok = clean.Mode(empty, cmp.Compare[string])
	assert.False(t, ok)
}
