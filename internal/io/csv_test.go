package io_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/salesclean/internal/dataframe"
	"github.com/paveg/salesclean/internal/io"
	"github.com/paveg/salesclean/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVReader(t *testing.T) {
	mem := memory.NewGoAllocator()

	t.Run("reads simple CSV with headers", func(t *testing.T) {
		csvData := `region,units,unit_price
East,2,10.5
West,3,4.25`

		df, err := io.NewCSVReader(strings.NewReader(csvData), io.DefaultCSVOptions(), mem).Read()
		require.NoError(t, err)
		defer df.Release()

		assert.Equal(t, 2, df.Len())
		assert.Equal(t, []string{"region", "units", "unit_price"}, df.Columns())

		region, err := dataframe.ColumnAs[string](df, "region")
		require.NoError(t, err)
		assert.Equal(t, []string{"East", "West"}, region.Values())

		units, err := dataframe.ColumnAs[int64](df, "units")
		require.NoError(t, err)
		assert.Equal(t, []int64{2, 3}, units.Values())

		price, err := dataframe.ColumnAs[float64](df, "unit_price")
		require.NoError(t, err)
		assert.Equal(t, []float64{10.5, 4.25}, price.Values())
	})

	t.Run("reads null tokens as nulls", func(t *testing.T) {
		csvData := `city,units
Boston,1
,2
NaN,3
N/A,
null,5`

		df, err := io.NewCSVReader(strings.NewReader(csvData), io.DefaultCSVOptions(), mem).Read()
		require.NoError(t, err)
		defer df.Release()

		city, _ := df.Column("city")
		assert.Equal(t, 4, city.NullCount())
		assert.False(t, city.IsNull(0))

		units, err := dataframe.ColumnAs[int64](df, "units")
		require.NoError(t, err)
		assert.Equal(t, 1, units.NullCount())
		assert.True(t, units.IsNull(3))
	})

	t.Run("keeps currency text as strings", func(t *testing.T) {
		csvData := `revenue
"$1,200.50"
30`

		df, err := io.NewCSVReader(strings.NewReader(csvData), io.DefaultCSVOptions(), mem).Read()
		require.NoError(t, err)
		defer df.Release()

		revenue, err := dataframe.ColumnAs[string](df, "revenue")
		require.NoError(t, err)
		assert.Equal(t, []string{"$1,200.50", "30"}, revenue.Values())
	})

	t.Run("mangles duplicate headers", func(t *testing.T) {
		csvData := `Region,Region,Region
a,b,c`

		df, err := io.NewCSVReader(strings.NewReader(csvData), io.DefaultCSVOptions(), mem).Read()
		require.NoError(t, err)
		defer df.Release()

		assert.Equal(t, []string{"Region", "Region.1", "Region.2"}, df.Columns())
	})

	t.Run("pads ragged rows with nulls", func(t *testing.T) {
		csvData := `a,b
1,x
2`

		df, err := io.NewCSVReader(strings.NewReader(csvData), io.DefaultCSVOptions(), mem).Read()
		require.NoError(t, err)
		defer df.Release()

		b, _ := df.Column("b")
		assert.True(t, b.IsNull(1))
	})

	t.Run("reads CSV without headers", func(t *testing.T) {
		options := io.DefaultCSVOptions()
		options.Header = false

		df, err := io.NewCSVReader(strings.NewReader("a,1\nb,2"), options, mem).Read()
		require.NoError(t, err)
		defer df.Release()

		assert.Equal(t, []string{"column_0", "column_1"}, df.Columns())
	})

	t.Run("reads every column as text without inference", func(t *testing.T) {
		options := io.DefaultCSVOptions()
		options.InferTypes = false

		df, err := io.NewCSVReader(strings.NewReader("units\n1\n2"), options, mem).Read()
		require.NoError(t, err)
		defer df.Release()

		units, _ := df.Column("units")
		assert.Equal(t, arrow.STRING, units.DataType().ID())
	})

	t.Run("reads custom delimiter", func(t *testing.T) {
		options := io.DefaultCSVOptions()
		options.Delimiter = ';'

		df, err := io.NewCSVReader(strings.NewReader("a;b\n1;2"), options, mem).Read()
		require.NoError(t, err)
		defer df.Release()

		assert.Equal(t, []string{"a", "b"}, df.Columns())
	})

	t.Run("empty input yields empty frame", func(t *testing.T) {
		df, err := io.NewCSVReader(strings.NewReader(""), io.DefaultCSVOptions(), mem).Read()
		require.NoError(t, err)
		defer df.Release()

		assert.Equal(t, 0, df.Width())
	})
}

func TestCSVWriter(t *testing.T) {
	mem := memory.NewGoAllocator()

	t.Run("writes nulls as empty cells", func(t *testing.T) {
		region, err := series.NewNullable("region", []string{"East", ""}, []bool{true, false}, mem)
		require.NoError(t, err)
		profit, err := series.NewNullable("profit", []float64{26.5, 0}, []bool{true, false}, mem)
		require.NoError(t, err)
		df := dataframe.New(region, profit)
		defer df.Release()

		var buf bytes.Buffer
		require.NoError(t, io.NewCSVWriter(&buf, io.DefaultCSVOptions()).Write(df))

		assert.Equal(t, "region,profit\nEast,26.5\n,\n", buf.String())
	})

	t.Run("writes dates without time of day", func(t *testing.T) {
		dates, err := series.NewNullable("order_date",
			[]time.Time{time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), {}},
			[]bool{true, false}, mem)
		require.NoError(t, err)
		df := dataframe.New(dates)
		defer df.Release()

		var buf bytes.Buffer
		require.NoError(t, io.NewCSVWriter(&buf, io.DefaultCSVOptions()).Write(df))

		assert.Equal(t, "order_date\n2024-03-05\n\n", buf.String())
	})

	t.Run("writes full timestamps when any has a time of day", func(t *testing.T) {
		dates := series.New("ts", []time.Time{
			time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 6, 12, 30, 0, 0, time.UTC),
		}, mem)
		df := dataframe.New(dates)
		defer df.Release()

		var buf bytes.Buffer
		require.NoError(t, io.NewCSVWriter(&buf, io.DefaultCSVOptions()).Write(df))

		assert.Equal(t, "ts\n2024-03-05 00:00:00\n2024-03-06 12:30:00\n", buf.String())
	})

	t.Run("round trips through the reader", func(t *testing.T) {
		csvData := "region,units,profit\nEast,1,10.5\n,2,\n"

		df, err := io.NewCSVReader(strings.NewReader(csvData), io.DefaultCSVOptions(), mem).Read()
		require.NoError(t, err)
		defer df.Release()

		var buf bytes.Buffer
		require.NoError(t, io.NewCSVWriter(&buf, io.DefaultCSVOptions()).Write(df))
		assert.Equal(t, csvData, buf.String())
	})
}
