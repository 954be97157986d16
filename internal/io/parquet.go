package io

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/paveg/salesclean/internal/dataframe"
	"github.com/paveg/salesclean/internal/errors"
	"github.com/paveg/salesclean/internal/series"
)

// Read reads Parquet data and returns a DataFrame.
func (r *ParquetReader) Read() (*dataframe.DataFrame, error) {
	data, err := io.ReadAll(r.reader)
	if err != nil {
		return nil, fmt.Errorf("reading data: %w", err)
	}

	pqReader, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating parquet file reader: %w", err)
	}
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, r.mem)
	if err != nil {
		return nil, fmt.Errorf("creating arrow file reader: %w", err)
	}

	table, err := arrowReader.ReadTable(context.Background())
	if err != nil {
		return nil, fmt.Errorf("reading table: %w", err)
	}
	defer table.Release()

	return r.arrowTableToDataFrame(table)
}

// arrowTableToDataFrame converts an Arrow table to a DataFrame.
func (r *ParquetReader) arrowTableToDataFrame(table arrow.Table) (*dataframe.DataFrame, error) {
	seriesList := make([]dataframe.ISeries, 0, table.NumCols())
	schema := table.Schema()

	for i := 0; i < int(table.NumCols()); i++ {
		name := schema.Field(i).Name
		s, err := r.chunkedToSeries(name, table.Column(i).Data())
		if err != nil {
			for _, created := range seriesList {
				created.Release()
			}
			return nil, fmt.Errorf("converting column %s: %w", name, err)
		}
		seriesList = append(seriesList, s)
	}

	return dataframe.NewSafe(seriesList...)
}

func (r *ParquetReader) chunkedToSeries(name string, chunked *arrow.Chunked) (dataframe.ISeries, error) {
	var arr arrow.Array
	switch len(chunked.Chunks()) {
	case 0:
		arr = array.MakeArrayOfNull(r.mem, chunked.DataType(), 0)
	case 1:
		arr = chunked.Chunk(0)
		arr.Retain()
	default:
		var err error
		arr, err = array.Concatenate(chunked.Chunks(), r.mem)
		if err != nil {
			return nil, err
		}
	}
	defer arr.Release()

	return arrayToSeries(name, arr, r.mem)
}

// arrayToSeries copies an Arrow array into a Series, widening 32-bit
// numbers to 64 bits and keeping nulls.
func arrayToSeries(name string, arr arrow.Array, mem memory.Allocator) (dataframe.ISeries, error) {
	n := arr.Len()
	valid := make([]bool, n)
	for i := range valid {
		valid[i] = arr.IsValid(i)
	}

	switch typed := arr.(type) {
	case *array.String:
		return series.NewNullable(name, collect(n, typed.Value), valid, mem)
	case *array.LargeString:
		return series.NewNullable(name, collect(n, typed.Value), valid, mem)
	case *array.Int64:
		return series.NewNullable(name, collect(n, typed.Value), valid, mem)
	case *array.Int32:
		return series.NewNullable(name, collect(n, func(i int) int64 { return int64(typed.Value(i)) }), valid, mem)
	case *array.Float64:
		return series.NewNullable(name, collect(n, typed.Value), valid, mem)
	case *array.Float32:
		return series.NewNullable(name, collect(n, func(i int) float64 { return float64(typed.Value(i)) }), valid, mem)
	case *array.Boolean:
		return series.NewNullable(name, collect(n, typed.Value), valid, mem)
	case *array.Timestamp:
		unit := typed.DataType().(*arrow.TimestampType).Unit
		times := collect(n, func(i int) time.Time {
			return typed.Value(i).ToTime(unit).UTC()
		})
		// second and millisecond timestamps can reach past the nanosecond range
		for i, t := range times {
			if t.Before(series.MinTime) || t.After(series.MaxTime) {
				valid[i] = false
			}
		}
		return series.NewNullable(name, times, valid, mem)
	default:
		return nil, errors.NewUnsupportedTypeError("ReadParquet", arr.DataType().String())
	}
}

func collect[T any](n int, value func(int) T) []T {
	values := make([]T, n)
	for i := range values {
		values[i] = value(i)
	}
	return values
}

// Write writes the DataFrame to Parquet format.
func (w *ParquetWriter) Write(df *dataframe.DataFrame) error {
	table := dataFrameToArrowTable(df)
	defer table.Release()

	var compression compress.Compression
	switch w.options.Compression {
	case "gzip":
		compression = compress.Codecs.Gzip
	case "lz4":
		compression = compress.Codecs.Lz4Raw
	case "zstd":
		compression = compress.Codecs.Zstd
	case "uncompressed":
		compression = compress.Codecs.Uncompressed
	default:
		compression = compress.Codecs.Snappy
	}

	batchSize := w.options.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	props := parquet.NewWriterProperties(
		parquet.WithCompression(compression),
		parquet.WithBatchSize(int64(batchSize)),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithAllocator(memory.NewGoAllocator()),
		pqarrow.WithStoreSchema(),
	)

	writer, err := pqarrow.NewFileWriter(table.Schema(), w.writer, props, arrowProps)
	if err != nil {
		return fmt.Errorf("creating file writer: %w", err)
	}

	if err := writer.WriteTable(table, int64(batchSize)); err != nil {
		_ = writer.Close()
		return fmt.Errorf("writing table: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing parquet writer: %w", err)
	}
	return nil
}

// dataFrameToArrowTable wraps the DataFrame's arrays in an Arrow table
// without copying them.
func dataFrameToArrowTable(df *dataframe.DataFrame) arrow.Table {
	fields := make([]arrow.Field, 0, df.Width())
	columns := make([]arrow.Column, 0, df.Width())

	for _, name := range df.Columns() {
		col, _ := df.Column(name)
		arr := col.Array()

		field := arrow.Field{Name: name, Type: arr.DataType(), Nullable: true}
		chunked := arrow.NewChunked(arr.DataType(), []arrow.Array{arr})
		arr.Release()

		column := arrow.NewColumn(field, chunked)
		chunked.Release()

		fields = append(fields, field)
		columns = append(columns, *column)
	}

	schema := arrow.NewSchema(fields, nil)
	table := array.NewTable(schema, columns, int64(df.Len()))
	for i := range columns {
		columns[i].Release()
	}
	return table
}
