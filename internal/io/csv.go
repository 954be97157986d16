package io

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/paveg/salesclean/internal/dataframe"
	"github.com/paveg/salesclean/internal/series"
)

const (
	// Boolean string constants
	trueStr  = "true"
	falseStr = "false"
)

type columnType int

const (
	stringColumn columnType = iota
	boolColumn
	intColumn
	floatColumn
)

// Read reads CSV data and returns a DataFrame
func (r *CSVReader) Read() (*dataframe.DataFrame, error) {
	csvReader := csv.NewReader(r.reader)
	csvReader.Comma = r.options.Delimiter
	csvReader.Comment = r.options.Comment
	csvReader.TrimLeadingSpace = r.options.SkipInitialSpace
	csvReader.LazyQuotes = r.options.LazyQuotes
	// Ragged rows are padded with nulls rather than rejected
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	if len(records) == 0 {
		return dataframe.New(), nil
	}

	var headers []string
	var dataRows [][]string

	if r.options.Header {
		headers = dedupeHeaders(records[0])
		dataRows = records[1:]
	} else {
		numCols := len(records[0])
		headers = make([]string, numCols)
		for i := 0; i < numCols; i++ {
			headers[i] = fmt.Sprintf("column_%d", i)
		}
		dataRows = records
	}

	nulls := make(map[string]bool, len(r.options.NullValues))
	for _, token := range r.options.NullValues {
		nulls[token] = true
	}

	// Transpose data to work with columns
	numCols := len(headers)
	columns := make([][]string, numCols)
	valid := make([][]bool, numCols)
	for i := 0; i < numCols; i++ {
		columns[i] = make([]string, len(dataRows))
		valid[i] = make([]bool, len(dataRows))
		for j, row := range dataRows {
			if i < len(row) && !nulls[row[i]] {
				columns[i][j] = row[i]
				valid[i][j] = true
			}
		}
	}

	seriesList := make([]dataframe.ISeries, 0, numCols)
	for i, header := range headers {
		s, err := r.createSeriesFromStrings(header, columns[i], valid[i])
		if err != nil {
			for _, created := range seriesList {
				created.Release()
			}
			return nil, fmt.Errorf("creating series for column %s: %w", header, err)
		}
		seriesList = append(seriesList, s)
	}

	return dataframe.NewSafe(seriesList...)
}

// dedupeHeaders suffixes repeated header names with .1, .2, ... so every
// column keeps a distinct name
func dedupeHeaders(headers []string) []string {
	result := make([]string, len(headers))
	used := make(map[string]bool, len(headers))
	count := make(map[string]int, len(headers))
	for i, header := range headers {
		name := header
		for used[name] {
			count[header]++
			name = fmt.Sprintf("%s.%d", header, count[header])
		}
		used[name] = true
		result[i] = name
	}
	return result
}

// createSeriesFromStrings creates a series from string data, inferring the appropriate type
func (r *CSVReader) createSeriesFromStrings(name string, data []string, valid []bool) (dataframe.ISeries, error) {
	inferred := stringColumn
	if r.options.InferTypes {
		inferred = inferDataType(data, valid)
	}

	switch inferred {
	case boolColumn:
		values := make([]bool, len(data))
		for i, value := range data {
			values[i] = valid[i] && strings.EqualFold(value, trueStr)
		}
		return series.NewNullable(name, values, valid, r.mem)
	case intColumn:
		values := make([]int64, len(data))
		for i, value := range data {
			if valid[i] {
				values[i], _ = strconv.ParseInt(value, 10, 64)
			}
		}
		return series.NewNullable(name, values, valid, r.mem)
	case floatColumn:
		values := make([]float64, len(data))
		for i, value := range data {
			if valid[i] {
				values[i], _ = strconv.ParseFloat(value, 64)
			}
		}
		return series.NewNullable(name, values, valid, r.mem)
	default:
		return series.NewNullable(name, data, valid, r.mem)
	}
}

// inferDataType determines the most specific type all non-null cells share
func inferDataType(data []string, valid []bool) columnType {
	canBeInt := true
	canBeFloat := true
	canBeBool := true
	hasValue := false

	for i, value := range data {
		if !valid[i] {
			continue
		}
		hasValue = true

		if canBeBool {
			lower := strings.ToLower(value)
			if lower != trueStr && lower != falseStr {
				canBeBool = false
			}
		}
		if canBeInt {
			if _, err := strconv.ParseInt(value, 10, 64); err != nil {
				canBeInt = false
			}
		}
		if canBeFloat {
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				canBeFloat = false
			}
		}
	}

	switch {
	case !hasValue:
		return stringColumn
	case canBeBool:
		return boolColumn
	case canBeInt:
		return intColumn
	case canBeFloat:
		return floatColumn
	default:
		return stringColumn
	}
}

// Write writes the DataFrame to CSV format. Nulls are written as empty cells.
func (w *CSVWriter) Write(df *dataframe.DataFrame) error {
	csvWriter := csv.NewWriter(w.writer)
	csvWriter.Comma = w.options.Delimiter

	if w.options.Header {
		if err := csvWriter.Write(df.Columns()); err != nil {
			return fmt.Errorf("writing headers: %w", err)
		}
	}

	columns := make([]func(int) string, 0, df.Width())
	for _, name := range df.Columns() {
		column, _ := df.Column(name)
		columns = append(columns, cellFormatter(column))
	}

	row := make([]string, len(columns))
	for i := 0; i < df.Len(); i++ {
		for j, format := range columns {
			row[j] = format(i)
		}
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}

// cellFormatter renders one column. Timestamp columns use the date-only
// layout when every value in the column falls on midnight.
func cellFormatter(column dataframe.ISeries) func(int) string {
	times, ok := column.(*series.Series[time.Time])
	if !ok {
		return column.GetAsString
	}

	layout := series.DateLayout
	for i := 0; i < times.Len(); i++ {
		if times.IsNull(i) {
			continue
		}
		t := times.Value(i)
		if !t.Equal(t.Truncate(24 * time.Hour)) {
			layout = series.DateTimeLayout
			break
		}
	}

	return func(i int) string {
		if times.IsNull(i) {
			return ""
		}
		return times.Value(i).Format(layout)
	}
}
