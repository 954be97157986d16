package clean

import (
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/araddon/dateparse"
	"github.com/paveg/salesclean/internal/dataframe"
	"github.com/paveg/salesclean/internal/errors"
	"github.com/paveg/salesclean/internal/series"
)

// DefaultDateLayouts are tried, in order, before falling back to dateparse
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

// ParseDate interprets text as a calendar date or timestamp. The explicit
// layouts are tried first; anything else goes to dateparse, which reads
// ambiguous numeric dates month first. Results are in UTC. Dates a
// nanosecond timestamp cannot represent (before 1677-09-21 or after
// 2262-04-11) are rejected.
func ParseDate(text string, layouts []string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, text, time.UTC); err == nil {
			return inRange(t.UTC())
		}
	}
	t, err := dateparse.ParseIn(text, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return inRange(t.UTC())
}

func inRange(t time.Time) (time.Time, bool) {
	if t.Before(series.MinTime) || t.After(series.MaxTime) {
		return time.Time{}, false
	}
	return t, true
}

// ParseDates converts column to a nullable timestamp column. Values that are
// not dates become null. A column that already holds timestamps is kept.
func ParseDates(df *dataframe.DataFrame, column string, layouts []string, mem memory.Allocator) (*dataframe.DataFrame, error) {
	col, exists := df.Column(column)
	if !exists {
		return nil, errors.NewColumnNotFoundError("ParseDates", column)
	}

	result := df.Select(df.Columns()...)
	if _, ok := col.(*series.Series[time.Time]); ok {
		return result, nil
	}

	values := make([]time.Time, col.Len())
	valid := make([]bool, col.Len())
	for i := range values {
		if col.IsNull(i) {
			continue
		}
		values[i], valid[i] = ParseDate(col.GetAsString(i), layouts)
	}

	parsed, err := series.NewNullable(column, values, valid, mem)
	if err != nil {
		result.Release()
		return nil, err
	}
	return replace(result, parsed)
}
