// Package series provides data structures for column operations
package series

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/salesclean/internal/errors"
	"github.com/paveg/salesclean/internal/validation"
)

const (
	// DateLayout is used when rendering timestamps that fall on midnight
	DateLayout = "2006-01-02"
	// DateTimeLayout is used for all other timestamps
	DateTimeLayout = "2006-01-02 15:04:05"
)

// TimestampType is the Arrow type backing time.Time series. Times are stored in UTC.
var TimestampType = &arrow.TimestampType{Unit: arrow.Nanosecond, TimeZone: "UTC"}

// Range of times a nanosecond timestamp can hold
var (
	MinTime = time.Unix(0, math.MinInt64).UTC()
	MaxTime = time.Unix(0, math.MaxInt64).UTC()
)

// Series represents a typed, nullable data column with Apache Arrow backend
type Series[T any] struct {
	name  string
	array arrow.Array
}

// New creates a new Series from a slice of values. It panics on unsupported
// element types; use NewSafe when the type is not known statically.
func New[T any](name string, values []T, mem memory.Allocator) *Series[T] {
	s, err := NewSafe(name, values, mem)
	if err != nil {
		panic(err.Error())
	}
	return s
}

// NewSafe creates a new Series with every value valid
func NewSafe[T any](name string, values []T, mem memory.Allocator) (*Series[T], error) {
	return NewNullable(name, values, nil, mem)
}

// NewNullable creates a Series where valid[i] == false marks row i as null.
// A nil valid slice means no nulls.
func NewNullable[T any](name string, values []T, valid []bool, mem memory.Allocator) (*Series[T], error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	if valid != nil {
		if err := validation.ValidateLength(len(values), len(valid), "NewSeries", "validity"); err != nil {
			return nil, err
		}
	}

	arr, err := buildArray(values, valid, mem)
	if err != nil {
		return nil, err
	}

	return &Series[T]{
		name:  name,
		array: arr,
	}, nil
}

func buildArray(values any, valid []bool, mem memory.Allocator) (arrow.Array, error) {
	switch v := values.(type) {
	case []string:
		builder := array.NewStringBuilder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		return builder.NewArray(), nil
	case []int64:
		builder := array.NewInt64Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		return builder.NewArray(), nil
	case []float64:
		builder := array.NewFloat64Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		return builder.NewArray(), nil
	case []bool:
		builder := array.NewBooleanBuilder(mem)
		defer builder.Release()
		builder.AppendValues(v, valid)
		return builder.NewArray(), nil
	case []time.Time:
		builder := array.NewTimestampBuilder(mem, TimestampType)
		defer builder.Release()
		stamps := make([]arrow.Timestamp, len(v))
		for i, t := range v {
			if valid != nil && !valid[i] {
				continue
			}
			if t.Before(MinTime) || t.After(MaxTime) {
				return nil, errors.NewInvalidInputError("NewSeries",
					fmt.Sprintf("row %d: %s is outside the timestamp range", i, t.Format(time.RFC3339)))
			}
			stamps[i] = arrow.Timestamp(t.UnixNano())
		}
		builder.AppendValues(stamps, valid)
		return builder.NewArray(), nil
	default:
		return nil, errors.NewUnsupportedTypeError("NewSeries", fmt.Sprintf("%T", values))
	}
}

// Name returns the column name
func (s *Series[T]) Name() string {
	return s.name
}

// Len returns the length of the series
func (s *Series[T]) Len() int {
	return s.array.Len()
}

// NullCount returns the number of null entries
func (s *Series[T]) NullCount() int {
	return s.array.NullN()
}

// Values returns the data as a Go slice. Null entries hold the zero value;
// pair with Valid to tell them apart.
func (s *Series[T]) Values() []T {
	result := make([]T, s.array.Len())
	for i := range result {
		result[i] = s.Value(i)
	}
	return result
}

// Valid returns the validity of every entry
func (s *Series[T]) Valid() []bool {
	valid := make([]bool, s.array.Len())
	for i := range valid {
		valid[i] = s.array.IsValid(i)
	}
	return valid
}

// Value returns the value at the given index, or the zero value for nulls
// and out-of-range indexes
func (s *Series[T]) Value(index int) T {
	var result T
	if index < 0 || index >= s.array.Len() || s.array.IsNull(index) {
		return result
	}

	switch arr := s.array.(type) {
	case *array.String:
		if v, ok := any(&result).(*string); ok {
			*v = arr.Value(index)
		}
	case *array.Int64:
		if v, ok := any(&result).(*int64); ok {
			*v = arr.Value(index)
		}
	case *array.Float64:
		if v, ok := any(&result).(*float64); ok {
			*v = arr.Value(index)
		}
	case *array.Boolean:
		if v, ok := any(&result).(*bool); ok {
			*v = arr.Value(index)
		}
	case *array.Timestamp:
		if v, ok := any(&result).(*time.Time); ok {
			*v = time.Unix(0, int64(arr.Value(index))).UTC()
		}
	}

	return result
}

// GetAsString renders the value at index as text. Nulls render as "".
func (s *Series[T]) GetAsString(index int) string {
	if index < 0 || index >= s.array.Len() || s.array.IsNull(index) {
		return ""
	}

	switch arr := s.array.(type) {
	case *array.String:
		return arr.Value(index)
	case *array.Int64:
		return strconv.FormatInt(arr.Value(index), 10)
	case *array.Float64:
		return strconv.FormatFloat(arr.Value(index), 'f', -1, 64)
	case *array.Boolean:
		return strconv.FormatBool(arr.Value(index))
	case *array.Timestamp:
		t := time.Unix(0, int64(arr.Value(index))).UTC()
		if t.Equal(t.Truncate(24 * time.Hour)) {
			return t.Format(DateLayout)
		}
		return t.Format(DateTimeLayout)
	default:
		return ""
	}
}

// DataType returns the Arrow data type
func (s *Series[T]) DataType() arrow.DataType {
	return s.array.DataType()
}

// IsNull checks if the value at index is null
func (s *Series[T]) IsNull(index int) bool {
	return s.array.IsNull(index)
}

// String returns a string representation of the series
func (s *Series[T]) String() string {
	return fmt.Sprintf("Series[%s]: %s (len=%d, nulls=%d)",
		reflect.TypeOf(new(T)).Elem().Name(),
		s.name,
		s.Len(),
		s.NullCount())
}

// Array returns the underlying Arrow array (retains a reference)
func (s *Series[T]) Array() arrow.Array {
	if s.array != nil {
		s.array.Retain()
		return s.array
	}
	return nil
}

// Rename returns a series with a new name sharing this one's data.
// Both series must be released.
func (s *Series[T]) Rename(name string) *Series[T] {
	s.array.Retain()
	return &Series[T]{
		name:  name,
		array: s.array,
	}
}

// Take gathers the rows at indices into a new series. An index of -1 yields null.
func (s *Series[T]) Take(indices []int, mem memory.Allocator) (*Series[T], error) {
	values := make([]T, len(indices))
	valid := make([]bool, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= s.Len() {
			if idx != -1 {
				return nil, errors.NewInvalidInputError("Take",
					fmt.Sprintf("index %d out of bounds [0, %d)", idx, s.Len()))
			}
			continue
		}
		if s.array.IsValid(idx) {
			values[i] = s.Value(idx)
			valid[i] = true
		}
	}
	return NewNullable(s.name, values, valid, mem)
}

// FillNull returns a copy of the series with every null replaced by value
func (s *Series[T]) FillNull(value T, mem memory.Allocator) (*Series[T], error) {
	values := s.Values()
	for i := range values {
		if s.array.IsNull(i) {
			values[i] = value
		}
	}
	return NewSafe(s.name, values, mem)
}

// Release releases the underlying Arrow memory
func (s *Series[T]) Release() {
	if s.array != nil {
		s.array.Release()
	}
}
