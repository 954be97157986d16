package clean

import (
	"cmp"
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/salesclean/internal/dataframe"
	"github.com/paveg/salesclean/internal/errors"
	"github.com/paveg/salesclean/internal/series"
)

// Strategy selects how an ImputeRule picks its fill value
type Strategy string

const (
	// StrategyMode fills with the most frequent non-null value
	StrategyMode Strategy = "mode"
	// StrategyConstant fills with a fixed text value
	StrategyConstant Strategy = "constant"
)

// UnknownValue is the default constant fill
const UnknownValue = "Unknown"

// ImputeRule fills the nulls of one column
type ImputeRule struct {
	Column   string
	Strategy Strategy
	// Value is the fill text for StrategyConstant
	Value string
}

// DefaultImputeRules fills segment with its mode and city with "Unknown"
func DefaultImputeRules() []ImputeRule {
	return []ImputeRule{
		{Column: "segment", Strategy: StrategyMode},
		{Column: "city", Strategy: StrategyConstant, Value: UnknownValue},
	}
}

// Impute applies each rule whose column is present and has nulls.
//
// The mode rule breaks ties by taking the smallest tied value, so the result
// does not depend on row order. A column with no non-null values has no mode
// and fails with a KindNoFillValue error.
func Impute(df *dataframe.DataFrame, rules []ImputeRule, mem memory.Allocator) (*dataframe.DataFrame, error) {
	result := df.Select(df.Columns()...)

	for _, rule := range rules {
		col, exists := result.Column(rule.Column)
		if !exists || col.NullCount() == 0 {
			continue
		}

		var filled dataframe.ISeries
		var err error
		switch rule.Strategy {
		case StrategyMode:
			filled, err = fillMode(col, mem)
		case StrategyConstant:
			filled, err = fillConstant(col, rule.Value, mem)
		default:
			err = errors.NewInvalidInputError("Impute", fmt.Sprintf("unknown strategy %q", rule.Strategy))
		}
		if err != nil {
			result.Release()
			return nil, err
		}

		if result, err = replace(result, filled); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func fillConstant(col dataframe.ISeries, value string, mem memory.Allocator) (dataframe.ISeries, error) {
	text, err := asStrings(col, mem)
	if err != nil {
		return nil, err
	}
	defer text.Release()
	return text.FillNull(value, mem)
}

func fillMode(col dataframe.ISeries, mem memory.Allocator) (dataframe.ISeries, error) {
	switch typed := col.(type) {
	case *series.Series[string]:
		return fillWithMode(typed, cmp.Compare[string], mem)
	case *series.Series[int64]:
		return fillWithMode(typed, cmp.Compare[int64], mem)
	case *series.Series[float64]:
		return fillWithMode(typed, cmp.Compare[float64], mem)
	case *series.Series[time.Time]:
		return fillWithMode(typed, time.Time.Compare, mem)
	default:
		err := errors.NewUnsupportedTypeError("Impute", col.DataType().String())
		err.Column = col.Name()
		return nil, err
	}
}

func fillWithMode[T comparable](s *series.Series[T], compare func(a, b T) int, mem memory.Allocator) (*series.Series[T], error) {
	value, ok := Mode(s, compare)
	if !ok {
		return nil, errors.NewNoFillValueError("Impute", s.Name())
	}
	return s.FillNull(value, mem)
}

// Mode returns the most frequent non-null value of s, taking the smallest
// value under compare when several tie. ok is false when s has no non-null values.
func Mode[T comparable](s *series.Series[T], compare func(a, b T) int) (mode T, ok bool) {
	counts := make(map[T]int)
	for i := 0; i < s.Len(); i++ {
		if !s.IsNull(i) {
			counts[s.Value(i)]++
		}
	}

	best := 0
	for value, n := range counts {
		if n > best || (n == best && compare(value, mode) < 0) {
			mode, best = value, n
		}
	}
	return mode, best > 0
}
