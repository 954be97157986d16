package clean

import (
	"math"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/salesclean/internal/dataframe"
	"github.com/paveg/salesclean/internal/series"
	"github.com/shopspring/decimal"
)

// DefaultCurrencyColumns are the money columns converted by ParseCurrency
var DefaultCurrencyColumns = []string{"unit_price", "revenue", "cost", "profit"}

// missingText is what a null cell renders as before currency parsing
const missingText = "nan"

// ParseAmount strips dollar signs and thousands separators from text and
// parses the rest as a number. ok is false for "nan", for anything that
// does not parse and for magnitudes a float64 cannot hold.
func ParseAmount(text string) (decimal.Decimal, bool) {
	text = strings.ReplaceAll(text, "$", "")
	text = strings.ReplaceAll(text, ",", "")
	text = strings.TrimSpace(text)
	if text == missingText {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(text)
	if err != nil || math.IsInf(amount.InexactFloat64(), 0) {
		return decimal.Zero, false
	}
	return amount, true
}

// ParseCurrency converts each listed column that is present to nullable
// float64. Cells are rendered to text first so numeric and text columns take
// the same path; cells that fail to parse become null.
func ParseCurrency(df *dataframe.DataFrame, columns []string, mem memory.Allocator) (*dataframe.DataFrame, error) {
	result := df.Select(df.Columns()...)

	for _, name := range columns {
		col, exists := result.Column(name)
		if !exists {
			continue
		}

		values := make([]float64, col.Len())
		valid := make([]bool, col.Len())
		for i := range values {
			text := missingText
			if !col.IsNull(i) {
				text = col.GetAsString(i)
			}
			if amount, ok := ParseAmount(text); ok {
				values[i] = amount.InexactFloat64()
				valid[i] = true
			}
		}

		parsed, err := series.NewNullable(name, values, valid, mem)
		if err != nil {
			result.Release()
			return nil, err
		}
		if result, err = replace(result, parsed); err != nil {
			return nil, err
		}
	}

	return result, nil
}
