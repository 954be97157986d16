package clean

import (
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/salesclean/internal/dataframe"
	"github.com/paveg/salesclean/internal/series"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultTextColumns are the free-text columns standardized by CleanText
var DefaultTextColumns = []string{"region", "channel", "segment", "category", "product", "city", "state"}

// CleanText trims each listed column that is present, collapses whitespace
// runs to one space and title-cases it. Nulls stay null and columns that are
// not text are rendered to text first.
func CleanText(df *dataframe.DataFrame, columns []string, mem memory.Allocator) (*dataframe.DataFrame, error) {
	caser := cases.Title(language.Und)
	result := df.Select(df.Columns()...)

	for _, name := range columns {
		col, exists := result.Column(name)
		if !exists {
			continue
		}

		values, valid := stringValues(col)
		for i, value := range values {
			if valid[i] {
				values[i] = caser.String(strings.Join(strings.Fields(value), " "))
			}
		}

		cleaned, err := series.NewNullable(name, values, valid, mem)
		if err != nil {
			result.Release()
			return nil, err
		}
		if result, err = replace(result, cleaned); err != nil {
			return nil, err
		}
	}

	return result, nil
}
