// Package clean implements the cleaning stages applied to a raw sales table:
// column-name normalization, text standardization, currency, date and unit
// coercion, imputation and derived-value recomputation.
//
// Every stage takes a DataFrame and returns a new one; the input is left
// untouched and must still be released by the caller.
package clean

import (
	"fmt"
	"strings"

	"github.com/paveg/salesclean/internal/dataframe"
)

// CanonicalName trims a header, lower-cases it and replaces spaces and
// hyphens with underscores. CanonicalName(CanonicalName(s)) == CanonicalName(s).
func CanonicalName(name string) string {
	canonical := strings.ToLower(strings.TrimSpace(name))
	canonical = strings.ReplaceAll(canonical, " ", "_")
	return strings.ReplaceAll(canonical, "-", "_")
}

// NormalizeColumns renames every column to its canonical name. When two
// headers collapse to the same name, later ones get a _1, _2, ... suffix.
func NormalizeColumns(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	columns := df.Columns()
	names := make([]string, len(columns))
	used := make(map[string]bool, len(columns))
	count := make(map[string]int, len(columns))

	for i, column := range columns {
		canonical := CanonicalName(column)
		name := canonical
		for used[name] {
			count[canonical]++
			name = fmt.Sprintf("%s_%d", canonical, count[canonical])
		}
		used[name] = true
		names[i] = name
	}

	return df.RenameAll(names)
}
