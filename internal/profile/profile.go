// Package profile summarizes what a cleaning run did to each column: how many
// values were missing before and after, how many were dropped as unparsable
// or filled in, and the distribution of numeric columns.
package profile

import (
	"fmt"
	"io"
	"math"

	"github.com/montanaflynn/stats"
	"github.com/paveg/salesclean/internal/clean"
	"github.com/paveg/salesclean/internal/dataframe"
	"github.com/paveg/salesclean/internal/series"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"
)

// Report describes one cleaning run
type Report struct {
	Version    string                     `yaml:"version,omitempty" json:"version,omitempty"`
	InputRows  int                        `yaml:"input_rows" json:"input_rows"`
	OutputRows int                        `yaml:"output_rows" json:"output_rows"`
	Columns    []ColumnProfile            `yaml:"columns" json:"columns"`
	Stages     []dataframe.OperationTrace `yaml:"stages,omitempty" json:"stages,omitempty"`
	Trace      dataframe.TraceSummary     `yaml:"trace" json:"trace"`
	Summaries  map[string]int             `yaml:"summary_rows,omitempty" json:"summary_rows,omitempty"`
}

// ColumnProfile compares one column before and after cleaning
type ColumnProfile struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type" json:"type"`
	// Added is set for columns the pipeline created
	Added       bool `yaml:"added,omitempty" json:"added,omitempty"`
	NullsBefore int  `yaml:"nulls_before" json:"nulls_before"`
	NullsAfter  int  `yaml:"nulls_after" json:"nulls_after"`
	// Coerced counts values present in the input that cleaning turned into nulls
	Coerced int `yaml:"coerced" json:"coerced"`
	// Filled counts nulls in the input that cleaning gave a value
	Filled  int             `yaml:"filled" json:"filled"`
	Numeric *NumericProfile `yaml:"numeric,omitempty" json:"numeric,omitempty"`
}

// NumericProfile describes the non-null values of a numeric column
type NumericProfile struct {
	Count    int     `yaml:"count" json:"count"`
	Sum      float64 `yaml:"sum" json:"sum"`
	Min      float64 `yaml:"min" json:"min"`
	Max      float64 `yaml:"max" json:"max"`
	Mean     float64 `yaml:"mean" json:"mean"`
	Median   float64 `yaml:"median" json:"median"`
	StdDev   float64 `yaml:"std_dev" json:"std_dev"`
	Skewness float64 `yaml:"skewness,omitempty" json:"skewness,omitempty"`
}

// Build compares raw with cleaned. Raw columns are matched to cleaned ones
// by canonical name. tracer may be nil.
func Build(raw, cleaned *dataframe.DataFrame, tracer *dataframe.Tracer) (*Report, error) {
	normalized, err := clean.NormalizeColumns(raw)
	if err != nil {
		return nil, fmt.Errorf("normalizing raw columns: %w", err)
	}
	defer normalized.Release()

	report := &Report{
		InputRows:  raw.Len(),
		OutputRows: cleaned.Len(),
		Columns:    make([]ColumnProfile, 0, cleaned.Width()),
	}
	if tracer != nil {
		report.Stages = tracer.Operations()
		report.Trace = tracer.Summary()
	}

	for _, name := range cleaned.Columns() {
		after, _ := cleaned.Column(name)
		profile := ColumnProfile{
			Name:       name,
			Type:       after.DataType().String(),
			NullsAfter: after.NullCount(),
		}

		before, exists := normalized.Column(name)
		if !exists || before.Len() != after.Len() {
			profile.Added = true
		} else {
			profile.NullsBefore = before.NullCount()
			for i := 0; i < after.Len(); i++ {
				switch {
				case !before.IsNull(i) && after.IsNull(i):
					profile.Coerced++
				case before.IsNull(i) && !after.IsNull(i):
					profile.Filled++
				}
			}
		}

		numeric, err := profileNumeric(after)
		if err != nil {
			return nil, fmt.Errorf("profiling column %s: %w", name, err)
		}
		profile.Numeric = numeric

		report.Columns = append(report.Columns, profile)
	}

	return report, nil
}

// AddSummary records the row count of a summary table
func (r *Report) AddSummary(name string, df *dataframe.DataFrame) {
	if r.Summaries == nil {
		r.Summaries = make(map[string]int)
	}
	r.Summaries[name] = df.Len()
}

// Column returns the profile of the named column
func (r *Report) Column(name string) (ColumnProfile, bool) {
	for _, c := range r.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnProfile{}, false
}

// WriteYAML writes the report as YAML
func (r *Report) WriteYAML(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return encoder.Close()
}

func profileNumeric(col dataframe.ISeries) (*NumericProfile, error) {
	var data stats.Float64Data
	switch typed := col.(type) {
	case *series.Series[float64]:
		for i := 0; i < typed.Len(); i++ {
			if !typed.IsNull(i) {
				data = append(data, typed.Value(i))
			}
		}
	case *series.Series[int64]:
		for i := 0; i < typed.Len(); i++ {
			if !typed.IsNull(i) {
				data = append(data, float64(typed.Value(i)))
			}
		}
	default:
		return nil, nil
	}
	if len(data) == 0 {
		return &NumericProfile{}, nil
	}

	profile := &NumericProfile{Count: len(data)}
	var err error
	if profile.Sum, err = stats.Sum(data); err != nil {
		return nil, err
	}
	if profile.Min, err = stats.Min(data); err != nil {
		return nil, err
	}
	if profile.Max, err = stats.Max(data); err != nil {
		return nil, err
	}
	if profile.Mean, err = stats.Mean(data); err != nil {
		return nil, err
	}
	if profile.Median, err = stats.Median(data); err != nil {
		return nil, err
	}
	if profile.StdDev, err = stats.StandardDeviation(data); err != nil {
		return nil, err
	}
	if skew := stat.Skew(data, nil); !math.IsNaN(skew) && !math.IsInf(skew, 0) {
		profile.Skewness = skew
	}
	return profile, nil
}
