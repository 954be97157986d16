package dataframe

import (
	"time"
)

// OperationTrace records one traced pipeline stage
type OperationTrace struct {
	Operation string         `json:"operation" yaml:"operation"`
	Input     DataFrameStats `json:"input" yaml:"input"`
	Output    DataFrameStats `json:"output" yaml:"output"`
	Duration  time.Duration  `json:"duration" yaml:"duration"`
	Failed    bool           `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// DataFrameStats contains statistics about a DataFrame
type DataFrameStats struct {
	Rows    int      `json:"rows" yaml:"rows"`
	Columns int      `json:"columns" yaml:"columns"`
	Nulls   int      `json:"nulls" yaml:"nulls"`
	Schema  []string `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// TraceSummary aggregates the recorded traces
type TraceSummary struct {
	TotalOperations  int           `json:"total_operations" yaml:"total_operations"`
	TotalDuration    time.Duration `json:"total_duration" yaml:"total_duration"`
	SlowestOperation string        `json:"slowest_operation,omitempty" yaml:"slowest_operation,omitempty"`
}

// Tracer records the stages a table passes through
type Tracer struct {
	operations []OperationTrace
}

// NewTracer creates an empty tracer
func NewTracer() *Tracer {
	return &Tracer{operations: make([]OperationTrace, 0)}
}

// Trace runs fn, recording the shape of input and of the frame fn returns
func (t *Tracer) Trace(op string, input *DataFrame, fn func() (*DataFrame, error)) (*DataFrame, error) {
	trace := OperationTrace{
		Operation: op,
		Input:     captureStats(input),
	}

	start := time.Now()
	result, err := fn()
	trace.Duration = time.Since(start)
	trace.Failed = err != nil

	if result != nil {
		trace.Output = captureStats(result)
	}

	t.operations = append(t.operations, trace)
	return result, err
}

// Operations returns the recorded traces in execution order
func (t *Tracer) Operations() []OperationTrace {
	return append([]OperationTrace(nil), t.operations...)
}

// Summary totals the recorded traces
func (t *Tracer) Summary() TraceSummary {
	summary := TraceSummary{TotalOperations: len(t.operations)}
	var slowest time.Duration
	for _, op := range t.operations {
		summary.TotalDuration += op.Duration
		if op.Duration >= slowest {
			slowest = op.Duration
			summary.SlowestOperation = op.Operation
		}
	}
	return summary
}

func captureStats(df *DataFrame) DataFrameStats {
	if df == nil {
		return DataFrameStats{}
	}
	return DataFrameStats{
		Rows:    df.Len(),
		Columns: df.Width(),
		Nulls:   df.NullCount(),
		Schema:  df.Columns(),
	}
}
