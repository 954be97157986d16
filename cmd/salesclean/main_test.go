package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/paveg/salesclean/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--version"}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "salesclean")
	assert.Contains(t, stdout.String(), "Go Version:")
}

func TestRunWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sales.csv")
	require.NoError(t, os.WriteFile(input, []byte(testutil.MessySalesCSV), 0o600))
	outdir := filepath.Join(dir, "out")

	var stdout, stderr bytes.Buffer
	code := run([]string{"--input", input, "--outdir", outdir, "--report"}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "Saved:")
	for _, name := range []string{"cleaned_sales_data.csv", "summary_by_month.csv", "summary_by_region.csv", "cleaning_report.yaml"} {
		assert.FileExists(t, filepath.Join(outdir, name))
		assert.Contains(t, stdout.String(), filepath.Join(outdir, name))
	}
}

func TestRunConfigFileAndFlags(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sales.csv")
	require.NoError(t, os.WriteFile(input, []byte(testutil.MessySalesCSV), 0o600))
	configFile := filepath.Join(dir, "salesclean.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("format: parquet\nlog_format: json\n"), 0o600))

	var stdout, stderr bytes.Buffer
	code := run([]string{"--config", configFile, "--input", input, "--outdir", dir, "--log-level", "debug"}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.FileExists(t, filepath.Join(dir, "summary_by_region.parquet"))
	assert.Contains(t, stderr.String(), `"level":"DEBUG"`)
}

func TestRunFailures(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"unknown flag", []string{"--bogus"}, 2},
		{"missing input", []string{"--input", filepath.Join(dir, "missing.csv"), "--outdir", dir}, 1},
		{"bad format", []string{"--format", "xlsx"}, 1},
		{"missing config", []string{"--config", filepath.Join(dir, "missing.yaml")}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, tt.code, run(tt.args, &stdout, &stderr))
			assert.Empty(t, stdout.String())
		})
	}
}
