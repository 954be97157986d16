// Package config provides configuration for a cleaning run. Values come
// from defaults, then an optional YAML or JSON file, then SALESCLEAN_*
// environment variables (optionally loaded from a .env file).
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/paveg/salesclean/internal/clean"
	"github.com/paveg/salesclean/internal/io"
	"github.com/paveg/salesclean/internal/summary"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by LoadFromEnv
const EnvPrefix = "SALESCLEAN"

// Output formats
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// Config represents the configuration of one cleaning run
type Config struct {
	// Input and output
	Input       string   `json:"input" yaml:"input" envconfig:"INPUT" validate:"required"`
	OutDir      string   `json:"outdir" yaml:"outdir" envconfig:"OUTDIR" validate:"required"`
	Format      string   `json:"format" yaml:"format" envconfig:"FORMAT" validate:"oneof=csv parquet"`
	Compression string   `json:"compression" yaml:"compression" envconfig:"COMPRESSION" validate:"oneof=snappy gzip lz4 zstd uncompressed"`
	Delimiter   string   `json:"delimiter" yaml:"delimiter" envconfig:"DELIMITER" validate:"len=1"`
	NullValues  []string `json:"null_values" yaml:"null_values" envconfig:"NULL_VALUES"`

	// Cleaning
	TextColumns     []string `json:"text_columns" yaml:"text_columns" envconfig:"TEXT_COLUMNS"`
	CurrencyColumns []string `json:"currency_columns" yaml:"currency_columns" envconfig:"CURRENCY_COLUMNS"`
	DateColumn      string   `json:"date_column" yaml:"date_column" envconfig:"DATE_COLUMN" validate:"required"`
	DateLayouts     []string `json:"date_layouts" yaml:"date_layouts" envconfig:"DATE_LAYOUTS"`
	UnitsColumn     string   `json:"units_column" yaml:"units_column" envconfig:"UNITS_COLUMN" validate:"required"`

	// Imputation
	ModeColumns    []string `json:"mode_columns" yaml:"mode_columns" envconfig:"MODE_COLUMNS"`
	UnknownColumns []string `json:"unknown_columns" yaml:"unknown_columns" envconfig:"UNKNOWN_COLUMNS"`
	UnknownValue   string   `json:"unknown_value" yaml:"unknown_value" envconfig:"UNKNOWN_VALUE" validate:"required"`

	// Summaries
	MissingMonthLabel string `json:"missing_month_label" yaml:"missing_month_label" envconfig:"MISSING_MONTH_LABEL" validate:"required"`

	// Diagnostics
	LogLevel  string `json:"log_level" yaml:"log_level" envconfig:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat string `json:"log_format" yaml:"log_format" envconfig:"LOG_FORMAT" validate:"oneof=text json"`
	Report    bool   `json:"report" yaml:"report" envconfig:"REPORT"`
}

// Default configuration values
const (
	DefaultInput       = "messy_sales_data.csv"
	DefaultOutDir      = "."
	DefaultCompression = "snappy"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

// NewConfig creates a new configuration with default values
func NewConfig() Config {
	return Config{
		Input:             DefaultInput,
		OutDir:            DefaultOutDir,
		Format:            FormatCSV,
		Compression:       DefaultCompression,
		Delimiter:         ",",
		NullValues:        append([]string(nil), io.DefaultNullValues...),
		TextColumns:       append([]string(nil), clean.DefaultTextColumns...),
		CurrencyColumns:   append([]string(nil), clean.DefaultCurrencyColumns...),
		DateColumn:        "order_date",
		DateLayouts:       append([]string(nil), clean.DefaultDateLayouts...),
		UnitsColumn:       clean.ColumnUnits,
		ModeColumns:       []string{"segment"},
		UnknownColumns:    []string{"city"},
		UnknownValue:      clean.UnknownValue,
		MissingMonthLabel: summary.DefaultMissingMonthLabel,
		LogLevel:          DefaultLogLevel,
		LogFormat:         DefaultLogFormat,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// WithDefaults returns a copy with default values filled in for empty
// scalar fields. Lists and booleans are kept as given, so an explicitly
// empty list stays empty.
func (c Config) WithDefaults() Config {
	defaults := NewConfig()

	fill := func(value *string, def string) {
		if *value == "" {
			*value = def
		}
	}
	fill(&c.Input, defaults.Input)
	fill(&c.OutDir, defaults.OutDir)
	fill(&c.Format, defaults.Format)
	fill(&c.Compression, defaults.Compression)
	fill(&c.Delimiter, defaults.Delimiter)
	fill(&c.DateColumn, defaults.DateColumn)
	fill(&c.UnitsColumn, defaults.UnitsColumn)
	fill(&c.UnknownValue, defaults.UnknownValue)
	fill(&c.MissingMonthLabel, defaults.MissingMonthLabel)
	fill(&c.LogLevel, defaults.LogLevel)
	fill(&c.LogFormat, defaults.LogFormat)

	return c
}

// LoadFromFile loads configuration from a JSON or YAML file. Keys the file
// does not mention keep their default values.
func LoadFromFile(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", filename, err)
	}

	config := NewConfig()
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".json":
		err = json.Unmarshal(data, &config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", filename, err)
	}

	return config.WithDefaults(), nil
}

// LoadFromEnv overlays SALESCLEAN_* environment variables onto base.
// Variables that are not set leave the base value in place; lists are
// comma-separated.
func LoadFromEnv(base Config) (Config, error) {
	if err := envconfig.Process(EnvPrefix, &base); err != nil {
		return Config{}, fmt.Errorf("loading config from env: %w", err)
	}
	return base, nil
}

// LoadDotEnv sets variables from a .env file. Variables already present in
// the environment win.
func LoadDotEnv(filename string) error {
	if err := godotenv.Load(filename); err != nil {
		return fmt.Errorf("loading env file %s: %w", filename, err)
	}
	return nil
}

// LoadOptions names the optional sources Load reads
type LoadOptions struct {
	File    string
	EnvFile string
}

// Load builds a validated configuration: defaults, then File, then the
// environment (after loading EnvFile into it).
func Load(opts LoadOptions) (Config, error) {
	config := NewConfig()

	if opts.File != "" {
		fromFile, err := LoadFromFile(opts.File)
		if err != nil {
			return Config{}, err
		}
		config = fromFile
	}

	if opts.EnvFile != "" {
		if err := LoadDotEnv(opts.EnvFile); err != nil {
			return Config{}, err
		}
	}

	config, err := LoadFromEnv(config)
	if err != nil {
		return Config{}, err
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// CSVOptions returns the reader and writer options for this configuration
func (c Config) CSVOptions() io.CSVOptions {
	options := io.DefaultCSVOptions()
	if c.Delimiter != "" {
		options.Delimiter = []rune(c.Delimiter)[0]
	}
	options.NullValues = append([]string(nil), c.NullValues...)
	return options
}

// ParquetOptions returns the Parquet writer options for this configuration
func (c Config) ParquetOptions() io.ParquetOptions {
	options := io.DefaultParquetOptions()
	options.Compression = c.Compression
	return options
}

// CleanOptions returns the cleaning options for this configuration
func (c Config) CleanOptions() clean.Options {
	options := clean.DefaultOptions()
	options.TextColumns = append([]string(nil), c.TextColumns...)
	options.CurrencyColumns = append([]string(nil), c.CurrencyColumns...)
	options.DateColumn = c.DateColumn
	options.DateLayouts = append([]string(nil), c.DateLayouts...)
	options.UnitsColumn = c.UnitsColumn

	rules := make([]clean.ImputeRule, 0, len(c.ModeColumns)+len(c.UnknownColumns))
	for _, column := range c.ModeColumns {
		rules = append(rules, clean.ImputeRule{Column: column, Strategy: clean.StrategyMode})
	}
	for _, column := range c.UnknownColumns {
		rules = append(rules, clean.ImputeRule{Column: column, Strategy: clean.StrategyConstant, Value: c.UnknownValue})
	}
	options.ImputeRules = rules
	return options
}

// SummaryOptions returns the summary options for this configuration
func (c Config) SummaryOptions() summary.Options {
	options := summary.DefaultOptions()
	options.MissingMonthLabel = c.MissingMonthLabel
	return options
}

// SlogLevel maps LogLevel to a slog level; unknown names map to info
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
