package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/paveg/salesclean"
	"github.com/paveg/salesclean/internal/config"
	"github.com/paveg/salesclean/internal/version"
)

func customUsage() {
	fmt.Fprintf(os.Stderr, "salesclean (version %s)\n\n", version.Version)
	fmt.Fprintf(os.Stderr, "Cleans a messy sales CSV and writes the cleaned table with month and region summaries.\n\n")
	fmt.Fprintf(os.Stderr, "Usage: salesclean [options]\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	fmt.Fprintf(os.Stderr, "  --input PATH\n\t\tInput CSV or Parquet file (default: %s)\n", config.DefaultInput)
	fmt.Fprintf(os.Stderr, "  --outdir DIR\n\t\tOutput folder (default: %s)\n", config.DefaultOutDir)
	fmt.Fprintf(os.Stderr, "  --format csv|parquet\n\t\tOutput format (default: csv)\n")
	fmt.Fprintf(os.Stderr, "  --config PATH\n\t\tYAML or JSON configuration file\n")
	fmt.Fprintf(os.Stderr, "  --env-file PATH\n\t\tLoad SALESCLEAN_* variables from a .env file\n")
	fmt.Fprintf(os.Stderr, "  --report\n\t\tAlso write %s\n", salesclean.ReportName)
	fmt.Fprintf(os.Stderr, "  --log-level LEVEL\n\t\tdebug, info, warn or error (default: info)\n")
	fmt.Fprintf(os.Stderr, "  -v, --version\n\t\tPrint version information and exit\n")
	fmt.Fprintf(os.Stderr, "  -h, --help\n\t\tShow this help message and exit\n")
}

type options struct {
	version  bool
	input    string
	outdir   string
	format   string
	config   string
	envFile  string
	report   bool
	logLevel string
	set      map[string]bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("salesclean", flag.ContinueOnError)
	fs.Usage = customUsage

	fs.BoolVar(&opts.version, "v", false, "Print version and exit")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")
	fs.StringVar(&opts.input, "input", config.DefaultInput, "Path to input file")
	fs.StringVar(&opts.outdir, "outdir", config.DefaultOutDir, "Output folder")
	fs.StringVar(&opts.format, "format", config.FormatCSV, "Output format")
	fs.StringVar(&opts.config, "config", "", "Configuration file")
	fs.StringVar(&opts.envFile, "env-file", "", "Environment file")
	fs.BoolVar(&opts.report, "report", false, "Write the cleaning report")
	fs.StringVar(&opts.logLevel, "log-level", config.DefaultLogLevel, "Log level")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// apply overrides cfg with the flags given on the command line
func (o options) apply(cfg config.Config) config.Config {
	if o.set["input"] {
		cfg.Input = o.input
	}
	if o.set["outdir"] {
		cfg.OutDir = o.outdir
	}
	if o.set["format"] {
		cfg.Format = o.format
	}
	if o.set["report"] {
		cfg.Report = o.report
	}
	if o.set["log-level"] {
		cfg.LogLevel = o.logLevel
	}
	return cfg
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args)
	if err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if opts.version {
		fmt.Fprint(stdout, version.Info().String())
		return 0
	}

	cfg, err := config.Load(config.LoadOptions{File: opts.config, EnvFile: opts.envFile})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	cfg = opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logger := newLogger(cfg, stderr)
	paths, err := salesclean.Run(cfg, logger)
	if err != nil {
		logger.Error("run failed", "error", err)
		return 1
	}

	fmt.Fprintln(stdout, "Saved:")
	for _, path := range paths {
		fmt.Fprintln(stdout, " -", path)
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
