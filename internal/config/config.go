// Package config parses and validates the command-line configuration of the
// mpmatmul driver.
package config

import (
	"flag"
	"io"
	"time"

	apperrors "github.com/agbru/mpmatmul/internal/errors"
	"github.com/agbru/mpmatmul/internal/logging"
)

// EnvPrefix prefixes every environment variable that can override a flag.
const EnvPrefix = "MATMUL_"

const (
	DefaultDimension = 64
	DefaultSeed      = 1
	DefaultTimeout   = 5 * time.Minute
	DefaultTolerance = 1e-9
	DefaultLogLevel  = "info"
	DefaultLogFormat = LogFormatConsole
)

const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// AppConfig is the complete configuration of one run.
type AppConfig struct {
	// M, N and P are the shapes of A (M×N) and B (N×P) when the operands
	// are generated rather than loaded.
	M, N, P int
	// Workers is the number of worker ranks; the group has Workers+1 ranks.
	// Zero selects EstimateDefaultWorkers.
	Workers int
	// Seed drives the generator for random operands.
	Seed uint64
	// InputFile, when set, supplies A and B as JSON instead of generating them.
	InputFile string
	// OutputFile, when set, receives the product.
	OutputFile string
	Timeout    time.Duration
	// Verify compares the product against an independent reference.
	Verify    bool
	Tolerance float64
	// ShowMatrix prints the product (truncated for large results).
	ShowMatrix bool
	Quiet      bool
	Verbose    bool
	NoColor    bool
	LogLevel   string
	LogFormat  string
	// MetricsAddr is served only for the lifetime of the product.
	MetricsAddr string
}

// ParseConfig parses args into an AppConfig, applies environment overrides
// for flags not given on the command line and validates the result. Usage
// and flag syntax errors are written to errWriter by the flag package;
// flag.ErrHelp is returned as is when help was requested.
func ParseConfig(programName string, args []string, errWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)

	var cfg AppConfig
	fs.IntVar(&cfg.M, "m", DefaultDimension, "Rows of A.")
	fs.IntVar(&cfg.N, "n", DefaultDimension, "Columns of A and rows of B.")
	fs.IntVar(&cfg.P, "p", DefaultDimension, "Columns of B.")
	fs.IntVar(&cfg.Workers, "workers", 0, "Worker ranks (0 = one per spare CPU).")
	fs.IntVar(&cfg.Workers, "w", 0, "Shorthand for --workers.")
	fs.Uint64Var(&cfg.Seed, "seed", DefaultSeed, "Seed for the random operands.")
	fs.StringVar(&cfg.InputFile, "input", "", "JSON file holding the operands {\"a\": [[...]], \"b\": [[...]]}.")
	fs.StringVar(&cfg.InputFile, "i", "", "Shorthand for --input.")
	fs.StringVar(&cfg.OutputFile, "output", "", "Write the product to this file.")
	fs.StringVar(&cfg.OutputFile, "o", "", "Shorthand for --output.")
	fs.DurationVar(&cfg.Timeout, "timeout", DefaultTimeout, "Abort the product after this long.")
	fs.BoolVar(&cfg.Verify, "verify", true, "Check the product against a sequential reference.")
	fs.Float64Var(&cfg.Tolerance, "tolerance", DefaultTolerance, "Absolute/relative tolerance used by --verify.")
	fs.BoolVar(&cfg.ShowMatrix, "show", false, "Print the product matrix.")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Print only the product (implies no progress).")
	fs.BoolVar(&cfg.Quiet, "q", false, "Shorthand for --quiet.")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Print run statistics after the product.")
	fs.BoolVar(&cfg.Verbose, "v", false, "Shorthand for --verbose.")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Disable coloured output.")
	fs.StringVar(&cfg.LogLevel, "log-level", DefaultLogLevel, "Log level: debug, info, warn, error.")
	fs.StringVar(&cfg.LogFormat, "log-format", DefaultLogFormat, "Log format: console or json.")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while the product runs. The server stops when the product finishes.")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected argument %q", fs.Arg(0))
	}

	applyEnvOverrides(&cfg, fs)

	if cfg.InputFile != "" && isFlagSetAny(fs, "m", "n", "p") {
		return AppConfig{}, apperrors.NewConfigError("--input cannot be combined with -m, -n or -p")
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks value ranges. It returns a ConfigError for the first
// offending field.
func (c AppConfig) Validate() error {
	switch {
	case c.M < 0 || c.N < 0 || c.P < 0:
		return apperrors.NewConfigError("dimensions must be non-negative, got m=%d n=%d p=%d", c.M, c.N, c.P)
	case c.Workers < 0:
		return apperrors.NewConfigError("--workers must be non-negative, got %d", c.Workers)
	case c.Timeout <= 0:
		return apperrors.NewConfigError("--timeout must be positive, got %s", c.Timeout)
	case c.Tolerance < 0:
		return apperrors.NewConfigError("--tolerance must be non-negative, got %g", c.Tolerance)
	case c.LogFormat != LogFormatConsole && c.LogFormat != LogFormatJSON:
		return apperrors.NewConfigError("--log-format must be %q or %q, got %q", LogFormatConsole, LogFormatJSON, c.LogFormat)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return apperrors.NewConfigError("--log-level: %v", err)
	}
	return nil
}
