package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/agbru/mpmatmul/internal/config"
	apperrors "github.com/agbru/mpmatmul/internal/errors"
	"github.com/agbru/mpmatmul/internal/logging"
	"github.com/agbru/mpmatmul/internal/ui"
)

// Application represents the mpmatmul application instance.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer
	// Logger receives diagnostics. New leaves it nil and Run builds one from
	// the configured level and format.
	Logger logging.Logger
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithLogger sets the logger used by the application instead of one built
// from the configuration.
func WithLogger(l logging.Logger) AppOption {
	return func(a *Application) { a.Logger = l }
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}

	programName := "mpmatmul"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		var cfgErr apperrors.ConfigError
		if errors.As(err, &cfgErr) {
			fmt.Fprintf(errWriter, "Error: %v\n", err)
		}
		return nil, err
	}

	app.Config = config.ApplyDefaults(cfg)
	return app, nil
}

// Run executes one product as configured and returns the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	ui.InitTheme(a.Config.NoColor)
	if a.Logger == nil {
		logger, err := a.newLogger()
		if err != nil {
			fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
			return apperrors.ExitErrorConfig
		}
		a.Logger = logger
	}
	return a.runProduct(ctx, out)
}

// newLogger builds the diagnostic logger on ErrWriter so that stdout only
// carries results.
func (a *Application) newLogger() (logging.Logger, error) {
	level, err := logging.ParseLevel(a.Config.LogLevel)
	if err != nil {
		return nil, apperrors.NewConfigError("--log-level: %v", err)
	}
	w := a.ErrWriter
	if w == nil {
		w = os.Stderr
	}
	if a.Config.LogFormat == config.LogFormatJSON {
		return logging.NewLogger(w, "mpmatmul").WithLevel(level), nil
	}
	return logging.NewConsoleLogger(w, "mpmatmul").WithLevel(level), nil
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
