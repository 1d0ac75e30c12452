// This file contains the environment variable overrides.

package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// isFlagSet checks if a flag was explicitly set on the command line.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny checks if any of the specified flags were explicitly set.
// Aliased flags list both the short and long form.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// envOverride maps an env key (without the MATMUL_ prefix) to the flag
// name(s) it shadows and a function that applies the value. Values that
// fail to parse are ignored and the flag default stands.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string)
}

func intOverride(key string, flags []string, field func(*AppConfig) *int) envOverride {
	return envOverride{key, flags, func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			*field(c) = parsed
		}
	}}
}

func boolOverride(key string, flags []string, field func(*AppConfig) *bool) envOverride {
	return envOverride{key, flags, func(c *AppConfig, v string) {
		*field(c) = parseBoolEnv(v, *field(c))
	}}
}

func stringOverride(key string, flags []string, field func(*AppConfig) *string) envOverride {
	return envOverride{key, flags, func(c *AppConfig, v string) {
		*field(c) = v
	}}
}

// envOverrides is the declarative table of all environment overrides.
var envOverrides = []envOverride{
	// Numeric overrides
	intOverride("M", []string{"m"}, func(c *AppConfig) *int { return &c.M }),
	intOverride("N", []string{"n"}, func(c *AppConfig) *int { return &c.N }),
	intOverride("P", []string{"p"}, func(c *AppConfig) *int { return &c.P }),
	intOverride("WORKERS", []string{"workers", "w"}, func(c *AppConfig) *int { return &c.Workers }),
	{"SEED", []string{"seed"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}},
	{"TOLERANCE", []string{"tolerance"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			c.Tolerance = parsed
		}
	}},

	// Duration overrides
	{"TIMEOUT", []string{"timeout"}, func(c *AppConfig, v string) {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.Timeout = parsed
		}
	}},

	// String overrides
	stringOverride("INPUT", []string{"input", "i"}, func(c *AppConfig) *string { return &c.InputFile }),
	stringOverride("OUTPUT", []string{"output", "o"}, func(c *AppConfig) *string { return &c.OutputFile }),
	stringOverride("LOG_LEVEL", []string{"log-level"}, func(c *AppConfig) *string { return &c.LogLevel }),
	stringOverride("LOG_FORMAT", []string{"log-format"}, func(c *AppConfig) *string { return &c.LogFormat }),
	stringOverride("METRICS_ADDR", []string{"metrics-addr"}, func(c *AppConfig) *string { return &c.MetricsAddr }),

	// Boolean overrides
	boolOverride("VERIFY", []string{"verify"}, func(c *AppConfig) *bool { return &c.Verify }),
	boolOverride("SHOW", []string{"show"}, func(c *AppConfig) *bool { return &c.ShowMatrix }),
	boolOverride("QUIET", []string{"quiet", "q"}, func(c *AppConfig) *bool { return &c.Quiet }),
	boolOverride("VERBOSE", []string{"verbose", "v"}, func(c *AppConfig) *bool { return &c.Verbose }),
	boolOverride("NO_COLOR", []string{"no-color"}, func(c *AppConfig) *bool { return &c.NoColor }),
}

// parseBoolEnv parses a boolean environment variable value.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
// Returns defaultVal if the value is not recognized.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
// This implements the priority: CLI flags > Environment variables > Defaults.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.envKey); val != "" {
			o.apply(config, val)
		}
	}
}
