package config

import "runtime"

// ApplyDefaults fills in values that depend on the host. Explicit settings
// are preserved.
func ApplyDefaults(cfg AppConfig) AppConfig {
	if cfg.Workers == 0 {
		cfg.Workers = EstimateDefaultWorkers()
	}
	return cfg
}

// EstimateDefaultWorkers returns one worker per CPU beyond the one taken by
// the coordinator, and never fewer than one.
func EstimateDefaultWorkers() int {
	return max(runtime.NumCPU()-1, 1)
}
