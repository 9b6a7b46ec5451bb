package scratch

import "time"

// Config controls where scratch artifacts live and how long they may
// linger before the janitor reaps them.
type Config struct {
	// The directory holding every scratch artifact. Validated (and
	// created if missing) on startup.
	Directory string `yaml:"directory" env:"SCRATCH_DIR" env-default:"/tmp/tiktok-downloader"`

	// Minimum age of a file before the janitor will remove it. This
	// must comfortably exceed the extractor's download deadline so
	// in-progress outputs are never reaped from under a handler.
	FileTTLSeconds int `yaml:"file_ttl_seconds" env:"SCRATCH_FILE_TTL_SECONDS" env-default:"900"`

	// Interval between periodic sweeps. Sweeps also run when the
	// directory sees new files, so this is a backstop rather than the
	// primary trigger.
	SweepIntervalSeconds int `yaml:"sweep_interval_seconds" env:"SCRATCH_SWEEP_INTERVAL_SECONDS" env-default:"300"`
}

func (config *Config) FileTTL() time.Duration {
	return time.Duration(config.FileTTLSeconds) * time.Second
}

func (config *Config) SweepInterval() time.Duration {
	return time.Duration(config.SweepIntervalSeconds) * time.Second
}
