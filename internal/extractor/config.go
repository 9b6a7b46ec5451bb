package extractor

import "time"

// Config contains configuration options controlling how the
// extractor service spawns and supervises the external tool.
type Config struct {
	// Path to the extractor binary. A bare name is resolved
	// against PATH when the command is spawned.
	BinaryPath string `yaml:"binary_path" env:"EXTRACTOR_BINARY_PATH" env-default:"yt-dlp"`

	// Hard ceiling on a metadata dump invocation. The child
	// process is killed once this is exceeded.
	MetadataTimeoutSeconds int `yaml:"metadata_timeout_seconds" env:"EXTRACTOR_METADATA_TIMEOUT_SECONDS" env-default:"30"`

	// Hard ceiling on a fetch-and-convert invocation. Downloads
	// involve a network transfer and a transcode, so this should
	// be considerably more generous than the metadata timeout.
	DownloadTimeoutSeconds int `yaml:"download_timeout_seconds" env:"EXTRACTOR_DOWNLOAD_TIMEOUT_SECONDS" env-default:"300"`

	// Controls how many extractor processes may run at once.
	// Requests beyond this limit wait for a slot, or give up
	// when their context is cancelled first.
	Parallelism int `yaml:"parallelism" env:"EXTRACTOR_PARALLELISM" env-default:"4"`
}

func (config *Config) MetadataTimeout() time.Duration {
	return time.Duration(config.MetadataTimeoutSeconds) * time.Second
}

func (config *Config) DownloadTimeout() time.Duration {
	return time.Duration(config.DownloadTimeoutSeconds) * time.Second
}
