package internal

import (
	"fmt"

	"github.com/bayhackplis1/Tiktok-Downloader-V4/internal/api"
	"github.com/bayhackplis1/Tiktok-Downloader-V4/internal/extractor"
	"github.com/bayhackplis1/Tiktok-Downloader-V4/internal/scratch"
	"github.com/ilyakaznacheev/cleanenv"
)

// DownloaderConfig is the struct used to contain the various user
// config, supplied by file and/or environment variables.
type DownloaderConfig struct {
	API       api.RestConfig   `yaml:"api"`
	Extractor extractor.Config `yaml:"extractor"`
	Scratch   scratch.Config   `yaml:"scratch"`
}

// LoadFromFile loads a configuration file formatted in YAML in to a
// DownloaderConfig struct. Environment variables take precedence over
// the file contents.
func (config *DownloaderConfig) LoadFromFile(configPath string) error {
	if err := cleanenv.ReadConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	}

	return nil
}

// LoadFromEnvironment populates the config from environment variables
// alone, falling back to the defaults declared on each field.
func (config *DownloaderConfig) LoadFromEnvironment() error {
	if err := cleanenv.ReadEnv(config); err != nil {
		return fmt.Errorf("failed to load configuration from environment: %w", err)
	}

	return nil
}
