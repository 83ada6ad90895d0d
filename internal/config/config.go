package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config interface {
	EnvConfig
	APIConfig
	FeedConfig
	StorageConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars `yaml:"app"`
	API     `yaml:"api"`
	Feed    `yaml:"feed"`
	Storage `yaml:"storage"`
}

var _ Config = (*mainConfig)(nil)

// New reads the configuration from environment variables, applying defaults.
func New() (Config, error) {
	var c mainConfig
	if err := cleanenv.ReadEnv(&c); err != nil {
		return nil, fmt.Errorf("[config.New] reading environment: %w", err)
	}
	return &c, nil
}

// Load reads a YAML configuration file. Environment variables override the file.
func Load(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("[config.Load] config file not found: %w", err)
	}

	var c mainConfig
	if err := cleanenv.ReadConfig(path, &c); err != nil {
		return nil, fmt.Errorf("[config.Load] reading %s: %w", path, err)
	}
	return &c, nil
}

// Usage describes every supported environment variable.
func Usage() string {
	var c mainConfig
	text, err := cleanenv.GetDescription(&c, nil)
	if err != nil {
		return ""
	}
	return text
}
