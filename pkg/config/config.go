// Package config loads the YAML configuration used by cmd/filekv: where
// the store lives on disk, the bucket fan-out, and the logging setup.
package config

import (
	"fmt"
	"os"

	"github.com/cuemby/filekv/pkg/log"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration document for a filekv store.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

// StoreConfig describes where and how the engine lays out its on-disk
// areas.
type StoreConfig struct {
	// Root is the directory the store is rooted at.
	Root string `yaml:"root"`

	// Buckets overrides the number of two-hex-character buckets
	// pre-created per area. Zero means use the engine default (256).
	Buckets int `yaml:"buckets,omitempty"`
}

// LoggingConfig describes the structured logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Root: "./filekv-data",
		},
		Logging: LoggingConfig{
			Level: string(log.InfoLevel),
			JSON:  false,
		},
	}
}

// Load reads and parses a YAML configuration file at path. Any field the
// file omits keeps its Default() value.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if cfg.Store.Root == "" {
		return Config{}, fmt.Errorf("config: store.root must not be empty")
	}

	return cfg, nil
}

// LogConfig translates the parsed logging section into a log.Config.
func (c Config) LogConfig() log.Config {
	level := log.Level(c.Logging.Level)
	switch level {
	case log.DebugLevel, log.InfoLevel, log.WarnLevel, log.ErrorLevel:
	default:
		level = log.InfoLevel
	}
	return log.Config{
		Level:      level,
		JSONOutput: c.Logging.JSON,
	}
}
