// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Debug   bool          `yaml:"debug"`
	Spindle SpindleConfig `yaml:"spindle"`
}

// ---- SPINDLE ----

type SpindleConfig struct {
	// Model selects the VFD driver (factory key, e.g. "BD600").
	Model string `yaml:"model"`

	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
	Address  uint8  `yaml:"address"`

	TimeoutMs      int `yaml:"timeout_ms"`
	PollIntervalMs int `yaml:"poll_interval_ms"`
	Retries        int `yaml:"retries"`
}

// Load reads and decodes a config file. Validation is separate.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	return &cfg, nil
}
