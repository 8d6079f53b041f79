// Package config handles YAML configuration parsing and validation.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dexbridge/dexscan/internal/bridge"
)

// Config represents the dexscan.yaml configuration file.
type Config struct {
	// SystemPrefixes are qualified-name prefixes excluded from the
	// output. When absent or empty, the built-in framework list
	// applies.
	SystemPrefixes []string `yaml:"system_prefixes,omitempty"`

	// Workers bounds concurrent DEX shard decodes. 0 decodes serially.
	Workers int `yaml:"workers,omitempty"`

	// VerifySignature adds the signing-certificate fingerprint to the
	// report. A verification failure is a warning, not a hard error;
	// class extraction does not depend on a valid signature.
	VerifySignature bool `yaml:"verify_signature,omitempty"`

	// Output is the report destination path. Empty writes to stdout.
	Output string `yaml:"output,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		SystemPrefixes: bridge.DefaultSystemPrefixes,
	}
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(cfg.SystemPrefixes) == 0 {
		cfg.SystemPrefixes = bridge.DefaultSystemPrefixes
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	return nil
}
