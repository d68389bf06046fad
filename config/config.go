// Package config loads an optional YAML document that overrides the
// interpreter's runtime defaults, the way a production CLI built from
// this interpreter would let an operator tune it without a rebuild.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RunConfig is the shape of a `--config path.yaml` document.
type RunConfig struct {
	MaxCallDepth     int      `yaml:"max_call_depth"`
	DisabledBuiltins []string `yaml:"disabled_builtins"`
	Prompt           string   `yaml:"prompt"`
	Banner           string   `yaml:"banner"`
}

// Default returns the configuration used when no file is supplied.
func Default() RunConfig {
	return RunConfig{MaxCallDepth: 1000, Prompt: "lumen> "}
}

// Load reads and parses a YAML config file, filling in zero fields from
// Default so a partial document is valid.
func Load(path string) (RunConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if cfg.MaxCallDepth == 0 {
		cfg.MaxCallDepth = 1000
	}
	if cfg.Prompt == "" {
		cfg.Prompt = "lumen> "
	}
	return cfg, nil
}
