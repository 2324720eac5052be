// Package config loads the optional armcc.yaml project file the CLI
// consults before applying command-line flag overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is armcc.yaml's shape: a target placeholder (this module never
// emits real machine code, only the MC IR described in internal/mc, but a
// real toolchain driver still carries the field), an optimisation-disabled
// flag (true by default; no optimisation passes run over the IR or MC, and
// nothing reads the flag), and a default verbosity level.
type Config struct {
	Target      string `yaml:"target"`
	OptDisabled bool   `yaml:"opt_disabled"`
	Verbose     bool   `yaml:"verbose"`
}

// Default returns the configuration used when no armcc.yaml is present.
func Default() *Config {
	return &Config{Target: "arm-eabi", OptDisabled: true}
}

// Load reads and parses path, returning Default() unchanged if path does
// not exist (an armcc.yaml is always optional).
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}
