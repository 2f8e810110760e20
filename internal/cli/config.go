package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the CLI configuration file, YAML at ~/.hangouts/config.yaml
// by default.
type Config struct {
	// Store is the SQLite database path.
	Store string `yaml:"store"`

	Identity struct {
		// Key is the hex-encoded secp256k1 private key of the active
		// identity. Generated on first use when empty.
		Key string `yaml:"key"`
	} `yaml:"identity"`

	Log struct {
		// Level is debug, info, warn, or error.
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// DefaultConfigPath returns ~/.hangouts/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".hangouts", "config.yaml")
}

// LoadConfig reads the YAML config. A missing file yields defaults; a
// malformed one is an error.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Store = "hangouts.db"
	cfg.Log.Level = "info"

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
