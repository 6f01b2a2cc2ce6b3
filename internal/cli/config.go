package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openprobity/crosswalk/internal/runtime"
)

// StoreConfig selects and configures the definition store backend.
type StoreConfig struct {
	// Kind is "file" or "redis".
	Kind string `yaml:"kind"`

	// Path is the base directory for the file store.
	Path string `yaml:"path"`

	// Address, Password, and DB configure the redis store.
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Config is the CLI configuration, loaded from an optional YAML file.
// Missing file means defaults; a present file overrides field by field.
type Config struct {
	Store     StoreConfig             `yaml:"store"`
	Execution runtime.ExecutionConfig `yaml:"execution"`

	// Delimiter is the source file field delimiter, e.g. "," or "\t".
	Delimiter string `yaml:"delimiter"`
}

// DefaultCLIConfig returns the configuration used when no file is present.
func DefaultCLIConfig() Config {
	return Config{
		Store: StoreConfig{
			Kind: "file",
			Path: "",
		},
		Execution: runtime.DefaultConfig(),
		Delimiter: ",",
	}
}

// LoadConfig reads the YAML configuration at path. An empty path or a
// missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultCLIConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}

	if cfg.Delimiter == "" {
		cfg.Delimiter = ","
	}

	return cfg, nil
}
