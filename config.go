package godss

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config selects the engine behind a DSS handle and the object store behind
// exports. The zero value is usable: an empty engine name means
// DefaultEngine, an empty store config means a filesystem store rooted at
// the working directory.
type Config struct {
	// Engine names the engine implementation to construct, one of the
	// Engine* constants. Defaults to DefaultEngine.
	Engine string `yaml:"engine"`

	// Backend, when non-nil, is used directly instead of constructing the
	// engine named by Engine. It cannot come from a config file.
	Backend Engine `yaml:"-"`

	// Store configures the export destination.
	Store StoreConfig `yaml:"store"`
}

// StoreConfig selects and configures an ObjectStore.
type StoreConfig struct {
	// Type is one of "fs", "memory", or "s3". Defaults to "fs".
	Type string `yaml:"type"`

	// Dir is the root directory for the fs store. Defaults to ".".
	Dir string `yaml:"dir"`

	// S3 configures the s3 store.
	S3 S3StoreConfig `yaml:"s3"`
}

// DefaultConfig returns a configuration with the documented defaults: the
// SQLite engine and a filesystem export store in the working directory.
func DefaultConfig() Config {
	return Config{
		Engine: DefaultEngine,
		Store: StoreConfig{
			Type: "fs",
			Dir:  ".",
		},
	}
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// NewStore constructs the ObjectStore a StoreConfig selects.
func NewStore(cfg StoreConfig) (ObjectStore, error) {
	switch cfg.Type {
	case "", "fs":
		dir := cfg.Dir
		if dir == "" {
			dir = "."
		}
		return NewFSStore(dir)
	case "memory":
		return NewMemoryStore(), nil
	case "s3":
		return NewS3Store(cfg.S3)
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}
}
