// Package config provides configuration management for loom.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	loomerrors "github.com/loomworks/loom/internal/errors"
)

const (
	// ConfigFileName is the default config file name
	ConfigFileName = "config.yaml"
	// LoomDir is the loom configuration directory
	LoomDir = ".loom"
	// WorkflowsDirName is where workflow YAML definitions live
	WorkflowsDirName = "workflows"
	// DatabaseFileName is the default SQLite database file
	DatabaseFileName = "loom.db"
)

// ServerConfig holds the API server settings.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":3080"
	Addr string `yaml:"addr"`
}

// StorageConfig holds the persistence settings.
type StorageConfig struct {
	// Dialect selects the database backend: "sqlite" or "postgres"
	Dialect string `yaml:"dialect"`
	// DSN is the connection string. For sqlite this is the file path;
	// empty means .loom/loom.db
	DSN string `yaml:"dsn,omitempty"`
}

// Config represents the loom configuration.
type Config struct {
	// Version is the config file version
	Version int `yaml:"version"`

	// AutoFillEnvVars enables credential auto-fill: API-key fields are
	// populated from previously stored values for the same provider or
	// block kind
	AutoFillEnvVars bool `yaml:"auto_fill_env_vars"`

	// Server settings
	Server ServerConfig `yaml:"server"`

	// Storage settings
	Storage StorageConfig `yaml:"storage"`

	// WorkflowsDir overrides where workflow YAML definitions are read from
	WorkflowsDir string `yaml:"workflows_dir,omitempty"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version:         1,
		AutoFillEnvVars: true,
		Server: ServerConfig{
			Addr: ":3080",
		},
		Storage: StorageConfig{
			Dialect: "sqlite",
		},
	}
}

// Load loads the config from the default location.
func Load() (*Config, error) {
	return LoadFrom(filepath.Join(LoomDir, ConfigFileName))
}

// LoadFrom loads the config from a specific path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return default config if file doesn't exist
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default() // Start with defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to a specific path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Storage.Dialect {
	case "", "sqlite", "postgres":
	default:
		return loomerrors.ErrConfigInvalid(fmt.Sprintf("unknown storage dialect %q", c.Storage.Dialect))
	}
	if c.Storage.Dialect == "postgres" && c.Storage.DSN == "" {
		return loomerrors.ErrConfigInvalid("postgres storage requires a dsn")
	}
	return nil
}

// DatabasePath returns the database location for a project directory,
// honoring an explicit DSN.
func (c *Config) DatabasePath(workDir string) string {
	if c.Storage.DSN != "" {
		return c.Storage.DSN
	}
	return filepath.Join(workDir, LoomDir, DatabaseFileName)
}

// WorkflowsPath returns the workflow definitions directory for a project.
func (c *Config) WorkflowsPath(workDir string) string {
	if c.WorkflowsDir != "" {
		return c.WorkflowsDir
	}
	return filepath.Join(workDir, LoomDir, WorkflowsDirName)
}
