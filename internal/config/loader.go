package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultDataDir is the per-user data directory under the home directory.
	DefaultDataDir = ".haconnect"
	// ConfigFileName is the application config file inside the data directory.
	ConfigFileName = "config.json"
	// EnvPrefix is the prefix for environment variable overrides
	// (HACONNECT_DATA_DIR, HACONNECT_LOGGING_LEVEL, ...).
	EnvPrefix = "HACONNECT"
)

// Load reads the application config from the given path, falling back to
// <data dir>/config.json and then to defaults. Environment variables with
// the HACONNECT_ prefix override file values. The data directory is created
// if it does not exist.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configPath == "" {
		if dir, err := defaultDataDir(); err == nil {
			configPath = filepath.Join(dir, ConfigFileName)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// A missing config file is fine, anything else is not.
			if _, ok := err.(*os.PathError); !ok && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
			}
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.DataDir == "" {
		dir, err := defaultDataDir()
		if err != nil {
			return nil, err
		}
		cfg.DataDir = dir
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", cfg.DataDir, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func defaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, DefaultDataDir), nil
}
