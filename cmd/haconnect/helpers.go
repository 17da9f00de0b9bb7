package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/haconnect/haconnect-go/internal/config"
	"github.com/haconnect/haconnect-go/internal/homeassistant"
	"github.com/haconnect/haconnect-go/internal/secret"
	"github.com/haconnect/haconnect-go/internal/storage"
)

// loadAppConfig loads the application config, honoring the --config and
// --data-dir flags.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory %s: %w", cfg.DataDir, err)
		}
	}
	return cfg, nil
}

// openStorage opens the bolt-backed storage manager under the data directory.
// The caller must Close it.
func openStorage() (*storage.Manager, *config.Config, error) {
	cfg, err := loadAppConfig()
	if err != nil {
		return nil, nil, err
	}

	mgr, err := storage.NewManager(cfg.DataDir, zap.S().Named("storage"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}
	return mgr, cfg, nil
}

// activeConfiguration loads the collection and returns the active service
// configuration.
func activeConfiguration(mgr *storage.Manager) (*config.ServiceConfiguration, config.Collection, error) {
	configs, err := mgr.Load()
	if err != nil {
		return nil, nil, err
	}

	active := configs.Active()
	if active == nil {
		return nil, nil, fmt.Errorf("no active configuration; add one with 'haconnect config add' and select it with 'haconnect config use'")
	}
	return active, configs, nil
}

// newAPIClient builds a Home Assistant client for the active configuration.
func newAPIClient(svc *config.ServiceConfiguration) *homeassistant.Client {
	return homeassistant.NewClient(svc, secret.NewResolver(), zap.L().Named("homeassistant"))
}

// newTabWriter returns a tabwriter on stdout for aligned command output.
func newTabWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

// findConfiguration resolves a configuration by name or ID prefix.
func findConfiguration(configs config.Collection, nameOrID string) (*config.ServiceConfiguration, error) {
	if svc := configs.FindByName(nameOrID); svc != nil {
		return svc, nil
	}
	for _, svc := range configs {
		if len(nameOrID) >= 8 && len(svc.ID.String()) >= len(nameOrID) && svc.ID.String()[:len(nameOrID)] == nameOrID {
			return svc, nil
		}
	}
	return nil, fmt.Errorf("no configuration named %q", nameOrID)
}
