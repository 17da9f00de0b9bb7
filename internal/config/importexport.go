package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ExportVersion is the only supported import/export envelope version.
const ExportVersion = "1.0"

// ErrInvalidFormat indicates an import payload that is not a recognised
// configuration export.
var ErrInvalidFormat = errors.New("invalid configuration file format")

// UnsupportedVersionError indicates an export envelope from a newer or
// unknown format version.
type UnsupportedVersionError struct {
	Version string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported configuration version %q", e.Version)
}

// ExportEnvelope is the versioned JSON wrapper around exported
// configurations. Single exports set Configuration, batch exports set
// Configurations.
type ExportEnvelope struct {
	Version        string                  `json:"version"`
	ExportDate     time.Time               `json:"exportDate"`
	Configuration  *ServiceConfiguration   `json:"configuration,omitempty"`
	Configurations []*ServiceConfiguration `json:"configurations,omitempty"`
}

// ExportConfiguration serialises a single configuration into the versioned
// envelope.
func ExportConfiguration(cfg *ServiceConfiguration) ([]byte, error) {
	env := ExportEnvelope{
		Version:       ExportVersion,
		ExportDate:    time.Now().UTC(),
		Configuration: cfg,
	}
	return json.MarshalIndent(env, "", "  ")
}

// ExportConfigurations serialises a batch of configurations.
func ExportConfigurations(configs Collection) ([]byte, error) {
	env := ExportEnvelope{
		Version:        ExportVersion,
		ExportDate:     time.Now().UTC(),
		Configurations: configs,
	}
	return json.MarshalIndent(env, "", "  ")
}

// ImportConfiguration parses a single-configuration export. Only version
// "1.0" envelopes are accepted; payloads without an envelope are tried as
// legacy single-service shapes.
func ImportConfiguration(data []byte) (*ServiceConfiguration, error) {
	var env ExportEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	if env.Version == "" {
		return importLegacy(data)
	}
	if env.Version != ExportVersion {
		return nil, &UnsupportedVersionError{Version: env.Version}
	}
	if env.Configuration == nil {
		return nil, fmt.Errorf("%w: envelope has no configuration", ErrInvalidFormat)
	}

	if err := ValidateServiceConfiguration(env.Configuration); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return env.Configuration, nil
}

// ImportConfigurations parses a batch export, falling back to a single
// configuration when the payload is not a batch.
func ImportConfigurations(data []byte) (Collection, error) {
	var env ExportEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	if env.Version != "" && env.Version != ExportVersion {
		return nil, &UnsupportedVersionError{Version: env.Version}
	}

	if len(env.Configurations) > 0 {
		for _, cfg := range env.Configurations {
			if err := ValidateServiceConfiguration(cfg); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
			}
		}
		return env.Configurations, nil
	}

	cfg, err := ImportConfiguration(data)
	if err != nil {
		return nil, err
	}
	return Collection{cfg}, nil
}

// legacyConfiguration is the historical single-service shape with a fixed
// internal/external URL pair and one shared token. Imported files in this
// shape are migrated to the endpoint-list model.
type legacyConfiguration struct {
	Name        string `json:"name"`
	InternalURL string `json:"internalUrl"`
	ExternalURL string `json:"externalUrl"`
	APIToken    string `json:"apiToken"`
	IsActive    bool   `json:"isActive"`
}

func importLegacy(data []byte) (*ServiceConfiguration, error) {
	var legacy legacyConfiguration
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if legacy.Name == "" || legacy.InternalURL == "" {
		return nil, fmt.Errorf("%w: not a recognised legacy configuration", ErrInvalidFormat)
	}

	endpoints := []ConnectionEndpoint{NewConnectionEndpoint("Internal", legacy.InternalURL)}
	if legacy.ExternalURL != "" {
		endpoints = append(endpoints, NewConnectionEndpoint("External", legacy.ExternalURL))
	}

	cfg := NewServiceConfiguration(legacy.Name, AuthMethodToken, endpoints...)
	cfg.SharedStaticToken = legacy.APIToken
	cfg.IsActive = legacy.IsActive

	if err := ValidateServiceConfiguration(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return cfg, nil
}
