package config

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"
)

// ValidateServiceConfiguration checks the structural invariants of a single
// configuration: a name, a non-empty endpoint list with unique IDs and
// parseable absolute HTTP(S) base URLs, a resolvable active endpoint ID, and
// OAuth tokens only on OAuth-method services.
func ValidateServiceConfiguration(cfg *ServiceConfiguration) error {
	if cfg.Name == "" {
		return fmt.Errorf("configuration %s: name must not be empty", cfg.ID)
	}

	switch cfg.AuthMethod {
	case AuthMethodToken, AuthMethodOAuth:
	default:
		return fmt.Errorf("configuration %q: unknown auth method %q", cfg.Name, cfg.AuthMethod)
	}

	if len(cfg.Endpoints) == 0 {
		return fmt.Errorf("configuration %q: %w", cfg.Name, ErrNoEndpoints)
	}

	seen := make(map[uuid.UUID]bool, len(cfg.Endpoints))
	for i := range cfg.Endpoints {
		ep := &cfg.Endpoints[i]
		if seen[ep.ID] {
			return fmt.Errorf("configuration %q: duplicate endpoint ID %s", cfg.Name, ep.ID)
		}
		seen[ep.ID] = true

		if err := validateBaseURL(ep.BaseURL); err != nil {
			return fmt.Errorf("configuration %q, endpoint %q: %w", cfg.Name, ep.Label, err)
		}

		if cfg.AuthMethod == AuthMethodToken && ep.OAuthToken != "" {
			return fmt.Errorf("configuration %q, endpoint %q: OAuth token set on a static-token service", cfg.Name, ep.Label)
		}
	}

	if cfg.ActiveEndpointID != nil && !seen[*cfg.ActiveEndpointID] {
		return fmt.Errorf("configuration %q: active endpoint %s: %w", cfg.Name, *cfg.ActiveEndpointID, ErrEndpointNotFound)
	}

	return nil
}

// ValidateCollection checks cross-configuration invariants: unique IDs and at
// most one active configuration.
func ValidateCollection(col Collection) error {
	seen := make(map[uuid.UUID]bool, len(col))
	activeCount := 0

	for _, cfg := range col {
		if seen[cfg.ID] {
			return fmt.Errorf("duplicate configuration ID %s", cfg.ID)
		}
		seen[cfg.ID] = true

		if cfg.IsActive {
			activeCount++
		}

		if err := ValidateServiceConfiguration(cfg); err != nil {
			return err
		}
	}

	if activeCount > 1 {
		return fmt.Errorf("%d configurations marked active, at most one allowed", activeCount)
	}

	return nil
}

func validateBaseURL(baseURL string) error {
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("base URL %q is not absolute", baseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base URL %q: scheme must be http or https", baseURL)
	}
	return nil
}
