// Package config holds the application configuration and the service
// configuration model: named Home Assistant services, each with an
// authentication method and a set of named connection endpoints.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// AuthMethod determines how a token is obtained for a service.
type AuthMethod string

const (
	// AuthMethodToken uses a long-lived access token entered by the user,
	// shared by all endpoints of the service.
	AuthMethodToken AuthMethod = "token"
	// AuthMethodOAuth obtains a token per endpoint through the OAuth
	// authorization-code flow with PKCE.
	AuthMethodOAuth AuthMethod = "oauth"
)

// Sentinel errors for credential and endpoint resolution.
var (
	// ErrMissingCredentials indicates effective token resolution found no
	// usable secret for the active endpoint.
	ErrMissingCredentials = errors.New("no usable credentials for the active endpoint")

	// ErrNoEndpoints indicates a configuration without any connection endpoints.
	ErrNoEndpoints = errors.New("configuration has no endpoints")

	// ErrEndpointNotFound indicates an endpoint ID that does not reference
	// any endpoint in the configuration.
	ErrEndpointNotFound = errors.New("endpoint not found in configuration")
)

// ConnectionEndpoint represents one reachable address for a service, such as
// "Internal", "External" or "VPN". For OAuth services each endpoint carries
// its own token, populated only by a completed authentication round.
type ConnectionEndpoint struct {
	ID         uuid.UUID `json:"id"`
	Label      string    `json:"label"`
	BaseURL    string    `json:"base_url"`
	OAuthToken string    `json:"oauth_token,omitempty"`
}

// NewConnectionEndpoint creates an endpoint with a fresh ID.
func NewConnectionEndpoint(label, baseURL string) ConnectionEndpoint {
	return ConnectionEndpoint{
		ID:      uuid.New(),
		Label:   label,
		BaseURL: strings.TrimSpace(baseURL),
	}
}

// ServiceConfiguration is the top-level entity a user creates: a named
// service with an auth method and an ordered, non-empty endpoint list.
type ServiceConfiguration struct {
	ID                uuid.UUID            `json:"id"`
	Name              string               `json:"name"`
	AuthMethod        AuthMethod           `json:"auth_method"`
	SharedStaticToken string               `json:"shared_static_token,omitempty"`
	Endpoints         []ConnectionEndpoint `json:"endpoints"`
	ActiveEndpointID  *uuid.UUID           `json:"active_endpoint_id,omitempty"`
	IsActive          bool                 `json:"is_active"`
}

// NewServiceConfiguration creates a configuration with a fresh ID. The first
// endpoint becomes active.
func NewServiceConfiguration(name string, method AuthMethod, endpoints ...ConnectionEndpoint) *ServiceConfiguration {
	cfg := &ServiceConfiguration{
		ID:         uuid.New(),
		Name:       name,
		AuthMethod: method,
		Endpoints:  endpoints,
	}
	if len(endpoints) > 0 {
		id := endpoints[0].ID
		cfg.ActiveEndpointID = &id
	}
	return cfg
}

// EffectiveEndpoint resolves ActiveEndpointID against the endpoint list.
// Falls back to the first endpoint when unset or dangling. Returns nil for
// an empty list.
func (c *ServiceConfiguration) EffectiveEndpoint() *ConnectionEndpoint {
	if len(c.Endpoints) == 0 {
		return nil
	}
	if c.ActiveEndpointID != nil {
		for i := range c.Endpoints {
			if c.Endpoints[i].ID == *c.ActiveEndpointID {
				return &c.Endpoints[i]
			}
		}
	}
	return &c.Endpoints[0]
}

// EffectiveToken resolves the credential that applies to the effective
// endpoint: the trimmed shared secret for token auth, the endpoint's OAuth
// token for OAuth. Returns ErrMissingCredentials when no usable secret
// exists, which for OAuth means the endpoint has not completed a login round.
func (c *ServiceConfiguration) EffectiveToken() (string, error) {
	ep := c.EffectiveEndpoint()
	if ep == nil {
		return "", ErrNoEndpoints
	}

	switch c.AuthMethod {
	case AuthMethodToken:
		token := strings.TrimSpace(c.SharedStaticToken)
		if token == "" {
			return "", ErrMissingCredentials
		}
		return token, nil
	case AuthMethodOAuth:
		token := strings.TrimSpace(ep.OAuthToken)
		if token == "" {
			return "", fmt.Errorf("endpoint %q: %w", ep.Label, ErrMissingCredentials)
		}
		return token, nil
	default:
		return "", fmt.Errorf("unknown auth method %q", c.AuthMethod)
	}
}

// BaseURL returns the effective endpoint's base URL without a trailing slash.
func (c *ServiceConfiguration) BaseURL() string {
	ep := c.EffectiveEndpoint()
	if ep == nil {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(ep.BaseURL), "/")
}

// SetActiveEndpoint switches the active endpoint. The ID must reference an
// endpoint in the list.
func (c *ServiceConfiguration) SetActiveEndpoint(id uuid.UUID) error {
	for i := range c.Endpoints {
		if c.Endpoints[i].ID == id {
			c.ActiveEndpointID = &id
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrEndpointNotFound, id)
}

// EndpointByID returns the endpoint with the given ID, or nil.
func (c *ServiceConfiguration) EndpointByID(id uuid.UUID) *ConnectionEndpoint {
	for i := range c.Endpoints {
		if c.Endpoints[i].ID == id {
			return &c.Endpoints[i]
		}
	}
	return nil
}

// Clone returns a deep copy. Authentication rounds mutate a clone so that a
// failed or cancelled attempt never corrupts the stored configuration.
func (c *ServiceConfiguration) Clone() *ServiceConfiguration {
	clone := *c
	clone.Endpoints = make([]ConnectionEndpoint, len(c.Endpoints))
	copy(clone.Endpoints, c.Endpoints)
	if c.ActiveEndpointID != nil {
		id := *c.ActiveEndpointID
		clone.ActiveEndpointID = &id
	}
	return &clone
}

// Collection is the full ordered set of service configurations. It is
// persisted as a whole after every mutation.
type Collection []*ServiceConfiguration

// Active returns the configuration marked active, or nil.
func (col Collection) Active() *ServiceConfiguration {
	for _, cfg := range col {
		if cfg.IsActive {
			return cfg
		}
	}
	return nil
}

// FindByID returns the configuration with the given ID, or nil.
func (col Collection) FindByID(id uuid.UUID) *ServiceConfiguration {
	for _, cfg := range col {
		if cfg.ID == id {
			return cfg
		}
	}
	return nil
}

// FindByName returns the first configuration with the given name, or nil.
func (col Collection) FindByName(name string) *ServiceConfiguration {
	for _, cfg := range col {
		if cfg.Name == name {
			return cfg
		}
	}
	return nil
}

// Upsert replaces the configuration with the same ID, or appends it.
func (col *Collection) Upsert(cfg *ServiceConfiguration) {
	for i, existing := range *col {
		if existing.ID == cfg.ID {
			(*col)[i] = cfg
			return
		}
	}
	*col = append(*col, cfg)
}

// Remove deletes the configuration with the given ID. Reports whether a
// configuration was removed.
func (col *Collection) Remove(id uuid.UUID) bool {
	for i, cfg := range *col {
		if cfg.ID == id {
			*col = append((*col)[:i], (*col)[i+1:]...)
			return true
		}
	}
	return false
}

// SetActive marks the configuration with the given ID active and deactivates
// every other one, preserving the at-most-one-active invariant.
func (col Collection) SetActive(id uuid.UUID) error {
	target := col.FindByID(id)
	if target == nil {
		return fmt.Errorf("configuration %s not found", id)
	}
	for _, cfg := range col {
		cfg.IsActive = false
	}
	target.IsActive = true
	return nil
}

// Store persists the full configuration collection. Implementations replace
// the stored collection on every Save; there are no partial updates.
type Store interface {
	Save(configs Collection) error
	Load() (Collection, error)
}
