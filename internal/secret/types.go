// Package secret resolves ${type:name} references in configuration values,
// so API tokens can live in the OS keyring or in environment variables
// instead of sitting in plaintext in the configuration file.
package secret

import (
	"context"
)

// Ref is a parsed reference to a secret.
type Ref struct {
	Type     string // env, keyring
	Name     string // environment variable name or keyring entry name
	Original string // original reference string
}

// Provider resolves secrets of one type.
type Provider interface {
	// CanResolve returns true if this provider handles the given secret type
	CanResolve(secretType string) bool

	// Resolve retrieves the actual secret value
	Resolve(ctx context.Context, ref Ref) (string, error)

	// Store saves a secret (if supported by the provider)
	Store(ctx context.Context, ref Ref, value string) error

	// Delete removes a secret (if supported by the provider)
	Delete(ctx context.Context, ref Ref) error

	// IsAvailable checks if the provider works on the current system
	IsAvailable() bool
}

// Resolver dispatches secret references to registered providers.
type Resolver struct {
	providers map[string]Provider
}
