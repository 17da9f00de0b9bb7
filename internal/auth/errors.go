// Package auth implements the OAuth2 authorization-code flow with PKCE
// against Home Assistant instances: authorization URL construction,
// browser-delegated sessions, code-for-token exchange, and the orchestration
// that writes obtained tokens into a service configuration.
package auth

import (
	"errors"
	"fmt"
)

// Sentinel errors for consistent handling across the authentication flow.
var (
	// ErrInvalidEndpoint indicates a base URL that cannot be parsed as an
	// absolute HTTP(S) URL. Fatal to the attempt, no retry.
	ErrInvalidEndpoint = errors.New("invalid endpoint URL")

	// ErrSessionStart indicates the external browser surface could not be
	// launched. Retryable.
	ErrSessionStart = errors.New("failed to start authentication session")

	// ErrMissingAuthorizationCode indicates a redirect that carried neither
	// a code nor an error parameter.
	ErrMissingAuthorizationCode = errors.New("authorization redirect did not include a code")

	// ErrCancelled indicates the user dismissed the login without completing
	// it. Surfaced distinctly so callers can avoid an alarming error banner.
	ErrCancelled = errors.New("authentication cancelled")

	// ErrAuthInProgress indicates a second session start while one is
	// already presenting. The duplicate start is a no-op.
	ErrAuthInProgress = errors.New("authentication already in progress")

	// ErrMalformedResponse indicates a token endpoint response that is not
	// JSON or lacks an access_token.
	ErrMalformedResponse = errors.New("malformed token response")

	// ErrNotOAuth indicates an authentication operation on a configuration
	// that uses a static token.
	ErrNotOAuth = errors.New("configuration does not use OAuth")
)

// AuthorizationDeniedError is a server-side rejection delivered in the
// redirect's error parameter, e.g. the user declined on the provider side.
type AuthorizationDeniedError struct {
	Reason string
}

func (e *AuthorizationDeniedError) Error() string {
	return fmt.Sprintf("authorization denied: %s", e.Reason)
}

// HTTPError is a non-200 status from the token endpoint.
type HTTPError struct {
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("token endpoint returned HTTP %d", e.Status)
}

// TransportError wraps a network-level failure reaching the token endpoint,
// including timeouts.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("token endpoint unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
