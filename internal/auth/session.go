package auth

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"go.uber.org/zap"
)

// Presenter opens an external user agent at the authorization URL and blocks
// until the redirect URI is invoked or the user abandons the login. A
// platform layer implements this; the rest of the flow only depends on the
// interface. Implementations return ErrCancelled for user dismissal and
// ErrSessionStart when the surface cannot be launched.
type Presenter interface {
	Present(ctx context.Context, authURL *url.URL) (*url.URL, error)
}

// Session drives one browser-delegated authorization attempt at a time.
// A second Start while one is presenting logs a warning and returns
// ErrAuthInProgress without opening a duplicate surface.
type Session struct {
	presenter Presenter
	logger    *zap.Logger

	mu         sync.Mutex
	presenting bool
}

// NewSession creates a session around the given presenter.
func NewSession(presenter Presenter, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.L().Named("auth-session")
	}
	return &Session{presenter: presenter, logger: logger}
}

// Start presents the authorization URL and resolves to the authorization
// code from the redirect. Exactly one terminal resolution is produced per
// attempt; the presenting guard is released on every path.
func (s *Session) Start(ctx context.Context, authURL *url.URL, expectedScheme string) (string, error) {
	s.mu.Lock()
	if s.presenting {
		s.mu.Unlock()
		s.logger.Warn("Authentication session already presenting, ignoring duplicate start",
			zap.String("url", authURL.Host))
		return "", ErrAuthInProgress
	}
	s.presenting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.presenting = false
		s.mu.Unlock()
	}()

	s.logger.Info("Presenting authorization URL",
		zap.String("host", authURL.Host))

	redirect, err := s.presenter.Present(ctx, authURL)
	if err != nil {
		return "", err
	}

	return parseRedirect(redirect, expectedScheme)
}

// parseRedirect extracts the authorization code from a redirect URL:
// a code parameter resolves the attempt, an error parameter is a server-side
// denial, anything else is a malformed redirect.
func parseRedirect(redirect *url.URL, expectedScheme string) (string, error) {
	if redirect == nil {
		return "", ErrMissingAuthorizationCode
	}
	if expectedScheme != "" && redirect.Scheme != expectedScheme {
		return "", fmt.Errorf("%w: unexpected redirect scheme %q", ErrMissingAuthorizationCode, redirect.Scheme)
	}

	query := redirect.Query()
	if code := query.Get("code"); code != "" {
		return code, nil
	}
	if reason := query.Get("error"); reason != "" {
		return "", &AuthorizationDeniedError{Reason: reason}
	}
	return "", ErrMissingAuthorizationCode
}
