package auth

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/haconnect/haconnect-go/internal/auth/pkce"
	"github.com/haconnect/haconnect-go/internal/config"
)

const stateLength = 32

// Authenticator sequences full PKCE round trips and writes obtained tokens
// into a service configuration. One round: generate verifier/challenge/state,
// build the authorization URL, present the browser session, exchange the
// code. Rounds never run concurrently; a multi-endpoint configuration is
// authenticated endpoint by endpoint.
type Authenticator struct {
	session   *Session
	exchanger *Exchanger
	logger    *zap.Logger

	clientID       string
	redirectURI    string
	redirectScheme string
}

// NewAuthenticator creates an Authenticator using the application's
// registered OAuth client identity.
func NewAuthenticator(presenter Presenter, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.L().Named("auth")
	}
	return &Authenticator{
		session:        NewSession(presenter, logger),
		exchanger:      NewExchanger(logger),
		logger:         logger,
		clientID:       ClientID,
		redirectURI:    RedirectURI,
		redirectScheme: RedirectScheme,
	}
}

// AuthenticateEndpoint runs one full PKCE round trip against the endpoint's
// base URL and returns the access token. Fresh PKCE material is generated on
// every call; verifiers and state are never reused across attempts.
func (a *Authenticator) AuthenticateEndpoint(ctx context.Context, ep *config.ConnectionEndpoint) (string, error) {
	verifier, err := pkce.GenerateCodeVerifier()
	if err != nil {
		return "", err
	}
	challenge := pkce.DeriveCodeChallenge(verifier)

	state, err := pkce.GenerateOpaqueToken(stateLength)
	if err != nil {
		return "", err
	}

	authURL, err := BuildAuthorizationURL(ep.BaseURL, a.clientID, a.redirectURI, state, challenge)
	if err != nil {
		return "", err
	}

	a.logger.Info("Starting authentication round",
		zap.String("endpoint", ep.Label),
		zap.String("host", authURL.Host))

	code, err := a.session.Start(ctx, authURL, a.redirectScheme)
	if err != nil {
		return "", err
	}

	token, err := a.exchanger.ExchangeCode(ctx, ep.BaseURL, code, a.clientID, a.redirectURI, verifier)
	if err != nil {
		return "", err
	}

	a.logger.Info("Authentication round complete",
		zap.String("endpoint", ep.Label),
		zap.String("token", maskToken(token)))

	return token, nil
}

// AuthenticateConfiguration authenticates every endpoint of an OAuth
// configuration. Endpoints sharing a base URL share one login round: the
// same host means the same session cookies, one login is enough. Distinct
// base URLs get their own sequential round, started only after the previous
// round's browser surface is torn down.
//
// Any failing round aborts the sequence; the caller's configuration is never
// mutated and nothing is persisted. A cancelled round surfaces ErrCancelled
// so callers can tell "user backed out" from "server rejected".
func (a *Authenticator) AuthenticateConfiguration(ctx context.Context, cfg *config.ServiceConfiguration) (*config.ServiceConfiguration, error) {
	if cfg.AuthMethod != config.AuthMethodOAuth {
		return nil, fmt.Errorf("configuration %q: %w", cfg.Name, ErrNotOAuth)
	}
	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("configuration %q: %w", cfg.Name, config.ErrNoEndpoints)
	}

	updated := cfg.Clone()
	tokensByURL := make(map[string]string, len(updated.Endpoints))

	for i := range updated.Endpoints {
		ep := &updated.Endpoints[i]
		key := strings.TrimRight(strings.TrimSpace(ep.BaseURL), "/")

		if token, ok := tokensByURL[key]; ok {
			a.logger.Info("Reusing token from earlier round for same base URL",
				zap.String("endpoint", ep.Label))
			ep.OAuthToken = token
			continue
		}

		token, err := a.AuthenticateEndpoint(ctx, ep)
		if err != nil {
			return nil, fmt.Errorf("authentication for endpoint %q failed: %w", ep.Label, err)
		}

		ep.OAuthToken = token
		tokensByURL[key] = token
	}

	return updated, nil
}
