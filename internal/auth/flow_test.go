package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haconnect/haconnect-go/internal/config"
)

// scriptedPresenter replays one scripted result per authentication round and
// records every authorization URL it was asked to present.
type scriptedPresenter struct {
	mu          sync.Mutex
	results     []func() (*url.URL, error)
	authURLs    []*url.URL
	inFlight    int
	maxInFlight int
}

func (p *scriptedPresenter) Present(_ context.Context, authURL *url.URL) (*url.URL, error) {
	p.mu.Lock()
	p.inFlight++
	if p.inFlight > p.maxInFlight {
		p.maxInFlight = p.inFlight
	}
	p.authURLs = append(p.authURLs, authURL)
	round := len(p.authURLs) - 1
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.inFlight--
		p.mu.Unlock()
	}()

	if round >= len(p.results) {
		return nil, ErrMissingAuthorizationCode
	}
	return p.results[round]()
}

func successResult(code string) func() (*url.URL, error) {
	return func() (*url.URL, error) {
		return &url.URL{Scheme: RedirectScheme, Host: "auth-callback", RawQuery: "code=" + code}, nil
	}
}

// newTokenServer serves the token endpoint, answering every exchange with
// the given access token and recording received verifiers.
func newTokenServer(t *testing.T, accessToken string, verifiers *[]string) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if verifiers != nil {
			mu.Lock()
			*verifiers = append(*verifiers, r.PostFormValue("code_verifier"))
			mu.Unlock()
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"` + accessToken + `"}`))
	}))
}

func TestAuthenticateConfigurationSameBaseURL(t *testing.T) {
	srv := newTokenServer(t, "shared-token", nil)
	defer srv.Close()

	cfg := config.NewServiceConfiguration("Home", config.AuthMethodOAuth,
		config.NewConnectionEndpoint("Internal", srv.URL),
		config.NewConnectionEndpoint("External", srv.URL),
	)

	presenter := &scriptedPresenter{results: []func() (*url.URL, error){successResult("code1")}}
	authenticator := NewAuthenticator(presenter, zap.NewNop())

	updated, err := authenticator.AuthenticateConfiguration(context.Background(), cfg)
	require.NoError(t, err)

	// Same host, one login: a single browser session, one token for both
	assert.Len(t, presenter.authURLs, 1)
	assert.Equal(t, "shared-token", updated.Endpoints[0].OAuthToken)
	assert.Equal(t, "shared-token", updated.Endpoints[1].OAuthToken)
}

func TestAuthenticateConfigurationDistinctBaseURLs(t *testing.T) {
	var verifiers []string
	srvA := newTokenServer(t, "tokA", &verifiers)
	defer srvA.Close()
	srvB := newTokenServer(t, "tokB", &verifiers)
	defer srvB.Close()

	cfg := config.NewServiceConfiguration("Home", config.AuthMethodOAuth,
		config.NewConnectionEndpoint("Internal", srvA.URL),
		config.NewConnectionEndpoint("External", srvB.URL),
	)

	presenter := &scriptedPresenter{results: []func() (*url.URL, error){
		successResult("code1"),
		successResult("code2"),
	}}
	authenticator := NewAuthenticator(presenter, zap.NewNop())

	updated, err := authenticator.AuthenticateConfiguration(context.Background(), cfg)
	require.NoError(t, err)

	// Two rounds, strictly sequential
	require.Len(t, presenter.authURLs, 2)
	assert.Equal(t, 1, presenter.maxInFlight, "browser sessions must never overlap")
	assert.Equal(t, "tokA", updated.Endpoints[0].OAuthToken)
	assert.Equal(t, "tokB", updated.Endpoints[1].OAuthToken)

	// Fresh PKCE material per round
	require.Len(t, verifiers, 2)
	assert.NotEqual(t, verifiers[0], verifiers[1])

	challenge1 := presenter.authURLs[0].Query().Get("code_challenge")
	challenge2 := presenter.authURLs[1].Query().Get("code_challenge")
	assert.NotEmpty(t, challenge1)
	assert.NotEqual(t, challenge1, challenge2)
}

func TestAuthenticateConfigurationSecondRoundCancelled(t *testing.T) {
	srvA := newTokenServer(t, "tokA", nil)
	defer srvA.Close()
	srvB := newTokenServer(t, "tokB", nil)
	defer srvB.Close()

	cfg := config.NewServiceConfiguration("Home", config.AuthMethodOAuth,
		config.NewConnectionEndpoint("Internal", srvA.URL),
		config.NewConnectionEndpoint("External", srvB.URL),
	)
	// A previously persisted token from an earlier, fully successful attempt
	cfg.Endpoints[1].OAuthToken = "previously-persisted"

	presenter := &scriptedPresenter{results: []func() (*url.URL, error){
		successResult("code1"),
		func() (*url.URL, error) { return nil, ErrCancelled },
	}}
	authenticator := NewAuthenticator(presenter, zap.NewNop())

	updated, err := authenticator.AuthenticateConfiguration(context.Background(), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Nil(t, updated)

	// The failed attempt discards its partial results and leaves the input
	// configuration untouched
	assert.Empty(t, cfg.Endpoints[0].OAuthToken)
	assert.Equal(t, "previously-persisted", cfg.Endpoints[1].OAuthToken)
}

func TestAuthenticateConfigurationAuthorizationDeniedAborts(t *testing.T) {
	srv := newTokenServer(t, "tok", nil)
	defer srv.Close()

	cfg := config.NewServiceConfiguration("Home", config.AuthMethodOAuth,
		config.NewConnectionEndpoint("Internal", srv.URL),
	)

	presenter := &scriptedPresenter{results: []func() (*url.URL, error){
		func() (*url.URL, error) {
			return &url.URL{Scheme: RedirectScheme, Host: "auth-callback", RawQuery: "error=access_denied"}, nil
		},
	}}
	authenticator := NewAuthenticator(presenter, zap.NewNop())

	_, err := authenticator.AuthenticateConfiguration(context.Background(), cfg)
	var denied *AuthorizationDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Empty(t, cfg.Endpoints[0].OAuthToken)
}

func TestAuthenticateConfigurationRejectsStaticToken(t *testing.T) {
	cfg := config.NewServiceConfiguration("Home", config.AuthMethodToken,
		config.NewConnectionEndpoint("Internal", "http://192.168.1.100:8123"),
	)

	authenticator := NewAuthenticator(&scriptedPresenter{}, zap.NewNop())
	_, err := authenticator.AuthenticateConfiguration(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrNotOAuth)
}

func TestAuthenticateEndpointInvalidBaseURL(t *testing.T) {
	ep := config.ConnectionEndpoint{Label: "Broken", BaseURL: "not a url"}
	authenticator := NewAuthenticator(&scriptedPresenter{}, zap.NewNop())

	_, err := authenticator.AuthenticateEndpoint(context.Background(), &ep)
	assert.ErrorIs(t, err, ErrInvalidEndpoint)
}
