package auth

import (
	"fmt"
	"net/url"
	"strings"
)

// Registered OAuth client for this application. Home Assistant uses the
// client's URL as its identifier (the "indieauth" convention); the redirect
// scheme is private to the app and routed back by the host OS.
const (
	ClientID       = "https://haconnect.app"
	RedirectURI    = "haconnect://auth-callback"
	RedirectScheme = "haconnect"

	authorizePath = "/auth/authorize"
)

// BuildAuthorizationURL constructs the authorization endpoint URL for the
// given base URL. Query parameters are rendered in a fixed order: client_id,
// redirect_uri, state, code_challenge, code_challenge_method.
func BuildAuthorizationURL(baseURL, clientID, redirectURI, state, codeChallenge string) (*url.URL, error) {
	u, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	u.Path = strings.TrimRight(u.Path, "/") + authorizePath

	params := []struct{ key, value string }{
		{"client_id", clientID},
		{"redirect_uri", redirectURI},
		{"state", state},
		{"code_challenge", codeChallenge},
		{"code_challenge_method", "S256"},
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p.key+"="+url.QueryEscape(p.value))
	}
	u.RawQuery = strings.Join(parts, "&")

	return u, nil
}

func parseBaseURL(baseURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidEndpoint, baseURL, err)
	}
	if !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q is not an absolute HTTP(S) URL", ErrInvalidEndpoint, baseURL)
	}
	return u, nil
}
