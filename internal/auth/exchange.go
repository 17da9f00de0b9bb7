package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	tokenPath = "/auth/token"

	// DefaultExchangeTimeout bounds the code-for-token POST.
	DefaultExchangeTimeout = 30 * time.Second

	maxTokenResponseBytes = 1 << 20
)

// tokenResponse is the JSON body returned by the token endpoint.
// refresh_token and expires_in may be present but are not used: the client
// performs one-shot exchanges only and treats tokens as non-expiring.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
}

// Exchanger posts authorization codes to the token endpoint and parses the
// access token from the response.
type Exchanger struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewExchanger creates an Exchanger with the default 30s timeout.
func NewExchanger(logger *zap.Logger) *Exchanger {
	if logger == nil {
		logger = zap.L().Named("token-exchange")
	}
	return &Exchanger{
		httpClient: &http.Client{Timeout: DefaultExchangeTimeout},
		logger:     logger,
	}
}

// ExchangeCode performs a single form-encoded POST of the authorization code
// and PKCE verifier to {baseURL}/auth/token and returns the access token.
// Failures map to TransportError, HTTPError or ErrMalformedResponse.
func (e *Exchanger) ExchangeCode(ctx context.Context, baseURL, code, clientID, redirectURI, codeVerifier string) (string, error) {
	u, err := parseBaseURL(baseURL)
	if err != nil {
		return "", err
	}
	endpoint := strings.TrimRight(u.String(), "/") + tokenPath

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", clientID)
	form.Set("redirect_uri", redirectURI)
	form.Set("code_verifier", codeVerifier)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	e.logger.Debug("Exchanging authorization code for token",
		zap.String("endpoint", endpoint))

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxTokenResponseBytes))
		e.logger.Warn("Token exchange rejected",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode))
		return "", &HTTPError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenResponseBytes))
	if err != nil {
		return "", &TransportError{Err: err}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("%w: missing access_token", ErrMalformedResponse)
	}

	e.logger.Info("Token exchange successful",
		zap.String("endpoint", endpoint),
		zap.String("access_token", maskToken(tr.AccessToken)),
		zap.Bool("refresh_token_present", tr.RefreshToken != ""))

	return tr.AccessToken, nil
}
