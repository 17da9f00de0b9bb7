package homeassistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/haconnect/haconnect-go/internal/config"
	"github.com/haconnect/haconnect-go/internal/secret"
)

const (
	// DefaultRequestTimeout bounds every API call
	DefaultRequestTimeout = 30 * time.Second

	// connectionTestTimeout is shorter so endpoint probing fails fast
	connectionTestTimeout = 10 * time.Second

	maxResponseBytes = 16 << 20

	historyTimeLayout = "2006-01-02T15:04:05-07:00"
)

// ErrUnauthorized means the token was rejected by Home Assistant.
var ErrUnauthorized = errors.New("home assistant rejected the credentials")

// StatusError is a non-2xx API response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("home assistant returned HTTP %d", e.Code)
}

// Client talks to one Home Assistant instance through the effective endpoint
// and token of a service configuration.
type Client struct {
	cfg        *config.ServiceConfiguration
	httpClient *http.Client
	resolver   *secret.Resolver
	logger     *zap.Logger
}

// NewClient creates a client for the given configuration. The resolver may
// be nil when tokens are stored literally.
func NewClient(cfg *config.ServiceConfiguration, resolver *secret.Resolver, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.L().Named("homeassistant")
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: DefaultRequestTimeout},
		resolver:   resolver,
		logger:     logger,
	}
}

// token returns the bearer token, expanding secret references.
func (c *Client) token(ctx context.Context) (string, error) {
	tok, err := c.cfg.EffectiveToken()
	if err != nil {
		return "", err
	}
	if c.resolver != nil && secret.IsRef(tok) {
		tok, err = c.resolver.ExpandRefs(ctx, tok)
		if err != nil {
			return "", err
		}
	}
	return tok, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	tok, err := c.token(ctx)
	if err != nil {
		return err
	}

	base := c.cfg.BaseURL()
	if base == "" {
		return config.ErrNoEndpoints
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("API request failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return &StatusError{Code: resp.StatusCode}
	}

	if out == nil {
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// States returns all entity states.
func (c *Client) States(ctx context.Context) ([]Entity, error) {
	var entities []Entity
	if err := c.do(ctx, http.MethodGet, "/api/states", nil, &entities); err != nil {
		return nil, err
	}
	return entities, nil
}

// State returns the state of a single entity.
func (c *Client) State(ctx context.Context, entityID string) (*Entity, error) {
	var entity Entity
	if err := c.do(ctx, http.MethodGet, "/api/states/"+url.PathEscape(entityID), nil, &entity); err != nil {
		return nil, err
	}
	return &entity, nil
}

// CallService invokes a Home Assistant service, e.g. light.turn_on.
func (c *Client) CallService(ctx context.Context, domain, service string, data map[string]any) error {
	path := fmt.Sprintf("/api/services/%s/%s", url.PathEscape(domain), url.PathEscape(service))
	if data == nil {
		data = map[string]any{}
	}
	return c.do(ctx, http.MethodPost, path, data, nil)
}

// Toggle flips an entity between on and off.
func (c *Client) Toggle(ctx context.Context, entity *Entity) error {
	return c.CallService(ctx, entity.Domain(), "toggle", map[string]any{
		"entity_id": entity.EntityID,
	})
}

// TurnOn switches an entity on.
func (c *Client) TurnOn(ctx context.Context, entityID string) error {
	return c.CallService(ctx, domainOf(entityID), "turn_on", map[string]any{
		"entity_id": entityID,
	})
}

// TurnOnWithBrightness switches a light on at the given brightness (0-255).
func (c *Client) TurnOnWithBrightness(ctx context.Context, entityID string, brightness int) error {
	return c.CallService(ctx, "light", "turn_on", map[string]any{
		"entity_id":  entityID,
		"brightness": brightness,
	})
}

// TurnOff switches an entity off.
func (c *Client) TurnOff(ctx context.Context, entityID string) error {
	return c.CallService(ctx, domainOf(entityID), "turn_off", map[string]any{
		"entity_id": entityID,
	})
}

// SetTemperature sets the target temperature of a climate entity.
func (c *Client) SetTemperature(ctx context.Context, entityID string, temperature float64) error {
	return c.CallService(ctx, "climate", "set_temperature", map[string]any{
		"entity_id":   entityID,
		"temperature": temperature,
	})
}

// SetHVACMode sets the HVAC mode of a climate entity.
func (c *Client) SetHVACMode(ctx context.Context, entityID, mode string) error {
	return c.CallService(ctx, "climate", "set_hvac_mode", map[string]any{
		"entity_id": entityID,
		"hvac_mode": mode,
	})
}

// History returns state history since the given time, optionally filtered to
// one entity. The API groups results per entity.
func (c *Client) History(ctx context.Context, since time.Time, entityID string) ([][]Entity, error) {
	path := "/api/history/period/" + url.PathEscape(since.Format(historyTimeLayout))
	if entityID != "" {
		path += "?filter_entity_id=" + url.QueryEscape(entityID)
	}

	var history [][]Entity
	if err := c.do(ctx, http.MethodGet, path, nil, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// LogbookEntry is one event from the logbook API.
type LogbookEntry struct {
	When     time.Time `json:"when"`
	Name     string    `json:"name"`
	Message  string    `json:"message"`
	Domain   string    `json:"domain"`
	EntityID string    `json:"entity_id"`
	State    string    `json:"state"`
}

// Logbook returns logbook entries since the given time.
func (c *Client) Logbook(ctx context.Context, since time.Time, entityID string) ([]LogbookEntry, error) {
	path := "/api/logbook/" + url.PathEscape(since.Format(historyTimeLayout))
	if entityID != "" {
		path += "?entity=" + url.QueryEscape(entityID)
	}

	var entries []LogbookEntry
	if err := c.do(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// TestConnection checks that the endpoint is reachable and the token is
// accepted.
func (c *Client) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, connectionTestTimeout)
	defer cancel()

	var status struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/", nil, &status); err != nil {
		return err
	}
	c.logger.Debug("Connection test succeeded", zap.String("message", status.Message))
	return nil
}

func domainOf(entityID string) string {
	for i := 0; i < len(entityID); i++ {
		if entityID[i] == '.' {
			return entityID[:i]
		}
	}
	return entityID
}
