package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImportRoundTrip(t *testing.T) {
	cfg := validOAuthConfig()
	cfg.Endpoints[0].OAuthToken = "tokA"

	data, err := ExportConfiguration(cfg)
	require.NoError(t, err)

	var env ExportEnvelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, "1.0", env.Version)
	assert.WithinDuration(t, time.Now(), env.ExportDate, time.Minute)

	imported, err := ImportConfiguration(data)
	require.NoError(t, err)
	assert.Equal(t, cfg.ID, imported.ID)
	assert.Equal(t, cfg.Name, imported.Name)
	assert.Equal(t, "tokA", imported.Endpoints[0].OAuthToken)
}

func TestImportRejectsUnsupportedVersion(t *testing.T) {
	cfg := validOAuthConfig()
	data, err := ExportConfiguration(cfg)
	require.NoError(t, err)

	var env ExportEnvelope
	require.NoError(t, json.Unmarshal(data, &env))
	env.Version = "2.0"
	data, err = json.Marshal(env)
	require.NoError(t, err)

	_, importErr := ImportConfiguration(data)
	var verErr *UnsupportedVersionError
	require.ErrorAs(t, importErr, &verErr)
	assert.Equal(t, "2.0", verErr.Version)
}

func TestImportRejectsGarbage(t *testing.T) {
	_, err := ImportConfiguration([]byte("not json"))
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = ImportConfiguration([]byte(`{"version":"1.0"}`))
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestImportConfigurationsBatch(t *testing.T) {
	a := validOAuthConfig()
	b := NewServiceConfiguration("Cabin", AuthMethodToken,
		NewConnectionEndpoint("Internal", "http://10.0.0.2:8123"),
	)

	data, err := ExportConfigurations(Collection{a, b})
	require.NoError(t, err)

	imported, err := ImportConfigurations(data)
	require.NoError(t, err)
	require.Len(t, imported, 2)
	assert.Equal(t, a.ID, imported[0].ID)
	assert.Equal(t, b.ID, imported[1].ID)
}

func TestImportConfigurationsSingleFallback(t *testing.T) {
	cfg := validOAuthConfig()
	data, err := ExportConfiguration(cfg)
	require.NoError(t, err)

	imported, err := ImportConfigurations(data)
	require.NoError(t, err)
	require.Len(t, imported, 1)
	assert.Equal(t, cfg.ID, imported[0].ID)
}

func TestImportLegacyShape(t *testing.T) {
	legacy := []byte(`{
		"name": "Example Home",
		"internalUrl": "http://192.168.1.100:8123",
		"externalUrl": "https://example.duckdns.org:8123",
		"apiToken": "legacy-token",
		"isActive": true
	}`)

	cfg, err := ImportConfiguration(legacy)
	require.NoError(t, err)
	assert.Equal(t, "Example Home", cfg.Name)
	assert.Equal(t, AuthMethodToken, cfg.AuthMethod)
	assert.Equal(t, "legacy-token", cfg.SharedStaticToken)
	assert.True(t, cfg.IsActive)

	require.Len(t, cfg.Endpoints, 2)
	assert.Equal(t, "Internal", cfg.Endpoints[0].Label)
	assert.Equal(t, "External", cfg.Endpoints[1].Label)

	token, err := cfg.EffectiveToken()
	require.NoError(t, err)
	assert.Equal(t, "legacy-token", token)
}
