package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haconnect/haconnect-go/internal/config"
)

func TestFindConfiguration(t *testing.T) {
	home := config.NewServiceConfiguration("Home", config.AuthMethodToken,
		config.NewConnectionEndpoint("Internal", "http://192.168.1.100:8123"),
	)
	cabin := config.NewServiceConfiguration("Cabin", config.AuthMethodOAuth,
		config.NewConnectionEndpoint("Main", "https://cabin.example.com"),
	)
	configs := config.Collection{home, cabin}

	svc, err := findConfiguration(configs, "Cabin")
	require.NoError(t, err)
	assert.Equal(t, cabin.ID, svc.ID)

	// ID prefix lookup
	svc, err = findConfiguration(configs, home.ID.String()[:8])
	require.NoError(t, err)
	assert.Equal(t, home.ID, svc.ID)

	_, err = findConfiguration(configs, "Garage")
	assert.Error(t, err)
}

func TestCredentialStatus(t *testing.T) {
	tokenSvc := config.NewServiceConfiguration("Home", config.AuthMethodToken,
		config.NewConnectionEndpoint("Internal", "http://192.168.1.100:8123"),
	)
	assert.Equal(t, "missing", credentialStatus(tokenSvc, &tokenSvc.Endpoints[0]))

	tokenSvc.SharedStaticToken = "tok"
	assert.Equal(t, "token set", credentialStatus(tokenSvc, &tokenSvc.Endpoints[0]))

	oauthSvc := config.NewServiceConfiguration("Cabin", config.AuthMethodOAuth,
		config.NewConnectionEndpoint("Main", "https://cabin.example.com"),
	)
	assert.Equal(t, "not authenticated", credentialStatus(oauthSvc, &oauthSvc.Endpoints[0]))

	oauthSvc.Endpoints[0].OAuthToken = "tok"
	assert.Equal(t, "authenticated", credentialStatus(oauthSvc, &oauthSvc.Endpoints[0]))
}
