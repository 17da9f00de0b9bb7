package pkce

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base64urlRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func TestGenerateCodeVerifier(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		verifier, err := GenerateCodeVerifier()
		require.NoError(t, err)

		// RFC 7636 requires 43-128 characters from the URL-safe alphabet
		assert.GreaterOrEqual(t, len(verifier), 43)
		assert.LessOrEqual(t, len(verifier), 128)
		assert.Regexp(t, base64urlRe, verifier)
		assert.NotContains(t, verifier, "=")

		assert.False(t, seen[verifier], "verifier repeated: %s", verifier)
		seen[verifier] = true
	}
}

func TestDeriveCodeChallenge(t *testing.T) {
	// Test vector from RFC 7636 Appendix B
	challenge := DeriveCodeChallenge("dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk")
	assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", challenge)
}

func TestDeriveCodeChallengeDeterministic(t *testing.T) {
	verifier, err := GenerateCodeVerifier()
	require.NoError(t, err)

	first := DeriveCodeChallenge(verifier)
	second := DeriveCodeChallenge(verifier)
	assert.Equal(t, first, second)
	assert.Regexp(t, base64urlRe, first)

	other, err := GenerateCodeVerifier()
	require.NoError(t, err)
	assert.NotEqual(t, first, DeriveCodeChallenge(other))
}

func TestGenerateOpaqueToken(t *testing.T) {
	tests := []struct {
		name   string
		length int
	}{
		{"short", 8},
		{"state_length", 32},
		{"long", 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateOpaqueToken(tt.length)
			require.NoError(t, err)
			assert.Len(t, token, tt.length)
			assert.Regexp(t, base64urlRe, token)
		})
	}
}

func TestGenerateOpaqueTokenInvalidLength(t *testing.T) {
	_, err := GenerateOpaqueToken(0)
	assert.Error(t, err)

	_, err = GenerateOpaqueToken(-5)
	assert.Error(t, err)
}
