// Package pkce implements the Proof Key for Code Exchange primitives
// (RFC 7636) used by the OAuth authorization-code flow.
package pkce

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// verifierByteLen is the number of random bytes behind a code verifier.
// 32 bytes encode to 43 base64url characters, the RFC 7636 minimum.
const verifierByteLen = 32

// GenerateCodeVerifier produces a new random code verifier from a CSPRNG,
// encoded as base64url without padding. A failure to obtain secure random
// bytes is returned as an error; callers must abort the authentication
// attempt rather than substitute a weaker generator.
func GenerateCodeVerifier() (string, error) {
	b := make([]byte, verifierByteLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate code verifier: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DeriveCodeChallenge computes the S256 code challenge for a verifier:
// BASE64URL(SHA256(verifier)), no padding. Deterministic for a given input.
func DeriveCodeChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// GenerateOpaqueToken returns a random base64url string truncated to length
// characters. Used for the OAuth state anti-CSRF parameter.
func GenerateOpaqueToken(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("opaque token length must be positive, got %d", length)
	}
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate opaque token: %w", err)
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	return s[:length], nil
}
