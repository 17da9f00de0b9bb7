package secret

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantType  string
		wantName  string
		expectErr bool
	}{
		{name: "env ref", input: "${env:HA_TOKEN}", wantType: "env", wantName: "HA_TOKEN"},
		{name: "keyring ref", input: "${keyring:home-token}", wantType: "keyring", wantName: "home-token"},
		{name: "ref with surrounding text", input: "Bearer ${env:HA_TOKEN}", wantType: "env", wantName: "HA_TOKEN"},
		{name: "whitespace trimmed", input: "${env: HA_TOKEN }", wantType: "env", wantName: "HA_TOKEN"},
		{name: "plain string", input: "not-a-ref", expectErr: true},
		{name: "missing type", input: "${:NAME}", expectErr: true},
		{name: "unclosed brace", input: "${env:NAME", expectErr: true},
		{name: "empty", input: "", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseRef(tt.input)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, ref.Type)
			assert.Equal(t, tt.wantName, ref.Name)
		})
	}
}

func TestIsRef(t *testing.T) {
	assert.True(t, IsRef("${env:X}"))
	assert.True(t, IsRef("prefix ${keyring:y} suffix"))
	assert.False(t, IsRef("plain-token"))
	assert.False(t, IsRef("${env}"))
	assert.False(t, IsRef(""))
}

func TestFindRefs(t *testing.T) {
	refs := FindRefs("a=${env:A} b=${keyring:B}")
	require.Len(t, refs, 2)
	assert.Equal(t, "A", refs[0].Name)
	assert.Equal(t, "keyring", refs[1].Type)
}

func TestExpandRefs(t *testing.T) {
	t.Setenv("HACONNECT_TEST_TOKEN", "secret-value")

	r := NewResolver()

	out, err := r.ExpandRefs(context.Background(), "${env:HACONNECT_TEST_TOKEN}")
	require.NoError(t, err)
	assert.Equal(t, "secret-value", out)

	// Non-refs pass through untouched
	out, err = r.ExpandRefs(context.Background(), "literal-token")
	require.NoError(t, err)
	assert.Equal(t, "literal-token", out)

	// Unresolvable refs fail the whole expansion
	_, err = r.ExpandRefs(context.Background(), "${env:HACONNECT_TEST_MISSING_VAR}")
	assert.Error(t, err)
}

func TestMaskValue(t *testing.T) {
	assert.Equal(t, "****", MaskValue(""))
	assert.Equal(t, "****", MaskValue("abcd"))
	assert.Equal(t, "ab****", MaskValue("abcdefgh"))
	assert.Equal(t, "lon****ue", MaskValue("long-secret-value"))
}
