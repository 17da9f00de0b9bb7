package secret

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memProvider is an in-memory provider for tests.
type memProvider struct {
	secretType string
	values     map[string]string
	available  bool
}

func (p *memProvider) CanResolve(secretType string) bool { return secretType == p.secretType }
func (p *memProvider) IsAvailable() bool                 { return p.available }

func (p *memProvider) Resolve(_ context.Context, ref Ref) (string, error) {
	v, ok := p.values[ref.Name]
	if !ok {
		return "", fmt.Errorf("secret %s not found", ref.Name)
	}
	return v, nil
}

func (p *memProvider) Store(_ context.Context, ref Ref, value string) error {
	p.values[ref.Name] = value
	return nil
}

func (p *memProvider) Delete(_ context.Context, ref Ref) error {
	delete(p.values, ref.Name)
	return nil
}

func TestResolverDispatch(t *testing.T) {
	r := NewResolver()
	r.RegisterProvider("mem", &memProvider{
		secretType: "mem",
		values:     map[string]string{"token": "hunter2"},
		available:  true,
	})

	value, err := r.Resolve(context.Background(), Ref{Type: "mem", Name: "token"})
	require.NoError(t, err)
	assert.Equal(t, "hunter2", value)

	_, err = r.Resolve(context.Background(), Ref{Type: "vault", Name: "token"})
	assert.ErrorContains(t, err, "no provider for secret type")
}

func TestResolverUnavailableProvider(t *testing.T) {
	r := &Resolver{providers: make(map[string]Provider)}
	r.RegisterProvider("mem", &memProvider{secretType: "mem", available: false})

	_, err := r.Resolve(context.Background(), Ref{Type: "mem", Name: "token"})
	assert.ErrorContains(t, err, "not available")
}

func TestResolverStoreDelete(t *testing.T) {
	mem := &memProvider{secretType: "mem", values: map[string]string{}, available: true}
	r := &Resolver{providers: make(map[string]Provider)}
	r.RegisterProvider("mem", mem)

	ref := Ref{Type: "mem", Name: "api-token"}
	require.NoError(t, r.Store(context.Background(), ref, "v1"))

	value, err := r.Resolve(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, "v1", value)

	require.NoError(t, r.Delete(context.Background(), ref))
	_, err = r.Resolve(context.Background(), ref)
	assert.Error(t, err)
}

func TestEnvProviderRoundTrip(t *testing.T) {
	t.Setenv("HACONNECT_SECRET_TEST", "from-env")

	p := NewEnvProvider()
	assert.True(t, p.CanResolve("env"))
	assert.False(t, p.CanResolve("keyring"))
	assert.True(t, p.IsAvailable())

	value, err := p.Resolve(context.Background(), Ref{Type: "env", Name: "HACONNECT_SECRET_TEST"})
	require.NoError(t, err)
	assert.Equal(t, "from-env", value)

	assert.Error(t, p.Store(context.Background(), Ref{Type: "env", Name: "X"}, "v"))
	assert.Error(t, p.Delete(context.Background(), Ref{Type: "env", Name: "X"}))
}
