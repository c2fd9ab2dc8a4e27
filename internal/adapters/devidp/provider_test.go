package devidp

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classpilot/classauth/internal/ports"
)

func devConfig() Config {
	return Config{Subject: "dev-user", Name: "Dev User", Email: "dev@example.com"}
}

func TestNewProvider_Validation(t *testing.T) {
	_, err := NewProvider(Config{Email: "dev@example.com"})
	assert.Error(t, err)

	_, err = NewProvider(Config{Subject: "dev-user"})
	assert.Error(t, err)

	p, err := NewProvider(devConfig())
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestProvider_Begin(t *testing.T) {
	p, err := NewProvider(devConfig())
	require.NoError(t, err)

	authURL, state, nonce, err := p.Begin(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(authURL, "/auth/callback?"))
	assert.Contains(t, authURL, state)
	assert.Len(t, state, 24)
	assert.Len(t, nonce, 24)

	_, state2, _, err := p.Begin(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, state, state2)
}

func TestProvider_ExchangeAndVerify(t *testing.T) {
	p, err := NewProvider(devConfig())
	require.NoError(t, err)
	ctx := context.Background()

	assertion, err := p.Exchange(ctx, ports.ExchangeInput{Code: "dev"})
	require.NoError(t, err)
	require.NotEmpty(t, assertion)

	identity, err := p.VerifyAssertion(ctx, assertion)
	require.NoError(t, err)
	assert.Equal(t, "dev-user", identity.Subject)
	assert.Equal(t, "dev@example.com", identity.Email)
	assert.False(t, identity.IssuedAt.IsZero())
	assert.True(t, identity.ExpiresAt.After(identity.IssuedAt))
}

func TestProvider_VerifyAssertion_Rejections(t *testing.T) {
	p, err := NewProvider(devConfig())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = p.VerifyAssertion(ctx, "!!not-base64!!")
	assert.Error(t, err)

	other, err := NewProvider(Config{Subject: "someone-else", Email: "other@example.com"})
	require.NoError(t, err)
	foreign, err := other.Exchange(ctx, ports.ExchangeInput{Code: "dev"})
	require.NoError(t, err)

	_, err = p.VerifyAssertion(ctx, foreign)
	assert.Error(t, err, "assertion for a different subject is rejected")
}
