package idp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classpilot/classauth/internal/adapters/sessioncred"
	mocks "github.com/classpilot/classauth/internal/mocks/auth"
)

func newTestProvider(t *testing.T) (*Provider, *mocks.MemoryRevocationStore) {
	t.Helper()
	credentials, err := sessioncred.NewManager("test-secret")
	require.NoError(t, err)

	revocations := mocks.NewMemoryRevocationStore()
	provider, err := NewProvider(Options{
		Assertions:  mocks.NewMockIdentityProvider(),
		Credentials: credentials,
		Revocations: revocations,
	})
	require.NoError(t, err)
	return provider, revocations
}

func TestNewProvider_RequiresAllParts(t *testing.T) {
	credentials, err := sessioncred.NewManager("test-secret")
	require.NoError(t, err)

	_, err = NewProvider(Options{Credentials: credentials, Revocations: mocks.NewMemoryRevocationStore()})
	assert.Error(t, err)

	_, err = NewProvider(Options{Assertions: mocks.NewMockIdentityProvider(), Revocations: mocks.NewMemoryRevocationStore()})
	assert.Error(t, err)

	_, err = NewProvider(Options{Assertions: mocks.NewMockIdentityProvider(), Credentials: credentials})
	assert.Error(t, err)
}

func TestProvider_CredentialRoundTrip(t *testing.T) {
	provider, _ := newTestProvider(t)
	ctx := context.Background()

	identity, err := provider.VerifyAssertion(ctx, "assertion-ok")
	require.NoError(t, err)

	credential, err := provider.CreateSessionCredential(ctx, identity, time.Hour)
	require.NoError(t, err)

	claims, err := provider.VerifySessionCredential(ctx, credential)
	require.NoError(t, err)
	assert.Equal(t, identity.Subject, claims.Subject)
}

func TestProvider_RevocationInvalidatesEarlierCredentials(t *testing.T) {
	provider, revocations := newTestProvider(t)
	ctx := context.Background()

	identity, err := provider.VerifyAssertion(ctx, "assertion-ok")
	require.NoError(t, err)

	credential, err := provider.CreateSessionCredential(ctx, identity, time.Hour)
	require.NoError(t, err)

	// Cut-off after issuance invalidates the credential.
	revocations.Now = func() time.Time { return time.Now().Add(time.Second) }
	require.NoError(t, provider.RevokeAllCredentials(ctx, identity.Subject))

	_, err = provider.VerifySessionCredential(ctx, credential)
	assert.Error(t, err)
}

func TestProvider_CredentialMintedAfterRevocationIsValid(t *testing.T) {
	provider, revocations := newTestProvider(t)
	ctx := context.Background()

	identity, err := provider.VerifyAssertion(ctx, "assertion-ok")
	require.NoError(t, err)

	// Revocation in the past does not affect newer credentials.
	revocations.Now = func() time.Time { return time.Now().Add(-time.Minute) }
	require.NoError(t, provider.RevokeAllCredentials(ctx, identity.Subject))

	credential, err := provider.CreateSessionCredential(ctx, identity, time.Hour)
	require.NoError(t, err)

	claims, err := provider.VerifySessionCredential(ctx, credential)
	require.NoError(t, err)
	assert.Equal(t, identity.Subject, claims.Subject)
}

func TestProvider_RevokeRequiresSubject(t *testing.T) {
	provider, _ := newTestProvider(t)
	assert.Error(t, provider.RevokeAllCredentials(context.Background(), ""))
}
