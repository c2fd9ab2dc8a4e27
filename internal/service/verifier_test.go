package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/classpilot/classauth/internal/domain/auth"
	mocks "github.com/classpilot/classauth/internal/mocks/auth"
)

// establishCookies runs a full issuance and converts the resulting
// transaction into the cookie set a subsequent request would carry.
func establishCookies(t *testing.T, issuer *Issuer, assertion string) domainauth.CookieSet {
	t.Helper()
	result, err := issuer.EstablishSession(context.Background(), assertion)
	require.NoError(t, err)

	var cookies domainauth.CookieSet
	for _, w := range result.Cookies.Writes {
		switch w.Name {
		case domainauth.CookieSession:
			cookies.Session = w.Value
		case domainauth.CookieUser:
			cookies.User = w.Value
		case domainauth.CookieIsAdmin:
			cookies.IsAdmin = w.Value
		case domainauth.CookieIsProfessor:
			cookies.IsProfessor = w.Value
		case domainauth.CookieHasPlan:
			cookies.HasPlan = w.Value
		}
	}
	return cookies
}

func TestVerifier_QuickIdentity(t *testing.T) {
	provider := mocks.NewMockIdentityProvider()
	profiles := mocks.NewMemoryProfileStore()
	issuer := newTestIssuer(provider, profiles)
	verifier := NewVerifier(VerifierOptions{Provider: provider, Profiles: profiles})

	cookies := establishCookies(t, issuer, provider.ValidAssertion)

	profile := verifier.QuickIdentity(cookies)
	require.NotNil(t, profile)
	assert.Equal(t, domainauth.RoleStudent, profile.Role)
	assert.Equal(t, provider.DefaultIdentity.Email, profile.Email)
}

func TestVerifier_QuickIdentity_NoCookie(t *testing.T) {
	verifier := NewVerifier(VerifierOptions{})
	assert.Nil(t, verifier.QuickIdentity(domainauth.CookieSet{}))
}

func TestVerifier_QuickIdentity_MalformedSnapshot(t *testing.T) {
	verifier := NewVerifier(VerifierOptions{})
	assert.Nil(t, verifier.QuickIdentity(domainauth.CookieSet{User: "{not json"}))
	assert.Nil(t, verifier.QuickIdentity(domainauth.CookieSet{User: `{"v":99}`}))
}

func TestVerifier_QuickFlags(t *testing.T) {
	verifier := NewVerifier(VerifierOptions{})

	cookies := domainauth.CookieSet{IsAdmin: "true", HasPlan: "true"}
	assert.True(t, verifier.QuickIsAdmin(cookies))
	assert.False(t, verifier.QuickIsProfessor(cookies))
	assert.True(t, verifier.QuickHasPaidPlan(cookies))

	assert.False(t, verifier.QuickIsAdmin(domainauth.CookieSet{}))
	assert.False(t, verifier.QuickIsAdmin(domainauth.CookieSet{IsAdmin: "1"}))
}

func TestVerifier_SecureIdentity_ReflectsStoreState(t *testing.T) {
	provider := mocks.NewMockIdentityProvider()
	profiles := mocks.NewMemoryProfileStore()
	issuer := newTestIssuer(provider, profiles)
	verifier := NewVerifier(VerifierOptions{Provider: provider, Profiles: profiles})

	cookies := establishCookies(t, issuer, provider.ValidAssertion)

	// Role change after issuance is visible at the secure tier even though
	// the quick snapshot still says aluno.
	profiles.Put(provider.DefaultIdentity.Subject, domainauth.ProfileDoc{Role: domainauth.RoleProfessor, Plan: "premium"})

	quick := verifier.QuickIdentity(cookies)
	require.NotNil(t, quick)
	assert.Equal(t, domainauth.RoleStudent, quick.Role)

	secure, err := verifier.SecureIdentity(context.Background(), cookies)
	require.NoError(t, err)
	require.NotNil(t, secure)
	assert.Equal(t, domainauth.RoleProfessor, secure.Role)
	assert.Equal(t, "premium", secure.Plan)
	assert.Equal(t, quick.Email, secure.Email, "identity fields come from the snapshot")
}

func TestVerifier_SecureIdentity_NoSession(t *testing.T) {
	verifier := NewVerifier(VerifierOptions{Provider: mocks.NewMockIdentityProvider(), Profiles: mocks.NewMemoryProfileStore()})

	profile, err := verifier.SecureIdentity(context.Background(), domainauth.CookieSet{})
	assert.NoError(t, err)
	assert.Nil(t, profile)
}

func TestVerifier_SecureIdentity_ForgedCredential(t *testing.T) {
	provider := mocks.NewMockIdentityProvider()
	verifier := NewVerifier(VerifierOptions{Provider: provider, Profiles: mocks.NewMemoryProfileStore()})

	profile, err := verifier.SecureIdentity(context.Background(), domainauth.CookieSet{Session: "forged"})
	assert.NoError(t, err, "rejection is a negative result, not a fault")
	assert.Nil(t, profile)
}

func TestVerifier_SecureIdentity_RevokedCredential(t *testing.T) {
	provider := mocks.NewMockIdentityProvider()
	profiles := mocks.NewMemoryProfileStore()
	issuer := newTestIssuer(provider, profiles)
	verifier := NewVerifier(VerifierOptions{Provider: provider, Profiles: profiles})

	cookies := establishCookies(t, issuer, provider.ValidAssertion)

	require.NoError(t, provider.RevokeAllCredentials(context.Background(), provider.DefaultIdentity.Subject))

	profile, err := verifier.SecureIdentity(context.Background(), cookies)
	assert.NoError(t, err)
	assert.Nil(t, profile)
}

func TestVerifier_SecureIdentity_ProfileGone(t *testing.T) {
	provider := mocks.NewMockIdentityProvider()
	profiles := mocks.NewMemoryProfileStore()
	issuer := newTestIssuer(provider, profiles)
	verifier := NewVerifier(VerifierOptions{Provider: provider, Profiles: profiles})

	cookies := establishCookies(t, issuer, provider.ValidAssertion)
	profiles.Delete(provider.DefaultIdentity.Subject)

	profile, err := verifier.SecureIdentity(context.Background(), cookies)
	assert.NoError(t, err)
	assert.Nil(t, profile)
}

func TestVerifier_SecureIdentity_StoreFault(t *testing.T) {
	provider := mocks.NewMockIdentityProvider()
	profiles := mocks.NewMemoryProfileStore()
	issuer := newTestIssuer(provider, profiles)
	verifier := NewVerifier(VerifierOptions{Provider: provider, Profiles: profiles})

	cookies := establishCookies(t, issuer, provider.ValidAssertion)
	profiles.GetErr = errors.New("store unavailable")

	profile, err := verifier.SecureIdentity(context.Background(), cookies)
	assert.Error(t, err)
	assert.Nil(t, profile)
}

func TestVerifier_CriticalIdentity_FreshnessWindow(t *testing.T) {
	now := time.Now()
	provider := mocks.NewMockIdentityProvider()
	profiles := mocks.NewMemoryProfileStore()
	issuer := newTestIssuer(provider, profiles)

	clock := now
	verifier := NewVerifier(VerifierOptions{
		Provider:          provider,
		Profiles:          profiles,
		CriticalFreshness: time.Hour,
		Now:               func() time.Time { return clock },
	})

	provider.Now = func() time.Time { return now }
	cookies := establishCookies(t, issuer, provider.ValidAssertion)

	profile, err := verifier.CriticalIdentity(context.Background(), cookies)
	require.NoError(t, err)
	assert.NotNil(t, profile, "fresh credential passes the critical tier")

	// 2h later the secure tier still accepts the credential but critical
	// refuses it.
	clock = now.Add(2 * time.Hour)

	secure, err := verifier.SecureIdentity(context.Background(), cookies)
	require.NoError(t, err)
	assert.NotNil(t, secure)

	critical, err := verifier.CriticalIdentity(context.Background(), cookies)
	assert.NoError(t, err, "staleness is a negative result, not a fault")
	assert.Nil(t, critical)
}

func TestVerifier_SecureHasPermission(t *testing.T) {
	provider := mocks.NewMockIdentityProvider()
	profiles := mocks.NewMemoryProfileStore()
	issuer := newTestIssuer(provider, profiles)
	verifier := NewVerifier(VerifierOptions{Provider: provider, Profiles: profiles})

	profiles.Put(provider.DefaultIdentity.Subject, domainauth.ProfileDoc{Role: domainauth.RoleProfessor, Plan: domainauth.PlanFree})
	cookies := establishCookies(t, issuer, provider.ValidAssertion)

	ctx := context.Background()
	assert.True(t, verifier.SecureHasPermission(ctx, cookies, domainauth.RoleStudent))
	assert.True(t, verifier.SecureHasPermission(ctx, cookies, domainauth.RoleProfessor))
	assert.False(t, verifier.SecureHasPermission(ctx, cookies, domainauth.RoleAdmin))

	assert.False(t, verifier.SecureHasPermission(ctx, domainauth.CookieSet{}, domainauth.RoleStudent))
}
