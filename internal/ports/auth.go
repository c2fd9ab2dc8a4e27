package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"errors"
	"time"

	domainauth "github.com/classpilot/classauth/internal/domain/auth"
)

// ErrProfileNotFound is returned by ProfileStore.Get when no profile exists
// for the subject. Shared here so every implementation reports absence the
// same way.
var ErrProfileNotFound = errors.New("profile not found")

// AssertionVerifier validates a provider-signed identity assertion (ID
// token) and returns the identity it proves. Forged or expired assertions
// fail verification.
type AssertionVerifier interface {
	VerifyAssertion(ctx context.Context, token string) (domainauth.Identity, error)
}

// IdentityProvider is the full identity-provider capability consumed by the
// session core: assertion verification plus first-party session credential
// issuance, verification, and account-wide revocation.
type IdentityProvider interface {
	AssertionVerifier

	// CreateSessionCredential mints a session credential bound to the
	// assertion's subject with the given validity window.
	CreateSessionCredential(ctx context.Context, identity domainauth.Identity, ttl time.Duration) (string, error)

	// VerifySessionCredential checks a credential's signature, expiry, and
	// revocation status, returning the subject and issuance time.
	VerifySessionCredential(ctx context.Context, credential string) (domainauth.SessionClaims, error)

	// RevokeAllCredentials invalidates every outstanding credential for the
	// subject, not just the one presented.
	RevokeAllCredentials(ctx context.Context, subject string) error
}

// LoginFlow initiates and completes a browser login against the IdP,
// producing the identity assertion consumed by the session issuer.
type LoginFlow interface {
	// Begin starts the login flow and returns the provider auth URL, an
	// opaque state, and a nonce.
	Begin(ctx context.Context) (authURL, state, nonce string, err error)

	// Exchange completes the flow, verifying state and nonce, and returns
	// the raw identity assertion (ID token).
	Exchange(ctx context.Context, in ExchangeInput) (assertion string, err error)
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// ProfileStore persists canonical user profiles keyed by subject id.
// The session core only reads profiles and creates them on first use;
// mutation belongs to external collaborators.
type ProfileStore interface {
	Get(ctx context.Context, subject string) (domainauth.ProfileDoc, error)
	Create(ctx context.Context, subject string, doc domainauth.ProfileDoc) error
}

// RevocationStore records account-wide revocation cut-offs. A session
// credential issued before the subject's cut-off is unusable even if its
// nominal validity window has not elapsed.
type RevocationStore interface {
	// Revoke records now as the subject's revocation cut-off.
	Revoke(ctx context.Context, subject string) error

	// RevokedAfter returns the subject's cut-off, or the zero time when the
	// subject has never been revoked.
	RevokedAfter(ctx context.Context, subject string) (time.Time, error)
}
