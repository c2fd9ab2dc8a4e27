package idp

// Package idp composes the full identity-provider capability consumed by
// the session core: assertion verification (OIDC or dev), first-party
// session credential signing, and account-wide revocation.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/classpilot/classauth/internal/adapters/sessioncred"
	domainauth "github.com/classpilot/classauth/internal/domain/auth"
	"github.com/classpilot/classauth/internal/ports"
)

// Provider implements ports.IdentityProvider.
type Provider struct {
	assertions  ports.AssertionVerifier
	credentials *sessioncred.Manager
	revocations ports.RevocationStore
}

// Options groups dependencies for Provider.
type Options struct {
	Assertions  ports.AssertionVerifier
	Credentials *sessioncred.Manager
	Revocations ports.RevocationStore
}

// NewProvider constructs an identity provider from its parts.
func NewProvider(opts Options) (*Provider, error) {
	if opts.Assertions == nil {
		return nil, errors.New("assertion verifier is required")
	}
	if opts.Credentials == nil {
		return nil, errors.New("credential manager is required")
	}
	if opts.Revocations == nil {
		return nil, errors.New("revocation store is required")
	}
	return &Provider{
		assertions:  opts.Assertions,
		credentials: opts.Credentials,
		revocations: opts.Revocations,
	}, nil
}

// VerifyAssertion delegates to the configured assertion verifier.
func (p *Provider) VerifyAssertion(ctx context.Context, token string) (domainauth.Identity, error) {
	return p.assertions.VerifyAssertion(ctx, token)
}

// CreateSessionCredential mints a first-party credential for the identity's subject.
func (p *Provider) CreateSessionCredential(_ context.Context, identity domainauth.Identity, ttl time.Duration) (string, error) {
	if identity.Subject == "" {
		return "", errors.New("identity subject is required")
	}
	return p.credentials.Mint(identity.Subject, ttl)
}

// VerifySessionCredential checks the credential's signature and expiry,
// then its revocation status: a credential issued at or before the
// subject's revocation cut-off is rejected even inside its validity window.
func (p *Provider) VerifySessionCredential(ctx context.Context, credential string) (domainauth.SessionClaims, error) {
	claims, err := p.credentials.Verify(credential)
	if err != nil {
		return domainauth.SessionClaims{}, err
	}

	cutoff, err := p.revocations.RevokedAfter(ctx, claims.Subject)
	if err != nil {
		return domainauth.SessionClaims{}, fmt.Errorf("check revocation: %w", err)
	}
	if !cutoff.IsZero() && !claims.IssuedAt.After(cutoff) {
		return domainauth.SessionClaims{}, errors.New("session credential revoked")
	}

	return claims, nil
}

// RevokeAllCredentials invalidates every outstanding credential for the subject.
func (p *Provider) RevokeAllCredentials(ctx context.Context, subject string) error {
	if subject == "" {
		return errors.New("subject is required")
	}
	if err := p.revocations.Revoke(ctx, subject); err != nil {
		return fmt.Errorf("revoke credentials: %w", err)
	}
	return nil
}
