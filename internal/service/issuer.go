package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainauth "github.com/classpilot/classauth/internal/domain/auth"
	apperrors "github.com/classpilot/classauth/internal/errors"
	"github.com/classpilot/classauth/internal/ports"
)

// IssuerOptions groups dependencies for Issuer.
type IssuerOptions struct {
	Provider ports.IdentityProvider
	Profiles ports.ProfileStore
	Logger   *slog.Logger

	// SessionTTL is the validity window of issued credentials and cookies.
	SessionTTL time.Duration
}

// Issuer turns a verified identity assertion into an established session:
// a signed session credential plus the trust cookie transaction that
// carries it and the profile snapshot.
type Issuer struct {
	provider   ports.IdentityProvider
	profiles   ports.ProfileStore
	logger     *slog.Logger
	sessionTTL time.Duration
}

// NewIssuer constructs a new Issuer.
func NewIssuer(opts IssuerOptions) *Issuer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Issuer{
		provider:   opts.Provider,
		profiles:   opts.Profiles,
		logger:     logger,
		sessionTTL: opts.SessionTTL,
	}
}

// EstablishResult contains the outcome of session establishment.
type EstablishResult struct {
	Role    domainauth.Role
	Profile domainauth.Profile
	Cookies domainauth.CookieTxn
}

// EstablishSession verifies an identity assertion, loads or creates the
// subject's profile, mints a session credential, and returns the cookie
// transaction establishing the session. No cookies are produced on any
// failure path.
func (s *Issuer) EstablishSession(ctx context.Context, assertion string) (*EstablishResult, error) {
	if assertion == "" {
		return nil, apperrors.InvalidAssertion(errors.New("assertion is empty"))
	}

	identity, err := s.provider.VerifyAssertion(ctx, assertion)
	if err != nil {
		return nil, apperrors.InvalidAssertion(err)
	}

	doc, err := s.lookupOrCreateProfile(ctx, identity.Subject)
	if err != nil {
		return nil, apperrors.ProfileLookup(err)
	}

	credential, err := s.provider.CreateSessionCredential(ctx, identity, s.sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("create session credential: %w", err)
	}

	profile := domainauth.Profile{
		Role:  doc.Role,
		Plan:  doc.Plan,
		Name:  identity.Name,
		Email: identity.Email,
		Photo: identity.Picture,
	}
	snapshot, err := domainauth.EncodeUserSnapshot(profile)
	if err != nil {
		return nil, fmt.Errorf("encode user snapshot: %w", err)
	}

	s.logger.InfoContext(ctx, "session established",
		slog.String("subject", identity.Subject),
		slog.String("role", string(doc.Role)))

	return &EstablishResult{
		Role:    doc.Role,
		Profile: profile,
		Cookies: domainauth.IssueTxn(credential, snapshot, profile, s.sessionTTL),
	}, nil
}

// lookupOrCreateProfile reads the subject's profile, creating the default
// one on first session establishment. A create race with another request
// resolves by re-reading.
func (s *Issuer) lookupOrCreateProfile(ctx context.Context, subject string) (domainauth.ProfileDoc, error) {
	doc, err := s.profiles.Get(ctx, subject)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, ports.ErrProfileNotFound) {
		return domainauth.ProfileDoc{}, fmt.Errorf("get profile: %w", err)
	}

	doc = domainauth.DefaultProfileDoc()
	if createErr := s.profiles.Create(ctx, subject, doc); createErr != nil {
		if apperrors.IsConflict(createErr) {
			return s.profiles.Get(ctx, subject)
		}
		return domainauth.ProfileDoc{}, fmt.Errorf("create profile: %w", createErr)
	}
	s.logger.InfoContext(ctx, "profile created", slog.String("subject", subject))
	return doc, nil
}
