package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainauth "github.com/classpilot/classauth/internal/domain/auth"
	"github.com/classpilot/classauth/internal/ports"
)

// VerifierOptions groups dependencies for Verifier.
type VerifierOptions struct {
	Provider ports.IdentityProvider
	Profiles ports.ProfileStore
	Logger   *slog.Logger

	// CriticalFreshness is the maximum credential age the critical tier
	// accepts. Default 1h when zero.
	CriticalFreshness time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Verifier answers "who is this request" at three trust tiers. Quick reads
// the cached snapshot only, Secure re-verifies the credential and re-reads
// the profile store, Critical additionally bounds the credential's age.
// All tiers are read-only and safe for concurrent use.
type Verifier struct {
	provider  ports.IdentityProvider
	profiles  ports.ProfileStore
	logger    *slog.Logger
	freshness time.Duration
	now       func() time.Time
}

// NewVerifier constructs a new Verifier.
func NewVerifier(opts VerifierOptions) *Verifier {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	freshness := opts.CriticalFreshness
	if freshness <= 0 {
		freshness = time.Hour
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Verifier{
		provider:  opts.Provider,
		profiles:  opts.Profiles,
		logger:    logger,
		freshness: freshness,
		now:       now,
	}
}

// QuickIdentity returns the profile snapshot cached in the user cookie, or
// nil when the cookie is absent or unreadable. It performs no credential
// verification; the snapshot reflects the session as issued, not current
// store state.
func (v *Verifier) QuickIdentity(cookies domainauth.CookieSet) *domainauth.Profile {
	if cookies.User == "" {
		return nil
	}
	profile, err := domainauth.DecodeUserSnapshot(cookies.User)
	if err != nil {
		v.logger.Warn("user snapshot unreadable", slog.String("error", err.Error()))
		return nil
	}
	return &profile
}

// QuickIsAdmin reads the isAdmin convenience cookie. Absent means false.
func (v *Verifier) QuickIsAdmin(cookies domainauth.CookieSet) bool {
	return cookies.IsAdmin == "true"
}

// QuickIsProfessor reads the isProfessor convenience cookie.
func (v *Verifier) QuickIsProfessor(cookies domainauth.CookieSet) bool {
	return cookies.IsProfessor == "true"
}

// QuickHasPaidPlan reads the hasPlan convenience cookie.
func (v *Verifier) QuickHasPaidPlan(cookies domainauth.CookieSet) bool {
	return cookies.HasPlan == "true"
}

// SecureIdentity verifies the session credential with the provider,
// including the account-wide revocation check, then re-reads the profile
// store so role and plan reflect current state rather than the issuance
// snapshot. Returns (nil, nil) when there is no usable session and
// (nil, err) only on infrastructure faults.
func (v *Verifier) SecureIdentity(ctx context.Context, cookies domainauth.CookieSet) (*domainauth.Profile, error) {
	profile, _, err := v.secureIdentity(ctx, cookies)
	return profile, err
}

// CriticalIdentity is SecureIdentity with a freshness bound: credentials
// issued longer ago than the freshness window are treated as absent, so
// sensitive operations always see a recent proof of presence.
func (v *Verifier) CriticalIdentity(ctx context.Context, cookies domainauth.CookieSet) (*domainauth.Profile, error) {
	profile, claims, err := v.secureIdentity(ctx, cookies)
	if profile == nil || err != nil {
		return nil, err
	}
	if age := v.now().Sub(claims.IssuedAt); age > v.freshness {
		v.logger.Debug("session credential too old for critical tier",
			slog.String("subject", claims.Subject),
			slog.Duration("age", age))
		return nil, nil
	}
	return profile, nil
}

// SecureHasPermission verifies at the secure tier and evaluates the role
// requirement hierarchically. Any failure to identify yields false.
func (v *Verifier) SecureHasPermission(ctx context.Context, cookies domainauth.CookieSet, required domainauth.Role) bool {
	profile, err := v.SecureIdentity(ctx, cookies)
	if err != nil || profile == nil {
		return false
	}
	return domainauth.Authorize(*profile, domainauth.Requirement{Role: required})
}

func (v *Verifier) secureIdentity(ctx context.Context, cookies domainauth.CookieSet) (*domainauth.Profile, domainauth.SessionClaims, error) {
	if cookies.Session == "" {
		return nil, domainauth.SessionClaims{}, nil
	}

	claims, err := v.provider.VerifySessionCredential(ctx, cookies.Session)
	if err != nil {
		// Forged, expired, and revoked credentials are expected negatives.
		v.logger.Info("session credential rejected", slog.String("error", err.Error()))
		return nil, domainauth.SessionClaims{}, nil
	}

	doc, err := v.profiles.Get(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ports.ErrProfileNotFound) {
			// Account deleted after the session was issued.
			v.logger.WarnContext(ctx, "profile gone for live session",
				slog.String("subject", claims.Subject))
			return nil, domainauth.SessionClaims{}, nil
		}
		v.logger.ErrorContext(ctx, "profile read failed during verification",
			slog.String("subject", claims.Subject),
			slog.String("error", err.Error()))
		return nil, domainauth.SessionClaims{}, fmt.Errorf("read profile: %w", err)
	}

	profile := domainauth.Profile{Role: doc.Role, Plan: doc.Plan}
	if snap := v.QuickIdentity(cookies); snap != nil {
		profile.Name = snap.Name
		profile.Email = snap.Email
		profile.Photo = snap.Photo
	}
	return &profile, claims, nil
}
