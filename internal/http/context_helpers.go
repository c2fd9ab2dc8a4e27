package httpx

import (
	"context"

	domainauth "github.com/classpilot/classauth/internal/domain/auth"
)

// profileKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type profileKey struct{}

// SetProfileInContext returns a child context that carries the verified profile.
// If profile is nil, the original ctx is returned unchanged.
func SetProfileInContext(ctx context.Context, profile *domainauth.Profile) context.Context {
	if profile == nil {
		return ctx
	}
	return context.WithValue(ctx, profileKey{}, profile)
}

// ProfileFromContext returns the profile from context and a boolean indicating presence.
func ProfileFromContext(ctx context.Context) (*domainauth.Profile, bool) {
	if p, ok := ctx.Value(profileKey{}).(*domainauth.Profile); ok && p != nil {
		return p, true
	}
	return nil, false
}
