package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOIDC uses an OIDC identity provider.
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeMock uses a mock/dev identity provider (development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oidc", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oidc, mock)", v)
	}
}

// OIDCConfig contains OIDC identity provider configuration.
type OIDCConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"classauth"`
	ClientSecret string `env:"CLIENT_SECRET" envDefault:"classauth"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
}

// DevAuthConfig controls the mock identity provider.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	Subject string `env:"SUBJECT" envDefault:"dev-user"`
	Name    string `env:"NAME"    envDefault:"Dev User"`
	Email   string `env:"EMAIL"   envDefault:"dev@example.com"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which identity provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oidc"`

	// OIDC configuration (used when Mode=oidc).
	OIDC OIDCConfig `envPrefix:"OIDC_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// SessionSigningKey signs first-party session credentials.
	SessionSigningKey string `env:"SESSION_SIGNING_KEY,required"`

	// SessionTTL is the fixed validity window of a session credential and
	// its derived trust cookies.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"120h"`

	// CriticalFreshness is the maximum credential age accepted by the
	// critical verification tier, regardless of nominal validity.
	CriticalFreshness time.Duration `env:"CRITICAL_FRESHNESS" envDefault:"1h"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.SessionTTL <= 0 {
		a.SessionTTL = 120 * time.Hour
	}
	if a.CriticalFreshness <= 0 {
		a.CriticalFreshness = time.Hour
	}
	// Critical freshness wider than the session window is meaningless.
	if a.CriticalFreshness > a.SessionTTL {
		a.CriticalFreshness = a.SessionTTL
	}
}
