package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/classpilot/classauth/config"
	"github.com/classpilot/classauth/internal/adapters/devidp"
	"github.com/classpilot/classauth/internal/adapters/idp"
	"github.com/classpilot/classauth/internal/adapters/oidc"
	redisadapter "github.com/classpilot/classauth/internal/adapters/redis"
	"github.com/classpilot/classauth/internal/adapters/sessioncred"
	"github.com/classpilot/classauth/internal/data"
	"github.com/classpilot/classauth/internal/ports"
	"github.com/classpilot/classauth/internal/service"
)

// AuthStackConfig contains configuration for the session services.
type AuthStackConfig struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient
	Profiles    *data.ProfileRepo
	Logger      *slog.Logger
}

// AuthStack bundles the session services and the login flow they feed on.
type AuthStack struct {
	Issuer   *service.Issuer
	Verifier *service.Verifier
	Revoker  *service.Revoker
	Flow     ports.LoginFlow
}

// BuildAuthStack wires the identity provider for the configured auth mode
// and constructs the session services on top of it.
func BuildAuthStack(cfg AuthStackConfig) (*AuthStack, error) {
	if cfg.RedisClient == nil {
		return nil, errors.New("redis client is required")
	}
	if cfg.Profiles == nil {
		return nil, errors.New("profile repository is required")
	}

	credentials, err := sessioncred.NewManager(cfg.Auth.SessionSigningKey)
	if err != nil {
		return nil, fmt.Errorf("session credential manager: %w", err)
	}

	// Revocation cut-offs only matter while a credential could still be
	// live, so they share the session window as retention.
	revocations := redisadapter.NewRevocationStore(cfg.RedisClient, cfg.Auth.SessionTTL)

	assertions, flow, err := buildAssertionSource(cfg)
	if err != nil {
		return nil, err
	}

	provider, err := idp.NewProvider(idp.Options{
		Assertions:  assertions,
		Credentials: credentials,
		Revocations: revocations,
	})
	if err != nil {
		return nil, fmt.Errorf("identity provider: %w", err)
	}

	return &AuthStack{
		Issuer: service.NewIssuer(service.IssuerOptions{
			Provider:   provider,
			Profiles:   cfg.Profiles,
			Logger:     cfg.Logger,
			SessionTTL: cfg.Auth.SessionTTL,
		}),
		Verifier: service.NewVerifier(service.VerifierOptions{
			Provider:          provider,
			Profiles:          cfg.Profiles,
			Logger:            cfg.Logger,
			CriticalFreshness: cfg.Auth.CriticalFreshness,
		}),
		Revoker: service.NewRevoker(service.RevokerOptions{
			Provider: provider,
			Logger:   cfg.Logger,
		}),
		Flow: flow,
	}, nil
}

// buildAssertionSource picks the assertion verifier and login flow for the
// configured mode.
func buildAssertionSource(cfg AuthStackConfig) (ports.AssertionVerifier, ports.LoginFlow, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		prov, err := devidp.NewProvider(devidp.Config{
			Subject: cfg.Auth.DevAuth.Subject,
			Name:    cfg.Auth.DevAuth.Name,
			Email:   cfg.Auth.DevAuth.Email,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("dev identity provider: %w", err)
		}
		if cfg.Logger != nil {
			cfg.Logger.Warn("using dev identity provider", "subject", cfg.Auth.DevAuth.Subject)
		}
		return prov, prov, nil

	case config.AuthModeOIDC:
		o := cfg.Auth.OIDC
		if o.DiscoveryURL == "" || o.ClientID == "" || o.ClientSecret == "" {
			return nil, nil, errors.New("oidc mode requires discovery URL, client id, and client secret")
		}
		prov, err := oidc.NewProvider(oidc.ProviderConfig{
			ClientID:     o.ClientID,
			ClientSecret: o.ClientSecret,
			RedirectURL:  o.RedirectURL,
			Scope:        o.Scope,
			DiscoveryURL: o.DiscoveryURL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("oidc provider: %w", err)
		}
		return prov, prov, nil

	default:
		return nil, nil, fmt.Errorf("unsupported auth mode %q", cfg.Auth.Mode)
	}
}
