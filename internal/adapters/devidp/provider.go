package devidp

// Package devidp provides a config-driven assertion verifier and login flow
// for local development. It short-circuits the browser flow by redirecting
// straight back to our own callback, and its assertions are self-describing
// JSON blobs rather than signed tokens.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domainauth "github.com/classpilot/classauth/internal/domain/auth"
	"github.com/classpilot/classauth/internal/ports"
)

// Config controls the dev identity. Subject and Email are required.
type Config struct {
	Subject string
	Name    string
	Email   string
}

// Provider implements ports.AssertionVerifier and ports.LoginFlow.
type Provider struct {
	cfg Config
}

// NewProvider constructs a dev provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Subject == "" {
		return nil, errors.New("dev idp: Subject is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev idp: Email is required")
	}
	return &Provider{cfg: cfg}, nil
}

type devAssertion struct {
	Subject  string `json:"sub"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	IssuedAt int64  `json:"iat"`
}

// Begin returns a local callback URL and locally generated state and nonce.
func (p *Provider) Begin(_ context.Context) (string, string, string, error) {
	state, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	// The standard handler expects GET /auth/callback?code=...&state=...
	authURL := "/auth/callback?code=dev&state=" + state
	return authURL, state, nonce, nil
}

// Exchange ignores the provided code (state is validated by the handler)
// and returns a freshly minted dev assertion for the configured identity.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (string, error) {
	raw, err := json.Marshal(devAssertion{
		Subject:  p.cfg.Subject,
		Name:     p.cfg.Name,
		Email:    p.cfg.Email,
		IssuedAt: time.Now().Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("encode dev assertion: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// VerifyAssertion decodes a dev assertion and checks it names the configured subject.
func (p *Provider) VerifyAssertion(_ context.Context, token string) (domainauth.Identity, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("decode dev assertion: %w", err)
	}
	var a devAssertion
	if err := json.Unmarshal(raw, &a); err != nil {
		return domainauth.Identity{}, fmt.Errorf("parse dev assertion: %w", err)
	}
	if a.Subject == "" || a.Subject != p.cfg.Subject {
		return domainauth.Identity{}, errors.New("dev assertion subject mismatch")
	}
	issued := time.Unix(a.IssuedAt, 0)
	return domainauth.Identity{
		Subject:   a.Subject,
		Name:      a.Name,
		Email:     a.Email,
		IssuedAt:  issued,
		ExpiresAt: issued.Add(time.Hour),
	}, nil
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	bLen := (n*3 + 3) / 4
	b := make([]byte, bLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	for len(s) < n {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:n], nil
}
