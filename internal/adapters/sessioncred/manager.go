package sessioncred

// Package sessioncred mints and verifies first-party session credentials.
// A credential is an HS256-signed JWT carrying only the subject and the
// issuance/expiry timestamps; profile data lives in the profile store and
// the user cookie, never in the credential.

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	domainauth "github.com/classpilot/classauth/internal/domain/auth"
)

const issuer = "classauth"

// Manager signs and verifies session credentials.
type Manager struct {
	secret []byte
}

// NewManager creates a Manager with the given signing key.
func NewManager(secret string) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("session signing key is required")
	}
	return &Manager{secret: []byte(secret)}, nil
}

// Mint creates a signed session credential for the subject with the given
// validity window.
func (m *Manager) Mint(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("subject is required")
	}
	if ttl <= 0 {
		return "", errors.New("ttl must be positive")
	}

	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session credential: %w", err)
	}
	return signed, nil
}

// Verify checks a credential's signature and expiry and returns the claims
// it proves. It does not consult the revocation store; that belongs to the
// composed identity provider.
func (m *Manager) Verify(credential string) (domainauth.SessionClaims, error) {
	if credential == "" {
		return domainauth.SessionClaims{}, errors.New("credential is required")
	}

	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(credential, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return domainauth.SessionClaims{}, fmt.Errorf("parse session credential: %w", err)
	}
	if !token.Valid {
		return domainauth.SessionClaims{}, errors.New("invalid session credential")
	}
	if claims.Subject == "" {
		return domainauth.SessionClaims{}, errors.New("session credential missing subject")
	}
	if claims.IssuedAt == nil {
		return domainauth.SessionClaims{}, errors.New("session credential missing issued-at")
	}

	return domainauth.SessionClaims{
		Subject:  claims.Subject,
		IssuedAt: claims.IssuedAt.Time,
	}, nil
}
