package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/classpilot/classauth/internal/domain/auth"
	"github.com/classpilot/classauth/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityProvider = (*MockIdentityProvider)(nil)
	_ ports.LoginFlow        = (*MockLoginFlow)(nil)
	_ ports.ProfileStore     = (*MemoryProfileStore)(nil)
	_ ports.RevocationStore  = (*MemoryRevocationStore)(nil)
)

// MockIdentityProvider simulates the identity provider for tests. Default
// behavior treats any assertion equal to ValidAssertion as proving
// DefaultIdentity, mints credentials of the form "cred:<subject>:<n>", and
// honors account-wide revocation through an internal cut-off map.
type MockIdentityProvider struct {
	VerifyAssertionFunc  func(ctx context.Context, token string) (domainauth.Identity, error)
	CreateCredentialFunc func(ctx context.Context, identity domainauth.Identity, ttl time.Duration) (string, error)
	VerifyCredentialFunc func(ctx context.Context, credential string) (domainauth.SessionClaims, error)
	RevokeFunc           func(ctx context.Context, subject string) error

	ValidAssertion  string
	DefaultIdentity domainauth.Identity

	// Now overrides the clock used when minting credentials.
	Now func() time.Time

	mu          sync.Mutex
	minted      map[string]domainauth.SessionClaims
	revoked     map[string]time.Time
	mintSeq     int
	RevokeCalls []string
}

// NewMockIdentityProvider creates a MockIdentityProvider with sensible defaults.
func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{
		ValidAssertion: "assertion-ok",
		DefaultIdentity: domainauth.Identity{
			Subject:   "user-1",
			Name:      "Mock User",
			Email:     "mock.user@example.com",
			Picture:   "https://example.com/mock.png",
			IssuedAt:  time.Now(),
			ExpiresAt: time.Now().Add(time.Hour),
		},
		minted:  make(map[string]domainauth.SessionClaims),
		revoked: make(map[string]time.Time),
	}
}

func (m *MockIdentityProvider) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *MockIdentityProvider) VerifyAssertion(ctx context.Context, token string) (domainauth.Identity, error) {
	if m.VerifyAssertionFunc != nil {
		return m.VerifyAssertionFunc(ctx, token)
	}
	if token != m.ValidAssertion {
		return domainauth.Identity{}, errors.New("assertion verification failed")
	}
	return m.DefaultIdentity, nil
}

func (m *MockIdentityProvider) CreateSessionCredential(ctx context.Context, identity domainauth.Identity, ttl time.Duration) (string, error) {
	if m.CreateCredentialFunc != nil {
		return m.CreateCredentialFunc(ctx, identity, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mintSeq++
	credential := fmt.Sprintf("cred:%s:%d", identity.Subject, m.mintSeq)
	m.minted[credential] = domainauth.SessionClaims{Subject: identity.Subject, IssuedAt: m.now()}
	return credential, nil
}

func (m *MockIdentityProvider) VerifySessionCredential(ctx context.Context, credential string) (domainauth.SessionClaims, error) {
	if m.VerifyCredentialFunc != nil {
		return m.VerifyCredentialFunc(ctx, credential)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	claims, ok := m.minted[credential]
	if !ok {
		return domainauth.SessionClaims{}, errors.New("credential verification failed")
	}
	if cutoff, ok := m.revoked[claims.Subject]; ok && !claims.IssuedAt.After(cutoff) {
		return domainauth.SessionClaims{}, errors.New("credential revoked")
	}
	return claims, nil
}

func (m *MockIdentityProvider) RevokeAllCredentials(ctx context.Context, subject string) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, subject)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RevokeCalls = append(m.RevokeCalls, subject)
	m.revoked[subject] = m.now()
	return nil
}

// MintClaims registers a credential with explicit claims, for tests that
// need control over issuance time.
func (m *MockIdentityProvider) MintClaims(credential string, claims domainauth.SessionClaims) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.minted[credential] = claims
}

// MockLoginFlow simulates a browser login flow with deterministic values.
type MockLoginFlow struct {
	BeginFunc    func(ctx context.Context) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (string, error)

	AuthURL   string
	Assertion string

	callCount int
}

// NewMockLoginFlow creates a MockLoginFlow with sensible defaults.
func NewMockLoginFlow() *MockLoginFlow {
	return &MockLoginFlow{
		AuthURL:   "https://mock-idp/auth",
		Assertion: "assertion-ok",
	}
}

func (m *MockLoginFlow) Begin(ctx context.Context) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.callCount++
	return m.AuthURL, fmt.Sprintf("state-%d", m.callCount), fmt.Sprintf("nonce-%d", m.callCount), nil
}

func (m *MockLoginFlow) Exchange(ctx context.Context, in ports.ExchangeInput) (string, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}
	if in.Code == "" {
		return "", errors.New("authorization code is required")
	}
	return m.Assertion, nil
}

// MemoryProfileStore is an in-memory ports.ProfileStore.
type MemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]domainauth.ProfileDoc

	GetErr    error
	CreateErr error
}

// NewMemoryProfileStore creates an empty in-memory profile store.
func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[string]domainauth.ProfileDoc)}
}

func (m *MemoryProfileStore) Get(_ context.Context, subject string) (domainauth.ProfileDoc, error) {
	if m.GetErr != nil {
		return domainauth.ProfileDoc{}, m.GetErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.profiles[subject]
	if !ok {
		return domainauth.ProfileDoc{}, ports.ErrProfileNotFound
	}
	return doc, nil
}

func (m *MemoryProfileStore) Create(_ context.Context, subject string, doc domainauth.ProfileDoc) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.profiles[subject]; exists {
		return errors.New("profile already exists")
	}
	m.profiles[subject] = doc
	return nil
}

// Put stores a profile unconditionally, for test setup.
func (m *MemoryProfileStore) Put(subject string, doc domainauth.ProfileDoc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[subject] = doc
}

// Delete removes a profile, for test setup.
func (m *MemoryProfileStore) Delete(subject string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, subject)
}

// MemoryRevocationStore is an in-memory ports.RevocationStore.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	cutoffs map[string]time.Time

	// Now overrides the clock, for tests.
	Now func() time.Time

	RevokeErr error
}

// NewMemoryRevocationStore creates an empty in-memory revocation store.
func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{cutoffs: make(map[string]time.Time)}
}

func (m *MemoryRevocationStore) Revoke(_ context.Context, subject string) error {
	if m.RevokeErr != nil {
		return m.RevokeErr
	}
	now := time.Now()
	if m.Now != nil {
		now = m.Now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cutoffs[subject] = now
	return nil
}

func (m *MemoryRevocationStore) RevokedAfter(_ context.Context, subject string) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cutoffs[subject], nil
}
