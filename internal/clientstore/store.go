package clientstore

// Package clientstore holds the client-facing session state container.
// It mirrors server-side session truth for UI consumption: current status,
// the profile snapshot, an in-flight flag, and the last error. State is
// observed through subscriber callbacks rather than polling.

import (
	"context"
	"sync"

	domainauth "github.com/classpilot/classauth/internal/domain/auth"
)

// Status is the authentication state of the client session.
type Status string

const (
	StatusLoading         Status = "loading"
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
)

// Authenticator is the store's view of the session machinery: interactive
// sign-in, a cheap current-user read, and sign-out.
type Authenticator interface {
	// SignIn runs the interactive login and session establishment, returning
	// the issued profile.
	SignIn(ctx context.Context) (*domainauth.Profile, error)

	// CurrentUser returns the quick-tier snapshot, nil when signed out.
	CurrentUser(ctx context.Context) (*domainauth.Profile, error)

	// SignOut revokes the session account-wide.
	SignOut(ctx context.Context) error
}

// State is an immutable snapshot of the store, delivered to subscribers.
// Once IsLoading is false, Status is authenticated exactly when User is
// non-nil.
type State struct {
	Status    Status
	User      *domainauth.Profile
	IsLoading bool
	Err       error
}

// Store is an explicitly constructed session state container. There is no
// package-level instance; callers create one per client scope and share it
// by reference. Safe for concurrent use.
type Store struct {
	auth Authenticator

	mu          sync.Mutex
	state       State
	subscribers map[int]func(State)
	nextSubID   int
}

// New creates a Store in the initial loading state.
func New(auth Authenticator) *Store {
	return &Store{
		auth:        auth,
		state:       State{Status: StatusLoading, IsLoading: true},
		subscribers: make(map[int]func(State)),
	}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers a callback invoked with every state change, starting
// with the current state. The returned function cancels the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	current := s.state
	s.mu.Unlock()

	fn(current)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// setState replaces the state and notifies subscribers outside the lock.
func (s *Store) setState(next State) {
	s.mu.Lock()
	s.state = next
	subs := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

// InitializeFromServer seeds the store from a server-rendered snapshot,
// skipping the initial client-side check.
func (s *Store) InitializeFromServer(user *domainauth.Profile) {
	if user != nil {
		s.setState(State{Status: StatusAuthenticated, User: user})
		return
	}
	s.setState(State{Status: StatusUnauthenticated})
}

// Login runs the interactive sign-in. On success the store re-checks the
// session to hydrate from the freshly written cookies; on failure it lands
// unauthenticated with the error surfaced. Returns the profile and whether
// sign-in succeeded.
func (s *Store) Login(ctx context.Context) (*domainauth.Profile, bool) {
	s.setLoading()

	profile, err := s.auth.SignIn(ctx)
	if err != nil {
		s.setState(State{Status: StatusUnauthenticated, Err: err})
		return nil, false
	}

	s.CheckAuth(ctx)
	return profile, true
}

// Logout revokes the session. Success clears the state directly; the
// revocation response is self-certifying, no re-check needed. Failure keeps
// the current user and surfaces the error.
func (s *Store) Logout(ctx context.Context) {
	s.setLoading()

	if err := s.auth.SignOut(ctx); err != nil {
		s.mu.Lock()
		prev := s.state
		s.mu.Unlock()
		s.setState(State{Status: prev.Status, User: prev.User, Err: err})
		return
	}
	s.setState(State{Status: StatusUnauthenticated})
}

// CheckAuth refreshes the store from the quick-tier session read. Any
// failure degrades to unauthenticated with the error recorded; it never
// propagates.
func (s *Store) CheckAuth(ctx context.Context) {
	s.setLoading()

	user, err := s.auth.CurrentUser(ctx)
	if err != nil {
		s.setState(State{Status: StatusUnauthenticated, Err: err})
		return
	}
	if user == nil {
		s.setState(State{Status: StatusUnauthenticated})
		return
	}
	s.setState(State{Status: StatusAuthenticated, User: user})
}

// Reset returns the store to its initial loading state.
func (s *Store) Reset() {
	s.setState(State{Status: StatusLoading, IsLoading: true})
}

func (s *Store) setLoading() {
	s.mu.Lock()
	next := s.state
	next.IsLoading = true
	next.Err = nil
	s.mu.Unlock()
	s.setState(next)
}
