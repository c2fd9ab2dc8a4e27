package auth

import "time"

// Trust cookie names. The five cookies form a single logical unit: they are
// written together at issuance and cleared together at revocation.
const (
	CookieSession     = "session"
	CookieUser        = "user"
	CookieIsAdmin     = "isAdmin"
	CookieIsProfessor = "isProfessor"
	CookieHasPlan     = "hasPlan"
)

// CookieNames lists every trust cookie, in issuance order. The session
// credential is last so a partial write can never leave a user snapshot
// behind without a verifiable session.
func CookieNames() []string {
	return []string{CookieUser, CookieIsAdmin, CookieIsProfessor, CookieHasPlan, CookieSession}
}

// CookieSet is the trust cookie set as read from an incoming request.
// Absent cookies are empty strings.
type CookieSet struct {
	Session     string
	User        string
	IsAdmin     string
	IsProfessor string
	HasPlan     string
}

// Get returns the raw value for a trust cookie name.
func (c CookieSet) Get(name string) string {
	switch name {
	case CookieSession:
		return c.Session
	case CookieUser:
		return c.User
	case CookieIsAdmin:
		return c.IsAdmin
	case CookieIsProfessor:
		return c.IsProfessor
	case CookieHasPlan:
		return c.HasPlan
	}
	return ""
}

// CookieWrite is a single pending cookie mutation inside a transaction.
type CookieWrite struct {
	Name   string
	Value  string
	MaxAge time.Duration // <= 0 means delete
}

// CookieTxn is an ordered batch of cookie mutations produced by issuance
// or revocation and applied atomically by the http-layer cookie jar. The
// services that build it never touch a live cookie store, which keeps them
// testable in isolation.
type CookieTxn struct {
	Writes []CookieWrite
}

// Set appends a value write with the given lifetime.
func (t *CookieTxn) Set(name, value string, maxAge time.Duration) {
	t.Writes = append(t.Writes, CookieWrite{Name: name, Value: value, MaxAge: maxAge})
}

// Clear appends a deletion.
func (t *CookieTxn) Clear(name string) {
	t.Writes = append(t.Writes, CookieWrite{Name: name})
}

// ClearAllTxn returns a transaction deleting every trust cookie.
// Partial clearing is not a valid state, so there is no narrower variant.
func ClearAllTxn() CookieTxn {
	var txn CookieTxn
	for _, name := range CookieNames() {
		txn.Clear(name)
	}
	return txn
}

// IssueTxn builds the full five-cookie issuance transaction from a session
// credential and the profile snapshot taken at issuance time. The
// convenience flags are strict functions of the snapshot; they are only
// written when true, matching their absent-means-false wire format.
func IssueTxn(credential, userSnapshot string, p Profile, ttl time.Duration) CookieTxn {
	var txn CookieTxn
	txn.Set(CookieUser, userSnapshot, ttl)
	if p.Role == RoleAdmin {
		txn.Set(CookieIsAdmin, "true", ttl)
	}
	if p.Role == RoleProfessor {
		txn.Set(CookieIsProfessor, "true", ttl)
	}
	if p.HasPaidPlan() {
		txn.Set(CookieHasPlan, "true", ttl)
	}
	// Session is committed last; see CookieNames.
	txn.Set(CookieSession, credential, ttl)
	return txn
}
