package auth

// Package auth contains domain-level types for authentication, sessions,
// and permissions. It is pure and free of framework/adapter concerns.

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleProfessor Role = "professor"
	RoleStudent   Role = "aluno"
)

// roleLevels is the ordinal hierarchy: a higher role satisfies any lower
// role's requirement. Unknown roles map to 0 (no privileges).
var roleLevels = map[Role]int{
	RoleStudent:   1,
	RoleProfessor: 2,
	RoleAdmin:     3,
}

// Level returns the ordinal level of the role; 0 for unknown roles.
func (r Role) Level() int { return roleLevels[r] }

// Known reports whether the role is one of the defined constants.
func (r Role) Known() bool { return roleLevels[r] > 0 }

// AtLeast reports whether the role satisfies the required role.
// This is a hierarchy check, not an exact match: admin satisfies professor.
func (r Role) AtLeast(required Role) bool {
	return r.Level() >= roleLevels[required]
}

// ErrUnknownRole is returned by ParseRole for role strings outside the
// closed enum. Callers decide whether to treat it as fatal; the profile
// store boundary logs it and proceeds with zero privileges.
var ErrUnknownRole = errors.New("unknown role")

// ParseRole converts a raw role string into a Role, flagging unknown values.
// The Role is returned even on error so callers can keep the raw value for
// diagnostics.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Known() {
		return r, fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// PlanFree is the distinguished plan value meaning no paid entitlement.
const PlanFree = "free"

// Profile is the canonical user record plus the identity fields captured
// at issuance. Role and plan come from the profile store; name, email, and
// photo from the identity assertion.
type Profile struct {
	Role  Role   `json:"role"`
	Plan  string `json:"plan"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo"`
}

// HasPaidPlan reports whether the profile carries a paid entitlement.
// Plans are non-ordinal labels; anything other than "free" is paid.
func (p Profile) HasPaidPlan() bool { return p.Plan != "" && p.Plan != PlanFree }

// Requirement is a permission requirement evaluated against a profile.
// Zero-value fields are vacuously satisfied.
type Requirement struct {
	Role Role
	Plan string
}

// Authorize evaluates a requirement against a verified profile.
// The role check is hierarchical, the plan check is exact match, and when
// both are present the result is the logical AND.
func Authorize(p Profile, req Requirement) bool {
	if req.Role != "" && !p.Role.AtLeast(req.Role) {
		return false
	}
	if req.Plan != "" && p.Plan != req.Plan {
		return false
	}
	return true
}

// Identity represents the authenticated principal proven by an identity
// assertion. Adapters map provider-specific claims into this shape.
type Identity struct {
	Subject   string // stable user identifier (sub claim)
	Name      string
	Email     string
	Picture   string
	IssuedAt  time.Time
	ExpiresAt time.Time // absolute expiry of the assertion
}

// SessionClaims is what a verified session credential proves: who the
// subject is and when the credential was issued.
type SessionClaims struct {
	Subject  string
	IssuedAt time.Time
}

// ProfileDoc is the persisted portion of a profile in the profile store.
type ProfileDoc struct {
	Role Role   `json:"role"`
	Plan string `json:"plan"`
}

// DefaultProfileDoc is created for a subject on first session establishment.
func DefaultProfileDoc() ProfileDoc {
	return ProfileDoc{Role: RoleStudent, Plan: PlanFree}
}

// userSnapshotVersion is the current schema version of the serialized
// user cookie. Bump when the snapshot shape changes.
const userSnapshotVersion = 1

// userSnapshot is the wire schema of the "user" cookie.
type userSnapshot struct {
	V     int    `json:"v"`
	Role  string `json:"role"`
	Plan  string `json:"plan"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo"`
}

// EncodeUserSnapshot serializes a profile into the versioned user-cookie
// payload.
func EncodeUserSnapshot(p Profile) (string, error) {
	data, err := json.Marshal(userSnapshot{
		V:     userSnapshotVersion,
		Role:  string(p.Role),
		Plan:  p.Plan,
		Name:  p.Name,
		Email: p.Email,
		Photo: p.Photo,
	})
	if err != nil {
		return "", fmt.Errorf("marshal user snapshot: %w", err)
	}
	return string(data), nil
}

// DecodeUserSnapshot parses a user-cookie payload. Unknown versions and
// malformed JSON are errors; callers treat them as credential verification
// failures, never as crashes.
func DecodeUserSnapshot(raw string) (Profile, error) {
	var snap userSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return Profile{}, fmt.Errorf("unmarshal user snapshot: %w", err)
	}
	if snap.V != userSnapshotVersion {
		return Profile{}, fmt.Errorf("unsupported user snapshot version %d", snap.V)
	}
	return Profile{
		Role:  Role(snap.Role),
		Plan:  snap.Plan,
		Name:  snap.Name,
		Email: snap.Email,
		Photo: snap.Photo,
	}, nil
}
