package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MemberRole represents a member's role in the club
type MemberRole string

const (
	RoleMember MemberRole = "member"
	RoleAdmin  MemberRole = "admin"
)

// IsValid returns true if the role is a known role
func (r MemberRole) IsValid() bool {
	return r == RoleMember || r == RoleAdmin
}

// Identity represents the authenticated member's profile as known to the client.
// It is produced by adapter verification calls and owned by the session cache
// for the lifetime of the session.
type Identity struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      MemberRole `json:"role"`
	Verified  bool       `json:"verified"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// IsAdmin returns true if the identity has the admin role
func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Credentials represents a login request
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// LoginResult couples an issued credential with the identity it was issued for.
// The two always travel together so no observer can see one without the other.
type LoginResult struct {
	Token    string    `json:"token"`
	Identity *Identity `json:"identity"`
}

// StorageMode selects which backend the session routes through.
// It is resolved once per session context; switching modes requires a full
// session teardown first.
type StorageMode string

const (
	ModeRemote StorageMode = "remote"
	ModeLocal  StorageMode = "local"
)

// ParseStorageMode parses a storage mode from its string form
func ParseStorageMode(s string) (StorageMode, error) {
	switch StorageMode(strings.ToLower(s)) {
	case ModeRemote:
		return ModeRemote, nil
	case ModeLocal:
		return ModeLocal, nil
	default:
		return "", fmt.Errorf("unknown storage mode: %q (must be remote or local)", s)
	}
}

// SessionState represents the session state machine as seen by subscribers
type SessionState string

const (
	// SessionUnknown means the cache holds no entry; the next read must re-verify
	SessionUnknown SessionState = "unknown"
	// SessionPending means a verification is in flight
	SessionPending SessionState = "pending"
	// SessionUnauthenticated is a cached negative: verification resolved to no session
	SessionUnauthenticated SessionState = "unauthenticated"
	// SessionAuthenticated means the cache holds a live identity
	SessionAuthenticated SessionState = "authenticated"
)

// SessionSnapshot is what UI subscribers read from the session cache.
// Identity is non-nil only when State is SessionAuthenticated.
type SessionSnapshot struct {
	State    SessionState `json:"state"`
	Identity *Identity    `json:"identity,omitempty"`
}

// IsLoading returns true while verification is in flight
func (s SessionSnapshot) IsLoading() bool {
	return s.State == SessionPending
}
