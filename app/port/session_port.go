package port

//go:generate mockgen -source=session_port.go -destination=../mocks/mock_session_port.go

import (
	"context"

	"member-portal/app/domain"
)

// SessionAdapter defines the backend capability set for authentication.
// Exactly one implementation (remote API or local store) is active per
// session; callers are adapter-agnostic.
type SessionAdapter interface {
	// Login performs the authentication handshake and returns the issued
	// credential together with the identity it belongs to. Fails with
	// domain.ErrInvalidCredentials on mismatch and
	// domain.ErrBackendUnreachable on remote network failure.
	Login(ctx context.Context, creds domain.Credentials) (*domain.LoginResult, error)

	// Verify re-validates an existing credential and returns the current
	// identity, or domain.ErrNotAuthenticated when the credential is
	// expired, revoked or unknown.
	Verify(ctx context.Context, token string) (*domain.Identity, error)

	// Logout invalidates the credential on the backend. Best-effort: the
	// caller proceeds to clear local state regardless of the outcome.
	Logout(ctx context.Context, token string) error

	// Mode reports which backend this adapter routes to.
	Mode() domain.StorageMode
}

// SessionUsecase defines the orchestration surface the UI edge consumes
type SessionUsecase interface {
	// Login authenticates and atomically installs the credential and
	// identity. On failure the token holder and cache are left untouched.
	Login(ctx context.Context, creds domain.Credentials) (*domain.Identity, error)

	// Logout tears the session down. Backend failures are non-fatal; local
	// state is always cleared. Idempotent.
	Logout(ctx context.Context) error

	// ReadSession resolves the current session, verifying the held
	// credential against the active backend when necessary.
	ReadSession(ctx context.Context) (domain.SessionSnapshot, error)

	// Snapshot returns the cached session state without triggering
	// verification.
	Snapshot() domain.SessionSnapshot

	// Subscribe registers a listener for session state changes and returns
	// an unsubscribe function.
	Subscribe(fn func(domain.SessionSnapshot)) func()

	// Mode reports which backend the session is bound to.
	Mode() domain.StorageMode
}
