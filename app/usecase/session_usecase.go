package usecase

import (
	"context"
	"log/slog"
	"sync"

	"member-portal/app/cache"
	"member-portal/app/domain"
	"member-portal/app/port"
	"member-portal/app/token"
	"member-portal/app/utils/validator"
)

// SessionUsecase orchestrates login, logout and session reads against the
// token manager, the active storage adapter and the session cache.
//
// Mutating operations are serialized by a mutex, but the mutex is not held
// across the verify network call: a logout may land while a verify is in
// flight. Each verify is therefore tagged with the credential it was issued
// for, and its result is discarded if the live credential has since changed
// (the stale-response guard).
type SessionUsecase struct {
	tokens    *token.Manager
	cache     *cache.SessionCache
	adapter   port.SessionAdapter
	validator *validator.Validator
	logger    *slog.Logger

	mu sync.Mutex
}

// NewSessionUsecase creates a new SessionUsecase instance
func NewSessionUsecase(tokens *token.Manager, sessionCache *cache.SessionCache, adapter port.SessionAdapter, logger *slog.Logger) *SessionUsecase {
	return &SessionUsecase{
		tokens:    tokens,
		cache:     sessionCache,
		adapter:   adapter,
		validator: validator.New(),
		logger:    logger.With("component", "session_usecase"),
	}
}

// Login authenticates against the active backend. On success the identity is
// written to the cache and the credential installed as a single logical step:
// the cache is written first, so any read triggered by the token change sees
// the new identity, never a stale or absent one. On failure the token holder
// and cache are left untouched.
func (uc *SessionUsecase) Login(ctx context.Context, creds domain.Credentials) (*domain.Identity, error) {
	if err := uc.validator.Validate(creds); err != nil {
		return nil, domain.NewAuthError(domain.ErrCodeValidation, "invalid login request", err)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	result, err := uc.adapter.Login(ctx, creds)
	if err != nil {
		uc.logger.Warn("login failed", "email", creds.Email, "error", err)
		return nil, err
	}

	uc.cache.Write(result.Identity)
	uc.tokens.SetToken(result.Token)

	uc.logger.Info("login succeeded",
		"member_id", result.Identity.ID,
		"mode", uc.adapter.Mode())
	return result.Identity, nil
}

// Logout invalidates the session on the backend (best-effort) and then
// unconditionally clears the credential and removes the cache entry. The
// entry is invalidated rather than written absent so a subsequent login is
// never confused with a cached negative. Idempotent: logging out with no
// credential present is a no-op that still leaves the state unauthenticated.
func (uc *SessionUsecase) Logout(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if tok, ok := uc.tokens.Token(); ok {
		if err := uc.adapter.Logout(ctx, tok); err != nil {
			uc.logger.Warn("backend logout failed, clearing local state anyway", "error", err)
		}
	}

	uc.tokens.ClearToken()
	uc.cache.Invalidate()

	uc.logger.Info("logged out")
	return nil
}

// ReadSession resolves the current session state.
//
// No credential: unauthenticated, no backend call. Credential expired
// locally: unauthenticated without a backend call (fail-closed; the round
// trip is guaranteed to fail). Otherwise the credential is verified against
// the active adapter; a verify failure silently demotes to unauthenticated
// rather than surfacing a hard error, but never fabricates an authenticated
// state.
func (uc *SessionUsecase) ReadSession(ctx context.Context) (domain.SessionSnapshot, error) {
	uc.mu.Lock()

	tok, ok := uc.tokens.Token()
	if !ok {
		uc.cache.WriteAbsent()
		uc.mu.Unlock()
		return uc.cache.Read(), nil
	}

	if uc.tokens.IsTokenExpired(tok) {
		uc.logger.Debug("credential expired locally, skipping verification")
		uc.tokens.ClearToken()
		uc.cache.WriteAbsent()
		uc.mu.Unlock()
		return uc.cache.Read(), nil
	}

	uc.cache.SetPending()
	uc.mu.Unlock()

	identity, err := uc.adapter.Verify(ctx, tok)

	uc.mu.Lock()
	defer uc.mu.Unlock()

	// Stale-response guard: if the live credential changed while the verify
	// was in flight (logout, account switch), this result belongs to a dead
	// session and must not touch the shared cache.
	if current, live := uc.tokens.Token(); !live || current != tok {
		uc.logger.Debug("discarding stale verify result")
		return uc.cache.Read(), nil
	}

	if err != nil {
		uc.logger.Warn("verification failed, demoting to unauthenticated", "error", err)
		uc.tokens.ClearToken()
		uc.cache.WriteAbsent()
		return uc.cache.Read(), nil
	}

	uc.cache.Write(identity)
	return uc.cache.Read(), nil
}

// Snapshot returns the cached session state without triggering verification
func (uc *SessionUsecase) Snapshot() domain.SessionSnapshot {
	return uc.cache.Read()
}

// Subscribe registers a listener for session state changes
func (uc *SessionUsecase) Subscribe(fn func(domain.SessionSnapshot)) func() {
	return uc.cache.Subscribe(fn)
}

// Mode reports which backend the session is bound to
func (uc *SessionUsecase) Mode() domain.StorageMode {
	return uc.adapter.Mode()
}
