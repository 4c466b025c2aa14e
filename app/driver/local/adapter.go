package local

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"member-portal/app/config"
	"member-portal/app/domain"
)

// Adapter implements port.SessionAdapter against the locally persisted
// record set. No network is involved: credentials are checked against
// bcrypt hashes, and session tokens are HS256 JWTs signed with a local
// secret and revocable through the local_session table.
type Adapter struct {
	store  *Store
	secret []byte
	ttl    time.Duration
	logger *slog.Logger
}

// NewAdapter creates a new local adapter.
func NewAdapter(store *Store, cfg *config.Config, logger *slog.Logger) *Adapter {
	return &Adapter{
		store:  store,
		secret: []byte(cfg.LocalTokenSecret),
		ttl:    cfg.SessionTTL,
		logger: logger.With("component", "local_adapter"),
	}
}

// Mode reports the backend this adapter routes to
func (a *Adapter) Mode() domain.StorageMode {
	return domain.ModeLocal
}

// Login checks the credentials against the local record set and issues a
// signed, revocable session token.
func (a *Adapter) Login(ctx context.Context, creds domain.Credentials) (*domain.LoginResult, error) {
	rec, err := a.store.GetMemberByEmail(ctx, creds.Email)
	if errors.Is(err, domain.ErrMemberNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up member: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(creds.Password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	sessionID := uuid.New().String()
	now := time.Now()
	expiresAt := now.Add(a.ttl)

	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		Subject:   rec.Identity.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	if err := a.store.CreateSession(ctx, sessionID, rec.Identity.ID, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to record session: %w", err)
	}

	identity := rec.Identity
	a.logger.Info("local login succeeded", "member_id", identity.ID)
	return &domain.LoginResult{Token: signed, Identity: &identity}, nil
}

// Verify validates the token signature and expiry, checks that the session
// has not been revoked, and returns the current member record. All failure
// paths resolve to domain.ErrNotAuthenticated (fail-closed).
func (a *Adapter) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	claims, err := a.parseClaims(token)
	if err != nil {
		a.logger.Debug("token rejected", "error", err)
		return nil, domain.ErrNotAuthenticated
	}

	active, err := a.store.SessionActive(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if !active {
		return nil, domain.ErrNotAuthenticated
	}

	memberID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domain.ErrNotAuthenticated
	}
	rec, err := a.store.GetMemberByID(ctx, memberID)
	if errors.Is(err, domain.ErrMemberNotFound) {
		return nil, domain.ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load member: %w", err)
	}

	identity := rec.Identity
	return &identity, nil
}

// Logout revokes the session marker for the given token. Unknown or
// malformed tokens are a no-op: logout is best-effort and idempotent.
func (a *Adapter) Logout(ctx context.Context, token string) error {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil
	}
	if claims.ID == "" {
		return nil
	}
	return a.store.DeleteSession(ctx, claims.ID)
}

// RegisterMember hashes the password and stores a new member record. Used to
// seed the local record set for offline/demo sessions.
func (a *Adapter) RegisterMember(ctx context.Context, email, name, password string, role domain.MemberRole) (*domain.Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	rec := MemberRecord{
		Identity: domain.Identity{
			ID:        uuid.New(),
			Email:     email,
			Name:      name,
			Role:      role,
			Verified:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		PasswordHash: string(hash),
	}
	if err := a.store.CreateMember(ctx, rec); err != nil {
		return nil, err
	}

	identity := rec.Identity
	return &identity, nil
}

// parseClaims validates signature, algorithm and expiry.
func (a *Adapter) parseClaims(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.ID == "" || claims.Subject == "" {
		return nil, domain.ErrMalformedCredential
	}
	return claims, nil
}
