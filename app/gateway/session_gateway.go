package gateway

import (
	"context"
	"log/slog"

	"member-portal/app/domain"
	"member-portal/app/port"
)

// SessionGateway implements port.SessionAdapter by delegating to the active
// backend driver. It is the single seam between the orchestration layer and
// whichever backend the mode selector chose: once constructed, every data
// operation of the session routes through the one wrapped adapter.
type SessionGateway struct {
	adapter port.SessionAdapter
	logger  *slog.Logger
}

// NewSessionGateway creates a new SessionGateway around the active adapter
func NewSessionGateway(adapter port.SessionAdapter, logger *slog.Logger) *SessionGateway {
	return &SessionGateway{
		adapter: adapter,
		logger:  logger.With("component", "session_gateway", "mode", adapter.Mode()),
	}
}

// Login delegates the authentication handshake to the active backend
func (g *SessionGateway) Login(ctx context.Context, creds domain.Credentials) (*domain.LoginResult, error) {
	g.logger.Info("submitting login", "email", creds.Email)

	result, err := g.adapter.Login(ctx, creds)
	if err != nil {
		g.logger.Warn("login rejected", "error", err)
		return nil, err
	}

	g.logger.Info("login accepted", "member_id", result.Identity.ID)
	return result, nil
}

// Verify delegates credential verification to the active backend
func (g *SessionGateway) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	identity, err := g.adapter.Verify(ctx, token)
	if err != nil {
		g.logger.Debug("verification did not resolve to a session", "error", err)
		return nil, err
	}

	g.logger.Debug("verification succeeded", "member_id", identity.ID)
	return identity, nil
}

// Logout delegates credential revocation to the active backend
func (g *SessionGateway) Logout(ctx context.Context, token string) error {
	if err := g.adapter.Logout(ctx, token); err != nil {
		g.logger.Warn("backend logout failed", "error", err)
		return err
	}
	return nil
}

// Mode reports the backend the wrapped adapter routes to
func (g *SessionGateway) Mode() domain.StorageMode {
	return g.adapter.Mode()
}
