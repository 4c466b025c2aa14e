package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"member-portal/app/config"
	"member-portal/app/domain"
)

// memberPayload is the backend's wire representation of a member
type memberPayload struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// loginResponse is the backend's response to a login request
type loginResponse struct {
	Success bool           `json:"success"`
	Token   string         `json:"token"`
	User    *memberPayload `json:"user"`
}

// sessionResponse is the backend's response to a session check
type sessionResponse struct {
	Success bool           `json:"success"`
	User    *memberPayload `json:"user"`
}

// Adapter implements port.SessionAdapter against the club's HTTP API.
// The credential travels as a bearer token; the server's response shape is
// { success, user }.
type Adapter struct {
	baseURL       string
	httpClient    *http.Client
	verifyTimeout time.Duration
	logger        *slog.Logger
}

// NewAdapter creates a new remote adapter from configuration
func NewAdapter(cfg *config.Config, logger *slog.Logger) (*Adapter, error) {
	if !isValidURL(cfg.RemoteAPIURL) {
		return nil, fmt.Errorf("invalid remote API URL: %s", cfg.RemoteAPIURL)
	}

	return &Adapter{
		baseURL: strings.TrimRight(cfg.RemoteAPIURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.RemoteTimeout,
		},
		verifyTimeout: cfg.VerifyTimeout,
		logger:        logger.With("component", "remote_adapter"),
	}, nil
}

// Mode reports the backend this adapter routes to
func (a *Adapter) Mode() domain.StorageMode {
	return domain.ModeRemote
}

// Login issues the authentication handshake against the remote API.
// A credential mismatch maps to domain.ErrInvalidCredentials; transport
// failures map to domain.ErrBackendUnreachable and are not retried here.
func (a *Adapter) Login(ctx context.Context, creds domain.Credentials) (*domain.LoginResult, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return nil, fmt.Errorf("failed to encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Error("login request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrBackendUnreachable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest:
		return nil, domain.ErrInvalidCredentials
	default:
		a.logger.Error("login returned unexpected status", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", domain.ErrBackendUnreachable, resp.StatusCode)
	}

	var decoded loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}
	if !decoded.Success || decoded.Token == "" || decoded.User == nil {
		return nil, domain.ErrInvalidCredentials
	}

	identity, err := toIdentity(decoded.User)
	if err != nil {
		return nil, fmt.Errorf("invalid user in login response: %w", err)
	}

	a.logger.Info("remote login succeeded", "member_id", identity.ID)
	return &domain.LoginResult{Token: decoded.Token, Identity: identity}, nil
}

// Verify re-validates a credential against the remote API. The call is
// bounded by the verify timeout so a cold backend cannot block the client;
// a timeout or transport failure maps to domain.ErrNotAuthenticated rather
// than a hard error, deferring re-authentication to the caller.
func (a *Adapter) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, a.verifyTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/api/auth/session", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build session request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Warn("session verification unreachable, treating as not authenticated", "error", err)
		return nil, domain.ErrNotAuthenticated
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.ErrNotAuthenticated
	}

	var decoded sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		a.logger.Warn("failed to decode session response", "error", err)
		return nil, domain.ErrNotAuthenticated
	}
	if !decoded.Success || decoded.User == nil {
		return nil, domain.ErrNotAuthenticated
	}

	identity, err := toIdentity(decoded.User)
	if err != nil {
		a.logger.Warn("invalid user in session response", "error", err)
		return nil, domain.ErrNotAuthenticated
	}

	return identity, nil
}

// Logout revokes the credential server-side. Best-effort from the caller's
// perspective; the error is reported so it can be logged.
func (a *Adapter) Logout(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/auth/logout", nil)
	if err != nil {
		return fmt.Errorf("failed to build logout request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackendUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("logout returned status %d", resp.StatusCode)
	}
	return nil
}

// toIdentity maps the wire payload to the domain identity
func toIdentity(p *memberPayload) (*domain.Identity, error) {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid member ID %q: %w", p.ID, err)
	}

	role := domain.MemberRole(p.Role)
	if !role.IsValid() {
		role = domain.RoleMember
	}

	return &domain.Identity{
		ID:        id,
		Email:     p.Email,
		Name:      p.Name,
		Role:      role,
		Verified:  p.Verified,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}, nil
}

func isValidURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
