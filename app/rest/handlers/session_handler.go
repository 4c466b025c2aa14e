package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"member-portal/app/domain"
	"member-portal/app/port"
)

// SessionHandler exposes the UI-facing session contract over HTTP
type SessionHandler struct {
	sessionUsecase port.SessionUsecase
	logger         *slog.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionUsecase port.SessionUsecase, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessionUsecase: sessionUsecase,
		logger:         logger.With("component", "session_handler"),
	}
}

// sessionResponse is the wire shape of a session read
type sessionResponse struct {
	Authenticated bool                `json:"authenticated"`
	IsLoading     bool                `json:"is_loading"`
	State         domain.SessionState `json:"state"`
	User          *domain.Identity    `json:"user,omitempty"`
}

// Login handles POST /auth/login
func (h *SessionHandler) Login(c echo.Context) error {
	var creds domain.Credentials
	if err := c.Bind(&creds); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(domain.ErrCodeValidation, "invalid request body"))
	}

	identity, err := h.sessionUsecase.Login(c.Request().Context(), creds)
	if err != nil {
		return h.mapLoginError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    identity,
	})
}

// Logout handles POST /auth/logout
func (h *SessionHandler) Logout(c echo.Context) error {
	if err := h.sessionUsecase.Logout(c.Request().Context()); err != nil {
		// Logout never fails from the client's perspective; log and proceed.
		h.logger.Error("logout failed unexpectedly", "error", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

// GetSession handles GET /auth/session. A failed verification resolves to an
// unauthenticated payload, never an error status: cold-start flakiness on a
// session check must not break page render.
func (h *SessionHandler) GetSession(c echo.Context) error {
	snap, err := h.sessionUsecase.ReadSession(c.Request().Context())
	if err != nil {
		h.logger.Error("session read failed", "error", err)
		return c.JSON(http.StatusInternalServerError, errorBody(domain.ErrCodeInternal, "session read failed"))
	}

	return c.JSON(http.StatusOK, sessionResponse{
		Authenticated: snap.State == domain.SessionAuthenticated,
		IsLoading:     snap.IsLoading(),
		State:         snap.State,
		User:          snap.Identity,
	})
}

// mapLoginError translates the domain taxonomy to HTTP statuses
func (h *SessionHandler) mapLoginError(c echo.Context, err error) error {
	var authErr *domain.AuthError

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		// Shown inline on the login form
		return c.JSON(http.StatusUnauthorized, errorBody(domain.ErrCodeInvalidCredentials, "invalid email or password"))
	case errors.Is(err, domain.ErrBackendUnreachable):
		// Transient; the client may try again, this core never retries
		return c.JSON(http.StatusServiceUnavailable, errorBody(domain.ErrCodeBackendUnreachable, "service unavailable, please try again"))
	case errors.As(err, &authErr) && authErr.Code == domain.ErrCodeValidation:
		return c.JSON(http.StatusBadRequest, errorBody(domain.ErrCodeValidation, authErr.Error()))
	default:
		h.logger.Error("login failed with unexpected error", "error", err)
		return c.JSON(http.StatusInternalServerError, errorBody(domain.ErrCodeInternal, "internal error"))
	}
}

func errorBody(code, message string) map[string]interface{} {
	return map[string]interface{}{
		"success": false,
		"code":    code,
		"error":   message,
	}
}
