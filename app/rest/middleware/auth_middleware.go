package middleware

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"member-portal/app/domain"
	"member-portal/app/port"
)

// AuthMiddleware gates protected route sets on the resolved session: the
// request-level collaborator of the session core. Public routes skip it;
// protected routes refuse to render with a dangling or absent identity.
type AuthMiddleware struct {
	sessionUsecase port.SessionUsecase
	logger         *slog.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(sessionUsecase port.SessionUsecase, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		sessionUsecase: sessionUsecase,
		logger:         logger,
	}
}

// RequireAuth resolves the session and rejects the request unless it is
// authenticated. A failed verification demotes to 401 (redirect to login on
// the client) rather than surfacing a hard error.
func (m *AuthMiddleware) RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			snap, err := m.sessionUsecase.ReadSession(c.Request().Context())
			if err != nil {
				m.logger.Error("session resolution failed", "error", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if snap.State != domain.SessionAuthenticated {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			c.Set("member_id", snap.Identity.ID.String())
			c.Set("member_email", snap.Identity.Email)
			c.Set("member_role", string(snap.Identity.Role))

			return next(c)
		}
	}
}

// RequireAdmin requires an authenticated admin session. Must run after
// RequireAuth in the middleware chain.
func (m *AuthMiddleware) RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("member_role").(string)
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if domain.MemberRole(role) != domain.RoleAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient privileges")
			}
			return next(c)
		}
	}
}
