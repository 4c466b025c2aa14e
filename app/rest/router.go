package rest

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"member-portal/app/domain"
	"member-portal/app/port"
	"member-portal/app/rest/handlers"
	custommw "member-portal/app/rest/middleware"
)

// RouterConfig holds router configuration
type RouterConfig struct {
	Logger         *slog.Logger
	SessionUsecase port.SessionUsecase
	EnableDebug    bool
}

// NewRouter creates and configures the Echo router. Route sets split into
// public (login, session read, health) and protected (member/admin areas)
// gated by the auth middleware.
func NewRouter(config RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Debug = config.EnableDebug

	// Handlers
	sessionHandler := handlers.NewSessionHandler(config.SessionUsecase, config.Logger)
	healthHandler := handlers.NewHealthHandler(config.SessionUsecase, config.Logger)

	// Middleware
	authMiddleware := custommw.NewAuthMiddleware(config.SessionUsecase, config.Logger)
	rateLimiter := custommw.NewRateLimiter()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(rateLimiter.RateLimit())

	v1 := e.Group("/v1")

	// Health endpoints (no auth required)
	v1.GET("/health", healthHandler.HealthCheck)
	v1.GET("/live", healthHandler.LivenessCheck)

	// Public auth endpoints
	auth := v1.Group("/auth")
	auth.POST("/login", sessionHandler.Login)
	auth.POST("/logout", sessionHandler.Logout)
	auth.GET("/session", sessionHandler.GetSession)

	// Protected member routes
	members := v1.Group("/members", authMiddleware.RequireAuth())
	members.GET("/me", func(c echo.Context) error {
		snap := config.SessionUsecase.Snapshot()
		if snap.State != domain.SessionAuthenticated {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		return c.JSON(http.StatusOK, snap.Identity)
	})

	// Admin routes require the admin role on top of authentication
	admin := v1.Group("/admin", authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
	admin.GET("/session-mode", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"mode": config.SessionUsecase.Mode(),
		})
	})

	return e
}
