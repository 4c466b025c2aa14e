package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"member-portal/app/port"
)

// HealthHandler provides health check endpoints
type HealthHandler struct {
	sessionUsecase port.SessionUsecase
	logger         *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(sessionUsecase port.SessionUsecase, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		sessionUsecase: sessionUsecase,
		logger:         logger,
	}
}

// HealthCheck handles GET /health
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "member-portal",
		"mode":      h.sessionUsecase.Mode(),
		"timestamp": time.Now().UTC(),
	})
}

// LivenessCheck handles GET /live
func (h *HealthHandler) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "alive",
	})
}
