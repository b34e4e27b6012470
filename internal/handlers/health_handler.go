package handlers

import (
	"context"
	"net/http"
	"time"

	"expenzy/internal/errors"

	"github.com/labstack/echo/v4"
)

const healthCheckTimeout = 2 * time.Second

// StorePinger is satisfied by database.DB and repositories.MongoStore
type StorePinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function to StorePinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// HealthCheckHandler handles the health check endpoint
type HealthCheckHandler struct {
	store   StorePinger
	backend string
}

// NewHealthCheckHandler creates a new health check handler
func NewHealthCheckHandler(store StorePinger, backend string) *HealthCheckHandler {
	return &HealthCheckHandler{store: store, backend: backend}
}

// HealthCheck reports API and record store connectivity
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,store=string,time=string} "Service is healthy"
// @Failure 503 {object} errors.ErrorResponse "SYSTEM_003 - record store unreachable"
// @Router /health [get]
func (h *HealthCheckHandler) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		return SendError(c, errors.SystemServiceUnavailable, errors.WithDetails("Record store connection failed"))
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
		"store":  h.backend,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
