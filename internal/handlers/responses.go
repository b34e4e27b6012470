package handlers

import (
	"log/slog"
	"net/http"

	"expenzy/internal/errors"

	"github.com/labstack/echo/v4"
)

// Error responses
//
// Handlers report failures through two helpers only:
//
// 1. SendError for client and business errors (4xx). The status comes from
//    the error code, e.g. SendError(c, errors.ExpenseUserNotFound).
//
// 2. SendSystemError for repository and other internal failures (500). The
//    client gets a generic message plus the trace ID; the cause is logged.
//
// Validation errors from c.Validate are returned as-is and formatted by the
// custom HTTP error handler.

const (
	// TraceIDContextKey is the context key for storing the trace ID
	TraceIDContextKey = "trace_id"
)

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ErrorResponse is an alias for the standardized error response type
type ErrorResponse = errors.ErrorResponse

func getTraceID(c echo.Context) string {
	traceID, ok := c.Get(TraceIDContextKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// SendError sends a standardized error response with trace ID from context
func SendError(c echo.Context, code errors.ErrorCode, opts ...errors.ErrorOption) error {
	traceID := getTraceID(c)
	errorResponse := errors.NewErrorResponse(code, traceID, opts...)
	return c.JSON(errorResponse.Status(), errorResponse)
}

// SendSystemError hides err behind a generic message and logs it with the trace ID
func SendSystemError(c echo.Context, err error) error {
	traceID := getTraceID(c)
	errorResponse, cause := errors.WrapSystemError(err, traceID)
	slog.Error("request failed",
		"trace_id", traceID,
		"method", c.Request().Method,
		"path", c.Request().URL.Path,
		"error", cause,
	)
	return c.JSON(http.StatusInternalServerError, errorResponse)
}
