package handlers

import (
	"net/http"

	"expenzy/internal/dto"
	"expenzy/internal/services"

	"github.com/labstack/echo/v4"
)

const defaultSeedCount = 50

// DevHandler handles development-only endpoints. Routes are registered only
// when APP_ENV is development.
type DevHandler struct {
	expenseService services.ExpenseServiceInterface
}

// NewDevHandler creates a new development handler
func NewDevHandler(expenseService services.ExpenseServiceInterface) *DevHandler {
	return &DevHandler{expenseService: expenseService}
}

// SeedTransactions fills an account's log with generated transactions
//
// Method: POST /api/dev/seed/:email
// Environment: Development only
//
// Query parameters:
//   - count: number of transactions to generate (default: 50, max: 1000)
//
// Success Response: 201 Created with the number of records written
//
// Error Responses:
//   - 400: count out of range
//   - 404: user not found
//   - 500: internal server error
func (h *DevHandler) SeedTransactions(c echo.Context) error {
	email, err := getEmailParam(c)
	if err != nil {
		return sendServiceError(c, err)
	}

	count := getIntParam(c, "count", defaultSeedCount)

	created, err := h.expenseService.SeedTransactions(c.Request().Context(), email, count)
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, SuccessResponse{
		Data:    dto.SeedResponse{Created: created},
		Message: "Test data generated",
	})
}
