package handlers

import (
	"net/http"
	"strings"

	"expenzy/internal/dto"
	"expenzy/internal/errors"
	"expenzy/internal/ledger"
	"expenzy/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ExpenseHandler serves the daily log and the views aggregated from it
type ExpenseHandler struct {
	expenseService services.ExpenseServiceInterface
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(expenseService services.ExpenseServiceInterface) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// AddTransaction appends one entry to the caller's log
// @Summary Add a transaction
// @Tags Expenses
// @Accept json
// @Produce json
// @Param request body dto.AddTransactionRequest true "Transaction"
// @Success 201 {object} SuccessResponse{data=models.Transaction}
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001, EXPENSE_003 or EXPENSE_004"
// @Failure 404 {object} errors.ErrorResponse "EXPENSE_001 - user not found"
// @Router /api/expenses/daily [post]
func (h *ExpenseHandler) AddTransaction(c echo.Context) error {
	var req dto.AddTransactionRequest

	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	tx := ledger.Transaction{
		Amount:      req.Amount,
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
		IsIncome:    req.IsIncome,
	}
	if req.Date != nil {
		tx.Date = req.Date.UTC()
	}

	record, err := h.expenseService.AddTransaction(c.Request().Context(), req.Email, tx)
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, SuccessResponse{
		Data:    record,
		Message: "Transaction added",
	})
}

// QuickAdd parses a free-text phrase and appends the result
// @Summary Quick-add a transaction from text
// @Tags Expenses
// @Accept json
// @Produce json
// @Param request body dto.QuickAddRequest true "Phrase"
// @Success 201 {object} SuccessResponse{data=models.Transaction}
// @Failure 404 {object} errors.ErrorResponse "EXPENSE_001 - user not found"
// @Failure 422 {object} errors.ErrorResponse "EXPENSE_005 - text could not be parsed"
// @Router /api/expenses/quick-add [post]
func (h *ExpenseHandler) QuickAdd(c echo.Context) error {
	var req dto.QuickAddRequest

	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	record, err := h.expenseService.QuickAdd(c.Request().Context(), req.Email, req.Text)
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, SuccessResponse{
		Data:    record,
		Message: "Transaction added",
	})
}

// GetDailyLog returns every stored entry for an account
// @Summary Get the daily log
// @Tags Expenses
// @Produce json
// @Param email path string false "Account email"
// @Param email query string false "Account email, when not in the path"
// @Success 200 {object} SuccessResponse{data=[]models.Transaction}
// @Failure 404 {object} errors.ErrorResponse "EXPENSE_001 - user not found"
// @Router /api/expenses/daily/{email} [get]
func (h *ExpenseHandler) GetDailyLog(c echo.Context) error {
	email, err := getEmailParam(c)
	if err != nil {
		return sendServiceError(c, err)
	}

	log, err := h.expenseService.GetDailyLog(c.Request().Context(), email)
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data: log,
		Meta: map[string]interface{}{"count": len(log)},
	})
}

// DeleteTransaction removes one entry from an account's log
// @Summary Delete a transaction
// @Tags Expenses
// @Produce json
// @Param email path string true "Account email"
// @Param id path string true "Transaction ID"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_003 - invalid transaction ID"
// @Failure 404 {object} errors.ErrorResponse "EXPENSE_001 or EXPENSE_002"
// @Router /api/expenses/daily/{email}/{id} [delete]
func (h *ExpenseHandler) DeleteTransaction(c echo.Context) error {
	email, err := getEmailParam(c)
	if err != nil {
		return sendServiceError(c, err)
	}

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid transaction ID"))
	}

	if err := h.expenseService.DeleteTransaction(c.Request().Context(), email, transactionID); err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "Transaction deleted"})
}

// GetGrouped returns per-date, per-category totals
// @Summary Group the log by date and category
// @Tags Expenses
// @Produce json
// @Param email path string true "Account email"
// @Param byDay query bool false "Truncate dates to the calendar day first"
// @Success 200 {object} SuccessResponse{data=[]ledger.DateCategoryTotal}
// @Failure 404 {object} errors.ErrorResponse "EXPENSE_001 - user not found"
// @Router /api/expenses/grouped/{email} [get]
func (h *ExpenseHandler) GetGrouped(c echo.Context) error {
	email, err := getEmailParam(c)
	if err != nil {
		return sendServiceError(c, err)
	}

	grouped, err := h.expenseService.GroupByDateAndCategory(c.Request().Context(), email, getBoolParam(c, "byDay", false))
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Data: grouped})
}

// GetOverview returns totals and the expense distribution for [from, to)
// @Summary Totals and category distribution
// @Tags Expenses
// @Produce json
// @Param email path string true "Account email"
// @Param from query string false "Inclusive lower bound, YYYY-MM-DD or RFC 3339"
// @Param to query string false "Exclusive upper bound, YYYY-MM-DD or RFC 3339"
// @Success 200 {object} SuccessResponse{data=dto.OverviewResponse}
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_006 - invalid date range"
// @Failure 404 {object} errors.ErrorResponse "EXPENSE_001 - user not found"
// @Router /api/expenses/overview/{email} [get]
func (h *ExpenseHandler) GetOverview(c echo.Context) error {
	email, err := getEmailParam(c)
	if err != nil {
		return sendServiceError(c, err)
	}

	from, err := getDateParam(c, "from")
	if err != nil {
		return SendError(c, errors.ValidationInvalidDate, errors.WithDetails(err.Error()))
	}
	to, err := getDateParam(c, "to")
	if err != nil {
		return SendError(c, errors.ValidationInvalidDate, errors.WithDetails(err.Error()))
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return SendError(c, errors.ValidationInvalidDate, errors.WithDetails("from must be before to"))
	}

	overview, err := h.expenseService.Overview(c.Request().Context(), email, from, to)
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Data: overview})
}
