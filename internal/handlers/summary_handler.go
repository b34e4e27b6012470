package handlers

import (
	"net/http"
	"time"

	"expenzy/internal/dto"
	"expenzy/internal/errors"
	"expenzy/internal/ledger"
	"expenzy/internal/models"
	"expenzy/internal/services"

	"github.com/labstack/echo/v4"
)

// SummaryHandler recomputes and lists persisted weekly and monthly summaries
type SummaryHandler struct {
	authService    services.AuthServiceInterface
	summaryService services.SummaryServiceInterface
	summarizer     ledger.Summarizer
	now            func() time.Time
}

// NewSummaryHandler creates a summary handler. weekStartsOn picks the default
// period when a request omits weekStart.
func NewSummaryHandler(
	authService services.AuthServiceInterface,
	summaryService services.SummaryServiceInterface,
	weekStartsOn time.Weekday,
) *SummaryHandler {
	return &SummaryHandler{
		authService:    authService,
		summaryService: summaryService,
		summarizer:     ledger.NewSummarizer(weekStartsOn),
		now:            time.Now,
	}
}

// RecomputeWeekly rebuilds one week's summary from the log and stores it
// @Summary Recompute a weekly summary
// @Tags Summaries
// @Produce json
// @Param email path string true "Account email"
// @Param weekStart query string false "Week start at midnight UTC; defaults to the current week"
// @Success 200 {object} SuccessResponse{data=dto.SummaryResponse}
// @Failure 400 {object} errors.ErrorResponse "SUMMARY_001 - weekStart is not a week boundary"
// @Failure 404 {object} errors.ErrorResponse "EXPENSE_001 - user not found"
// @Router /api/summaries/{email}/weekly [post]
func (h *SummaryHandler) RecomputeWeekly(c echo.Context) error {
	user, err := h.resolveUser(c)
	if err != nil {
		return sendServiceError(c, err)
	}

	weekStart, err := getDateParam(c, "weekStart")
	if err != nil {
		return SendError(c, errors.ValidationInvalidDate, errors.WithDetails(err.Error()))
	}
	if weekStart.IsZero() {
		weekStart = h.summarizer.WeekStart(h.now().UTC())
	}

	summary, err := h.summaryService.RecomputeWeek(c.Request().Context(), user.ID, weekStart)
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data:    dto.ToSummaryResponse(summary),
		Message: "Weekly summary updated",
	})
}

// RecomputeMonthly rebuilds one month's summary from the log and stores it
// @Summary Recompute a monthly summary
// @Tags Summaries
// @Produce json
// @Param email path string true "Account email"
// @Param monthStart query string false "First day of the month at midnight UTC; defaults to the current month"
// @Success 200 {object} SuccessResponse{data=dto.SummaryResponse}
// @Failure 400 {object} errors.ErrorResponse "SUMMARY_001 - monthStart is not a month boundary"
// @Failure 404 {object} errors.ErrorResponse "EXPENSE_001 - user not found"
// @Router /api/summaries/{email}/monthly [post]
func (h *SummaryHandler) RecomputeMonthly(c echo.Context) error {
	user, err := h.resolveUser(c)
	if err != nil {
		return sendServiceError(c, err)
	}

	monthStart, err := getDateParam(c, "monthStart")
	if err != nil {
		return SendError(c, errors.ValidationInvalidDate, errors.WithDetails(err.Error()))
	}
	if monthStart.IsZero() {
		monthStart = ledger.MonthStart(h.now().UTC())
	}

	summary, err := h.summaryService.RecomputeMonth(c.Request().Context(), user.ID, monthStart)
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data:    dto.ToSummaryResponse(summary),
		Message: "Monthly summary updated",
	})
}

// ListSummaries returns the stored summaries of one kind, or both
// @Summary List persisted summaries
// @Tags Summaries
// @Produce json
// @Param email path string true "Account email"
// @Param kind query string false "weekly or monthly; both when omitted"
// @Success 200 {object} SuccessResponse{data=[]dto.SummaryResponse}
// @Failure 400 {object} errors.ErrorResponse "SUMMARY_002 - unknown kind"
// @Failure 404 {object} errors.ErrorResponse "EXPENSE_001 - user not found"
// @Router /api/summaries/{email} [get]
func (h *SummaryHandler) ListSummaries(c echo.Context) error {
	kind := c.QueryParam("kind")
	if kind != "" && !models.IsValidSummaryKind(kind) {
		return SendError(c, errors.SummaryInvalidKind)
	}

	user, err := h.resolveUser(c)
	if err != nil {
		return sendServiceError(c, err)
	}

	summaries, err := h.summaryService.ListSummaries(c.Request().Context(), user.ID, kind)
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data: dto.ToSummaryResponses(summaries),
		Meta: map[string]interface{}{"count": len(summaries)},
	})
}

func (h *SummaryHandler) resolveUser(c echo.Context) (*models.User, error) {
	email, err := getEmailParam(c)
	if err != nil {
		return nil, err
	}
	return h.authService.GetUserByEmail(c.Request().Context(), email)
}
