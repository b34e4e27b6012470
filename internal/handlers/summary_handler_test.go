package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"expenzy/internal/dto"
	"expenzy/internal/ledger"
	"expenzy/internal/models"
	"expenzy/internal/services"
	"expenzy/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func TestSummaryHandler(t *testing.T) {
	suite.Run(t, new(SummaryHandlerSuite))
}

type SummaryHandlerSuite struct {
	suite.Suite
	ctrl           *gomock.Controller
	authService    *service_mocks.MockAuthServiceInterface
	summaryService *service_mocks.MockSummaryServiceInterface
	handler        *SummaryHandler
	e              *echo.Echo
	user           *models.User
}

func (s *SummaryHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.authService = service_mocks.NewMockAuthServiceInterface(s.ctrl)
	s.summaryService = service_mocks.NewMockSummaryServiceInterface(s.ctrl)
	s.handler = NewSummaryHandler(s.authService, s.summaryService, time.Monday)
	s.handler.now = func() time.Time { return time.Date(2024, time.March, 13, 10, 0, 0, 0, time.UTC) }
	s.e = echo.New()
	s.user = &models.User{ID: uuid.New(), Email: testEmail}
}

func (s *SummaryHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *SummaryHandlerSuite) newContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)
	c.SetParamNames("email")
	c.SetParamValues(testEmail)
	return c, rec
}

func (s *SummaryHandlerSuite) errorCode(rec *httptest.ResponseRecorder) string {
	var resp ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error.Code
}

func (s *SummaryHandlerSuite) weeklySummary(weekStart time.Time) *models.Summary {
	return models.NewWeeklySummary(s.user.ID, ledger.WeeklySummary{
		WeekStart:  weekStart,
		TotalSpent: decimal.NewFromInt(500),
		Categories: []ledger.CategorySubtotal{
			{Category: "Food", TotalAmount: decimal.NewFromInt(200)},
			{Category: "Travel", TotalAmount: decimal.NewFromInt(300)},
		},
	})
}

func (s *SummaryHandlerSuite) TestRecomputeWeekly_ExplicitStart() {
	weekStart := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	s.authService.EXPECT().GetUserByEmail(gomock.Any(), testEmail).Return(s.user, nil)
	s.summaryService.EXPECT().RecomputeWeek(gomock.Any(), s.user.ID, weekStart).Return(s.weeklySummary(weekStart), nil)

	c, rec := s.newContext(http.MethodPost, "/?weekStart=2024-03-04")

	s.NoError(s.handler.RecomputeWeekly(c))
	s.Equal(http.StatusOK, rec.Code)

	var resp struct {
		Data dto.SummaryResponse `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(models.SummaryKindWeekly, resp.Data.Kind)
	s.Require().Len(resp.Data.Categories, 2)
	s.Equal("Food", resp.Data.Categories[0].Category)
	s.Equal("Travel", resp.Data.Categories[1].Category)
}

func (s *SummaryHandlerSuite) TestRecomputeWeekly_DefaultsToCurrentWeek() {
	monday := time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)
	s.authService.EXPECT().GetUserByEmail(gomock.Any(), testEmail).Return(s.user, nil)
	s.summaryService.EXPECT().RecomputeWeek(gomock.Any(), s.user.ID, monday).Return(s.weeklySummary(monday), nil)

	c, rec := s.newContext(http.MethodPost, "/")

	s.NoError(s.handler.RecomputeWeekly(c))
	s.Equal(http.StatusOK, rec.Code)
}

func (s *SummaryHandlerSuite) TestRecomputeWeekly_MisalignedStart() {
	tuesday := time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC)
	s.authService.EXPECT().GetUserByEmail(gomock.Any(), testEmail).Return(s.user, nil)
	s.summaryService.EXPECT().RecomputeWeek(gomock.Any(), s.user.ID, tuesday).
		Return(nil, fmt.Errorf("%w: week must start on Monday", ledger.ErrInvalidBoundary))

	c, rec := s.newContext(http.MethodPost, "/?weekStart=2024-03-12")

	s.NoError(s.handler.RecomputeWeekly(c))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("SUMMARY_001", s.errorCode(rec))
}

func (s *SummaryHandlerSuite) TestRecomputeWeekly_BadDate() {
	s.authService.EXPECT().GetUserByEmail(gomock.Any(), testEmail).Return(s.user, nil)

	c, rec := s.newContext(http.MethodPost, "/?weekStart=last-monday")

	s.NoError(s.handler.RecomputeWeekly(c))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("VALIDATION_006", s.errorCode(rec))
}

func (s *SummaryHandlerSuite) TestRecomputeMonthly_DefaultsToCurrentMonth() {
	monthStart := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	s.authService.EXPECT().GetUserByEmail(gomock.Any(), testEmail).Return(s.user, nil)
	s.summaryService.EXPECT().RecomputeMonth(gomock.Any(), s.user.ID, monthStart).
		Return(models.NewMonthlySummary(s.user.ID, ledger.MonthlySummary{MonthStart: monthStart}), nil)

	c, rec := s.newContext(http.MethodPost, "/")

	s.NoError(s.handler.RecomputeMonthly(c))
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"kind":"monthly"`)
}

// Just after midnight in Kolkata it is still Sunday the 31st in UTC.
func (s *SummaryHandlerSuite) TestRecomputeWeekly_DefaultUsesUTCDate() {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	s.handler.now = func() time.Time { return time.Date(2024, time.April, 1, 2, 0, 0, 0, kolkata) }
	monday := time.Date(2024, time.March, 25, 0, 0, 0, 0, time.UTC)
	s.authService.EXPECT().GetUserByEmail(gomock.Any(), testEmail).Return(s.user, nil)
	s.summaryService.EXPECT().RecomputeWeek(gomock.Any(), s.user.ID, monday).Return(s.weeklySummary(monday), nil)

	c, rec := s.newContext(http.MethodPost, "/")

	s.NoError(s.handler.RecomputeWeekly(c))
	s.Equal(http.StatusOK, rec.Code)
}

func (s *SummaryHandlerSuite) TestRecomputeMonthly_DefaultUsesUTCDate() {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	s.handler.now = func() time.Time { return time.Date(2024, time.April, 1, 2, 0, 0, 0, kolkata) }
	monthStart := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	s.authService.EXPECT().GetUserByEmail(gomock.Any(), testEmail).Return(s.user, nil)
	s.summaryService.EXPECT().RecomputeMonth(gomock.Any(), s.user.ID, monthStart).
		Return(models.NewMonthlySummary(s.user.ID, ledger.MonthlySummary{MonthStart: monthStart}), nil)

	c, rec := s.newContext(http.MethodPost, "/")

	s.NoError(s.handler.RecomputeMonthly(c))
	s.Equal(http.StatusOK, rec.Code)
}

func (s *SummaryHandlerSuite) TestRecomputeMonthly_UnknownUser() {
	s.authService.EXPECT().GetUserByEmail(gomock.Any(), testEmail).Return(nil, services.ErrUserNotFound)

	c, rec := s.newContext(http.MethodPost, "/?monthStart=2024-03-01")

	s.NoError(s.handler.RecomputeMonthly(c))
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("EXPENSE_001", s.errorCode(rec))
}

func (s *SummaryHandlerSuite) TestListSummaries() {
	weekStart := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	s.authService.EXPECT().GetUserByEmail(gomock.Any(), testEmail).Return(s.user, nil)
	s.summaryService.EXPECT().ListSummaries(gomock.Any(), s.user.ID, models.SummaryKindWeekly).
		Return([]models.Summary{*s.weeklySummary(weekStart)}, nil)

	c, rec := s.newContext(http.MethodGet, "/?kind=weekly")

	s.NoError(s.handler.ListSummaries(c))
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"total_spent":"500"`)
}

func (s *SummaryHandlerSuite) TestListSummaries_BothKinds() {
	s.authService.EXPECT().GetUserByEmail(gomock.Any(), testEmail).Return(s.user, nil)
	s.summaryService.EXPECT().ListSummaries(gomock.Any(), s.user.ID, "").Return([]models.Summary{}, nil)

	c, rec := s.newContext(http.MethodGet, "/")

	s.NoError(s.handler.ListSummaries(c))
	s.Equal(http.StatusOK, rec.Code)
}

func (s *SummaryHandlerSuite) TestListSummaries_InvalidKind() {
	c, rec := s.newContext(http.MethodGet, "/?kind=yearly")

	s.NoError(s.handler.ListSummaries(c))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("SUMMARY_002", s.errorCode(rec))
}
