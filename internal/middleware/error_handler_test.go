package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	apierrors "expenzy/internal/errors"
	"expenzy/internal/validation"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ErrorHandlerTestSuite struct {
	suite.Suite
	echo *echo.Echo
}

func (s *ErrorHandlerTestSuite) SetupTest() {
	s.echo = echo.New()
	s.echo.HTTPErrorHandler = CustomHTTPErrorHandler
}

func TestErrorHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ErrorHandlerTestSuite))
}

func (s *ErrorHandlerTestSuite) newContext() (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	c.Set(TraceIDContextKey, "test-trace-id")
	return c, rec
}

func (s *ErrorHandlerTestSuite) TestEchoHTTPError() {
	c, rec := s.newContext()

	CustomHTTPErrorHandler(echo.NewHTTPError(http.StatusNotFound, "Resource not found"), c)

	s.Equal(http.StatusNotFound, rec.Code)
	s.Contains(rec.Body.String(), "test-trace-id")
	s.Contains(rec.Body.String(), "Resource not found")
	s.Contains(rec.Body.String(), "SYSTEM_007")
}

func (s *ErrorHandlerTestSuite) TestGenericErrorIsHidden() {
	c, rec := s.newContext()

	CustomHTTPErrorHandler(errors.New("pq: relation \"transactions\" does not exist"), c)

	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Contains(rec.Body.String(), "SYSTEM_001")
	s.NotContains(rec.Body.String(), "relation")
}

func (s *ErrorHandlerTestSuite) TestValidationErrors() {
	c, rec := s.newContext()
	req := struct {
		Amount   decimal.Decimal `json:"amount" validate:"positive_amount"`
		Category string          `json:"category" validate:"category_label"`
	}{Amount: decimal.Zero, Category: "Food"}

	err := validation.GetValidator().GetValidate().Struct(req)
	s.Require().Error(err)

	CustomHTTPErrorHandler(fmt.Errorf("bind: %w", err), c)

	s.Equal(http.StatusBadRequest, rec.Code)

	var resp apierrors.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("VALIDATION_001", resp.Error.Code)
	s.Equal([]string{"amount: must be greater than 0"}, resp.Error.Details)
}

func (s *ErrorHandlerTestSuite) TestNoTraceID() {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	CustomHTTPErrorHandler(errors.New("test error"), c)

	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Contains(rec.Body.String(), "unknown")
}

func (s *ErrorHandlerTestSuite) TestCommittedResponseIsLeftAlone() {
	c, rec := s.newContext()
	_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})

	CustomHTTPErrorHandler(errors.New("test error"), c)

	s.Equal(http.StatusOK, rec.Code)
	s.NotContains(rec.Body.String(), "SYSTEM_001")
}

func (s *ErrorHandlerTestSuite) TestStatusMapping() {
	testCases := []struct {
		status       int
		expectedCode string
	}{
		{http.StatusBadRequest, "VALIDATION_001"},
		{http.StatusUnauthorized, "AUTH_001"},
		{http.StatusNotFound, "SYSTEM_007"},
		{http.StatusMethodNotAllowed, "SYSTEM_008"},
		{http.StatusTooManyRequests, "SYSTEM_006"},
		{http.StatusInternalServerError, "SYSTEM_001"},
		{http.StatusServiceUnavailable, "SYSTEM_003"},
		{http.StatusTeapot, "SYSTEM_005"},
	}

	for _, tc := range testCases {
		s.Run(http.StatusText(tc.status), func() {
			c, rec := s.newContext()

			CustomHTTPErrorHandler(echo.NewHTTPError(tc.status), c)

			s.Equal(tc.status, rec.Code)
			s.Contains(rec.Body.String(), tc.expectedCode)
			s.Contains(rec.Header().Get("Content-Type"), "application/json")
		})
	}
}
