package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"expenzy/internal/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

type PanicRecoveryTestSuite struct {
	suite.Suite
	echo *echo.Echo
}

func (s *PanicRecoveryTestSuite) SetupTest() {
	s.echo = echo.New()
}

func TestPanicRecoveryTestSuite(t *testing.T) {
	suite.Run(t, new(PanicRecoveryTestSuite))
}

func (s *PanicRecoveryTestSuite) TestRecoversFromPanic() {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	c.Set(TraceIDContextKey, "test-trace-id")

	handler := PanicRecovery()(func(c echo.Context) error {
		panic("nil map write")
	})

	var err error
	s.NotPanics(func() {
		err = handler(c)
	})
	s.NoError(err)
	s.Equal(http.StatusInternalServerError, rec.Code)

	var errorResponse errors.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &errorResponse))
	s.Equal("SYSTEM_001", errorResponse.Error.Code)
	s.Equal("test-trace-id", errorResponse.Error.TraceID)
	s.NotContains(rec.Body.String(), "nil map write")
}

func (s *PanicRecoveryTestSuite) TestNoTraceID() {
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	handler := PanicRecovery()(func(c echo.Context) error {
		panic("test panic")
	})

	s.NotPanics(func() { _ = handler(c) })
	s.Contains(rec.Body.String(), `"trace_id":"unknown"`)
}

func (s *PanicRecoveryTestSuite) TestCommittedResponseIsKept() {
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	handler := PanicRecovery()(func(c echo.Context) error {
		_ = c.String(http.StatusOK, "partial")
		panic("after write")
	})

	s.NotPanics(func() { _ = handler(c) })
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("partial", rec.Body.String())
}

func (s *PanicRecoveryTestSuite) TestAbortHandlerIsRepanicked() {
	c := s.echo.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	handler := PanicRecovery()(func(c echo.Context) error {
		panic(http.ErrAbortHandler)
	})

	s.Panics(func() { _ = handler(c) })
}

func (s *PanicRecoveryTestSuite) TestPassesThrough() {
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	handler := PanicRecovery()(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	s.NoError(handler(c))
	s.Equal(http.StatusNoContent, rec.Code)
}
