package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

type RequestIDTestSuite struct {
	suite.Suite
	echo *echo.Echo
}

func (s *RequestIDTestSuite) SetupTest() {
	s.echo = echo.New()
}

func TestRequestIDTestSuite(t *testing.T) {
	suite.Run(t, new(RequestIDTestSuite))
}

// run passes a request with the given headers through RequestID and returns
// the trace ID the handler saw.
func (s *RequestIDTestSuite) run(headers map[string]string) (string, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	var seen string
	handler := RequestID()(func(c echo.Context) error {
		seen = GetTraceID(c)
		return c.NoContent(http.StatusOK)
	})
	s.Require().NoError(handler(c))

	return seen, rec
}

func (s *RequestIDTestSuite) TestGeneratesTraceID() {
	traceID, rec := s.run(nil)

	_, err := uuid.Parse(traceID)
	s.NoError(err)
	s.Equal(traceID, rec.Header().Get(TraceIDHeader))
}

func (s *RequestIDTestSuite) TestUsesExistingTraceID() {
	traceID, rec := s.run(map[string]string{TraceIDHeader: "existing-trace-id-12345"})

	s.Equal("existing-trace-id-12345", traceID)
	s.Equal("existing-trace-id-12345", rec.Header().Get(TraceIDHeader))
}

func (s *RequestIDTestSuite) TestFallsBackToRequestIDHeader() {
	traceID, _ := s.run(map[string]string{echo.HeaderXRequestID: "req-42"})

	s.Equal("req-42", traceID)
}

func (s *RequestIDTestSuite) TestReplacesMalformedTraceID() {
	for _, bad := range []string{"has spaces in it", "line\nbreak", strings.Repeat("a", 65)} {
		traceID, _ := s.run(map[string]string{TraceIDHeader: bad})

		s.NotEqual(bad, traceID)
		_, err := uuid.Parse(traceID)
		s.NoError(err)
	}
}

func (s *RequestIDTestSuite) TestGetTraceID_Missing() {
	c := s.echo.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	s.Empty(GetTraceID(c))
}
