package handlers

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"expenzy/internal/errors"
	"expenzy/internal/ledger"
	"expenzy/internal/models"
	"expenzy/internal/services"

	"github.com/labstack/echo/v4"
)

// dateLayouts are tried in order when reading date query parameters.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// ErrMissingEmail is returned when neither the path nor the query carries an email
var ErrMissingEmail = stderrors.New("email is required")

// getEmailParam reads the account email from the :email path segment, falling
// back to the ?email= query parameter.
func getEmailParam(c echo.Context) (string, error) {
	email := strings.TrimSpace(c.Param("email"))
	if email == "" {
		email = strings.TrimSpace(c.QueryParam("email"))
	}
	if email == "" {
		return "", ErrMissingEmail
	}
	return email, nil
}

// getDateParam parses an RFC 3339 timestamp or a plain YYYY-MM-DD date, which
// is read as midnight UTC. A missing parameter yields the zero time.
func getDateParam(c echo.Context, name string) (time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return time.Time{}, nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD or RFC 3339, got %q", name, raw)
}

func getBoolParam(c echo.Context, name string, defaultValue bool) bool {
	param := c.QueryParam(name)
	if param == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(param)
	if err != nil {
		return defaultValue
	}
	return value
}

func getIntParam(c echo.Context, name string, defaultValue int) int {
	param := c.QueryParam(name)
	if param == "" {
		return defaultValue
	}

	var value int
	if _, err := fmt.Sscanf(param, "%d", &value); err != nil {
		return defaultValue
	}

	return value
}

// sendServiceError maps the service layer's sentinel errors to API error
// codes. Anything unrecognised is reported as a system error.
func sendServiceError(c echo.Context, err error) error {
	var parseErr *ledger.ParseError
	var malformed *ledger.MalformedRecordError

	switch {
	case stderrors.Is(err, ErrMissingEmail):
		return SendError(c, errors.ValidationRequiredField, errors.WithDetails(err.Error()))
	case stderrors.Is(err, services.ErrUserNotFound):
		return SendError(c, errors.ExpenseUserNotFound)
	case stderrors.Is(err, services.ErrTransactionNotFound):
		return SendError(c, errors.ExpenseTransactionNotFound)
	case stderrors.As(err, &parseErr):
		return SendError(c, errors.ExpenseQuickAddParseFailed, errors.WithDetails(parseErr.Reason))
	case stderrors.As(err, &malformed):
		if strings.Contains(malformed.Reason, "category") {
			return SendError(c, errors.ExpenseCategoryRequired, errors.WithDetails(malformed.Reason))
		}
		return SendError(c, errors.ExpenseInvalidAmount, errors.WithDetails(malformed.Reason))
	case stderrors.Is(err, ledger.ErrInvalidBoundary):
		return SendError(c, errors.SummaryInvalidBoundary, errors.WithDetails(err.Error()))
	case stderrors.Is(err, models.ErrInvalidSummaryKind):
		return SendError(c, errors.SummaryInvalidKind)
	case stderrors.Is(err, services.ErrInvalidSeedCount):
		return SendError(c, errors.ValidationOutOfRange, errors.WithDetails(err.Error()))
	default:
		return SendSystemError(c, err)
	}
}
