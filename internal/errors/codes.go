package errors

import "net/http"

// ErrorCode represents a standardized error code used throughout the API
type ErrorCode string

// Authentication error codes (AUTH_*)
const (
	AuthInvalidCredentials ErrorCode = "AUTH_001"
	AuthUserAlreadyExists  ErrorCode = "AUTH_002"
	AuthWeakPassword       ErrorCode = "AUTH_003"
)

// Validation error codes (VALIDATION_*)
const (
	ValidationGeneral       ErrorCode = "VALIDATION_001"
	ValidationRequiredField ErrorCode = "VALIDATION_002"
	ValidationInvalidFormat ErrorCode = "VALIDATION_003"
	ValidationOutOfRange    ErrorCode = "VALIDATION_004"
	ValidationInvalidEmail  ErrorCode = "VALIDATION_005"
	ValidationInvalidDate   ErrorCode = "VALIDATION_006"
)

// Expense error codes (EXPENSE_*)
const (
	ExpenseUserNotFound        ErrorCode = "EXPENSE_001"
	ExpenseTransactionNotFound ErrorCode = "EXPENSE_002"
	ExpenseInvalidAmount       ErrorCode = "EXPENSE_003"
	ExpenseCategoryRequired    ErrorCode = "EXPENSE_004"
	ExpenseQuickAddParseFailed ErrorCode = "EXPENSE_005"
)

// Summary error codes (SUMMARY_*)
const (
	SummaryInvalidBoundary ErrorCode = "SUMMARY_001"
	SummaryInvalidKind     ErrorCode = "SUMMARY_002"
)

// System error codes (SYSTEM_*)
const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemDatabaseError      ErrorCode = "SYSTEM_002"
	SystemServiceUnavailable ErrorCode = "SYSTEM_003"
	SystemConfigurationError ErrorCode = "SYSTEM_004"
	SystemUnexpectedError    ErrorCode = "SYSTEM_005"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_006"
	SystemNotFound           ErrorCode = "SYSTEM_007"
	SystemMethodNotAllowed   ErrorCode = "SYSTEM_008"
)

type codeInfo struct {
	message string
	status  int
}

// registry holds the default message and HTTP status of every code.
var registry = map[ErrorCode]codeInfo{
	AuthInvalidCredentials: {"Invalid email or password", http.StatusUnauthorized},
	AuthUserAlreadyExists:  {"User already exists", http.StatusConflict},
	AuthWeakPassword:       {"Password does not meet the minimum requirements", http.StatusBadRequest},

	ValidationGeneral:       {"Validation failed", http.StatusBadRequest},
	ValidationRequiredField: {"Required field is missing", http.StatusBadRequest},
	ValidationInvalidFormat: {"Invalid field format", http.StatusBadRequest},
	ValidationOutOfRange:    {"Field value is out of allowed range", http.StatusBadRequest},
	ValidationInvalidEmail:  {"Invalid email address format", http.StatusBadRequest},
	ValidationInvalidDate:   {"Invalid date format or range", http.StatusBadRequest},

	ExpenseUserNotFound:        {"User not found", http.StatusNotFound},
	ExpenseTransactionNotFound: {"Transaction not found", http.StatusNotFound},
	ExpenseInvalidAmount:       {"Amount must be greater than zero", http.StatusBadRequest},
	ExpenseCategoryRequired:    {"Category is required", http.StatusBadRequest},
	ExpenseQuickAddParseFailed: {"Could not understand the transaction text", http.StatusUnprocessableEntity},

	SummaryInvalidBoundary: {"Period start is not aligned to its boundary", http.StatusBadRequest},
	SummaryInvalidKind:     {"Summary kind must be weekly or monthly", http.StatusBadRequest},

	SystemInternalError:      {"An unexpected error occurred. Please contact support with trace ID", http.StatusInternalServerError},
	SystemDatabaseError:      {"Database connection error", http.StatusInternalServerError},
	SystemServiceUnavailable: {"Service temporarily unavailable", http.StatusServiceUnavailable},
	SystemConfigurationError: {"System configuration error", http.StatusInternalServerError},
	SystemUnexpectedError:    {"An unexpected error occurred", http.StatusInternalServerError},
	SystemRateLimitExceeded:  {"Rate limit exceeded. Please try again later", http.StatusTooManyRequests},
	SystemNotFound:           {"Resource not found", http.StatusNotFound},
	SystemMethodNotAllowed:   {"Method not allowed", http.StatusMethodNotAllowed},
}

// GetErrorMessage returns the default message for code, or a generic one
// for unregistered codes.
func GetErrorMessage(code ErrorCode) string {
	if info, ok := registry[code]; ok {
		return info.message
	}
	return "An error occurred"
}

// GetHTTPStatus returns the status a code is sent with. Unregistered codes
// are treated as internal errors.
func GetHTTPStatus(code ErrorCode) int {
	if info, ok := registry[code]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

func IsValidErrorCode(code ErrorCode) bool {
	_, ok := registry[code]
	return ok
}
