package services

import (
	"context"
	"time"

	"expenzy/internal/dto"
	"expenzy/internal/ledger"
	"expenzy/internal/models"
	"expenzy/internal/queue"

	"github.com/google/uuid"
)

// PasswordServiceInterface defines password hashing and policy checks
type PasswordServiceInterface interface {
	ValidatePassword(password string) error
	HashPassword(password string) (string, error)
	ComparePassword(password, hash string) bool
}

// AuthServiceInterface defines signup, login and account lookup
type AuthServiceInterface interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*models.User, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// ExpenseServiceInterface manages a user's transaction log and the views
// derived from it
type ExpenseServiceInterface interface {
	AddTransaction(ctx context.Context, email string, tx ledger.Transaction) (*models.Transaction, error)
	// QuickAdd parses free text into a transaction and appends it. A
	// *ledger.ParseError is returned unchanged when the text has no amount.
	QuickAdd(ctx context.Context, email, text string) (*models.Transaction, error)
	GetDailyLog(ctx context.Context, email string) ([]models.Transaction, error)
	DeleteTransaction(ctx context.Context, email string, transactionID uuid.UUID) error
	GroupByDateAndCategory(ctx context.Context, email string, byDay bool) ([]ledger.DateCategoryTotal, error)
	// Overview computes totals and the expense distribution over [from, to).
	// A zero bound leaves that side open.
	Overview(ctx context.Context, email string, from, to time.Time) (*dto.OverviewResponse, error)
	SeedTransactions(ctx context.Context, email string, count int) (int, error)
}

// SummaryServiceInterface recomputes and lists persisted weekly and monthly rollups
type SummaryServiceInterface interface {
	RecomputeWeek(ctx context.Context, userID uuid.UUID, weekStart time.Time) (*models.Summary, error)
	RecomputeMonth(ctx context.Context, userID uuid.UUID, monthStart time.Time) (*models.Summary, error)
	// RecomputeForDate refreshes the week and the month that contain t.
	RecomputeForDate(ctx context.Context, userID uuid.UUID, t time.Time) error
	// RecomputeAll refreshes one period for every user and returns how many succeeded.
	RecomputeAll(ctx context.Context, kind string, periodStart time.Time) (int, error)
	ListSummaries(ctx context.Context, userID uuid.UUID, kind string) ([]models.Summary, error)
}

// SummaryNotifierInterface is told about log changes that invalidate stored summaries
type SummaryNotifierInterface interface {
	TransactionsChanged(ctx context.Context, userID uuid.UUID, date time.Time) error
}

// SummaryRequestPublisher sends recompute requests to the summary worker
type SummaryRequestPublisher interface {
	PublishSummaryRequest(ctx context.Context, req queue.SummaryRequest) error
}

type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	// AddCounter increases a counter by delta. Non-positive deltas are ignored.
	AddCounter(name string, delta float64, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}

// TransactionGeneratorInterface generates realistic transactions for development data
type TransactionGeneratorInterface interface {
	Generate(count int, start, end time.Time) []ledger.Transaction
}

type CircuitBreakerInterface interface {
	IsOpen() bool
	RecordSuccess()
	RecordFailure()
	GetState() models.CircuitBreakerState
	Reset()
	GetFailureCount() int
}
