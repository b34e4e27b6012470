package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"expenzy/internal/dto"
	"expenzy/internal/ledger"
	"expenzy/internal/models"
	"expenzy/internal/repositories"

	"github.com/google/uuid"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidSeedCount    = errors.New("seed count must be between 1 and 1000")
)

const (
	maxSeedCount = 1000
	seedWindow   = 60 * 24 * time.Hour
)

// Transaction sources used as metric labels.
const (
	sourceManual   = "manual"
	sourceQuickAdd = "quick_add"
	sourceSeed     = "seed"
)

// ExpenseService owns writes to the daily log and builds the aggregated views
// read by the API.
type ExpenseService struct {
	users     repositories.UserRepositoryInterface
	ledger    repositories.LedgerRepositoryInterface
	parser    *ledger.Parser
	locks     *AccountLocks
	notifier  SummaryNotifierInterface
	metrics   MetricsRecorderInterface
	generator TransactionGeneratorInterface
	logger    *slog.Logger
	now       func() time.Time
}

// ExpenseServiceOption customizes an ExpenseService
type ExpenseServiceOption func(*ExpenseService)

func WithParser(p *ledger.Parser) ExpenseServiceOption {
	return func(s *ExpenseService) { s.parser = p }
}

func WithAccountLocks(l *AccountLocks) ExpenseServiceOption {
	return func(s *ExpenseService) { s.locks = l }
}

func WithSummaryNotifier(n SummaryNotifierInterface) ExpenseServiceOption {
	return func(s *ExpenseService) { s.notifier = n }
}

func WithTransactionGenerator(g TransactionGeneratorInterface) ExpenseServiceOption {
	return func(s *ExpenseService) { s.generator = g }
}

func WithClock(now func() time.Time) ExpenseServiceOption {
	return func(s *ExpenseService) { s.now = now }
}

// NewExpenseService creates a new expense service
func NewExpenseService(
	users repositories.UserRepositoryInterface,
	ledgerRepo repositories.LedgerRepositoryInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
	opts ...ExpenseServiceOption,
) ExpenseServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}

	s := &ExpenseService{
		users:     users,
		ledger:    ledgerRepo,
		locks:     NewAccountLocks(),
		notifier:  NoopSummaryNotifier{},
		metrics:   metrics,
		generator: NewTransactionGenerator(),
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.parser == nil {
		s.parser = ledger.NewParser()
		s.parser.Now = s.now
	}

	return s
}

// AddTransaction appends tx to the user's log. A zero date means now.
func (s *ExpenseService) AddTransaction(ctx context.Context, email string, tx ledger.Transaction) (*models.Transaction, error) {
	user, err := lookupUser(ctx, s.users, email)
	if err != nil {
		return nil, err
	}
	return s.appendForUser(ctx, user, tx, sourceManual)
}

func (s *ExpenseService) QuickAdd(ctx context.Context, email, text string) (*models.Transaction, error) {
	user, err := lookupUser(ctx, s.users, email)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	tx, err := s.parser.Parse(text)
	s.recordDuration(MetricQuickAddParseTime, time.Since(start))
	if err != nil {
		s.increment(MetricQuickAdd, map[string]string{"status": "failed"})
		s.logger.Info("quick-add rejected", "user_id", user.ID, "error", err)
		return nil, err
	}
	s.increment(MetricQuickAdd, map[string]string{"status": "parsed"})

	return s.appendForUser(ctx, user, tx, sourceQuickAdd)
}

func (s *ExpenseService) GetDailyLog(ctx context.Context, email string) ([]models.Transaction, error) {
	user, err := lookupUser(ctx, s.users, email)
	if err != nil {
		return nil, err
	}

	return s.readLog(ctx, user.ID)
}

func (s *ExpenseService) DeleteTransaction(ctx context.Context, email string, transactionID uuid.UUID) error {
	user, err := lookupUser(ctx, s.users, email)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(user.ID)
	log, err := s.readLog(ctx, user.ID)
	if err != nil {
		unlock()
		return err
	}

	var removed *models.Transaction
	for i := range log {
		if log[i].ID == transactionID {
			removed = &log[i]
			break
		}
	}
	if removed == nil {
		unlock()
		return ErrTransactionNotFound
	}

	if err := s.ledger.DeleteTransaction(ctx, user.ID, transactionID); err != nil {
		unlock()
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return ErrTransactionNotFound
		}
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	unlock()

	s.increment(MetricTransactionDeleted, nil)
	s.logger.Info("transaction deleted", "user_id", user.ID, "transaction_id", transactionID)
	s.notify(ctx, user.ID, removed.OccurredAt)

	return nil
}

// GroupByDateAndCategory groups the whole log. With byDay the dates are
// truncated to midnight UTC first, otherwise records group by exact instant.
func (s *ExpenseService) GroupByDateAndCategory(ctx context.Context, email string, byDay bool) ([]ledger.DateCategoryTotal, error) {
	user, err := lookupUser(ctx, s.users, email)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	txs, err := s.aggregatable(ctx, user.ID, "grouped")
	if err != nil {
		return nil, err
	}
	if byDay {
		txs = ledger.NormalizeDays(txs)
	}

	grouped := ledger.GroupByDateAndCategory(txs)
	s.recordDuration(MetricAggregationViewTime, time.Since(start))

	return grouped, nil
}

func (s *ExpenseService) Overview(ctx context.Context, email string, from, to time.Time) (*dto.OverviewResponse, error) {
	user, err := lookupUser(ctx, s.users, email)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	all, err := s.ledgerView(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	windowed := ledger.Window(all, from, to)
	valid, rejected := ledger.Partition(windowed)
	s.logExcluded(user.ID, "overview", rejected)

	totals := ledger.ComputeTotals(valid)
	overview := &dto.OverviewResponse{
		Income:          totals.Income,
		Expenses:        totals.Expenses,
		Balance:         totals.Balance,
		Distribution:    ledger.CategoryDistribution(valid),
		Transactions:    len(valid),
		ExcludedRecords: len(rejected),
	}
	if !from.IsZero() {
		f := from.UTC()
		overview.From = &f
	}
	if !to.IsZero() {
		t := to.UTC()
		overview.To = &t
	}
	s.recordDuration(MetricAggregationViewTime, time.Since(start))

	return overview, nil
}

// SeedTransactions appends count generated records spread over the last 60
// days. It stops at the first failed append and reports how many succeeded.
func (s *ExpenseService) SeedTransactions(ctx context.Context, email string, count int) (int, error) {
	if count < 1 || count > maxSeedCount {
		return 0, ErrInvalidSeedCount
	}

	user, err := lookupUser(ctx, s.users, email)
	if err != nil {
		return 0, err
	}

	end := s.now().UTC()
	generated := s.generator.Generate(count, end.Add(-seedWindow), end)

	created := 0
	touched := make(map[time.Time]bool)
	defer func() {
		for day := range touched {
			s.notify(ctx, user.ID, day)
		}
	}()

	for _, tx := range generated {
		record, err := s.store(ctx, user, tx, sourceSeed)
		if err != nil {
			return created, err
		}
		touched[ledger.DayOf(record.OccurredAt)] = true
		created++
	}

	s.logger.Info("seeded transactions", "user_id", user.ID, "count", created)
	return created, nil
}

func (s *ExpenseService) appendForUser(ctx context.Context, user *models.User, tx ledger.Transaction, source string) (*models.Transaction, error) {
	record, err := s.store(ctx, user, tx, source)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, user.ID, record.OccurredAt)
	return record, nil
}

// store rounds, validates and appends one record without notifying.
func (s *ExpenseService) store(ctx context.Context, user *models.User, tx ledger.Transaction, source string) (*models.Transaction, error) {
	tx.Amount = ledger.RoundAmount(tx.Amount)
	if err := ledger.Validate(tx); err != nil {
		return nil, err
	}
	if tx.Date.IsZero() {
		tx.Date = s.now()
	}

	record := models.TransactionFromLedger(user.ID, tx)

	unlock := s.locks.Lock(user.ID)
	err := s.ledger.Append(ctx, user.ID, record)
	unlock()
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to append transaction: %w", err)
	}

	s.increment(MetricTransactionAppended, map[string]string{"source": source})
	s.logger.Info("transaction appended",
		"user_id", user.ID,
		"transaction_id", record.ID,
		"category", record.Category,
		"is_income", record.IsIncome,
		"source", source,
	)

	return record, nil
}

func (s *ExpenseService) readLog(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	log, err := s.ledger.ReadLog(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to read transaction log: %w", err)
	}
	return log, nil
}

func (s *ExpenseService) ledgerView(ctx context.Context, userID uuid.UUID) ([]ledger.Transaction, error) {
	log, err := s.readLog(ctx, userID)
	if err != nil {
		return nil, err
	}
	txs := make([]ledger.Transaction, 0, len(log))
	for i := range log {
		txs = append(txs, log[i].ToLedger())
	}
	return txs, nil
}

// aggregatable returns the log with malformed records removed and logged.
func (s *ExpenseService) aggregatable(ctx context.Context, userID uuid.UUID, view string) ([]ledger.Transaction, error) {
	txs, err := s.ledgerView(ctx, userID)
	if err != nil {
		return nil, err
	}
	valid, rejected := ledger.Partition(txs)
	s.logExcluded(userID, view, rejected)
	return valid, nil
}

func (s *ExpenseService) logExcluded(userID uuid.UUID, view string, rejected []*ledger.MalformedRecordError) {
	for _, r := range rejected {
		s.logger.Warn("excluding malformed record",
			"user_id", userID,
			"transaction_id", r.ID,
			"index", r.Index,
			"reason", r.Reason,
			"view", view,
		)
	}
	if s.metrics != nil && len(rejected) > 0 {
		s.metrics.AddCounter(MetricExcludedRecords, float64(len(rejected)), map[string]string{"view": view})
	}
}

// notify logs notifier failures. The write that triggered it has already
// succeeded.
func (s *ExpenseService) notify(ctx context.Context, userID uuid.UUID, date time.Time) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.TransactionsChanged(ctx, userID, date); err != nil {
		s.logger.Error("failed to notify summary refresh", "user_id", userID, "error", err)
	}
}

func (s *ExpenseService) increment(name string, tags map[string]string) {
	if s.metrics != nil {
		s.metrics.IncrementCounter(name, tags)
	}
}

func (s *ExpenseService) recordDuration(name string, d time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordProcessingTime(name, d)
	}
}
