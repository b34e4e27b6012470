package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"expenzy/internal/ledger"
	"expenzy/internal/models"
	"expenzy/internal/repositories"

	"github.com/google/uuid"
)

// SummaryService recomputes the persisted weekly and monthly rollups from a
// snapshot of the log. Stored summaries are caches: recomputing from the log
// always reproduces them.
type SummaryService struct {
	users      repositories.UserRepositoryInterface
	ledger     repositories.LedgerRepositoryInterface
	summarizer ledger.Summarizer
	locks      *AccountLocks
	metrics    MetricsRecorderInterface
	logger     *slog.Logger
}

// NewSummaryService creates a new summary service. locks must be the instance
// shared with the expense service so recomputes and appends of one user
// never interleave.
func NewSummaryService(
	users repositories.UserRepositoryInterface,
	ledgerRepo repositories.LedgerRepositoryInterface,
	locks *AccountLocks,
	weekStartsOn time.Weekday,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) SummaryServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}
	if locks == nil {
		locks = NewAccountLocks()
	}
	return &SummaryService{
		users:      users,
		ledger:     ledgerRepo,
		summarizer: ledger.NewSummarizer(weekStartsOn),
		locks:      locks,
		metrics:    metrics,
		logger:     logger,
	}
}

func (s *SummaryService) RecomputeWeek(ctx context.Context, userID uuid.UUID, weekStart time.Time) (*models.Summary, error) {
	return s.recompute(ctx, userID, models.SummaryKindWeekly, func(txs []ledger.Transaction) (*models.Summary, error) {
		week, err := s.summarizer.SummarizeWeek(txs, weekStart)
		if err != nil {
			return nil, err
		}
		return models.NewWeeklySummary(userID, week), nil
	})
}

func (s *SummaryService) RecomputeMonth(ctx context.Context, userID uuid.UUID, monthStart time.Time) (*models.Summary, error) {
	return s.recompute(ctx, userID, models.SummaryKindMonthly, func(txs []ledger.Transaction) (*models.Summary, error) {
		month, err := s.summarizer.SummarizeMonth(txs, monthStart)
		if err != nil {
			return nil, err
		}
		return models.NewMonthlySummary(userID, month), nil
	})
}

// RecomputeForDate refreshes the UTC week and month containing t.
func (s *SummaryService) RecomputeForDate(ctx context.Context, userID uuid.UUID, t time.Time) error {
	day := t.UTC()

	_, weekErr := s.RecomputeWeek(ctx, userID, s.summarizer.WeekStart(day))
	_, monthErr := s.RecomputeMonth(ctx, userID, ledger.MonthStart(day))

	return errors.Join(weekErr, monthErr)
}

// RecomputeAll refreshes one period for every account. Accounts deleted while
// the run is in progress are skipped. Other failures are logged, collected
// and do not stop the run.
func (s *SummaryService) RecomputeAll(ctx context.Context, kind string, periodStart time.Time) (int, error) {
	recompute, err := s.recomputeFunc(kind)
	if err != nil {
		return 0, err
	}

	ids, err := s.users.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	refreshed := 0
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		if _, err := recompute(ctx, id, periodStart); err != nil {
			if errors.Is(err, ErrUserNotFound) {
				continue
			}
			if errors.Is(err, ledger.ErrInvalidBoundary) {
				return refreshed, err
			}
			s.logger.Error("failed to recompute summary",
				"user_id", id,
				"kind", kind,
				"period_start", periodStart,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("user %s: %w", id, err))
			continue
		}
		refreshed++
	}

	s.logger.Info("summary run finished",
		"kind", kind,
		"period_start", periodStart,
		"users", len(ids),
		"refreshed", refreshed,
		"failed", len(errs),
	)

	return refreshed, errors.Join(errs...)
}

// ListSummaries returns stored summaries ordered by period start. An empty
// kind lists both kinds.
func (s *SummaryService) ListSummaries(ctx context.Context, userID uuid.UUID, kind string) ([]models.Summary, error) {
	if kind != "" && !models.IsValidSummaryKind(kind) {
		return nil, models.ErrInvalidSummaryKind
	}

	summaries, err := s.ledger.ListSummaries(ctx, userID, kind)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	return summaries, nil
}

func (s *SummaryService) recomputeFunc(kind string) (func(context.Context, uuid.UUID, time.Time) (*models.Summary, error), error) {
	switch kind {
	case models.SummaryKindWeekly:
		return s.RecomputeWeek, nil
	case models.SummaryKindMonthly:
		return s.RecomputeMonth, nil
	default:
		return nil, models.ErrInvalidSummaryKind
	}
}

// recompute holds the account lock while it snapshots the log, summarizes it
// and writes the result.
func (s *SummaryService) recompute(
	ctx context.Context,
	userID uuid.UUID,
	kind string,
	summarize func([]ledger.Transaction) (*models.Summary, error),
) (*models.Summary, error) {
	start := time.Now()

	unlock := s.locks.Lock(userID)
	defer unlock()

	log, err := s.ledger.ReadLog(ctx, userID)
	if err != nil {
		s.recordOutcome(kind, "failed")
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to read transaction log: %w", err)
	}

	txs := make([]ledger.Transaction, 0, len(log))
	for i := range log {
		txs = append(txs, log[i].ToLedger())
	}

	summary, err := summarize(txs)
	if err != nil {
		s.recordOutcome(kind, "invalid_boundary")
		return nil, err
	}

	if err := s.ledger.WriteSummary(ctx, userID, summary); err != nil {
		s.recordOutcome(kind, "failed")
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to write %s summary: %w", kind, err)
	}

	s.recordOutcome(kind, "success")
	if s.metrics != nil {
		s.metrics.RecordProcessingTime(MetricSummaryRecomputeTime, time.Since(start))
	}
	s.logger.Debug("summary recomputed",
		"user_id", userID,
		"kind", kind,
		"period_start", summary.PeriodStart,
		"total_spent", summary.TotalSpent.String(),
	)

	return summary, nil
}

func (s *SummaryService) recordOutcome(kind, status string) {
	if s.metrics != nil {
		s.metrics.IncrementCounter(MetricSummaryRecomputed, map[string]string{"kind": kind, "status": status})
	}
}
