package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"expenzy/internal/ledger"
	"expenzy/internal/models"

	"github.com/robfig/cron/v3"
)

const scheduledRunTimeout = 30 * time.Minute

// SummaryScheduler rebuilds the previous week's and month's summaries for
// every account on cron schedules evaluated in UTC.
type SummaryScheduler struct {
	cron       *cron.Cron
	summaries  SummaryServiceInterface
	summarizer ledger.Summarizer
	metrics    MetricsRecorderInterface
	logger     *slog.Logger
	now        func() time.Time
}

func NewSummaryScheduler(
	summaries SummaryServiceInterface,
	weekStartsOn time.Weekday,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) *SummaryScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SummaryScheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		summaries:  summaries,
		summarizer: ledger.NewSummarizer(weekStartsOn),
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Register adds the weekly and monthly jobs. An empty cron expression skips that job.
func (s *SummaryScheduler) Register(weeklySpec, monthlySpec string) error {
	if weeklySpec != "" {
		if _, err := s.cron.AddFunc(weeklySpec, func() { s.runJob(models.SummaryKindWeekly) }); err != nil {
			return fmt.Errorf("invalid weekly summary schedule %q: %w", weeklySpec, err)
		}
	}
	if monthlySpec != "" {
		if _, err := s.cron.AddFunc(monthlySpec, func() { s.runJob(models.SummaryKindMonthly) }); err != nil {
			return fmt.Errorf("invalid monthly summary schedule %q: %w", monthlySpec, err)
		}
	}
	return nil
}

func (s *SummaryScheduler) Start() {
	s.cron.Start()
	s.logger.Info("summary scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop prevents new runs and returns a context that is done once running
// jobs have finished.
func (s *SummaryScheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunWeekly recomputes the last complete week for every account.
func (s *SummaryScheduler) RunWeekly(ctx context.Context) (int, error) {
	return s.run(ctx, models.SummaryKindWeekly, PreviousWeekStart(s.summarizer, s.now()))
}

// RunMonthly recomputes the last complete calendar month for every account.
func (s *SummaryScheduler) RunMonthly(ctx context.Context) (int, error) {
	return s.run(ctx, models.SummaryKindMonthly, PreviousMonthStart(s.now()))
}

func (s *SummaryScheduler) runJob(kind string) {
	ctx, cancel := context.WithTimeout(context.Background(), scheduledRunTimeout)
	defer cancel()

	var err error
	if kind == models.SummaryKindWeekly {
		_, err = s.RunWeekly(ctx)
	} else {
		_, err = s.RunMonthly(ctx)
	}
	if err != nil {
		s.logger.Error("scheduled summary run failed", "kind", kind, "error", err)
	}
}

func (s *SummaryScheduler) run(ctx context.Context, kind string, periodStart time.Time) (int, error) {
	s.logger.Info("scheduled summary run", "kind", kind, "period_start", periodStart)

	refreshed, err := s.summaries.RecomputeAll(ctx, kind, periodStart)
	if s.metrics != nil {
		s.metrics.RecordGauge(MetricScheduledRecompute, float64(refreshed), map[string]string{"kind": kind})
	}
	return refreshed, err
}

// PreviousWeekStart returns the start of the week before the one containing now.
func PreviousWeekStart(summarizer ledger.Summarizer, now time.Time) time.Time {
	return summarizer.WeekStart(now.UTC()).AddDate(0, 0, -7)
}

// PreviousMonthStart returns the first instant of the month before now's.
func PreviousMonthStart(now time.Time) time.Time {
	return ledger.MonthStart(now.UTC()).AddDate(0, -1, 0)
}
