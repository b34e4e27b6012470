package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"expenzy/internal/queue"

	"github.com/google/uuid"
)

// NoopSummaryNotifier drops notifications. Summaries are then refreshed only
// by the scheduler or on demand.
type NoopSummaryNotifier struct{}

func (NoopSummaryNotifier) TransactionsChanged(context.Context, uuid.UUID, time.Time) error {
	return nil
}

// InlineSummaryNotifier recomputes the affected week and month in the caller's
// goroutine.
type InlineSummaryNotifier struct {
	summaries SummaryServiceInterface
}

func NewInlineSummaryNotifier(summaries SummaryServiceInterface) *InlineSummaryNotifier {
	return &InlineSummaryNotifier{summaries: summaries}
}

func (n *InlineSummaryNotifier) TransactionsChanged(ctx context.Context, userID uuid.UUID, date time.Time) error {
	return n.summaries.RecomputeForDate(ctx, userID, date)
}

const summaryQueueService = "summary_queue"

// QueueSummaryNotifier publishes a recompute request per change. When the
// broker fails, or the breaker is open, the fallback notifier handles the
// change instead.
type QueueSummaryNotifier struct {
	publisher SummaryRequestPublisher
	breaker   CircuitBreakerInterface
	fallback  SummaryNotifierInterface
	metrics   MetricsRecorderInterface
	logger    *slog.Logger
	now       func() time.Time
}

func NewQueueSummaryNotifier(
	publisher SummaryRequestPublisher,
	breaker CircuitBreakerInterface,
	fallback SummaryNotifierInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) *QueueSummaryNotifier {
	if breaker == nil {
		breaker = NewCircuitBreaker(DefaultCircuitBreakerConfig())
	}
	if fallback == nil {
		fallback = NoopSummaryNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QueueSummaryNotifier{
		publisher: publisher,
		breaker:   breaker,
		fallback:  fallback,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

func (n *QueueSummaryNotifier) TransactionsChanged(ctx context.Context, userID uuid.UUID, date time.Time) error {
	if n.breaker.IsOpen() {
		n.record("fallback", "breaker_open")
		return n.fallback.TransactionsChanged(ctx, userID, date)
	}

	req := queue.SummaryRequest{
		UserID:    userID,
		Date:      date.UTC(),
		Reason:    queue.ReasonTransactionsChanged,
		Timestamp: n.now().UTC(),
	}

	if err := n.publisher.PublishSummaryRequest(ctx, req); err != nil {
		wasClosed := n.breaker.GetState() != StateOpen
		n.breaker.RecordFailure()
		if wasClosed && n.breaker.GetState() == StateOpen {
			n.logger.Warn("summary queue circuit opened", "failures", n.breaker.GetFailureCount())
			n.increment(MetricCircuitBreakerOpen, map[string]string{"service": summaryQueueService})
		}
		n.record("queue", "failed")
		n.logger.Error("failed to publish summary request, using fallback", "user_id", userID, "error", err)

		if fallbackErr := n.fallback.TransactionsChanged(ctx, userID, date); fallbackErr != nil {
			return fmt.Errorf("publish failed (%v) and fallback failed: %w", err, fallbackErr)
		}
		n.record("fallback", "success")
		return nil
	}

	wasOpen := n.breaker.GetState() != StateClosed
	n.breaker.RecordSuccess()
	if wasOpen && n.breaker.GetState() == StateClosed {
		n.logger.Info("summary queue circuit closed")
		n.increment(MetricCircuitBreakerClosed, map[string]string{"service": summaryQueueService})
	}
	n.record("queue", "success")

	return nil
}

func (n *QueueSummaryNotifier) record(mode, status string) {
	n.increment(MetricSummaryNotification, map[string]string{"mode": mode, "status": status})
}

func (n *QueueSummaryNotifier) increment(name string, tags map[string]string) {
	if n.metrics != nil {
		n.metrics.IncrementCounter(name, tags)
	}
}
