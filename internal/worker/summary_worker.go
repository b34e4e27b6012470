// Package worker consumes summary recompute requests published by the API.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"expenzy/internal/ledger"
	"expenzy/internal/queue"
	"expenzy/internal/services"
)

// SummaryWorker refreshes stored summaries when the API reports a log change
type SummaryWorker struct {
	summaries services.SummaryServiceInterface
	logger    *slog.Logger
}

func NewSummaryWorker(summaries services.SummaryServiceInterface, logger *slog.Logger) *SummaryWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &SummaryWorker{summaries: summaries, logger: logger}
}

// HandleSummaryRequest recomputes the week and month containing req.Date. A
// returned error requeues the message, so requests that can never succeed
// (deleted users, misaligned periods) are logged and acknowledged instead.
func (w *SummaryWorker) HandleSummaryRequest(ctx context.Context, req *queue.SummaryRequest) error {
	w.logger.InfoContext(ctx, "processing summary request",
		"user_id", req.UserID,
		"date", req.Date,
		"reason", req.Reason,
	)

	err := w.summaries.RecomputeForDate(ctx, req.UserID, req.Date)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrUserNotFound):
		w.logger.WarnContext(ctx, "dropping summary request for unknown user", "user_id", req.UserID)
		return nil
	case errors.Is(err, ledger.ErrInvalidBoundary):
		w.logger.ErrorContext(ctx, "dropping summary request with invalid period", "user_id", req.UserID, "error", err)
		return nil
	default:
		return fmt.Errorf("recompute summaries: %w", err)
	}
}

// Handler adapts the worker to the queue consumer
func (w *SummaryWorker) Handler() queue.Handler {
	return w.HandleSummaryRequest
}
