package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"expenzy/internal/ledger"
	"expenzy/internal/models"
	"expenzy/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviousWeekStart(t *testing.T) {
	monday := ledger.NewSummarizer(time.Monday)
	sunday := ledger.NewSummarizer(time.Sunday)

	// Wednesday 2024-03-13
	now := time.Date(2024, time.March, 13, 15, 4, 5, 0, time.UTC)

	assert.Equal(t, time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), PreviousWeekStart(monday, now))
	assert.Equal(t, time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC), PreviousWeekStart(sunday, now))

	// On the first day of a week the previous week is the one just finished.
	startOfWeek := time.Date(2024, time.March, 11, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), PreviousWeekStart(monday, startOfWeek))
}

func TestPreviousMonthStart(t *testing.T) {
	assert.Equal(t,
		time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
		PreviousMonthStart(time.Date(2024, time.March, 31, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t,
		time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC),
		PreviousMonthStart(time.Date(2024, time.January, 1, 3, 0, 0, 0, time.UTC)))
}

func TestSummaryScheduler_RunWeeklyAndMonthly(t *testing.T) {
	ctrl := gomock.NewController(t)
	summaries := service_mocks.NewMockSummaryServiceInterface(ctrl)
	metrics := service_mocks.NewMockMetricsRecorderInterface(ctrl)

	scheduler := NewSummaryScheduler(summaries, time.Monday, metrics, nil)
	scheduler.now = func() time.Time { return time.Date(2024, time.March, 13, 2, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	summaries.EXPECT().
		RecomputeAll(ctx, models.SummaryKindWeekly, time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)).
		Return(3, nil)
	metrics.EXPECT().RecordGauge(MetricScheduledRecompute, 3.0, map[string]string{"kind": models.SummaryKindWeekly})

	summaries.EXPECT().
		RecomputeAll(ctx, models.SummaryKindMonthly, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)).
		Return(1, errors.New("one user failed"))
	metrics.EXPECT().RecordGauge(MetricScheduledRecompute, 1.0, map[string]string{"kind": models.SummaryKindMonthly})

	refreshed, err := scheduler.RunWeekly(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, refreshed)

	refreshed, err = scheduler.RunMonthly(ctx)
	assert.Error(t, err)
	assert.Equal(t, 1, refreshed)
}

func TestSummaryScheduler_Register(t *testing.T) {
	scheduler := NewSummaryScheduler(nil, time.Monday, nil, nil)

	require.NoError(t, scheduler.Register("0 2 * * 1", "0 3 1 * *"))
	assert.Len(t, scheduler.cron.Entries(), 2)

	assert.Error(t, scheduler.Register("not a schedule", ""))
}

func TestSummaryScheduler_StartStop(t *testing.T) {
	scheduler := NewSummaryScheduler(nil, time.Monday, nil, nil)
	require.NoError(t, scheduler.Register("@weekly", ""))

	scheduler.Start()
	ctx := scheduler.Stop()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
