package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time { return c.current }

func (c *fakeClock) Advance(d time.Duration) { c.current = c.current.Add(d) }

func newTestBreaker(clock *fakeClock) *CircuitBreaker {
	return newCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:     2,
		ResetTimeout:    10 * time.Second,
		HalfOpenMaxSucc: 2,
	}, clock.Now)
}

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	clock := &fakeClock{current: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	cb := newTestBreaker(clock)

	cb.RecordFailure()
	assert.False(t, cb.IsOpen())
	assert.Equal(t, 1, cb.GetFailureCount())

	cb.RecordFailure()
	assert.True(t, cb.IsOpen())
	assert.Equal(t, StateOpen, cb.GetState())
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	clock := &fakeClock{current: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	cb := newTestBreaker(clock)

	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()

	assert.False(t, cb.IsOpen())
	assert.Equal(t, 1, cb.GetFailureCount())
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	clock := &fakeClock{current: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	cb := newTestBreaker(clock)
	cb.RecordFailure()
	cb.RecordFailure()

	clock.Advance(11 * time.Second)

	assert.False(t, cb.IsOpen())
	assert.Equal(t, StateHalfOpen, cb.GetState())

	cb.RecordSuccess()
	assert.Equal(t, StateHalfOpen, cb.GetState())
	cb.RecordSuccess()
	assert.Equal(t, StateClosed, cb.GetState())
	assert.Equal(t, 0, cb.GetFailureCount())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	clock := &fakeClock{current: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	cb := newTestBreaker(clock)
	cb.RecordFailure()
	cb.RecordFailure()
	clock.Advance(11 * time.Second)
	assert.False(t, cb.IsOpen())

	cb.RecordFailure()

	assert.True(t, cb.IsOpen())
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := NewCircuitBreaker(DefaultCircuitBreakerConfig())
	for i := 0; i < 5; i++ {
		cb.RecordFailure()
	}
	assert.True(t, cb.IsOpen())

	cb.Reset()

	assert.False(t, cb.IsOpen())
	assert.Equal(t, "closed", cb.GetState().String())
}
