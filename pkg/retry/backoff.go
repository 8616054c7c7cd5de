package retry

import (
	"context"
	"time"
)

// BackoffStrategy defines the interface for different backoff strategies
type BackoffStrategy interface {
	// NextDelay returns the delay to wait after the given failed attempt (1-based)
	NextDelay(attempt int) time.Duration
}

// LinearBackoff grows the delay by a fixed increment per attempt:
// BaseDelay + Increment*(attempt-1).
type LinearBackoff struct {
	BaseDelay time.Duration
	Increment time.Duration
}

// NewLinearBackoff returns a backoff waiting base, 2*base, 3*base, ...
func NewLinearBackoff(base time.Duration) *LinearBackoff {
	return &LinearBackoff{
		BaseDelay: base,
		Increment: base,
	}
}

// NextDelay calculates the next delay with linear backoff
func (lb *LinearBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	delay := lb.BaseDelay + lb.Increment*time.Duration(attempt-1)
	if delay < 0 {
		return 0
	}
	return delay
}

// TotalDelay is the sum of every wait a full run of attempts incurs
func TotalDelay(b BackoffStrategy, attempts int) time.Duration {
	var total time.Duration
	for i := 1; i <= attempts; i++ {
		total += b.NextDelay(i)
	}
	return total
}

// Wait waits for the specified duration or until context is cancelled
func Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
