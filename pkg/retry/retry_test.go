package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	errs "vkprofiler/pkg/errors"
)

func TestLinearBackoff(t *testing.T) {
	backoff := NewLinearBackoff(100 * time.Millisecond)

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 0},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 300 * time.Millisecond},
		{10, 1 * time.Second},
	}

	for _, test := range tests {
		if delay := backoff.NextDelay(test.attempt); delay != test.expected {
			t.Errorf("NextDelay(%d) = %v, want %v", test.attempt, delay, test.expected)
		}
	}
}

func TestTotalDelay(t *testing.T) {
	backoff := NewLinearBackoff(10 * time.Millisecond)
	if total := TotalDelay(backoff, 4); total != 100*time.Millisecond {
		t.Errorf("TotalDelay() = %v, want 100ms", total)
	}
}

func TestRetryWithSuccess(t *testing.T) {
	attempts := 0
	op := func() error {
		attempts++
		if attempts < 3 {
			return &errs.TransportError{Err: errors.New("connection reset")}
		}
		return nil
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     NewLinearBackoff(time.Millisecond),
		Context:     context.Background(),
	}

	if err := Do(op, cfg); err != nil {
		t.Errorf("Expected success after retries, got error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryWaitsAfterEveryFailure(t *testing.T) {
	attempts := 0
	var delays []time.Duration
	op := func() error {
		attempts++
		return &errs.APIError{Code: errs.CodeTooManyRequests, Message: "Too many requests per second"}
	}

	base := 5 * time.Millisecond
	cfg := &Config{
		MaxAttempts: 3,
		Backoff:     NewLinearBackoff(base),
		OnRetry: func(attempt int, err error, delay time.Duration) {
			delays = append(delays, delay)
		},
	}

	start := time.Now()
	err := Do(op, cfg)
	elapsed := time.Since(start)

	if !errors.Is(err, ErrMaxAttemptsExceeded) {
		t.Fatalf("Expected ErrMaxAttemptsExceeded, got %v", err)
	}
	var apiErr *errs.APIError
	if !errors.As(err, &apiErr) || !apiErr.IsRateLimit() {
		t.Errorf("Last error should stay reachable, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
	if len(delays) != 3 {
		t.Fatalf("Expected a wait after each of 3 failures, got %d", len(delays))
	}
	if elapsed < 6*base {
		t.Errorf("Expected at least %v elapsed, got %v", 6*base, elapsed)
	}
}

func TestRetryWithNonRetryableError(t *testing.T) {
	attempts := 0
	denied := &errs.APIError{Code: errs.CodeAccessDenied, Message: "Access denied"}
	op := func() error {
		attempts++
		return denied
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     NewLinearBackoff(time.Millisecond),
	}

	err := Do(op, cfg)
	if err != denied {
		t.Errorf("Expected the API error verbatim, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt for non-retryable error, got %d", attempts)
	}
}

func TestRetryWithContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	op := func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return &errs.TransportError{Status: 502}
	}

	cfg := &Config{
		MaxAttempts: 10,
		Backoff:     NewLinearBackoff(50 * time.Millisecond),
		Context:     ctx,
	}

	err := Do(op, cfg)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts before cancellation, got %d", attempts)
	}
}

func TestDefaultRetryIf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"transport", &errs.TransportError{Status: 500}, true},
		{"rate limit", &errs.APIError{Code: errs.CodeTooManyRequests}, true},
		{"access denied", &errs.APIError{Code: errs.CodeAccessDenied}, false},
		{"cancelled", context.Canceled, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultRetryIf(tt.err); got != tt.want {
				t.Errorf("DefaultRetryIf(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetrierDerivation(t *testing.T) {
	base := NewRetrier(&Config{MaxAttempts: 3, Backoff: NewLinearBackoff(time.Millisecond)})
	derived := base.WithMaxAttempts(1).WithContext(context.Background())

	if base.MaxAttempts() != 3 {
		t.Errorf("Deriving must not mutate the parent, got %d", base.MaxAttempts())
	}

	calls := 0
	err := derived.Do(func() error {
		calls++
		return &errs.TransportError{Status: 503}
	})
	if !errors.Is(err, ErrMaxAttemptsExceeded) || calls != 1 {
		t.Errorf("Expected one call then exhaustion, got %d calls and %v", calls, err)
	}
}
