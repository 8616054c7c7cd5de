package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	errs "vkprofiler/pkg/errors"
	"vkprofiler/pkg/logger"
)

// ErrMaxAttemptsExceeded is wrapped into the error returned by Do once every
// attempt has failed with a retryable error.
var ErrMaxAttemptsExceeded = errors.New("max retry attempts exceeded")

// Operation is a function that performs an operation that might need retrying
type Operation func() error

// Config holds retry configuration
type Config struct {
	// MaxAttempts is the maximum number of attempts (0 means unlimited)
	MaxAttempts int
	// Backoff strategy to use
	Backoff BackoffStrategy
	// RetryIf determines if an error should be retried
	RetryIf func(error) bool
	// OnRetry is called after a failed attempt, before waiting
	OnRetry func(attempt int, err error, delay time.Duration)
	// Context for cancellation
	Context context.Context
	// Logger for retry attempts
	Logger logger.Logger
}

// DefaultConfig mirrors the VK client defaults: three attempts, 500ms linear steps
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: 3,
		Backoff:     NewLinearBackoff(500 * time.Millisecond),
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		Logger:      logger.GetLogger(),
	}
}

// DefaultRetryIf retries transport failures and the VK rate-limit code.
// Other API errors and context errors are final.
func DefaultRetryIf(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errs.IsTransient(err)
}

// Do executes op until it succeeds, returns a non-retryable error, or runs
// out of attempts. A backoff wait follows every retryable failure, the last
// one included, so callers observe the full delay schedule before giving up.
func Do(op Operation, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	retryIf := cfg.RetryIf
	if retryIf == nil {
		retryIf = DefaultRetryIf
	}

	var lastErr error
	attempt := 0

	for {
		attempt++

		if cfg.MaxAttempts > 0 && attempt > cfg.MaxAttempts {
			if cfg.Logger != nil {
				cfg.Logger.WithError(lastErr).ErrorWithFields("max retry attempts exceeded", map[string]interface{}{
					"attempts": cfg.MaxAttempts,
				})
			}
			return fmt.Errorf("%w (%d): %w", ErrMaxAttemptsExceeded, cfg.MaxAttempts, lastErr)
		}

		err := op()
		if err == nil {
			if attempt > 1 && cfg.Logger != nil {
				cfg.Logger.DebugWithFields("operation succeeded after retry", map[string]interface{}{
					"attempt": attempt,
				})
			}
			return nil
		}

		lastErr = err

		if !retryIf(err) {
			return err
		}

		var delay time.Duration
		if cfg.Backoff != nil {
			delay = cfg.Backoff.NextDelay(attempt)
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, delay)
		}

		if cfg.Logger != nil {
			cfg.Logger.WithError(err).DebugWithFields("waiting before next attempt", map[string]interface{}{
				"attempt":  attempt,
				"delay_ms": delay.Milliseconds(),
			})
		}

		if err := Wait(ctx, delay); err != nil {
			return fmt.Errorf("retry cancelled: %w", err)
		}
	}
}

// Retrier provides a reusable retry mechanism
type Retrier struct {
	config *Config
}

// NewRetrier creates a new retrier with the given configuration
func NewRetrier(cfg *Config) *Retrier {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Retrier{config: cfg}
}

// Do executes an operation with retry logic
func (r *Retrier) Do(op Operation) error {
	return Do(op, r.config)
}

// MaxAttempts reports the configured attempt cap
func (r *Retrier) MaxAttempts() int {
	return r.config.MaxAttempts
}

// WithMaxAttempts returns a new retrier with updated max attempts
func (r *Retrier) WithMaxAttempts(maxAttempts int) *Retrier {
	newConfig := *r.config
	newConfig.MaxAttempts = maxAttempts
	return &Retrier{config: &newConfig}
}

// WithBackoff returns a new retrier with updated backoff strategy
func (r *Retrier) WithBackoff(backoff BackoffStrategy) *Retrier {
	newConfig := *r.config
	newConfig.Backoff = backoff
	return &Retrier{config: &newConfig}
}

// WithContext returns a new retrier with updated context
func (r *Retrier) WithContext(ctx context.Context) *Retrier {
	newConfig := *r.config
	newConfig.Context = ctx
	return &Retrier{config: &newConfig}
}

// WithOnRetry returns a new retrier with the given retry hook
func (r *Retrier) WithOnRetry(hook func(attempt int, err error, delay time.Duration)) *Retrier {
	newConfig := *r.config
	newConfig.OnRetry = hook
	return &Retrier{config: &newConfig}
}
