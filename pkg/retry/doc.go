// Package retry provides a bounded retry loop with linear backoff for
// transient failures of VK API calls.
//
// A failed attempt is retried when RetryIf accepts its error; by default that
// means a transport failure or VK's "too many requests" payload. Every
// retryable failure is followed by a backoff wait, including the last one,
// after which Do gives up with an error wrapping ErrMaxAttemptsExceeded and
// the last failure.
//
//	cfg := &retry.Config{
//		MaxAttempts: 3,
//		Backoff:     retry.NewLinearBackoff(500 * time.Millisecond),
//		Logger:      logger.GetLogger(),
//	}
//	err := retry.Do(func() error {
//		return call(ctx)
//	}, cfg)
//
// Waits honour the configured context.
package retry
