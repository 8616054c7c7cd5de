package logger

import (
	"context"

	"github.com/rs/zerolog"
)

// LogAPIAttempt logs a failed VK method call that will be retried
func LogAPIAttempt(l Logger, method string, attempt, maxAttempts int, err error) {
	l.WithError(err).WarnWithFields("VK request failed, backing off", map[string]interface{}{
		"method":       method,
		"attempt":      attempt,
		"max_attempts": maxAttempts,
	})
}

// LogPage logs one fetched page of a paginated listing
func LogPage(l Logger, method string, owner int64, offset, items int) {
	l.DebugWithFields("Fetched page", map[string]interface{}{
		"method": method,
		"owner":  owner,
		"offset": offset,
		"items":  items,
	})
}

// LogCollectionStopped logs an early stop of a collection step. The data
// gathered before the failure is kept by the caller.
func LogCollectionStopped(l Logger, step string, owner int64, kept int, err error) {
	l.WithError(err).WarnWithFields("Collection stopped early, keeping partial result", map[string]interface{}{
		"step":  step,
		"owner": owner,
		"kept":  kept,
	})
}

// LogStage logs the start of a pipeline stage on the global logger
func LogStage(stage string, fields map[string]interface{}) {
	GetLogger().WithField("stage", stage).InfoWithFields("Stage started", fields)
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}

func (n *nopLogger) GetZerolog() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}
