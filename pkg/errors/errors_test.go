package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"transport", &TransportError{Err: errors.New("connection reset")}, true},
		{"http status", &TransportError{Status: 502, Err: errors.New("bad gateway")}, true},
		{"rate limit", &APIError{Code: CodeTooManyRequests, Message: "Too many requests per second"}, true},
		{"wrapped rate limit", fmt.Errorf("wall.get: %w", &APIError{Code: CodeTooManyRequests}), true},
		{"access denied", &APIError{Code: CodeAccessDenied, Message: "Access denied"}, false},
		{"exhausted", Exhausted(), false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestExhausted(t *testing.T) {
	err := Exhausted()
	assert.True(t, err.IsExhausted())
	assert.False(t, err.IsRateLimit())
	assert.Equal(t, "vk api error (code -1): too many attempts", err.Error())

	apiErr, ok := AsAPIError(fmt.Errorf("users.get: %w", err))
	assert.True(t, ok)
	assert.Same(t, err, apiErr)
}

func TestTransportErrorUnwrap(t *testing.T) {
	inner := errors.New("dial tcp: timeout")
	err := &TransportError{Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "transport error: dial tcp: timeout", err.Error())
}
