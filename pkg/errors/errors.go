package errors

import (
	"errors"
	"fmt"
)

// VK API error codes the collector cares about.
const (
	// CodeAuthorizationFailed means the access token is invalid or expired.
	CodeAuthorizationFailed = 5
	// CodeTooManyRequests is returned by VK when the per-token request rate is exceeded.
	CodeTooManyRequests = 6
	// CodeAccessDenied is returned for private walls and closed profiles.
	CodeAccessDenied = 15
	// CodeAttemptsExhausted is synthesized by the client once all retries have failed.
	// VK never uses negative codes, so it cannot collide with a real payload.
	CodeAttemptsExhausted = -1
)

// APIError mirrors the VK error payload: {"error": {"error_code": 6, "error_msg": "..."}}
type APIError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vk api error (code %d): %s", e.Code, e.Message)
}

// IsRateLimit reports whether the payload is VK's "too many requests" signal.
func (e *APIError) IsRateLimit() bool {
	return e != nil && e.Code == CodeTooManyRequests
}

// IsExhausted reports whether the error is the client's retry-exhaustion sentinel.
func (e *APIError) IsExhausted() bool {
	return e != nil && e.Code == CodeAttemptsExhausted
}

// Exhausted builds the sentinel payload returned after the last failed attempt.
func Exhausted() *APIError {
	return &APIError{
		Code:    CodeAttemptsExhausted,
		Message: "too many attempts",
	}
}

// TransportError wraps a failure below the API layer (network, HTTP status, decoding).
// It never escapes the client; callers only ever see APIError.
type TransportError struct {
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transport error (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err should be retried: any transport failure or
// the rate-limit payload. Every other API error is final.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsRateLimit()
	}
	return false
}

// AsAPIError extracts the VK payload from err, if there is one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Conditions surfaced by the collector and the profile engine.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmptyCorpus  = errors.New("no texts to build a profile from after filtering")
	ErrEmptyInput   = errors.New("no texts to compare after filtering")
)
