package vk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"vkprofiler/pkg/config"
	errs "vkprofiler/pkg/errors"
	"vkprofiler/pkg/logger"
	"vkprofiler/pkg/ratelimit"
	"vkprofiler/pkg/retry"
)

// Client issues VK method calls with bounded retry and linear backoff
type Client struct {
	httpClient  *http.Client
	headers     map[string]string
	baseURL     string
	accessToken string
	apiVersion  string
	maxAttempts int
	baseDelay   time.Duration
	limiter     ratelimit.Limiter
	retrier     *retry.Retrier
	logger      logger.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLimiter replaces the request throttle; nil disables throttling
func WithLimiter(l ratelimit.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// NewClient creates a VK client from explicit configuration. Credentials are
// never read from globals.
func NewClient(vkCfg config.VKConfig, rlCfg config.RateLimitConfig, log logger.Logger, opts ...Option) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	baseURL := vkCfg.BaseURL
	if baseURL == "" {
		baseURL = BaseURL
	}
	version := vkCfg.APIVersion
	if version == "" {
		version = APIVersion
	}
	maxAttempts := rlCfg.MaxRetries
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: vkCfg.Timeout,
		},
		headers: map[string]string{
			"User-Agent": "vkprofiler/1.0",
			"Accept":     "application/json",
		},
		baseURL:     baseURL,
		accessToken: vkCfg.AccessToken,
		apiVersion:  version,
		maxAttempts: maxAttempts,
		baseDelay:   rlCfg.RetryDelay,
		limiter:     ratelimit.PerSecond(rlCfg.RequestsPerSecond),
		logger:      log,
	}
	c.retrier = retry.NewRetrier(&retry.Config{
		MaxAttempts: maxAttempts,
		Backoff:     retry.NewLinearBackoff(rlCfg.RetryDelay),
		RetryIf:     retry.DefaultRetryIf,
		Logger:      log,
	})

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Execute calls method with the client's default retry budget
func (c *Client) Execute(ctx context.Context, method string, params url.Values) (json.RawMessage, error) {
	return c.ExecuteWithRetry(ctx, method, params, c.maxAttempts, c.baseDelay)
}

// ExecuteWithRetry calls method, retrying transport failures and the
// rate-limit payload up to maxAttempts times. The wait after failed attempt
// n is baseDelay*n. Other API errors are returned as is. Once the attempts
// run out the result is the *errors.APIError built by errors.Exhausted.
// Only a cancelled ctx yields an error of another type.
func (c *Client) ExecuteWithRetry(ctx context.Context, method string, params url.Values, maxAttempts int, baseDelay time.Duration) (json.RawMessage, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	r := c.retrier.
		WithContext(ctx).
		WithMaxAttempts(maxAttempts).
		WithBackoff(retry.NewLinearBackoff(baseDelay)).
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logger.LogAPIAttempt(c.logger, method, attempt, maxAttempts, err)
		})

	var result json.RawMessage
	err := r.Do(func() error {
		raw, err := c.call(ctx, method, params)
		if err != nil {
			return err
		}
		result = raw
		return nil
	})
	if err == nil {
		return result, nil
	}

	if errors.Is(err, retry.ErrMaxAttemptsExceeded) {
		return nil, errs.Exhausted()
	}

	var apiErr *errs.APIError
	if errors.As(err, &apiErr) {
		return nil, apiErr
	}
	return nil, err
}

// call performs a single HTTP round trip
func (c *Client) call(ctx context.Context, method string, params url.Values) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	query := url.Values{}
	for key, values := range params {
		query[key] = append([]string(nil), values...)
	}
	query.Set("access_token", c.accessToken)
	query.Set("v", c.apiVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, MethodURL(c.baseURL, method, query), nil)
	if err != nil {
		return nil, &errs.TransportError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.WithError(err).DebugWithFields("VK request failed", map[string]interface{}{
			"method":   method,
			"duration": duration,
		})
		return nil, &errs.TransportError{Err: err}
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("VK request completed", map[string]interface{}{
		"method":   method,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &errs.TransportError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.TransportError{Status: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	var envelope Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.WarnWithFields("failed to parse VK response", map[string]interface{}{
			"method":       method,
			"body_preview": preview,
		})
		return nil, &errs.TransportError{Status: resp.StatusCode, Err: fmt.Errorf("failed to parse JSON: %w", err)}
	}

	if envelope.Error != nil {
		return nil, envelope.Error
	}

	return envelope.Response, nil
}
