// Package ratelimit throttles outbound VK API calls.
//
// VK allows a small number of requests per second per access token. The VK
// client calls Wait on its Limiter before every attempt:
//
//	limiter := ratelimit.PerSecond(cfg.RateLimit.RequestsPerSecond)
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
//
// SlidingWindow tracks request timestamps within a moving window.
package ratelimit
