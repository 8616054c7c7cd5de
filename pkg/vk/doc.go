// Package vk implements a resilient client for the VK method API.
//
// Every call is an HTTP GET to {base_url}/{method} carrying access_token and
// v next to the method parameters. Transport failures (network errors,
// non-2xx statuses, undecodable bodies) and the "too many requests" payload
// (error code 6) are retried with linear backoff: after failed attempt n the
// client sleeps n times the base delay. Any other API error is returned
// unchanged as *errors.APIError. When the attempts run out, the client
// returns the synthetic errors.Exhausted() payload, so callers handle a
// single error type.
//
// The package also holds the wire models of the four methods vkprofiler
// uses and helpers building their parameters.
package vk
