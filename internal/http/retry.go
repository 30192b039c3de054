package http

import (
	"context"
	"math/rand"
	nethttp "net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// ErrorType represents different classes of failures for the retry strategy
type ErrorType int

const (
	// ErrorTypeSuccess indicates the request succeeded
	ErrorTypeSuccess ErrorType = iota
	// ErrorTypeNetwork indicates transport failures (timeouts, resets, refused connections)
	ErrorTypeNetwork
	// ErrorTypeRetryable indicates server errors that can be retried (429, 5xx)
	ErrorTypeRetryable
	// ErrorTypeFatal indicates failures that should not be retried (4xx, cancellation)
	ErrorTypeFatal
)

// ClassifyResponse determines the error type of a finished attempt.
func ClassifyResponse(ctx context.Context, resp *nethttp.Response, err error) ErrorType {
	if ctx.Err() != nil {
		return ErrorTypeFatal
	}
	if err != nil {
		// DefaultRetryPolicy already knows which transport errors are permanent
		// (bad TLS certificates, unsupported schemes, redirect loops)
		if retry, _ := retryablehttp.DefaultRetryPolicy(ctx, nil, err); retry {
			return ErrorTypeNetwork
		}
		return ErrorTypeFatal
	}
	if resp == nil {
		return ErrorTypeFatal
	}
	switch {
	case resp.StatusCode == nethttp.StatusTooManyRequests:
		return ErrorTypeRetryable
	case resp.StatusCode == nethttp.StatusNotImplemented:
		return ErrorTypeFatal
	case resp.StatusCode >= 500:
		return ErrorTypeRetryable
	case resp.StatusCode >= 400:
		return ErrorTypeFatal
	}
	return ErrorTypeSuccess
}

// CheckRetry is the retryablehttp.CheckRetry policy for directory requests.
func CheckRetry(ctx context.Context, resp *nethttp.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	switch ClassifyResponse(ctx, resp, err) {
	case ErrorTypeNetwork, ErrorTypeRetryable:
		return true, nil
	}
	return false, nil
}

// Backoff is the retryablehttp.Backoff used by the directory client. It honors
// Retry-After on 429/503 responses and otherwise applies full jitter.
func Backoff(min, max time.Duration, attemptNum int, resp *nethttp.Response) time.Duration {
	if resp != nil && (resp.StatusCode == nethttp.StatusTooManyRequests || resp.StatusCode == nethttp.StatusServiceUnavailable) {
		if resp.Header.Get("Retry-After") != "" {
			return retryablehttp.DefaultBackoff(min, max, attemptNum, resp)
		}
	}
	return CalculateBackoff(attemptNum+1, min, max)
}

// CalculateBackoff returns exponential backoff duration with full jitter
//
// Formula: random(0, min(maxDelay, initialDelay * 2^attempt))
func CalculateBackoff(attempt int, initialDelay, maxDelay time.Duration) time.Duration {
	if attempt <= 0 || initialDelay <= 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}

	base := time.Duration(1<<uint(attempt)) * initialDelay
	if base > maxDelay || base <= 0 {
		base = maxDelay
	}
	if base <= 0 {
		return 0
	}

	return time.Duration(rand.Int63n(int64(base)))
}

// ErrorTypeName returns a human-readable name for an ErrorType
func ErrorTypeName(errType ErrorType) string {
	switch errType {
	case ErrorTypeSuccess:
		return "success"
	case ErrorTypeNetwork:
		return "network"
	case ErrorTypeRetryable:
		return "retryable"
	case ErrorTypeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}
