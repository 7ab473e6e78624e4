// Package httputil provides shared HTTP infrastructure for outbound calls
// made outside the layout pipeline itself.
//
// # Overview
//
// This package provides:
//
//   - [Cache]: File-based HTTP response caching
//   - [Retry]: Automatic retry with exponential backoff
//
// Its main consumer is pkg/httpapi's webhook notifier, which posts a job's
// terminal state to a caller-supplied URL and must tolerate a flaky or
// momentarily unavailable endpoint without losing the notification.
//
// # Caching
//
// [Cache] stores JSON-encoded values in the filesystem
// (~/.cache/bpmnlayout/ by default) with configurable TTL.
//
// Usage:
//
//	cache, err := httputil.NewCache(dir, 24*time.Hour)
//	var data Payload
//	ok, err := cache.Get("key", &data)
//	if !ok {
//	    data = fetch()
//	    cache.Set("key", data)
//	}
//
// # Retry
//
// [Retry] wraps a function with automatic retry for transient failures.
// Only errors wrapped with [Retryable] trigger a retry; everything else is
// treated as permanent.
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := http.Post(url, "application/json", body)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    defer resp.Body.Close()
//	    if resp.StatusCode >= 500 {
//	        return httputil.Retryable(fmt.Errorf("status %d", resp.StatusCode))
//	    }
//	    return nil
//	})
package httputil
