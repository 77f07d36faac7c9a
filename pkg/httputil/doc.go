// Package httputil provides HTTP utilities for fetching remote manifests.
//
// # Overview
//
// This package provides the small HTTP layer the pipeline uses when a
// manifest is given as an http(s) URL instead of a local path:
//
//   - [Fetcher]: Bounded-size GET with content-type awareness
//   - [Retry]: Automatic retry with exponential backoff
//
// # Fetching
//
// [Fetcher] wraps an [net/http.Client] with sane timeouts and retry:
//
//	f := httputil.NewFetcher(nil)
//	data, err := f.FetchBytes(ctx, "https://example.com/manifest.json")
//
// Transient failures (network errors, 5xx responses, 429 rate limits)
// retry with exponential backoff; 4xx responses fail immediately.
//
// # Retry
//
// [Retry] is the generic mechanism underneath: it re-runs a function
// when the error is wrapped in [RetryableError], doubling the delay
// after each attempt.
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Request timeout: 30 seconds
//   - Max retries: 3
//   - Base backoff: 1 second
//   - Response size cap: 64 MiB
package httputil
