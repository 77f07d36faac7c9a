package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	errs "github.com/figsheet/figsheet/pkg/errors"
)

const (
	// maxResponseSize caps fetched bodies. Manifests are small; the
	// cap guards against pointing the tool at an arbitrary endpoint.
	maxResponseSize = 64 << 20

	defaultTimeout = 30 * time.Second
)

// Fetcher performs GET requests with retry for transient failures.
type Fetcher struct {
	client   *http.Client
	attempts int
	delay    time.Duration
}

// NewFetcher wraps client with retry behavior. A nil client gets a
// default with a 30 second timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Fetcher{client: client, attempts: 3, delay: time.Second}
}

// FetchBytes GETs url and returns the body. Network errors, 5xx, and
// 429 responses retry with exponential backoff; other non-200
// statuses fail immediately.
func (f *Fetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	if err := errs.ValidateURL(url); err != nil {
		return nil, err
	}

	var body []byte
	err := Retry(ctx, f.attempts, f.delay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return &RetryableError{Err: err}
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			// fall through to read
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return &RetryableError{Err: fmt.Errorf("GET %s: %s", url, resp.Status)}
		case resp.StatusCode == http.StatusNotFound:
			return errs.New(errs.ErrCodeManifestNotFound, "GET %s: %s", url, resp.Status)
		default:
			return fmt.Errorf("GET %s: %s", url, resp.Status)
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
		if err != nil {
			return &RetryableError{Err: err}
		}
		if len(body) > maxResponseSize {
			return fmt.Errorf("GET %s: response exceeds %d bytes", url, maxResponseSize)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
