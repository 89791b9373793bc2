package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	maxFetchAttempts = 3
	userAgent        = "Go-Skin-Inspector/1.0"
)

// ErrPhotoTooLarge is returned when a download exceeds the configured size cap
var ErrPhotoTooLarge = errors.New("photo exceeds size limit")

// ErrPhotoNotFound is returned when the source reports the photo as missing
var ErrPhotoNotFound = errors.New("photo not found")

// PhotoFetcher downloads the encoded bytes of a photo
type PhotoFetcher interface {
	FetchPhoto(ctx context.Context, photoURL string) ([]byte, error)
}

// StatusError carries a non-200 response status
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	if e.StatusCode >= 500 {
		return fmt.Sprintf("server error: status code %d", e.StatusCode)
	}
	return fmt.Sprintf("client error: status code %d", e.StatusCode)
}

// Retryable is true for 5xx responses
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500
}

// HTTPFetcherOptions tunes the HTTP photo fetcher
type HTTPFetcherOptions struct {
	Timeout  time.Duration
	MaxBytes int64

	// Attempt n waits n*RetryBackoff before retrying
	RetryBackoff time.Duration
}

// DefaultHTTPFetcherOptions returns the production fetch settings
func DefaultHTTPFetcherOptions() HTTPFetcherOptions {
	return HTTPFetcherOptions{
		Timeout:      15 * time.Second,
		MaxBytes:     10 * 1024 * 1024,
		RetryBackoff: time.Second,
	}
}

type httpPhotoFetcher struct {
	client   *http.Client
	maxBytes int64
	backoff  time.Duration
}

// NewHTTPPhotoFetcher creates a fetcher for public http(s) photo URLs
func NewHTTPPhotoFetcher(opts HTTPFetcherOptions) PhotoFetcher {
	defaults := DefaultHTTPFetcherOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = defaults.MaxBytes
	}
	if opts.RetryBackoff < 0 {
		opts.RetryBackoff = 0
	}

	// One photo per request, so a small idle pool is enough
	transport := &http.Transport{
		Proxy:                  http.ProxyFromEnvironment,
		MaxIdleConns:           10,
		MaxIdleConnsPerHost:    2,
		IdleConnTimeout:        30 * time.Second,
		TLSHandshakeTimeout:    10 * time.Second,
		ResponseHeaderTimeout:  10 * time.Second,
		ExpectContinueTimeout:  1 * time.Second,
		MaxResponseHeaderBytes: 4096,
	}

	return &httpPhotoFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		maxBytes: opts.MaxBytes,
		backoff:  opts.RetryBackoff,
	}
}

// FetchPhoto downloads photoURL. Transport errors and 5xx responses are
// retried; 4xx responses fail at once.
func (h *httpPhotoFetcher) FetchPhoto(ctx context.Context, photoURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < maxFetchAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepContext(ctx, time.Duration(attempt)*h.backoff); err != nil {
				return nil, err
			}
		}

		data, err := h.fetchOnce(ctx, photoURL)
		if err == nil {
			return data, nil
		}
		lastErr = err

		var statusErr *StatusError
		switch {
		case errors.As(err, &statusErr) && !statusErr.Retryable():
			return nil, err
		case errors.Is(err, ErrPhotoTooLarge), ctx.Err() != nil:
			return nil, err
		}
	}

	return nil, fmt.Errorf("failed to fetch photo after %d attempts: %w", maxFetchAttempts, lastErr)
}

func (h *httpPhotoFetcher) fetchOnce(ctx context.Context, photoURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, photoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, image/gif, */*")
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %w", ErrPhotoNotFound, &StatusError{StatusCode: resp.StatusCode})
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}
	if resp.ContentLength > h.maxBytes {
		return nil, ErrPhotoTooLarge
	}
	return readLimited(resp.Body, h.maxBytes)
}

// readLimited reads at most maxBytes, failing with ErrPhotoTooLarge beyond that
func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrPhotoTooLarge
	}
	return data, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
