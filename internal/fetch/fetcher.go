// Package fetch performs GET requests with a bounded, fixed-delay retry policy.
//
// Every call is independent: there is no circuit breaking and no backoff
// escalation shared between calls.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brogergvhs/mangapdf/internal/metrics"
	"github.com/brogergvhs/mangapdf/internal/ui"
)

const (
	DefaultTimeout    = 20 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = 2 * time.Second

	// MaxBodyBytes caps a single response body.
	MaxBodyBytes = 64 << 20

	AcceptHTML  = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	AcceptImage = "image/avif,image/webp,image/apng,image/*,*/*;q=0.8"
)

// ErrStatus marks a response outside the 2xx range.
var ErrStatus = errors.New("unexpected HTTP status")

// Fetcher returns the body of target or an error once its retry budget is spent.
// A nil error with an empty body means the origin really served nothing.
type Fetcher interface {
	Fetch(ctx context.Context, target string, opts ...Option) ([]byte, error)
}

// Error is the terminal failure of one Fetch call.
type Error struct {
	URL        string
	Attempts   int
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s: gave up after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type request struct {
	accept  string
	referer string
}

type Option func(*request)

func WithAccept(accept string) Option {
	return func(r *request) { r.accept = accept }
}

func WithReferer(referer string) Option {
	return func(r *request) { r.referer = referer }
}

type Options struct {
	// Timeout bounds a single attempt, not the whole call.
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	Metrics    *metrics.Metrics
	Log        *ui.Logger
}

// HTTPFetcher implements Fetcher on a shared *http.Client. It never mutates
// the client, so one instance can serve any number of pipelines.
type HTTPFetcher struct {
	client     *http.Client
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	metrics    *metrics.Metrics
	log        *ui.Logger
}

func New(c *http.Client, opts Options) *HTTPFetcher {
	f := &HTTPFetcher{
		client:     c,
		timeout:    opts.Timeout,
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		metrics:    opts.Metrics,
		log:        opts.Log,
	}

	if f.timeout <= 0 {
		f.timeout = DefaultTimeout
	}
	if f.maxRetries < 1 {
		f.maxRetries = DefaultMaxRetries
	}
	if f.retryDelay <= 0 {
		f.retryDelay = DefaultRetryDelay
	}
	if f.log == nil {
		f.log = ui.NopLogger()
	}

	return f
}

func (f *HTTPFetcher) Fetch(ctx context.Context, target string, opts ...Option) ([]byte, error) {
	var r request
	for _, o := range opts {
		o(&r)
	}

	var (
		lastErr    error
		lastStatus int
	)

	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		if attempt > 1 {
			f.metrics.IncRetry()

			select {
			case <-ctx.Done():
				f.metrics.IncFetch("failed")
				return nil, &Error{URL: target, Attempts: attempt - 1, StatusCode: lastStatus, Err: ctx.Err()}
			case <-time.After(f.retryDelay):
			}
		}

		body, status, err := f.once(ctx, target, r)
		if err == nil {
			f.metrics.IncFetch("ok")
			return body, nil
		}

		lastErr, lastStatus = err, status
		f.log.Debugf("attempt %d/%d for %s failed: %v", attempt, f.maxRetries, target, err)
	}

	f.metrics.IncFetch("failed")

	return nil, &Error{URL: target, Attempts: f.maxRetries, StatusCode: lastStatus, Err: lastErr}
}

func (f *HTTPFetcher) once(ctx context.Context, target string, r request) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, err
	}

	if r.accept != "" {
		req.Header.Set("Accept", r.accept)
	}
	if r.referer != "" {
		req.Header.Set("Referer", r.referer)
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			f.log.Debugf("failed to close response body for %s: %v", target, cerr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, resp.StatusCode, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, err
	}

	return body, resp.StatusCode, nil
}
