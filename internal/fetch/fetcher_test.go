package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brogergvhs/mangapdf/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestFetcher(retries int, delay, timeout time.Duration, m *metrics.Metrics) *HTTPFetcher {
	return New(&http.Client{}, Options{
		Timeout:    timeout,
		MaxRetries: retries,
		RetryDelay: delay,
		Metrics:    m,
	})
}

func TestFetchRetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	m := metrics.New()
	f := newTestFetcher(3, 10*time.Millisecond, time.Second, m)

	body, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "<html>ok</html>" {
		t.Errorf("body = %q", body)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
	if got := testutil.ToFloat64(m.RetriesTotal); got != 2 {
		t.Errorf("retries = %v, want 2", got)
	}
}

func TestFetchGivesUpAfterBudget(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	delay := 30 * time.Millisecond
	f := newTestFetcher(3, delay, time.Second, nil)

	start := time.Now()
	body, err := f.Fetch(context.Background(), srv.URL)
	elapsed := time.Since(start)

	if body != nil {
		t.Errorf("expected nil body, got %q", body)
	}

	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if fe.Attempts != 3 || fe.StatusCode != http.StatusForbidden {
		t.Errorf("got attempts=%d status=%d", fe.Attempts, fe.StatusCode)
	}
	if !errors.Is(err, ErrStatus) {
		t.Errorf("expected ErrStatus in chain: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
	if elapsed < 2*delay {
		t.Errorf("attempts were not spaced out: %s", elapsed)
	}
}

func TestFetchEmptyBodyIsNotAFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	f := newTestFetcher(1, time.Millisecond, time.Second, nil)

	body, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(body) != 0 {
		t.Errorf("expected empty body, got %q", body)
	}
}

func TestFetchTimeoutIsPerAttempt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
			return
		}
		_, _ = w.Write([]byte("late but fine"))
	}))
	defer srv.Close()

	f := newTestFetcher(2, 5*time.Millisecond, 50*time.Millisecond, nil)

	body, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "late but fine" {
		t.Errorf("body = %q", body)
	}
}

func TestFetchSendsRequestHeaders(t *testing.T) {
	var gotReferer, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReferer = r.Header.Get("Referer")
		gotAccept = r.Header.Get("Accept")
	}))
	defer srv.Close()

	f := newTestFetcher(1, time.Millisecond, time.Second, nil)

	_, err := f.Fetch(context.Background(), srv.URL, WithReferer("https://site/ch-1"), WithAccept(AcceptImage))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotReferer != "https://site/ch-1" || gotAccept != AcceptImage {
		t.Errorf("referer=%q accept=%q", gotReferer, gotAccept)
	}
}

func TestFetchTransportError(t *testing.T) {
	f := newTestFetcher(2, time.Millisecond, 100*time.Millisecond, nil)

	_, err := f.Fetch(context.Background(), "http://127.0.0.1:1/unreachable")

	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if fe.StatusCode != 0 || fe.Attempts != 2 {
		t.Errorf("got attempts=%d status=%d", fe.Attempts, fe.StatusCode)
	}
}
