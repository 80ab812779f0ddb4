package downloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/brogergvhs/mangapdf/internal/fetch"
	"github.com/brogergvhs/mangapdf/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeFetcher struct {
	bodies map[string][]byte
	calls  []string
}

func (f *fakeFetcher) Fetch(_ context.Context, target string, _ ...fetch.Option) ([]byte, error) {
	f.calls = append(f.calls, target)

	if b, ok := f.bodies[target]; ok {
		return b, nil
	}

	return nil, &fetch.Error{URL: target, Attempts: 3, Err: errors.New("connection reset")}
}

func TestDownloadKeepsOrderAcrossFailures(t *testing.T) {
	f := &fakeFetcher{bodies: map[string][]byte{
		"u1": []byte("one"),
		"u3": []byte("three"),
		"u5": []byte("five"),
	}}

	m := metrics.New()
	dir := filepath.Join(t.TempDir(), "chapter_1")
	urls := []string{"u1", "u2", "u3", "u4", "u5"}

	var progress [][2]int
	res := New(f, m, nil).Download(context.Background(), urls, dir, "https://site/ch-1", func(done, total int) {
		progress = append(progress, [2]int{done, total})
	})

	if !reflect.DeepEqual(f.calls, urls) {
		t.Errorf("fetch order = %v, want %v", f.calls, urls)
	}

	wantPaths := []string{
		filepath.Join(dir, "001.jpg"),
		filepath.Join(dir, "003.jpg"),
		filepath.Join(dir, "005.jpg"),
	}
	if got := res.Paths(); !reflect.DeepEqual(got, wantPaths) {
		t.Errorf("paths = %v, want %v", got, wantPaths)
	}

	if len(res.Pages) != 5 {
		t.Fatalf("expected 5 page results, got %d", len(res.Pages))
	}
	for i, p := range res.Pages {
		if p.URL != urls[i] || p.Index != i+1 {
			t.Errorf("page %d = %+v", i, p)
		}
	}
	if res.Pages[1].Failure != FailureTransport || res.Pages[1].Err == nil {
		t.Errorf("page 2 should be a transport failure: %+v", res.Pages[1])
	}

	wantProgress := [][2]int{{1, 5}, {2, 5}, {3, 5}, {4, 5}, {5, 5}}
	if !reflect.DeepEqual(progress, wantProgress) {
		t.Errorf("progress = %v, want %v", progress, wantProgress)
	}

	b, err := os.ReadFile(filepath.Join(dir, "003.jpg"))
	if err != nil || string(b) != "three" {
		t.Errorf("003.jpg = %q, %v", b, err)
	}

	if res.Saved() != 3 || res.Bytes() != int64(len("one")+len("three")+len("five")) {
		t.Errorf("saved=%d bytes=%d", res.Saved(), res.Bytes())
	}
	if got := testutil.ToFloat64(m.PagesTotal.WithLabelValues("transport")); got != 2 {
		t.Errorf("transport failures = %v, want 2", got)
	}
}

func TestDownloadUnwritableFolder(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	f := &fakeFetcher{bodies: map[string][]byte{"u1": []byte("one")}}

	calls := 0
	res := New(f, nil, nil).Download(context.Background(), []string{"u1", "u2"}, filepath.Join(blocker, "chapter_1"), "", func(int, int) {
		calls++
	})

	if len(res.Paths()) != 0 {
		t.Errorf("expected no saved pages, got %v", res.Paths())
	}
	for _, p := range res.Pages {
		if p.Failure != FailureFilesystem {
			t.Errorf("page %d failure = %s, want filesystem", p.Index, p.Failure)
		}
	}
	if calls != 2 {
		t.Errorf("progress calls = %d, want 2", calls)
	}
	if len(f.calls) != 0 {
		t.Errorf("nothing should be fetched without a folder, got %v", f.calls)
	}
}

func TestDownloadStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &fakeFetcher{bodies: map[string][]byte{"u1": []byte("one")}}
	res := New(f, nil, nil).Download(ctx, []string{"u1"}, t.TempDir(), "", nil)

	if len(res.Pages) != 0 || len(f.calls) != 0 {
		t.Errorf("expected no work after cancellation, got %+v", res)
	}
}

func TestFailureKindString(t *testing.T) {
	for k, want := range map[FailureKind]string{
		FailureNone:       "saved",
		FailureTransport:  "transport",
		FailureFilesystem: "filesystem",
		FailureKind(42):   "unknown",
	} {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", k, got, want)
		}
	}
}
