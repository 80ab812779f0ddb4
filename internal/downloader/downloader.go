package downloader

import (
	"context"
	"os"
	"path/filepath"

	"github.com/brogergvhs/mangapdf/internal/chapters"
	"github.com/brogergvhs/mangapdf/internal/fetch"
	"github.com/brogergvhs/mangapdf/internal/metrics"
	"github.com/brogergvhs/mangapdf/internal/ui"
)

// FailureKind classifies why a page did not make it to disk.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureTransport
	FailureFilesystem
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "saved"
	case FailureTransport:
		return "transport"
	case FailureFilesystem:
		return "filesystem"
	default:
		return "unknown"
	}
}

// PageResult is the outcome of one image. Index is 1-based page order.
type PageResult struct {
	Index   int
	URL     string
	Path    string
	Bytes   int64
	Failure FailureKind
	Err     error
}

func (p PageResult) OK() bool {
	return p.Failure == FailureNone
}

// Result lists every attempted page in source order, failed ones included.
type Result struct {
	Pages []PageResult
}

// Paths returns the saved files in page order.
func (r Result) Paths() []string {
	out := make([]string, 0, len(r.Pages))
	for _, p := range r.Pages {
		if p.OK() {
			out = append(out, p.Path)
		}
	}

	return out
}

func (r Result) Saved() int {
	n := 0
	for _, p := range r.Pages {
		if p.OK() {
			n++
		}
	}

	return n
}

func (r Result) Bytes() int64 {
	var n int64
	for _, p := range r.Pages {
		n += p.Bytes
	}

	return n
}

// ProgressFunc is called after every page attempt with (done, total).
type ProgressFunc func(done, total int)

// Downloader fetches the pages of one chapter strictly one after another.
// Retrying is the fetcher's job; a page that still fails is skipped.
type Downloader struct {
	fetcher fetch.Fetcher
	metrics *metrics.Metrics
	log     *ui.Logger
}

func New(f fetch.Fetcher, m *metrics.Metrics, log *ui.Logger) *Downloader {
	if log == nil {
		log = ui.NopLogger()
	}

	return &Downloader{fetcher: f, metrics: m, log: log}
}

// Download saves urls into folder as 001.jpg, 002.jpg, ... in list order.
// referer is sent with every image request.
func (d *Downloader) Download(
	ctx context.Context,
	urls []string,
	folder string,
	referer string,
	onProgress ProgressFunc,
) Result {
	total := len(urls)
	res := Result{Pages: make([]PageResult, 0, total)}

	if total > 999 {
		d.log.Warnf("%d pages in %s: page names past 999 are wider than %d digits", total, folder, chapters.PageNameWidth)
	}

	mkErr := os.MkdirAll(folder, 0755)
	if mkErr != nil {
		d.log.Errorf("cannot create %s: %v", folder, mkErr)
	}

	for i, u := range urls {
		if ctx.Err() != nil {
			break
		}

		page := PageResult{
			Index: i + 1,
			URL:   u,
			Path:  filepath.Join(folder, chapters.PageName(i+1)),
		}

		if mkErr != nil {
			page.Failure, page.Err = FailureFilesystem, mkErr
		} else {
			d.fetchPage(ctx, &page, referer)
		}

		d.metrics.IncPage(page.Failure.String())
		d.metrics.AddBytes(page.Bytes)
		res.Pages = append(res.Pages, page)

		if onProgress != nil {
			onProgress(i+1, total)
		}
	}

	return res
}

func (d *Downloader) fetchPage(ctx context.Context, page *PageResult, referer string) {
	data, err := d.fetcher.Fetch(ctx, page.URL,
		fetch.WithAccept(fetch.AcceptImage),
		fetch.WithReferer(referer),
	)
	if err != nil {
		page.Failure, page.Err = FailureTransport, err
		d.log.Warnf("page %d skipped (%s): %v", page.Index, page.Failure, err)
		return
	}

	if err := os.WriteFile(page.Path, data, 0644); err != nil {
		page.Failure, page.Err = FailureFilesystem, err
		d.log.Warnf("page %d skipped (%s): %v", page.Index, page.Failure, err)
		return
	}

	page.Bytes = int64(len(data))
	d.log.Debugf("page %d saved to %s (%d bytes)", page.Index, page.Path, page.Bytes)
}
