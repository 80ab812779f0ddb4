// Package pipeline drives one series from its first-chapter URL to a set of
// finished chapter documents, reporting each step as an Event.
//
// A run walks these states:
//
//	Idle -> ResolvingSite -> DiscoveringChapters -> [per chapter:
//	ExtractingImages -> DownloadingPages -> Assembling -> Delivering] -> Done
//
// Chapters are handled strictly one at a time. A failing chapter is reported
// and the run moves on; only an unknown host, an empty chapter list or a
// cancelled context end it early.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brogergvhs/mangapdf/internal/chapters"
	"github.com/brogergvhs/mangapdf/internal/document"
	"github.com/brogergvhs/mangapdf/internal/downloader"
	"github.com/brogergvhs/mangapdf/internal/fetch"
	"github.com/brogergvhs/mangapdf/internal/metrics"
	"github.com/brogergvhs/mangapdf/internal/providers"
	"github.com/brogergvhs/mangapdf/internal/scraper"
	"github.com/brogergvhs/mangapdf/internal/ui"
)

var ErrUnsupportedSite = errors.New("unsupported site")

type State int

const (
	Idle State = iota
	ResolvingSite
	DiscoveringChapters
	ExtractingImages
	DownloadingPages
	Assembling
	Delivering
	Done
)

var stateNames = [...]string{
	"idle", "resolving site", "discovering chapters", "extracting images",
	"downloading pages", "assembling", "delivering", "done",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Options wires a Pipeline. Registry, Fetcher and Assembler are required.
type Options struct {
	Registry  *providers.Registry
	Fetcher   fetch.Fetcher
	Assembler document.Assembler
	// Deliverer defaults to LocalDelivery that removes page folders.
	Deliverer Deliverer

	// BaseDir receives chapter_<n> folders and the documents.
	BaseDir string

	// Range ("3-7") and List ("1,4,9") narrow the chapters processed.
	// Both empty means every chapter.
	Range string
	List  string

	Sink         Sink
	DrainTimeout time.Duration

	Metrics *metrics.Metrics
	Log     *ui.Logger
}

// Summary totals one run.
type Summary struct {
	Series    string
	Site      string
	Found     int
	Selected  int
	Delivered int
	Skipped   int
	Failed    int
	Pages     int
	Bytes     int64
	Documents []string
	Elapsed   time.Duration
}

type Pipeline struct {
	opts       Options
	downloader *downloader.Downloader
	deliverer  Deliverer
	log        *ui.Logger
}

func New(opts Options) *Pipeline {
	log := opts.Log
	if log == nil {
		log = ui.NopLogger()
	}
	if opts.DrainTimeout <= 0 {
		opts.DrainTimeout = DefaultDrainTimeout
	}

	deliverer := opts.Deliverer
	if deliverer == nil {
		deliverer = LocalDelivery{Log: log}
	}

	return &Pipeline{
		opts:       opts,
		downloader: downloader.New(opts.Fetcher, opts.Metrics, log),
		deliverer:  deliverer,
		log:        log,
	}
}

// run carries the per-invocation state so a Pipeline can serve several
// series concurrently.
type run struct {
	*Pipeline
	series  string
	log     *ui.Logger
	notify  *notifier
	state   State
	summary Summary
}

func (r *run) enter(s State) {
	r.log.Debugf("%s -> %s", r.state, s)
	r.state = s
}

func (r *run) emit(e Event) {
	e.Series = r.series
	r.notify.Emit(e)
}

// Run processes one series. Per-chapter problems become events; the returned
// error is non-nil only when the run could not start or was cancelled.
func (p *Pipeline) Run(ctx context.Context, seriesURL string) (Summary, error) {
	start := time.Now()

	r := &run{
		Pipeline: p,
		series:   seriesURL,
		log:      p.log.With("series", seriesURL),
		notify:   newNotifier(p.opts.Sink, p.opts.DrainTimeout, p.log),
		summary:  Summary{Series: seriesURL},
	}
	defer r.notify.Close()

	err := r.process(ctx)
	r.enter(Done)
	r.summary.Elapsed = time.Since(start)

	return r.summary, err
}

func (r *run) process(ctx context.Context) error {
	r.enter(ResolvingSite)
	site, ok := r.opts.Registry.Resolve(r.series)
	if !ok {
		r.log.Errorf("no adapter for %s", r.series)
		r.emit(Event{Kind: UnsupportedSite})
		return fmt.Errorf("%w: %s", ErrUnsupportedSite, r.series)
	}
	r.summary.Site = site.Name
	r.log.Debugf("using %s adapter", site.Name)

	r.enter(DiscoveringChapters)
	sc := scraper.New(r.opts.Fetcher, site.Adapter, r.log)

	urls, err := sc.GetChapters(ctx, r.series)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		r.log.Errorf("chapter discovery failed: %v", err)
		r.emit(Event{Kind: NoChaptersFound, Reason: err.Error()})
		return err
	}

	all := chapters.Jobs(urls)
	r.summary.Found = len(all)
	r.emit(Event{Kind: ChaptersFound, TotalChapters: len(all)})

	selected := chapters.Filter(all, r.opts.Range, r.opts.List)
	if len(selected) == 0 {
		r.log.Warnf("chapter selection matches none of the %d chapters", len(all))
	}
	r.summary.Selected = len(selected)

	for _, job := range selected {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.chapter(ctx, sc, job)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	r.emit(Event{Kind: SeriesComplete})

	return nil
}

// chapter runs one chapter to a delivered document or a skip/fail event.
// A cancelled context ends it silently; process reports the cancellation.
func (r *run) chapter(ctx context.Context, sc *scraper.Scraper, job chapters.Job) {
	log := r.log.With("chapter", job.Index)

	r.enter(ExtractingImages)
	images, err := sc.GetImages(ctx, job.URL)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		log.Warnf("skipping: %v", err)
		r.skip(job, ReasonNoImages)
		return
	}
	log.Debugf("%d images", len(images))

	r.enter(DownloadingPages)
	folder := job.Folder(r.opts.BaseDir)
	res := r.downloader.Download(ctx, images, folder, job.URL, func(done, total int) {
		r.emit(Event{
			Kind:          Progress,
			Chapter:       job.Index,
			TotalChapters: job.Total,
			PagesDone:     done,
			PagesTotal:    total,
		})
	})
	r.summary.Pages += res.Saved()
	r.summary.Bytes += res.Bytes()
	if ctx.Err() != nil {
		log.Debugf("interrupted after %d/%d pages", len(res.Pages), len(images))
		return
	}

	r.enter(Assembling)
	doc, err := r.opts.Assembler.Assemble(ctx, res.Paths(), job.DocumentPath(r.opts.BaseDir, r.opts.Assembler.Ext()))
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		log.Errorf("assembly failed: %v", err)
		reason := ReasonNoUsablePages
		if !errors.Is(err, document.ErrNoUsablePages) {
			reason = "assembly failed: " + err.Error()
		}
		r.fail(job, reason)
		return
	}

	r.enter(Delivering)
	if err := r.deliverer.Deliver(ctx, Delivery{Job: job, Document: doc, Folder: folder}); err != nil {
		log.Errorf("delivery failed: %v", err)
		r.fail(job, "delivery failed: "+err.Error())
		return
	}

	r.summary.Delivered++
	r.summary.Documents = append(r.summary.Documents, doc.Path)
	r.opts.Metrics.IncChapter("delivered")
	log.Infof("saved %s (%d pages)", doc.Path, doc.Pages)

	r.emit(Event{
		Kind:          ChapterDelivered,
		Chapter:       job.Index,
		TotalChapters: job.Total,
		PagesTotal:    doc.Pages,
		Document:      doc.Path,
	})
}

func (r *run) skip(job chapters.Job, reason string) {
	r.summary.Skipped++
	r.opts.Metrics.IncChapter("skipped")
	r.emit(Event{Kind: ChapterSkipped, Chapter: job.Index, TotalChapters: job.Total, Reason: reason})
}

func (r *run) fail(job chapters.Job, reason string) {
	r.summary.Failed++
	r.opts.Metrics.IncChapter("failed")
	r.emit(Event{Kind: ChapterFailed, Chapter: job.Index, TotalChapters: job.Total, Reason: reason})
}
