package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/brogergvhs/mangapdf/internal/pipeline"
	"github.com/brogergvhs/mangapdf/internal/ui"
)

// reporter turns one series' pipeline events into progress bars and log
// lines. Its handle method is the pipeline's Sink, so it runs on a single
// goroutine per series.
type reporter struct {
	label string
	pm    *ui.ProgressManager
	log   *ui.Logger
	bars  map[int]*ui.ProgressHandle
}

func newReporter(label string, pm *ui.ProgressManager, log *ui.Logger) *reporter {
	return &reporter{
		label: label,
		pm:    pm,
		log:   log,
		bars:  map[int]*ui.ProgressHandle{},
	}
}

func (r *reporter) handle(e pipeline.Event) {
	switch e.Kind {
	case pipeline.UnsupportedSite:
		r.log.Errorf("%s is not a supported site, see `mangapdf sites`", e.Series)

	case pipeline.NoChaptersFound:
		r.log.Errorf("no chapters found at %s: %s", e.Series, e.Reason)

	case pipeline.ChaptersFound:
		r.log.Infof("%sfound %d chapters", r.prefix(), e.TotalChapters)

	case pipeline.Progress:
		r.bar(e).Update(e.PagesDone, e.PagesTotal)

	case pipeline.ChapterDelivered:
		if h, ok := r.bars[e.Chapter]; ok {
			h.MarkDone(filepath.Base(e.Document))
			delete(r.bars, e.Chapter)
			return
		}
		r.log.Infof("%schapter %d/%d saved to %s", r.prefix(), e.Chapter, e.TotalChapters, e.Document)

	case pipeline.ChapterSkipped, pipeline.ChapterFailed:
		verb := "skipped"
		if e.Kind == pipeline.ChapterFailed {
			verb = "failed"
		}

		if h, ok := r.bars[e.Chapter]; ok {
			h.Fail(verb + ": " + e.Reason)
			delete(r.bars, e.Chapter)
			return
		}
		r.log.Warnf("%schapter %d/%d %s: %s", r.prefix(), e.Chapter, e.TotalChapters, verb, e.Reason)

	case pipeline.SeriesComplete:
		r.log.Debugf("%sseries complete", r.prefix())
	}
}

func (r *reporter) bar(e pipeline.Event) *ui.ProgressHandle {
	if h, ok := r.bars[e.Chapter]; ok {
		return h
	}

	h := r.pm.Register(fmt.Sprintf("%sCh.%d/%d", r.prefix(), e.Chapter, e.TotalChapters))
	r.bars[e.Chapter] = h

	return h
}

func (r *reporter) prefix() string {
	if r.label == "" {
		return ""
	}
	return r.label + " "
}
