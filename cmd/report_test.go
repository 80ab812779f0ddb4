package cmd

import (
	"bytes"
	"testing"

	"github.com/brogergvhs/mangapdf/internal/pipeline"
	"github.com/brogergvhs/mangapdf/internal/ui"
)

func TestReporterBars(t *testing.T) {
	pm := ui.NewProgressManager(&bytes.Buffer{})
	r := newReporter("one-piece", pm, ui.NopLogger())

	steps := []struct {
		event    pipeline.Event
		wantBars []int
	}{
		{pipeline.Event{Kind: pipeline.ChaptersFound, TotalChapters: 3}, nil},
		{pipeline.Event{Kind: pipeline.Progress, Chapter: 1, TotalChapters: 3, PagesDone: 1, PagesTotal: 2}, []int{1}},
		{pipeline.Event{Kind: pipeline.Progress, Chapter: 1, TotalChapters: 3, PagesDone: 2, PagesTotal: 2}, []int{1}},
		{pipeline.Event{Kind: pipeline.ChapterDelivered, Chapter: 1, TotalChapters: 3, Document: "/out/Chapter_1.pdf"}, nil},
		{pipeline.Event{Kind: pipeline.ChapterSkipped, Chapter: 2, TotalChapters: 3, Reason: pipeline.ReasonNoImages}, nil},
		{pipeline.Event{Kind: pipeline.Progress, Chapter: 3, TotalChapters: 3, PagesDone: 1, PagesTotal: 4}, []int{3}},
		{pipeline.Event{Kind: pipeline.ChapterFailed, Chapter: 3, TotalChapters: 3, Reason: pipeline.ReasonNoUsablePages}, nil},
		{pipeline.Event{Kind: pipeline.SeriesComplete}, nil},
	}

	for i, st := range steps {
		r.handle(st.event)

		if len(r.bars) != len(st.wantBars) {
			t.Fatalf("step %d (%s): %d bars open, want %v", i, st.event, len(r.bars), st.wantBars)
		}
		for _, ch := range st.wantBars {
			if _, ok := r.bars[ch]; !ok {
				t.Errorf("step %d (%s): no bar for chapter %d", i, st.event, ch)
			}
		}
	}

	pm.Close()
}

func TestReporterAfterProgressClosed(t *testing.T) {
	pm := ui.NewProgressManager(&bytes.Buffer{})
	r := newReporter("", pm, ui.NopLogger())

	r.handle(pipeline.Event{Kind: pipeline.Progress, Chapter: 1, TotalChapters: 2, PagesDone: 1, PagesTotal: 3})
	pm.Close()

	// events arriving after the bars are torn down must not reach mpb
	r.handle(pipeline.Event{Kind: pipeline.Progress, Chapter: 2, TotalChapters: 2, PagesDone: 1, PagesTotal: 3})
	r.handle(pipeline.Event{Kind: pipeline.ChapterDelivered, Chapter: 2, TotalChapters: 2, Document: "Chapter_2.pdf"})
	r.handle(pipeline.Event{Kind: pipeline.ChapterFailed, Chapter: 1, TotalChapters: 2, Reason: "interrupted"})

	if len(r.bars) != 0 {
		t.Errorf("bars left open: %v", r.bars)
	}
}
