package pipeline

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brogergvhs/mangapdf/internal/ui"
)

func TestNotifierKeepsOrder(t *testing.T) {
	var got []int
	n := newNotifier(func(e Event) {
		time.Sleep(100 * time.Microsecond)
		got = append(got, e.Chapter)
	}, time.Second, ui.NopLogger())

	for i := 1; i <= 200; i++ {
		n.Emit(Event{Kind: Progress, Chapter: i})
	}
	n.Close()

	if len(got) != 200 {
		t.Fatalf("delivered %d events, want 200", len(got))
	}
	for i, c := range got {
		if c != i+1 {
			t.Fatalf("event %d carries chapter %d", i, c)
		}
	}
}

func TestNotifierEmitDoesNotWaitForSink(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	delivered := 0

	n := newNotifier(func(Event) {
		<-release
		mu.Lock()
		delivered++
		mu.Unlock()
	}, time.Second, ui.NopLogger())

	start := time.Now()
	for i := 0; i < 1000; i++ {
		n.Emit(Event{Kind: Progress})
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("emitting took %s while the sink was blocked", elapsed)
	}

	close(release)
	n.Close()

	mu.Lock()
	defer mu.Unlock()
	if delivered != 1000 {
		t.Errorf("delivered %d events, want 1000", delivered)
	}
}

func TestNotifierCloseGivesUpOnStuckSink(t *testing.T) {
	stuck := make(chan struct{})
	defer close(stuck)

	n := newNotifier(func(Event) { <-stuck }, 20*time.Millisecond, ui.NopLogger())
	n.Emit(Event{Kind: SeriesComplete})

	done := make(chan struct{})
	go func() {
		n.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close blocked on a stuck sink")
	}

	// late events are dropped, not queued
	n.Emit(Event{Kind: SeriesComplete})
}

func TestNotifierDropsPendingAfterTimeout(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32

	n := newNotifier(func(Event) {
		if calls.Add(1) == 1 {
			<-release
		}
	}, 20*time.Millisecond, ui.NopLogger())

	n.Emit(Event{Kind: ChaptersFound})
	n.Emit(Event{Kind: Progress})
	n.Emit(Event{Kind: SeriesComplete})
	n.Close()

	before := calls.Load()
	if before != 1 {
		t.Fatalf("sink calls before release = %d, want 1", before)
	}
	close(release)

	select {
	case <-n.done:
	case <-time.After(time.Second):
		t.Fatal("delivery goroutine did not stop after release")
	}

	if after := calls.Load(); after != before {
		t.Errorf("sink called %d times after Close returned", after-before)
	}
}

func TestNotifierSurvivesPanickingSink(t *testing.T) {
	var got []EventKind
	n := newNotifier(func(e Event) {
		if e.Kind == ChapterFailed {
			panic("boom")
		}
		got = append(got, e.Kind)
	}, time.Second, ui.NopLogger())

	n.Emit(Event{Kind: ChaptersFound})
	n.Emit(Event{Kind: ChapterFailed})
	n.Emit(Event{Kind: SeriesComplete})
	n.Close()

	if len(got) != 2 || got[0] != ChaptersFound || got[1] != SeriesComplete {
		t.Errorf("got %v", got)
	}
}

func TestNotifierNilSink(t *testing.T) {
	n := newNotifier(nil, time.Second, ui.NopLogger())
	n.Emit(Event{Kind: ChaptersFound})
	n.Close()
}
