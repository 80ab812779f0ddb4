package ui

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// ProgressManager owns one mpb container shared by every chapter bar of a
// download command.
type ProgressManager struct {
	p *mpb.Progress

	mu      sync.Mutex
	handles []*ProgressHandle
	closed  bool
}

func NewProgressManager(out io.Writer) *ProgressManager {
	p := mpb.New(
		mpb.WithWidth(52),
		mpb.WithOutput(out),
		mpb.WithRefreshRate(120*time.Millisecond),
	)

	return &ProgressManager{p: p}
}

// Close aborts bars that never finished, e.g. after an interrupt, and waits
// for the last render. Handles registered afterwards are inert.
func (pm *ProgressManager) Close() {
	pm.mu.Lock()
	pm.closed = true
	for _, h := range pm.handles {
		h.Fail("interrupted")
	}
	pm.mu.Unlock()

	pm.p.Wait()
}

func (pm *ProgressManager) Register(prefix string) *ProgressHandle {
	h := &ProgressHandle{prefix: prefix}

	pm.mu.Lock()
	defer pm.mu.Unlock()

	// mpb refuses new bars once Wait has been called
	if pm.closed {
		h.final.Store(true)
		return h
	}

	h.initBar(pm.p)
	pm.handles = append(pm.handles, h)

	return h
}

// ProgressHandle is one chapter's bar. After MarkDone or Fail further calls
// are ignored.
type ProgressHandle struct {
	prefix string
	bar    *mpb.Bar

	total  atomic.Int64
	start  time.Time
	status atomic.Value // string

	elapsed atomic.Int64
	final   atomic.Bool
}

func (h *ProgressHandle) initBar(p *mpb.Progress) {
	h.start = time.Now()
	h.status.Store("")

	h.bar = p.New(
		0,
		mpb.BarStyle().Rbound("]"),

		mpb.PrependDecorators(
			decor.Name(h.prefix+"  "),
		),

		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncWidth),
			decor.CountersNoUnit(" | %d/%d pages", decor.WCSyncWidth),

			decor.Any(func(_ decor.Statistics) string {
				if h.final.Load() {
					return fmt.Sprintf(" | %ds", h.elapsed.Load())
				}

				return fmt.Sprintf(" | %ds", int(time.Since(h.start).Seconds()))
			}),

			decor.Any(func(_ decor.Statistics) string {
				if s, _ := h.status.Load().(string); s != "" {
					return " | " + s
				}
				return ""
			}),
		),
	)
}

func (h *ProgressHandle) Update(done, total int) {
	if h.final.Load() {
		return
	}

	if total > 0 && int64(total) != h.total.Load() {
		h.total.Store(int64(total))
		h.bar.SetTotal(int64(total), false)
	}

	h.bar.SetCurrent(int64(done))
}

// MarkDone completes the bar with a short status such as the document name.
func (h *ProgressHandle) MarkDone(status string) {
	if !h.finish(status) {
		return
	}

	total := h.total.Load()
	h.bar.SetCurrent(total)
	h.bar.SetTotal(total, true)
}

// Fail stops the bar where it is and shows reason next to it.
func (h *ProgressHandle) Fail(reason string) {
	if !h.finish(reason) {
		return
	}

	h.bar.Abort(false)
}

func (h *ProgressHandle) finish(status string) bool {
	if h.final.Swap(true) {
		return false
	}

	h.status.Store(status)
	h.elapsed.Store(int64(time.Since(h.start).Seconds()))

	return true
}
