package ui

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/brogergvhs/mangapdf/internal/util"
)

// Stats accumulates totals across series processed concurrently.
type Stats struct {
	Series    atomic.Int64
	Delivered atomic.Int64
	Skipped   atomic.Int64
	Failed    atomic.Int64
	Pages     atomic.Int64
	Bytes     atomic.Int64
}

// Print writes the end-of-run summary block.
func (s *Stats) Print(w io.Writer, elapsed time.Duration) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Download Summary:")
	fmt.Fprintf(w, "Series:    %d\n", s.Series.Load())
	fmt.Fprintf(w, "Chapters:  %d delivered, %d skipped, %d failed\n", s.Delivered.Load(), s.Skipped.Load(), s.Failed.Load())
	fmt.Fprintf(w, "Pages:     %d\n", s.Pages.Load())
	fmt.Fprintf(w, "Data:      %s (%s)\n", util.Human(s.Bytes.Load()), util.HumanRate(s.Bytes.Load(), elapsed))
	fmt.Fprintf(w, "Time:      %s\n", elapsed.Round(time.Second))
}
