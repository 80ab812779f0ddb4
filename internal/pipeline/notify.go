package pipeline

import (
	"sync"
	"time"

	"github.com/brogergvhs/mangapdf/internal/ui"
)

// Sink consumes events. It is called from a single goroutine, in emit order.
type Sink func(Event)

// DefaultDrainTimeout bounds how long a finished run waits for a slow sink.
const DefaultDrainTimeout = 5 * time.Second

// notifier decouples the pipeline from its consumer: Emit only appends to an
// unbounded queue, and a dedicated goroutine feeds the sink in order.
type notifier struct {
	mu        sync.Mutex
	cond      *sync.Cond
	queue     []Event
	closed    bool
	abandoned bool
	done      chan struct{}

	sink  Sink
	drain time.Duration
	log   *ui.Logger
}

func newNotifier(sink Sink, drain time.Duration, log *ui.Logger) *notifier {
	n := &notifier{
		done:  make(chan struct{}),
		sink:  sink,
		drain: drain,
		log:   log,
	}
	n.cond = sync.NewCond(&n.mu)

	go n.loop()

	return n
}

// Emit never blocks on the sink.
func (n *notifier) Emit(e Event) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}

	n.queue = append(n.queue, e)
	n.cond.Signal()
}

// Close stops accepting events and waits, up to the drain timeout, for the
// queued ones to reach the sink. Events still pending after the timeout are
// dropped; the sink is not called again once Close has returned.
func (n *notifier) Close() {
	n.mu.Lock()
	n.closed = true
	n.cond.Signal()
	n.mu.Unlock()

	select {
	case <-n.done:
	case <-time.After(n.drain):
		n.mu.Lock()
		n.abandoned = true
		n.queue = nil
		n.mu.Unlock()

		n.log.Warnf("event consumer still busy after %s, dropping pending events", n.drain)
	}
}

func (n *notifier) loop() {
	defer close(n.done)

	for {
		n.mu.Lock()
		for len(n.queue) == 0 && !n.closed {
			n.cond.Wait()
		}
		if len(n.queue) == 0 {
			n.mu.Unlock()
			return
		}

		batch := n.queue
		n.queue = nil
		n.mu.Unlock()

		for _, e := range batch {
			if n.isAbandoned() {
				return
			}
			n.deliver(e)
		}
	}
}

func (n *notifier) isAbandoned() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.abandoned
}

func (n *notifier) deliver(e Event) {
	if n.sink == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			n.log.Errorf("event consumer panicked on %s: %v", e, r)
		}
	}()

	n.sink(e)
}
