// Package metrics counts what a run did in Prometheus form. The tool is a
// short-lived CLI, so the counters are exported as a node-exporter textfile
// at the end of a run instead of being scraped.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mangapdf"

// Metrics holds the counters of one process. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	reg *prometheus.Registry

	FetchesTotal  *prometheus.CounterVec
	RetriesTotal  prometheus.Counter
	PagesTotal    *prometheus.CounterVec
	ChaptersTotal *prometheus.CounterVec
	BytesTotal    prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		FetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Fetch calls by final outcome.",
		}, []string{"outcome"}), // ok, failed
		RetriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_retries_total",
			Help:      "Attempts made after the first one.",
		}),
		PagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Page images by outcome.",
		}, []string{"outcome"}), // saved, transport, filesystem
		ChaptersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chapters_total",
			Help:      "Chapters by outcome.",
		}, []string{"outcome"}), // delivered, skipped, failed
		BytesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloaded_bytes_total",
			Help:      "Image bytes written to disk.",
		}),
	}

	m.reg.MustRegister(m.FetchesTotal, m.RetriesTotal, m.PagesTotal, m.ChaptersTotal, m.BytesTotal)

	return m
}

func (m *Metrics) IncFetch(outcome string) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncRetry() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

func (m *Metrics) IncPage(outcome string) {
	if m == nil {
		return
	}
	m.PagesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncChapter(outcome string) {
	if m == nil {
		return
	}
	m.ChaptersTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AddBytes(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.BytesTotal.Add(float64(n))
}

// Registry exposes the gatherer, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// WriteTextfile dumps all counters in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}

	return prometheus.WriteToTextfile(path, m.reg)
}
