package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "receipt_bridge"

// PrintMetrics records print dispatch and discovery activity.
type PrintMetrics struct {
	jobs       *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	bytes      *prometheus.CounterVec
	discovered *prometheus.GaugeVec
}

// NewPrintMetrics registers the collectors on reg. A nil reg yields a no-op recorder.
func NewPrintMetrics(reg prometheus.Registerer) *PrintMetrics {
	if reg == nil {
		return &PrintMetrics{}
	}
	jobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "print_jobs_total",
		Help:      "Print jobs dispatched, by transport, job kind and result.",
	}, []string{"transport", "kind", "result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "print_duration_seconds",
		Help:      "Time from dispatch to transport completion.",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"transport", "kind"})
	bytes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "print_bytes_total",
		Help:      "Bytes handed to printers.",
	}, []string{"transport"})
	discovered := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "discovery_printers",
		Help:      "Printers found by the last scan of each scanner.",
	}, []string{"scanner"})
	reg.MustRegister(jobs, duration, bytes, discovered)
	return &PrintMetrics{
		jobs:       jobs,
		duration:   duration,
		bytes:      bytes,
		discovered: discovered,
	}
}

// ObservePrint records one finished job. Bytes are counted only on success.
func (m *PrintMetrics) ObservePrint(transport, kind string, success bool, bytes int, elapsed time.Duration) {
	if m == nil || m.jobs == nil {
		return
	}
	transport = normalizeLabel(transport)
	kind = normalizeLabel(kind)

	result := "success"
	if !success {
		result = "failure"
	}
	m.jobs.WithLabelValues(transport, kind, result).Inc()
	m.duration.WithLabelValues(transport, kind).Observe(elapsed.Seconds())
	if success {
		m.bytes.WithLabelValues(transport).Add(float64(bytes))
	}
}

// ObserveDiscovery implements discovery.ScanObserver.
func (m *PrintMetrics) ObserveDiscovery(scanner string, found int) {
	if m == nil || m.discovered == nil {
		return
	}
	m.discovered.WithLabelValues(normalizeLabel(scanner)).Set(float64(found))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
