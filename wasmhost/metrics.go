package wasmhost

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "callgen"

	contractLabelName = "contract"
	entryLabelName    = "entry_point"
	outcomeLabelName  = "outcome"
)

const (
	outcomeOK      = "ok"
	outcomeAborted = "aborted"
)

var (
	// durationBuckets are call latencies in milliseconds.
	durationBuckets = prometheus.ExponentialBuckets(0.25, 2, 14)

	CallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "host",
			Name:      "calls_total",
			Help:      "number of entry point calls by outcome",
		}, []string{contractLabelName, entryLabelName, outcomeLabelName})

	CallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "host",
			Name:      "call_duration_ms",
			Help:      "entry point call latency",
			Buckets:   durationBuckets,
		}, []string{contractLabelName, entryLabelName})

	StateBytes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "host",
			Name:      "state_bytes",
			Help:      "size of the last committed receiver",
		}, []string{contractLabelName})

	registerOnce sync.Once
)

// RegisterMetrics registers the host metrics with r once.
func RegisterMetrics(r prometheus.Registerer) {
	registerOnce.Do(func() {
		r.MustRegister(CallsTotal)
		r.MustRegister(CallDuration)
		r.MustRegister(StateBytes)
	})
}
