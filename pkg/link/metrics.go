package link

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for an Engine.
type Metrics struct {
	frames        *prometheus.CounterVec
	frameErrors   *prometheus.CounterVec
	writes        *prometheus.CounterVec
	writeErrors   *prometheus.CounterVec
	queries       *prometheus.CounterVec
	queryDuration prometheus.Histogram
}

// Query results recorded in queries_total.
const (
	resultOK         = "ok"
	resultTimeout    = "timeout"
	resultRejected   = "rejected"
	resultWriteError = "write_error"
	resultCanceled   = "canceled"
)

// NewMetrics creates the link collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		frames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "roarm",
				Subsystem: "link",
				Name:      "frames_total",
				Help:      "Decoded inbound frames.",
			},
			[]string{"kind"},
		),
		frameErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "roarm",
				Subsystem: "link",
				Name:      "frame_errors_total",
				Help:      "Inbound data dropped by the reassembler or decoder.",
			},
			[]string{"reason"},
		),
		writes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "roarm",
				Subsystem: "link",
				Name:      "writes_total",
				Help:      "Outbound frames written.",
			},
			[]string{"command"},
		),
		writeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "roarm",
				Subsystem: "link",
				Name:      "write_errors_total",
				Help:      "Outbound frames that failed to write.",
			},
			[]string{"command"},
		),
		queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "roarm",
				Subsystem: "link",
				Name:      "queries_total",
				Help:      "Status queries by result.",
			},
			[]string{"result"},
		),
		queryDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "roarm",
				Subsystem: "link",
				Name:      "query_duration_seconds",
				Help:      "Time from status query to status report.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
		),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{
			m.frames, m.frameErrors, m.writes, m.writeErrors, m.queries, m.queryDuration,
		} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func mustNewMetrics() *Metrics {
	m, err := NewMetrics(nil)
	if err != nil {
		panic(err)
	}
	return m
}
