package pipeline

import (
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records per-stage timings and outcomes of pipeline runs. A nil
// *Metrics discards everything.
type Metrics struct {
	registry *prometheus.Registry

	// StageDuration records how long each stage took, failed or not.
	StageDuration *prometheus.HistogramVec

	// Failures counts failed runs by stage and kind.
	Failures *prometheus.CounterVec

	// Broadcasts counts transactions accepted by the node.
	Broadcasts prometheus.Counter

	// FeesPaid sums the fees of broadcast transactions, in satoshis.
	FeesPaid prometheus.Counter

	// BlocksMined counts blocks generated by confirmation and bootstrap.
	BlocksMined prometheus.Counter
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "txchain",
				Name:      "stage_duration_seconds",
				Help:      "Duration of pipeline stages.",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"stage"},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "txchain",
				Name:      "failures_total",
				Help:      "Failed pipeline runs by stage and kind.",
			},
			[]string{"stage", "kind"},
		),
		Broadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "txchain",
			Name:      "broadcasts_total",
			Help:      "Transactions accepted by the node.",
		}),
		FeesPaid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "txchain",
			Name:      "fees_paid_satoshis_total",
			Help:      "Fees of broadcast transactions in satoshis.",
		}),
		BlocksMined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "txchain",
			Name:      "blocks_mined_total",
			Help:      "Blocks generated on request.",
		}),
	}
	m.registry.MustRegister(m.StageDuration, m.Failures, m.Broadcasts, m.FeesPaid, m.BlocksMined)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// WriteFile writes the current values in the Prometheus text format, for the
// node exporter's textfile collector.
func (m *Metrics) WriteFile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) observeStage(s State, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(s.String()).Observe(d.Seconds())
}

func (m *Metrics) failure(s State, k Kind) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(s.String(), k.String()).Inc()
}

func (m *Metrics) broadcast(fee btcutil.Amount) {
	if m == nil {
		return
	}
	m.Broadcasts.Inc()
	m.FeesPaid.Add(float64(fee))
}

func (m *Metrics) mined(n int) {
	if m == nil {
		return
	}
	m.BlocksMined.Add(float64(n))
}
