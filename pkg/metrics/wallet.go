package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WalletMetrics records transfer engine outcomes.
type WalletMetrics struct {
	transfers *prometheus.CounterVec
	failures  *prometheus.CounterVec
	amounts   *prometheus.HistogramVec
	duration  *prometheus.HistogramVec
}

// NewWalletMetrics registers the wallet metrics on the provided registerer.
func NewWalletMetrics(reg prometheus.Registerer) *WalletMetrics {
	if reg == nil {
		return &WalletMetrics{}
	}
	transfers := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_transfers_total",
		Help: "Successful wallet transfers by kind.",
	}, []string{"kind"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_transfer_failures_total",
		Help: "Failed wallet transfers by kind and reason.",
	}, []string{"kind", "reason"})
	amounts := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wallet_transfer_amount_tokens",
		Help:    "Token amount moved per successful transfer.",
		Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
	}, []string{"kind"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wallet_transfer_duration_seconds",
		Help:    "Duration of wallet transfer operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	reg.MustRegister(transfers, failures, amounts, duration)
	return &WalletMetrics{
		transfers: transfers,
		failures:  failures,
		amounts:   amounts,
		duration:  duration,
	}
}

// ObserveTransfer records a successful transfer of the given kind.
func (m *WalletMetrics) ObserveTransfer(kind string, amount int64, elapsed time.Duration) {
	if m == nil || m.transfers == nil {
		return
	}
	label := normalizeLabel(kind)
	m.transfers.WithLabelValues(label).Inc()
	m.amounts.WithLabelValues(label).Observe(float64(amount))
	m.duration.WithLabelValues(label).Observe(elapsed.Seconds())
}

// IncFailure increments the failure counter for the kind/reason pair.
func (m *WalletMetrics) IncFailure(kind, reason string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(kind), normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
