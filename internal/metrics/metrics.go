package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RegistrationsCommitted prometheus.Counter
	RegistrationsFailed    *prometheus.CounterVec
	RegistrationsReplayed  prometheus.Counter
	DebitRetries           prometheus.Counter
	SettlementDuration     prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RegistrationsCommitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "registration_settlements_committed_total",
			Help: "Total number of committed registration settlements",
		}),
		RegistrationsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registration_settlements_failed_total",
			Help: "Total number of failed registration settlements by reason",
		}, []string{"reason"}),
		RegistrationsReplayed: factory.NewCounter(prometheus.CounterOpts{
			Name: "registration_settlements_replayed_total",
			Help: "Total number of idempotent receipt replays for retried requests",
		}),
		DebitRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "registration_debit_retries_total",
			Help: "Total number of wallet debit retries after optimistic lock conflicts",
		}),
		SettlementDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "registration_settlement_duration_seconds",
			Help:    "Duration of the debit-and-enroll commit phase",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) ObserveCommit(seconds float64) {
	m.RegistrationsCommitted.Inc()
	m.SettlementDuration.Observe(seconds)
}

func (m *Metrics) ObserveFailure(reason string) {
	m.RegistrationsFailed.WithLabelValues(reason).Inc()
}
