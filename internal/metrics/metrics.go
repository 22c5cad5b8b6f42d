package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
	ResultSkipped = "skipped"

	OutcomeHit         = "hit"
	OutcomePlaceholder = "placeholder"
)

// Metrics - побочный канал координатора: ошибки постановки задач не ломают чтение, но видны здесь.
type Metrics struct {
	dispatchTotal   *prometheus.CounterVec
	readsTotal      *prometheus.CounterVec
	storeErrors     *prometheus.CounterVec
	triggersTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		dispatchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatch_total",
				Help:      "Archive job dispatch attempts by kind and result",
			},
			[]string{"kind", "result"},
		),
		readsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "status_reads_total",
				Help:      "Status reads by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		storeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_errors_total",
				Help:      "Status store failures by operation",
			},
			[]string{"operation"},
		),
		triggersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "change_events_total",
				Help:      "Catalog change events by operation and trigger decision",
			},
			[]string{"operation", "trigger"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "code"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.dispatchTotal,
			m.readsTotal,
			m.storeErrors,
			m.triggersTotal,
			m.requestDuration,
		)
	}
	return m
}

func (m *Metrics) Dispatch(kind, result string) {
	m.dispatchTotal.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) Read(operation, outcome string) {
	m.readsTotal.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) StoreError(operation string) {
	m.storeErrors.WithLabelValues(operation).Inc()
}

func (m *Metrics) ChangeEvent(operation string, trigger bool) {
	label := "false"
	if trigger {
		label = "true"
	}
	m.triggersTotal.WithLabelValues(operation, label).Inc()
}

func (m *Metrics) ObserveRequest(method, route, code string, seconds float64) {
	m.requestDuration.WithLabelValues(method, route, code).Observe(seconds)
}

func (m *Metrics) DispatchCounter(kind, result string) prometheus.Counter {
	return m.dispatchTotal.WithLabelValues(kind, result)
}

func (m *Metrics) ReadCounter(operation, outcome string) prometheus.Counter {
	return m.readsTotal.WithLabelValues(operation, outcome)
}

func (m *Metrics) RequestDuration() prometheus.Collector {
	return m.requestDuration
}
