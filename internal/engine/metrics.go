package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Traffic: решения по точкам расширения и результату (ALLOW/DENY)
	Decisions *prometheus.CounterVec

	// Toggles: попытки переключения по исходу (success, forbidden, bad_nonce, invalid_mode, store_error)
	Toggles *prometheus.CounterVec

	// Mode: текущее состояние (1 - on, 0 - off) по последнему чтению
	Mode prometheus.Gauge

	// Errors: чтение настройки не удалось, применен режим по умолчанию
	StoreErrors prometheus.Counter

	// Saturation: состояние Circuit Breaker хранилища (0 - ок, 1 - выбило)
	CircuitBreakerState *prometheus.GaugeVec

	// Audit: заполненность буфера (backpressure)
	AuditBufferFill prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - Если рег не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		Decisions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "airmde_decisions_total",
			Help: "Total number of gate decisions by hook and effect.",
		}, []string{"hook", "effect"}),

		Toggles: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "airmde_toggles_total",
			Help: "Total number of toggle attempts by result.",
		}, []string{"result"}),

		Mode: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "airmde_mode_enabled",
			Help: "Current airplane mode as last read (1=on, 0=off).",
		}),

		StoreErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "airmde_store_errors_total",
			Help: "Setting reads that failed and fell back to the default mode.",
		}),

		CircuitBreakerState: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "airmde_circuit_breaker_state",
			Help: "Current state of the settings store circuit breaker (0=closed, 1=open).",
		}, []string{"store"}),

		AuditBufferFill: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "airmde_audit_buffer_utilization",
			Help: "Current number of events in audit buffer.",
		}),
	}
}

// BreakerObserver адаптирует CircuitBreakerState к колбэку store.BreakerSettings.
func (m *Metrics) BreakerObserver() func(name string, open bool) {
	return func(name string, open bool) {
		v := 0.0
		if open {
			v = 1
		}
		m.CircuitBreakerState.WithLabelValues(name).Set(v)
	}
}
