// Package metrics exposes Prometheus collectors for the conversation
// orchestrator.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConversationMetrics counts turns, guard terminations, and handler
// failures. Nil receivers are no-ops so metrics stay optional in tests.
type ConversationMetrics struct {
	turnsTotal        *prometheus.CounterVec
	terminationsTotal *prometheus.CounterVec
	handlerErrors     *prometheus.CounterVec
	turnDuration      *prometheus.HistogramVec
}

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appointment_agent",
			Subsystem: "orchestrator",
			Name:      "turns_total",
			Help:      "Completed conversation turns by classified intent",
		}, []string{"intent"}),
		terminationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appointment_agent",
			Subsystem: "orchestrator",
			Name:      "guard_terminations_total",
			Help:      "Turns terminated by a safety guard before dispatch",
		}, []string{"reason"}),
		handlerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appointment_agent",
			Subsystem: "orchestrator",
			Name:      "handler_errors_total",
			Help:      "Handler failures recovered into apology replies",
		}, []string{"agent"}),
		turnDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "appointment_agent",
			Subsystem: "orchestrator",
			Name:      "turn_duration_seconds",
			Help:      "Wall time of one classify-dispatch-finalize pass",
			Buckets:   prometheus.DefBuckets,
		}, []string{"agent"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.terminationsTotal, m.handlerErrors, m.turnDuration)
	return m
}

func (m *ConversationMetrics) ObserveTurn(intent, agent string, seconds float64) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(intent).Inc()
	m.turnDuration.WithLabelValues(agent).Observe(seconds)
}

func (m *ConversationMetrics) ObserveTermination(reason string) {
	if m == nil {
		return
	}
	m.terminationsTotal.WithLabelValues(reason).Inc()
}

func (m *ConversationMetrics) ObserveHandlerError(agent string) {
	if m == nil {
		return
	}
	m.handlerErrors.WithLabelValues(agent).Inc()
}
