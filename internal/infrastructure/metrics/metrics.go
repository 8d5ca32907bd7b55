// Package metrics manages Prometheus instrumentation for the governance
// core.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// GovernanceMetrics instruments admission decisions, billing event handling
// and reconciliation sweeps.
type GovernanceMetrics struct {
	admissions    *prometheus.CounterVec
	billingEvents *prometheus.CounterVec
	reconciled    prometheus.Counter
}

var (
	instance *GovernanceMetrics
	once     sync.Once
)

// Get returns the process-wide metrics instance, registering collectors on
// first use.
func Get() *GovernanceMetrics {
	once.Do(func() {
		instance = newGovernanceMetrics(prometheus.DefaultRegisterer)
	})
	return instance
}

func newGovernanceMetrics(reg prometheus.Registerer) *GovernanceMetrics {
	m := &GovernanceMetrics{
		admissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "girder",
				Name:      "admissions_total",
				Help:      "Admission decisions by action and outcome.",
			},
			[]string{"action", "outcome"},
		),
		billingEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "girder",
				Name:      "billing_events_total",
				Help:      "Billing webhook events by type and result.",
			},
			[]string{"type", "result"},
		),
		reconciled: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "girder",
				Name:      "reconciled_subscriptions_total",
				Help:      "Subscription records touched by reconciliation sweeps.",
			},
		),
	}

	reg.MustRegister(m.admissions, m.billingEvents, m.reconciled)
	return m
}

// RecordAdmission counts one admission decision.
func (m *GovernanceMetrics) RecordAdmission(action, outcome string) {
	m.admissions.WithLabelValues(action, outcome).Inc()
}

// RecordBillingEvent counts one processed webhook event.
func (m *GovernanceMetrics) RecordBillingEvent(eventType, result string) {
	m.billingEvents.WithLabelValues(eventType, result).Inc()
}

// RecordReconciled counts records touched by a reconciliation pass.
func (m *GovernanceMetrics) RecordReconciled(count int) {
	if count <= 0 {
		return
	}
	m.reconciled.Add(float64(count))
}
