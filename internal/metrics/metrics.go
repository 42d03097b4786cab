// Package metrics defines Prometheus metrics for the auth service.
//
// All metrics are registered with the default Prometheus registry and served
// by promhttp on /metrics. Names use the learnflow_ prefix and counters end
// in _total.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values shared by the counters below.
const (
	OutcomeSuccess       = "success"
	OutcomeFailure       = "failure"
	OutcomeAuthenticated = "authenticated"
	OutcomeAnonymous     = "anonymous"
	OutcomeInvalid       = "invalid"
	OutcomeInvalidCode   = "invalid_code"
	OutcomeUnauthorized  = "unauthorized"
	OutcomeError         = "error"
)

var (
	// AuthAttemptsTotal counts credential operations (sign_up, sign_in,
	// sign_out, sync) by outcome.
	AuthAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnflow_auth_attempts_total",
			Help: "Total credential operations by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	// SessionResolutionsTotal counts request session resolutions.
	SessionResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnflow_session_resolutions_total",
			Help: "Total session resolutions by outcome.",
		},
		[]string{"outcome"},
	)

	// RoleElevationsTotal counts teacher elevation attempts.
	RoleElevationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnflow_role_elevations_total",
			Help: "Total role elevation attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// EventsPublishedTotal counts e-mail jobs handed to the broker.
	EventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnflow_auth_events_published_total",
			Help: "Total auth e-mail jobs published by template and outcome.",
		},
		[]string{"template", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		AuthAttemptsTotal,
		SessionResolutionsTotal,
		RoleElevationsTotal,
		EventsPublishedTotal,
	)
}

// RecordAuthAttempt records one credential operation.
func RecordAuthAttempt(operation string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	AuthAttemptsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordResolution records the outcome of resolving a request's session.
func RecordResolution(outcome string) {
	SessionResolutionsTotal.WithLabelValues(outcome).Inc()
}

// RecordElevation records a role elevation attempt.
func RecordElevation(outcome string) {
	RoleElevationsTotal.WithLabelValues(outcome).Inc()
}

// RecordPublish records a publish attempt for an e-mail template.
func RecordPublish(template string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	EventsPublishedTotal.WithLabelValues(template, outcome).Inc()
}
