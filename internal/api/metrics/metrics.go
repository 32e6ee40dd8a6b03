// Package metrics defines and registers all custom Prometheus metrics for the
// FreelanceHub auth service. It is the single source of truth for metric
// names, labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "auth"

// RegistrationsTotal counts created accounts.
// Label:
//   - role: "client" or "freelancer"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of accounts created, by role.",
	},
	[]string{"role"},
)

// LoginsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "invalid_credentials", "locked", "conflict" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"result"},
)

// LockoutsTotal counts accounts transitioned to the locked state after
// repeated failures.
var LockoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lockouts_total",
		Help:      "Total number of account lockouts triggered by failed logins.",
	},
)

// PasswordResetsTotal counts password-reset flow events.
// Label:
//   - stage: "requested", "throttled", "completed" or "rejected"
var PasswordResetsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_resets_total",
		Help:      "Total number of password-reset flow events, by stage.",
	},
	[]string{"stage"},
)

// MailEnqueuedTotal counts messages handed to the async mail dispatcher.
var MailEnqueuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mail_enqueued_total",
		Help:      "Total number of messages enqueued for asynchronous delivery.",
	},
)

// MailDeliveryDuration measures mail delivery attempts, synchronous and
// worker-side alike.
// Label:
//   - result: "ok" or "error"
var MailDeliveryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "mail_delivery_duration_seconds",
		Help:      "Duration of mail delivery attempts.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)
