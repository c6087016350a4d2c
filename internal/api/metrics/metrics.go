// Package metrics defines the custom Prometheus metrics of the auth service
// and the gateway. Metrics register with the default registry on import.
// HTTP request metrics come from echoprometheus and are not duplicated here.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "suivipro"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "disabled", "throttled", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts self-registrations.
// Label:
//   - result: "success", "conflict", "invalid", "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "registrations_total",
		Help:      "Total number of self-registration attempts, by result.",
	},
	[]string{"result"},
)

// UsersProvisionedTotal counts admin-created accounts.
// Label:
//   - email_sent: "true" or "false"
var UsersProvisionedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "users_provisioned_total",
		Help:      "Total number of accounts created by administrators.",
	},
	[]string{"email_sent"},
)

// NotificationsTotal counts outbound emails.
// Labels:
//   - kind: "welcome" or "password_changed"
//   - result: "sent", "failed", "disabled"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "mail",
		Name:      "notifications_total",
		Help:      "Total number of notification emails, by kind and result.",
	},
	[]string{"kind", "result"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "audit",
		Name:      "events_dropped_total",
		Help:      "Audit events dropped because the dispatcher queue was full or stopped.",
	},
)

var AuditEventsFailedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "audit",
		Name:      "events_failed_total",
		Help:      "Audit events the recorder failed to persist.",
	},
)

// AuditQueueDepth tracks pending events per dispatcher worker.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "audit",
		Name:      "queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Gateway metrics ───────────────────────────────────────────────────────────

// GatewayRequestsTotal counts proxied requests.
// Labels:
//   - route: route name from the gateway table
//   - code: response status code
var GatewayRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "requests_total",
		Help:      "Total number of requests forwarded, by route and status code.",
	},
	[]string{"route", "code"},
)

// GatewayUpstreamFailuresTotal counts requests answered with the
// unavailability payload.
var GatewayUpstreamFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "upstream_failures_total",
		Help:      "Total number of upstream connection failures or timeouts, by route.",
	},
	[]string{"route"},
)

// GatewayUpstreamDuration measures time spent forwarding a request.
var GatewayUpstreamDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "upstream_duration_seconds",
		Help:      "Duration of proxied requests, from match to response.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"route"},
)
