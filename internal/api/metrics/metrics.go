// Package metrics defines and registers all custom Prometheus metrics for the
// lead gateway. It is the single source of truth for metric names, labels,
// and help strings; registration happens at import time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "leadgate"

// ── Action metrics ────────────────────────────────────────────────────────────

// ActionsTotal counts dispatched actions.
// Labels:
//   - action: the dispatched action name (e.g. "lead.add"), or "unknown"
//   - outcome: "ok", "error", or "unauthorized"
var ActionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "actions_total",
		Help:      "Total number of dispatched API actions, by action and outcome.",
	},
	[]string{"action", "outcome"},
)

// AuthFailuresTotal counts rejected credentials.
// Label:
//   - need: the tier the rejected request required ("api" or "admin")
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of requests rejected for missing or wrong credentials.",
	},
	[]string{"need"},
)

// ── Lead metrics ──────────────────────────────────────────────────────────────

// LeadsUpsertedTotal counts lead captures.
// Label:
//   - result: "created" (new record) or "merged" (duplicate folded in)
var LeadsUpsertedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "leads_upserted_total",
		Help:      "Total number of lead upserts, by result (created/merged).",
	},
	[]string{"result"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotifyDroppedTotal counts notifications dropped because a worker buffer was full.
var NotifyDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notify_dropped_total",
		Help:      "Total number of lead notifications dropped due to a full queue.",
	},
)

// NotifyErrorsTotal counts failed webhook deliveries.
var NotifyErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notify_errors_total",
		Help:      "Total number of lead notifications that failed delivery.",
	},
)

// ── Upstream metrics ──────────────────────────────────────────────────────────

// UpstreamForwardDuration measures end-to-end forwarding latency.
// Label:
//   - method: the HTTP method of the forwarded request
var UpstreamForwardDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_forward_duration_seconds",
		Help:      "Duration of forwarded upstream requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)
