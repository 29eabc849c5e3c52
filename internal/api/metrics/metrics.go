// Package metrics defines the custom Prometheus metrics of the storefront
// API. Request-level metrics (latency, status codes) come from the
// echoprometheus middleware; these cover the domain decisions around them.
//
// Every metric is registered on the default registry through promauto, so
// importing the package is enough.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Access ───────────────────────────────────────────────────────────────────

// AccessDecisionsTotal counts route gate decisions.
// Labels:
//   - category: public, user-area, admin-area, auth-area
//   - outcome: allow or redirect
var AccessDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_decisions_total",
		Help:      "Route gate decisions by route category and outcome.",
	},
	[]string{"category", "outcome"},
)

// AuthAttemptsTotal counts login and registration attempts.
// Labels:
//   - action: login, register, logout
//   - result: ok or a short failure reason
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Authentication attempts by action and result.",
	},
	[]string{"action", "result"},
)

// ── Back office ──────────────────────────────────────────────────────────────

var NotificationsUpdatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_updated_total",
		Help:      "Notifications marked read or deleted, by action.",
	},
	[]string{"action"},
)

var StockUpdatesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_updates_total",
		Help:      "Manual stock updates applied from the back office.",
	},
)

// ── Checkout ─────────────────────────────────────────────────────────────────

// CheckoutSessionsTotal counts checkout session requests.
// Label:
//   - result: created, rejected (client error) or failed
var CheckoutSessionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_sessions_total",
		Help:      "Checkout session requests by result.",
	},
	[]string{"result"},
)

// PaymentWebhooksTotal counts webhook deliveries.
// Labels:
//   - type: provider event type, or "invalid" when the signature check failed
//   - result: ok or error
var PaymentWebhooksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_webhooks_total",
		Help:      "Payment webhook deliveries by event type and result.",
	},
	[]string{"type", "result"},
)

var OrderStatusChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_status_changes_total",
		Help:      "Manual order status changes by target status.",
	},
	[]string{"status"},
)

// ── Catalog cache ────────────────────────────────────────────────────────────

var CacheRevalidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_revalidations_total",
		Help:      "Catalog revalidation requests by result.",
	},
	[]string{"result"},
)

var CachePurgedEntriesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_purged_entries_total",
		Help:      "Catalog cache entries removed by revalidation.",
	},
)

// ── Analytics & mail ─────────────────────────────────────────────────────────

var AnalyticsEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analytics_events_total",
		Help:      "Analytics events received, by result.",
	},
	[]string{"result"},
)

var MailSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mail_sent_total",
		Help:      "Diagnostic emails sent, by result.",
	},
	[]string{"result"},
)

// Result maps an error to the coarse result label shared by the counters
// above.
func Result(err error) string {
	if err == nil {
		return "ok"
	}
	return "error"
}
