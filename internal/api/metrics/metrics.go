// Package metrics defines and registers all custom Prometheus metrics for the
// storefront API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Collectors register with the default Prometheus registry on package init,
// which is what the /metrics endpoint exposes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── HTTP metrics ──────────────────────────────────────────────────────────────

// HTTPRequestsTotal counts handled requests.
// Labels:
//   - method: HTTP method
//   - route: the registered route pattern (e.g. "/v1/products/:id")
//   - status: response status code
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests handled, by route and status.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures request latency per route.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests from routing to response.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// ── Access metrics ────────────────────────────────────────────────────────────

// GuardDecisionsTotal counts access guard outcomes.
// Label:
//   - outcome: render, redirect_login, redirect_dashboard, redirect_home, pending
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of access guard decisions, by outcome.",
	},
	[]string{"outcome"},
)

// ── Checkout metrics ──────────────────────────────────────────────────────────

// OrdersPlacedTotal counts checkout submissions that produced an order.
// Label:
//   - result: "created" or "replayed" (Idempotency-Key hit)
var OrdersPlacedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_placed_total",
		Help:      "Total number of orders placed, labelled by result (created/replayed).",
	},
	[]string{"result"},
)

// CouponChecksTotal counts coupon validations.
// Label:
//   - result: "accepted" or "rejected"
var CouponChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "coupon_checks_total",
		Help:      "Total number of coupon validations, labelled by result.",
	},
	[]string{"result"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionsOpenedTotal counts authenticated sessions opened by sign-up or sign-in.
var SessionsOpenedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_opened_total",
		Help:      "Total number of authenticated sessions opened.",
	},
)

// AuthFailuresTotal counts failed sign-up or sign-in attempts.
// Label:
//   - kind: credential, network, missing_profile, persistence
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of failed authentication attempts, by failure kind.",
	},
	[]string{"kind"},
)

// ── Commission queue ─────────────────────────────────────────────────────────

// RegisterCommissionDrops exposes the dispatcher's dropped-event count.
// Call once per process.
func RegisterCommissionDrops(dropped func() uint64) {
	promauto.NewCounterFunc(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commission_events_dropped_total",
			Help:      "Total number of commission events dropped because the queue was full or closed.",
		},
		func() float64 { return float64(dropped()) },
	)
}
