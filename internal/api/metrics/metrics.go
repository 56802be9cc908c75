// Package metrics defines and registers all custom Prometheus metrics for the
// ParkSphere portal. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on import
// through promauto and exposed by the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "parksphere"

// ── Access metrics ────────────────────────────────────────────────────────────

// GuardDecisionsTotal counts access guard decisions.
// Labels:
//   - subtree: "admin", "staff", "user", "root", "search" or "live"
//   - outcome: "loading", "redirect_login", "redirect_root" or "render"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of access guard decisions, by subtree and outcome.",
	},
	[]string{"subtree", "outcome"},
)

// LoginsTotal counts credential exchanges.
// Labels:
//   - flow: "login" or "verify_2fa"
//   - outcome: "authenticated", "challenge", "rejected" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login and 2-step verification attempts, by outcome.",
	},
	[]string{"flow", "outcome"},
)

// ── Search metrics ────────────────────────────────────────────────────────────

// SearchQueriesTotal counts federated search requests sent to the backend.
// Labels:
//   - role: the searching role
//   - outcome: "hit", "empty", "error" or "cancelled"
var SearchQueriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_queries_total",
		Help:      "Total number of federated search queries, by role and outcome.",
	},
	[]string{"role", "outcome"},
)

// ── Live channel metrics ──────────────────────────────────────────────────────

// LiveFramesTotal counts inbound push frames.
// Label:
//   - kind: "spot_update", "unknown" or "malformed"
var LiveFramesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "live_frames_total",
		Help:      "Total number of push channel frames received, by kind.",
	},
	[]string{"kind"},
)

// LiveConnectionsTotal counts push connection attempts.
// Label:
//   - result: "opened" or "failed"
var LiveConnectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "live_connections_total",
		Help:      "Total number of push channel connection attempts, by result.",
	},
	[]string{"result"},
)

// LiveConnected is 1 while the push channel is open.
var LiveConnected = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "live_connected",
		Help:      "Whether the push channel is currently open.",
	},
)
