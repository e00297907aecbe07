// Package metrics defines the Prometheus metrics of the storefront client.
// All vectors register with the default registry through promauto; a CLI or
// host service exposes them with promhttp if it wants to.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront_client"

// RequestsTotal counts completed round trips to the backend.
// Labels:
//   - method: HTTP method
//   - class: "2xx", "4xx", "5xx" or "transport" for failures without a response
var RequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Total number of backend round trips, by method and status class.",
	},
	[]string{"method", "class"},
)

// RefreshTotal counts settled refresh operations.
// Label:
//   - outcome: "success", "session_expired", "no_session" or "error"
var RefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_total",
		Help:      "Total number of token refresh calls, by outcome.",
	},
	[]string{"outcome"},
)

// QueuedTotal counts requests that waited behind an in-flight refresh.
var QueuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_queued_total",
		Help:      "Total number of requests parked behind an in-flight refresh.",
	},
)

// ReplaysTotal counts requests re-issued after an authorization failure.
var ReplaysTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "replays_total",
		Help:      "Total number of requests replayed after a refresh.",
	},
)

// RedirectsTotal counts forced navigations to the login page.
var RedirectsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_redirects_total",
		Help:      "Total number of forced redirects to the login page.",
	},
)

// StatusClass buckets an HTTP status for the RequestsTotal class label.
func StatusClass(status int) string {
	switch {
	case status <= 0:
		return "transport"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
