// Package metrics defines and registers the custom Prometheus metrics of the
// portal API. It is the single source of truth for metric names, labels, and
// help strings.
//
// All metrics are registered with the default registry through promauto, so
// importing the package is enough.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ProfileRequestsTotal counts profile reads and writes.
// Labels:
//   - op: "get" or "update"
//   - result: "ok", "not_found", "invalid" or "error"
var ProfileRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_requests_total",
		Help:      "Total number of profile requests, by operation and result.",
	},
	[]string{"op", "result"},
)

// EmailsTotal counts transactional email attempts.
// Labels:
//   - kind: the message template (e.g. "welcome")
//   - result: "sent" or "failed"
var EmailsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_total",
		Help:      "Total number of transactional emails, by kind and result.",
	},
	[]string{"kind", "result"},
)

// UsersCreatedTotal counts accounts created through the API.
// Label:
//   - role: the role assigned to the new account
var UsersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_created_total",
		Help:      "Total number of user accounts created, by role.",
	},
	[]string{"role"},
)

// EmailResult maps a delivery flag to the result label.
func EmailResult(sent bool) string {
	if sent {
		return "sent"
	}
	return "failed"
}
