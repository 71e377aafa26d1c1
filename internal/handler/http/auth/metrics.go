package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var authRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_requests_total",
		Help: "Total number of authentication requests",
	},
	[]string{"action", "result"},
)

// recordAuthRequest records the outcome of a login, signup, or logout.
func recordAuthRequest(action, result string) {
	authRequestsTotal.WithLabelValues(action, result).Inc()
}
