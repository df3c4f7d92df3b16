// Package metrics registers the Prometheus metrics for the auth core.
// Importing the package registers everything with the default registry;
// expose it by mounting promhttp.Handler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "memeboard"

// RegistrationsTotal counts registration attempts by outcome
// ("ok", "invalid", "duplicate", "error").
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_registrations_total",
		Help:      "Total number of registration attempts, by outcome.",
	},
	[]string{"outcome"},
)

// LoginsTotal counts login attempts by outcome ("ok", "denied", "error").
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// TokenResolutionsTotal counts bearer-token resolutions by outcome
// ("ok", "rejected", "error"). Rejections collapse missing, forged and
// expired tokens, mirroring what the client sees.
var TokenResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_token_resolutions_total",
		Help:      "Total number of bearer token resolutions, by outcome.",
	},
	[]string{"outcome"},
)

// RateLimitDenialsTotal counts requests rejected by a limiter, by scope
// ("identity" for the per-user sliding window, "ip" for the pre-auth
// per-address throttle).
var RateLimitDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ratelimit_denials_total",
		Help:      "Total number of requests rejected by rate limiting, by scope.",
	},
	[]string{"scope"},
)
