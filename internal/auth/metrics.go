// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keygate Contributors

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Status constants for authentication metrics.
const (
	StatusSuccess  = "success"
	StatusRejected = "rejected"
	StatusInactive = "inactive"
	StatusExpired  = "expired"
	StatusRevoked  = "revoked"
	StatusStale    = "stale"
	StatusError    = "error"
)

// LoginAttempts is the counter for login attempts by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var LoginAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "keygate_login_attempts_total",
		Help: "Total number of login attempts by status",
	},
	[]string{"status"},
)

// TokenVerifications is the counter for token verifications by kind and outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var TokenVerifications = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "keygate_token_verifications_total",
		Help: "Total number of token verifications by kind and status",
	},
	[]string{"kind", "status"},
)

// TokenRevocations is the counter for logout-driven token revocations.
// Use RegisterMetrics to register this with a Prometheus registry.
var TokenRevocations = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "keygate_token_revocations_total",
		Help: "Total number of tokens recorded in the revocation registry",
	},
)

// HashDuration is the histogram for password hashing latency. Hashing is
// the only CPU-bound step with meaningful latency in the core.
var HashDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "keygate_password_hash_duration_seconds",
		Help:    "Password hashing and verification duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
)

// RegisterMetrics registers auth package metrics with the given Prometheus
// registry. This must be called at startup to make metrics available on
// /metrics. Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(LoginAttempts)
	reg.MustRegister(TokenVerifications)
	reg.MustRegister(TokenRevocations)
	reg.MustRegister(HashDuration)
}
