// Copyright (c) 2026 mikempw
// SPDX-License-Identifier: MIT

// Package metrics defines the Prometheus metrics exposed by failoverd,
// served on METRICS_ADDR separately from the introspection surface.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LeaseAgeSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "failover_lease_age_seconds",
		Help: "Age of the currently observed lease in seconds, measured at each poll.",
	})

	TakeoversTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "failover_takeovers_total",
		Help: "Total number of DR takeover writes performed by this process.",
	})

	FailureStreak = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "failover_failure_streak",
		Help: "Current consecutive unhealthy/unknown verdict count.",
	})

	HealthVerdictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "failover_health_verdicts_total",
		Help: "Health oracle verdicts observed, labeled by outcome.",
	}, []string{"verdict"})

	BackendWriteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "failover_backend_write_duration_seconds",
		Help:    "Latency of DNS backend SetRecords calls.",
		Buckets: prometheus.DefBuckets,
	})

	WatcherActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "failover_watcher_actions_total",
		Help: "Worker-controller actions issued by the watcher, labeled by action.",
	}, []string{"action"})
)

// ObserveBackendWrite records the latency of a single backend write call.
func ObserveBackendWrite(d time.Duration) {
	BackendWriteDuration.Observe(d.Seconds())
}
