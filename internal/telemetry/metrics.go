// Package telemetry provides logging setup and Prometheus metrics for the admin backend.
//
// All metrics are registered against the default Prometheus registry and are
// served on the side-channel HTTP server started by main.go:
//
//	GET http://<host>:<C4_TELEMETRY_METRICS_PROMETHEUS_PORT>/metrics
//
// HTTP metrics use c.FullPath() (route template such as /api/v1/configurations/:id)
// rather than the raw request URL to keep label cardinality bounded.
package telemetry

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics, labelled by method, route template, and status code.
//
// Example PromQL queries:
//   - Error rate (%):       sum(rate(http_requests_total{status=~"5.."}[5m])) / sum(rate(http_requests_total[5m])) * 100
//   - p99 latency per route: histogram_quantile(0.99, sum by (path, le) (rate(http_request_duration_seconds_bucket[5m])))
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Command and audit metrics.
//
// CommandsTotal counts every command handler invocation by command name and
// outcome ("ok", "not_found", "validation", "error").
//
// AuditLogEntriesTotal counts rows written to audit_log. Comparing
// sum(commands_total{outcome="ok"}) against it exposes mutations that ended
// without an audit entry.
//
// AuditForwardFailuresTotal counts failed deliveries to shippers and the
// Redis channel, by target.
var (
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commands_total",
			Help: "Total number of command handler invocations, by command and outcome.",
		},
		[]string{"command", "outcome"},
	)

	AuditLogEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_log_entries_total",
			Help: "Total number of audit log entries written, by entity type and action.",
		},
		[]string{"entity_type", "action"},
	)

	AuditForwardFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_forward_failures_total",
			Help: "Total number of audit entries that could not be forwarded, by target.",
		},
		[]string{"target"},
	)
)

// ObserveCommand records one command handler invocation
func ObserveCommand(command, outcome string) {
	CommandsTotal.WithLabelValues(command, outcome).Inc()
}

// BucketObjectDeletesTotal counts remote file deletions performed while
// removing buckets and files. outcome is "deleted" or "missing"; a missing
// object is tolerated.
var BucketObjectDeletesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bucket_object_deletes_total",
		Help: "Total number of remote bucket objects deleted, by outcome.",
	},
	[]string{"outcome"},
)

// DBOpenConnections tracks the number of open connections held by the sql.DB pool.
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// StartDBStatsCollector samples pool statistics every interval until ctx is
// cancelled or the database becomes unreachable.
func StartDBStatsCollector(ctx context.Context, db *sql.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := db.PingContext(ctx); err != nil {
					slog.Warn("db stats collector: database unreachable, stopping collector", "error", err)
					return
				}
				DBOpenConnections.Set(float64(db.Stats().OpenConnections))
			}
		}
	}()
}
