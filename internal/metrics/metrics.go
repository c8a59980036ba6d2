// Package metrics holds Prometheus instruments used across the service.
// All collectors are registered with the global registry, so importing this
// package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CommentsRendered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sqltag_comments_rendered_total",
			Help: "Cumulative number of component comments composed.",
		})

	CommentCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sqltag_comment_cache_hits_total",
			Help: "Comment renders served from the per-scope cache.",
		})

	CommentCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sqltag_comment_cache_misses_total",
			Help: "Comment renders that had to recompose after an update.",
		})

	AnnotatedQueries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sqltag_annotated_queries_total",
			Help: "Statements that left the process carrying a query tag.",
		})

	JobsRun = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sqltag_jobs_run_total",
			Help: "Background jobs executed by the runner.",
		})

	JobErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sqltag_job_errors_total",
			Help: "Background jobs that returned an error or panicked.",
		})
)

func init() {
	prometheus.MustRegister(
		CommentsRendered,
		CommentCacheHits,
		CommentCacheMisses,
		AnnotatedQueries,
		JobsRun,
		JobErrors,
	)
}
