package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Transaction lifecycle metrics
	TransactionsOpened = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "filekv_transactions_opened_total",
			Help: "Total number of transactions opened",
		},
	)

	CommitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "filekv_commits_total",
			Help: "Total number of transactions committed",
		},
	)

	RollbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "filekv_rollbacks_total",
			Help: "Total number of transactions rolled back",
		},
	)

	CommitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filekv_commit_duration_seconds",
			Help:    "Time taken to run the full commit pipeline for one transaction",
			Buckets: prometheus.DefBuckets,
		},
	)

	CommitStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filekv_commit_stage_duration_seconds",
			Help:    "Time taken by an individual commit pipeline stage",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	PurgeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filekv_purge_duration_seconds",
			Help:    "Time taken to purge one transaction tree",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Object-store metrics
	ObjectsLinkedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "filekv_objects_linked_total",
			Help: "Total number of content-hash objects hard-linked into the shared object store",
		},
	)

	ObjectsOrphanedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "filekv_objects_orphaned_total",
			Help: "Total number of staged objects discarded because no live namespace entry referenced them",
		},
	)

	NamespaceEntriesPublishedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "filekv_namespace_entries_published_total",
			Help: "Total number of key-hash namespace entries published by stage 4 of the commit pipeline",
		},
	)

	// Recovery metrics
	RecoveredCommitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "filekv_recovered_commits_total",
			Help: "Total number of in-flight commit directories drained by Store.Recover on startup",
		},
	)

	RecoveredPurgesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "filekv_recovered_purges_total",
			Help: "Total number of in-flight purge directories drained by Store.Recover on startup",
		},
	)
)

func init() {
	prometheus.MustRegister(
		TransactionsOpened,
		CommitsTotal,
		RollbacksTotal,
		CommitDuration,
		CommitStageDuration,
		PurgeDuration,
		ObjectsLinkedTotal,
		ObjectsOrphanedTotal,
		NamespaceEntriesPublishedTotal,
		RecoveredCommitsTotal,
		RecoveredPurgesTotal,
	)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
