/*
Package metrics provides Prometheus metrics collection and exposition for
the filekv storage engine.

The metrics package defines and registers filekv's metrics using the
Prometheus client library, providing observability into commit pipeline
throughput, rollback and purge activity, and crash-recovery drains.
Metrics are exposed via an HTTP endpoint for scraping by Prometheus
servers.

# Architecture

	┌──────────────────── METRICS SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │          Prometheus Registry                │          │
	│  │  - Global DefaultRegistry                   │          │
	│  │  - MustRegister at package init             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │              Metric Types                   │          │
	│  │                                              │          │
	│  │  Counter: Monotonic increases (commits)     │          │
	│  │  Histogram: Distributions (stage duration)  │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Metric Categories                 │          │
	│  │                                              │          │
	│  │  Transaction: opened, committed, rolled back│          │
	│  │  Commit pipeline: stage duration, total     │          │
	│  │  Object store: links created, orphans       │          │
	│  │  Recovery: commits and purges drained       │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │          HTTP Metrics Endpoint              │          │
	│  │  - Path: /metrics                           │          │
	│  │  - Format: Prometheus text exposition       │          │
	│  │  - Handler: promhttp.Handler()              │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Metrics Catalog

Transaction metrics:

filekv_transactions_opened_total:
  - Type: Counter
  - Description: Transactions opened via Store.Begin

filekv_commits_total:
  - Type: Counter
  - Description: Transactions successfully committed

filekv_rollbacks_total:
  - Type: Counter
  - Description: Transactions rolled back

Commit pipeline metrics:

filekv_commit_duration_seconds:
  - Type: Histogram
  - Description: Wall time for the full commit pipeline, one commit directory
  - Example: histogram_quantile(0.95, filekv_commit_duration_seconds_bucket)

filekv_commit_stage_duration_seconds{stage}:
  - Type: Histogram
  - Description: Wall time for an individual pipeline stage
  - Labels: stage ("1"|"2"|"3"|"4"|"finalize")

filekv_purge_duration_seconds:
  - Type: Histogram
  - Description: Wall time to purge one transaction tree

Object-store metrics:

filekv_objects_linked_total:
  - Type: Counter
  - Description: Content-hash objects hard-linked into the shared object store

filekv_objects_orphaned_total:
  - Type: Counter
  - Description: Staged objects discarded during stage 1 with no live reference

filekv_namespace_entries_published_total:
  - Type: Counter
  - Description: Key-hash namespace entries published by stage 4

Recovery metrics:

filekv_recovered_commits_total:
  - Type: Counter
  - Description: In-flight commit directories drained by Store.Recover

filekv_recovered_purges_total:
  - Type: Counter
  - Description: In-flight purge directories drained by Store.Recover

# Usage

	import "github.com/cuemby/filekv/pkg/metrics"

	timer := metrics.NewTimer()
	// ... run a stage ...
	timer.ObserveDurationVec(metrics.CommitStageDuration, "1")

	mux.Handle("/metrics", metrics.Handler())

# Dashboard Queries

  - Commit rate: rate(filekv_commits_total[1m])
  - Rollback rate: rate(filekv_rollbacks_total[1m])
  - p95 commit latency: histogram_quantile(0.95, filekv_commit_duration_seconds_bucket)
  - Slowest stage: topk(1, sum by (stage) (rate(filekv_commit_stage_duration_seconds_sum[5m])))
  - Orphan rate: rate(filekv_objects_orphaned_total[5m])
  - Startup backlog drained: filekv_recovered_commits_total + filekv_recovered_purges_total
*/
package metrics
