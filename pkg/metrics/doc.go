/*
Package metrics provides Prometheus metrics collection and exposition for
the worker daemon.

All metrics are registered at package init against the default Prometheus
registry and exposed via Handler() for scraping.

# Metrics Catalog

guestkit_worker_jobs_total{operation, status}: Counter of completed job
executions.

guestkit_worker_jobs_duration_seconds{operation, status}: Histogram of
end-to-end job execution duration.

guestkit_worker_active_jobs: Gauge of in-flight executions, driven by the
executor's metrics.Hook calls around each dispatch.

guestkit_worker_queue_depth: Gauge of pending jobs in the transport,
sampled periodically by Collector from a transport's PendingCount.

guestkit_handler_executions_total{handler, status} /
guestkit_handler_duration_seconds{handler, status}: Per-handler execution
counters and latency, recorded by the executor around each handler
invocation.

guestkit_checksum_verifications_total{status},
guestkit_worker_disk_read_bytes_total,
guestkit_worker_disk_write_bytes_total: Inspection/profile handler
instrumentation for disk image operations.

guestkit_worker_transport_errors_total{transport}: Transport-layer
failures by transport kind (file, http).

# Usage

	timer := metrics.NewTimer()
	// ... execute a job ...
	timer.ObserveDurationVec(metrics.JobsDurationSeconds, operation, status)

	http.Handle("/metrics", metrics.Handler())

# Integration Points

  - pkg/executor: drives JobsTotal/JobsDurationSeconds/ActiveJobs and
    HandlerExecutionsTotal/HandlerDurationSeconds via the Hook interface
    (hook.go)
  - pkg/metrics.Collector: samples QueueDepth from any transport
    implementing QueueDepthSource; cmd/guestkit-worker's daemon starts one
    for its transport
  - pkg/api: serves Handler(), HealthHandler(), ReadyHandler() and
    LivenessHandler() over HTTP
  - cmd/guestkit-worker's daemon: serves Handler() and HealthHandler() on
    the optional metrics listener
*/
package metrics
