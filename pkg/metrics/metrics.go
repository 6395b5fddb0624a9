package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// JobsTotal counts completed job executions by operation and final
	// status.
	JobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guestkit_worker_jobs_total",
			Help: "Total number of jobs processed by operation and status",
		},
		[]string{"operation", "status"},
	)

	// JobsDurationSeconds observes end-to-end job execution duration.
	JobsDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "guestkit_worker_jobs_duration_seconds",
			Help:    "Job execution duration in seconds by operation and status",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"operation", "status"},
	)

	// ActiveJobs tracks the number of in-flight executions.
	ActiveJobs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "guestkit_worker_active_jobs",
			Help: "Currently active job executions",
		},
	)

	// QueueDepth tracks the transport's pending job count.
	QueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "guestkit_worker_queue_depth",
			Help: "Pending jobs waiting to be fetched from the transport",
		},
	)

	// HandlerExecutionsTotal counts handler invocations by name and
	// outcome.
	HandlerExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guestkit_handler_executions_total",
			Help: "Total handler executions by handler name and status",
		},
		[]string{"handler", "status"},
	)

	// HandlerDurationSeconds observes handler-only execution duration.
	HandlerDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "guestkit_handler_duration_seconds",
			Help:    "Handler execution duration in seconds by handler name and status",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"handler", "status"},
	)

	// ChecksumVerificationsTotal counts disk-image checksum verification
	// attempts performed by inspection handlers.
	ChecksumVerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guestkit_checksum_verifications_total",
			Help: "Checksum verification attempts by status",
		},
		[]string{"status"},
	)

	// DiskReadBytesTotal counts bytes read from inspected disk images.
	DiskReadBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "guestkit_worker_disk_read_bytes_total",
			Help: "Total disk bytes read across all jobs",
		},
	)

	// DiskWriteBytesTotal counts bytes written by modification operations.
	DiskWriteBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "guestkit_worker_disk_write_bytes_total",
			Help: "Total disk bytes written across all jobs",
		},
	)

	// TransportErrorsTotal counts transport-layer failures (filesystem,
	// JSON parse, HTTP) by transport kind.
	TransportErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guestkit_worker_transport_errors_total",
			Help: "Transport errors by transport kind",
		},
		[]string{"transport"},
	)
)

func init() {
	prometheus.MustRegister(JobsTotal)
	prometheus.MustRegister(JobsDurationSeconds)
	prometheus.MustRegister(ActiveJobs)
	prometheus.MustRegister(QueueDepth)
	prometheus.MustRegister(HandlerExecutionsTotal)
	prometheus.MustRegister(HandlerDurationSeconds)
	prometheus.MustRegister(ChecksumVerificationsTotal)
	prometheus.MustRegister(DiskReadBytesTotal)
	prometheus.MustRegister(DiskWriteBytesTotal)
	prometheus.MustRegister(TransportErrorsTotal)
}

// Handler returns the Prometheus HTTP handler serving the text-format
// exposition.
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

// ObserveDuration records the elapsed time to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the elapsed time to a histogram vec with
// labels.
func (t *Timer) ObserveDurationVec(histogram *prometheus.HistogramVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
