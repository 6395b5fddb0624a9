package metrics

// Hook is the dependency-injected collaborator the executor notifies
// about job and handler outcomes. A nil Hook is never passed
// around; NullHook is the default no-op implementation.
type Hook interface {
	// JobCompleted records a terminal job outcome.
	JobCompleted(operation, status string, durationSeconds float64)
	// HandlerExecuted records a single handler invocation's outcome.
	HandlerExecuted(handlerName, status string, durationSeconds float64)
	// ActiveJobStarted increments the active-job gauge.
	ActiveJobStarted()
	// ActiveJobFinished decrements the active-job gauge.
	ActiveJobFinished()
}

// NullHook discards every notification. It is the default when no hook is
// configured.
type NullHook struct{}

func (NullHook) JobCompleted(string, string, float64)    {}
func (NullHook) HandlerExecuted(string, string, float64) {}
func (NullHook) ActiveJobStarted()                       {}
func (NullHook) ActiveJobFinished()                      {}

// PrometheusHook is the concrete Hook backed by this package's registered
// collectors.
type PrometheusHook struct{}

// NewPrometheusHook returns a Hook that notifies the package-level
// Prometheus collectors.
func NewPrometheusHook() PrometheusHook { return PrometheusHook{} }

func (PrometheusHook) JobCompleted(operation, status string, durationSeconds float64) {
	JobsTotal.WithLabelValues(operation, status).Inc()
	JobsDurationSeconds.WithLabelValues(operation, status).Observe(durationSeconds)
}

func (PrometheusHook) HandlerExecuted(handlerName, status string, durationSeconds float64) {
	HandlerExecutionsTotal.WithLabelValues(handlerName, status).Inc()
	HandlerDurationSeconds.WithLabelValues(handlerName, status).Observe(durationSeconds)
}

func (PrometheusHook) ActiveJobStarted() {
	ActiveJobs.Inc()
}

func (PrometheusHook) ActiveJobFinished() {
	ActiveJobs.Dec()
}
