// Package handler defines the pluggable operation contract the executor
// depends on, and the registry mapping operation names to handlers.
package handler

import (
	"context"
	"sync"

	"github.com/ssahani/guestkit-worker/pkg/jobspec"
	"github.com/ssahani/guestkit-worker/pkg/progress"
)

// Context is passed to a handler's Execute call. It carries job identity,
// a progress reporter, and a per-job working directory under the worker's
// work directory.
type Context struct {
	JobID      string
	WorkerID   string
	WorkDir    string
	Progress   *progress.Tracker
}

// ReportProgress is a convenience wrapper around the context's progress
// tracker.
func (c *Context) ReportProgress(phase string, progressPercent *int, message string) {
	c.Progress.Report(phase, progressPercent, message)
}

// Result is what a handler returns on success.
type Result struct {
	OutputFile string
	Artifacts  []string
	Data       any
}

// Handler is the capability surface the executor depends on. Each
// concrete handler is a standalone value; no inheritance.
type Handler interface {
	// Name identifies the handler for logging.
	Name() string
	// Operations lists the operation names this handler supports.
	Operations() []string
	// Validate checks payload well-formedness before execution. The
	// default behaviour (when embedding NoopValidator) is a no-op.
	Validate(payload jobspec.Payload) error
	// Execute runs the operation and returns a Result or an error.
	Execute(ctx context.Context, hctx *Context, payload jobspec.Payload) (*Result, error)
	// Cleanup runs after Execute, success or failure. Errors are logged,
	// never propagated.
	Cleanup(ctx context.Context, hctx *Context) error
}

// NoopValidator supplies a Validate method that always succeeds. Embed it
// in handlers that don't need pre-execution payload checks.
type NoopValidator struct{}

// Validate always succeeds.
func (NoopValidator) Validate(jobspec.Payload) error { return nil }

// NoopCleanup supplies a Cleanup method that always succeeds. Embed it in
// handlers with nothing to finalise.
type NoopCleanup struct{}

// Cleanup always succeeds.
func (NoopCleanup) Cleanup(context.Context, *Context) error { return nil }

// Registry maps operation names to exactly one handler each. It is safe
// for concurrent use: built once at startup, then shared read-mostly
// across concurrent job executions.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register indexes handler under every operation name it declares. Last
// write wins if two handlers claim the same operation.
func (r *Registry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, op := range h.Operations() {
		r.handlers[op] = h
	}
}

// Get returns the handler registered for operation, if any.
func (r *Registry) Get(operation string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[operation]
	return h, ok
}

// Supports reports whether operation has a registered handler.
func (r *Registry) Supports(operation string) bool {
	_, ok := r.Get(operation)
	return ok
}

// Operations lists every operation the registry can dispatch.
func (r *Registry) Operations() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ops := make([]string, 0, len(r.handlers))
	for op := range r.handlers {
		ops = append(ops, op)
	}
	return ops
}

// Len returns the number of distinct registered operation names.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}
