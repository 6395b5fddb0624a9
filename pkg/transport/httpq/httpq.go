// Package httpq implements an in-memory FIFO transport: jobs submitted
// through the HTTP API are queued and handed to the worker daemon in
// submission order, with a status map tracking each job's lifecycle.
package httpq

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ssahani/guestkit-worker/pkg/jobspec"
)

// JobState is the lifecycle state of a job as tracked by the queue's
// status map.
type JobState string

const (
	StatePending   JobState = "pending"
	StateAssigned  JobState = "assigned"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
)

// Status is the externally-visible record of a tracked job.
type Status struct {
	JobID       string     `json:"job_id"`
	State       JobState   `json:"state"`
	SubmittedAt time.Time  `json:"submitted_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	Result      any        `json:"result,omitempty"`
}

// Transport is an in-memory FIFO queue of pending jobs plus a status map,
// serialised behind a single mutex per the no-job-lost, no-double-dispatch
// invariant.
type Transport struct {
	mu      sync.Mutex
	queue   []*jobspec.Document
	status  map[string]*Status
	byJobID map[string]*jobspec.Document
}

// New returns an empty queue-backed transport.
func New() *Transport {
	return &Transport{
		status:  make(map[string]*Status),
		byJobID: make(map[string]*jobspec.Document),
	}
}

// Submit enqueues a validated job document and records its initial
// Pending status. Returns an error if the job ID is already tracked.
func (t *Transport) Submit(doc *jobspec.Document) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.status[doc.JobID]; exists {
		return fmt.Errorf("job %s already submitted", doc.JobID)
	}

	t.status[doc.JobID] = &Status{
		JobID:       doc.JobID,
		State:       StatePending,
		SubmittedAt: time.Now().UTC(),
	}
	t.byJobID[doc.JobID] = doc
	t.queue = append(t.queue, doc)
	return nil
}

// FetchJob pops the front of the queue and transitions its status to
// Assigned, stamping started_at. Returns (nil, nil) if the queue is empty.
func (t *Transport) FetchJob(ctx context.Context) (*jobspec.Document, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.queue) == 0 {
		return nil, nil
	}

	doc := t.queue[0]
	t.queue = t.queue[1:]

	now := time.Now().UTC()
	if s, ok := t.status[doc.JobID]; ok {
		s.State = StateAssigned
		s.StartedAt = &now
	}
	return doc, nil
}

// AckJob transitions a job's status to Completed and stamps completed_at.
func (t *Transport) AckJob(ctx context.Context, jobID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.status[jobID]
	if !ok {
		return fmt.Errorf("ack unknown job %s", jobID)
	}
	now := time.Now().UTC()
	s.State = StateCompleted
	s.CompletedAt = &now
	return nil
}

// NackJob transitions a job's status to Failed, stamps completed_at and
// records the reason.
func (t *Transport) NackJob(ctx context.Context, jobID string, reason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.status[jobID]
	if !ok {
		return fmt.Errorf("nack unknown job %s", jobID)
	}
	now := time.Now().UTC()
	s.State = StateFailed
	s.CompletedAt = &now
	s.Error = reason
	return nil
}

// HealthCheck always reports healthy: an in-memory queue has no external
// dependency to fail.
func (t *Transport) HealthCheck(ctx context.Context) bool {
	return true
}

// PendingCount reports the number of jobs waiting to be fetched,
// satisfying metrics.QueueDepthSource.
func (t *Transport) PendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.queue)
}

// Status returns the tracked status for jobID.
func (t *Transport) Status(jobID string) (Status, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.status[jobID]
	if !ok {
		return Status{}, false
	}
	return *s, true
}

// List returns a snapshot of every tracked job status.
func (t *Transport) List() []Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Status, 0, len(t.status))
	for _, s := range t.status {
		out = append(out, *s)
	}
	return out
}

// SetResult attaches a result value to a completed job's status, where it
// appears as the "result" field of Status and List. The API's result-fetch
// endpoint does not read it; that endpoint serves the persisted envelope.
func (t *Transport) SetResult(jobID string, result any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.status[jobID]; ok {
		s.Result = result
	}
}
