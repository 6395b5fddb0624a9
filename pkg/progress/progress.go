// Package progress streams ordered progress events for a single job
// execution: an atomically-sequenced event stream with one sender (the
// handler) and one receiver (the executor's drain task).
package progress

import (
	"sync/atomic"
	"time"

	infinity "github.com/Code-Hex/go-infinity-channel"
)

// Event carries a single progress update for a job.
type Event struct {
	JobID           string         `json:"job_id"`
	Timestamp       time.Time      `json:"timestamp"`
	Sequence        uint64         `json:"sequence"`
	Phase           string         `json:"phase"`
	ProgressPercent *int           `json:"progress_percent,omitempty"`
	Message         string         `json:"message"`
	Details         map[string]any `json:"details,omitempty"`
	TraceID         string         `json:"trace_id,omitempty"`
	CorrelationID   string         `json:"correlation_id,omitempty"`
}

// Tracker reports progress events for a single job onto an unbounded
// channel. Reporting never blocks the handler regardless of how quickly
// the drain task on the other end consumes events.
type Tracker struct {
	jobID    string
	sequence atomic.Uint64
	ch       *infinity.Channel[Event]
}

// New creates a Tracker and returns it alongside the receive-only side of
// its channel. The caller (typically the executor) consumes the channel
// from exactly one goroutine — the progress-drain task.
func New(jobID string) (*Tracker, <-chan Event) {
	ch := infinity.NewChannel[Event]()
	return &Tracker{jobID: jobID, ch: ch}, ch.Out()
}

// Report sends a progress event, allocating the next sequence number
// atomically.
func (t *Tracker) Report(phase string, progressPercent *int, message string) {
	t.send(Event{
		Phase:           phase,
		ProgressPercent: progressPercent,
		Message:         message,
	})
}

// ReportWithDetails reports progress carrying a structured details payload.
func (t *Tracker) ReportWithDetails(phase string, progressPercent *int, message string, details map[string]any) {
	t.send(Event{
		Phase:           phase,
		ProgressPercent: progressPercent,
		Message:         message,
		Details:         details,
	})
}

func (t *Tracker) send(e Event) {
	e.JobID = t.jobID
	e.Timestamp = time.Now().UTC()
	e.Sequence = t.sequence.Add(1) - 1
	t.ch.In() <- e
}

// Close releases the channel. Call after the handler's execute/cleanup
// have both returned.
func (t *Tracker) Close() {
	t.ch.Close()
}
