// Package result persists job outcomes as JSON envelopes under a
// configured directory, and reads them back for status/idempotency
// lookups.
package result

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Status is the terminal outcome recorded in an Envelope.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
	StatusTimeout   Status = "timeout"
)

// ExecutionSummary records timing and retry bookkeeping for one execution.
type ExecutionSummary struct {
	StartedAt       time.Time `json:"started_at"`
	DurationSeconds int64     `json:"duration_seconds"`
	Attempt         int       `json:"attempt"`
	IdempotencyKey  string    `json:"idempotency_key,omitempty"`
}

// Outputs carries a handler's declared output file and auxiliary
// artifacts.
type Outputs struct {
	Primary   string   `json:"primary,omitempty"`
	Artifacts []string `json:"artifacts,omitempty"`
}

// ExecutionError describes why a job failed.
type ExecutionError struct {
	Code             string         `json:"code"`
	Message          string         `json:"message"`
	Phase            string         `json:"phase,omitempty"`
	Details          map[string]any `json:"details,omitempty"`
	Recoverable      bool           `json:"recoverable"`
	RetryRecommended bool           `json:"retry_recommended"`
}

// Envelope is the persisted record of a single job's outcome.
type Envelope struct {
	JobID            string            `json:"job_id"`
	Status           Status            `json:"status"`
	CompletedAt      *time.Time        `json:"completed_at,omitempty"`
	FailedAt         *time.Time        `json:"failed_at,omitempty"`
	WorkerID         string            `json:"worker_id"`
	ExecutionSummary ExecutionSummary  `json:"execution_summary"`
	Outputs          *Outputs          `json:"outputs,omitempty"`
	Metrics          map[string]any    `json:"metrics,omitempty"`
	Error            *ExecutionError   `json:"error,omitempty"`
	Observability    map[string]string `json:"observability,omitempty"`
}

// Writer persists and retrieves result envelopes under a directory,
// created on demand.
type Writer struct {
	outputDir string
}

// NewWriter returns a Writer rooted at outputDir.
func NewWriter(outputDir string) *Writer {
	return &Writer{outputDir: outputDir}
}

func (w *Writer) path(jobID string) string {
	return filepath.Join(w.outputDir, jobID+"-result.json")
}

// WriteSuccess persists a Completed envelope and returns its path.
func (w *Writer) WriteSuccess(jobID, workerID string, startedAt time.Time, attempt int, idempotencyKey, outputFile string, artifacts []string) (string, error) {
	now := time.Now().UTC()
	env := &Envelope{
		JobID:       jobID,
		Status:      StatusCompleted,
		CompletedAt: &now,
		WorkerID:    workerID,
		ExecutionSummary: ExecutionSummary{
			StartedAt:       startedAt,
			DurationSeconds: int64(now.Sub(startedAt).Seconds()),
			Attempt:         attempt,
			IdempotencyKey:  idempotencyKey,
		},
	}
	if outputFile != "" || len(artifacts) > 0 {
		env.Outputs = &Outputs{Primary: outputFile, Artifacts: artifacts}
	}
	return w.write(env)
}

// WriteFailure persists a Failed envelope and returns its path.
func (w *Writer) WriteFailure(jobID, workerID string, startedAt time.Time, attempt int, code, message, phase string, recoverable bool) (string, error) {
	now := time.Now().UTC()
	env := &Envelope{
		JobID:    jobID,
		Status:   StatusFailed,
		FailedAt: &now,
		WorkerID: workerID,
		ExecutionSummary: ExecutionSummary{
			StartedAt:       startedAt,
			DurationSeconds: int64(now.Sub(startedAt).Seconds()),
			Attempt:         attempt,
		},
		Error: &ExecutionError{
			Code:             code,
			Message:          message,
			Phase:            phase,
			Recoverable:      recoverable,
			RetryRecommended: recoverable,
		},
	}
	return w.write(env)
}

// WriteTimeout persists a timeout envelope (status Timeout, error code
// TIMEOUT) and returns its path.
func (w *Writer) WriteTimeout(jobID, workerID string, startedAt time.Time, attempt int, timeoutSeconds int) (string, error) {
	now := time.Now().UTC()
	env := &Envelope{
		JobID:    jobID,
		Status:   StatusTimeout,
		FailedAt: &now,
		WorkerID: workerID,
		ExecutionSummary: ExecutionSummary{
			StartedAt:       startedAt,
			DurationSeconds: int64(now.Sub(startedAt).Seconds()),
			Attempt:         attempt,
		},
		Error: &ExecutionError{
			Code:             "TIMEOUT",
			Message:          fmt.Sprintf("job exceeded its %ds timeout", timeoutSeconds),
			Phase:            "execution",
			Recoverable:      true,
			RetryRecommended: true,
		},
	}
	return w.write(env)
}

func (w *Writer) write(env *Envelope) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create result directory: %w", err)
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialise result envelope: %w", err)
	}

	path := w.path(env.JobID)
	tmp, err := os.CreateTemp(w.outputDir, env.JobID+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp result file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write temp result file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close temp result file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("publish result file: %w", err)
	}

	return path, nil
}

// Read loads a previously written envelope.
func (w *Writer) Read(jobID string) (*Envelope, error) {
	data, err := os.ReadFile(w.path(jobID))
	if err != nil {
		return nil, fmt.Errorf("read result for %s: %w", jobID, err)
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse result for %s: %w", jobID, err)
	}
	return &env, nil
}

// Exists reports whether a result envelope has been persisted for jobID.
func (w *Writer) Exists(jobID string) bool {
	_, err := os.Stat(w.path(jobID))
	return err == nil
}

// Path returns the on-disk path a result for jobID would be (or is)
// written to.
func (w *Writer) Path(jobID string) string {
	return w.path(jobID)
}
