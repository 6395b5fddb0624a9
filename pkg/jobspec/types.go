// Package jobspec defines the wire schema for worker job documents: the
// types a submitter sends, the builder used to construct them, and the
// validator the executor runs before dispatching to a handler.
package jobspec

import "time"

// ProtocolVersion is the only version accepted by the validator.
const ProtocolVersion = "1.0"

// Kind identifies the document as a worker job.
const Kind = "VMOperation"

// Document is a self-contained unit of work submitted to the worker.
type Document struct {
	Schema      string       `json:"$schema,omitempty"`
	Version     string       `json:"version"`
	JobID       string       `json:"job_id"`
	CreatedAt   time.Time    `json:"created_at"`
	Kind        string       `json:"kind"`
	Operation   string       `json:"operation"`
	Metadata    *Metadata    `json:"metadata,omitempty"`
	Execution   *Execution   `json:"execution,omitempty"`
	Constraints *Constraints `json:"constraints,omitempty"`
	Routing     *Routing     `json:"routing,omitempty"`
	Payload     Payload      `json:"payload"`
	Observability *Observability `json:"observability,omitempty"`
	Audit       *Audit       `json:"audit,omitempty"`
}

// Metadata carries human-facing and organisational attributes.
type Metadata struct {
	Name        string            `json:"name,omitempty"`
	Namespace   string            `json:"namespace,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

// Execution controls retry, timeout and scheduling policy for a job.
type Execution struct {
	IdempotencyKey string `json:"idempotency_key,omitempty"`
	Attempt        int    `json:"attempt"`
	MaxAttempts    int    `json:"max_attempts"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	DeadlineAt     *time.Time `json:"deadline_at,omitempty"`
	Priority       int    `json:"priority"`
	Cancellable    bool   `json:"cancellable"`
}

// Constraints narrows which workers are eligible to run a job.
type Constraints struct {
	RequiredCapabilities  []string `json:"required_capabilities,omitempty"`
	RequiredFeatures      []string `json:"required_features,omitempty"`
	MinimumWorkerVersion  string   `json:"minimum_worker_version,omitempty"`
	MaxDiskSizeGB         int      `json:"max_disk_size_gb,omitempty"`
	Privileged            bool     `json:"privileged,omitempty"`
	AllowedWorkerPools    []string `json:"allowed_worker_pools,omitempty"`
}

// Routing pins or steers a job toward specific workers or pools.
type Routing struct {
	WorkerID    string            `json:"worker_id,omitempty"`
	Pool        string            `json:"pool,omitempty"`
	Affinity    map[string]string `json:"affinity,omitempty"`
	AntiAffinity map[string]string `json:"anti_affinity,omitempty"`
}

// Payload pairs a typed discriminator with a free-form value.
type Payload struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Observability carries distributed-tracing identifiers, echoed verbatim
// into progress events and result envelopes.
type Observability struct {
	TraceID       string `json:"trace_id,omitempty"`
	SpanID        string `json:"span_id,omitempty"`
	ParentSpanID  string `json:"parent_span_id,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// Audit records who submitted a job and under what authority.
type Audit struct {
	SubmitterIdentity string `json:"submitter_identity,omitempty"`
	SourceHost        string `json:"source_host,omitempty"`
	AuthMethod        string `json:"auth_method,omitempty"`
	AuthSubject       string `json:"auth_subject,omitempty"`
}
