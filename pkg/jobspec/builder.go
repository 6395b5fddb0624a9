package jobspec

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultSchema is stamped onto documents that don't set one explicitly.
const DefaultSchema = "https://guestkit.dev/schemas/job-v1.json"

const (
	defaultAttempt     = 1
	defaultMaxAttempts = 1
	defaultTimeout     = 3600
	defaultPriority    = 5
)

// Builder constructs a Document fluently, applying the protocol's defaults
// and running Validate as the final step of Build.
type Builder struct {
	jobID       string
	operation   string
	payloadType string
	payloadData any

	metadata      Metadata
	execution     Execution
	constraints   Constraints
	routing       Routing
	observability Observability
	audit         Audit

	err error
}

// NewBuilder returns a Builder with the execution policy defaults applied.
func NewBuilder() *Builder {
	return &Builder{
		execution: Execution{
			Attempt:     defaultAttempt,
			MaxAttempts: defaultMaxAttempts,
			TimeoutSeconds: defaultTimeout,
			Priority:    defaultPriority,
			Cancellable: true,
		},
	}
}

// JobID sets an explicit job ID.
func (b *Builder) JobID(id string) *Builder {
	b.jobID = id
	return b
}

// GenerateJobID assigns a fresh sortable job ID of the form "job-<ulid>".
func (b *Builder) GenerateJobID() *Builder {
	b.jobID = "job-" + ulid.Make().String()
	return b
}

// Operation sets the namespaced operation name.
func (b *Builder) Operation(operation string) *Builder {
	b.operation = operation
	return b
}

// Payload sets the typed payload discriminator and its structured data.
func (b *Builder) Payload(payloadType string, data any) *Builder {
	b.payloadType = payloadType
	b.payloadData = data
	return b
}

// Name sets the metadata name.
func (b *Builder) Name(name string) *Builder {
	b.metadata.Name = name
	return b
}

// Namespace sets the metadata namespace.
func (b *Builder) Namespace(namespace string) *Builder {
	b.metadata.Namespace = namespace
	return b
}

// Label adds a metadata label.
func (b *Builder) Label(key, value string) *Builder {
	if b.metadata.Labels == nil {
		b.metadata.Labels = make(map[string]string)
	}
	b.metadata.Labels[key] = value
	return b
}

// Annotation adds a metadata annotation.
func (b *Builder) Annotation(key, value string) *Builder {
	if b.metadata.Annotations == nil {
		b.metadata.Annotations = make(map[string]string)
	}
	b.metadata.Annotations[key] = value
	return b
}

// IdempotencyKey sets the execution policy's idempotency key.
func (b *Builder) IdempotencyKey(key string) *Builder {
	b.execution.IdempotencyKey = key
	return b
}

// Priority sets the execution priority, clamped to [1,10].
func (b *Builder) Priority(priority int) *Builder {
	switch {
	case priority < 1:
		priority = 1
	case priority > 10:
		priority = 10
	}
	b.execution.Priority = priority
	return b
}

// TimeoutSeconds sets the execution timeout.
func (b *Builder) TimeoutSeconds(seconds int) *Builder {
	b.execution.TimeoutSeconds = seconds
	return b
}

// MaxAttempts sets the execution retry ceiling.
func (b *Builder) MaxAttempts(attempts int) *Builder {
	b.execution.MaxAttempts = attempts
	return b
}

// RequireCapability appends a required capability.
func (b *Builder) RequireCapability(capability string) *Builder {
	b.constraints.RequiredCapabilities = append(b.constraints.RequiredCapabilities, capability)
	return b
}

// RequireFeature appends a required feature.
func (b *Builder) RequireFeature(feature string) *Builder {
	b.constraints.RequiredFeatures = append(b.constraints.RequiredFeatures, feature)
	return b
}

// WorkerPool sets the target worker pool for routing.
func (b *Builder) WorkerPool(pool string) *Builder {
	b.routing.Pool = pool
	return b
}

// TraceID sets the observability trace ID.
func (b *Builder) TraceID(traceID string) *Builder {
	b.observability.TraceID = traceID
	return b
}

// CorrelationID sets the observability correlation ID.
func (b *Builder) CorrelationID(correlationID string) *Builder {
	b.observability.CorrelationID = correlationID
	return b
}

// SubmittedBy sets the audit submitter identity.
func (b *Builder) SubmittedBy(submitter string) *Builder {
	b.audit.SubmitterIdentity = submitter
	return b
}

// Build finalises the document, applying defaults for omitted sub-objects
// and running Validate. An error set by an earlier builder call, or a
// validation failure, is returned here.
func (b *Builder) Build() (*Document, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.jobID == "" {
		return nil, &MissingFieldError{Field: "job_id"}
	}
	if b.operation == "" {
		return nil, &MissingFieldError{Field: "operation"}
	}
	if b.payloadType == "" {
		return nil, &MissingFieldError{Field: "payload.type"}
	}
	if b.payloadData == nil {
		return nil, &MissingFieldError{Field: "payload.data"}
	}

	doc := &Document{
		Schema:    DefaultSchema,
		Version:   ProtocolVersion,
		JobID:     b.jobID,
		CreatedAt: time.Now().UTC(),
		Kind:      Kind,
		Operation: b.operation,
		Execution: cloneExecution(b.execution),
		Payload: Payload{
			Type: b.payloadType,
			Data: b.payloadData,
		},
	}

	if !metadataEmpty(b.metadata) {
		m := b.metadata
		doc.Metadata = &m
	}
	if !constraintsEmpty(b.constraints) {
		c := b.constraints
		doc.Constraints = &c
	}
	if !routingEmpty(b.routing) {
		r := b.routing
		doc.Routing = &r
	}
	if b.observability != (Observability{}) {
		o := b.observability
		doc.Observability = &o
	}
	if b.audit != (Audit{}) {
		a := b.audit
		doc.Audit = &a
	}

	if err := Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func cloneExecution(e Execution) *Execution {
	c := e
	return &c
}

func metadataEmpty(m Metadata) bool {
	return m.Name == "" && m.Namespace == "" && len(m.Labels) == 0 && len(m.Annotations) == 0
}

func routingEmpty(r Routing) bool {
	return r.WorkerID == "" && r.Pool == "" && len(r.Affinity) == 0 && len(r.AntiAffinity) == 0
}

func constraintsEmpty(c Constraints) bool {
	return len(c.RequiredCapabilities) == 0 &&
		len(c.RequiredFeatures) == 0 &&
		c.MinimumWorkerVersion == "" &&
		c.MaxDiskSizeGB == 0 &&
		!c.Privileged &&
		len(c.AllowedWorkerPools) == 0
}

// InspectJob pre-populates a builder for the guestkit.inspect operation
// against a disk image path, mirroring the convenience constructor used by
// the original inspection toolkit's CLI.
func InspectJob(imagePath string) *Builder {
	payload := map[string]any{
		"image": map[string]any{
			"path":      imagePath,
			"format":    "qcow2",
			"read_only": true,
		},
		"options": map[string]any{
			"deep_scan":         false,
			"include_packages":  true,
			"include_services":  true,
			"include_network":   true,
			"include_security":  true,
		},
	}

	return NewBuilder().
		GenerateJobID().
		Operation("guestkit.inspect").
		Payload("guestkit.inspect.v1", payload).
		RequireCapability("guestkit.inspect")
}
