package jobspec

import (
	"fmt"
	"strings"
)

const maxReasonableTimeoutSeconds = 86400 // 24 hours
const maxReasonableDiskSizeGB = 100000    // 100TB

// Validate checks a Job Document against the protocol rules. It returns a
// structured error identifying the offending field and reason. Validate
// only surfaces hard failures; non-fatal warnings (overlong timeout,
// oversized disk constraint) are reported separately by Warnings.
func Validate(doc *Document) error {
	if err := validateVersion(doc.Version); err != nil {
		return err
	}
	if err := validateJobID(doc.JobID); err != nil {
		return err
	}
	if err := validateKind(doc.Kind); err != nil {
		return err
	}
	if err := validateOperation(doc.Operation); err != nil {
		return err
	}
	if err := validatePayload(doc.Payload); err != nil {
		return err
	}
	if doc.Execution != nil {
		if err := validateExecution(doc.Execution); err != nil {
			return err
		}
	}
	if doc.Constraints != nil {
		if err := validateConstraints(doc.Constraints); err != nil {
			return err
		}
	}
	return nil
}

// Warnings returns non-fatal advisory messages for a document that otherwise
// validates successfully (overlong timeout, oversized disk constraint).
func Warnings(doc *Document) []string {
	var warnings []string
	if doc.Execution != nil && doc.Execution.TimeoutSeconds > maxReasonableTimeoutSeconds {
		warnings = append(warnings, fmt.Sprintf("timeout_seconds (%d) exceeds 24 hours", doc.Execution.TimeoutSeconds))
	}
	if doc.Constraints != nil && doc.Constraints.MaxDiskSizeGB > maxReasonableDiskSizeGB {
		warnings = append(warnings, fmt.Sprintf("max_disk_size_gb (%d) exceeds 100TB", doc.Constraints.MaxDiskSizeGB))
	}
	return warnings
}

func validateVersion(version string) error {
	if version != ProtocolVersion {
		return &UnsupportedVersionError{Version: version}
	}
	return nil
}

func validateJobID(jobID string) error {
	if jobID == "" {
		return &MissingFieldError{Field: "job_id"}
	}
	if len(jobID) < 8 {
		return &FieldError{Field: "job_id", Reason: "must be at least 8 characters"}
	}
	return nil
}

func validateKind(kind string) error {
	if kind != Kind {
		return &FieldError{Field: "kind", Reason: fmt.Sprintf("must be %q, got %q", Kind, kind)}
	}
	return nil
}

func validateOperation(operation string) error {
	if operation == "" {
		return &MissingFieldError{Field: "operation"}
	}
	if !strings.Contains(operation, ".") {
		return &FieldError{Field: "operation", Reason: "must be namespaced (e.g. 'guestkit.inspect')"}
	}
	return nil
}

func validatePayload(payload Payload) error {
	if payload.Type == "" {
		return &MissingFieldError{Field: "payload.type"}
	}
	parts := strings.Split(payload.Type, ".")
	if len(parts) < 3 {
		return &FieldError{Field: "payload.type", Reason: "must be namespaced with version (e.g. 'guestkit.inspect.v1')"}
	}
	last := parts[len(parts)-1]
	if !strings.HasPrefix(last, "v") || len(last) < 2 {
		return &FieldError{Field: "payload.type", Reason: fmt.Sprintf("version part must match 'v<digits>', got %q", last)}
	}
	for _, c := range last[1:] {
		if c < '0' || c > '9' {
			return &FieldError{Field: "payload.type", Reason: fmt.Sprintf("version part must match 'v<digits>', got %q", last)}
		}
	}
	return nil
}

func validateExecution(e *Execution) error {
	if e.Priority < 1 || e.Priority > 10 {
		return &FieldError{Field: "execution.priority", Reason: fmt.Sprintf("must be 1-10, got %d", e.Priority)}
	}
	if e.MaxAttempts < 1 {
		return &FieldError{Field: "execution.max_attempts", Reason: "must be at least 1"}
	}
	if e.Attempt > e.MaxAttempts {
		return &FieldError{Field: "execution.attempt", Reason: fmt.Sprintf("attempt (%d) cannot exceed max_attempts (%d)", e.Attempt, e.MaxAttempts)}
	}
	return nil
}

func validateConstraints(c *Constraints) error {
	if c.MinimumWorkerVersion != "" && strings.TrimSpace(c.MinimumWorkerVersion) == "" {
		return &FieldError{Field: "constraints.minimum_worker_version", Reason: "cannot be empty"}
	}
	return nil
}

// CheckCapabilities returns a CapabilityMismatchError if any entry in
// required is absent from available.
func CheckCapabilities(required, available []string) error {
	have := make(map[string]struct{}, len(available))
	for _, a := range available {
		have[a] = struct{}{}
	}

	var missing []string
	for _, r := range required {
		if _, ok := have[r]; !ok {
			missing = append(missing, r)
		}
	}

	if len(missing) > 0 {
		return &CapabilityMismatchError{Required: required, Available: available, Missing: missing}
	}
	return nil
}
