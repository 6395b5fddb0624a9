// Package transport defines the boundary between the worker daemon and the
// outside world: fetching jobs, acknowledging or rejecting them, and a
// liveness check. Two implementations live in its subpackages: a
// filesystem dropbox (file) and an in-memory HTTP-backed FIFO (httpq).
package transport

import (
	"context"

	"github.com/ssahani/guestkit-worker/pkg/jobspec"
)

// Transport is the capability surface the worker daemon depends on to
// source jobs and report their disposition.
type Transport interface {
	// FetchJob returns the next available job, or (nil, nil) if none is
	// ready within the implementation's poll interval. A transport MUST
	// NOT return the same job twice.
	FetchJob(ctx context.Context) (*jobspec.Document, error)
	// AckJob signals that the worker durably owns a result for jobID.
	AckJob(ctx context.Context, jobID string) error
	// NackJob signals that the worker cannot or will not produce a
	// result for jobID; reason is persisted or surfaced to the operator.
	NackJob(ctx context.Context, jobID string, reason string) error
	// HealthCheck reports whether the transport is in a usable state.
	HealthCheck(ctx context.Context) bool
}
