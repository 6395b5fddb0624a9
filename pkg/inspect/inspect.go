// Package inspect abstracts the VM-inspection engine that the worker's
// built-in handlers call into. The engine itself — the disk-image and
// guest-filesystem library — is opaque to the worker: handlers only see
// the Provider capability, never the engine's internals.
package inspect

import "context"

// ImageRef identifies a disk image to operate on.
type ImageRef struct {
	Path     string
	Format   string
	ReadOnly bool
}

// Provider is the inspection engine capability handlers depend on. A real
// implementation wraps the guest-filesystem library; NoopProvider is a
// simulated stand-in for tests and standalone operation.
type Provider interface {
	// Inspect returns a structured report for image given options (e.g.
	// deep_scan, include_packages). The shape of the report is opaque
	// to the worker: it is passed through to the result envelope as-is.
	Inspect(ctx context.Context, image ImageRef, options map[string]any) (map[string]any, error)
	// Profile returns a performance/configuration profile for image.
	Profile(ctx context.Context, image ImageRef, options map[string]any) (map[string]any, error)
}

// NoopProvider simulates inspection results without touching any disk
// image, suitable for tests and for running the worker without the real
// inspection engine wired in.
type NoopProvider struct{}

// Inspect returns a minimal, deterministic simulated report.
func (NoopProvider) Inspect(ctx context.Context, image ImageRef, options map[string]any) (map[string]any, error) {
	return map[string]any{
		"image":    image.Path,
		"format":   image.Format,
		"packages": []string{},
		"services": []string{},
		"note":     "simulated report: no inspection engine wired in",
	}, nil
}

// Profile returns a minimal, deterministic simulated profile.
func (NoopProvider) Profile(ctx context.Context, image ImageRef, options map[string]any) (map[string]any, error) {
	return map[string]any{
		"image": image.Path,
		"note":  "simulated profile: no inspection engine wired in",
	}, nil
}
