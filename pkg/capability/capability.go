// Package capability describes what a worker can do: the operations,
// features and disk formats it supports, and the concurrency/size limits
// it advertises to schedulers and submitters.
package capability

// Descriptor is a worker's self-description, returned verbatim by the
// HTTP transport's GET /api/v1/capabilities endpoint.
type Descriptor struct {
	WorkerID         string   `json:"worker_id"`
	Operations       []string `json:"operations"`
	Features         []string `json:"features"`
	DiskFormats      []string `json:"disk_formats"`
	MaxConcurrentJobs int     `json:"max_concurrent_jobs"`
	MaxDiskSizeGB    int      `json:"max_disk_size_gb"`
}

// Builder constructs a Descriptor fluently.
type Builder struct {
	d Descriptor
}

// New returns a Builder for the given worker ID.
func New(workerID string) *Builder {
	return &Builder{d: Descriptor{WorkerID: workerID}}
}

// WithOperation appends a supported operation.
func (b *Builder) WithOperation(operation string) *Builder {
	b.d.Operations = append(b.d.Operations, operation)
	return b
}

// WithFeature appends a supported feature.
func (b *Builder) WithFeature(feature string) *Builder {
	b.d.Features = append(b.d.Features, feature)
	return b
}

// WithDiskFormat appends a supported disk image format.
func (b *Builder) WithDiskFormat(format string) *Builder {
	b.d.DiskFormats = append(b.d.DiskFormats, format)
	return b
}

// WithMaxConcurrentJobs sets the advertised concurrency ceiling.
func (b *Builder) WithMaxConcurrentJobs(n int) *Builder {
	b.d.MaxConcurrentJobs = n
	return b
}

// WithMaxDiskSizeGB sets the advertised maximum disk image size.
func (b *Builder) WithMaxDiskSizeGB(gb int) *Builder {
	b.d.MaxDiskSizeGB = gb
	return b
}

// Build returns the finished Descriptor.
func (b *Builder) Build() Descriptor {
	return b.d
}
