package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ssahani/guestkit-worker/pkg/capability"
	"github.com/ssahani/guestkit-worker/pkg/executor"
	"github.com/ssahani/guestkit-worker/pkg/handler"
	"github.com/ssahani/guestkit-worker/pkg/jobspec"
	"github.com/ssahani/guestkit-worker/pkg/result"
)

// fakeTransport serves a fixed set of jobs once each, then reports empty,
// and records every ack/nack it receives.
type fakeTransport struct {
	mu      sync.Mutex
	jobs    []*jobspec.Document
	acked   []string
	nacked  []string
	healthy bool
}

func (f *fakeTransport) FetchJob(ctx context.Context) (*jobspec.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.jobs) == 0 {
		return nil, nil
	}
	job := f.jobs[0]
	f.jobs = f.jobs[1:]
	return job, nil
}

func (f *fakeTransport) AckJob(ctx context.Context, jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked = append(f.acked, jobID)
	return nil
}

func (f *fakeTransport) NackJob(ctx context.Context, jobID string, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nacked = append(f.nacked, jobID)
	return nil
}

func (f *fakeTransport) HealthCheck(ctx context.Context) bool { return f.healthy }

type echoHandler struct {
	handler.NoopValidator
	handler.NoopCleanup
}

func (echoHandler) Name() string         { return "echo" }
func (echoHandler) Operations() []string { return []string{"guestkit.echo"} }
func (echoHandler) Execute(ctx context.Context, hctx *handler.Context, payload jobspec.Payload) (*handler.Result, error) {
	return &handler.Result{}, nil
}

func buildJob(t *testing.T) *jobspec.Document {
	t.Helper()
	doc, err := jobspec.NewBuilder().
		GenerateJobID().
		Operation("guestkit.echo").
		Payload("guestkit.echo.v1", map[string]any{}).
		Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	return doc
}

func TestDaemonDispatchesAndAcksSuccessfulJob(t *testing.T) {
	registry := handler.NewRegistry()
	registry.Register(echoHandler{})
	results := result.NewWriter(t.TempDir())
	exec := executor.New("worker-test", t.TempDir(), registry, results, nil)

	job := buildJob(t)
	tr := &fakeTransport{jobs: []*jobspec.Document{job}, healthy: true}

	cfg := DefaultConfig()
	cfg.WorkerID = "worker-test"
	cfg.PollInterval = 20 * time.Millisecond
	cfg.ShutdownTimeout = time.Second

	d := New(cfg, capability.Descriptor{WorkerID: "worker-test"}, registry, exec, tr)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := d.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tr.mu.Lock()
	defer tr.mu.Unlock()
	if len(tr.acked) != 1 || tr.acked[0] != job.JobID {
		t.Errorf("expected job %s to be acked, got acked=%v nacked=%v", job.JobID, tr.acked, tr.nacked)
	}
}

func TestDaemonRespectsMaxConcurrency(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxConcurrentJobs = 2
	registry := handler.NewRegistry()
	registry.Register(echoHandler{})
	results := result.NewWriter(t.TempDir())
	exec := executor.New("worker-test", t.TempDir(), registry, results, nil)
	tr := &fakeTransport{healthy: true}

	d := New(cfg, capability.Descriptor{}, registry, exec, tr)
	if cap(d.sem) != 2 {
		t.Errorf("expected semaphore capacity 2, got %d", cap(d.sem))
	}
}
