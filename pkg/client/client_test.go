package client

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/ssahani/guestkit-worker/pkg/api"
	"github.com/ssahani/guestkit-worker/pkg/capability"
	"github.com/ssahani/guestkit-worker/pkg/jobspec"
	"github.com/ssahani/guestkit-worker/pkg/result"
	"github.com/ssahani/guestkit-worker/pkg/transport/httpq"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	queue := httpq.New()
	results := result.NewWriter(t.TempDir())
	caps := capability.New("worker-test").WithOperation("guestkit.echo").Build()
	srv := api.NewServer(queue, results, caps)
	return httptest.NewServer(srv.Handler())
}

func buildTestJob(t *testing.T) *jobspec.Document {
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

func TestSubmitReturnsJobID(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	c := New(ts.URL)
	doc := buildTestJob(t)

	resp, err := c.Submit(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.JobID != doc.JobID {
		t.Errorf("expected job_id %s, got %s", doc.JobID, resp.JobID)
	}
}

func TestSubmitRejectsInvalidDocument(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	c := New(ts.URL)
	doc := &jobspec.Document{}

	_, err := c.Submit(context.Background(), doc)
	if err == nil {
		t.Fatal("expected error for invalid document")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != 400 {
		t.Errorf("expected status 400, got %d", apiErr.StatusCode)
	}
}

func TestStatusReturns404ForUnknownJob(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	c := New(ts.URL)
	_, err := c.Status(context.Background(), "job-does-not-exist")
	if err == nil {
		t.Fatal("expected error for unknown job")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != 404 {
		t.Errorf("expected status 404, got %d", apiErr.StatusCode)
	}
}

func TestSubmitThenListIncludesJob(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	c := New(ts.URL)
	doc := buildTestJob(t)
	if _, err := c.Submit(context.Background(), doc); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}

	statuses, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	found := false
	for _, s := range statuses {
		if s.JobID == doc.JobID {
			found = true
		}
	}
	if !found {
		t.Errorf("expected submitted job %s in list", doc.JobID)
	}
}

func TestCapabilitiesReturnsWorkerDescriptor(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	c := New(ts.URL)
	caps, err := c.Capabilities(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if caps.WorkerID != "worker-test" {
		t.Errorf("expected worker_id worker-test, got %s", caps.WorkerID)
	}
}
