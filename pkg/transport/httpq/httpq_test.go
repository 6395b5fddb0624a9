package httpq

import (
	"context"
	"testing"

	"github.com/ssahani/guestkit-worker/pkg/jobspec"
)

func newDoc(t *testing.T) *jobspec.Document {
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

func TestSubmitAndFetchFIFOOrder(t *testing.T) {
	tr := New()
	first := newDoc(t)
	second := newDoc(t)

	if err := tr.Submit(first); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	if err := tr.Submit(second); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}

	got1, err := tr.FetchJob(context.Background())
	if err != nil {
		t.Fatalf("unexpected fetch error: %v", err)
	}
	if got1.JobID != first.JobID {
		t.Errorf("expected FIFO order, got %s first", got1.JobID)
	}

	got2, err := tr.FetchJob(context.Background())
	if err != nil {
		t.Fatalf("unexpected fetch error: %v", err)
	}
	if got2.JobID != second.JobID {
		t.Errorf("expected FIFO order, got %s second", got2.JobID)
	}
}

func TestFetchJobOnEmptyQueueReturnsNil(t *testing.T) {
	tr := New()
	doc, err := tr.FetchJob(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc != nil {
		t.Error("expected nil document on empty queue")
	}
}

func TestAckJobTransitionsToCompleted(t *testing.T) {
	tr := New()
	doc := newDoc(t)
	if err := tr.Submit(doc); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	if _, err := tr.FetchJob(context.Background()); err != nil {
		t.Fatalf("unexpected fetch error: %v", err)
	}
	if err := tr.AckJob(context.Background(), doc.JobID); err != nil {
		t.Fatalf("unexpected ack error: %v", err)
	}

	status, ok := tr.Status(doc.JobID)
	if !ok {
		t.Fatal("expected status to be tracked")
	}
	if status.State != StateCompleted {
		t.Errorf("expected state completed, got %s", status.State)
	}
	if status.CompletedAt == nil {
		t.Error("expected completed_at to be stamped")
	}
}

func TestNackJobRecordsReason(t *testing.T) {
	tr := New()
	doc := newDoc(t)
	if err := tr.Submit(doc); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	if _, err := tr.FetchJob(context.Background()); err != nil {
		t.Fatalf("unexpected fetch error: %v", err)
	}
	if err := tr.NackJob(context.Background(), doc.JobID, "disk not found"); err != nil {
		t.Fatalf("unexpected nack error: %v", err)
	}

	status, ok := tr.Status(doc.JobID)
	if !ok {
		t.Fatal("expected status to be tracked")
	}
	if status.State != StateFailed {
		t.Errorf("expected state failed, got %s", status.State)
	}
	if status.Error != "disk not found" {
		t.Errorf("expected reason to be recorded, got %s", status.Error)
	}
}

func TestSubmitDuplicateJobIDRejected(t *testing.T) {
	tr := New()
	doc := newDoc(t)
	if err := tr.Submit(doc); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	if err := tr.Submit(doc); err == nil {
		t.Fatal("expected duplicate submission to be rejected")
	}
}

func TestPendingCountReflectsQueueDepth(t *testing.T) {
	tr := New()
	if tr.PendingCount() != 0 {
		t.Fatalf("expected 0 pending, got %d", tr.PendingCount())
	}
	if err := tr.Submit(newDoc(t)); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	if tr.PendingCount() != 1 {
		t.Fatalf("expected 1 pending, got %d", tr.PendingCount())
	}
}
