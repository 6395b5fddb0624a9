package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ssahani/guestkit-worker/pkg/jobspec"
)

func writeJobFile(t *testing.T, dir, filename string, doc *jobspec.Document) {
	t.Helper()
	data, err := jobspec.Marshal(doc)
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0o644); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}
}

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

func TestFetchJobFromExistingFile(t *testing.T) {
	root := t.TempDir()
	watchDir := filepath.Join(root, "watch")
	doneDir := filepath.Join(root, "done")
	failedDir := filepath.Join(root, "failed")
	if err := os.MkdirAll(watchDir, 0o755); err != nil {
		t.Fatalf("unexpected mkdir error: %v", err)
	}

	doc := newDoc(t)
	writeJobFile(t, watchDir, doc.JobID+".json", doc)

	tr, err := New(watchDir, doneDir, failedDir, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error creating transport: %v", err)
	}
	defer tr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	fetched, err := tr.FetchJob(ctx)
	if err != nil {
		t.Fatalf("unexpected fetch error: %v", err)
	}
	if fetched == nil {
		t.Fatal("expected a job to be fetched from the pre-existing file")
	}
	if fetched.JobID != doc.JobID {
		t.Errorf("expected job id %s, got %s", doc.JobID, fetched.JobID)
	}
}

func TestAckJobMovesFileToDone(t *testing.T) {
	root := t.TempDir()
	watchDir := filepath.Join(root, "watch")
	doneDir := filepath.Join(root, "done")
	failedDir := filepath.Join(root, "failed")
	if err := os.MkdirAll(watchDir, 0o755); err != nil {
		t.Fatalf("unexpected mkdir error: %v", err)
	}

	doc := newDoc(t)
	writeJobFile(t, watchDir, doc.JobID+".json", doc)

	tr, err := New(watchDir, doneDir, failedDir, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error creating transport: %v", err)
	}
	defer tr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := tr.FetchJob(ctx); err != nil {
		t.Fatalf("unexpected fetch error: %v", err)
	}

	if err := tr.AckJob(ctx, doc.JobID); err != nil {
		t.Fatalf("unexpected ack error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(doneDir, doc.JobID+".json")); err != nil {
		t.Errorf("expected job file to be moved to done directory: %v", err)
	}
	if _, err := os.Stat(filepath.Join(watchDir, doc.JobID+".json")); !os.IsNotExist(err) {
		t.Error("expected job file to no longer exist in watch directory")
	}
}

func TestNackJobMovesFileAndWritesReason(t *testing.T) {
	root := t.TempDir()
	watchDir := filepath.Join(root, "watch")
	doneDir := filepath.Join(root, "done")
	failedDir := filepath.Join(root, "failed")
	if err := os.MkdirAll(watchDir, 0o755); err != nil {
		t.Fatalf("unexpected mkdir error: %v", err)
	}

	doc := newDoc(t)
	writeJobFile(t, watchDir, doc.JobID+".json", doc)

	tr, err := New(watchDir, doneDir, failedDir, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error creating transport: %v", err)
	}
	defer tr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := tr.FetchJob(ctx); err != nil {
		t.Fatalf("unexpected fetch error: %v", err)
	}

	if err := tr.NackJob(ctx, doc.JobID, "handler unavailable"); err != nil {
		t.Fatalf("unexpected nack error: %v", err)
	}

	reasonData, err := os.ReadFile(filepath.Join(failedDir, doc.JobID+".reason.txt"))
	if err != nil {
		t.Fatalf("expected reason file to exist: %v", err)
	}
	if string(reasonData) != "handler unavailable" {
		t.Errorf("expected reason content, got %s", reasonData)
	}
}

func TestHealthCheckReportsDirectoryState(t *testing.T) {
	root := t.TempDir()
	watchDir := filepath.Join(root, "watch")
	doneDir := filepath.Join(root, "done")
	failedDir := filepath.Join(root, "failed")
	if err := os.MkdirAll(watchDir, 0o755); err != nil {
		t.Fatalf("unexpected mkdir error: %v", err)
	}

	tr, err := New(watchDir, doneDir, failedDir, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error creating transport: %v", err)
	}
	defer tr.Close()

	if !tr.HealthCheck(context.Background()) {
		t.Error("expected healthy transport with all directories present")
	}

	if err := os.RemoveAll(doneDir); err != nil {
		t.Fatalf("unexpected remove error: %v", err)
	}
	if tr.HealthCheck(context.Background()) {
		t.Error("expected unhealthy transport after removing done directory")
	}
}
