// Package file implements a filesystem dropbox transport: jobs arrive as
// JSON files dropped into a watch directory and are moved to a done or
// failed directory once the worker has disposed of them.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/ssahani/guestkit-worker/pkg/jobspec"
	"github.com/ssahani/guestkit-worker/pkg/log"
)

// Transport watches a directory for job documents and moves them to a
// done or failed directory once acknowledged or rejected.
type Transport struct {
	watchDir  string
	doneDir   string
	failedDir string

	pollInterval time.Duration

	watcher *fsnotify.Watcher
	pending chan string // filenames relative to watchDir

	mu         sync.Mutex
	fileByJob  map[string]string // job_id -> filename, set on fetch

	logger zerolog.Logger
	stopCh chan struct{}
}

// New creates the three configured directories if absent, starts watching
// watchDir for .json file creation, and enqueues any .json files already
// present.
func New(watchDir, doneDir, failedDir string, pollInterval time.Duration) (*Transport, error) {
	for _, dir := range []string{watchDir, doneDir, failedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create transport directory %s: %w", dir, err)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create filesystem watcher: %w", err)
	}
	if err := watcher.Add(watchDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch directory %s: %w", watchDir, err)
	}

	t := &Transport{
		watchDir:     watchDir,
		doneDir:      doneDir,
		failedDir:    failedDir,
		pollInterval: pollInterval,
		watcher:      watcher,
		pending:      make(chan string, 256),
		fileByJob:    make(map[string]string),
		logger:       log.WithComponent("transport.file"),
		stopCh:       make(chan struct{}),
	}

	if err := t.scanExisting(); err != nil {
		watcher.Close()
		return nil, err
	}

	go t.watch()

	return t, nil
}

// Close stops the watcher goroutine and releases its resources.
func (t *Transport) Close() error {
	close(t.stopCh)
	return t.watcher.Close()
}

func (t *Transport) scanExisting() error {
	entries, err := os.ReadDir(t.watchDir)
	if err != nil {
		return fmt.Errorf("scan watch directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		t.enqueue(entry.Name())
	}
	return nil
}

func (t *Transport) watch() {
	for {
		select {
		case event, ok := <-t.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			name := filepath.Base(event.Name)
			if !strings.HasSuffix(name, ".json") {
				continue
			}
			t.enqueue(name)
		case err, ok := <-t.watcher.Errors:
			if !ok {
				return
			}
			t.logger.Error().Err(err).Msg("filesystem watch error")
		case <-t.stopCh:
			return
		}
	}
}

func (t *Transport) enqueue(filename string) {
	select {
	case t.pending <- filename:
	default:
		t.logger.Warn().Str("file", filename).Msg("pending queue full, dropping watch notification; the file stays in the watch directory until a later create/write event or the next startup scan")
	}
}

// FetchJob returns the next parsed job document, or (nil, nil) if none
// arrives within the configured poll interval.
func (t *Transport) FetchJob(ctx context.Context) (*jobspec.Document, error) {
	select {
	case filename := <-t.pending:
		return t.readJob(filename)
	case <-time.After(t.pollInterval):
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *Transport) readJob(filename string) (*jobspec.Document, error) {
	path := filepath.Join(t.watchDir, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file %s: %w", filename, err)
	}
	doc, err := jobspec.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse job file %s: %w", filename, err)
	}

	t.mu.Lock()
	if _, inFlight := t.fileByJob[doc.JobID]; inFlight {
		// A second watch event for a file already handed out.
		t.mu.Unlock()
		return nil, nil
	}
	t.fileByJob[doc.JobID] = filename
	t.mu.Unlock()

	return doc, nil
}

func (t *Transport) filenameFor(jobID string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if filename, ok := t.fileByJob[jobID]; ok {
		delete(t.fileByJob, jobID)
		return filename
	}
	t.logger.Warn().Str("job_id", jobID).Msg("no tracked filename for job, falling back to <job_id>.json convention")
	return jobID + ".json"
}

// AckJob moves the job's file from the watch directory to the done
// directory.
func (t *Transport) AckJob(ctx context.Context, jobID string) error {
	filename := t.filenameFor(jobID)
	src := filepath.Join(t.watchDir, filename)
	dst := filepath.Join(t.doneDir, filename)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("ack job %s: move %s to done: %w", jobID, filename, err)
	}
	return nil
}

// NackJob moves the job's file to the failed directory and writes a
// sibling .reason.txt file with the human-readable reason.
func (t *Transport) NackJob(ctx context.Context, jobID string, reason string) error {
	filename := t.filenameFor(jobID)
	src := filepath.Join(t.watchDir, filename)
	dst := filepath.Join(t.failedDir, filename)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("nack job %s: move %s to failed: %w", jobID, filename, err)
	}

	reasonPath := filepath.Join(t.failedDir, strings.TrimSuffix(filename, ".json")+".reason.txt")
	if err := os.WriteFile(reasonPath, []byte(reason), 0o644); err != nil {
		return fmt.Errorf("nack job %s: write reason file: %w", jobID, err)
	}
	return nil
}

// HealthCheck reports whether all three directories exist and are
// accessible.
func (t *Transport) HealthCheck(ctx context.Context) bool {
	for _, dir := range []string{t.watchDir, t.doneDir, t.failedDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return false
		}
	}
	return true
}

// PendingCount reports the number of job files currently queued for
// fetch, satisfying metrics.QueueDepthSource.
func (t *Transport) PendingCount() int {
	return len(t.pending)
}
