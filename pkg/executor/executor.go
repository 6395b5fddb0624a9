// Package executor runs a single validated job from start to persisted
// result: protocol validation, handler dispatch under a deadline, and
// translation of the outcome into a result envelope and state transition.
package executor

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/ssahani/guestkit-worker/pkg/handler"
	"github.com/ssahani/guestkit-worker/pkg/jobspec"
	"github.com/ssahani/guestkit-worker/pkg/log"
	"github.com/ssahani/guestkit-worker/pkg/metrics"
	"github.com/ssahani/guestkit-worker/pkg/progress"
	"github.com/ssahani/guestkit-worker/pkg/result"
	"github.com/ssahani/guestkit-worker/pkg/state"
)

const defaultTimeoutSeconds = 3600

// Outcome classifies how a job execution ended.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
	OutcomeTimeout
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// TimeoutError is returned when a job's execution deadline elapses before
// the handler completes.
type TimeoutError struct {
	JobID          string
	TimeoutSeconds int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("job %s exceeded its %ds timeout", e.JobID, e.TimeoutSeconds)
}

// ResultPublisher receives a successful handler result's data immediately
// after a job completes, so a transport can show it in its status record
// (httpq.Transport.SetResult does). The result envelope written by the
// Result Writer does not carry this data.
type ResultPublisher interface {
	SetResult(jobID string, result any)
}

// Executor runs validated jobs end to end: validation, dispatch to a
// registered handler under a deadline, and persistence of the outcome.
type Executor struct {
	workerID  string
	workDir   string
	registry  *handler.Registry
	results   *result.Writer
	hook      metrics.Hook
	cache     *idempotencyCache
	publisher ResultPublisher
	logger    zerolog.Logger
}

// New returns an Executor bound to workerID, dispatching to registry and
// persisting outcomes through results. A nil hook defaults to NullHook.
func New(workerID, workDir string, registry *handler.Registry, results *result.Writer, hook metrics.Hook) *Executor {
	if hook == nil {
		hook = metrics.NullHook{}
	}
	return &Executor{
		workerID: workerID,
		workDir:  workDir,
		registry: registry,
		results:  results,
		hook:     hook,
		cache:    newIdempotencyCache(),
		logger:   log.WithComponent("executor"),
	}
}

// SetResultPublisher registers a publisher notified with a handler's raw
// result data on every successful execution. Optional; nil by default.
func (e *Executor) SetResultPublisher(p ResultPublisher) {
	e.publisher = p
}

type handlerOutcome struct {
	res *handler.Result
	err error
}

// Execute runs one job from start to persisted result. Handler errors and
// timeouts are translated into failure envelopes and state transitions; a
// panic raised inside a handler is not recovered.
func (e *Executor) Execute(ctx context.Context, doc *jobspec.Document) (Outcome, error) {
	startedAt := time.Now().UTC()
	logger := e.logger.With().Str("job_id", doc.JobID).Str("operation", doc.Operation).Logger()

	idempotencyKey := ""
	if doc.Execution != nil {
		idempotencyKey = doc.Execution.IdempotencyKey
	}

	if idempotencyKey != "" {
		if _, ok := e.cache.lookup(idempotencyKey); ok {
			logger.Info().Str("idempotency_key", idempotencyKey).Msg("idempotency cache hit, skipping execution")
			return OutcomeSuccess, nil
		}
		if e.results.Exists(doc.JobID) {
			logger.Info().Msg("result already exists on disk, treating as idempotency hit")
			e.cache.store(idempotencyKey, e.results.Path(doc.JobID))
			return OutcomeSuccess, nil
		}
	}

	machine := state.NewMachine()

	attempt := 1
	if doc.Execution != nil && doc.Execution.Attempt > 0 {
		attempt = doc.Execution.Attempt
	}

	if err := machine.Transition(state.Queued); err != nil {
		return OutcomeFailure, err
	}

	if err := e.validate(doc); err != nil {
		logger.Warn().Err(err).Msg("validation failed")
		if _, werr := e.results.WriteFailure(doc.JobID, e.workerID, startedAt, attempt, "VALIDATION_ERROR", err.Error(), "validation", false); werr != nil {
			logger.Error().Err(werr).Msg("failed to write validation failure envelope")
		}
		e.hook.JobCompleted(doc.Operation, "failed", time.Since(startedAt).Seconds())
		return OutcomeFailure, err
	}

	h, _ := e.registry.Get(doc.Operation)

	if err := machine.Transition(state.Assigned); err != nil {
		return OutcomeFailure, err
	}
	if err := machine.Transition(state.Running); err != nil {
		return OutcomeFailure, err
	}

	timeoutSeconds := defaultTimeoutSeconds
	if doc.Execution != nil && doc.Execution.TimeoutSeconds > 0 {
		timeoutSeconds = doc.Execution.TimeoutSeconds
	}

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSeconds)*time.Second)
	defer cancel()

	tracker, events := progress.New(doc.JobID)
	hctx := &handler.Context{
		JobID:    doc.JobID,
		WorkerID: e.workerID,
		WorkDir:  filepath.Join(e.workDir, doc.JobID),
		Progress: tracker,
	}

	drainDone := make(chan struct{})
	go e.drainProgress(events, logger, drainDone)

	e.hook.ActiveJobStarted()
	defer e.hook.ActiveJobFinished()

	handlerStart := time.Now()
	resultCh := make(chan handlerOutcome, 1)
	go func() {
		res, err := h.Execute(runCtx, hctx, doc.Payload)
		resultCh <- handlerOutcome{res: res, err: err}
	}()

	var outcome Outcome
	var execErr error

	select {
	case out := <-resultCh:
		tracker.Close()
		<-drainDone
		handlerStatus := "completed"
		if out.err != nil {
			handlerStatus = "failed"
		}
		e.hook.HandlerExecuted(h.Name(), handlerStatus, time.Since(handlerStart).Seconds())
		if out.err != nil {
			execErr = out.err
			if tErr := machine.Transition(state.Failed); tErr != nil {
				logger.Error().Err(tErr).Msg("state transition failed")
			}
			if _, werr := e.results.WriteFailure(doc.JobID, e.workerID, startedAt, attempt, "EXECUTION_ERROR", out.err.Error(), "execution", true); werr != nil {
				logger.Error().Err(werr).Msg("failed to write execution failure envelope")
			}
			e.hook.JobCompleted(doc.Operation, "failed", time.Since(startedAt).Seconds())
			outcome = OutcomeFailure
		} else {
			if tErr := machine.Transition(state.Completed); tErr != nil {
				logger.Error().Err(tErr).Msg("state transition failed")
			}
			var outputFile string
			var artifacts []string
			if out.res != nil {
				outputFile = out.res.OutputFile
				artifacts = out.res.Artifacts
			}
			path, werr := e.results.WriteSuccess(doc.JobID, e.workerID, startedAt, attempt, idempotencyKey, outputFile, artifacts)
			if werr != nil {
				logger.Error().Err(werr).Msg("failed to write success envelope")
			} else if idempotencyKey != "" {
				e.cache.store(idempotencyKey, path)
			}
			if e.publisher != nil && out.res != nil {
				e.publisher.SetResult(doc.JobID, out.res.Data)
			}
			e.hook.JobCompleted(doc.Operation, "completed", time.Since(startedAt).Seconds())
			outcome = OutcomeSuccess
		}

	case <-runCtx.Done():
		// The handler goroutine may still be running past this point; it is
		// not forcibly aborted, only detached. No further state transitions
		// or result writes happen for this job once Timeout is reached.
		tracker.Close()
		<-drainDone
		if tErr := machine.Transition(state.Timeout); tErr != nil {
			logger.Error().Err(tErr).Msg("state transition failed")
		}
		if _, werr := e.results.WriteTimeout(doc.JobID, e.workerID, startedAt, attempt, timeoutSeconds); werr != nil {
			logger.Error().Err(werr).Msg("failed to write timeout envelope")
		}
		e.hook.JobCompleted(doc.Operation, "timeout", time.Since(startedAt).Seconds())
		execErr = &TimeoutError{JobID: doc.JobID, TimeoutSeconds: timeoutSeconds}
		outcome = OutcomeTimeout
	}

	if cerr := h.Cleanup(context.Background(), hctx); cerr != nil {
		logger.Warn().Err(cerr).Msg("handler cleanup failed")
	}

	return outcome, execErr
}

func (e *Executor) validate(doc *jobspec.Document) error {
	if err := jobspec.Validate(doc); err != nil {
		return err
	}
	h, ok := e.registry.Get(doc.Operation)
	if !ok {
		return fmt.Errorf("operation %q has no registered handler", doc.Operation)
	}
	if err := h.Validate(doc.Payload); err != nil {
		return fmt.Errorf("payload validation: %w", err)
	}
	return nil
}

func (e *Executor) drainProgress(events <-chan progress.Event, logger zerolog.Logger, done chan<- struct{}) {
	defer close(done)
	for ev := range events {
		logger.Debug().
			Uint64("sequence", ev.Sequence).
			Str("phase", ev.Phase).
			Str("message", ev.Message).
			Msg("progress")
	}
}
