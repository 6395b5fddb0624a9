// Package worker implements the worker daemon: the event loop that pulls
// jobs from a transport, dispatches them to the executor under a bounded
// concurrency limit, and translates the outcome back into an ack or nack.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ssahani/guestkit-worker/pkg/capability"
	"github.com/ssahani/guestkit-worker/pkg/executor"
	"github.com/ssahani/guestkit-worker/pkg/handler"
	"github.com/ssahani/guestkit-worker/pkg/jobspec"
	"github.com/ssahani/guestkit-worker/pkg/log"
	"github.com/ssahani/guestkit-worker/pkg/transport"
)

// Config holds the daemon's operational parameters.
type Config struct {
	WorkerID          string
	Pool              string
	WorkDir           string
	ResultDir         string
	MaxConcurrentJobs int
	PollInterval      time.Duration
	ErrorBackoff      time.Duration
	ShutdownTimeout   time.Duration
}

// DefaultConfig returns sane defaults for fields Config leaves zero.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentJobs: 4,
		PollInterval:      2 * time.Second,
		ErrorBackoff:      5 * time.Second,
		ShutdownTimeout:   30 * time.Second,
	}
}

// Daemon owns the transport exclusively and shares the registry and
// executor with nothing else running concurrently against the same
// transport.
type Daemon struct {
	cfg       Config
	caps      capability.Descriptor
	registry  *handler.Registry
	executor  *executor.Executor
	transport transport.Transport

	sem    chan struct{}
	wg     sync.WaitGroup
	logger zerolog.Logger
}

// New assembles a Daemon. registry is shared read-only once built; tp is
// owned exclusively by the daemon for the lifetime of Run.
func New(cfg Config, caps capability.Descriptor, registry *handler.Registry, exec *executor.Executor, tp transport.Transport) *Daemon {
	if cfg.MaxConcurrentJobs <= 0 {
		cfg.MaxConcurrentJobs = 1
	}
	return &Daemon{
		cfg:       cfg,
		caps:      caps,
		registry:  registry,
		executor:  exec,
		transport: tp,
		sem:       make(chan struct{}, cfg.MaxConcurrentJobs),
		logger:    log.WithComponent("worker"),
	}
}

// Run drives the fetch/dispatch event loop until ctx is cancelled. On
// cancellation it stops accepting new jobs and waits up to
// ShutdownTimeout for in-flight jobs to finish before returning.
func (d *Daemon) Run(ctx context.Context) error {
	d.logger.Info().
		Str("worker_id", d.cfg.WorkerID).
		Int("max_concurrent_jobs", d.cfg.MaxConcurrentJobs).
		Msg("worker daemon starting")

	for {
		select {
		case <-ctx.Done():
			return d.drain()
		default:
		}

		job, err := d.transport.FetchJob(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return d.drain()
			}
			d.logger.Error().Err(err).Msg("fetch_job failed")
			d.sleep(ctx, d.cfg.ErrorBackoff)
			continue
		}

		if job == nil {
			d.sleep(ctx, d.cfg.PollInterval)
			continue
		}

		select {
		case d.sem <- struct{}{}:
		case <-ctx.Done():
			return d.drain()
		}

		d.wg.Add(1)
		go d.dispatch(job)
	}
}

func (d *Daemon) sleep(ctx context.Context, interval time.Duration) {
	select {
	case <-time.After(interval):
	case <-ctx.Done():
	}
}

// drain waits up to ShutdownTimeout for in-flight jobs, then returns
// regardless. In-flight jobs that have not reached a terminal state by
// the deadline are abandoned per the daemon's shutdown contract.
func (d *Daemon) drain() error {
	d.logger.Info().Dur("timeout", d.cfg.ShutdownTimeout).Msg("worker daemon shutting down, draining in-flight jobs")

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info().Msg("all in-flight jobs completed, worker daemon stopped")
	case <-time.After(d.cfg.ShutdownTimeout):
		d.logger.Warn().Msg("shutdown timeout elapsed with jobs still in flight; abandoning them")
	}
	return nil
}

func (d *Daemon) dispatch(job *jobspec.Document) {
	defer d.wg.Done()
	defer func() { <-d.sem }()

	logger := d.logger.With().Str("job_id", job.JobID).Str("operation", job.Operation).Logger()

	outcome, err := d.executor.Execute(context.Background(), job)

	switch outcome {
	case executor.OutcomeSuccess:
		if ackErr := d.transport.AckJob(context.Background(), job.JobID); ackErr != nil {
			logger.Error().Err(ackErr).Msg("ack_job failed after successful execution")
		}
	default:
		reason := "execution failed"
		if err != nil {
			reason = err.Error()
		}
		if nackErr := d.transport.NackJob(context.Background(), job.JobID, reason); nackErr != nil {
			logger.Error().Err(nackErr).Msg("nack_job failed after unsuccessful execution")
		}
	}
}

// Capabilities returns the daemon's advertised Capability Descriptor.
func (d *Daemon) Capabilities() capability.Descriptor {
	return d.caps
}
