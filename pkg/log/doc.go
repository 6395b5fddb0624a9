/*
Package log provides structured logging for the worker daemon using zerolog.

The log package wraps zerolog to provide JSON-structured logging with
component-specific loggers, configurable log levels, and helper functions for
common logging patterns. All logs include timestamps and support filtering by
severity level for production debugging.

# Architecture

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                    │          │
	│  │  - Zerolog instance                         │          │
	│  │  - Initialized via log.Init()               │          │
	│  │  - Thread-safe for concurrent use           │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Configuration                     │          │
	│  │  - Level: debug/info/warn/error             │          │
	│  │  - Format: JSON or console (human)          │          │
	│  │  - Output: stdout, file, or custom writer   │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Component Loggers                   │          │
	│  │  - WithComponent("executor")                │          │
	│  │  - WithWorkerID("worker-abc123")             │          │
	│  │  - WithJobID("job-01h...")                   │          │
	│  │  - WithOperation("guestkit.inspect")         │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │            Log Output                       │          │
	│  │  {"level":"info","component":"executor",    │          │
	│  │   "job_id":"job-01h...","message":"done"}   │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Usage

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})

	jobLog := log.WithJobID(job.JobID)
	jobLog.Info().Str("operation", job.Operation).Msg("job accepted")

	log.Logger.Error().Err(err).Str("job_id", job.JobID).Msg("execution failed")

# Integration Points

This package is used by:

  - pkg/executor: logs validate/run/persist transitions per job
  - pkg/worker: logs daemon lifecycle, fetch-loop activity, shutdown
  - pkg/transport/file and pkg/transport/httpq: log transport errors
  - pkg/api: logs request handling
  - cmd/guestkit-worker: logs CLI subcommand activity

# Best Practices

Do:
  - Use Info level for production
  - Create job/worker-scoped loggers rather than the bare global Logger
  - Log errors with .Err() so zerolog attaches the error field

Don't:
  - Log job payload contents (may carry operator-supplied paths/credentials)
  - Use Debug level in production
*/
package log
