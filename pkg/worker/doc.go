/*
Package worker implements the worker daemon: the event loop that owns a
transport exclusively, pulls jobs from it, dispatches each to the shared
executor under a bounded concurrency limit, and translates the executor's
outcome back into an ack or nack on the transport.

# Architecture

	┌─────────────────────── WORKER DAEMON ───────────────────────┐
	│                                                               │
	│  ┌─────────────────────────────────────────────┐            │
	│  │              Daemon.Run event loop            │            │
	│  │  fetch_job -> spawn (bounded by semaphore)     │            │
	│  │  None      -> sleep(poll_interval)             │            │
	│  │  Err        -> log; sleep(error_backoff)       │            │
	│  └──────┬───────────────────────────┬────────────┘            │
	│         │                           │                         │
	│  ┌──────▼───────┐           ┌──────▼───────────┐            │
	│  │  Transport   │           │   Executor       │            │
	│  │  (exclusive) │           │   (shared)       │            │
	│  └──────────────┘           └──────────────────┘            │
	└───────────────────────────────────────────────────────────────┘

Shutdown: cancelling the context passed to Run stops the loop from
accepting new jobs and waits up to Config.ShutdownTimeout for in-flight
dispatches to finish. Jobs still running past that deadline are
abandoned — their result files are never written, and any external
tracker will see them stuck in a non-terminal state.
*/
package worker
