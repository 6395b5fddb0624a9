/*
Package api implements the worker's REST surface: job submission, status
and result lookup, capability advertisement, and health/readiness probes.

# Architecture

The API server sits in front of an in-memory FIFO queue (pkg/transport/httpq)
shared with the worker daemon's event loop:

	┌──────────────── CLIENT (CLI / submitter) ───────────────┐
	│                                                          │
	│   HTTP + JSON                                            │
	└──────────────────────────┬───────────────────────────────┘
	                           │
	┌──────────────────────────▼──────────── WORKER PROCESS ───┐
	│                                                           │
	│   pkg/api.Server (net/http.ServeMux)                      │
	│     - validates and enqueues Job Documents                │
	│     - exposes status, result, capability, health          │
	│                                                           │
	│   pkg/transport/httpq.Transport (shared)                   │
	│     - FIFO queue + status map, popped by the worker loop   │
	│                                                           │
	│   pkg/result.Writer (shared)                               │
	│     - read back for the result endpoint                   │
	└───────────────────────────────────────────────────────────┘

Every job and capability response is wrapped in one of two envelopes:
{"success":true,"data":…} or {"error":<code>,"message":<text>,"details":…},
with HTTP status codes 200, 400, 404 or 500 chosen per the failure's
nature. The /health, /api/v1/health, /ready, /live and /metrics endpoints
return their bodies unwrapped.
*/
package api
