// Package handlers provides the worker's built-in operation handlers:
// echo (connectivity/testing), inspect and profile (thin wrappers over
// the abstract inspection provider).
package handlers

import (
	"context"

	"github.com/ssahani/guestkit-worker/pkg/handler"
	"github.com/ssahani/guestkit-worker/pkg/jobspec"
)

// EchoHandler reflects its payload back as the result data. Useful for
// connectivity testing and as a template for new handlers.
type EchoHandler struct {
	handler.NoopValidator
	handler.NoopCleanup
}

// NewEchoHandler returns a ready-to-register EchoHandler.
func NewEchoHandler() *EchoHandler {
	return &EchoHandler{}
}

// Name identifies the handler for logging.
func (h *EchoHandler) Name() string { return "echo-handler" }

// Operations lists the operation names this handler supports.
func (h *EchoHandler) Operations() []string {
	return []string{"system.echo", "test.echo"}
}

// Execute echoes the payload data back as the handler result.
func (h *EchoHandler) Execute(ctx context.Context, hctx *handler.Context, payload jobspec.Payload) (*handler.Result, error) {
	hctx.ReportProgress("starting", intPtr(0), "echo handler starting")
	hctx.ReportProgress("processing", intPtr(50), "processing payload")
	hctx.ReportProgress("completing", intPtr(100), "echo complete")

	return &handler.Result{
		Data: map[string]any{
			"echo":    payload.Data,
			"message": "echo handler executed successfully",
		},
	}, nil
}

func intPtr(v int) *int { return &v }
