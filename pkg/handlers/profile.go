package handlers

import (
	"context"
	"fmt"

	"github.com/ssahani/guestkit-worker/pkg/handler"
	"github.com/ssahani/guestkit-worker/pkg/inspect"
	"github.com/ssahani/guestkit-worker/pkg/jobspec"
)

// ProfileHandler builds a performance/configuration profile of a disk
// image through the abstract inspection provider.
type ProfileHandler struct {
	handler.NoopCleanup
	provider inspect.Provider
}

// NewProfileHandler returns a ProfileHandler backed by provider.
func NewProfileHandler(provider inspect.Provider) *ProfileHandler {
	return &ProfileHandler{provider: provider}
}

// Name identifies the handler for logging.
func (h *ProfileHandler) Name() string { return "profile-handler" }

// Operations lists the operation names this handler supports.
func (h *ProfileHandler) Operations() []string { return []string{"guestkit.profile"} }

// Validate checks that the payload carries an image path.
func (h *ProfileHandler) Validate(payload jobspec.Payload) error {
	_, err := parseImageRef(payload.Data)
	return err
}

// Execute runs the profiling and returns its result as the result data.
func (h *ProfileHandler) Execute(ctx context.Context, hctx *handler.Context, payload jobspec.Payload) (*handler.Result, error) {
	image, err := parseImageRef(payload.Data)
	if err != nil {
		return nil, err
	}
	options, _ := extractMap(payload.Data, "options")

	hctx.ReportProgress("profiling", intPtr(0), fmt.Sprintf("profiling %s", image.Path))

	profile, err := h.provider.Profile(ctx, image, options)
	if err != nil {
		return nil, fmt.Errorf("profiling failed: %w", err)
	}

	hctx.ReportProgress("completing", intPtr(100), "profiling complete")

	return &handler.Result{Data: profile}, nil
}
