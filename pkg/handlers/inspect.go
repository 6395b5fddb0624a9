package handlers

import (
	"context"
	"fmt"

	"github.com/ssahani/guestkit-worker/pkg/handler"
	"github.com/ssahani/guestkit-worker/pkg/inspect"
	"github.com/ssahani/guestkit-worker/pkg/jobspec"
)

// InspectHandler runs a read-only inspection of a disk image through the
// abstract inspection provider.
type InspectHandler struct {
	handler.NoopCleanup
	provider inspect.Provider
}

// NewInspectHandler returns an InspectHandler backed by provider.
func NewInspectHandler(provider inspect.Provider) *InspectHandler {
	return &InspectHandler{provider: provider}
}

// Name identifies the handler for logging.
func (h *InspectHandler) Name() string { return "inspect-handler" }

// Operations lists the operation names this handler supports.
func (h *InspectHandler) Operations() []string { return []string{"guestkit.inspect"} }

// Validate checks that the payload carries an image path.
func (h *InspectHandler) Validate(payload jobspec.Payload) error {
	_, err := parseImageRef(payload.Data)
	return err
}

// Execute runs the inspection and returns its report as the result data.
func (h *InspectHandler) Execute(ctx context.Context, hctx *handler.Context, payload jobspec.Payload) (*handler.Result, error) {
	image, err := parseImageRef(payload.Data)
	if err != nil {
		return nil, err
	}
	options, _ := extractMap(payload.Data, "options")

	hctx.ReportProgress("inspecting", intPtr(0), fmt.Sprintf("inspecting %s", image.Path))

	report, err := h.provider.Inspect(ctx, image, options)
	if err != nil {
		return nil, fmt.Errorf("inspection failed: %w", err)
	}

	hctx.ReportProgress("completing", intPtr(100), "inspection complete")

	return &handler.Result{Data: report}, nil
}

func parseImageRef(data any) (inspect.ImageRef, error) {
	imageMap, err := extractMap(data, "image")
	if err != nil {
		return inspect.ImageRef{}, err
	}
	path, _ := imageMap["path"].(string)
	if path == "" {
		return inspect.ImageRef{}, fmt.Errorf("payload.data.image.path is required")
	}
	format, _ := imageMap["format"].(string)
	readOnly, _ := imageMap["read_only"].(bool)
	return inspect.ImageRef{Path: path, Format: format, ReadOnly: readOnly}, nil
}

func extractMap(data any, key string) (map[string]any, error) {
	root, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("payload.data must be an object")
	}
	val, ok := root[key]
	if !ok {
		return map[string]any{}, nil
	}
	m, ok := val.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("payload.data.%s must be an object", key)
	}
	return m, nil
}
