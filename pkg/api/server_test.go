package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ssahani/guestkit-worker/pkg/capability"
	"github.com/ssahani/guestkit-worker/pkg/jobspec"
	"github.com/ssahani/guestkit-worker/pkg/result"
	"github.com/ssahani/guestkit-worker/pkg/transport/httpq"
)

func newTestServer(t *testing.T) (*Server, *httpq.Transport, *result.Writer) {
	t.Helper()
	queue := httpq.New()
	results := result.NewWriter(t.TempDir())
	caps := capability.New("worker-test").WithOperation("guestkit.echo").Build()
	return NewServer(queue, results, caps), queue, results
}

func TestHandleSubmitAcceptsValidJob(t *testing.T) {
	srv, _, _ := newTestServer(t)

	doc, err := jobspec.NewBuilder().
		GenerateJobID().
		Operation("guestkit.echo").
		Payload("guestkit.echo.v1", map[string]any{}).
		Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	body, err := jobspec.Marshal(doc)
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var env successEnvelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if !env.Success {
		t.Error("expected success envelope")
	}
}

func TestHandleSubmitRejectsInvalidJob(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewReader([]byte(`{"version":"1.0"}`)))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHandleGetReturns404ForUnknownJob(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/job-does-not-exist", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestHandleListReturnsSubmittedJobs(t *testing.T) {
	srv, queue, _ := newTestServer(t)

	doc, err := jobspec.NewBuilder().
		GenerateJobID().
		Operation("guestkit.echo").
		Payload("guestkit.echo.v1", map[string]any{}).
		Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	if err := queue.Submit(doc); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var env struct {
		Success bool            `json:"success"`
		Data    []httpq.Status  `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if len(env.Data) != 1 {
		t.Fatalf("expected 1 tracked job, got %d", len(env.Data))
	}
}

func TestHandleResultReturnsCompletedEnvelope(t *testing.T) {
	srv, _, results := newTestServer(t)

	if _, err := results.WriteSuccess("job-abc123456", "worker-test", time.Now(), 1, "", "out.json", nil); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/job-abc123456/result", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestHandleCapabilitiesReturnsDescriptor(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/capabilities", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestHealthEndpointReachableThroughServer(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK && w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 200 or 503, got %d", w.Code)
	}
}
