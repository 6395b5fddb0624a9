// Package client is a trivial REST client wrapper over the worker's HTTP
// API, used by the CLI to submit jobs and poll their status. It is not
// part of the worker's core: a thin convenience layer over the same HTTP
// surface any other submitter could speak directly.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ssahani/guestkit-worker/pkg/capability"
	"github.com/ssahani/guestkit-worker/pkg/jobspec"
	"github.com/ssahani/guestkit-worker/pkg/result"
	"github.com/ssahani/guestkit-worker/pkg/transport/httpq"
)

// Client talks to a worker's REST API over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client targeting baseURL (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type successEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// APIError is returned when the worker responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("worker API error (%d): %s: %s", e.StatusCode, e.Code, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errEnv errorEnvelope
		_ = json.NewDecoder(resp.Body).Decode(&errEnv)
		return &APIError{StatusCode: resp.StatusCode, Code: errEnv.Error, Message: errEnv.Message}
	}

	if out == nil {
		return nil
	}

	var env successEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response envelope: %w", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

// SubmitResponse is returned by Submit.
type SubmitResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Submit posts a job document to the worker's submission endpoint.
func (c *Client) Submit(ctx context.Context, doc *jobspec.Document) (*SubmitResponse, error) {
	body, err := jobspec.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal job document: %w", err)
	}
	var out SubmitResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/jobs", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Status fetches a single job's tracked status.
func (c *Client) Status(ctx context.Context, jobID string) (*httpq.Status, error) {
	var out httpq.Status
	if err := c.do(ctx, http.MethodGet, "/api/v1/jobs/"+jobID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List fetches every tracked job status.
func (c *Client) List(ctx context.Context) ([]httpq.Status, error) {
	var out []httpq.Status
	if err := c.do(ctx, http.MethodGet, "/api/v1/jobs", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Result fetches a completed job's result envelope.
func (c *Client) Result(ctx context.Context, jobID string) (*result.Envelope, error) {
	var out result.Envelope
	if err := c.do(ctx, http.MethodGet, "/api/v1/jobs/"+jobID+"/result", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Capabilities fetches the worker's Capability Descriptor.
func (c *Client) Capabilities(ctx context.Context) (*capability.Descriptor, error) {
	var out capability.Descriptor
	if err := c.do(ctx, http.MethodGet, "/api/v1/capabilities", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HealthStatus mirrors pkg/metrics.HealthStatus's wire shape without
// importing the metrics package, since the health endpoint returns it
// unwrapped rather than inside a success envelope.
type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components,omitempty"`
	Message    string            `json:"message,omitempty"`
	Version    string            `json:"version,omitempty"`
	Uptime     string            `json:"uptime,omitempty"`
}

// Health fetches the worker's /health endpoint. Unlike the other REST
// methods this endpoint reports its status in the HTTP body even on a
// non-2xx response (503 for unhealthy), so it is decoded directly rather
// than through the success/error envelope.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request health: %w", err)
	}
	defer resp.Body.Close()

	var out HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode health response: %w", err)
	}
	return &out, nil
}

// WaitForCompletion polls Status until the job reaches a terminal state
// or ctx is done.
func (c *Client) WaitForCompletion(ctx context.Context, jobID string, pollInterval time.Duration) (*httpq.Status, error) {
	for {
		status, err := c.Status(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if status.State == httpq.StateCompleted || status.State == httpq.StateFailed {
			return status, nil
		}
		select {
		case <-time.After(pollInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
