/*
Package client provides a Go client library for a worker's REST API.

	┌──────────────── APPLICATION / CLI CODE ────────────────┐
	│                                                          │
	│  c := client.New("http://worker:8080")                  │
	│  resp, err := c.Submit(ctx, doc)                        │
	│  status, err := c.WaitForCompletion(ctx, resp.JobID, ..)│
	│                                                          │
	└───────────────────────┬─────────────────────────────────┘
	                        │ net/http + JSON
	                        ▼
	              pkg/api.Server REST surface

Every method except WaitForCompletion maps onto a single worker REST
endpoint; WaitForCompletion polls Status until the job is terminal. Each
method except Health decodes the success/error envelope pkg/api defines;
Health decodes the unwrapped /health body. Non-2xx responses surface as
*APIError carrying the HTTP status and the worker's error code.
*/
package client
