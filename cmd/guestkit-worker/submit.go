package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ssahani/guestkit-worker/pkg/client"
	"github.com/ssahani/guestkit-worker/pkg/jobspec"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a job to the worker",
	Long: `Submit a job document to a running worker daemon's REST API.

A full job document can be read from a file or passed inline; for simple
jobs, --operation/--payload-type/--payload build one on the fly.`,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringP("file", "f", "", "Path to a job document JSON file")
	submitCmd.Flags().String("inline", "", "Inline job document JSON")
	submitCmd.Flags().String("operation", "", "Build a job for this operation instead of reading a document")
	submitCmd.Flags().String("payload-type", "", "Payload type discriminator, required with --operation")
	submitCmd.Flags().String("payload", "{}", "Payload data as inline JSON, used with --operation")
	submitCmd.Flags().String("trace-id", "", "Observability trace ID (defaults to a generated UUID)")
	submitCmd.Flags().Bool("wait", false, "Block until the job reaches a terminal state")
	submitCmd.Flags().Duration("poll-interval", time.Second, "Polling interval when --wait is set")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	filePath, _ := cmd.Flags().GetString("file")
	inline, _ := cmd.Flags().GetString("inline")
	operation, _ := cmd.Flags().GetString("operation")
	payloadType, _ := cmd.Flags().GetString("payload-type")
	payloadRaw, _ := cmd.Flags().GetString("payload")
	traceID, _ := cmd.Flags().GetString("trace-id")
	wait, _ := cmd.Flags().GetBool("wait")
	pollInterval, _ := cmd.Flags().GetDuration("poll-interval")
	addr, _ := cmd.Flags().GetString("addr")

	doc, err := resolveJobDocument(filePath, inline, operation, payloadType, payloadRaw, traceID)
	if err != nil {
		return err
	}

	c := client.New(addr)
	ctx := context.Background()
	resp, err := c.Submit(ctx, doc)
	if err != nil {
		return translateClientErr(err)
	}
	fmt.Printf("job submitted: %s (%s)\n", resp.JobID, resp.Status)

	if !wait {
		return nil
	}

	status, err := c.WaitForCompletion(ctx, resp.JobID, pollInterval)
	if err != nil {
		return translateClientErr(err)
	}
	return printOutput(cmd, *status)
}

func resolveJobDocument(filePath, inline, operation, payloadType, payloadRaw, traceID string) (*jobspec.Document, error) {
	switch {
	case filePath != "":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, clientError(fmt.Errorf("read job file: %w", err))
		}
		doc, err := jobspec.Parse(data)
		if err != nil {
			return nil, clientError(fmt.Errorf("parse job document: %w", err))
		}
		return doc, nil

	case inline != "":
		doc, err := jobspec.Parse([]byte(inline))
		if err != nil {
			return nil, clientError(fmt.Errorf("parse inline job document: %w", err))
		}
		return doc, nil

	case operation != "":
		if payloadType == "" {
			return nil, clientError(fmt.Errorf("--payload-type is required with --operation"))
		}
		var payloadData map[string]any
		if err := json.Unmarshal([]byte(payloadRaw), &payloadData); err != nil {
			return nil, clientError(fmt.Errorf("parse --payload: %w", err))
		}
		if traceID == "" {
			traceID = uuid.New().String()
		}
		doc, err := jobspec.NewBuilder().
			GenerateJobID().
			Operation(operation).
			Payload(payloadType, payloadData).
			TraceID(traceID).
			Build()
		if err != nil {
			return nil, clientError(fmt.Errorf("build job document: %w", err))
		}
		return doc, nil

	default:
		return nil, clientError(fmt.Errorf("one of --file, --inline or --operation is required"))
	}
}

// translateClientErr maps a pkg/client error onto the CLI's exit-code
// contract: a response the worker itself returned (even an error one) is
// client-side if it's a 4xx, server-side if 5xx; anything else (the worker
// unreachable, a malformed response) is treated as server-side since the
// submitter did nothing wrong.
func translateClientErr(err error) error {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return serverError(err)
	}
	if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		return clientError(apiErr)
	}
	return serverError(apiErr)
}
