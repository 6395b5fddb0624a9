package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ssahani/guestkit-worker/pkg/capability"
	"github.com/ssahani/guestkit-worker/pkg/client"
	"github.com/ssahani/guestkit-worker/pkg/result"
	"github.com/ssahani/guestkit-worker/pkg/transport/httpq"
)

// printOutput renders v per the --output flag: table (default, type-aware),
// json, or yaml.
func printOutput(cmd *cobra.Command, v any) error {
	format, _ := cmd.Flags().GetString("output")

	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(v)
	case "table", "":
		return printTable(v)
	default:
		return clientError(fmt.Errorf("unknown output format %q (expected table, json or yaml)", format))
	}
}

func printTable(v any) error {
	switch val := v.(type) {
	case httpq.Status:
		return printStatusTable(val)
	case []httpq.Status:
		return printStatusListTable(val)
	case *result.Envelope:
		return printEnvelopeTable(val)
	case capability.Descriptor:
		return printCapabilitiesTable(val)
	case client.HealthStatus:
		return printHealthTable(val)
	default:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

func printStatusTable(s httpq.Status) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintf(w, "JOB ID\t%s\n", s.JobID)
	fmt.Fprintf(w, "STATE\t%s\n", s.State)
	fmt.Fprintf(w, "SUBMITTED\t%s\n", s.SubmittedAt)
	if s.StartedAt != nil {
		fmt.Fprintf(w, "STARTED\t%s\n", s.StartedAt)
	}
	if s.CompletedAt != nil {
		fmt.Fprintf(w, "COMPLETED\t%s\n", s.CompletedAt)
	}
	if s.Error != "" {
		fmt.Fprintf(w, "ERROR\t%s\n", s.Error)
	}
	return nil
}

func printStatusListTable(statuses []httpq.Status) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "JOB ID\tSTATE\tSUBMITTED")
	for _, s := range statuses {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.JobID, s.State, s.SubmittedAt)
	}
	return nil
}

func printEnvelopeTable(e *result.Envelope) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintf(w, "JOB ID\t%s\n", e.JobID)
	fmt.Fprintf(w, "STATUS\t%s\n", e.Status)
	fmt.Fprintf(w, "WORKER ID\t%s\n", e.WorkerID)
	fmt.Fprintf(w, "DURATION\t%ds\n", e.ExecutionSummary.DurationSeconds)
	fmt.Fprintf(w, "ATTEMPT\t%d\n", e.ExecutionSummary.Attempt)
	if e.Error != nil {
		fmt.Fprintf(w, "ERROR CODE\t%s\n", e.Error.Code)
		fmt.Fprintf(w, "ERROR MESSAGE\t%s\n", e.Error.Message)
	}
	return nil
}

func printHealthTable(h client.HealthStatus) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintf(w, "STATUS\t%s\n", h.Status)
	fmt.Fprintf(w, "UPTIME\t%s\n", h.Uptime)
	if h.Version != "" {
		fmt.Fprintf(w, "VERSION\t%s\n", h.Version)
	}
	if h.Message != "" {
		fmt.Fprintf(w, "MESSAGE\t%s\n", h.Message)
	}
	for name, status := range h.Components {
		fmt.Fprintf(w, "COMPONENT %s\t%s\n", name, status)
	}
	return nil
}

func printCapabilitiesTable(c capability.Descriptor) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintf(w, "WORKER ID\t%s\n", c.WorkerID)
	fmt.Fprintf(w, "OPERATIONS\t%v\n", c.Operations)
	fmt.Fprintf(w, "FEATURES\t%v\n", c.Features)
	fmt.Fprintf(w, "DISK FORMATS\t%v\n", c.DiskFormats)
	fmt.Fprintf(w, "MAX CONCURRENT JOBS\t%d\n", c.MaxConcurrentJobs)
	fmt.Fprintf(w, "MAX DISK SIZE (GB)\t%d\n", c.MaxDiskSizeGB)
	return nil
}
