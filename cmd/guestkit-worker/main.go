// Command guestkit-worker runs the VM-operations worker daemon and
// provides a small CLI for submitting jobs to it and inspecting their
// status.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssahani/guestkit-worker/pkg/log"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "guestkit-worker",
	Short: "VM-operations worker daemon and job submission CLI",
	Long: `guestkit-worker runs the VM-operations worker daemon: it pulls
self-describing job documents from a transport, dispatches them to a
registry of handlers under a bounded concurrency limit, and persists a
result envelope for each. The same binary also submits jobs to a running
daemon and inspects their status over the daemon's REST API.`,
	Version: Version,
}

// exitError carries the process exit code spec §6 requires: 0 success,
// 1 client-side error, 2 server-side error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func clientError(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: 1, err: err}
}

func serverError(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: 2, err: err}
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"guestkit-worker version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().String("addr", "http://localhost:8080", "Worker REST API base URL (used by submit/status/result/list/capabilities/health)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format for read commands: table|json|yaml")

	cobra.OnInitialize(initLogging)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	if !rootCmd.PersistentFlags().Changed("log-level") {
		if env := os.Getenv("LOG_LEVEL"); env != "" {
			logLevel = env
		}
	}
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}
