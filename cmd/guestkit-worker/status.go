package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssahani/guestkit-worker/pkg/client"
)

var statusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Show a job's tracked status",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	c := client.New(addr)

	status, err := c.Status(context.Background(), args[0])
	if err != nil {
		return translateClientErr(fmt.Errorf("get status: %w", err))
	}
	return printOutput(cmd, *status)
}
