package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssahani/guestkit-worker/pkg/client"
)

var resultCmd = &cobra.Command{
	Use:   "result <job-id>",
	Short: "Fetch a completed job's result envelope",
	Args:  cobra.ExactArgs(1),
	RunE:  runResult,
}

func init() {
	rootCmd.AddCommand(resultCmd)
}

func runResult(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	c := client.New(addr)

	env, err := c.Result(context.Background(), args[0])
	if err != nil {
		return translateClientErr(fmt.Errorf("get result: %w", err))
	}
	return printOutput(cmd, env)
}
