package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssahani/guestkit-worker/pkg/client"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every job the worker is tracking",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	c := client.New(addr)

	statuses, err := c.List(context.Background())
	if err != nil {
		return translateClientErr(fmt.Errorf("list jobs: %w", err))
	}
	return printOutput(cmd, statuses)
}
