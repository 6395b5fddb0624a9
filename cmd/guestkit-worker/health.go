package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssahani/guestkit-worker/pkg/client"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the worker's health endpoint",
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	c := client.New(addr)

	health, err := c.Health(context.Background())
	if err != nil {
		return serverError(fmt.Errorf("get health: %w", err))
	}
	if err := printOutput(cmd, *health); err != nil {
		return err
	}
	if health.Status == "unhealthy" {
		return serverError(fmt.Errorf("worker reports unhealthy status"))
	}
	return nil
}
