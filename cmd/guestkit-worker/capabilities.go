package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssahani/guestkit-worker/pkg/client"
)

var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities",
	Short: "Show the worker's advertised Capability Descriptor",
	RunE:  runCapabilities,
}

func init() {
	rootCmd.AddCommand(capabilitiesCmd)
}

func runCapabilities(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	c := client.New(addr)

	caps, err := c.Capabilities(context.Background())
	if err != nil {
		return translateClientErr(fmt.Errorf("get capabilities: %w", err))
	}
	return printOutput(cmd, *caps)
}
