package main

import (
	"github.com/civickey/civickey/internal/cli"
	"github.com/spf13/cobra"
)

// openApp wires the client for a command. Callers must Close it.
func openApp(cmd *cobra.Command) (*cli.App, error) {
	return cli.Open(cmd.Context(), cfg, logger)
}
