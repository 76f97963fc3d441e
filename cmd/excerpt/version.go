package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/excerpt/internal/mcptools"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the excerpt version",
		Args:  cobra.NoArgs,
		// No configuration needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), mcptools.Version())
		},
	}
}
