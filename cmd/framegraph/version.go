package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/framegraph"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of framegraph",
		// The version needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "framegraph version %s\n", strings.TrimSpace(framegraph.Version))
		},
	}
}
