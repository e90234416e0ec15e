package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFramesCmd(a *app) *cobra.Command {
	var fixture string

	cmd := &cobra.Command{
		Use:   "frames",
		Short: "List the frames of a fixture in lexicographic order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadFixtureGraph(fixture)
			if err != nil {
				return err
			}
			defer g.Dispose()

			for _, name := range g.ListFrames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&fixture, "fixture", "f", "", "Fixture file (defaults to feeds.file.path)")
	return cmd
}
