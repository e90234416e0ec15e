package main

import (
	"fmt"

	"github.com/aretw0/framegraph/internal/validator"
	"github.com/aretw0/framegraph/pkg/adapters/file"
	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	var (
		fixture string
		world   string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a fixture for consistency",
		Long: `Lints a fixture as an attachment tree: malformed edges, frames with several
parents, cycles and frames unreachable from the world frame are errors;
duplicate or shadowed edges are warnings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.fixturePath(fixture)
			if err != nil {
				return err
			}
			fx, err := file.Load(path)
			if err != nil {
				return err
			}
			if world == "" {
				world = a.cfg.WorldFrame
			}

			report := validator.ValidateFixture(fx, world)
			w := cmd.OutOrStdout()
			for _, is := range report.Issues {
				fmt.Fprintf(w, "%-7s %-16s %s\n", is.Severity, is.Code, is.Message)
			}
			if err := report.Err(); err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			fmt.Fprintf(w, "Fixture is valid: %d frames, %d edges ✅\n", report.Frames, report.Edges)
			return nil
		},
	}

	cmd.Flags().StringVarP(&fixture, "fixture", "f", "", "Fixture file (defaults to feeds.file.path)")
	cmd.Flags().StringVar(&world, "world", "", "World frame the tree must be rooted at (defaults to world_frame)")
	return cmd
}
