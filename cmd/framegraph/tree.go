package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/framegraph/internal/presentation/tree"
	"github.com/aretw0/framegraph/internal/presentation/tui"
	"github.com/aretw0/framegraph/pkg/domain"
	"github.com/spf13/cobra"
)

func newTreeCmd(a *app) *cobra.Command {
	var (
		fixture string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the frame hierarchy of a fixture",
		Long: `Loads a fixture file and prints the attachment tree with a validity badge per
frame. Formats: text (default), mermaid (graph TD), markdown and json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := tree.ParseFormat(format)
			if err != nil {
				return err
			}
			g, err := a.loadFixtureGraph(fixture)
			if err != nil {
				return err
			}
			defer g.Dispose()

			return renderTree(cmd.OutOrStdout(), g.BuildTree(0), f)
		},
	}

	cmd.Flags().StringVarP(&fixture, "fixture", "f", "", "Fixture file (defaults to feeds.file.path)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, mermaid, markdown or json")
	return cmd
}

func renderTree(w io.Writer, roots []domain.TreeNode, f tree.Format) error {
	switch f {
	case tree.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(roots)
	case tree.FormatMermaid:
		_, err := io.WriteString(w, tree.Mermaid(roots))
		return err
	case tree.FormatMarkdown:
		md := tree.Markdown(roots)
		if !tree.IsTerminal(w) {
			_, err := io.WriteString(w, md)
			return err
		}
		render, err := tui.NewRenderer(100)
		if err != nil {
			return err
		}
		out, err := render(md)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		_, err := fmt.Fprint(w, tree.Text(roots, tree.ProfileFor(w)))
		return err
	}
}
