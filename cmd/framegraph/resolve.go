package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/framegraph/pkg/geom"
	"github.com/spf13/cobra"
)

type resolveOutput struct {
	Source      string     `json:"source"`
	Target      string     `json:"target"`
	Convention  string     `json:"convention"`
	Path        []string   `json:"path"`
	Translation geom.Vec3  `json:"translation"`
	Rotation    geom.Quat  `json:"rotation"`
	Point       *geom.Vec3 `json:"point,omitempty"`
}

func newResolveCmd(a *app) *cobra.Command {
	var (
		fixture    string
		convention string
		point      string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "resolve SOURCE TARGET",
		Short: "Resolve the transform between two frames of a fixture",
		Long: `Loads a fixture file and prints TARGET's pose expressed in SOURCE. Results use the renderer (Y-up) convention unless
--convention source is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, target := args[0], args[1]
			if convention != "target" && convention != "source" {
				return fmt.Errorf("unknown convention %q (want target or source)", convention)
			}

			g, err := a.loadFixtureGraph(fixture)
			if err != nil {
				return err
			}
			defer g.Dispose()

			resolve := g.Resolve
			if convention == "source" {
				resolve = g.ResolveSource
			}
			t, err := resolve(source, target)
			if err != nil {
				return fmt.Errorf("cannot resolve %s -> %s: %w", source, target, err)
			}

			out := resolveOutput{
				Source:      source,
				Target:      target,
				Convention:  convention,
				Path:        g.FindPath(source, target),
				Translation: t.Translation,
				Rotation:    t.Rotation,
			}
			if point != "" {
				p, err := parseVec3(point)
				if err != nil {
					return err
				}
				mapped := t.Apply(p)
				out.Point = &mapped
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			fmt.Fprintf(w, "%s -> %s (%s convention)\n", out.Source, out.Target, out.Convention)
			fmt.Fprintf(w, "path:        %s\n", strings.Join(out.Path, " -> "))
			fmt.Fprintf(w, "translation: x=%.6f y=%.6f z=%.6f\n", t.Translation.X, t.Translation.Y, t.Translation.Z)
			fmt.Fprintf(w, "rotation:    x=%.6f y=%.6f z=%.6f w=%.6f\n", t.Rotation.X, t.Rotation.Y, t.Rotation.Z, t.Rotation.W)
			if out.Point != nil {
				fmt.Fprintf(w, "point:       x=%.6f y=%.6f z=%.6f\n", out.Point.X, out.Point.Y, out.Point.Z)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&fixture, "fixture", "f", "", "Fixture file (defaults to feeds.file.path)")
	cmd.Flags().StringVar(&convention, "convention", "target", "Axis convention of the result: target or source")
	cmd.Flags().StringVar(&point, "point", "", "Also map the point \"x,y,z\" given in TARGET coordinates into SOURCE")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func parseVec3(s string) (geom.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return geom.Vec3{}, fmt.Errorf("invalid point %q: want x,y,z", s)
	}
	var xyz [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geom.Vec3{}, fmt.Errorf("invalid point %q: %w", s, err)
		}
		xyz[i] = f
	}
	return geom.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}
