package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/framegraph/pkg/adapters/mcp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newMCPCmd(a *app) *cobra.Command {
	var (
		transport string
		addr      string
		baseURL   string
		fixture   string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Starts the configured feeds and exposes the frame graph as MCP tools
(resolve_transform, find_path, list_frames, frame_tree).

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fixture != "" {
				a.cfg.Feeds.File.Path = fixture
			}
			if transport != "stdio" && transport != "sse" {
				return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			g := a.newGraph()
			defer g.Dispose()
			srv := mcp.NewServer(g, mcp.WithLogger(a.logger))

			group, ctx := errgroup.WithContext(ctx)
			_, closeFeeds := a.startFeeds(ctx, group, g)
			defer closeFeeds()

			if transport == "sse" {
				group.Go(func() error {
					return srv.ServeSSE(ctx, addr, baseURL)
				})
				return group.Wait()
			}

			// Logs go to stderr; stdout carries JSON-RPC.
			a.logger.Info("Starting framegraph MCP Server (Stdio)")
			err := srv.ServeStdio()
			cancel()
			if werr := group.Wait(); err == nil {
				err = werr
			}
			return err
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	cmd.Flags().StringVar(&addr, "addr", ":8081", "Listen address (only for SSE)")
	cmd.Flags().StringVar(&baseURL, "base-url", "http://localhost:8081", "Public base URL (only for SSE)")
	cmd.Flags().StringVarP(&fixture, "fixture", "f", "", "Load edges from this fixture file (overrides feeds.file.path)")
	return cmd
}
