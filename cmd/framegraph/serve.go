package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/framegraph"
	"github.com/aretw0/framegraph/internal/presentation/tree"
	"github.com/aretw0/framegraph/internal/presentation/tui"
	httpAdapter "github.com/aretw0/framegraph/pkg/adapters/http"
	"github.com/aretw0/framegraph/pkg/observability"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var (
		addr    string
		fixture string
		watch   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the configured feeds and serve the HTTP API",
		Long: `Starts every feed enabled in the configuration (Redis, rosbridge, fixture file)
and exposes the frame graph over HTTP, with Prometheus metrics on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.HTTP.Enabled = true
				a.cfg.HTTP.Addr = addr
			}
			if fixture != "" {
				a.cfg.Feeds.File.Path = fixture
			}
			if cmd.Flags().Changed("watch") {
				a.cfg.Feeds.File.Watch = watch
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, cmd)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides http.addr)")
	cmd.Flags().StringVarP(&fixture, "fixture", "f", "", "Serve edges from this fixture file (overrides feeds.file.path)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload the fixture file when it changes")
	return cmd
}

func (a *app) serve(ctx context.Context, cmd *cobra.Command) error {
	stderr := cmd.ErrOrStderr()
	if tree.IsTerminal(stderr) {
		tui.PrintBanner(stderr, tree.ProfileFor(stderr), framegraph.Version)
	}

	metrics := observability.NewMetrics()
	g := a.newGraph(framegraph.WithHooks(observability.Combine(
		metrics.Hooks(),
		observability.AuditHooks(a.logger),
	)))
	defer g.Dispose()
	metrics.RegisterStats(g.Stats)

	group, ctx := errgroup.WithContext(ctx)
	started, closeFeeds := a.startFeeds(ctx, group, g)
	defer closeFeeds()

	if !a.cfg.HTTP.Enabled && started == 0 {
		return errors.New("nothing to serve: enable http or at least one feed")
	}

	if a.cfg.HTTP.Enabled {
		opts := []httpAdapter.Option{httpAdapter.WithLogger(a.logger)}
		if a.cfg.HTTP.Metrics {
			opts = append(opts, httpAdapter.WithMetrics(metrics.Handler()))
		}
		srv := &http.Server{
			Addr:              a.cfg.HTTP.Addr,
			Handler:           httpAdapter.NewHandler(g, opts...),
			ReadHeaderTimeout: shutdownTimeout,
		}

		group.Go(func() error {
			a.logger.Info("HTTP server listening", "address", srv.Addr, "world_frame", a.cfg.WorldFrame)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		group.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
				return srv.Close()
			}
			a.logger.Info("HTTP server stopped gracefully")
			return nil
		})
	}

	return group.Wait()
}
