package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/framegraph/pkg/adapters/file"
	"github.com/aretw0/framegraph/pkg/adapters/redis"
	"github.com/aretw0/framegraph/pkg/domain"
	"github.com/spf13/cobra"
)

func newPublishCmd(a *app) *cobra.Command {
	var (
		fixture      string
		addr         string
		clearLatched bool
		interval     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a fixture to the Redis feed",
		Long: `Publishes the static edges of a fixture (latched for late subscribers) and its
dynamic edges to the configured Redis channels. With --interval the dynamic
edges are republished until interrupted, keeping them fresh.`,
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

			rc := a.cfg.Feeds.Redis
			if addr == "" {
				addr = rc.Addr
			}
			pub := redis.NewPublisher(addr, rc.Password, rc.DB,
				redis.WithChannels(rc.StaticChannel, rc.DynamicChannel),
				redis.WithLatchedKey(rc.LatchedKey),
				redis.WithLogger(a.logger),
			)
			defer pub.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if clearLatched {
				if err := pub.ClearLatched(ctx); err != nil {
					return err
				}
			}
			if err := publishFixture(ctx, pub, fx); err != nil {
				return err
			}
			latched, err := pub.Latched(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %d static and %d dynamic edges to %s (%d latched)\n",
				len(fx.Static), len(fx.Dynamic), addr, latched)

			if interval <= 0 || len(fx.Dynamic) == 0 {
				return nil
			}
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					if err := pub.Publish(ctx, domain.Expiring, fx.Dynamic...); err != nil {
						return err
					}
				}
			}
		},
	}

	cmd.Flags().StringVarP(&fixture, "fixture", "f", "", "Fixture file (defaults to feeds.file.path)")
	cmd.Flags().StringVar(&addr, "addr", "", "Redis address (defaults to feeds.redis.addr)")
	cmd.Flags().BoolVar(&clearLatched, "clear", false, "Drop previously latched static edges first")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Republish dynamic edges at this interval")
	return cmd
}

func publishFixture(ctx context.Context, pub *redis.Publisher, fx file.Fixture) error {
	if len(fx.Static) > 0 {
		if err := pub.Publish(ctx, domain.Durable, fx.Static...); err != nil {
			return err
		}
	}
	if len(fx.Dynamic) > 0 {
		if err := pub.Publish(ctx, domain.Expiring, fx.Dynamic...); err != nil {
			return err
		}
	}
	return nil
}
