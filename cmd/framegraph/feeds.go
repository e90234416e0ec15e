package main

import (
	"context"
	"fmt"

	"github.com/aretw0/framegraph"
	"github.com/aretw0/framegraph/pkg/adapters/file"
	"github.com/aretw0/framegraph/pkg/adapters/redis"
	"github.com/aretw0/framegraph/pkg/adapters/rosbridge"
	"github.com/aretw0/framegraph/pkg/ports"
	"golang.org/x/sync/errgroup"
)

type namedFeed struct {
	name  string
	feed  ports.Feed
	close func() error
}

// configuredFeeds builds every feed enabled in the configuration, in the order
// redis, rosbridge, file.
func (a *app) configuredFeeds() []namedFeed {
	var feeds []namedFeed

	if rc := a.cfg.Feeds.Redis; rc.Enabled {
		f := redis.NewFeed(rc.Addr, rc.Password, rc.DB,
			redis.WithChannels(rc.StaticChannel, rc.DynamicChannel),
			redis.WithLatchedKey(rc.LatchedKey),
			redis.WithLogger(a.logger),
		)
		feeds = append(feeds, namedFeed{name: "redis", feed: f, close: f.Close})
	}

	if rb := a.cfg.Feeds.Rosbridge; rb.Enabled {
		f := rosbridge.New(rb.URL,
			rosbridge.WithTopics(rb.StaticTopic, rb.DynamicTopic),
			rosbridge.WithMessageType(rb.MessageType),
			rosbridge.WithReconnectDelay(rb.ReconnectDelay),
			rosbridge.WithLogger(a.logger),
		)
		feeds = append(feeds, namedFeed{name: "rosbridge", feed: f})
	}

	if fc := a.cfg.Feeds.File; fc.Path != "" {
		f := file.NewFeed(fc.Path,
			file.WithWatch(fc.Watch),
			file.WithRefresh(fc.Refresh),
			file.WithLogger(a.logger),
		)
		feeds = append(feeds, namedFeed{name: "file", feed: f})
	}
	return feeds
}

// passiveTarget forwards edges but ignores connection state, so only the
// first feed's disconnects clear the graph.
type passiveTarget struct {
	ports.EdgeSink
}

func (passiveTarget) SetActive(bool) {}

// startFeeds runs every configured feed on group until ctx is done. The
// returned function closes feeds that hold connections.
func (a *app) startFeeds(ctx context.Context, group *errgroup.Group, g *framegraph.Graph) (started int, closeAll func()) {
	feeds := a.configuredFeeds()
	for i, nf := range feeds {
		var target ports.FeedTarget = g
		if i > 0 {
			target = passiveTarget{EdgeSink: g}
		}
		group.Go(func() error {
			a.logger.Info("feed started", "feed", nf.name)
			if err := nf.feed.Run(ctx, target); err != nil {
				return fmt.Errorf("%s feed: %w", nf.name, err)
			}
			a.logger.Info("feed stopped", "feed", nf.name)
			return nil
		})
	}

	return len(feeds), func() {
		for _, nf := range feeds {
			if nf.close == nil {
				continue
			}
			if err := nf.close(); err != nil {
				a.logger.Warn("failed to close feed", "feed", nf.name, "error", err)
			}
		}
	}
}
