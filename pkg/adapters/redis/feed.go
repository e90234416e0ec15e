package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/framegraph/pkg/domain"
	"github.com/aretw0/framegraph/pkg/ingest"
	"github.com/aretw0/framegraph/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// ErrSubscriptionClosed is returned when the server drops the subscription.
var ErrSubscriptionClosed = errors.New("redis subscription closed")

// Feed implements ports.Feed over Redis pub/sub.
//
// Durable edges are also replayed from the latched hash on connect, so a late
// subscriber learns static attachments that were published before it started.
type Feed struct {
	client *backend.Client
	opts   options
}

var _ ports.Feed = (*Feed)(nil)

// NewFeed creates a feed with its own client.
func NewFeed(address, password string, db int, opts ...Option) *Feed {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFeedFromClient(rdb, opts...)
}

// NewFeedFromClient creates a feed from an existing client.
func NewFeedFromClient(client *backend.Client, opts ...Option) *Feed {
	o := defaults()
	for _, opt := range opts {
		opt(&o)
	}
	return &Feed{client: client, opts: o}
}

// Run subscribes and applies every received edge to target until ctx is done.
// The target is active while the subscription is live and inactive afterwards.
func (f *Feed) Run(ctx context.Context, target ports.FeedTarget) error {
	sub := f.client.Subscribe(ctx, f.opts.staticChannel, f.opts.dynamicChannel)
	defer sub.Close()

	// Wait for the subscription confirmation before going live.
	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("redis: subscribe: %w", err)
	}

	target.SetActive(true)
	defer target.SetActive(false)

	f.opts.logger.Info("redis feed connected",
		"static_channel", f.opts.staticChannel,
		"dynamic_channel", f.opts.dynamicChannel,
	)

	applier := ingest.NewApplier(target, ingest.WithLogger(f.opts.logger))
	if err := f.replayLatched(ctx, applier); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			f.opts.logger.Info("redis feed stopped")
			return nil
		case msg, ok := <-ch:
			if !ok {
				return ErrSubscriptionClosed
			}
			class := domain.Expiring
			if msg.Channel == f.opts.staticChannel {
				class = domain.Durable
			}
			applier.ApplyPayload([]byte(msg.Payload), class)
		}
	}
}

func (f *Feed) replayLatched(ctx context.Context, applier *ingest.Applier) error {
	latched, err := f.client.HGetAll(ctx, f.opts.latchedKey).Result()
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("redis: read latched edges: %w", err)
	}

	keys := make([]string, 0, len(latched))
	for k := range latched {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	accepted := 0
	for _, k := range keys {
		accepted += applier.ApplyPayload([]byte(latched[k]), domain.Durable).Accepted
	}
	if len(keys) > 0 {
		f.opts.logger.Debug("redis feed replayed latched edges", "count", accepted)
	}
	return nil
}

// Close closes the redis client.
func (f *Feed) Close() error {
	return f.client.Close()
}
