package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/framegraph/pkg/domain"
	"github.com/aretw0/framegraph/pkg/ingest"
	backend "github.com/redis/go-redis/v9"
)

// Publisher sends edges to the channels a Feed listens on.
type Publisher struct {
	client *backend.Client
	opts   options
}

// NewPublisher creates a publisher with its own client.
func NewPublisher(address, password string, db int, opts ...Option) *Publisher {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewPublisherFromClient(rdb, opts...)
}

// NewPublisherFromClient creates a publisher from an existing client.
func NewPublisherFromClient(client *backend.Client, opts ...Option) *Publisher {
	o := defaults()
	for _, opt := range opts {
		opt(&o)
	}
	return &Publisher{client: client, opts: o}
}

func latchKey(m ingest.EdgeMessage) string {
	return m.Header.FrameID + "/" + m.ChildFrameID
}

// Publish sends msgs as one batch. Durable edges are latched as well, one hash
// field per (parent, child).
func (p *Publisher) Publish(ctx context.Context, class domain.Classification, msgs ...ingest.EdgeMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	payload, err := json.Marshal(ingest.Batch{Transforms: msgs})
	if err != nil {
		return fmt.Errorf("failed to marshal edges: %w", err)
	}

	pipe := p.client.Pipeline()

	if class == domain.Durable {
		for _, m := range msgs {
			data, err := json.Marshal(m)
			if err != nil {
				return fmt.Errorf("failed to marshal edge %s: %w", latchKey(m), err)
			}
			pipe.HSet(ctx, p.opts.latchedKey, latchKey(m), data)
		}
	}
	pipe.Publish(ctx, p.opts.channel(class), payload)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}
	p.opts.logger.Debug("redis published edges", "count", len(msgs), "classification", class)
	return nil
}

// Latched returns the number of latched durable edges.
func (p *Publisher) Latched(ctx context.Context) (int64, error) {
	return p.client.HLen(ctx, p.opts.latchedKey).Result()
}

// ClearLatched removes every latched durable edge.
func (p *Publisher) ClearLatched(ctx context.Context) error {
	return p.client.Del(ctx, p.opts.latchedKey).Err()
}

// Close closes the redis client.
func (p *Publisher) Close() error {
	return p.client.Close()
}
