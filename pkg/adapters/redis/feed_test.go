package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/framegraph"
	"github.com/aretw0/framegraph/pkg/adapters/redis"
	"github.com/aretw0/framegraph/pkg/domain"
	"github.com/aretw0/framegraph/pkg/geom"
	"github.com/aretw0/framegraph/pkg/ingest"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func msg(parent, child string, x float64) ingest.EdgeMessage {
	return ingest.NewEdgeMessage(parent, child, geom.Transform{
		Translation: geom.Vec3{X: x},
		Rotation:    geom.IdentityQuat(),
	})
}

func startFeed(t *testing.T, client *backend.Client, g *framegraph.Graph) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	feed := redis.NewFeedFromClient(client)
	go func() { done <- feed.Run(ctx, g) }()
	t.Cleanup(cancel)
	return cancel, done
}

func TestFeed_ReplaysLatchedDurableEdges(t *testing.T) {
	_, client := setup(t)
	pub := redis.NewPublisherFromClient(client)
	ctx := context.Background()

	require.NoError(t, pub.Publish(ctx, domain.Durable, msg("map", "odom", 1), msg("base_link", "laser", 0.2)))
	n, err := pub.Latched(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	g := framegraph.New()
	defer g.Dispose()
	startFeed(t, client, g)

	assert.Eventually(t, func() bool {
		return g.HasFrame("odom") && g.HasFrame("laser")
	}, 2*time.Second, 10*time.Millisecond)

	e, ok := g.Store().Edge("map", "odom")
	require.True(t, ok)
	assert.Equal(t, domain.Durable, e.Classification)
}

func TestFeed_AppliesDynamicEdges(t *testing.T) {
	_, client := setup(t)
	pub := redis.NewPublisherFromClient(client)
	ctx := context.Background()

	g := framegraph.New()
	defer g.Dispose()
	startFeed(t, client, g)

	// Dynamic edges are not latched: keep publishing until the subscription is live.
	assert.Eventually(t, func() bool {
		_ = pub.Publish(ctx, domain.Expiring, msg("odom", "base_link", 2))
		return g.HasFrame("base_link")
	}, 2*time.Second, 20*time.Millisecond)

	e, ok := g.Store().Edge("odom", "base_link")
	require.True(t, ok)
	assert.Equal(t, domain.Expiring, e.Classification)
	assert.InDelta(t, 2.0, e.Transform.Translation.X, 1e-12)

	n, err := pub.Latched(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "expiring edges are never latched")
}

func TestFeed_SurvivesMalformedPayload(t *testing.T) {
	_, client := setup(t)
	pub := redis.NewPublisherFromClient(client)
	ctx := context.Background()

	g := framegraph.New()
	defer g.Dispose()
	startFeed(t, client, g)

	assert.Eventually(t, func() bool {
		_ = client.Publish(ctx, redis.DefaultDynamicChannel, "{not json").Err()
		_ = pub.Publish(ctx, domain.Expiring, msg("map", "odom", 1))
		return g.HasFrame("odom")
	}, 2*time.Second, 20*time.Millisecond)
}

func TestFeed_InactiveAfterCancel(t *testing.T) {
	_, client := setup(t)
	pub := redis.NewPublisherFromClient(client)
	require.NoError(t, pub.Publish(context.Background(), domain.Durable, msg("map", "odom", 1)))

	g := framegraph.New()
	defer g.Dispose()
	cancel, done := startFeed(t, client, g)

	assert.Eventually(t, func() bool { return g.HasFrame("odom") }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("feed did not stop")
	}
	assert.Empty(t, g.ListFrames(), "going inactive clears the graph")
	assert.False(t, g.Store().Active())
}

func TestPublisher_ClearLatched(t *testing.T) {
	mr, client := setup(t)
	pub := redis.NewPublisherFromClient(client, redis.WithLatchedKey("test:latched"))
	ctx := context.Background()

	require.NoError(t, pub.Publish(ctx, domain.Durable, msg("map", "odom", 1)))
	assert.True(t, mr.Exists("test:latched"))
	keys, err := mr.HKeys("test:latched")
	require.NoError(t, err)
	assert.Equal(t, []string{"map/odom"}, keys)

	require.NoError(t, pub.ClearLatched(ctx))
	assert.False(t, mr.Exists("test:latched"))

	assert.NoError(t, pub.Publish(ctx, domain.Durable), "empty publish is a no-op")
}
