package rosbridge_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/framegraph"
	"github.com/aretw0/framegraph/pkg/adapters/rosbridge"
	"github.com/aretw0/framegraph/pkg/domain"
	"github.com/aretw0/framegraph/pkg/geom"
	"github.com/aretw0/framegraph/pkg/ingest"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func publishOp(t *testing.T, topic string, msgs ...ingest.EdgeMessage) rosbridge.Op {
	t.Helper()
	raw, err := json.Marshal(ingest.Batch{Transforms: msgs})
	require.NoError(t, err)
	return rosbridge.Op{Op: "publish", Topic: topic, Msg: raw}
}

func edgeMsg(parent, child string, x float64) ingest.EdgeMessage {
	return ingest.NewEdgeMessage(parent, child, geom.Transform{
		Translation: geom.Vec3{X: x},
		Rotation:    geom.IdentityQuat(),
	})
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func run(t *testing.T, url string, g *framegraph.Graph, opts ...rosbridge.Option) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	feed := rosbridge.New(url, opts...)
	go func() { done <- feed.Run(ctx, g) }()
	t.Cleanup(cancel)
	return cancel, done
}

func TestFeed_SubscribesAndApplies(t *testing.T) {
	var mu sync.Mutex
	var subscribed []rosbridge.Op

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for i := 0; i < 2; i++ {
			var op rosbridge.Op
			if err := conn.ReadJSON(&op); err != nil {
				return
			}
			mu.Lock()
			subscribed = append(subscribed, op)
			mu.Unlock()
		}

		_ = conn.WriteJSON(rosbridge.Op{Op: "status", Msg: json.RawMessage(`{"level":"info"}`)})
		_ = conn.WriteJSON(publishOp(t, "/tf_static", edgeMsg("map", "odom", 1)))
		_ = conn.WriteJSON(publishOp(t, "/tf", edgeMsg("odom", "base_link", 2)))
		_ = conn.WriteJSON(publishOp(t, "/chatter", edgeMsg("odom", "ignored", 3)))

		// Hold the socket open until the client leaves.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	g := framegraph.New()
	defer g.Dispose()
	cancel, done := run(t, wsURL(srv), g)

	assert.Eventually(t, func() bool {
		return g.HasFrame("odom") && g.HasFrame("base_link")
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	require.Len(t, subscribed, 2)
	assert.Equal(t, "subscribe", subscribed[0].Op)
	assert.Equal(t, "/tf_static", subscribed[0].Topic)
	assert.Equal(t, "/tf", subscribed[1].Topic)
	assert.Equal(t, rosbridge.DefaultMessageType, subscribed[1].Type)
	mu.Unlock()

	static, ok := g.Store().Edge("map", "odom")
	require.True(t, ok)
	assert.Equal(t, domain.Durable, static.Classification)
	dynamic, ok := g.Store().Edge("odom", "base_link")
	require.True(t, ok)
	assert.Equal(t, domain.Expiring, dynamic.Classification)
	assert.False(t, g.HasFrame("ignored"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("feed did not stop")
	}
	assert.Empty(t, g.ListFrames())
}

func TestFeed_ReconnectsAfterDrop(t *testing.T) {
	var conns atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		n := conns.Add(1)
		for i := 0; i < 2; i++ {
			var op rosbridge.Op
			if err := conn.ReadJSON(&op); err != nil {
				return
			}
		}
		if n == 1 {
			_ = conn.WriteJSON(publishOp(t, "/tf_static", edgeMsg("map", "stale", 1)))
			return
		}
		_ = conn.WriteJSON(publishOp(t, "/tf_static", edgeMsg("map", "odom", 1)))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	g := framegraph.New()
	defer g.Dispose()
	run(t, wsURL(srv), g, rosbridge.WithReconnectDelay(10*time.Millisecond))

	assert.Eventually(t, func() bool { return g.HasFrame("odom") }, 2*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, conns.Load(), int32(2))
	assert.False(t, g.HasFrame("stale"), "the first session's edges were cleared on disconnect")
}

func TestFeed_DialFailureRetries(t *testing.T) {
	g := framegraph.New()
	defer g.Dispose()
	cancel, done := run(t, "ws://127.0.0.1:1/unreachable", g, rosbridge.WithReconnectDelay(5*time.Millisecond))

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("feed did not stop")
	}
}
