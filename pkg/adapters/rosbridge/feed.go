// Package rosbridge feeds a frame graph from a rosbridge websocket server.
//
// The feed subscribes to the static and dynamic tf topics and forwards every
// published TFMessage into the graph. The graph is active only while the socket
// is connected; a dropped connection clears it and the feed redials after a delay.
package rosbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/framegraph/internal/logging"
	"github.com/aretw0/framegraph/pkg/domain"
	"github.com/aretw0/framegraph/pkg/ingest"
	"github.com/aretw0/framegraph/pkg/ports"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	DefaultStaticTopic    = "/tf_static"
	DefaultDynamicTopic   = "/tf"
	DefaultMessageType    = "tf2_msgs/TFMessage"
	DefaultReconnectDelay = 2 * time.Second
)

// Op is a rosbridge v2 protocol operation.
type Op struct {
	Op    string          `json:"op"`
	ID    string          `json:"id,omitempty"`
	Topic string          `json:"topic,omitempty"`
	Type  string          `json:"type,omitempty"`
	Msg   json.RawMessage `json:"msg,omitempty"`
}

// Feed implements ports.Feed over a rosbridge connection.
type Feed struct {
	url            string
	staticTopic    string
	dynamicTopic   string
	messageType    string
	reconnectDelay time.Duration
	dialer         *websocket.Dialer
	logger         *slog.Logger
}

var _ ports.Feed = (*Feed)(nil)

// Option configures the Feed.
type Option func(*Feed)

// WithTopics sets the topics carrying durable and expiring edges.
func WithTopics(static, dynamic string) Option {
	return func(f *Feed) {
		if static != "" {
			f.staticTopic = static
		}
		if dynamic != "" {
			f.dynamicTopic = dynamic
		}
	}
}

// WithMessageType sets the subscribed message type, e.g. "tf2_msgs/msg/TFMessage" on ROS 2.
func WithMessageType(t string) Option {
	return func(f *Feed) {
		if t != "" {
			f.messageType = t
		}
	}
}

// WithReconnectDelay sets the pause between a disconnect and the next dial.
func WithReconnectDelay(d time.Duration) Option {
	return func(f *Feed) {
		if d > 0 {
			f.reconnectDelay = d
		}
	}
}

// WithDialer replaces the websocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(f *Feed) {
		f.dialer = d
	}
}

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Feed) {
		f.logger = logger
	}
}

// New creates a feed for the rosbridge server at url (ws:// or wss://).
func New(url string, opts ...Option) *Feed {
	f := &Feed{
		url:            url,
		staticTopic:    DefaultStaticTopic,
		dynamicTopic:   DefaultDynamicTopic,
		messageType:    DefaultMessageType,
		reconnectDelay: DefaultReconnectDelay,
		dialer:         websocket.DefaultDialer,
		logger:         logging.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Run keeps a session open until ctx is done, redialing after every failure.
func (f *Feed) Run(ctx context.Context, target ports.FeedTarget) error {
	for {
		err := f.session(ctx, target)
		if ctx.Err() != nil {
			f.logger.Info("rosbridge feed stopped")
			return nil
		}
		f.logger.Warn("rosbridge disconnected, reconnecting",
			"url", f.url,
			"delay", f.reconnectDelay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(f.reconnectDelay):
		}
	}
}

func (f *Feed) session(ctx context.Context, target ports.FeedTarget) error {
	conn, _, err := f.dialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return fmt.Errorf("rosbridge: dial %s: %w", f.url, err)
	}
	defer conn.Close()

	for _, topic := range []string{f.staticTopic, f.dynamicTopic} {
		op := Op{
			Op:    "subscribe",
			ID:    "framegraph-" + uuid.NewString(),
			Topic: topic,
			Type:  f.messageType,
		}
		if err := conn.WriteJSON(op); err != nil {
			return fmt.Errorf("rosbridge: subscribe %s: %w", topic, err)
		}
	}

	target.SetActive(true)
	defer target.SetActive(false)
	f.logger.Info("rosbridge feed connected", "url", f.url)

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	applier := ingest.NewApplier(target, ingest.WithLogger(f.logger))
	for {
		var in Op
		if err := conn.ReadJSON(&in); err != nil {
			return fmt.Errorf("rosbridge: read: %w", err)
		}
		if in.Op != "publish" {
			continue
		}

		var class domain.Classification
		switch in.Topic {
		case f.staticTopic:
			class = domain.Durable
		case f.dynamicTopic:
			class = domain.Expiring
		default:
			continue
		}
		applier.ApplyPayload(in.Msg, class)
	}
}
