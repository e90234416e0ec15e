package redis

import (
	"log/slog"

	"github.com/aretw0/framegraph/internal/logging"
	"github.com/aretw0/framegraph/pkg/domain"
)

const (
	DefaultStaticChannel  = "framegraph:tf_static"
	DefaultDynamicChannel = "framegraph:tf"
	DefaultLatchedKey     = "framegraph:tf_static:latched"
)

type options struct {
	staticChannel  string
	dynamicChannel string
	latchedKey     string
	logger         *slog.Logger
}

func defaults() options {
	return options{
		staticChannel:  DefaultStaticChannel,
		dynamicChannel: DefaultDynamicChannel,
		latchedKey:     DefaultLatchedKey,
		logger:         logging.NewNop(),
	}
}

// Option configures the Feed and the Publisher.
type Option func(*options)

// WithChannels sets the pub/sub channels carrying durable and expiring edges.
func WithChannels(static, dynamic string) Option {
	return func(o *options) {
		if static != "" {
			o.staticChannel = static
		}
		if dynamic != "" {
			o.dynamicChannel = dynamic
		}
	}
}

// WithLatchedKey sets the hash holding the last value of every durable edge.
func WithLatchedKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.latchedKey = key
		}
	}
}

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func (o options) channel(class domain.Classification) string {
	if class == domain.Durable {
		return o.staticChannel
	}
	return o.dynamicChannel
}
