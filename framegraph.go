package framegraph

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/framegraph/internal/logging"
	"github.com/aretw0/framegraph/pkg/clock"
	"github.com/aretw0/framegraph/pkg/coordspace"
	"github.com/aretw0/framegraph/pkg/domain"
	"github.com/aretw0/framegraph/pkg/geom"
	"github.com/aretw0/framegraph/pkg/notify"
	"github.com/aretw0/framegraph/pkg/ports"
	"github.com/aretw0/framegraph/pkg/resolver"
	"github.com/aretw0/framegraph/pkg/store"
)

// Graph is the high-level entry point of the library.
// It is safe for concurrent use.
type Graph struct {
	store    *store.Store
	notifier *notify.Coalescer
	resolver *resolver.Resolver
	hooks    domain.Hooks
	logger   *slog.Logger

	clock          ports.Clock
	expiryWindow   time.Duration
	coalesceWindow time.Duration
	worldFrame     string
}

var (
	_ ports.FeedTarget  = (*Graph)(nil)
	_ ports.GraphReader = (*Graph)(nil)
)

// Option defines a functional option for configuring the Graph.
type Option func(*Graph)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) {
		g.logger = logger
	}
}

// WithClock injects the time source for expiry and coalescing.
func WithClock(c ports.Clock) Option {
	return func(g *Graph) {
		g.clock = c
	}
}

// WithExpiryWindow sets how long an expiring edge counts as valid (default 15s).
func WithExpiryWindow(d time.Duration) Option {
	return func(g *Graph) {
		g.expiryWindow = d
	}
}

// WithCoalesceWindow sets the minimum interval between change signals (default 100ms).
func WithCoalesceWindow(d time.Duration) Option {
	return func(g *Graph) {
		g.coalesceWindow = d
	}
}

// WithWorldFrame sets the frame forced to root the tree when no natural root exists (default "map").
func WithWorldFrame(name string) Option {
	return func(g *Graph) {
		g.worldFrame = name
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.Hooks) Option {
	return func(g *Graph) {
		g.hooks = hooks
	}
}

// New creates an empty, active Graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		logger:         logging.NewNop(),
		clock:          clock.System{},
		expiryWindow:   store.DefaultExpiryWindow,
		coalesceWindow: notify.DefaultWindow,
		worldFrame:     store.DefaultWorldFrame,
	}
	for _, opt := range opts {
		opt(g)
	}

	g.notifier = notify.New(
		notify.WithClock(g.clock),
		notify.WithWindow(g.coalesceWindow),
		notify.WithLogger(g.logger),
	)
	if g.hooks.OnNotify != nil {
		onNotify := g.hooks.OnNotify
		g.notifier.Subscribe(func(notify.Event) { onNotify() })
	}
	g.store = store.New(
		store.WithClock(g.clock),
		store.WithLogger(g.logger),
		store.WithNotifier(g.notifier),
		store.WithHooks(g.hooks),
		store.WithWorldFrame(g.worldFrame),
		store.WithExpiryWindow(g.expiryWindow),
	)
	g.resolver = resolver.New(resolver.WithLogger(g.logger))
	return g
}

// Store exposes the underlying edge store.
func (g *Graph) Store() *store.Store {
	return g.store
}

// UpsertEdge inserts or refreshes one edge. Malformed updates are logged and
// rejected with an error wrapping domain.ErrMalformedEdge.
func (g *Graph) UpsertEdge(u domain.EdgeUpdate) error {
	return g.store.UpsertEdge(u)
}

// Resolve returns target's pose expressed in source, in the renderer's
// convention. It is recomputed on every call.
func (g *Graph) Resolve(source, target string) (geom.Transform, error) {
	t, err := g.resolver.Resolve(source, target, g.store.MergedView())
	if g.hooks.OnResolve != nil {
		g.hooks.OnResolve(source, target, err)
	}
	return t, err
}

// ResolveSource is Resolve with the result reported in the feed's axis convention.
func (g *Graph) ResolveSource(source, target string) (geom.Transform, error) {
	t, err := g.Resolve(source, target)
	if err != nil {
		return geom.Transform{}, err
	}
	return coordspace.ToSource(t), nil
}

// TransformPoint maps p, given in target's frame (renderer convention), into
// source's frame.
func (g *Graph) TransformPoint(source, target string, p geom.Vec3) (geom.Vec3, error) {
	t, err := g.Resolve(source, target)
	if err != nil {
		return geom.Vec3{}, err
	}
	return t.Apply(p), nil
}

// FindPath returns the frames between source and target inclusive, or nil.
// The path is only meaningful until the graph next changes.
func (g *Graph) FindPath(source, target string) []string {
	return resolver.FindPath(source, target, g.store.MergedView())
}

// MergedView returns a snapshot of the merged edge set.
func (g *Graph) MergedView() domain.View {
	return g.store.MergedView()
}

// HasFrame reports whether name has been seen on any edge.
func (g *Graph) HasFrame(name string) bool {
	return g.store.HasFrame(name)
}

// ListFrames returns every known frame in lexicographic order.
func (g *Graph) ListFrames() []string {
	return g.store.ListFrames()
}

// BuildTree materializes the display hierarchy. A non-positive window uses the
// configured expiry window.
func (g *Graph) BuildTree(window time.Duration) []domain.TreeNode {
	return g.store.BuildTree(window)
}

// Stats reports store counts with staleness against the configured window.
func (g *Graph) Stats() store.Stats {
	return g.store.Stats(0)
}

// ExpiryWindow returns the configured expiry window.
func (g *Graph) ExpiryWindow() time.Duration {
	return g.store.ExpiryWindow()
}

// Subscribe registers fn for coalesced "graph changed" signals.
func (g *Graph) Subscribe(fn notify.Listener) (cancel func()) {
	return g.notifier.Subscribe(fn)
}

// Watch returns a channel of change signals that closes when ctx is done.
func (g *Graph) Watch(ctx context.Context) <-chan notify.Event {
	return g.notifier.Watch(ctx, 16)
}

// SetActive follows the transport connection; going inactive clears the graph.
func (g *Graph) SetActive(active bool) {
	g.store.SetActive(active)
}

// Reset clears every edge and frame. Subscribers are kept.
func (g *Graph) Reset() {
	g.store.Reset()
}

// Dispose stops change notification and drops all subscribers.
// The Graph still answers queries afterwards but no longer signals changes.
func (g *Graph) Dispose() {
	g.notifier.Close()
}
