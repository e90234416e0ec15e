package store

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/framegraph/internal/logging"
	"github.com/aretw0/framegraph/pkg/clock"
	"github.com/aretw0/framegraph/pkg/domain"
	"github.com/aretw0/framegraph/pkg/geom"
	"github.com/aretw0/framegraph/pkg/ports"
)

// DefaultExpiryWindow is how long an expiring edge stays valid after it was last seen.
const DefaultExpiryWindow = 15 * time.Second

// DefaultWorldFrame is the conventional root used when the graph has no natural root.
const DefaultWorldFrame = "map"

// Notifier receives a call after every successful mutation.
type Notifier interface {
	NotifyChanged()
}

type pool map[string]map[string]domain.Edge

func (p pool) put(e domain.Edge) (created bool) {
	children, ok := p[e.Parent]
	if !ok {
		children = make(map[string]domain.Edge)
		p[e.Parent] = children
	}
	_, exists := children[e.Child]
	children[e.Child] = e
	return !exists
}

func (p pool) len() int {
	n := 0
	for _, children := range p {
		n += len(children)
	}
	return n
}

// Store implements the frame graph store.
// Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	durable  pool
	expiring pool
	frames   map[string]struct{}
	active   bool

	clock        ports.Clock
	logger       *slog.Logger
	notifier     Notifier
	hooks        domain.Hooks
	worldFrame   string
	expiryWindow time.Duration
}

// Option configures the Store.
type Option func(*Store)

// WithClock injects the time source used for LastSeenAt and expiry.
func WithClock(c ports.Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

// WithLogger configures a logger for the Store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithNotifier registers the change notifier called after each mutation.
func WithNotifier(n Notifier) Option {
	return func(s *Store) {
		s.notifier = n
	}
}

// WithHooks registers observability hooks.
func WithHooks(h domain.Hooks) Option {
	return func(s *Store) {
		s.hooks = h
	}
}

// WithWorldFrame sets the frame forced to be a root when no natural root exists.
func WithWorldFrame(name string) Option {
	return func(s *Store) {
		s.worldFrame = name
	}
}

// WithExpiryWindow sets the default window used by BuildTree and Stats.
func WithExpiryWindow(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.expiryWindow = d
		}
	}
}

// New creates an empty, active store.
func New(opts ...Option) *Store {
	s := &Store{
		durable:      make(pool),
		expiring:     make(pool),
		frames:       make(map[string]struct{}),
		active:       true,
		clock:        clock.System{},
		logger:       logging.NewNop(),
		worldFrame:   DefaultWorldFrame,
		expiryWindow: DefaultExpiryWindow,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExpiryWindow returns the configured default expiry window.
func (s *Store) ExpiryWindow() time.Duration {
	return s.expiryWindow
}

// WorldFrame returns the configured default root frame.
func (s *Store) WorldFrame() string {
	return s.worldFrame
}

// UpsertEdge inserts or overwrites the edge for (Parent, Child) in the pool named
// by its classification. Malformed updates are logged and rejected with an error
// wrapping domain.ErrMalformedEdge; nothing is stored for them.
func (s *Store) UpsertEdge(u domain.EdgeUpdate) error {
	if err := u.Validate(); err != nil {
		s.reject(u, err)
		return err
	}

	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		s.reject(u, domain.ErrInactive)
		return domain.ErrInactive
	}

	e := domain.Edge{
		Parent: u.Parent,
		Child:  u.Child,
		Transform: geom.Transform{
			Translation: *u.Translation,
			Rotation:    u.Rotation.Normalize(),
		},
		Classification:  u.Classification,
		SourceTimestamp: u.SourceTimestamp,
		LastSeenAt:      s.clock.Now(),
	}

	target := s.durable
	if e.Classification == domain.Expiring {
		target = s.expiring
	}
	created := target.put(e)
	s.frames[e.Parent] = struct{}{}
	s.frames[e.Child] = struct{}{}
	s.mu.Unlock()

	s.logger.Debug("store: edge upserted",
		"parent", e.Parent,
		"child", e.Child,
		"classification", e.Classification,
		"created", created,
	)
	if s.hooks.OnEdgeUpserted != nil {
		s.hooks.OnEdgeUpserted(e, created)
	}
	s.notify()
	return nil
}

func (s *Store) reject(u domain.EdgeUpdate, err error) {
	s.logger.Warn("store: edge rejected",
		"parent", u.Parent,
		"child", u.Child,
		"classification", u.Classification,
		"error", err,
	)
	if s.hooks.OnEdgeRejected != nil {
		s.hooks.OnEdgeRejected(u, err)
	}
}

func (s *Store) notify() {
	if s.notifier != nil {
		s.notifier.NotifyChanged()
	}
}

// MergedView returns a fresh snapshot of the durable pool overlaid by the
// expiring pool. It costs O(edges); take one snapshot per batch of queries.
func (s *Store) MergedView() domain.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mergedLocked()
}

func (s *Store) mergedLocked() domain.View {
	view := make(domain.View, len(s.durable)+len(s.expiring))
	overlay := func(p pool) {
		for parent, children := range p {
			dst, ok := view[parent]
			if !ok {
				dst = make(map[string]domain.Edge, len(children))
				view[parent] = dst
			}
			for child, e := range children {
				dst[child] = e
			}
		}
	}
	overlay(s.durable)
	overlay(s.expiring)
	return view
}

// Edge returns the merged parent->child edge, if any.
func (s *Store) Edge(parent, child string) (domain.Edge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.expiring[parent][child]; ok {
		return e, true
	}
	e, ok := s.durable[parent][child]
	return e, ok
}

// HasFrame reports whether name has appeared on either side of any edge.
func (s *Store) HasFrame(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.frames[name]
	return ok
}

// ListFrames returns every known frame name in lexicographic order.
func (s *Store) ListFrames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.frames))
	for name := range s.frames {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Reset clears both pools and the frame registry. Listeners are kept.
func (s *Store) Reset() {
	s.mu.Lock()
	s.durable = make(pool)
	s.expiring = make(pool)
	s.frames = make(map[string]struct{})
	s.mu.Unlock()

	s.logger.Debug("store: reset")
	if s.hooks.OnReset != nil {
		s.hooks.OnReset()
	}
	s.notify()
}

// SetActive follows the transport connection state. Going inactive resets the
// store and rejects further upserts until the store is activated again.
func (s *Store) SetActive(active bool) {
	s.mu.Lock()
	was := s.active
	s.active = active
	s.mu.Unlock()

	if was && !active {
		s.logger.Info("store: feed inactive, clearing graph")
		s.Reset()
	}
}

// Active reports whether the store accepts upserts.
func (s *Store) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Stats summarizes the store contents.
type Stats struct {
	Frames   int `json:"frames"`
	Durable  int `json:"durable"`
	Expiring int `json:"expiring"`
	// Stale counts expiring edges whose last refresh is older than the window.
	Stale int `json:"stale"`
}

// Stats reports the current counts, classifying staleness against window
// (the configured default when window <= 0).
func (s *Store) Stats(window time.Duration) Stats {
	if window <= 0 {
		window = s.expiryWindow
	}
	now := s.clock.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Stats{
		Frames:   len(s.frames),
		Durable:  s.durable.len(),
		Expiring: s.expiring.len(),
	}
	for _, children := range s.expiring {
		for _, e := range children {
			if !e.IsValid(now, window) {
				st.Stale++
			}
		}
	}
	return st
}
