// Package notify coalesces bursts of change notifications into a bounded-rate signal.
//
// The Coalescer emits on the leading edge of a burst, suppresses further signals
// for the rest of the window, and flushes one trailing signal if anything arrived
// while suppressed. Consumers therefore see at most one signal per window and at
// least one signal after a burst ends.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/framegraph/internal/logging"
	"github.com/aretw0/framegraph/pkg/clock"
	"github.com/aretw0/framegraph/pkg/ports"
	"github.com/google/uuid"
)

// DefaultWindow is the minimum interval between two emitted signals.
const DefaultWindow = 100 * time.Millisecond

// Event is one emitted "graph changed" signal.
type Event struct {
	Seq uint64    `json:"seq"`
	At  time.Time `json:"at"`
	// Coalesced is the number of NotifyChanged calls folded into this signal.
	Coalesced int `json:"coalesced"`
}

// Listener receives emitted events. It runs synchronously on the emitting goroutine.
type Listener func(Event)

// Coalescer is a leading-edge emitter with a trailing flush.
// Safe for concurrent use.
type Coalescer struct {
	window time.Duration
	clock  ports.Clock
	logger *slog.Logger

	mu        sync.Mutex
	listeners map[string]Listener
	order     []string
	timer     ports.Timer
	pending   int
	seq       uint64
	closed    bool

	// emitMu serializes listener calls.
	emitMu sync.Mutex
}

// Option configures the Coalescer.
type Option func(*Coalescer)

// WithWindow sets the coalescing window. Non-positive values keep the default.
func WithWindow(d time.Duration) Option {
	return func(c *Coalescer) {
		if d > 0 {
			c.window = d
		}
	}
}

// WithClock injects the time source.
func WithClock(clk ports.Clock) Option {
	return func(c *Coalescer) {
		c.clock = clk
	}
}

// WithLogger configures a logger for the Coalescer.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coalescer) {
		c.logger = logger
	}
}

// New creates a Coalescer.
func New(opts ...Option) *Coalescer {
	c := &Coalescer{
		window:    DefaultWindow,
		clock:     clock.System{},
		logger:    logging.NewNop(),
		listeners: make(map[string]Listener),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Window returns the configured coalescing window.
func (c *Coalescer) Window() time.Duration {
	return c.window
}

// Subscribe registers fn and returns a function that removes it.
func (c *Coalescer) Subscribe(fn Listener) (cancel func()) {
	id := uuid.NewString()

	c.mu.Lock()
	c.listeners[id] = fn
	c.order = append(c.order, id)
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.listeners[id]; !ok {
			return
		}
		delete(c.listeners, id)
		for i, cand := range c.order {
			if cand == id {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
}

// Watch returns a channel receiving events until ctx is done.
// Events are dropped when the consumer falls more than buffer events behind.
func (c *Coalescer) Watch(ctx context.Context, buffer int) <-chan Event {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	var mu sync.Mutex
	done := false
	cancel := c.Subscribe(func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		if done {
			return
		}
		select {
		case ch <- e:
		default:
			c.logger.Warn("notify: watcher buffer full, dropping event", "seq", e.Seq)
		}
	})

	go func() {
		<-ctx.Done()
		cancel()
		mu.Lock()
		done = true
		close(ch)
		mu.Unlock()
	}()
	return ch
}

// NotifyChanged records a change. It emits immediately when no signal went out
// during the current window, otherwise it marks a trailing flush as pending.
func (c *Coalescer) NotifyChanged() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.timer != nil {
		c.pending++
		c.mu.Unlock()
		return
	}
	c.timer = c.clock.AfterFunc(c.window, c.windowClosed)
	ev, listeners := c.nextEventLocked(1)
	c.mu.Unlock()

	c.emit(ev, listeners)
}

// Pending reports whether a trailing flush is scheduled.
func (c *Coalescer) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending > 0
}

// Close stops the trailing timer and drops every listener.
// NotifyChanged is a no-op afterwards.
func (c *Coalescer) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pending = 0
	c.listeners = make(map[string]Listener)
	c.order = nil
}

func (c *Coalescer) windowClosed() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.pending == 0 {
		c.timer = nil
		c.mu.Unlock()
		return
	}
	count := c.pending
	c.pending = 0
	c.timer = c.clock.AfterFunc(c.window, c.windowClosed)
	ev, listeners := c.nextEventLocked(count)
	c.mu.Unlock()

	c.emit(ev, listeners)
}

func (c *Coalescer) nextEventLocked(count int) (Event, []Listener) {
	c.seq++
	ev := Event{Seq: c.seq, At: c.clock.Now(), Coalesced: count}
	listeners := make([]Listener, 0, len(c.order))
	for _, id := range c.order {
		listeners = append(listeners, c.listeners[id])
	}
	return ev, listeners
}

func (c *Coalescer) emit(ev Event, listeners []Listener) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	c.logger.Debug("notify: graph changed", "seq", ev.Seq, "coalesced", ev.Coalesced, "listeners", len(listeners))
	for _, fn := range listeners {
		fn(ev)
	}
}
