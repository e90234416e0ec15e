package file

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/framegraph/internal/logging"
	"github.com/aretw0/framegraph/pkg/domain"
	"github.com/aretw0/framegraph/pkg/ingest"
	"github.com/aretw0/framegraph/pkg/ports"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events an editor produces on save.
const DefaultDebounce = 50 * time.Millisecond

// Feed implements ports.Feed from a fixture file.
//
// With watching enabled, every change to the file clears the graph and applies
// the new contents. With a refresh interval, dynamic edges are re-applied
// periodically so they stay inside the expiry window.
type Feed struct {
	path     string
	watch    bool
	refresh  time.Duration
	debounce time.Duration
	logger   *slog.Logger
}

var _ ports.Feed = (*Feed)(nil)

// Option configures the Feed.
type Option func(*Feed)

// WithWatch enables hot reload on file changes.
func WithWatch(enabled bool) Option {
	return func(f *Feed) {
		f.watch = enabled
	}
}

// WithRefresh re-applies the dynamic section every interval. Zero disables it.
func WithRefresh(interval time.Duration) Option {
	return func(f *Feed) {
		f.refresh = interval
	}
}

// WithDebounce sets how long to wait for change events to settle before reloading.
func WithDebounce(d time.Duration) Option {
	return func(f *Feed) {
		if d > 0 {
			f.debounce = d
		}
	}
}

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Feed) {
		f.logger = logger
	}
}

// NewFeed creates a feed for the fixture at path.
func NewFeed(path string, opts ...Option) *Feed {
	f := &Feed{
		path:     path,
		debounce: DefaultDebounce,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Run applies the fixture and, if configured, keeps it live until ctx is done.
// A fixture that fails to load on start is an error; a failed reload keeps the
// previous graph and is only logged.
func (f *Feed) Run(ctx context.Context, target ports.FeedTarget) error {
	fx, err := Load(f.path)
	if err != nil {
		return err
	}

	target.SetActive(true)
	defer target.SetActive(false)

	applier := ingest.NewApplier(target, ingest.WithLogger(f.logger))
	f.apply(fx, applier)

	if !f.watch && f.refresh <= 0 {
		<-ctx.Done()
		return nil
	}

	var events <-chan fsnotify.Event
	var errs <-chan error
	if f.watch {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		defer watcher.Close()
		// Watch the directory: editors replace files by rename, which drops a file watch.
		if err := watcher.Add(filepath.Dir(f.path)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", f.path, err)
		}
		events, errs = watcher.Events, watcher.Errors
	}

	var tick <-chan time.Time
	if f.refresh > 0 {
		ticker := time.NewTicker(f.refresh)
		defer ticker.Stop()
		tick = ticker.C
	}

	var settle <-chan time.Time
	name := filepath.Clean(f.path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			if filepath.Clean(ev.Name) != name {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				settle = time.After(f.debounce)
			}

		case err := <-errs:
			f.logger.Warn("fixture watcher error", "path", f.path, "error", err)

		case <-settle:
			settle = nil
			next, err := Load(f.path)
			if err != nil {
				f.logger.Warn("fixture reload failed, keeping previous graph", "path", f.path, "error", err)
				continue
			}
			fx = next
			target.SetActive(false)
			target.SetActive(true)
			f.logger.Info("fixture reloaded", "path", f.path, "edges", fx.Len())
			f.apply(fx, applier)

		case <-tick:
			applier.Apply(fx.Dynamic, domain.Expiring)
		}
	}
}

func (f *Feed) apply(fx Fixture, applier *ingest.Applier) {
	res := fx.Apply(applier)
	f.logger.Debug("fixture applied", "path", f.path, "accepted", res.Accepted, "rejected", res.Rejected)
}
