package resolver

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/framegraph/internal/logging"
	"github.com/aretw0/framegraph/pkg/coordspace"
	"github.com/aretw0/framegraph/pkg/domain"
	"github.com/aretw0/framegraph/pkg/geom"
)

// Resolver composes transforms between frames.
type Resolver struct {
	logger *slog.Logger
}

// Option configures the Resolver.
type Option func(*Resolver)

// WithLogger configures a logger for the Resolver.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns target's pose expressed in source, in the renderer's axis
// convention. Applied to a point given in target's frame it yields that point
// in source's frame.
//
// Failures are reported as errors wrapping domain.ErrUnknownFrame,
// domain.ErrNoPath or domain.ErrInconsistentPath; none of them is fatal.
func (r *Resolver) Resolve(source, target string, view domain.View) (geom.Transform, error) {
	if source == target {
		return geom.Identity(), nil
	}

	path := FindPath(source, target, view)
	if path == nil {
		adj := view.Adjacency()
		for _, name := range []string{source, target} {
			if _, ok := adj[name]; !ok {
				return geom.Transform{}, fmt.Errorf("%w: %q", domain.ErrUnknownFrame, name)
			}
		}
		r.logger.Warn("resolver: no path between frames", "source", source, "target", target)
		return geom.Transform{}, fmt.Errorf("%w: %q -> %q", domain.ErrNoPath, source, target)
	}

	t, err := Compose(path, view)
	if err != nil {
		r.logger.Warn("resolver: path inconsistent with graph", "source", source, "target", target, "error", err)
		return geom.Transform{}, err
	}
	return t, nil
}

// Compose folds the edges along path into the pose of the last frame expressed
// in path[0], in the renderer's convention. Each step is right-multiplied, so
// the edge nearest the end of the path is applied to points first.
//
// For each step a->b the stored edge a->b is preferred; otherwise the inverse of
// b->a is used. A step with neither edge fails with domain.ErrInconsistentPath.
func Compose(path []string, view domain.View) (geom.Transform, error) {
	if len(path) < 2 {
		return geom.Identity(), nil
	}
	acc, err := Step(path[0], path[1], view)
	if err != nil {
		return geom.Transform{}, err
	}
	for i := 1; i+1 < len(path); i++ {
		step, err := Step(path[i], path[i+1], view)
		if err != nil {
			return geom.Transform{}, err
		}
		acc = step.Then(acc)
	}
	return acc, nil
}

// Step returns b's pose expressed in a for one edge, in the renderer's convention.
func Step(a, b string, view domain.View) (geom.Transform, error) {
	if e, ok := view.Edge(a, b); ok {
		return coordspace.ToTarget(e.Transform), nil
	}
	if e, ok := view.Edge(b, a); ok {
		return coordspace.ToTarget(e.Transform).Inverse(), nil
	}
	return geom.Transform{}, fmt.Errorf("%w: no edge between %q and %q", domain.ErrInconsistentPath, a, b)
}
