package ports

import "context"

// Feed delivers edges from an external transport into a FeedTarget.
// Run blocks until ctx is canceled or the transport fails.
type Feed interface {
	Run(ctx context.Context, target FeedTarget) error
}

// FeedFunc adapts a function to the Feed interface.
type FeedFunc func(ctx context.Context, target FeedTarget) error

// Run calls f(ctx, target).
func (f FeedFunc) Run(ctx context.Context, target FeedTarget) error {
	return f(ctx, target)
}
