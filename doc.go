/*
Package framegraph resolves rigid transforms between named coordinate frames.

A feed supplies pairwise edges ("parent -> child, rotation + translation"), either
durable (published once, never expiring) or expiring (republished continuously).
The Graph answers, at any time, what the pose of frame B is when expressed in
frame A, walking the edge graph in both directions and inverting
edges traversed against their stored direction.

# Concept

The Graph is a facade over three pieces:

  - store.Store keeps the two edge pools and the frame registry.
  - resolver.Resolver searches paths and composes transforms.
  - notify.Coalescer turns bursts of upserts into a bounded-rate "changed" signal.

Edges arrive in the feed's Z-up axis convention; every result is reported in the
renderer's Y-up convention (see package coordspace) unless ResolveSource is used.

# Usage

	g := framegraph.New(framegraph.WithLogger(logger))
	defer g.Dispose()

	cancel := g.Subscribe(func(notify.Event) {
		// Re-read whatever depends on the graph.
	})
	defer cancel()

	// Called by the transport for each inbound edge.
	_ = g.UpsertEdge(update)

	// Called by consumers on every tick. Never cache the result across ticks.
	t, err := g.Resolve("base_link", "map")
	if err != nil {
		// Unknown frame or no path: skip rendering this tick.
	}
*/
package framegraph
