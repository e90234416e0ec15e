package ports

import "github.com/aretw0/framegraph/pkg/domain"

// EdgeSink accepts edge updates.
// Implementations reject malformed updates with domain.ErrMalformedEdge and never panic.
type EdgeSink interface {
	UpsertEdge(u domain.EdgeUpdate) error
}

// FeedTarget is the surface a transport-owning collaborator drives.
type FeedTarget interface {
	EdgeSink

	// SetActive follows the transport connection. SetActive(false) clears the graph.
	SetActive(active bool)
}

// GraphReader is the read side of the graph consumed by adapters.
type GraphReader interface {
	MergedView() domain.View
	HasFrame(name string) bool
	ListFrames() []string
}
