package domain

import (
	"fmt"
	"time"

	"github.com/aretw0/framegraph/pkg/geom"
)

// Classification defines the lifetime policy of an edge.
type Classification string

const (
	Durable  Classification = "durable"  // Never expires (static attachments)
	Expiring Classification = "expiring" // Valid only while refreshed within the expiry window
)

// ParseClassification accepts the canonical names plus the "static"/"dynamic" aliases.
func ParseClassification(s string) (Classification, error) {
	switch s {
	case "durable", "static":
		return Durable, nil
	case "expiring", "dynamic", "":
		return Expiring, nil
	}
	return "", fmt.Errorf("unknown classification %q", s)
}

// Edge holds Child's pose expressed in Parent (tf convention), in the feed's axis
// convention. Applied to a point in Child's frame it yields the point in Parent's.
type Edge struct {
	Parent          string         `json:"parent"`
	Child           string         `json:"child"`
	Transform       geom.Transform `json:"transform"`
	Classification  Classification `json:"classification"`
	SourceTimestamp time.Time      `json:"source_timestamp,omitzero"`
	LastSeenAt      time.Time      `json:"last_seen_at"`
}

// IsStatic reports whether the edge is durable.
func (e Edge) IsStatic() bool {
	return e.Classification == Durable
}

// IsValid reports whether the edge counts as fresh at now.
// Durable edges are always valid; expiring edges only while now-LastSeenAt < window.
func (e Edge) IsValid(now time.Time, window time.Duration) bool {
	if e.IsStatic() {
		return true
	}
	return now.Sub(e.LastSeenAt) < window
}

// EdgeUpdate is a request to insert or refresh an edge.
// Translation and Rotation are pointers so that absent fields can be told apart from zero values.
type EdgeUpdate struct {
	Parent          string
	Child           string
	Translation     *geom.Vec3
	Rotation        *geom.Quat
	Classification  Classification
	SourceTimestamp time.Time
}

// Validate checks the update for the fields every stored edge must have.
func (u EdgeUpdate) Validate() error {
	switch {
	case u.Parent == "":
		return fmt.Errorf("%w: empty parent frame", ErrMalformedEdge)
	case u.Child == "":
		return fmt.Errorf("%w: empty child frame", ErrMalformedEdge)
	case u.Parent == u.Child:
		return fmt.Errorf("%w: frame %q attached to itself", ErrMalformedEdge, u.Parent)
	case u.Translation == nil:
		return fmt.Errorf("%w: missing translation", ErrMalformedEdge)
	case u.Rotation == nil:
		return fmt.Errorf("%w: missing rotation", ErrMalformedEdge)
	case u.Classification != Durable && u.Classification != Expiring:
		return fmt.Errorf("%w: unknown classification %q", ErrMalformedEdge, u.Classification)
	case !u.Translation.IsFinite():
		return fmt.Errorf("%w: non-finite translation", ErrMalformedEdge)
	case !u.Rotation.IsFinite() || u.Rotation.Norm() == 0:
		return fmt.Errorf("%w: rotation is not a usable quaternion", ErrMalformedEdge)
	}
	return nil
}
