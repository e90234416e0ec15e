// Package testutils holds helpers shared by tests across packages.
package testutils

import (
	"path/filepath"
	"testing"

	"github.com/aretw0/framegraph/pkg/adapters/file"
	"github.com/aretw0/framegraph/pkg/domain"
	"github.com/aretw0/framegraph/pkg/geom"
	"github.com/aretw0/framegraph/pkg/ports"
	"github.com/stretchr/testify/require"
)

// Offset is a pure translation.
func Offset(x, y, z float64) geom.Transform {
	return geom.Transform{Translation: geom.Vec3{X: x, Y: y, Z: z}, Rotation: geom.IdentityQuat()}
}

// Upsert inserts one edge into sink.
// It fails the test immediately on error.
func Upsert(t testing.TB, sink ports.EdgeSink, parent, child string, tr geom.Transform, class domain.Classification) {
	t.Helper()

	v, q := tr.Translation, tr.Rotation
	require.NoError(t, sink.UpsertEdge(domain.EdgeUpdate{
		Parent:         parent,
		Child:          child,
		Translation:    &v,
		Rotation:       &q,
		Classification: class,
	}), "Failed to upsert %s -> %s", parent, child)
}

// SeedChain upserts durable edges map -> odom (x=1) and odom -> base_link (y=1).
func SeedChain(t testing.TB, sink ports.EdgeSink) {
	t.Helper()
	Upsert(t, sink, "map", "odom", Offset(1, 0, 0), domain.Durable)
	Upsert(t, sink, "odom", "base_link", Offset(0, 1, 0), domain.Durable)
}

// WriteFixture saves fx as name inside a temporary directory and returns its path.
// The extension of name selects the format.
func WriteFixture(t testing.TB, name string, fx file.Fixture) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, file.Save(path, fx), "Failed to write fixture")
	return path
}
