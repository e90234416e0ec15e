package resolver_test

import (
	"math"
	"testing"

	"github.com/aretw0/framegraph/pkg/coordspace"
	"github.com/aretw0/framegraph/pkg/domain"
	"github.com/aretw0/framegraph/pkg/geom"
	"github.com/aretw0/framegraph/pkg/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func robotView() domain.View {
	return viewOf(
		link("map", "odom", geom.Vec3{X: 1}, geom.IdentityQuat()),
		link("odom", "base_link", geom.Vec3{Y: 1}, geom.IdentityQuat()),
		link("base_link", "laser", geom.Vec3{X: 0.2, Z: 0.3}, geom.AxisAngle(geom.Vec3{Z: 1}, math.Pi/2)),
		link("base_link", "camera", geom.Vec3{X: 0.1, Y: -0.05, Z: 0.5}, geom.AxisAngle(geom.Vec3{X: 1, Y: 0.5}, 0.8)),
	)
}

func TestResolve_Identity(t *testing.T) {
	r := resolver.New()
	view := robotView()

	for _, f := range []string{"map", "odom", "base_link", "laser", "camera"} {
		got, err := r.Resolve(f, f, view)
		require.NoError(t, err)
		assert.Equal(t, geom.Identity(), got)
	}
}

func TestResolve_DirectEdgeEquivalence(t *testing.T) {
	r := resolver.New()
	view := robotView()

	for _, e := range view.Edges() {
		got, err := r.Resolve(e.Parent, e.Child, view)
		require.NoError(t, err)
		assert.Equal(t, coordspace.ToTarget(e.Transform), got, "%s -> %s", e.Parent, e.Child)
	}
}

func TestResolve_AscendingIsInverseOfDescending(t *testing.T) {
	r := resolver.New()
	view := robotView()

	for _, e := range view.Edges() {
		down, err := r.Resolve(e.Parent, e.Child, view)
		require.NoError(t, err)
		up, err := r.Resolve(e.Child, e.Parent, view)
		require.NoError(t, err)

		assert.True(t, up.ApproxEqual(down.Inverse(), tol), "%s <- %s", e.Parent, e.Child)
		assert.True(t, down.Then(up).IsIdentity(tol))
		assert.True(t, up.Then(down).IsIdentity(tol))
	}
}

func TestResolve_MultiHopInverseConsistency(t *testing.T) {
	r := resolver.New()
	view := robotView()

	ab, err := r.Resolve("laser", "camera", view)
	require.NoError(t, err)
	ba, err := r.Resolve("camera", "laser", view)
	require.NoError(t, err)

	assert.True(t, ab.Then(ba).IsIdentity(tol))
}

func TestResolve_ComposesInPathOrder(t *testing.T) {
	r := resolver.New()
	view := robotView()

	got, err := r.Resolve("map", "laser", view)
	require.NoError(t, err)

	first := coordspace.ToTarget(geom.Transform{Translation: geom.Vec3{X: 1}, Rotation: geom.IdentityQuat()})
	second := coordspace.ToTarget(geom.Transform{Translation: geom.Vec3{Y: 1}, Rotation: geom.IdentityQuat()})
	third := coordspace.ToTarget(geom.Transform{Translation: geom.Vec3{X: 0.2, Z: 0.3}, Rotation: geom.AxisAngle(geom.Vec3{Z: 1}, math.Pi/2)})

	// A point in laser's frame passes through the laser edge first.
	p := geom.Vec3{X: 1, Y: 2, Z: 3}
	want := first.Apply(second.Apply(third.Apply(p)))
	assert.True(t, got.Apply(p).ApproxEqual(want, tol))
}

func TestResolve_RotatedParentChain(t *testing.T) {
	r := resolver.New()
	yaw := geom.AxisAngle(geom.Vec3{Z: 1}, math.Pi/2)
	view := viewOf(
		link("map", "base_link", geom.Vec3{X: 1}, yaw),
		link("base_link", "laser", geom.Vec3{X: 0.2}, geom.IdentityQuat()),
	)

	// base_link faces +Y in map, so the laser mounted 0.2 ahead of it sits at (1, 0.2, 0).
	got, err := r.Resolve("map", "laser", view)
	require.NoError(t, err)
	src := coordspace.ToSource(got)
	assert.True(t, src.Translation.ApproxEqual(geom.Vec3{X: 1, Y: 0.2}, tol), "%+v", src.Translation)
	assert.True(t, src.Rotation.SameRotation(yaw, tol))

	// The laser's forward axis points along map +Y.
	pt := coordspace.ToSourceVector(got.Apply(coordspace.ToTargetVector(geom.Vec3{X: 1})))
	assert.True(t, pt.ApproxEqual(geom.Vec3{X: 1, Y: 1.2}, tol), "%+v", pt)

	back, err := r.Resolve("laser", "map", view)
	require.NoError(t, err)
	assert.True(t, coordspace.ToSource(back).Translation.ApproxEqual(geom.Vec3{X: -0.2, Y: 1}, tol))
	assert.True(t, back.Then(got).IsIdentity(tol))
}

func TestResolve_BaseLinkPoseInMap(t *testing.T) {
	r := resolver.New()
	view := viewOf(
		link("map", "odom", geom.Vec3{X: 1}, geom.IdentityQuat()),
		link("odom", "base_link", geom.Vec3{Y: 1}, geom.IdentityQuat()),
	)

	// base_link sits at (1,1,0) in map in the feed convention, (1,0,-1) in the renderer's.
	down, err := r.Resolve("map", "base_link", view)
	require.NoError(t, err)
	assert.True(t, down.Translation.ApproxEqual(geom.Vec3{X: 1, Y: 0, Z: -1}, tol))
	assert.True(t, down.Rotation.SameRotation(geom.IdentityQuat(), tol))

	// map's origin seen from base_link.
	up, err := r.Resolve("base_link", "map", view)
	require.NoError(t, err)
	assert.True(t, up.Translation.ApproxEqual(geom.Vec3{X: -1, Y: 0, Z: 1}, tol))
	assert.True(t, up.Rotation.SameRotation(geom.IdentityQuat(), tol))
}

func TestResolve_Failures(t *testing.T) {
	r := resolver.New()
	view := viewOf(
		plain("map", "odom"),
		plain("unrelated_parent", "unrelated_frame"),
	)

	_, err := r.Resolve("map", "unrelated_frame", view)
	assert.ErrorIs(t, err, domain.ErrNoPath)

	_, err = r.Resolve("map", "ghost", view)
	assert.ErrorIs(t, err, domain.ErrUnknownFrame)

	_, err = r.Resolve("map", "odom", domain.View{})
	assert.ErrorIs(t, err, domain.ErrUnknownFrame)
}

func TestStep_PrefersForwardEdge(t *testing.T) {
	view := viewOf(
		link("a", "b", geom.Vec3{X: 1}, geom.IdentityQuat()),
		link("b", "a", geom.Vec3{X: 5}, geom.IdentityQuat()),
	)

	got, err := resolver.Step("a", "b", view)
	require.NoError(t, err)
	assert.Equal(t, geom.Vec3{X: 1}, got.Translation)
}

func TestCompose_InconsistentPath(t *testing.T) {
	view := viewOf(plain("a", "b"))

	_, err := resolver.Compose([]string{"a", "b", "c"}, view)
	assert.ErrorIs(t, err, domain.ErrInconsistentPath)
}
