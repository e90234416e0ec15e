package geom_test

import (
	"math"
	"testing"

	"github.com/aretw0/framegraph/pkg/geom"
	"github.com/stretchr/testify/assert"
)

const tol = 1e-9

func TestQuat_Rotate(t *testing.T) {
	tests := []struct {
		name string
		q    geom.Quat
		in   geom.Vec3
		want geom.Vec3
	}{
		{"identity", geom.IdentityQuat(), geom.Vec3{X: 1, Y: 2, Z: 3}, geom.Vec3{X: 1, Y: 2, Z: 3}},
		{"90 about z", geom.AxisAngle(geom.Vec3{Z: 1}, math.Pi/2), geom.Vec3{X: 1}, geom.Vec3{Y: 1}},
		{"90 about x", geom.AxisAngle(geom.Vec3{X: 1}, math.Pi/2), geom.Vec3{Y: 1}, geom.Vec3{Z: 1}},
		{"180 about y", geom.AxisAngle(geom.Vec3{Y: 1}, math.Pi), geom.Vec3{X: 1, Z: 1}, geom.Vec3{X: -1, Z: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.q.Rotate(tt.in)
			assert.True(t, got.ApproxEqual(tt.want, tol), "got %+v want %+v", got, tt.want)
		})
	}
}

func TestTransform_ThenAppliesInOrder(t *testing.T) {
	first := geom.Transform{
		Translation: geom.Vec3{X: 1},
		Rotation:    geom.AxisAngle(geom.Vec3{Z: 1}, math.Pi/2),
	}
	second := geom.Transform{
		Translation: geom.Vec3{Y: 2},
		Rotation:    geom.AxisAngle(geom.Vec3{X: 1}, math.Pi/2),
	}
	p := geom.Vec3{X: 0.5, Y: -1, Z: 2}

	composed := first.Then(second)
	want := second.Apply(first.Apply(p))

	assert.True(t, composed.Apply(p).ApproxEqual(want, tol))
}

func TestTransform_Inverse(t *testing.T) {
	tr := geom.Transform{
		Translation: geom.Vec3{X: 3, Y: -2, Z: 0.25},
		Rotation:    geom.AxisAngle(geom.Vec3{X: 1, Y: 1, Z: 0}, 0.7),
	}

	assert.True(t, tr.Then(tr.Inverse()).IsIdentity(tol))
	assert.True(t, tr.Inverse().Then(tr).IsIdentity(tol))

	p := geom.Vec3{X: 1, Y: 2, Z: 3}
	assert.True(t, tr.Inverse().Apply(tr.Apply(p)).ApproxEqual(p, tol))
}

func TestQuat_Normalize(t *testing.T) {
	q := geom.Quat{W: 2}.Normalize()
	assert.Equal(t, geom.IdentityQuat(), q)

	zero := geom.Quat{}
	assert.Equal(t, zero, zero.Normalize())
}

func TestQuat_SameRotation(t *testing.T) {
	q := geom.AxisAngle(geom.Vec3{Z: 1}, 1.2)
	neg := geom.Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: -q.W}

	assert.True(t, q.SameRotation(neg, tol))
	assert.False(t, q.ApproxEqual(neg, tol))
}

func TestFinite(t *testing.T) {
	assert.True(t, geom.Vec3{X: 1}.IsFinite())
	assert.False(t, geom.Vec3{X: math.NaN()}.IsFinite())
	assert.False(t, geom.Quat{W: math.Inf(1)}.IsFinite())
}
