// Package coordspace converts vectors and rotations between the feed's axis
// convention (Z-up, right-handed) and the renderer's axis convention (Y-up,
// right-handed).
//
// Every component that touches raw edges goes through these functions. The remap
// is a fixed -90 degree rotation about X, so it commutes with rigid composition and
// inversion.
package coordspace

import "github.com/aretw0/framegraph/pkg/geom"

// ToTargetVector maps a feed-convention vector into the renderer convention.
func ToTargetVector(v geom.Vec3) geom.Vec3 {
	return geom.Vec3{X: v.X, Y: v.Z, Z: -v.Y}
}

// ToTargetRotation maps a feed-convention rotation into the renderer convention.
func ToTargetRotation(q geom.Quat) geom.Quat {
	return geom.Quat{X: q.X, Y: q.Z, Z: -q.Y, W: q.W}
}

// ToSourceVector is the inverse of ToTargetVector.
func ToSourceVector(v geom.Vec3) geom.Vec3 {
	return geom.Vec3{X: v.X, Y: -v.Z, Z: v.Y}
}

// ToSourceRotation is the inverse of ToTargetRotation.
func ToSourceRotation(q geom.Quat) geom.Quat {
	return geom.Quat{X: q.X, Y: -q.Z, Z: q.Y, W: q.W}
}

// ToTarget converts a whole transform into the renderer convention.
func ToTarget(t geom.Transform) geom.Transform {
	return geom.Transform{
		Translation: ToTargetVector(t.Translation),
		Rotation:    ToTargetRotation(t.Rotation),
	}
}

// ToSource converts a whole transform back into the feed convention.
func ToSource(t geom.Transform) geom.Transform {
	return geom.Transform{
		Translation: ToSourceVector(t.Translation),
		Rotation:    ToSourceRotation(t.Rotation),
	}
}
