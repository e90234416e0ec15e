package geom

import "math"

// DefaultTolerance is the absolute tolerance used by the ApproxEqual helpers.
const DefaultTolerance = 1e-9

// Vec3 is a 3D vector.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Neg returns -v.
func (v Vec3) Neg() Vec3 {
	return v.Scale(-1)
}

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Cross returns the cross product v x o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// IsFinite reports whether every component is a finite number.
func (v Vec3) IsFinite() bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}

// ApproxEqual compares component-wise within tol.
func (v Vec3) ApproxEqual(o Vec3, tol float64) bool {
	return near(v.X, o.X, tol) && near(v.Y, o.Y, tol) && near(v.Z, o.Z, tol)
}

// Quat is a rotation quaternion stored as (X, Y, Z, W).
type Quat struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
	W float64 `json:"w" yaml:"w"`
}

// IdentityQuat is the rotation that does nothing.
func IdentityQuat() Quat {
	return Quat{W: 1}
}

// Norm returns the quaternion magnitude.
func (q Quat) Norm() float64 {
	return math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
}

// Normalize returns q scaled to unit length. A zero quaternion is returned unchanged.
func (q Quat) Normalize() Quat {
	n := q.Norm()
	if n == 0 {
		return q
	}
	return Quat{X: q.X / n, Y: q.Y / n, Z: q.Z / n, W: q.W / n}
}

// Conjugate returns the conjugate, which is the inverse for unit quaternions.
func (q Quat) Conjugate() Quat {
	return Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// Mul returns the Hamilton product q*o (o is applied first when rotating vectors).
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

// Rotate applies the rotation to v. q must be a unit quaternion.
func (q Quat) Rotate(v Vec3) Vec3 {
	// v' = v + 2w(u x v) + 2u x (u x v)
	u := Vec3{X: q.X, Y: q.Y, Z: q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// IsFinite reports whether every component is a finite number.
func (q Quat) IsFinite() bool {
	return finite(q.X) && finite(q.Y) && finite(q.Z) && finite(q.W)
}

// ApproxEqual compares component-wise within tol.
func (q Quat) ApproxEqual(o Quat, tol float64) bool {
	return near(q.X, o.X, tol) && near(q.Y, o.Y, tol) && near(q.Z, o.Z, tol) && near(q.W, o.W, tol)
}

// SameRotation reports whether q and o describe the same rotation within tol.
// q and -q are the same rotation.
func (q Quat) SameRotation(o Quat, tol float64) bool {
	neg := Quat{X: -o.X, Y: -o.Y, Z: -o.Z, W: -o.W}
	return q.ApproxEqual(o, tol) || q.ApproxEqual(neg, tol)
}

// AxisAngle builds a unit quaternion rotating angle radians around axis.
func AxisAngle(axis Vec3, angle float64) Quat {
	n := math.Sqrt(axis.Dot(axis))
	if n == 0 {
		return IdentityQuat()
	}
	s := math.Sin(angle/2) / n
	return Quat{X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s, W: math.Cos(angle / 2)}
}

// Transform is a rigid transform: rotation followed by translation.
type Transform struct {
	Translation Vec3 `json:"translation" yaml:"translation"`
	Rotation    Quat `json:"rotation" yaml:"rotation"`
}

// Identity returns the transform that maps every point to itself.
func Identity() Transform {
	return Transform{Rotation: IdentityQuat()}
}

// Apply maps p through the transform.
func (t Transform) Apply(p Vec3) Vec3 {
	return t.Rotation.Rotate(p).Add(t.Translation)
}

// Then returns the transform that applies t first and next second.
func (t Transform) Then(next Transform) Transform {
	return Transform{
		Translation: next.Rotation.Rotate(t.Translation).Add(next.Translation),
		Rotation:    next.Rotation.Mul(t.Rotation).Normalize(),
	}
}

// Inverse returns the transform that undoes t.
func (t Transform) Inverse() Transform {
	inv := t.Rotation.Conjugate()
	return Transform{
		Translation: inv.Rotate(t.Translation).Neg(),
		Rotation:    inv,
	}
}

// ApproxEqual compares translations component-wise and rotations up to sign.
func (t Transform) ApproxEqual(o Transform, tol float64) bool {
	return t.Translation.ApproxEqual(o.Translation, tol) && t.Rotation.SameRotation(o.Rotation, tol)
}

// IsIdentity reports whether t is the identity within tol.
func (t Transform) IsIdentity(tol float64) bool {
	return t.ApproxEqual(Identity(), tol)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
