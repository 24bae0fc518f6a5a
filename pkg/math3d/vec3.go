// Package math3d is the geometry kernel: vectors, homogeneous 4x4 transforms
// and the Euler-angle placement conventions shared by physics and rendering.
package math3d

import "math"

// Vec3 is a 3D vector used for points, directions and pushes.
type Vec3 struct {
	X, Y, Z float64
}

// V3 creates a new Vec3.
func V3(x, y, z float64) Vec3 {
	return Vec3{x, y, z}
}

// Zero3 returns the zero vector.
func Zero3() Vec3 {
	return Vec3{}
}

// One3 returns (1, 1, 1), the neutral scale.
func One3() Vec3 {
	return Vec3{1, 1, 1}
}

// Add returns a + b.
func (a Vec3) Add(b Vec3) Vec3 {
	return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

// Sub returns a - b.
func (a Vec3) Sub(b Vec3) Vec3 {
	return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

// Mul returns the component-wise product.
func (a Vec3) Mul(b Vec3) Vec3 {
	return Vec3{a.X * b.X, a.Y * b.Y, a.Z * b.Z}
}

// Scale returns a * s.
func (a Vec3) Scale(s float64) Vec3 {
	return Vec3{a.X * s, a.Y * s, a.Z * s}
}

// Inv returns the component-wise reciprocal.
func (a Vec3) Inv() Vec3 {
	return Vec3{1 / a.X, 1 / a.Y, 1 / a.Z}
}

// Dot returns the dot product.
func (a Vec3) Dot(b Vec3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Cross returns the cross product a × b.
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Len returns the length.
func (a Vec3) Len() float64 {
	return math.Sqrt(a.LenSq())
}

// LenSq returns the squared length.
func (a Vec3) LenSq() float64 {
	return a.X*a.X + a.Y*a.Y + a.Z*a.Z
}

// Normalize returns a unit vector in the same direction.
// The zero vector normalizes to zero.
func (a Vec3) Normalize() Vec3 {
	n, _ := a.Normalized()
	return n
}

// Normalized returns the unit vector and whether the input had a usable
// length. Vectors with squared length below 1e-24 report false.
func (a Vec3) Normalized() (Vec3, bool) {
	sq := a.LenSq()
	if sq < 1e-24 {
		return Vec3{}, false
	}
	return a.Scale(1 / math.Sqrt(sq)), true
}

// Negate returns -a.
func (a Vec3) Negate() Vec3 {
	return Vec3{-a.X, -a.Y, -a.Z}
}

// Lerp linearly interpolates between a and b.
func (a Vec3) Lerp(b Vec3, t float64) Vec3 {
	return a.Add(b.Sub(a).Scale(t))
}

// Distance returns |a - b|.
func (a Vec3) Distance(b Vec3) float64 {
	return a.Sub(b).Len()
}

// ClipLen shortens a to at most max length, keeping its direction.
func (a Vec3) ClipLen(max float64) Vec3 {
	sq := a.LenSq()
	if sq <= max*max || sq == 0 {
		return a
	}
	return a.Scale(max / math.Sqrt(sq))
}

// Min returns the component-wise minimum.
func (a Vec3) Min(b Vec3) Vec3 {
	return Vec3{math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z)}
}

// Max returns the component-wise maximum.
func (a Vec3) Max(b Vec3) Vec3 {
	return Vec3{math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z)}
}

// ApproxEqual reports whether every component differs by at most eps.
func (a Vec3) ApproxEqual(b Vec3, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps && math.Abs(a.Z-b.Z) <= eps
}
