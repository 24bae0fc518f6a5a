// Package collide implements sphere-vs-surface contact: colliders are
// rectangular plates derived from right triangles, tested against unit
// spheres in the collider's own frame.
package collide

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/noneuclid/pkg/math3d"
)

// ErrNotPerpendicular is returned when the two shorter edges of a collider
// triangle are not at a right angle.
var ErrNotPerpendicular = errors.New("collider edges are not perpendicular")

// perpendicularTolerance bounds |cos| between the two half-axes.
const perpendicularTolerance = 1e-3

// degenerateResidual is the squared distance below which the sphere center
// is considered to lie on the plate and no push direction exists.
const degenerateResidual = 1e-12

// Collider approximates a right triangle by the rectangle spanned by its two
// legs. Its frame maps the unit square [-1,1]² onto that rectangle: the origin
// is the midpoint of the hypotenuse and the X and Y axes are half-legs.
type Collider struct {
	frame math3d.Mat4
}

// NewCollider builds a collider from triangle (a, b, c). The longest edge is
// taken as the hypotenuse; the remaining two edges must be perpendicular.
func NewCollider(a, b, c math3d.Vec3) (Collider, error) {
	ab := b.Sub(a)
	bc := c.Sub(b)
	ca := a.Sub(c)

	var da, db, center math3d.Vec3
	switch longestEdge(ab.LenSq(), bc.LenSq(), ca.LenSq()) {
	case edgeAB:
		da, center, db = bc.Scale(0.5), a.Add(b).Scale(0.5), ca.Scale(0.5)
	case edgeBC:
		da, center, db = ca.Scale(0.5), b.Add(c).Scale(0.5), ab.Scale(0.5)
	default:
		da, center, db = ab.Scale(0.5), c.Add(a).Scale(0.5), bc.Scale(0.5)
	}

	la, lb := da.Len(), db.Len()
	if la == 0 || lb == 0 {
		return Collider{}, fmt.Errorf("degenerate triangle %v %v %v: %w", a, b, c, ErrNotPerpendicular)
	}
	if cos := math.Abs(da.Dot(db)) / (la * lb); cos >= perpendicularTolerance {
		return Collider{}, fmt.Errorf("triangle %v %v %v (cos %.4g): %w", a, b, c, cos, ErrNotPerpendicular)
	}

	frame := math3d.Identity()
	frame.SetAxes(da, db, da.Cross(db).Normalize())
	frame.SetTranslation(center)
	return Collider{frame: frame}, nil
}

const (
	edgeAB = iota
	edgeBC
	edgeCA
)

// longestEdge picks the hypotenuse from squared edge lengths. Ties go to
// the earlier edge in ab, bc, ca order.
func longestEdge(abSq, bcSq, caSq float64) int {
	switch {
	case abSq >= bcSq && abSq >= caSq:
		return edgeAB
	case bcSq >= abSq && bcSq >= caSq:
		return edgeBC
	}
	return edgeCA
}

// MustNewCollider is like NewCollider but panics on a malformed triangle.
func MustNewCollider(a, b, c math3d.Vec3) Collider {
	col, err := NewCollider(a, b, c)
	if err != nil {
		panic(err)
	}
	return col
}

// Frame returns the collider's local frame.
func (c Collider) Frame() math3d.Mat4 {
	return c.frame
}

// Center returns the midpoint of the hypotenuse.
func (c Collider) Center() math3d.Vec3 {
	return c.frame.Translation()
}

// Corners returns the four corners of the plate in mesh space.
func (c Collider) Corners() [4]math3d.Vec3 {
	o, x, y := c.frame.Translation(), c.frame.XAxis(), c.frame.YAxis()
	return [4]math3d.Vec3{
		o.Sub(x).Sub(y),
		o.Add(x).Sub(y),
		o.Add(x).Add(y),
		o.Sub(x).Add(y),
	}
}

// Collide tests a unit sphere against the collider. localToUnit maps the
// collider's mesh space into the sphere's unit space, where the sphere is
// centered at the origin with radius 1.
//
// On contact it returns the unit-space push that moves the sphere center to
// unit distance from the closest point on the plate.
func (c Collider) Collide(localToUnit math3d.Mat4) (math3d.Vec3, bool) {
	local := localToUnit.Mul(c.frame)

	// Sphere center relative to the plate origin, in unit space.
	v := local.Translation().Negate()
	x, y := local.XAxis(), local.YAxis()

	px := clamp(v.Dot(x)/x.LenSq(), -1, 1)
	py := clamp(v.Dot(y)/y.LenSq(), -1, 1)
	closest := x.Scale(px).Add(y.Scale(py))

	delta := v.Sub(closest)
	dSq := delta.LenSq()
	if dSq >= 1 || dSq < degenerateResidual {
		return math3d.Vec3{}, false
	}
	return delta.Scale(1 / math.Sqrt(dSq)).Sub(delta), true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
