package collide

import "github.com/taigrr/noneuclid/pkg/math3d"

// Sphere is a hit volume in its owner's local space.
type Sphere struct {
	Center math3d.Vec3
	Radius float64
}

// LocalToUnit maps owner-local space into the sphere's unit space.
func (s Sphere) LocalToUnit() math3d.Mat4 {
	return math3d.ScaleUniform(1 / s.Radius).Mul(math3d.Translate(s.Center.Negate()))
}

// UnitToLocal maps unit space back to owner-local space.
func (s Sphere) UnitToLocal() math3d.Mat4 {
	return math3d.Translate(s.Center).Mul(math3d.ScaleUniform(s.Radius))
}
