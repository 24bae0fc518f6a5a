package render

import (
	"github.com/taigrr/noneuclid/pkg/math3d"
)

// Plane is the set of points p with Normal·p + D = 0.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Normalize scales the plane equation so the normal has unit length.
func (p *Plane) Normalize() {
	n := p.Normal.Len()
	if n == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1 / n)
	p.D /= n
}

// DistanceToPoint returns the signed distance to point; positive on the
// normal side.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum holds six inward-facing planes: left, right, bottom, top, near, far.
type Frustum struct {
	Planes [6]Plane
}

const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewFrustumFromMatrix extracts frustum planes from a view-projection matrix
// with the Gribb/Hartmann method. With an oblique projection the near plane
// is the clip plane.
func NewFrustumFromMatrix(m math3d.Mat4) Frustum {
	w := m.Row(3)
	rows := [3]math3d.Vec4{m.Row(0), m.Row(1), m.Row(2)}

	var f Frustum
	for i, row := range rows {
		lo, hi := w.Add(row), w.Sub(row)
		f.Planes[2*i] = Plane{Normal: lo.Vec3(), D: lo.W}
		f.Planes[2*i+1] = Plane{Normal: hi.Vec3(), D: hi.W}
	}
	for i := range f.Planes {
		f.Planes[i].Normalize()
	}
	return f
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// Transform returns the box bounding all eight corners after m.
func (b AABB) Transform(m math3d.Mat4) AABB {
	out := AABB{Min: m.MulPoint(b.Min)}
	out.Max = out.Min
	for i := 1; i < 8; i++ {
		c := b.Min
		if i&1 != 0 {
			c.X = b.Max.X
		}
		if i&2 != 0 {
			c.Y = b.Max.Y
		}
		if i&4 != 0 {
			c.Z = b.Max.Z
		}
		p := m.MulPoint(c)
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

// IntersectAABB reports whether any part of box may be inside the frustum.
// It tests the corner furthest along each plane normal.
func (f Frustum) IntersectAABB(box AABB) bool {
	for _, plane := range f.Planes {
		p := box.Min
		if plane.Normal.X >= 0 {
			p.X = box.Max.X
		}
		if plane.Normal.Y >= 0 {
			p.Y = box.Max.Y
		}
		if plane.Normal.Z >= 0 {
			p.Z = box.Max.Z
		}
		if plane.DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether p is inside every plane.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for _, plane := range f.Planes {
		if plane.DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsSphere reports whether a sphere may be inside the frustum.
func (f Frustum) IntersectsSphere(center math3d.Vec3, radius float64) bool {
	for _, plane := range f.Planes {
		if plane.DistanceToPoint(center) < -radius {
			return false
		}
	}
	return true
}
