package render

import (
	"math"

	"github.com/taigrr/noneuclid/pkg/math3d"
)

// Camera is a view and projection pair sized to a framebuffer.
type Camera struct {
	Width  int
	Height int

	FOV  float64 // Vertical field of view in radians
	Near float64
	Far  float64

	View       math3d.Mat4 // World to camera
	Projection math3d.Mat4 // Camera to clip
}

// NewCamera creates a camera with the given vertical field of view in degrees.
func NewCamera(fovDegrees float64) *Camera {
	return &Camera{
		FOV:        fovDegrees * math.Pi / 180,
		View:       math3d.Identity(),
		Projection: math3d.Identity(),
	}
}

// SetSize rebuilds the projection for a width x height target.
func (c *Camera) SetSize(width, height int, near, far float64) {
	c.Width = width
	c.Height = height
	c.Near = near
	c.Far = far
	aspect := 1.0
	if height > 0 {
		aspect = float64(width) / float64(height)
	}
	c.Projection = math3d.Perspective(c.FOV, aspect, near, far)
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() math3d.Mat4 {
	return c.Projection.Mul(c.View)
}

// Position returns the camera origin in world space.
func (c *Camera) Position() math3d.Vec3 {
	return c.View.Inverse().Translation()
}

// Forward returns the world-space view direction.
func (c *Camera) Forward() math3d.Vec3 {
	return c.View.Inverse().MulDir(math3d.V3(0, 0, -1)).Normalize()
}

// ClipOblique replaces the near plane of the projection with the world-space
// plane through pos. normal must point toward the camera; geometry between
// the camera and the plane is clipped.
func (c *Camera) ClipOblique(pos, normal math3d.Vec3) {
	cpos := c.View.MulPoint(pos)
	cnormal := c.View.MulDir(normal)
	plane := math3d.V4(cnormal.X, cnormal.Y, cnormal.Z, -cpos.Dot(cnormal))

	// Far corner of the clip volume on the side the plane faces away from.
	q := c.Projection.Inverse().MulVec4(math3d.V4(-sign(plane.X), -sign(plane.Y), 1, 1))
	d := plane.Dot(q)
	if d == 0 {
		return
	}
	cc := plane.Scale(2 / d)

	p := &c.Projection
	p[2] = cc.X - p[3]
	p[6] = cc.Y - p[7]
	p[10] = cc.Z - p[11]
	p[14] = cc.W - p[15]
}

// Project maps a world point to pixel coordinates and ndc depth.
// ok is false when the point is behind the camera.
func (c *Camera) Project(p math3d.Vec3) (x, y, depth float64, ok bool) {
	clip := c.ViewProjection().MulVec4(math3d.V4FromV3(p, 1))
	if clip.W <= 0 {
		return 0, 0, 0, false
	}
	ndc := clip.PerspectiveDivide()
	x = (ndc.X + 1) * 0.5 * float64(c.Width)
	y = (1 - ndc.Y) * 0.5 * float64(c.Height)
	return x, y, ndc.Z, true
}

// sign returns -1 for negative values and 1 otherwise.
func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
