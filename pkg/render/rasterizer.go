package render

import (
	"math"

	"github.com/taigrr/noneuclid/pkg/math3d"
)

// clipEpsilon keeps clipped vertices strictly in front of the eye.
const clipEpsilon = 1e-6

// MeshSource is the drawable part of a mesh.
type MeshSource interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// BoundedMeshSource is a MeshSource with a local bounding box, used for
// frustum culling.
type BoundedMeshSource interface {
	MeshSource
	GetBounds() (min, max math3d.Vec3)
}

// Shading selects how covered pixels are colored.
type Shading int

const (
	ShadeTextured Shading = iota // Texture (or Color) with directional lighting
	ShadeSolid                   // Flat Color, unlit
	ShadeScreen                  // Copy Screen at the same pixel
)

// Material describes how a mesh is shaded.
type Material struct {
	Shading Shading
	Texture *Texture
	Color   Color
	Screen  *Framebuffer
}

// CullingStats counts frustum culling results since the last reset.
type CullingStats struct {
	MeshesTested int
	MeshesCulled int
	MeshesDrawn  int
	Triangles    int
}

// Rasterizer draws meshes into a framebuffer from a camera.
type Rasterizer struct {
	camera       *Camera
	fb           *Framebuffer
	frustum      Frustum
	frustumDirty bool

	ColorWrite             bool
	DepthWrite             bool
	DisableBackfaceCulling bool
	LightDir               math3d.Vec3
	CullingStats           CullingStats
}

// NewRasterizer creates a rasterizer with color and depth writes enabled.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	return &Rasterizer{
		camera:       camera,
		fb:           fb,
		frustumDirty: true,
		ColorWrite:   true,
		DepthWrite:   true,
		LightDir:     math3d.V3(0.3, 1, 0.5).Normalize(),
	}
}

// Camera returns the current camera.
func (r *Rasterizer) Camera() *Camera {
	return r.camera
}

// Target returns the framebuffer being drawn into.
func (r *Rasterizer) Target() *Framebuffer {
	return r.fb
}

// SetCamera switches the camera and invalidates the cached frustum.
func (r *Rasterizer) SetCamera(c *Camera) {
	r.camera = c
	r.frustumDirty = true
}

// SetTarget switches the framebuffer.
func (r *Rasterizer) SetTarget(fb *Framebuffer) {
	r.fb = fb
}

// InvalidateFrustum marks the frustum as needing recalculation.
// Call this after changing the camera matrices in place.
func (r *Rasterizer) InvalidateFrustum() {
	r.frustumDirty = true
}

// Frustum returns the current view frustum.
func (r *Rasterizer) Frustum() Frustum {
	if r.frustumDirty {
		r.frustum = NewFrustumFromMatrix(r.camera.ViewProjection())
		r.frustumDirty = false
	}
	return r.frustum
}

// IsVisible tests a local-space box placed by model against the frustum.
func (r *Rasterizer) IsVisible(local AABB, model math3d.Mat4) bool {
	return r.Frustum().IntersectAABB(local.Transform(model))
}

// ResetCullingStats zeroes the counters.
func (r *Rasterizer) ResetCullingStats() {
	r.CullingStats = CullingStats{}
}

// DrawMesh draws mesh placed by model and returns the number of pixels that
// passed the depth test.
func (r *Rasterizer) DrawMesh(mesh MeshSource, model math3d.Mat4, mat Material) int {
	if r.fb == nil || r.camera == nil || r.fb.Width == 0 || r.fb.Height == 0 {
		return 0
	}
	if bounded, ok := mesh.(BoundedMeshSource); ok {
		r.CullingStats.MeshesTested++
		lo, hi := bounded.GetBounds()
		if !r.IsVisible(AABB{Min: lo, Max: hi}, model) {
			r.CullingStats.MeshesCulled++
			return 0
		}
		r.CullingStats.MeshesDrawn++
	}

	mvp := r.camera.ViewProjection().Mul(model)
	samples := 0
	for i := 0; i < mesh.TriangleCount(); i++ {
		face := mesh.GetFace(i)
		var in [3]clipVertex
		var world [3]math3d.Vec3
		for k, idx := range face {
			pos, uv := mesh.GetVertex(idx)
			in[k] = clipVertex{pos: mvp.MulVec4(math3d.V4FromV3(pos, 1)), uv: uv}
			world[k] = model.MulPoint(pos)
		}
		intensity := 1.0
		if mat.Shading == ShadeTextured {
			n := world[1].Sub(world[0]).Cross(world[2].Sub(world[0])).Normalize()
			intensity = 0.45 + 0.55*math.Max(0, n.Dot(r.LightDir))
		}
		samples += r.drawClipped(in, mat, intensity)
	}
	return samples
}

// CountSamples reports how many pixels of mesh would pass the depth test,
// without writing color or depth.
func (r *Rasterizer) CountSamples(mesh MeshSource, model math3d.Mat4) int {
	colorWrite, depthWrite := r.ColorWrite, r.DepthWrite
	r.ColorWrite, r.DepthWrite = false, false
	defer func() { r.ColorWrite, r.DepthWrite = colorWrite, depthWrite }()
	return r.DrawMesh(mesh, model, Material{Shading: ShadeSolid})
}

// clipVertex is a vertex in homogeneous clip space.
type clipVertex struct {
	pos math3d.Vec4
	uv  math3d.Vec2
}

func (a clipVertex) lerp(b clipVertex, t float64) clipVertex {
	return clipVertex{pos: a.pos.Lerp(b.pos, t), uv: a.uv.Lerp(b.uv, t)}
}

// clipPolygon keeps the part of poly where dist >= 0 (Sutherland-Hodgman).
func clipPolygon(poly []clipVertex, dist func(math3d.Vec4) float64) []clipVertex {
	if len(poly) == 0 {
		return nil
	}
	out := make([]clipVertex, 0, len(poly)+2)
	prev := poly[len(poly)-1]
	dPrev := dist(prev.pos)
	for _, cur := range poly {
		dCur := dist(cur.pos)
		if dCur >= 0 {
			if dPrev < 0 {
				out = append(out, prev.lerp(cur, dPrev/(dPrev-dCur)))
			}
			out = append(out, cur)
		} else if dPrev >= 0 {
			out = append(out, prev.lerp(cur, dPrev/(dPrev-dCur)))
		}
		prev, dPrev = cur, dCur
	}
	return out
}

func wPlane(p math3d.Vec4) float64    { return p.W - clipEpsilon }
func nearPlane(p math3d.Vec4) float64 { return p.Z + p.W }

// drawClipped clips a triangle against the eye and near planes and fills
// the resulting fan.
func (r *Rasterizer) drawClipped(tri [3]clipVertex, mat Material, intensity float64) int {
	inside := true
	for _, v := range tri {
		if wPlane(v.pos) < 0 || nearPlane(v.pos) < 0 {
			inside = false
			break
		}
	}
	poly := tri[:]
	if !inside {
		poly = clipPolygon(poly, wPlane)
		poly = clipPolygon(poly, nearPlane)
		if len(poly) < 3 {
			return 0
		}
	}

	samples := 0
	for i := 1; i+1 < len(poly); i++ {
		samples += r.fill(poly[0], poly[i], poly[i+1], mat, intensity)
	}
	return samples
}

// screenVertex holds a vertex after the perspective divide.
type screenVertex struct {
	X, Y float64 // Pixel coordinates
	Z    float64 // ndc depth
	InvW float64
	UV   math3d.Vec2 // Divided by w
}

func (r *Rasterizer) toScreen(v clipVertex) screenVertex {
	invW := 1 / v.pos.W
	return screenVertex{
		X:    (v.pos.X*invW + 1) * 0.5 * float64(r.fb.Width),
		Y:    (1 - v.pos.Y*invW) * 0.5 * float64(r.fb.Height),
		Z:    v.pos.Z * invW,
		InvW: invW,
		UV:   v.uv.Scale(invW),
	}
}

// fill rasterizes one clipped triangle with edge functions.
func (r *Rasterizer) fill(a, b, c clipVertex, mat Material, intensity float64) int {
	sv := [3]screenVertex{r.toScreen(a), r.toScreen(b), r.toScreen(c)}

	// Screen y points down, so counter-clockwise in ndc is negative here.
	area := (sv[1].X-sv[0].X)*(sv[2].Y-sv[0].Y) - (sv[1].Y-sv[0].Y)*(sv[2].X-sv[0].X)
	if area == 0 {
		return 0
	}
	if area > 0 {
		if !r.DisableBackfaceCulling {
			return 0
		}
		sv[1], sv[2] = sv[2], sv[1]
		area = -area
	}
	r.CullingStats.Triangles++

	w, h := r.fb.Width, r.fb.Height
	minX := max(0, int(math.Floor(min3(sv[0].X, sv[1].X, sv[2].X))))
	maxX := min(w-1, int(math.Ceil(max3(sv[0].X, sv[1].X, sv[2].X))))
	minY := max(0, int(math.Floor(min3(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := min(h-1, int(math.Ceil(max3(sv[0].Y, sv[1].Y, sv[2].Y))))
	if minX > maxX || minY > maxY {
		return 0
	}

	invArea := 1 / area
	samples := 0
	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			w0 := edge(sv[1], sv[2], px, py) * invArea
			w1 := edge(sv[2], sv[0], px, py) * invArea
			w2 := edge(sv[0], sv[1], px, py) * invArea
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			z := w0*sv[0].Z + w1*sv[1].Z + w2*sv[2].Z
			if z > 1 {
				continue
			}
			i := y*w + x
			if z >= r.fb.Depth[i] {
				continue
			}
			samples++
			if r.DepthWrite {
				r.fb.Depth[i] = z
			}
			if !r.ColorWrite {
				continue
			}

			switch mat.Shading {
			case ShadeSolid:
				r.fb.Pixels[i] = mat.Color
			case ShadeScreen:
				if mat.Screen != nil {
					r.fb.Pixels[i] = mat.Screen.GetPixel(x, y)
				}
			default:
				base := mat.Color
				if mat.Texture != nil {
					oneOverW := w0*sv[0].InvW + w1*sv[1].InvW + w2*sv[2].InvW
					u := (w0*sv[0].UV.X + w1*sv[1].UV.X + w2*sv[2].UV.X) / oneOverW
					v := (w0*sv[0].UV.Y + w1*sv[1].UV.Y + w2*sv[2].UV.Y) / oneOverW
					base = mat.Texture.Sample(u, v)
				}
				r.fb.Pixels[i] = MultiplyColor(base, intensity)
			}
		}
	}
	return samples
}

// edge is twice the signed area of (a, b, p); negative inside a
// screen-space front face.
func edge(a, b screenVertex, px, py float64) float64 {
	return (b.X-a.X)*(py-a.Y) - (b.Y-a.Y)*(px-a.X)
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
