// Package models holds world geometry: drawable triangle meshes together with
// the colliders derived from them, plus OBJ and glTF loaders and the
// procedural shapes the built-in levels are made of.
package models

import (
	"fmt"
	"image"

	"github.com/taigrr/noneuclid/pkg/collide"
	"github.com/taigrr/noneuclid/pkg/math3d"
)

// Mesh is a drawable triangle list plus the ordered colliders used for
// contact tests. Colliders are immutable once the mesh is loaded.
type Mesh struct {
	Name      string
	Vertices  []Vertex
	Faces     []Face
	Colliders []collide.Collider

	// Image is an embedded base color texture, if the source carried one.
	Image image.Image

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// Vertex holds the per-vertex attributes the rasterizer consumes.
type Vertex struct {
	Position math3d.Vec3
	UV       math3d.Vec2
}

// Face is a counter-clockwise triangle of vertex indices.
type Face struct {
	V [3]int
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(pos math3d.Vec3, uv math3d.Vec2) int {
	m.Vertices = append(m.Vertices, Vertex{Position: pos, UV: uv})
	return len(m.Vertices) - 1
}

// AddTriangle appends a face from three existing vertex indices.
func (m *Mesh) AddTriangle(a, b, c int) {
	m.Faces = append(m.Faces, Face{V: [3]int{a, b, c}})
}

// AddQuad appends the two triangles (a,b,c) and (c,d,a).
func (m *Mesh) AddQuad(a, b, c, d int) {
	m.AddTriangle(a, b, c)
	m.AddTriangle(c, d, a)
}

// AddCollider derives a collider from a right triangle and appends it.
func (m *Mesh) AddCollider(a, b, c math3d.Vec3) error {
	col, err := collide.NewCollider(a, b, c)
	if err != nil {
		return fmt.Errorf("mesh %q collider %d: %w", m.Name, len(m.Colliders), err)
	}
	m.Colliders = append(m.Colliders, col)
	return nil
}

// AddColliderQuad adds the two colliders covering rectangle (a,b,c,d),
// split along the same diagonal as AddQuad.
func (m *Mesh) AddColliderQuad(a, b, c, d math3d.Vec3) error {
	if err := m.AddCollider(a, b, c); err != nil {
		return err
	}
	return m.AddCollider(c, d, a)
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// GetVertex returns the position and UV for vertex i.
func (m *Mesh) GetVertex(i int) (math3d.Vec3, math3d.Vec2) {
	v := m.Vertices[i]
	return v.Position, v.UV
}

// GetFace returns the vertex indices for face i.
func (m *Mesh) GetFace(i int) [3]int {
	return m.Faces[i].V
}

// GetBounds returns the axis-aligned bounding box.
func (m *Mesh) GetBounds() (min, max math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}
