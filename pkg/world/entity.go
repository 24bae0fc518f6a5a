// Package world simulates and draws a scene of entities joined by portals.
//
// Each simulation step integrates every body, resolves sphere contacts
// against the colliders of the other entities and then carries bodies that
// crossed a portal to the connected side. Rendering recurses through the
// portals with a fixed budget, drawing each level of recursion into its own
// offscreen buffer.
package world

import (
	"github.com/google/uuid"

	"github.com/taigrr/noneuclid/pkg/math3d"
	"github.com/taigrr/noneuclid/pkg/models"
	"github.com/taigrr/noneuclid/pkg/render"
)

// Placement is where an entity sits in the world.
type Placement struct {
	Pos   math3d.Vec3
	Euler math3d.Vec3
	Scale math3d.Vec3
	// PScale is the physical scale. It starts at 1 and is multiplied by the
	// warp scale on every traversal.
	PScale float64
}

// Reset puts the placement at the origin with unit scales.
func (p *Placement) Reset() {
	p.Pos = math3d.Vec3{}
	p.Euler = math3d.Vec3{}
	p.Scale = math3d.One3()
	p.PScale = 1
}

// LocalToWorld returns T(pos)·Ry·Rx·Rz·S(scale·pScale).
func (p Placement) LocalToWorld() math3d.Mat4 {
	return math3d.LocalToWorld(p.Pos, p.Euler, p.Scale.Scale(p.PScale))
}

// WorldToLocal returns the inverse of LocalToWorld.
func (p Placement) WorldToLocal() math3d.Mat4 {
	return math3d.WorldToLocal(p.Pos, p.Euler, p.Scale.Scale(p.PScale))
}

// Forward returns the facing direction.
func (p Placement) Forward() math3d.Vec3 {
	return math3d.ForwardOf(p.Euler)
}

// Controller gives an entity per-step behavior. Engine calls Update once per
// step and routes collision pushes through Collide.
type Controller interface {
	Update(e *Entity, fc *StepContext)
	Collide(e *Entity, push math3d.Vec3)
}

// Entity is anything placed in the scene. It is physical when Body is set
// and drawn when Mesh is set.
type Entity struct {
	ID   uuid.UUID
	Name string
	Placement

	Mesh     *models.Mesh
	Material render.Material

	Body    *Body
	Control Controller

	// OnHit is called with the world-space push each time this entity's
	// geometry pushes a body.
	OnHit func(push math3d.Vec3)
}

// NewEntity creates a named entity at the origin.
func NewEntity(name string) *Entity {
	e := &Entity{ID: uuid.New(), Name: name}
	e.Reset()
	return e
}

// Physical reports whether the entity has a body.
func (e *Entity) Physical() bool {
	return e.Body != nil
}

// SetPosition moves the entity without implying motion.
func (e *Entity) SetPosition(pos math3d.Vec3) {
	e.Pos = pos
	if e.Body != nil {
		e.Body.PrevPos = pos
	}
}

// draw renders the entity's mesh. Entities without a mesh draw nothing.
func (e *Entity) draw(r *render.Rasterizer) {
	if e.Mesh == nil {
		return
	}
	r.DrawMesh(e.Mesh, e.LocalToWorld(), e.Material)
}
