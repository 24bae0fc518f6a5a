package world

import (
	"math"

	"github.com/taigrr/noneuclid/pkg/collide"
	"github.com/taigrr/noneuclid/pkg/math3d"
)

// minPushSq is the squared push length, per unit of physical scale, below
// which a contact moves the body but leaves its velocity alone.
const minPushSq = 1e-8

// Body is the simulated state of a physical entity.
type Body struct {
	Velocity     math3d.Vec3
	Gravity      math3d.Vec3
	Bounce       float64
	Friction     float64
	HighFriction float64
	Drag         float64

	// PrevPos is the position before the last integration step.
	PrevPos math3d.Vec3

	// Spheres are the hit volumes in the entity's local space.
	Spheres []collide.Sphere
}

// NewBody returns a body at rest under the given vertical gravity.
func NewBody(gravity float64) *Body {
	return &Body{Gravity: math3d.V3(0, gravity, 0)}
}

// Integrate advances e by one explicit Euler step.
func (b *Body) Integrate(e *Entity, dt float64) {
	b.PrevPos = e.Pos
	b.Velocity = b.Velocity.Add(b.Gravity.Scale(e.PScale * dt))
	b.Velocity = b.Velocity.Scale(1 - b.Drag)
	e.Pos = e.Pos.Add(b.Velocity.Scale(dt))
}

// Collide moves e by push and removes the velocity component along it,
// applying friction and bounce.
func (b *Body) Collide(e *Entity, push math3d.Vec3) {
	e.Pos = e.Pos.Add(push)

	pushSq := push.LenSq()
	if pushSq < minPushSq*e.PScale {
		return
	}

	kinetic := b.Friction
	if b.HighFriction > 0 {
		ratio := b.Velocity.Len() / (b.HighFriction * e.PScale)
		kinetic = math.Min(b.Friction*(ratio+5)/(ratio+1), 1)
	}

	proj := push.Scale(b.Velocity.Dot(push) / pushSq)
	b.Velocity = b.Velocity.Sub(proj).Scale(1 - kinetic).Sub(proj.Scale(b.Bounce))
}

// TryPortal carries e through p if its last step crossed the portal.
// nearMin is the minimum near plane distance; the crossing test is pushed
// out by twice that so the camera never ends up inside the portal surface.
func (b *Body) TryPortal(e *Entity, p *Portal, nearMin float64) *Warp {
	bump := p.Bump(b.PrevPos).Scale(2 * nearMin * e.PScale)
	warp := p.Intersects(b.PrevPos, e.Pos, bump)
	if warp == nil {
		return nil
	}

	e.Pos = warp.DeltaInv.MulPoint(e.Pos.Sub(bump.Scale(2)))
	b.Velocity = warp.DeltaInv.MulDir(b.Velocity)
	b.PrevPos = e.Pos

	// Only yaw survives the warp.
	dir := warp.DeltaInv.MulDir(math3d.V3(-math.Sin(e.Euler.Y), 0, -math.Cos(e.Euler.Y)))
	e.Euler.Y = -math.Atan2(dir.X, -dir.Z)

	e.PScale *= warp.DeltaInv.XAxis().Len()
	return warp
}
