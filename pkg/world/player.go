package world

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/noneuclid/pkg/collide"
	"github.com/taigrr/noneuclid/pkg/math3d"
)

const (
	playerFriction = 0.04
	playerDrag     = 0.002
	// groundSlope is the minimum normalized push height treated as standing.
	groundSlope = 0.7
)

// Player is the walking first-person entity the camera is attached to.
type Player struct {
	*Entity
	cfg Config

	// Camera pitch and yaw relative to the body.
	rx, ry float64

	bobMag, bobPhi float64
	onGround       bool

	// Mouse deltas are low-passed through a critically damped spring.
	spring       *harmonica.Spring
	lookX, lookY float64
	velX, velY   float64
}

// NewPlayer creates a player with head and feet hit spheres sized from cfg.
func NewPlayer(cfg Config) *Player {
	p := &Player{Entity: NewEntity("player"), cfg: cfg}
	p.Body = NewBody(cfg.Gravity)
	p.Body.Spheres = []collide.Sphere{
		{Center: math3d.Vec3{}, Radius: cfg.PlayerRadius},
		{Center: math3d.V3(0, cfg.PlayerRadius-cfg.PlayerHeight, 0), Radius: cfg.PlayerRadius},
	}
	p.Control = p
	if cfg.MouseSmooth > 0 {
		s := harmonica.NewSpring(cfg.DT, -math.Log(cfg.MouseSmooth)/cfg.DT, 1)
		p.spring = &s
	}
	p.Reset()
	return p
}

// Reset returns the player to the origin at rest, looking down -Z.
func (p *Player) Reset() {
	p.Entity.Reset()
	b := p.Body
	b.Velocity = math3d.Vec3{}
	b.PrevPos = math3d.Vec3{}
	b.Gravity = math3d.V3(0, p.cfg.Gravity, 0)
	b.Bounce, b.HighFriction = 0, 0
	b.Friction = playerFriction
	b.Drag = playerDrag

	p.rx, p.ry = 0, 0
	p.bobMag, p.bobPhi = 0, 0
	p.lookX, p.lookY, p.velX, p.velY = 0, 0, 0, 0
	p.onGround = true
}

// Update runs one step: head bob, integration, looking and walking.
func (p *Player) Update(e *Entity, sc *StepContext) {
	p.updateBob(sc.DT)
	p.Body.Integrate(e, sc.DT)

	dx, dy := sc.LookX, sc.LookY
	if p.spring != nil {
		p.lookX, p.velX = p.spring.Update(p.lookX, p.velX, dx)
		p.lookY, p.velY = p.spring.Update(p.lookY, p.velY, dy)
		dx, dy = p.lookX, p.lookY
	}
	p.Look(dx, dy)
	p.Move(sc.Forward, sc.Right, sc.DT)

	p.onGround = false
}

func (p *Player) updateBob(dt float64) {
	speed := 0.0
	if p.onGround {
		speed = p.Body.PrevPos.Sub(p.Pos).Len() / (dt * p.PScale)
	}
	damp := p.cfg.BobDamp
	p.bobMag = p.bobMag*(1-damp) + speed*damp
	if p.bobMag < p.cfg.BobMin {
		p.bobPhi = 0
		return
	}
	p.bobPhi += p.cfg.BobFreq * dt
	if p.bobPhi > 2*math.Pi {
		p.bobPhi -= 2 * math.Pi
	}
}

// Look turns the camera by a mouse delta. Pitch is clamped to straight up
// or down and yaw wraps to [-π, π].
func (p *Player) Look(dx, dy float64) {
	sens := p.cfg.MouseSensitivity
	p.rx = clamp(p.rx-dy*sens, -math.Pi/2, math.Pi/2)
	p.ry -= dx * sens
	if p.ry > math.Pi {
		p.ry -= 2 * math.Pi
	} else if p.ry < -math.Pi {
		p.ry += 2 * math.Pi
	}
}

// Move accelerates the player along the camera's heading. Horizontal speed
// is capped at the walk speed; falling is not.
func (p *Player) Move(forward, right, dt float64) {
	if mag := math.Hypot(forward, right); mag > 1 {
		forward /= mag
		right /= mag
	}
	camToWorld := p.LocalToWorld().Mul(math3d.RotateY(p.ry))
	b := p.Body
	b.Velocity = b.Velocity.Add(camToWorld.MulDir(math3d.V3(right, 0, -forward)).Scale(p.cfg.WalkAccel * dt))

	vy := b.Velocity.Y
	b.Velocity.Y = 0
	b.Velocity = b.Velocity.ClipLen(p.PScale * p.cfg.WalkSpeed)
	b.Velocity.Y = vy
}

// Collide treats steep-enough pushes as ground so the player does not slide
// down slopes, and only applies friction while standing.
func (p *Player) Collide(e *Entity, push math3d.Vec3) {
	if n, ok := push.Normalized(); ok && n.Y > groundSlope {
		push.X, push.Z = 0, 0
		p.onGround = true
	}
	friction := p.Body.Friction
	if !p.onGround {
		p.Body.Friction = 0
	}
	p.Body.Collide(e, push)
	p.Body.Friction = friction
}

// OnGround reports whether a floor contact happened since the last update.
func (p *Player) OnGround() bool {
	return p.onGround
}

// Angles returns camera pitch and yaw relative to the body.
func (p *Player) Angles() (pitch, yaw float64) {
	return p.rx, p.ry
}

// SetAngles sets the camera pitch and yaw.
func (p *Player) SetAngles(pitch, yaw float64) {
	p.rx, p.ry = pitch, yaw
}

// CamOffset is the head-bob displacement of the eye.
func (p *Player) CamOffset() math3d.Vec3 {
	if p.bobMag < p.cfg.BobMin {
		return math3d.Vec3{}
	}
	theta := (math.Pi / 2) * math.Sin(p.bobPhi)
	return math3d.V3(0, p.bobMag*p.cfg.BobOffs*(1-math.Cos(theta)), 0)
}

// WorldToCam is the view matrix of the player's eye.
func (p *Player) WorldToCam() math3d.Mat4 {
	return math3d.RotateX(-p.rx).
		Mul(math3d.RotateY(-p.ry)).
		Mul(math3d.Translate(p.CamOffset().Negate())).
		Mul(p.WorldToLocal())
}

// CamToWorld is the inverse of WorldToCam.
func (p *Player) CamToWorld() math3d.Mat4 {
	return p.LocalToWorld().
		Mul(math3d.Translate(p.CamOffset())).
		Mul(math3d.RotateY(p.ry)).
		Mul(math3d.RotateX(p.rx))
}
