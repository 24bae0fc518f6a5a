package levels

import (
	"fmt"
	"math"

	"github.com/taigrr/noneuclid/pkg/math3d"
	"github.com/taigrr/noneuclid/pkg/models"
	"github.com/taigrr/noneuclid/pkg/world"
)

// Tunnel is a walled passage along its local Z axis with a door at each end.
type Tunnel struct {
	*world.Entity
	Kind models.TunnelKind
}

var tunnelMeshes = map[models.TunnelKind]string{
	models.TunnelNormal: "tunnel",
	models.TunnelScale:  "tunnel_scale",
	models.TunnelSlope:  "tunnel_slope",
}

func (b *builder) tunnel(name string, kind models.TunnelKind, pos, scale math3d.Vec3, yaw float64) (*Tunnel, error) {
	mesh, ok := tunnelMeshes[kind]
	if !ok {
		return nil, fmt.Errorf("unknown tunnel kind %d", kind)
	}
	e, err := b.object(name, mesh, "checker_gray")
	if err != nil {
		return nil, err
	}
	e.Pos, e.Scale, e.Euler.Y = pos, scale, yaw
	return &Tunnel{Entity: e, Kind: kind}, nil
}

// Door1 fits p into the door at local +Z.
func (t *Tunnel) Door1(p *world.Portal) {
	p.Pos = t.LocalToWorld().MulPoint(math3d.V3(0, 1, 1))
	p.Euler = t.Euler
	p.Scale = math3d.V3(0.6, 0.999, 1).Scale(t.Scale.X)
}

// Door2 fits p into the door at local -Z.
func (t *Tunnel) Door2(p *world.Portal) {
	p.Euler = t.Euler
	p.Scale = math3d.V3(0.6, 0.999, 1).Scale(t.Scale.X)
	switch t.Kind {
	case models.TunnelScale:
		p.Pos = t.LocalToWorld().MulPoint(math3d.V3(0, 0.5, -1))
		p.Scale = math3d.V3(0.3, 0.499, 0.5).Scale(t.Scale.X)
	case models.TunnelSlope:
		p.Pos = t.LocalToWorld().MulPoint(math3d.V3(0, -1, -1))
	default:
		p.Pos = t.LocalToWorld().MulPoint(math3d.V3(0, 1, -1))
	}
}

// Room is a walled square room with a pillar in the middle.
type Room struct {
	*world.Entity
	Pillar *world.Entity
}

const (
	roomHalfWidth = 2.2
	roomHeight    = 3.3
	pillarHalf    = 0.2
)

func (b *builder) room(name string, pos math3d.Vec3, texture string) (*Room, error) {
	walls, err := b.object(name, "room", texture)
	if err != nil {
		return nil, err
	}
	walls.Pos = pos
	walls.Scale = math3d.V3(roomHalfWidth, roomHeight, roomHalfWidth)

	pillar, err := b.object(name+" pillar", "box", "checker_gray")
	if err != nil {
		return nil, err
	}
	pillar.Pos = pos.Add(math3d.V3(0, roomHeight/2, 0))
	pillar.Scale = math3d.V3(pillarHalf, roomHeight/2, pillarHalf)
	return &Room{Entity: walls, Pillar: pillar}, nil
}

// Door fits p between the pillar and the -Z wall, facing +X.
func (r *Room) Door(p *world.Portal) {
	p.Pos = r.LocalToWorld().MulPoint(math3d.V3(0, 0.5, -0.5))
	p.Euler = r.Euler
	p.Euler.Y -= math.Pi / 2
	p.Scale = math3d.V3(roomHalfWidth/2, roomHeight/2, 1)
}

// House is four square rooms under one roof, joined by doorways in the
// walls that split it.
type House struct {
	*world.Entity
}

// houseHeight is the vertical scale of the square_rooms mesh.
const houseHeight = 3

func (b *builder) house(name string, pos math3d.Vec3, texture string) (*House, error) {
	e, err := b.object(name, "square_rooms", texture)
	if err != nil {
		return nil, err
	}
	e.Pos = pos
	e.Scale = math3d.V3(1, houseHeight, 1)
	return &House{Entity: e}, nil
}

// door fits p into the doorway at local (x, z), turned by yaw.
func (h *House) door(p *world.Portal, x, z, yaw float64) {
	p.Pos = h.LocalToWorld().MulPoint(math3d.V3(x, 0.5, z))
	p.Euler = h.Euler
	p.Euler.Y += yaw
	p.Scale = math3d.V3(2, 0.5, 1).Mul(h.Scale)
}

// Door1 fits p into the doorway joining the two rooms at low X.
func (h *House) Door1(p *world.Portal) { h.door(p, 4, 10, 0) }

// Door2 fits p into the doorway joining the two rooms at low Z.
func (h *House) Door2(p *world.Portal) { h.door(p, 10, 4, -math.Pi/2) }

// Door3 fits p into the doorway joining the two rooms at high X.
func (h *House) Door3(p *world.Portal) { h.door(p, 16, 10, -math.Pi) }

// Door4 fits p into the doorway joining the two rooms at high Z.
func (h *House) Door4(p *world.Portal) { h.door(p, 10, 16, -3*math.Pi/2) }
