package models

import (
	"fmt"
	"slices"

	"github.com/taigrr/noneuclid/pkg/math3d"
)

// TunnelKind selects the tunnel profile.
type TunnelKind int

const (
	TunnelNormal TunnelKind = iota // straight, 1.2 wide and 2 tall
	TunnelScale                    // tapers to half size at the far door
	TunnelSlope                    // floor descends by 2 toward the far door
)

// tunnelWall is the wall thickness of every tunnel.
const tunnelWall = 0.1

// builtins maps built-in mesh names to their builders.
var builtins = map[string]func() (*Mesh, error){
	"quad":         Quad,
	"double_quad":  DoubleQuad,
	"ground":       Ground,
	"ground_slope": SlopeGround,
	"box":          Box,
	"room":         Room,
	"square_rooms": SquareRooms,
	"tunnel":       func() (*Mesh, error) { return Tunnel(TunnelNormal) },
	"tunnel_scale": func() (*Mesh, error) { return Tunnel(TunnelScale) },
	"tunnel_slope": func() (*Mesh, error) { return Tunnel(TunnelSlope) },
}

// Builtin builds the named procedural mesh.
func Builtin(name string) (*Mesh, bool, error) {
	build, ok := builtins[name]
	if !ok {
		return nil, false, nil
	}
	mesh, err := build()
	if err != nil {
		return nil, true, fmt.Errorf("build %s: %w", name, err)
	}
	return mesh, true, nil
}

// BuiltinNames lists the procedural mesh names in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Panel appends quad (p0,p1,p2,p3) wound so its front side faces facing.
// UVs are planar with tile repeats per local unit.
func (m *Mesh) Panel(p0, p1, p2, p3, facing math3d.Vec3, tile float64) {
	if p1.Sub(p0).Cross(p3.Sub(p0)).Dot(facing) < 0 {
		p1, p3 = p3, p1
	}
	u := p1.Sub(p0).Len() * tile
	v := p3.Sub(p0).Len() * tile
	a := m.AddVertex(p0, math3d.V2(0, 0))
	b := m.AddVertex(p1, math3d.V2(u, 0))
	c := m.AddVertex(p2, math3d.V2(u, v))
	d := m.AddVertex(p3, math3d.V2(0, v))
	m.AddQuad(a, b, c, d)
}

// Wall appends a panel and the colliders covering it. The quad must be a
// rectangle.
func (m *Mesh) Wall(p0, p1, p2, p3, facing math3d.Vec3, tile float64) error {
	m.Panel(p0, p1, p2, p3, facing, tile)
	return m.AddColliderQuad(p0, p1, p2, p3)
}

// Quad is a one-sided unit quad spanning [-1,1]² on z=0, facing +Z.
func Quad() (*Mesh, error) {
	m := NewMesh("quad")
	m.Panel(math3d.V3(-1, -1, 0), math3d.V3(1, -1, 0), math3d.V3(1, 1, 0), math3d.V3(-1, 1, 0), math3d.V3(0, 0, 1), 0.5)
	m.CalculateBounds()
	return m, nil
}

// DoubleQuad is the two-sided portal surface spanning [-1,1]² on z=0.
// It has no colliders.
func DoubleQuad() (*Mesh, error) {
	m := NewMesh("double_quad")
	p0, p1, p2, p3 := math3d.V3(-1, -1, 0), math3d.V3(1, -1, 0), math3d.V3(1, 1, 0), math3d.V3(-1, 1, 0)
	m.Panel(p0, p1, p2, p3, math3d.V3(0, 0, 1), 0.5)
	m.Panel(p0, p1, p2, p3, math3d.V3(0, 0, -1), 0.5)
	m.CalculateBounds()
	return m, nil
}

// Ground is a flat floor spanning [-1,1] in X and Z at y=0.
func Ground() (*Mesh, error) {
	m := NewMesh("ground")
	err := m.Wall(
		math3d.V3(-1, 0, 1), math3d.V3(1, 0, 1), math3d.V3(1, 0, -1), math3d.V3(-1, 0, -1),
		math3d.V3(0, 1, 0), 4,
	)
	m.CalculateBounds()
	return m, err
}

// SlopeGround is a ramp y = -1 - 2z over [-1,1] in X and Z. Scaled by 10
// in X and Z it meets a slope tunnel's doors.
func SlopeGround() (*Mesh, error) {
	m := NewMesh("ground_slope")
	err := m.Wall(
		math3d.V3(-1, -3, 1), math3d.V3(1, -3, 1), math3d.V3(1, 1, -1), math3d.V3(-1, 1, -1),
		math3d.V3(0, 1, 0), 4,
	)
	m.CalculateBounds()
	return m, err
}

// Box is the cube [-1,1]³ with outward faces.
func Box() (*Mesh, error) {
	m := NewMesh("box")
	axes := [3]math3d.Vec3{math3d.V3(1, 0, 0), math3d.V3(0, 1, 0), math3d.V3(0, 0, 1)}
	for i, n := range axes {
		u, v := axes[(i+1)%3], axes[(i+2)%3]
		for _, s := range []float64{1, -1} {
			c := n.Scale(s)
			err := m.Wall(
				c.Sub(u).Sub(v), c.Add(u).Sub(v), c.Add(u).Add(v), c.Sub(u).Add(v),
				c, 1,
			)
			if err != nil {
				return nil, err
			}
		}
	}
	m.CalculateBounds()
	return m, nil
}

// Room is an open-topped square room: inward walls over [-1,1] in X and Z,
// one unit tall, with a floor.
func Room() (*Mesh, error) {
	m := NewMesh("room")
	corners := [4]math3d.Vec3{math3d.V3(-1, 0, -1), math3d.V3(1, 0, -1), math3d.V3(1, 0, 1), math3d.V3(-1, 0, 1)}
	up := math3d.V3(0, 1, 0)
	for i, a := range corners {
		b := corners[(i+1)%4]
		inward := a.Add(b).Scale(-0.5)
		if err := m.Wall(a, b, b.Add(up), a.Add(up), inward, 2); err != nil {
			return nil, err
		}
	}
	if err := m.Wall(corners[0], corners[1], corners[2], corners[3], up, 2); err != nil {
		return nil, err
	}
	m.CalculateBounds()
	return m, nil
}

// squareRoomsSize is the side of the SquareRooms footprint.
const squareRoomsSize = 20

// squareRoomsSegments are the wall spans of each inner wall. The gaps
// [2,6] and [14,18] are doorways.
var squareRoomsSegments = [][2]float64{{0, 2}, {6, 14}, {18, 20}}

// SquareRooms is a house of four rooms over [0,20] in X and Z, one unit
// tall, with a floor. Two crossing inner walls at x=10 and z=10 each leave
// a doorway four units wide centered 4 units from either outer wall.
func SquareRooms() (*Mesh, error) {
	m := NewMesh("square_rooms")
	const n = squareRoomsSize
	up := math3d.V3(0, 1, 0)
	corners := [4]math3d.Vec3{math3d.V3(0, 0, 0), math3d.V3(n, 0, 0), math3d.V3(n, 0, n), math3d.V3(0, 0, n)}
	center := math3d.V3(n/2, 0, n/2)
	for i, a := range corners {
		b := corners[(i+1)%4]
		inward := center.Sub(a.Add(b).Scale(0.5))
		if err := m.Wall(a, b, b.Add(up), a.Add(up), inward, 0.5); err != nil {
			return nil, err
		}
	}
	if err := m.Wall(corners[0], corners[1], corners[2], corners[3], up, 0.5); err != nil {
		return nil, err
	}

	// Inner walls are seen from both sides but collide once.
	for _, seg := range squareRoomsSegments {
		along := [2][2]math3d.Vec3{
			{math3d.V3(seg[0], 0, n/2), math3d.V3(seg[1], 0, n/2)},
			{math3d.V3(n/2, 0, seg[0]), math3d.V3(n/2, 0, seg[1])},
		}
		normals := [2]math3d.Vec3{math3d.V3(0, 0, 1), math3d.V3(1, 0, 0)}
		for k, ab := range along {
			a, b := ab[0], ab[1]
			if err := m.Wall(a, b, b.Add(up), a.Add(up), normals[k], 0.5); err != nil {
				return nil, err
			}
			m.Panel(a, b, b.Add(up), a.Add(up), normals[k].Scale(-1), 0.5)
		}
	}
	m.CalculateBounds()
	return m, nil
}

// tunnelProfile returns half-width, floor height and inner height at local
// z (door 1 is at z=+1, door 2 at z=-1).
func tunnelProfile(kind TunnelKind, z float64) (w, floor, height float64) {
	t := (1 - z) / 2 // 0 at door 1, 1 at door 2
	switch kind {
	case TunnelScale:
		return 0.6 - 0.3*t, 0, 2 - t
	case TunnelSlope:
		return 0.6, -2 * t, 2
	default:
		return 0.6, 0, 2
	}
}

// Tunnel builds a walled tunnel along Z. Its doors are the open ends: door 1
// is centered at (0,1,1) and door 2 at the far end, sized so a portal with
// scale (0.6, 0.999, 1) (or half that for TunnelScale) fills them.
func Tunnel(kind TunnelKind) (*Mesh, error) {
	names := map[TunnelKind]string{TunnelNormal: "tunnel", TunnelScale: "tunnel_scale", TunnelSlope: "tunnel_slope"}
	m := NewMesh(names[kind])

	wF, fF, hF := tunnelProfile(kind, 1)
	wB, fB, hB := tunnelProfile(kind, -1)
	yMin := min(fF, fB) - tunnelWall
	yMax := max(fF+hF, fB+hB) + tunnelWall

	at := func(x, y, z float64) math3d.Vec3 { return math3d.V3(x, y, z) }
	right := math3d.V3(1, 0, 0)
	up := math3d.V3(0, 1, 0)
	fwd := math3d.V3(0, 0, 1)

	for _, side := range []float64{-1, 1} {
		for _, layer := range []struct {
			off    float64
			facing math3d.Vec3
		}{
			{0, right.Scale(-side)},
			{tunnelWall, right.Scale(side)},
		} {
			xF, xB := side*(wF+layer.off), side*(wB+layer.off)
			m.Panel(
				at(xF, fF-layer.off, 1), at(xB, fB-layer.off, -1),
				at(xB, fB+hB+layer.off, -1), at(xF, fF+hF+layer.off, 1),
				layer.facing, 1,
			)
			if err := m.AddColliderQuad(
				at(xF, yMin, 1), at(xB, yMin, -1), at(xB, yMax, -1), at(xF, yMax, 1),
			); err != nil {
				return nil, err
			}
		}
	}

	// Ceiling and roof.
	for _, layer := range []struct {
		off    float64
		facing math3d.Vec3
	}{
		{0, up.Negate()},
		{tunnelWall, up},
	} {
		yF, yB := fF+hF+layer.off, fB+hB+layer.off
		m.Panel(
			at(-wF-layer.off, yF, 1), at(wF+layer.off, yF, 1),
			at(wB+layer.off, yB, -1), at(-wB-layer.off, yB, -1),
			layer.facing, 1,
		)
		wMax := max(wF, wB) + tunnelWall
		if err := m.AddColliderQuad(
			at(-wMax, yF, 1), at(wMax, yF, 1), at(wMax, yB, -1), at(-wMax, yB, -1),
		); err != nil {
			return nil, err
		}
	}

	// A sloped tunnel dips below the ground and needs its own floor.
	if kind == TunnelSlope {
		wMax := max(wF, wB) + tunnelWall
		m.Panel(at(-wF, fF, 1), at(wF, fF, 1), at(wB, fB, -1), at(-wB, fB, -1), up, 1)
		if err := m.AddColliderQuad(
			at(-wMax, fF, 1), at(wMax, fF, 1), at(wMax, fB, -1), at(-wMax, fB, -1),
		); err != nil {
			return nil, err
		}
	}

	// Door frames close the gap between the inner and outer shells.
	for _, end := range []struct {
		z, w, floor, top float64
	}{
		{1, wF, fF, fF + hF},
		{-1, wB, fB, fB + hB},
	} {
		facing := fwd.Scale(end.z)
		o := end.w + tunnelWall
		strips := [][4]math3d.Vec3{
			{at(-o, end.floor, end.z), at(-end.w, end.floor, end.z), at(-end.w, end.top, end.z), at(-o, end.top, end.z)},
			{at(end.w, end.floor, end.z), at(o, end.floor, end.z), at(o, end.top, end.z), at(end.w, end.top, end.z)},
			{at(-o, end.top, end.z), at(o, end.top, end.z), at(o, end.top+tunnelWall, end.z), at(-o, end.top+tunnelWall, end.z)},
		}
		for _, s := range strips {
			if err := m.Wall(s[0], s[1], s[2], s[3], facing, 1); err != nil {
				return nil, err
			}
		}
	}

	m.CalculateBounds()
	return m, nil
}
