package models

import (
	"testing"

	"github.com/taigrr/noneuclid/pkg/collide"
	"github.com/taigrr/noneuclid/pkg/math3d"
)

func TestBuiltins(t *testing.T) {
	for _, name := range BuiltinNames() {
		t.Run(name, func(t *testing.T) {
			mesh, ok, err := Builtin(name)
			if !ok || err != nil {
				t.Fatalf("Builtin(%q) = ok %v, err %v", name, ok, err)
			}
			if mesh.TriangleCount() == 0 {
				t.Error("mesh has no triangles")
			}
			for i, f := range mesh.Faces {
				for _, v := range f.V {
					if v < 0 || v >= mesh.VertexCount() {
						t.Fatalf("face %d references vertex %d", i, v)
					}
				}
			}
		})
	}

	if _, ok, _ := Builtin("teapot"); ok {
		t.Error("unknown name reported as built in")
	}
}

func TestPortalSurfaceHasNoColliders(t *testing.T) {
	mesh, err := DoubleQuad()
	if err != nil {
		t.Fatal(err)
	}
	if len(mesh.Colliders) != 0 {
		t.Errorf("double quad has %d colliders", len(mesh.Colliders))
	}
	if mesh.TriangleCount() != 4 {
		t.Errorf("double quad has %d triangles, want 4", mesh.TriangleCount())
	}
}

func TestPanelWindingFacesRequestedSide(t *testing.T) {
	m := NewMesh("panel")
	facing := math3d.V3(0, 0, -1)
	m.Panel(math3d.V3(-1, -1, 0), math3d.V3(1, -1, 0), math3d.V3(1, 1, 0), math3d.V3(-1, 1, 0), facing, 1)

	for i := range m.TriangleCount() {
		f := m.GetFace(i)
		a, _ := m.GetVertex(f[0])
		b, _ := m.GetVertex(f[1])
		c, _ := m.GetVertex(f[2])
		if n := b.Sub(a).Cross(c.Sub(a)); n.Dot(facing) <= 0 {
			t.Errorf("face %d normal %v does not face %v", i, n, facing)
		}
	}
}

func TestTunnelDoorsAreOpen(t *testing.T) {
	for _, kind := range []TunnelKind{TunnelNormal, TunnelScale, TunnelSlope} {
		mesh, err := Tunnel(kind)
		if err != nil {
			t.Fatalf("Tunnel(%d): %v", kind, err)
		}
		if len(mesh.Colliders) == 0 {
			t.Fatalf("Tunnel(%d) has no colliders", kind)
		}

		// Nothing may be drawn inside the door 1 opening.
		w, floor, height := tunnelProfile(kind, 1)
		for _, v := range mesh.Vertices {
			p := v.Position
			if p.Z == 1 && p.X > -w && p.X < w && p.Y > floor && p.Y < floor+height {
				t.Errorf("Tunnel(%d) has a vertex inside door 1: %v", kind, p)
			}
		}
	}
}

func TestSquareRoomsDoorways(t *testing.T) {
	mesh, err := SquareRooms()
	if err != nil {
		t.Fatal(err)
	}
	// Four outer walls, the floor and six inner segments, two colliders each.
	if got := len(mesh.Colliders); got != 22 {
		t.Errorf("colliders = %d, want 22", got)
	}

	tests := []struct {
		name    string
		at      math3d.Vec3
		blocked bool
	}{
		{"door 1", math3d.V3(4, 0.5, 10), false},
		{"door 2", math3d.V3(10, 0.5, 4), false},
		{"door 3", math3d.V3(16, 0.5, 10), false},
		{"door 4", math3d.V3(10, 0.5, 16), false},
		{"inner wall", math3d.V3(8, 0.5, 10.1), true},
		{"outer wall", math3d.V3(0.1, 0.5, 4), true},
		{"room middle", math3d.V3(5, 0.5, 5), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ball := collide.Sphere{Center: tt.at, Radius: 0.3}
			hit := false
			for _, c := range mesh.Colliders {
				if _, ok := c.Collide(ball.LocalToUnit()); ok {
					hit = true
				}
			}
			if hit != tt.blocked {
				t.Errorf("hit = %v, want %v", hit, tt.blocked)
			}
		})
	}
}

func TestTunnelProfileDoors(t *testing.T) {
	tests := []struct {
		kind       TunnelKind
		wantCenter math3d.Vec3
		wantHalf   math3d.Vec2
	}{
		{TunnelNormal, math3d.V3(0, 1, -1), math3d.V2(0.6, 1)},
		{TunnelScale, math3d.V3(0, 0.5, -1), math3d.V2(0.3, 0.5)},
		{TunnelSlope, math3d.V3(0, -1, -1), math3d.V2(0.6, 1)},
	}

	for _, tt := range tests {
		w, floor, h := tunnelProfile(tt.kind, -1)
		center := math3d.V3(0, floor+h/2, -1)
		if !center.ApproxEqual(tt.wantCenter, 1e-12) {
			t.Errorf("kind %d: door 2 center %v, want %v", tt.kind, center, tt.wantCenter)
		}
		if w != tt.wantHalf.X || h/2 != tt.wantHalf.Y {
			t.Errorf("kind %d: door 2 half size (%v, %v), want %v", tt.kind, w, h/2, tt.wantHalf)
		}
	}
}
