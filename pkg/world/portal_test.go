package world

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/noneuclid/pkg/math3d"
	"github.com/taigrr/noneuclid/pkg/models"
)

func doubleQuad(t testing.TB) *models.Mesh {
	t.Helper()
	m, err := models.DoubleQuad()
	if err != nil {
		t.Fatalf("DoubleQuad: %v", err)
	}
	return m
}

// portalAt places an upright portal facing -Z rotated by yaw.
func portalAt(t testing.TB, name string, pos math3d.Vec3, yaw float64, scale float64) *Portal {
	t.Helper()
	p := NewPortal(name, doubleQuad(t))
	p.Pos = pos
	p.Euler.Y = yaw
	p.Scale = math3d.V3(scale, scale, scale)
	return p
}

func TestConnectIsSymmetric(t *testing.T) {
	a := portalAt(t, "a", math3d.V3(0, 1, 0), 0, 1)
	b := portalAt(t, "b", math3d.V3(200, 1, 5), math.Pi/3, 2)
	Connect(a, b)

	if a.Front.To != b || b.Back.To != a || b.Front.To != a || a.Back.To != b {
		t.Fatal("warps not linked front to back")
	}
	if a.Front.From != a || b.Back.From != b {
		t.Fatal("warp owners changed")
	}
	// Inverses are the partner's delta, bit for bit.
	if a.Front.DeltaInv != b.Back.Delta || b.Back.DeltaInv != a.Front.Delta {
		t.Error("front/back deltas are not exact inverses of each other")
	}
	if a.Back.DeltaInv != b.Front.Delta || b.Front.DeltaInv != a.Back.Delta {
		t.Error("back/front deltas are not exact inverses of each other")
	}
	if !a.Front.Delta.Mul(a.Front.DeltaInv).ApproxEqual(math3d.Identity(), 1e-9) {
		t.Error("Delta·DeltaInv is not identity")
	}
	if err := a.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestPortalValidate(t *testing.T) {
	tilted := portalAt(t, "tilted", math3d.Vec3{}, 0, 1)
	tilted.Euler.X = 0.1
	other := portalAt(t, "other", math3d.V3(10, 0, 0), 0, 1)
	Connect(tilted, other)

	if err := tilted.Validate(); !errors.Is(err, ErrPortalTilted) {
		t.Errorf("tilted: err = %v, want ErrPortalTilted", err)
	}
	loose := portalAt(t, "loose", math3d.Vec3{}, 0, 1)
	if err := loose.Validate(); !errors.Is(err, ErrUnconnectedPortal) {
		t.Errorf("loose: err = %v, want ErrUnconnectedPortal", err)
	}
}

func TestPortalBump(t *testing.T) {
	p := portalAt(t, "p", math3d.Vec3{}, 0, 1)
	if got := p.Bump(math3d.V3(0, 0, -3)); !got.ApproxEqual(math3d.V3(0, 0, -1), 1e-12) {
		t.Errorf("front bump = %v", got)
	}
	if got := p.Bump(math3d.V3(0, 0, 3)); !got.ApproxEqual(math3d.V3(0, 0, 1), 1e-12) {
		t.Errorf("back bump = %v", got)
	}
}

func TestPortalIntersects(t *testing.T) {
	p := portalAt(t, "p", math3d.Vec3{}, 0, 1)
	Connect(p, portalAt(t, "q", math3d.V3(50, 0, 0), 0, 1))

	tests := []struct {
		name string
		a, b math3d.Vec3
		want *Warp
	}{
		{"front to back", math3d.V3(0, 0, -0.5), math3d.V3(0, 0, 0.5), &p.Front},
		{"back to front", math3d.V3(0.5, 0.5, 0.5), math3d.V3(0.5, 0.5, -0.5), &p.Back},
		{"stays in front", math3d.V3(0, 0, -0.5), math3d.V3(0, 0, -0.1), nil},
		{"misses to the side", math3d.V3(1.5, 0, -0.5), math3d.V3(1.5, 0, 0.5), nil},
		{"misses above", math3d.V3(0, 1, -0.5), math3d.V3(0, 1, 0.5), nil},
		{"lies in the plane", math3d.V3(-0.5, 0, 0), math3d.V3(0.5, 0, 0), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Intersects(tt.a, tt.b, math3d.Vec3{}); got != tt.want {
				t.Errorf("Intersects = %p, want %p", got, tt.want)
			}
		})
	}
}

func TestPortalDistTo(t *testing.T) {
	p := portalAt(t, "p", math3d.V3(0, 1, 0), 0, 1)

	tests := []struct {
		name string
		pt   math3d.Vec3
		want float64
	}{
		{"on the surface", math3d.V3(0.5, 1.5, 0), 0},
		{"in front", math3d.V3(0, 1, -2), 2},
		{"beside the edge", math3d.V3(4, 1, 0), 3},
		{"off the corner", math3d.V3(5, 5, 0), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.DistTo(tt.pt); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("DistTo(%v) = %v, want %v", tt.pt, got, tt.want)
			}
		})
	}
}
