package levels

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/noneuclid/pkg/assets"
	"github.com/taigrr/noneuclid/pkg/math3d"
	"github.com/taigrr/noneuclid/pkg/world"
)

func newEngine(t *testing.T, scene world.Scene) *world.Engine {
	t.Helper()
	cfg := world.DefaultConfig()
	cfg.MouseSmooth = 0
	e, err := world.NewEngine(cfg, assets.NewLibrary(assets.EvictOnRelease))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := e.Load(scene); err != nil {
		t.Fatalf("Load %s: %v", scene.Name(), err)
	}
	return e
}

func TestAllLevelsLoad(t *testing.T) {
	for _, s := range All() {
		t.Run(s.Name(), func(t *testing.T) {
			lib := assets.NewLibrary(assets.EvictOnRelease)
			level, err := s.Load(lib)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if err := level.Validate(); err != nil {
				t.Errorf("Validate: %v", err)
			}
			if len(level.Objects) == 0 || len(level.Portals) == 0 {
				t.Errorf("objects = %d, portals = %d", len(level.Objects), len(level.Portals))
			}
			level.Release()
			if n := lib.Meshes.Len(); n != 0 {
				t.Errorf("%d meshes still loaded after release", n)
			}
		})
	}
}

func TestByName(t *testing.T) {
	for _, name := range Names() {
		s, ok := ByName(name)
		if !ok || s.Name() != name {
			t.Errorf("ByName(%q) = %v, %v", name, s, ok)
		}
		if s.Description() == "" {
			t.Errorf("%s has no description", name)
		}
	}
	if _, ok := ByName("nope"); ok {
		t.Error("found unknown level")
	}
}

func TestRoomsNeedsTwo(t *testing.T) {
	if _, err := Rooms(1).Load(assets.NewLibrary(assets.KeepLoaded)); err == nil {
		t.Error("expected error for a single room")
	}
}

func TestTunnelDoors(t *testing.T) {
	lib := assets.NewLibrary(assets.KeepLoaded)
	level, err := Tunnels().Load(lib)
	if err != nil {
		t.Fatal(err)
	}
	want := []math3d.Vec3{
		math3d.V3(-2.4, 1, 3),
		math3d.V3(2.4, 1, 0.6),
		math3d.V3(-2.4, 1, -6.6),
		math3d.V3(2.4, 1, -0.6),
	}
	for i, p := range level.Portals {
		if !p.Pos.ApproxEqual(want[i], 1e-9) {
			t.Errorf("door %d at %v, want %v", i+1, p.Pos, want[i])
		}
	}
}

func TestHouseDoors(t *testing.T) {
	level, err := Houses(6).Load(assets.NewLibrary(assets.KeepLoaded))
	if err != nil {
		t.Fatal(err)
	}
	want := []struct {
		pos math3d.Vec3
		yaw float64
	}{
		{math3d.V3(10, 1.5, -4), -3 * math.Pi / 2},
		{math3d.V3(216, 1.5, -10), -math.Pi},
		{math3d.V3(204, 1.5, -10), 0},
	}
	if len(level.Portals) != len(want) {
		t.Fatalf("portals = %d, want %d", len(level.Portals), len(want))
	}
	for i, p := range level.Portals {
		if !p.Pos.ApproxEqual(want[i].pos, 1e-9) || math.Abs(p.Euler.Y-want[i].yaw) > 1e-12 {
			t.Errorf("door %d at %v yaw %v, want %v yaw %v", i+1, p.Pos, p.Euler.Y, want[i].pos, want[i].yaw)
		}
		if p.Scale != math3d.V3(2, 1.5, 1) {
			t.Errorf("door %d scale = %v", i+1, p.Scale)
		}
	}
}

func TestHouseRoomCounts(t *testing.T) {
	tests := []struct {
		rooms   int
		portals int
		wantErr bool
	}{
		{0, 0, true},
		{1, 2, false},
		{2, 2, false},
		{3, 2, false},
		{4, 0, false},
		{5, 3, false},
		{6, 3, false},
		{7, 0, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.rooms), func(t *testing.T) {
			level, err := Houses(tt.rooms).Load(assets.NewLibrary(assets.KeepLoaded))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if err := level.Validate(); err != nil {
				t.Errorf("Validate: %v", err)
			}
			if got := len(level.Portals); got != tt.portals {
				t.Errorf("portals = %d, want %d", got, tt.portals)
			}
		})
	}
}

func TestScaleDoorsHalveSize(t *testing.T) {
	level, err := Scale().Load(assets.NewLibrary(assets.KeepLoaded))
	if err != nil {
		t.Fatal(err)
	}
	small, big := level.Portals[2], level.Portals[3]
	if got := big.Scale.X / small.Scale.X; math.Abs(got-2) > 1e-9 {
		t.Errorf("door size ratio = %v, want 2", got)
	}
}

// TestShortTunnelIsLongInside walks through the short tunnel and comes out
// of its far door only after crossing the long one.
func TestShortTunnelIsLongInside(t *testing.T) {
	e := newEngine(t, Tunnels())
	p := e.Player()
	p.SetPosition(math3d.V3(2.4, 1.5, 1.5))

	minX := p.Pos.X
	for range 8000 {
		if err := e.Step(world.Input{Forward: 1}); err != nil {
			t.Fatal(err)
		}
		minX = math.Min(minX, p.Pos.X)
		if p.Pos.X > 0 && p.Pos.Z < -1 {
			break
		}
	}
	if minX > -2 {
		t.Errorf("never entered the long tunnel, min x = %v", minX)
	}
	if p.Pos.X < 2 || p.Pos.Z > -1 {
		t.Errorf("did not come out of the short tunnel: %v", p.Pos)
	}
	if math.Abs(p.Pos.Y-1.5) > 0.05 {
		t.Errorf("height = %v", p.Pos.Y)
	}
}

func TestPlayerStandsInEveryLevel(t *testing.T) {
	for _, s := range All() {
		t.Run(s.Name(), func(t *testing.T) {
			e := newEngine(t, s)
			for range 1500 {
				if err := e.Step(world.Input{}); err != nil {
					t.Fatal(err)
				}
			}
			if !e.Player().OnGround() {
				t.Errorf("player fell to %v", e.Player().Pos)
			}
		})
	}
}

func BenchmarkLoadRooms(b *testing.B) {
	lib := assets.NewLibrary(assets.KeepLoaded)
	s := Rooms(3)
	for b.Loop() {
		level, err := s.Load(lib)
		if err != nil {
			b.Fatal(err)
		}
		level.Release()
	}
}

// writeTexturedBox saves box.glb in dir with a 3x3 embedded PNG.
func writeTexturedBox(t *testing.T, dir string) {
	t.Helper()
	var pngData bytes.Buffer
	src := image.NewRGBA(image.Rect(0, 0, 3, 3))
	src.Set(0, 0, color.RGBA{R: 255, G: 255, A: 255})
	if err := png.Encode(&pngData, src); err != nil {
		t.Fatal(err)
	}
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{-1, 0, 1}, {1, 0, 1}, {1, 2, 1}, {-1, 2, 1}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2, 2, 3, 0})
	doc.Meshes = []*gltf.Mesh{{
		Name: "box",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: map[string]int{gltf.POSITION: pos},
		}},
	}}
	if _, err := modeler.WriteImage(doc, "base", "image/png", &pngData); err != nil {
		t.Fatalf("WriteImage: %v", err)
	}
	if err := gltf.SaveBinary(doc, filepath.Join(dir, "box.glb")); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}
}

func TestMeshImageReplacesLevelTexture(t *testing.T) {
	dir := t.TempDir()
	writeTexturedBox(t, dir)
	lib := assets.NewLibrary(assets.EvictOnRelease, assets.WithDir(dir))

	level, err := Rooms(3).Load(lib)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer level.Release()

	var boxes, rooms int
	for _, e := range level.Objects {
		tex := e.Material.Texture
		if tex == nil {
			t.Fatalf("%s has no texture", e.Name)
		}
		if e.Mesh.Image != nil {
			boxes++
			if tex.Width != 3 || tex.Height != 3 {
				t.Errorf("%s texture = %dx%d, want the mesh image", e.Name, tex.Width, tex.Height)
			}
			continue
		}
		if tex.Width == 3 {
			t.Errorf("%s without an image got the mesh texture", e.Name)
		}
		rooms++
	}
	if boxes == 0 || rooms == 0 {
		t.Errorf("boxes = %d, other objects = %d", boxes, rooms)
	}
}
