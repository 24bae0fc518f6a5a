package world

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/taigrr/noneuclid/pkg/assets"
	"github.com/taigrr/noneuclid/pkg/math3d"
	"github.com/taigrr/noneuclid/pkg/render"
)

// testScene builds a level from a function.
type testScene struct {
	name  string
	build func(lib *assets.Library) (*Level, error)
}

func (s testScene) Name() string                             { return s.name }
func (s testScene) Load(lib *assets.Library) (*Level, error) { return s.build(lib) }

// portalPair joins a portal in front of the start with one at far.
func portalPair(far math3d.Vec3, scale float64, ground bool) Scene {
	return testScene{name: "pair", build: func(lib *assets.Library) (*Level, error) {
		quad, err := lib.Mesh("double_quad")
		if err != nil {
			return nil, err
		}
		level := &Level{Start: math3d.V3(0, 1, 2)}
		level.Hold(quad)

		a := NewPortal("a", quad.Get())
		a.Pos = math3d.V3(0, 1, 0)
		b := NewPortal("b", quad.Get())
		b.Pos = far
		b.Scale = math3d.V3(scale, scale, scale)
		Connect(a, b)
		level.Portals = []*Portal{a, b}

		if ground {
			g, err := lib.Mesh("ground")
			if err != nil {
				return nil, err
			}
			level.Hold(g)
			floor := NewEntity("ground")
			floor.Mesh = g.Get()
			floor.Scale = math3d.V3(10, 1, 10)
			level.Objects = append(level.Objects, floor)
		}
		return level, nil
	}}
}

func newTestEngine(t *testing.T, cfg Config, scene Scene) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, assets.NewLibrary(assets.EvictOnRelease))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if scene != nil {
		if err := e.Load(scene); err != nil {
			t.Fatalf("Load: %v", err)
		}
	}
	return e
}

func floatingConfig() Config {
	cfg := DefaultConfig()
	cfg.Gravity = 0
	cfg.MouseSmooth = 0
	return cfg
}

func TestEngineWithoutScene(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), nil)
	if _, err := e.Advance(time.Second, Input{}); !errors.Is(err, ErrNoScene) {
		t.Errorf("Advance: err = %v, want ErrNoScene", err)
	}
	if err := e.Step(Input{}); !errors.Is(err, ErrNoScene) {
		t.Errorf("Step: err = %v, want ErrNoScene", err)
	}
	if err := e.Render(render.NewFramebuffer(8, 8)); !errors.Is(err, ErrNoScene) {
		t.Errorf("Render: err = %v, want ErrNoScene", err)
	}
}

func TestNewEngineRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DT = 0
	if _, err := NewEngine(cfg, nil); err == nil {
		t.Error("expected error for dt = 0")
	}
}

func TestLoadPutsPlayerLast(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), portalPair(math3d.V3(200, 1, 0), 1, true))
	objs := e.Objects()
	if len(objs) != 2 || objs[len(objs)-1] != e.Player().Entity {
		t.Fatalf("objects = %d, player last = %v", len(objs), objs[len(objs)-1] == e.Player().Entity)
	}
	if got := e.Player().Pos; got != math3d.V3(0, 1, 2) {
		t.Errorf("player at %v", got)
	}

	e.Unload()
	if e.Objects() != nil || e.Portals() != nil {
		t.Error("unload left content behind")
	}
}

func TestLoadRejectsLoosePortal(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), nil)
	scene := testScene{name: "loose", build: func(lib *assets.Library) (*Level, error) {
		return &Level{Portals: []*Portal{NewPortal("p", nil)}}, nil
	}}
	if err := e.Load(scene); !errors.Is(err, ErrUnconnectedPortal) {
		t.Errorf("err = %v, want ErrUnconnectedPortal", err)
	}
}

func TestAdvanceStepCap(t *testing.T) {
	tests := []struct {
		name    string
		elapsed []time.Duration
		want    []int
	}{
		{"exact", []time.Duration{10 * time.Millisecond}, []int{5}},
		{"carries remainder", []time.Duration{5 * time.Millisecond, time.Millisecond}, []int{2, 1}},
		{"caps and drops", []time.Duration{time.Second, time.Millisecond}, []int{30, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, floatingConfig(), portalPair(math3d.V3(200, 1, 0), 1, false))
			for i, d := range tt.elapsed {
				got, err := e.Advance(d, Input{})
				if err != nil {
					t.Fatalf("Advance: %v", err)
				}
				if got != tt.want[i] {
					t.Errorf("call %d: steps = %d, want %d", i, got, tt.want[i])
				}
			}
		})
	}
}

func TestAdvanceLooksOnce(t *testing.T) {
	e := newTestEngine(t, floatingConfig(), portalPair(math3d.V3(200, 1, 0), 1, false))
	if _, err := e.Advance(10*time.Millisecond, Input{LookX: 100}); err != nil {
		t.Fatal(err)
	}
	if _, yaw := e.Player().Angles(); math.Abs(yaw+0.5) > 1e-12 {
		t.Errorf("yaw = %v, want -0.5", yaw)
	}
}

func TestAdvanceIsDeterministic(t *testing.T) {
	run := func() math3d.Vec3 {
		e := newTestEngine(t, DefaultConfig(), portalPair(math3d.V3(200, 1, 0), 1, true))
		for i := range 120 {
			in := Input{Forward: 1, Right: 0.5, LookX: float64(i % 7)}
			if _, err := e.Advance(16*time.Millisecond, in); err != nil {
				t.Fatal(err)
			}
		}
		return e.Player().Pos
	}
	if a, b := run(), run(); a != b {
		t.Errorf("runs differ: %v vs %v", a, b)
	}
}

func TestPlayerStandsOnGround(t *testing.T) {
	cfg := DefaultConfig()
	scene := portalPair(math3d.V3(200, 1, 0), 1, true)
	e := newTestEngine(t, cfg, scene)
	e.Player().SetPosition(math3d.V3(3, cfg.PlayerHeight, 3))

	for range 500 {
		if err := e.Step(Input{}); err != nil {
			t.Fatal(err)
		}
	}
	if y := e.Player().Pos.Y; math.Abs(y-cfg.PlayerHeight) > 0.05 {
		t.Errorf("player height = %v, want about %v", y, cfg.PlayerHeight)
	}
	if !e.Player().OnGround() {
		t.Error("player not on ground")
	}
}

// walk moves the player forward until it has crossed a portal.
func walk(t *testing.T, e *Engine, steps int) bool {
	t.Helper()
	for range steps {
		if err := e.Step(Input{Forward: 1}); err != nil {
			t.Fatal(err)
		}
		if e.Player().Pos.X > 100 {
			return true
		}
	}
	return false
}

func TestWalkThroughPortal(t *testing.T) {
	tests := []struct {
		name   string
		far    math3d.Vec3
		scale  float64
		wantY  float64
		pscale float64
	}{
		{"same size", math3d.V3(200, 1, 0), 1, 1, 1},
		{"twice the size", math3d.V3(200, 2, 0), 2, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, floatingConfig(), portalPair(tt.far, tt.scale, false))
			if !walk(t, e, 2000) {
				t.Fatalf("never crossed, player at %v", e.Player().Pos)
			}
			p := e.Player()
			if math.Abs(p.Pos.X-200) > 0.01 || math.Abs(p.Pos.Y-tt.wantY) > 0.01 {
				t.Errorf("arrived at %v", p.Pos)
			}
			if math.Abs(p.PScale-tt.pscale) > 1e-9 {
				t.Errorf("pscale = %v, want %v", p.PScale, tt.pscale)
			}
			// Walking speed is capped before the crossing and scaled by it.
			wantSpeed := e.Config().WalkSpeed * tt.pscale
			if got := p.Body.Velocity.Len(); math.Abs(got-wantSpeed) > 1e-6 {
				t.Errorf("exit speed = %v, want %v", got, wantSpeed)
			}
		})
	}
}

// stackedPortals puts two portals on the ball's path, listed far one first.
// Each leads to its own partner, far to +x and near to -x.
func stackedPortals() Scene {
	return testScene{name: "stacked", build: func(lib *assets.Library) (*Level, error) {
		quad, err := lib.Mesh("double_quad")
		if err != nil {
			return nil, err
		}
		level := &Level{Start: math3d.V3(0, 1, 50)}
		level.Hold(quad)

		portal := func(name string, pos math3d.Vec3) *Portal {
			p := NewPortal(name, quad.Get())
			p.Pos = pos
			return p
		}
		far, farExit := portal("far", math3d.V3(0, 1, -0.5)), portal("far exit", math3d.V3(100, 1, 0))
		near, nearExit := portal("near", math3d.V3(0, 1, 0)), portal("near exit", math3d.V3(-100, 1, 0))
		Connect(far, farExit)
		Connect(near, nearExit)
		level.Portals = []*Portal{far, near, farExit, nearExit}

		ball := NewEntity("ball")
		ball.Body = NewBody(0)
		ball.SetPosition(math3d.V3(0, 1, 0.3))
		ball.Body.Velocity = math3d.V3(0, 0, -500)
		level.Objects = append(level.Objects, ball)
		return level, nil
	}}
}

func TestSimultaneousCrossingOrder(t *testing.T) {
	tests := []struct {
		name  string
		order PortalOrder
		wantX float64
	}{
		{"first listed wins", FirstWins, 100},
		{"nearest wins", NearestFirst, -100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := floatingConfig()
			cfg.PortalOrder = tt.order
			e := newTestEngine(t, cfg, stackedPortals())
			ball := e.Objects()[0]

			if err := e.Step(Input{}); err != nil {
				t.Fatal(err)
			}
			if got := e.Stats().Traversals; got != 1 {
				t.Errorf("traversals = %d, want 1", got)
			}
			if math.Abs(ball.Pos.X-tt.wantX) > 1 {
				t.Errorf("ball at %v, want x near %v", ball.Pos, tt.wantX)
			}
			if got := ball.Body.Velocity.Len(); math.Abs(got-500) > 1e-6 {
				t.Errorf("speed = %v, want 500", got)
			}
		})
	}
}

// hallOfMirrors connects a portal to one behind the camera with the same
// facing, so the view through the portal shows the portal again.
func hallOfMirrors() Scene {
	return portalPair(math3d.V3(0, 1, 4), 1, false)
}

func TestRenderRecursion(t *testing.T) {
	tests := []struct {
		name      string
		recursion int
		occlusion bool
		want      Stats
	}{
		{"occlusion", 4, true, Stats{Passes: 4, PortalsDrawn: 3, PortalsOccluded: 1, Placeholders: 1}},
		{"shallow", 2, true, Stats{Passes: 2, PortalsDrawn: 1, PortalsOccluded: 1, Placeholders: 1}},
		{"no occlusion", 4, false, Stats{Passes: 7, PortalsDrawn: 6, Placeholders: 2}},
		{"no recursion", 0, true, Stats{Passes: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := floatingConfig()
			cfg.MaxRecursion = tt.recursion
			cfg.Occlusion = tt.occlusion
			e := newTestEngine(t, cfg, hallOfMirrors())

			fb := render.NewFramebuffer(64, 48)
			if err := e.Render(fb); err != nil {
				t.Fatalf("Render: %v", err)
			}
			if got := e.Stats(); got != tt.want {
				t.Errorf("stats = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRenderPlaceholderAtDepthZero(t *testing.T) {
	cfg := floatingConfig()
	cfg.MaxRecursion = 1
	e := newTestEngine(t, cfg, hallOfMirrors())

	fb := render.NewFramebuffer(64, 48)
	if err := e.Render(fb); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := fb.GetPixel(32, 24); got != PlaceholderColor {
		t.Errorf("center pixel = %v, want placeholder %v", got, PlaceholderColor)
	}
}

func TestNearestPortalDist(t *testing.T) {
	e := newTestEngine(t, floatingConfig(), portalPair(math3d.V3(200, 1, 0), 1, false))
	if got := e.NearestPortalDist(); math.Abs(got-2) > 1e-12 {
		t.Errorf("NearestPortalDist = %v, want 2", got)
	}
}

func BenchmarkRender(b *testing.B) {
	e, err := NewEngine(floatingConfig(), nil)
	if err != nil {
		b.Fatal(err)
	}
	if err := e.Load(hallOfMirrors()); err != nil {
		b.Fatal(err)
	}
	fb := render.NewFramebuffer(160, 96)
	for b.Loop() {
		_ = e.Render(fb)
	}
}

func BenchmarkStep(b *testing.B) {
	e, err := NewEngine(DefaultConfig(), nil)
	if err != nil {
		b.Fatal(err)
	}
	if err := e.Load(portalPair(math3d.V3(200, 1, 0), 1, true)); err != nil {
		b.Fatal(err)
	}
	for b.Loop() {
		_ = e.Step(Input{Right: 1})
	}
}
