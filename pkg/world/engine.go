package world

import (
	"cmp"
	"fmt"
	"io"
	"math"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/taigrr/noneuclid/pkg/assets"
	"github.com/taigrr/noneuclid/pkg/render"
)

// Engine owns the loaded level, the player and the render buffers.
type Engine struct {
	cfg    Config
	lib    *assets.Library
	logger *log.Logger

	scene   Scene
	level   *Level
	player  *Player
	objects []*Entity
	portals []*Portal

	pool   *render.BufferPool
	camera *render.Camera

	accum time.Duration
	stats Stats
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. The default discards everything.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates an engine with no scene loaded.
func NewEngine(cfg Config, lib *assets.Library, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if lib == nil {
		lib = assets.NewLibrary(assets.KeepLoaded)
	}
	e := &Engine{
		cfg:    cfg,
		lib:    lib,
		logger: log.New(io.Discard),
		camera: render.NewCamera(cfg.FOV),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.pool = render.NewBufferPool(max(cfg.MaxRecursion-1, 1), 0, 0)
	e.player = NewPlayer(cfg)
	return e, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Load replaces the current scene. The player is reset to the level start
// and appended after the level's objects.
func (e *Engine) Load(scene Scene) error {
	level, err := scene.Load(e.lib)
	if err != nil {
		return fmt.Errorf("load scene %s: %w", scene.Name(), err)
	}
	if err := level.Validate(); err != nil {
		level.Release()
		return fmt.Errorf("load scene %s: %w", scene.Name(), err)
	}
	e.Unload()

	e.scene = scene
	e.level = level
	e.player.Reset()
	e.player.Euler.Y = level.StartYaw
	e.player.SetPosition(level.Start)
	e.objects = append(slices.Clone(level.Objects), e.player.Entity)
	e.portals = level.Portals
	e.accum = 0

	e.logger.Info("scene loaded", "scene", scene.Name(), "objects", len(e.objects), "portals", len(e.portals))
	return nil
}

// Unload drops the current scene and releases its assets.
func (e *Engine) Unload() {
	if e.level == nil {
		return
	}
	e.logger.Info("scene unloaded", "scene", e.scene.Name())
	e.level.Release()
	e.level, e.scene = nil, nil
	e.objects, e.portals = nil, nil
}

// Scene returns the loaded scene, or nil.
func (e *Engine) Scene() Scene {
	return e.scene
}

// Player returns the player.
func (e *Engine) Player() *Player {
	return e.player
}

// Objects returns every entity in update order, player last.
func (e *Engine) Objects() []*Entity {
	return e.objects
}

// Portals returns the level's portals.
func (e *Engine) Portals() []*Portal {
	return e.portals
}

// Stats returns counters from the last Advance and Render.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Advance runs as many fixed steps as elapsed covers, at most MaxSteps.
// Time beyond the cap is dropped. The look delta is applied in the first
// step only. It returns the number of steps taken.
func (e *Engine) Advance(elapsed time.Duration, in Input) (int, error) {
	if e.level == nil {
		return 0, ErrNoScene
	}
	dt := time.Duration(e.cfg.DT * float64(time.Second))
	e.accum += elapsed
	e.stats.Traversals = 0

	steps := 0
	for e.accum >= dt && steps < e.cfg.MaxSteps {
		e.step(in)
		in.LookX, in.LookY = 0, 0
		e.accum -= dt
		steps++
	}
	if e.accum >= dt {
		e.logger.Warn("simulation behind, dropping time", "dropped", e.accum, "steps", steps)
		e.accum = 0
	}
	e.stats.Steps = steps
	return steps, nil
}

// Step runs exactly one simulation step.
func (e *Engine) Step(in Input) error {
	if e.level == nil {
		return ErrNoScene
	}
	e.step(in)
	return nil
}

func (e *Engine) step(in Input) {
	sc := &StepContext{Input: in, DT: e.cfg.DT, Config: &e.cfg}
	for _, obj := range e.objects {
		if obj.Control != nil {
			obj.Control.Update(obj, sc)
		} else if obj.Body != nil {
			obj.Body.Integrate(obj, sc.DT)
		}
	}
	e.collide()
	e.sweepPortals()
}

// collide resolves sphere contacts for every body against every other
// entity's colliders, in object order.
func (e *Engine) collide() {
	for i, body := range e.objects {
		if body.Body == nil {
			continue
		}
		for j, obj := range e.objects {
			if i == j || obj.Mesh == nil {
				continue
			}
			for _, sphere := range body.Body.Spheres {
				worldToUnit := sphere.LocalToUnit().Mul(body.WorldToLocal())
				localToUnit := worldToUnit.Mul(obj.LocalToWorld())
				unitToWorld := worldToUnit.Inverse()
				for _, col := range obj.Mesh.Colliders {
					push, hit := col.Collide(localToUnit)
					if !hit {
						continue
					}
					push = unitToWorld.MulDir(push)
					if obj.OnHit != nil {
						obj.OnHit(push)
					}
					if body.Control != nil {
						body.Control.Collide(body, push)
					} else {
						body.Body.Collide(body, push)
					}
					worldToUnit = sphere.LocalToUnit().Mul(body.WorldToLocal())
					localToUnit = worldToUnit.Mul(obj.LocalToWorld())
					unitToWorld = worldToUnit.Inverse()
				}
			}
		}
	}
}

// sweepPortals carries bodies across at most one portal each.
func (e *Engine) sweepPortals() {
	for _, obj := range e.objects {
		if obj.Body == nil {
			continue
		}
		for _, p := range e.portalOrder(obj) {
			warp := obj.Body.TryPortal(obj, p, e.cfg.NearMin)
			if warp == nil {
				continue
			}
			e.stats.Traversals++
			e.logger.Debug("portal traversal",
				"entity", obj.Name,
				"from", warp.From.ID,
				"to", warp.To.ID,
				"pscale", obj.PScale,
			)
			break
		}
	}
}

func (e *Engine) portalOrder(obj *Entity) []*Portal {
	if e.cfg.PortalOrder != NearestFirst {
		return e.portals
	}
	order := slices.Clone(e.portals)
	prev := obj.Body.PrevPos
	slices.SortStableFunc(order, func(a, b *Portal) int {
		return cmp.Compare(a.DistTo(prev), b.DistTo(prev))
	})
	return order
}

// NearestPortalDist returns the distance from the player to the closest
// portal, or +Inf when there are none.
func (e *Engine) NearestPortalDist() float64 {
	dist := math.Inf(1)
	for _, p := range e.portals {
		dist = math.Min(dist, p.DistTo(e.player.Pos))
	}
	return dist
}

// Camera returns the main camera as set up by the last Render.
func (e *Engine) Camera() *render.Camera {
	return e.camera
}

// Render draws the player's view into target, recursing through portals up
// to MaxRecursion levels deep.
func (e *Engine) Render(target *render.Framebuffer) error {
	if e.level == nil {
		return ErrNoScene
	}
	if w, h := e.pool.Size(); w != target.Width || h != target.Height {
		e.pool.Resize(target.Width, target.Height)
	}

	nearest := e.NearestPortalDist()
	near := clamp(nearest*0.5, e.cfg.NearMin, e.cfg.NearMax)
	e.camera.SetSize(target.Width, target.Height, near, e.cfg.Far)
	e.camera.View = e.player.WorldToCam()

	fc := &FrameContext{
		Budget:  e.cfg.MaxRecursion,
		nearest: nearest,
		pool:    e.pool,
		engine:  e,
	}
	e.renderScene(fc, e.camera, target, nil)

	steps, traversals := e.stats.Steps, e.stats.Traversals
	e.stats = fc.Stats
	e.stats.Steps, e.stats.Traversals = steps, traversals
	return nil
}

// renderScene draws one pass: sky, objects, then every portal except skip.
func (e *Engine) renderScene(fc *FrameContext, cam *render.Camera, target *render.Framebuffer, skip *Portal) {
	fc.Stats.Passes++
	target.ClearDepth()
	render.DrawSky(target, cam)

	r := render.NewRasterizer(cam, target)
	for _, obj := range e.objects {
		obj.draw(r)
	}

	if fc.Budget <= 0 {
		return
	}
	fc.Budget--
	for _, p := range e.portals {
		if p == skip || p.Mesh == nil {
			continue
		}
		if e.cfg.Occlusion && fc.Budget > 0 && r.CountSamples(p.Mesh, p.LocalToWorld()) == 0 {
			fc.Stats.PortalsOccluded++
			continue
		}
		p.Draw(fc, cam, r)
	}
	fc.Budget++
}
