package world

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/noneuclid/pkg/math3d"
	"github.com/taigrr/noneuclid/pkg/models"
	"github.com/taigrr/noneuclid/pkg/render"
)

var (
	// ErrPortalTilted is returned for portals with pitch or roll. Traversal
	// only carries yaw across, so portals must stand upright.
	ErrPortalTilted = errors.New("portal is not upright")
	// ErrUnconnectedPortal is returned for a portal with a side that leads
	// nowhere.
	ErrUnconnectedPortal = errors.New("portal is not connected")
)

// PlaceholderColor fills a portal once the recursion budget is spent.
var PlaceholderColor = render.ColorPink

// Warp is one directed side of a portal connection. Delta maps the space
// behind To into the space behind From; DeltaInv maps the other way.
type Warp struct {
	From     *Portal
	To       *Portal
	Delta    math3d.Mat4
	DeltaInv math3d.Mat4
}

// Portal is a two-sided rectangular window spanning [-1,1]² of its local XY
// plane. Front is taken when crossing from the side Forward points to.
type Portal struct {
	*Entity
	Front Warp
	Back  Warp
}

// NewPortal creates an unconnected portal drawn with mesh, which should be
// the two-sided unit quad.
func NewPortal(name string, mesh *models.Mesh) *Portal {
	p := &Portal{Entity: NewEntity(name)}
	p.Mesh = mesh
	p.Material = render.Material{Shading: render.ShadeSolid, Color: PlaceholderColor}
	p.Front = Warp{From: p, Delta: math3d.Identity(), DeltaInv: math3d.Identity()}
	p.Back = Warp{From: p, Delta: math3d.Identity(), DeltaInv: math3d.Identity()}
	return p
}

// ConnectWarps joins two warps so that each leads into the other's portal.
// The inverse deltas are assigned, not computed, so a round trip composes
// the exact same matrices in both directions.
func ConnectWarps(a, b *Warp) {
	a.To = b.From
	b.To = a.From
	a.Delta = a.From.LocalToWorld().Mul(b.From.WorldToLocal())
	b.Delta = b.From.LocalToWorld().Mul(a.From.WorldToLocal())
	a.DeltaInv = b.Delta
	b.DeltaInv = a.Delta
}

// Connect joins a and b front to back in both directions.
func Connect(a, b *Portal) {
	ConnectWarps(&a.Front, &b.Back)
	ConnectWarps(&b.Front, &a.Back)
}

// Validate reports placement problems that would break traversal.
func (p *Portal) Validate() error {
	if p.Euler.X != 0 || p.Euler.Z != 0 {
		return fmt.Errorf("portal %s euler %v: %w", p.Name, p.Euler, ErrPortalTilted)
	}
	if p.Front.To == nil || p.Back.To == nil {
		return fmt.Errorf("portal %s: %w", p.Name, ErrUnconnectedPortal)
	}
	return nil
}

// Normal returns the unit normal of the front side.
func (p *Portal) Normal() math3d.Vec3 {
	return p.Forward()
}

// Bump returns the unit normal pointing toward the side a is on.
func (p *Portal) Bump(a math3d.Vec3) math3d.Vec3 {
	n := p.Normal()
	if a.Sub(p.Pos).Dot(n) > 0 {
		return n
	}
	return n.Negate()
}

// Intersects reports which warp the segment a→b passes through, testing
// against the portal plane shifted by bump. It returns nil when the segment
// stays on one side, runs parallel to the plane or misses the rectangle.
func (p *Portal) Intersects(a, b, bump math3d.Vec3) *Warp {
	n := p.Normal()
	origin := p.Pos.Add(bump)
	da := n.Dot(a.Sub(origin))
	db := n.Dot(b.Sub(origin))
	if da*db > 0 || da == db {
		return nil
	}

	m := p.LocalToWorld()
	d := a.Add(b.Sub(a).Scale(da / (da - db))).Sub(origin)
	x, y := m.XAxis(), m.YAxis()
	if math.Abs(d.Dot(x)) >= x.LenSq() || math.Abs(d.Dot(y)) >= y.LenSq() {
		return nil
	}
	if da > 0 {
		return &p.Front
	}
	return &p.Back
}

// DistTo returns the distance from pt to the closest point of the portal
// rectangle.
func (p *Portal) DistTo(pt math3d.Vec3) float64 {
	m := p.LocalToWorld()
	x, y := m.XAxis(), m.YAxis()
	v := pt.Sub(m.Translation())
	px := clamp(v.Dot(x)/x.LenSq(), -1, 1)
	py := clamp(v.Dot(y)/y.LenSq(), -1, 1)
	return v.Sub(x.Scale(px).Add(y.Scale(py))).Len()
}

// Draw shows the view through the portal from cam. The connected side is
// rendered into the pool buffer for the next recursion level, then the
// portal quad copies that buffer into target. With no budget left, or no
// destination, the portal is drawn as a flat placeholder.
func (p *Portal) Draw(fc *FrameContext, cam *render.Camera, r *render.Rasterizer) {
	fwd := p.Normal()
	warp, toward := &p.Front, fwd
	if cam.Position().Sub(p.Pos).Dot(fwd) <= 0 {
		warp, toward = &p.Back, fwd.Negate()
	}

	buf := fc.pool.Get(fc.Budget - 1)
	if fc.Budget <= 0 || warp.To == nil || buf == nil {
		p.DrawPlaceholder(r)
		fc.Stats.Placeholders++
		return
	}

	extra := math.Min(fc.nearest*0.5, 0.1)
	portalCam := *cam
	portalCam.ClipOblique(p.Pos.Add(toward.Scale(extra)), toward)
	portalCam.View = cam.View.Mul(warp.Delta)

	fc.engine.renderScene(fc, &portalCam, buf, warp.To)

	r.DrawMesh(p.Mesh, p.LocalToWorld(), render.Material{Shading: render.ShadeScreen, Screen: buf})
	fc.Stats.PortalsDrawn++
}

// DrawPlaceholder draws the portal as a solid quad.
func (p *Portal) DrawPlaceholder(r *render.Rasterizer) {
	if p.Mesh == nil {
		return
	}
	r.DrawMesh(p.Mesh, p.LocalToWorld(), p.Material)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
