package levels

import (
	"github.com/taigrr/noneuclid/pkg/assets"
	"github.com/taigrr/noneuclid/pkg/math3d"
	"github.com/taigrr/noneuclid/pkg/render"
	"github.com/taigrr/noneuclid/pkg/world"
)

// builder acquires assets for a level and keeps them held by it.
type builder struct {
	lib   *assets.Library
	level *world.Level
}

// object adds a textured entity drawn with a mesh.
func (b *builder) object(name, mesh, texture string) (*world.Entity, error) {
	m, err := b.lib.Mesh(mesh)
	if err != nil {
		return nil, err
	}
	b.level.Hold(m)
	// A mesh with its own image ignores the level's texture.
	var t *assets.Handle[*render.Texture]
	if m.Get().Image != nil {
		t, err = b.lib.MeshTexture(mesh)
	} else {
		t, err = b.lib.Texture(texture)
	}
	if err != nil {
		return nil, err
	}
	b.level.Hold(t)

	e := world.NewEntity(name)
	e.Mesh = m.Get()
	e.Material = render.Material{Shading: render.ShadeTextured, Texture: t.Get()}
	b.level.Objects = append(b.level.Objects, e)
	return e, nil
}

// portal adds an unconnected portal.
func (b *builder) portal(name string) (*world.Portal, error) {
	m, err := b.lib.Mesh("double_quad")
	if err != nil {
		return nil, err
	}
	b.level.Hold(m)
	p := world.NewPortal(name, m.Get())
	b.level.Portals = append(b.level.Portals, p)
	return p, nil
}

// start places the player's eye.
func (b *builder) start(pos math3d.Vec3, yaw float64) {
	b.level.Start = pos
	b.level.StartYaw = yaw
}

// ground adds a green floor scaled to span ±size.
func (b *builder) ground(name string, pos math3d.Vec3, size float64, slope bool) (*world.Entity, error) {
	mesh := "ground"
	if slope {
		mesh = "ground_slope"
	}
	g, err := b.object(name, mesh, "checker_green")
	if err != nil {
		return nil, err
	}
	g.Pos = pos
	g.Scale = math3d.V3(size, 1, size)
	return g, nil
}
