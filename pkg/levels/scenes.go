package levels

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/noneuclid/pkg/math3d"
	"github.com/taigrr/noneuclid/pkg/models"
	"github.com/taigrr/noneuclid/pkg/world"
)

// playerHeight is the default eye height used for start positions.
const playerHeight = 1.5

// Tunnels has a long tunnel and a short one that lead to the same place.
func Tunnels() *Scene {
	return &Scene{
		name:        "tunnels",
		description: "a long tunnel and a short tunnel with the same length inside",
		build: func(b *builder) error {
			t1, err := b.tunnel("tunnel 1", models.TunnelNormal, math3d.V3(-2.4, 0, -1.8), math3d.V3(1, 1, 4.8), 0)
			if err != nil {
				return err
			}
			t2, err := b.tunnel("tunnel 2", models.TunnelNormal, math3d.V3(2.4, 0, 0), math3d.V3(1, 1, 0.6), 0)
			if err != nil {
				return err
			}
			if _, err := b.ground("ground", math3d.Vec3{}, 12, false); err != nil {
				return err
			}

			doors, err := b.portals(4)
			if err != nil {
				return err
			}
			t1.Door1(doors[0])
			t2.Door1(doors[1])
			t1.Door2(doors[2])
			t2.Door2(doors[3])
			world.Connect(doors[0], doors[1])
			world.Connect(doors[2], doors[3])

			b.start(math3d.V3(0, playerHeight, 5), 0)
			return nil
		},
	}
}

// Slope joins two sloped tunnels so that walking downhill brings you back
// up to where you started.
func Slope() *Scene {
	return &Scene{
		name:        "slope",
		description: "a downhill tunnel that never gets lower",
		build: func(b *builder) error {
			t1, err := b.tunnel("tunnel 1", models.TunnelSlope, math3d.Vec3{}, math3d.V3(1, 1, 5), math.Pi)
			if err != nil {
				return err
			}
			if _, err := b.ground("ground 1", math3d.Vec3{}, 10, true); err != nil {
				return err
			}
			t2, err := b.tunnel("tunnel 2", models.TunnelSlope, math3d.V3(200, 0, 0), math3d.V3(1, 1, 5), 0)
			if err != nil {
				return err
			}
			g2, err := b.ground("ground 2", math3d.V3(200, 0, 0), 10, true)
			if err != nil {
				return err
			}
			g2.Euler.Y = math.Pi

			doors, err := b.portals(4)
			if err != nil {
				return err
			}
			t1.Door1(doors[0])
			t1.Door2(doors[1])
			t2.Door1(doors[2])
			doors[2].Euler.Y -= math.Pi
			t2.Door2(doors[3])
			doors[3].Euler.Y -= math.Pi
			world.Connect(doors[0], doors[3])
			world.Connect(doors[1], doors[2])

			b.start(math3d.V3(0, playerHeight-2, 8), 0)
			return nil
		},
	}
}

// Scale shrinks the player by walking through a tapering tunnel.
func Scale() *Scene {
	return &Scene{
		name:        "scale",
		description: "a tapering tunnel that changes your size",
		build: func(b *builder) error {
			t1, err := b.tunnel("tunnel 1", models.TunnelScale, math3d.V3(-1.2, 0, 0), math3d.V3(1, 1, 2.4), 0)
			if err != nil {
				return err
			}
			if _, err := b.ground("ground 1", math3d.Vec3{}, 12, false); err != nil {
				return err
			}
			t2, err := b.tunnel("tunnel 2", models.TunnelNormal, math3d.V3(201.2, 0, 0), math3d.V3(1, 1, 2.4), 0)
			if err != nil {
				return err
			}
			if _, err := b.ground("ground 2", math3d.V3(200, 0, 0), 12, false); err != nil {
				return err
			}

			doors, err := b.portals(4)
			if err != nil {
				return err
			}
			t1.Door1(doors[0])
			t2.Door1(doors[1])
			t1.Door2(doors[2])
			t2.Door2(doors[3])
			world.Connect(doors[0], doors[1])
			world.Connect(doors[2], doors[3])

			// A tunnel only a small player fits through.
			if _, err := b.tunnel("small tunnel", models.TunnelNormal, math3d.V3(-1, 0, -4.2), math3d.V3(0.25, 0.25, 0.6), math.Pi/2); err != nil {
				return err
			}

			b.start(math3d.V3(0, playerHeight, 5), 0)
			return nil
		},
	}
}

// roomTextures tints consecutive rooms.
var roomTextures = []string{"checker_red", "checker_blue", "checker_gold"}

// Rooms chains n rooms in a loop. Walking around the pillar moves you to
// the next room.
func Rooms(n int) *Scene {
	return &Scene{
		name:        "rooms",
		description: fmt.Sprintf("%d rooms around one pillar", n),
		build: func(b *builder) error {
			if n < 2 {
				return errors.New("rooms needs at least two rooms")
			}
			doors, err := b.portals(n)
			if err != nil {
				return err
			}
			for i := range n {
				room, err := b.room(fmt.Sprintf("room %d", i+1), math3d.V3(200*float64(i), 0, 0), roomTextures[i%len(roomTextures)])
				if err != nil {
					return err
				}
				room.Door(doors[i])

				statue, err := b.object(fmt.Sprintf("statue %d", i+1), "box", roomTextures[(i+1)%len(roomTextures)])
				if err != nil {
					return err
				}
				statue.Pos = room.Pos.Add(math3d.V3(0, 0.3, 1.6))
				statue.Scale = math3d.V3(0.3, 0.3, 0.3)
				statue.Euler.Y = math.Pi / 4 * float64(i)
			}
			for i := range n {
				world.ConnectWarps(&doors[i].Front, &doors[(i+1)%n].Back)
			}

			b.start(math3d.V3(0, playerHeight, 1), 0)
			return nil
		},
	}
}

// portals adds n portals named door 1..n.
func (b *builder) portals(n int) ([]*world.Portal, error) {
	out := make([]*world.Portal, n)
	for i := range out {
		p, err := b.portal(fmt.Sprintf("door %d", i+1))
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// Houses shows n rooms in a house that only has four. Doorways are closed
// off with portals so that walking through them skips or repeats rooms.
// Five and six rooms borrow a second house far away.
func Houses(n int) *Scene {
	return &Scene{
		name:        fmt.Sprintf("house%d", n),
		description: fmt.Sprintf("a four-room house with %d rooms", n),
		build: func(b *builder) error {
			if n < 1 || n > 6 {
				return fmt.Errorf("houses have 1 to 6 rooms, not %d", n)
			}
			house1, err := b.house("house 1", math3d.V3(0, 0, -20), "checker_gold")
			if err != nil {
				return err
			}
			var house2 *House
			if n > 4 {
				if house2, err = b.house("house 2", math3d.V3(200, 0, -20), "checker_blue"); err != nil {
					return err
				}
			}
			start := house1.LocalToWorld().MulPoint(math3d.V3(3, 0, 3))
			b.start(start.Add(math3d.V3(0, playerHeight, 0)), 0)

			switch n {
			case 1, 2, 3:
				doors, err := b.portals(2)
				if err != nil {
					return err
				}
				switch n {
				case 1:
					house1.Door1(doors[0])
				case 2:
					house1.Door2(doors[0])
				case 3:
					house1.Door3(doors[0])
				}
				house1.Door4(doors[1])
				world.Connect(doors[0], doors[1])
			case 5, 6:
				doors, err := b.portals(3)
				if err != nil {
					return err
				}
				house1.Door4(doors[0])
				if n == 5 {
					house2.Door2(doors[1])
				} else {
					house2.Door3(doors[1])
				}
				house2.Door1(doors[2])
				for i := range doors {
					world.ConnectWarps(&doors[i].Front, &doors[(i+1)%3].Back)
				}
			}
			return nil
		},
	}
}
