package render

import (
	"math"

	"github.com/taigrr/noneuclid/pkg/math3d"
)

// Sky colors.
var (
	SkyZenith  = RGB(58, 96, 170)
	SkyHorizon = RGB(196, 214, 236)
	SkyGround  = RGB(84, 84, 96)
)

// DrawSky fills the color buffer with a vertical gradient seen from cam.
// Depth is left untouched so anything drawn afterwards covers it.
func DrawSky(fb *Framebuffer, cam *Camera) {
	if fb.Width == 0 || fb.Height == 0 {
		return
	}
	p := cam.Projection
	if p[0] == 0 || p[5] == 0 {
		return
	}
	camToWorld := cam.View.Inverse()

	// The view ray is linear in ndc: dir = base + nx*right + ny*up.
	base := camToWorld.MulDir(math3d.V3(0, 0, -1))
	right := camToWorld.MulDir(math3d.V3(1/p[0], 0, 0))
	up := camToWorld.MulDir(math3d.V3(0, 1/p[5], 0))

	for y := range fb.Height {
		ny := 1 - (float64(y)+0.5)*2/float64(fb.Height)
		row := base.Add(up.Scale(ny))
		for x := range fb.Width {
			nx := (float64(x)+0.5)*2/float64(fb.Width) - 1
			dir := row.Add(right.Scale(nx))
			l := dir.Len()
			if l == 0 {
				continue
			}
			fb.Pixels[y*fb.Width+x] = skyColor(dir.Y / l)
		}
	}
}

// skyColor maps the sine of the elevation angle to a color.
func skyColor(s float64) Color {
	if s < 0 {
		return lerpColor(SkyHorizon, SkyGround, math.Min(1, -s*4))
	}
	return lerpColor(SkyHorizon, SkyZenith, math.Sqrt(s))
}
