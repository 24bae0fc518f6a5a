package render

import (
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"math"
	"os"
)

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapRepeat WrapMode = iota // Tile the texture
	WrapClamp                  // Clamp to edge
)

// FilterMode determines how texture sampling is performed.
type FilterMode int

const (
	FilterNearest  FilterMode = iota // Nearest-neighbor (pixelated)
	FilterBilinear                   // Bilinear interpolation (smooth)
)

// Texture holds a 2D image for texture mapping.
type Texture struct {
	Width      int
	Height     int
	Pixels     []Color // Row-major pixel data
	WrapU      WrapMode
	WrapV      WrapMode
	FilterMode FilterMode
}

// NewTexture creates an empty repeating texture.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:      width,
		Height:     height,
		Pixels:     make([]Color, width*height),
		WrapU:      WrapRepeat,
		WrapV:      WrapRepeat,
		FilterMode: FilterNearest,
	}
}

// LoadTexture decodes a PNG or JPEG file.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return TextureFromImage(img), nil
}

// TextureFromImage copies an image into a texture.
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	tex := NewTexture(bounds.Dx(), bounds.Dy())
	for y := range tex.Height {
		for x := range tex.Width {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// 16-bit to 8-bit
			tex.SetPixel(x, y, Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)})
		}
	}
	return tex
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 Color) *Texture {
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			if (x/checkSize+y/checkSize)%2 == 0 {
				tex.SetPixel(x, y, c1)
			} else {
				tex.SetPixel(x, y, c2)
			}
		}
	}
	return tex
}

// SetPixel sets a pixel in the texture.
func (t *Texture) SetPixel(x, y int, c Color) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// GetPixel returns the pixel at (x, y) with bounds checking.
func (t *Texture) GetPixel(x, y int) Color {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return Color{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample samples the texture at UV coordinates. V=0 is the bottom row.
func (t *Texture) Sample(u, v float64) Color {
	if t.Width == 0 || t.Height == 0 {
		return Color{}
	}
	u = wrapCoord(u, t.WrapU)
	v = 1 - wrapCoord(v, t.WrapV)

	if t.FilterMode == FilterBilinear {
		return t.sampleBilinear(u, v)
	}
	return t.sampleNearest(u, v)
}

func wrapCoord(coord float64, mode WrapMode) float64 {
	if mode == WrapClamp {
		return math.Max(0, math.Min(1, coord))
	}
	return coord - math.Floor(coord)
}

func (t *Texture) sampleNearest(u, v float64) Color {
	x := min(int(u*float64(t.Width)), t.Width-1)
	y := min(int(v*float64(t.Height)), t.Height-1)
	return t.GetPixel(x, y)
}

func (t *Texture) sampleBilinear(u, v float64) Color {
	fx := u*float64(t.Width) - 0.5
	fy := v*float64(t.Height) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	x1 := wrapPixel(x0+1, t.Width, t.WrapU)
	y1 := wrapPixel(y0+1, t.Height, t.WrapV)
	x0 = wrapPixel(x0, t.Width, t.WrapU)
	y0 = wrapPixel(y0, t.Height, t.WrapV)

	top := lerpColor(t.GetPixel(x0, y0), t.GetPixel(x1, y0), tx)
	bot := lerpColor(t.GetPixel(x0, y1), t.GetPixel(x1, y1), tx)
	return lerpColor(top, bot, ty)
}

func wrapPixel(x, size int, mode WrapMode) int {
	if mode == WrapClamp {
		return max(0, min(size-1, x))
	}
	x %= size
	if x < 0 {
		x += size
	}
	return x
}

// lerpColor linearly interpolates between two colors.
func lerpColor(a, b Color, t float64) Color {
	return Color{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
		A: uint8(float64(a.A) + (float64(b.A)-float64(a.A))*t),
	}
}

// MultiplyColor scales the RGB channels by intensity.
func MultiplyColor(c Color, intensity float64) Color {
	return Color{
		R: uint8(math.Min(255, float64(c.R)*intensity)),
		G: uint8(math.Min(255, float64(c.G)*intensity)),
		B: uint8(math.Min(255, float64(c.B)*intensity)),
		A: c.A,
	}
}
