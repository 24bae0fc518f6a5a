// Package render is the software renderer: cameras with oblique near planes,
// color and depth framebuffers, a clipping rasterizer with write masks and
// sample counting, and half-block terminal output.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
)

// Framebuffer is a color and depth target.
// Height is 2x the terminal rows when drawn with half-block cells.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []color.RGBA // Row-major pixel data
	Depth  []float64    // Row-major ndc depth, +Inf when clear
}

// NewFramebuffer creates a framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	fb := &Framebuffer{}
	fb.Resize(width, height)
	return fb
}

// Resize reallocates the buffers when the size changes.
func (fb *Framebuffer) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if fb.Width == width && fb.Height == height && fb.Pixels != nil {
		return
	}
	fb.Width = width
	fb.Height = height
	fb.Pixels = make([]color.RGBA, width*height)
	fb.Depth = make([]float64, width*height)
	fb.ClearDepth()
}

// Clear fills the color buffer and resets depth.
func (fb *Framebuffer) Clear(c color.RGBA) {
	for i := range fb.Pixels {
		fb.Pixels[i] = c
	}
	fb.ClearDepth()
}

// ClearDepth resets every depth sample to +Inf.
func (fb *Framebuffer) ClearDepth() {
	n := len(fb.Depth)
	if n == 0 {
		return
	}
	// copy-doubling
	fb.Depth[0] = math.Inf(1)
	for i := 1; i < n; i *= 2 {
		copy(fb.Depth[i:], fb.Depth[:i])
	}
}

// SetPixel sets a pixel at (x, y). Out of bounds writes are ignored.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns the color at (x, y), or transparent black out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// DepthAt returns the depth at (x, y), or +Inf out of bounds.
func (fb *Framebuffer) DepthAt(x, y int) float64 {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return math.Inf(1)
	}
	return fb.Depth[y*fb.Width+x]
}

// DrawLine draws a line from (x0, y0) to (x1, y1) using Bresenham's algorithm.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		fb.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ToImage converts the color buffer to an image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			img.SetRGBA(x, y, fb.Pixels[y*fb.Width+x])
		}
	}
	return img
}

// SavePNG writes the color buffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, fb.ToImage()); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// BufferPool holds one offscreen framebuffer per recursion depth.
// Buffers at different depths are never shared.
type BufferPool struct {
	width  int
	height int
	bufs   []*Framebuffer
}

// NewBufferPool creates count buffers of the given size.
func NewBufferPool(count, width, height int) *BufferPool {
	p := &BufferPool{}
	p.Reset(count, width, height)
	return p
}

// Reset resizes the pool to count buffers of width x height.
func (p *BufferPool) Reset(count, width, height int) {
	if count < 0 {
		count = 0
	}
	p.width, p.height = width, height
	if len(p.bufs) > count {
		p.bufs = p.bufs[:count]
	}
	for _, fb := range p.bufs {
		fb.Resize(width, height)
	}
	for len(p.bufs) < count {
		p.bufs = append(p.bufs, NewFramebuffer(width, height))
	}
}

// Resize changes the size of every buffer.
func (p *BufferPool) Resize(width, height int) {
	p.Reset(len(p.bufs), width, height)
}

// Len returns the number of buffers.
func (p *BufferPool) Len() int {
	return len(p.bufs)
}

// Size returns the buffer dimensions.
func (p *BufferPool) Size() (width, height int) {
	return p.width, p.height
}

// Get returns the buffer for a recursion depth, or nil if out of range.
func (p *BufferPool) Get(depth int) *Framebuffer {
	if depth < 0 || depth >= len(p.bufs) {
		return nil
	}
	return p.bufs[depth]
}
