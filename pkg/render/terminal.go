package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw writes the framebuffer to scr as half-block cells: each terminal row
// shows two framebuffer rows, top as foreground and bottom as background.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		if topY >= fb.Height {
			break
		}
		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width {
				break
			}
			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(fb.GetPixel(x, topY)),
					Bg: rgbaToColor(fb.GetPixel(x, topY+1)),
				},
			})
		}
	}
}

// rgbaToColor maps transparent pixels to the terminal default color.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}

// TerminalRenderer presents framebuffers on an ultraviolet terminal.
type TerminalRenderer struct {
	term *uv.Terminal
	cols int
	rows int
}

// NewTerminalRenderer creates a renderer for a cols x rows terminal.
func NewTerminalRenderer(term *uv.Terminal, cols, rows int) *TerminalRenderer {
	return &TerminalRenderer{term: term, cols: cols, rows: rows}
}

// Resize updates the terminal size.
func (t *TerminalRenderer) Resize(cols, rows int) {
	t.cols, t.rows = cols, rows
}

// FramebufferSize returns the framebuffer size that fills the terminal.
func (t *TerminalRenderer) FramebufferSize() (width, height int) {
	return t.cols, t.rows * 2
}

// Render draws fb over the whole terminal.
func (t *TerminalRenderer) Render(fb *Framebuffer) {
	fb.Draw(t.term, uv.Rect(0, 0, t.cols, t.rows))
}

// Flush sends pending cell changes to the terminal.
func (t *TerminalRenderer) Flush() error {
	return t.term.Display()
}

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

var (
	ColorBlack = color.RGBA{0, 0, 0, 255}
	ColorWhite = color.RGBA{255, 255, 255, 255}
	ColorGray  = color.RGBA{128, 128, 128, 255}
	// ColorPink marks a portal whose recursion budget ran out.
	ColorPink = color.RGBA{255, 105, 180, 255}
)

// RGB creates an opaque color.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}
