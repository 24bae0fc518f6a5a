package main

import (
	"fmt"
	"image/color"
	"time"

	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/noneuclid/pkg/render"
	"github.com/taigrr/noneuclid/pkg/world"
)

var (
	hudBase  = lipgloss.NewStyle().Background(lipgloss.Color("#101018")).Foreground(lipgloss.Color("#e8e8f0")).Padding(0, 1)
	hudFPS   = hudBase.Foreground(lipgloss.Color("#5fd75f"))
	hudTitle = hudBase.Bold(true)
	hudStat  = hudBase.Foreground(lipgloss.Color("#5fd7ff"))
	hudHint  = hudBase.Faint(true).Foreground(lipgloss.Color("#ffd75f"))
)

// hudStatus is what the overlay reports for one frame.
type hudStatus struct {
	level  string
	pscale float64
	stats  world.Stats
}

// HUD renders an overlay with frame rate, level and render counters.
type HUD struct {
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a HUD.
func NewHUD() *HUD {
	return &HUD{fpsTime: time.Now()}
}

// UpdateFPS updates the FPS counter (call once per frame).
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// View returns the top and bottom overlay lines.
func (h *HUD) View(st hudStatus) (top, bottom string) {
	top = lipgloss.JoinHorizontal(lipgloss.Top,
		hudFPS.Render(fmt.Sprintf("%.0f FPS", h.fps)),
		hudTitle.Render(st.level),
		hudStat.Render(fmt.Sprintf("scale %.3g", st.pscale)),
	)
	bottom = lipgloss.JoinHorizontal(lipgloss.Top,
		hudStat.Render(fmt.Sprintf("passes %d  portals %d  hidden %d  capped %d",
			st.stats.Passes, st.stats.PortalsDrawn, st.stats.PortalsOccluded, st.stats.Placeholders)),
		hudHint.Render("WASD walk  1-6 level  r restart  esc quit"),
	)
	return top, bottom
}

// Draw paints the overlay onto the screen.
func (h *HUD) Draw(scr uv.Screen, cols, rows int, st hudStatus) {
	top, bottom := h.View(st)
	uv.NewStyledString(top).Draw(scr, uv.Rect(0, 0, cols, 1))
	if rows > 1 {
		uv.NewStyledString(bottom).Draw(scr, uv.Rect(0, rows-1, cols, 1))
	}
}

var crosshairColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// drawCrosshair marks the screen center on the framebuffer.
func drawCrosshair(fb *render.Framebuffer) {
	cx, cy := fb.Width/2, fb.Height/2
	fb.DrawLine(cx-2, cy, cx+2, cy, crosshairColor)
	fb.DrawLine(cx, cy-1, cx, cy+1, crosshairColor)
}
