package world

import "github.com/taigrr/noneuclid/pkg/render"

// Input is the player's intent for a frame.
type Input struct {
	// Forward and Right are movement axes in [-1, 1].
	Forward float64
	Right   float64
	// LookX and LookY are the mouse motion in pixels since the last frame.
	LookX float64
	LookY float64
}

// StepContext is passed to controllers for one simulation step.
type StepContext struct {
	Input
	DT     float64
	Config *Config
}

// Stats counts what the last rendered frame did.
type Stats struct {
	Passes          int
	PortalsDrawn    int
	PortalsOccluded int
	Placeholders    int
	Steps           int
	Traversals      int
}

// FrameContext carries the recursion budget through one rendered frame.
// Each scene pass takes one unit of budget for the portals it draws and
// gives it back afterwards.
type FrameContext struct {
	Budget int
	Stats  Stats

	nearest float64
	pool    *render.BufferPool
	engine  *Engine
}
