package main

import (
	"sync"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/noneuclid/pkg/world"
)

const (
	// keyHold keeps a movement key down between auto-repeats, for
	// terminals that never report key releases.
	keyHold = 600 * time.Millisecond
	// mouseScale converts terminal cells of mouse motion to look pixels.
	mouseScale = 6.0
	// arrowTurn is the look delta of one arrow key press.
	arrowTurn = 24.0
)

// movement keys and the axis each one drives.
var moveKeys = []struct {
	keys           []string
	forward, right float64
}{
	{[]string{"w"}, 1, 0},
	{[]string{"s"}, -1, 0},
	{[]string{"a"}, 0, -1},
	{[]string{"d"}, 0, 1},
}

// inputState collects terminal events on the input goroutine and hands a
// snapshot to the frame loop.
type inputState struct {
	mu  sync.Mutex
	now func() time.Time

	held         [4]time.Time
	lookX, lookY float64

	mouseKnown bool
	mouseX     int
	mouseY     int

	resized    bool
	cols, rows int

	level   string
	restart bool
	hud     bool
}

func newInputState() *inputState {
	return &inputState{now: time.Now}
}

// handle applies one event. It reports whether the user asked to quit.
func (s *inputState) handle(ev uv.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		s.resized = true
		s.cols, s.rows = ev.Width, ev.Height

	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("escape", "ctrl+c"):
			return true
		case ev.MatchString("left"):
			s.lookX -= arrowTurn
		case ev.MatchString("right"):
			s.lookX += arrowTurn
		case ev.MatchString("up"):
			s.lookY -= arrowTurn
		case ev.MatchString("down"):
			s.lookY += arrowTurn
		case ev.MatchString("r"):
			s.restart = true
		case ev.MatchString("?", "shift+/"):
			s.hud = !s.hud
		case ev.MatchString("1", "2", "3", "4", "5", "6"):
			s.level = ev.String()
		}
		for i, mk := range moveKeys {
			if ev.MatchString(mk.keys...) {
				s.held[i] = s.now()
			}
		}

	case uv.KeyReleaseEvent:
		for i, mk := range moveKeys {
			if ev.MatchString(mk.keys...) {
				s.held[i] = time.Time{}
			}
		}

	case uv.MouseMotionEvent:
		if s.mouseKnown {
			s.lookX += float64(ev.X-s.mouseX) * mouseScale
			// Cells are two framebuffer pixels tall.
			s.lookY += float64(ev.Y-s.mouseY) * mouseScale * 2
		}
		s.mouseKnown = true
		s.mouseX, s.mouseY = ev.X, ev.Y
	}
	return false
}

// frame returns the input for the next frame and clears the look delta.
func (s *inputState) frame() world.Input {
	s.mu.Lock()
	defer s.mu.Unlock()

	var in world.Input
	now := s.now()
	for i, mk := range moveKeys {
		if !s.held[i].IsZero() && now.Sub(s.held[i]) < keyHold {
			in.Forward += mk.forward
			in.Right += mk.right
		}
	}
	in.LookX, in.LookY = s.lookX, s.lookY
	s.lookX, s.lookY = 0, 0
	return in
}

// takeResize returns a pending terminal size.
func (s *inputState) takeResize() (cols, rows int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.resized {
		return 0, 0, false
	}
	s.resized = false
	return s.cols, s.rows, true
}

// takeLevel returns a pending level switch ("1".."6") or restart ("").
func (s *inputState) takeLevel() (key string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.level != "":
		key, s.level = s.level, ""
		s.restart = false
		return key, true
	case s.restart:
		s.restart = false
		return "", true
	}
	return "", false
}

func (s *inputState) showHUD() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hud
}
