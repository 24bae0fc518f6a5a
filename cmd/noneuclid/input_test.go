package main

import (
	"testing"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
)

func press(r rune) uv.KeyPressEvent {
	return uv.KeyPressEvent{Code: r, Text: string(r)}
}

func newTestInput() (*inputState, *time.Time) {
	clock := time.Unix(0, 0)
	s := newInputState()
	s.now = func() time.Time { return clock }
	return s, &clock
}

func TestInputQuit(t *testing.T) {
	s, _ := newTestInput()
	if s.handle(press('w')) {
		t.Fatal("w should not quit")
	}
	if !s.handle(uv.KeyPressEvent{Code: uv.KeyEscape}) {
		t.Fatal("escape should quit")
	}
}

func TestInputMoveKeys(t *testing.T) {
	tests := []struct {
		name           string
		keys           []rune
		forward, right float64
	}{
		{"forward", []rune{'w'}, 1, 0},
		{"back", []rune{'s'}, -1, 0},
		{"strafe", []rune{'a'}, 0, -1},
		{"diagonal", []rune{'w', 'd'}, 1, 1},
		{"cancel", []rune{'w', 's'}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestInput()
			for _, k := range tt.keys {
				s.handle(press(k))
			}
			in := s.frame()
			if in.Forward != tt.forward || in.Right != tt.right {
				t.Errorf("got forward=%v right=%v, want %v %v", in.Forward, in.Right, tt.forward, tt.right)
			}
		})
	}
}

func TestInputKeyHoldExpires(t *testing.T) {
	s, clock := newTestInput()
	s.handle(press('w'))

	*clock = clock.Add(keyHold / 2)
	if in := s.frame(); in.Forward != 1 {
		t.Fatalf("held key: forward = %v, want 1", in.Forward)
	}
	*clock = clock.Add(keyHold)
	if in := s.frame(); in.Forward != 0 {
		t.Fatalf("expired key: forward = %v, want 0", in.Forward)
	}
}

func TestInputKeyRelease(t *testing.T) {
	s, _ := newTestInput()
	s.handle(press('d'))
	s.handle(uv.KeyReleaseEvent{Code: 'd', Text: "d"})
	if in := s.frame(); in.Right != 0 {
		t.Fatalf("released key: right = %v, want 0", in.Right)
	}
}

func TestInputMouseDelta(t *testing.T) {
	s, _ := newTestInput()
	s.handle(uv.MouseMotionEvent{X: 10, Y: 10})
	if in := s.frame(); in.LookX != 0 || in.LookY != 0 {
		t.Fatalf("first motion should only anchor, got %v,%v", in.LookX, in.LookY)
	}

	s.handle(uv.MouseMotionEvent{X: 12, Y: 9})
	s.handle(uv.MouseMotionEvent{X: 13, Y: 9})
	in := s.frame()
	if in.LookX != 3*mouseScale {
		t.Errorf("LookX = %v, want %v", in.LookX, 3*mouseScale)
	}
	if in.LookY != -2*mouseScale {
		t.Errorf("LookY = %v, want %v", in.LookY, -2*mouseScale)
	}
	if in = s.frame(); in.LookX != 0 || in.LookY != 0 {
		t.Errorf("look delta not cleared: %v,%v", in.LookX, in.LookY)
	}
}

func TestInputArrowTurn(t *testing.T) {
	s, _ := newTestInput()
	s.handle(uv.KeyPressEvent{Code: uv.KeyLeft})
	s.handle(uv.KeyPressEvent{Code: uv.KeyDown})
	in := s.frame()
	if in.LookX != -arrowTurn || in.LookY != arrowTurn {
		t.Fatalf("got %v,%v", in.LookX, in.LookY)
	}
}

func TestInputTakeLevel(t *testing.T) {
	s, _ := newTestInput()
	if _, ok := s.takeLevel(); ok {
		t.Fatal("no level pending yet")
	}

	s.handle(press('r'))
	key, ok := s.takeLevel()
	if !ok || key != "" {
		t.Fatalf("restart: got %q,%v", key, ok)
	}

	s.handle(press('r'))
	s.handle(press('3'))
	key, ok = s.takeLevel()
	if !ok || key != "3" {
		t.Fatalf("switch: got %q,%v", key, ok)
	}
	if _, ok := s.takeLevel(); ok {
		t.Fatal("switch should also consume the restart")
	}
}

func TestInputResizeAndHUD(t *testing.T) {
	s, _ := newTestInput()
	s.handle(uv.WindowSizeEvent{Width: 120, Height: 40})
	cols, rows, ok := s.takeResize()
	if !ok || cols != 120 || rows != 40 {
		t.Fatalf("takeResize = %d,%d,%v", cols, rows, ok)
	}
	if _, _, ok := s.takeResize(); ok {
		t.Fatal("resize consumed twice")
	}

	if s.showHUD() {
		t.Fatal("HUD starts hidden")
	}
	s.handle(press('?'))
	if !s.showHUD() {
		t.Fatal("? should show the HUD")
	}
}
