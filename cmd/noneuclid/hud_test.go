package main

import (
	"bytes"
	"strings"
	"testing"

	"charm.land/lipgloss/v2"

	"github.com/taigrr/noneuclid/pkg/levels"
	"github.com/taigrr/noneuclid/pkg/render"
	"github.com/taigrr/noneuclid/pkg/world"
)

func TestHUDView(t *testing.T) {
	h := NewHUD()
	top, bottom := h.View(hudStatus{
		level:  "rooms",
		pscale: 2,
		stats:  world.Stats{Passes: 4, PortalsDrawn: 3, PortalsOccluded: 1, Placeholders: 1},
	})

	for _, want := range []string{"rooms", "scale 2", "FPS"} {
		if !strings.Contains(top, want) {
			t.Errorf("top line %q missing %q", top, want)
		}
	}
	for _, want := range []string{"passes 4", "portals 3", "hidden 1", "capped 1"} {
		if !strings.Contains(bottom, want) {
			t.Errorf("bottom line %q missing %q", bottom, want)
		}
	}
	if lipgloss.Height(top) != 1 || lipgloss.Height(bottom) != 1 {
		t.Error("HUD lines should be a single row")
	}
}

func TestPrintLevels(t *testing.T) {
	var buf bytes.Buffer
	if err := printLevels(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, name := range levels.Names() {
		if !strings.Contains(out, name) {
			t.Errorf("output missing level %q:\n%s", name, out)
		}
	}
	if got := strings.Count(out, "\n"); got != len(levels.All()) {
		t.Errorf("got %d lines, want %d", got, len(levels.All()))
	}
}

func TestSwitchLevel(t *testing.T) {
	o := &options{level: "tunnels", fps: 60, recursion: 1, logLevel: "error"}
	logger, closeLog, err := o.newLogger(&bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	defer closeLog()
	engine, err := o.newEngine(logger)
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Unload()

	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{"2", levels.All()[1].Name(), false},
		{"", levels.All()[1].Name(), false},
		{"9", "", true},
		{"x", "", true},
	}
	for _, tt := range tests {
		t.Run("key "+tt.key, func(t *testing.T) {
			err := switchLevel(engine, tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && engine.Scene().Name() != tt.want {
				t.Errorf("scene = %q, want %q", engine.Scene().Name(), tt.want)
			}
		})
	}
}

func TestDrawCrosshair(t *testing.T) {
	fb := render.NewFramebuffer(20, 10)
	drawCrosshair(fb)
	for _, p := range [][2]int{{10, 5}, {8, 5}, {12, 5}, {10, 4}, {10, 6}} {
		if got := fb.GetPixel(p[0], p[1]); got != crosshairColor {
			t.Errorf("pixel %v = %v, want crosshair", p, got)
		}
	}
	if got := fb.GetPixel(0, 0); got == crosshairColor {
		t.Error("corner should be untouched")
	}
}
