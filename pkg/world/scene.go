package world

import (
	"errors"
	"fmt"

	"github.com/taigrr/noneuclid/pkg/assets"
	"github.com/taigrr/noneuclid/pkg/math3d"
)

// ErrNoScene is returned when the engine has nothing loaded.
var ErrNoScene = errors.New("no scene loaded")

// Scene declares a level. Load builds fresh entities each time it is called.
type Scene interface {
	Name() string
	Load(lib *assets.Library) (*Level, error)
}

// releaser is an asset handle held for the life of a level.
type releaser interface {
	Release()
}

// Level is the loaded content of a scene. Portals must already be
// connected.
type Level struct {
	Objects  []*Entity
	Portals  []*Portal
	Start    math3d.Vec3
	StartYaw float64

	handles []releaser
}

// Hold keeps h acquired until the level is released.
func (l *Level) Hold(h releaser) {
	l.handles = append(l.handles, h)
}

// Release gives back every asset the level holds.
func (l *Level) Release() {
	for _, h := range l.handles {
		h.Release()
	}
	l.handles = nil
}

// Validate checks every portal.
func (l *Level) Validate() error {
	var errs []error
	for _, p := range l.Portals {
		if err := p.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("level: %w", errors.Join(errs...))
	}
	return nil
}
