// Package levels declares the built-in scenes.
package levels

import (
	"fmt"
	"slices"

	"github.com/taigrr/noneuclid/pkg/assets"
	"github.com/taigrr/noneuclid/pkg/world"
)

// Scene is a built-in level.
type Scene struct {
	name        string
	description string
	build       func(b *builder) error
}

// Name returns the level's short name.
func (s *Scene) Name() string { return s.name }

// Description returns a one-line summary.
func (s *Scene) Description() string { return s.description }

// Load builds the level's entities and portals.
func (s *Scene) Load(lib *assets.Library) (*world.Level, error) {
	b := &builder{lib: lib, level: &world.Level{}}
	if err := s.build(b); err != nil {
		b.level.Release()
		return nil, fmt.Errorf("level %s: %w", s.name, err)
	}
	return b.level, nil
}

// All returns the built-in levels in menu order.
func All() []*Scene {
	return []*Scene{Tunnels(), Houses(3), Houses(6), Rooms(3), Slope(), Scale()}
}

// ByName finds a built-in level.
func ByName(name string) (*Scene, bool) {
	i := slices.IndexFunc(All(), func(s *Scene) bool { return s.name == name })
	if i < 0 {
		return nil, false
	}
	return All()[i], true
}

// Names lists the built-in level names in menu order.
func Names() []string {
	var names []string
	for _, s := range All() {
		names = append(names, s.name)
	}
	return names
}
