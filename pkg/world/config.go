package world

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// PortalOrder decides which portal a body tries first during the portal sweep.
type PortalOrder string

const (
	// FirstWins tries portals in scene order and stops at the first crossing.
	FirstWins PortalOrder = "first-wins"
	// NearestFirst tries portals by distance from the body's previous position.
	NearestFirst PortalOrder = "nearest-first"
)

// Config holds every engine tunable. Angles are in degrees, times in seconds.
type Config struct {
	FOV          float64 `json:"fov"`
	NearMin      float64 `json:"near_min"`
	NearMax      float64 `json:"near_max"`
	Far          float64 `json:"far"`
	MaxRecursion int     `json:"max_recursion"`
	DT           float64 `json:"dt"`
	MaxSteps     int     `json:"max_steps"`
	Occlusion    bool    `json:"occlusion"`

	PortalOrder PortalOrder `json:"portal_order"`

	MouseSensitivity float64 `json:"mouse_sensitivity"`
	// MouseSmooth in [0,1) springs the camera toward the look target; 0 is off.
	MouseSmooth float64 `json:"mouse_smooth"`
	WalkSpeed   float64 `json:"walk_speed"`
	WalkAccel   float64 `json:"walk_accel"`
	Gravity     float64 `json:"gravity"`

	BobFreq float64 `json:"bob_freq"`
	BobOffs float64 `json:"bob_offs"`
	BobDamp float64 `json:"bob_damp"`
	BobMin  float64 `json:"bob_min"`

	PlayerHeight float64 `json:"player_height"`
	PlayerRadius float64 `json:"player_radius"`
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		FOV:          60,
		NearMin:      1e-3,
		NearMax:      1e-1,
		Far:          100,
		MaxRecursion: 4,
		DT:           0.002,
		MaxSteps:     30,
		Occlusion:    true,
		PortalOrder:  FirstWins,

		MouseSensitivity: 0.005,
		MouseSmooth:      0.5,
		WalkSpeed:        2.9,
		WalkAccel:        50,
		Gravity:          -9.8,

		BobFreq: 8,
		BobOffs: 0.015,
		BobDamp: 0.04,
		BobMin:  0.1,

		PlayerHeight: 1.5,
		PlayerRadius: 0.2,
	}
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.DT <= 0 {
		errs = append(errs, fmt.Errorf("dt must be positive, got %g", c.DT))
	}
	if c.MaxSteps < 1 {
		errs = append(errs, fmt.Errorf("max_steps must be at least 1, got %d", c.MaxSteps))
	}
	if c.MaxRecursion < 0 {
		errs = append(errs, fmt.Errorf("max_recursion must not be negative, got %d", c.MaxRecursion))
	}
	if c.NearMin <= 0 || c.NearMax < c.NearMin {
		errs = append(errs, fmt.Errorf("near bounds must satisfy 0 < near_min <= near_max, got %g, %g", c.NearMin, c.NearMax))
	}
	if c.Far <= c.NearMax {
		errs = append(errs, fmt.Errorf("far (%g) must exceed near_max (%g)", c.Far, c.NearMax))
	}
	if c.FOV <= 0 || c.FOV >= 180 {
		errs = append(errs, fmt.Errorf("fov must be in (0, 180), got %g", c.FOV))
	}
	if c.PlayerHeight <= 0 || c.PlayerRadius <= 0 {
		errs = append(errs, fmt.Errorf("player dimensions must be positive, got height %g radius %g", c.PlayerHeight, c.PlayerRadius))
	}
	if c.MouseSmooth < 0 || c.MouseSmooth >= 1 {
		errs = append(errs, fmt.Errorf("mouse_smooth must be in [0, 1), got %g", c.MouseSmooth))
	}
	switch c.PortalOrder {
	case FirstWins, NearestFirst:
	default:
		errs = append(errs, fmt.Errorf("unknown portal_order %q", c.PortalOrder))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// LoadConfig reads a JSON file over the defaults. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
