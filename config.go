package tape

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/kelseyhightower/envconfig"

	"github.com/gekko3d/tape/spatial/geom"
)

const (
	BasisUp          = "up"
	BasisDestination = "destination"
)

// Config tunes the measurement engine. Every field can be overridden from the
// environment with the TAPE_ prefix, e.g. TAPE_SNAP_RADIUS=0.03.
type Config struct {
	// SnapRadius is how close the reticle must be to a placed point to snap to it.
	SnapRadius      float32       `envconfig:"SNAP_RADIUS" default:"0.05"`
	RestartCooldown time.Duration `envconfig:"RESTART_COOLDOWN" default:"5s"`
	// DragSmoothing is the slerp factor applied per drag update on surfaces of
	// any orientation.
	DragSmoothing      float32 `envconfig:"DRAG_SMOOTHING" default:"0.1"`
	LabelLift          float32 `envconfig:"LABEL_LIFT" default:"0.01"`
	LabelTextSize      float64 `envconfig:"LABEL_TEXT_SIZE" default:"25"`
	LineRadius         float32 `envconfig:"LINE_RADIUS" default:"0.003"`
	FocusHoverDistance float32 `envconfig:"FOCUS_HOVER_DISTANCE" default:"0.5"`
	// BasisReference picks the reference vector for segment frames: "up" uses
	// world +Y, "destination" uses the segment's end point.
	BasisReference string `envconfig:"BASIS_REFERENCE" default:"up"`
	Debug          bool   `envconfig:"DEBUG" default:"false"`
	LogPrefix      string `envconfig:"LOG_PREFIX" default:"tape"`
}

func DefaultConfig() Config {
	return Config{
		SnapRadius:         0.05,
		RestartCooldown:    5 * time.Second,
		DragSmoothing:      0.1,
		LabelLift:          0.01,
		LabelTextSize:      25,
		LineRadius:         0.003,
		FocusHoverDistance: 0.5,
		BasisReference:     BasisUp,
		LogPrefix:          "tape",
	}
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("tape", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.SnapRadius <= 0:
		return fmt.Errorf("invalid config: snap radius must be positive, got %v", c.SnapRadius)
	case c.RestartCooldown < 0:
		return fmt.Errorf("invalid config: restart cooldown must not be negative, got %v", c.RestartCooldown)
	case c.DragSmoothing <= 0 || c.DragSmoothing > 1:
		return fmt.Errorf("invalid config: drag smoothing must be in (0, 1], got %v", c.DragSmoothing)
	case c.LabelTextSize <= 0:
		return fmt.Errorf("invalid config: label text size must be positive, got %v", c.LabelTextSize)
	case c.LineRadius <= 0:
		return fmt.Errorf("invalid config: line radius must be positive, got %v", c.LineRadius)
	case c.FocusHoverDistance <= 0:
		return fmt.Errorf("invalid config: focus hover distance must be positive, got %v", c.FocusHoverDistance)
	}
	if c.BasisReference != BasisUp && c.BasisReference != BasisDestination {
		return fmt.Errorf("invalid config: basis reference must be %q or %q, got %q", BasisUp, BasisDestination, c.BasisReference)
	}
	return nil
}

// upHint is the reference vector for a segment ending at end.
func (c Config) upHint(end mgl32.Vec3) mgl32.Vec3 {
	if c.BasisReference == BasisDestination {
		return end
	}
	return geom.WorldUp
}
