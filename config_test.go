package tape

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/tape/spatial/geom"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("TAPE_SNAP_RADIUS", "0.03")
	t.Setenv("TAPE_RESTART_COOLDOWN", "2s")
	t.Setenv("TAPE_BASIS_REFERENCE", "destination")
	t.Setenv("TAPE_DEBUG", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.InDelta(t, 0.03, cfg.SnapRadius, 1e-6)
	assert.Equal(t, 2*time.Second, cfg.RestartCooldown)
	assert.Equal(t, BasisDestination, cfg.BasisReference)
	assert.True(t, cfg.Debug)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	t.Run("basis", func(t *testing.T) {
		t.Setenv("TAPE_BASIS_REFERENCE", "sideways")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "basis reference")
	})
	t.Run("unparsable", func(t *testing.T) {
		t.Setenv("TAPE_RESTART_COOLDOWN", "soon")
		_, err := LoadConfig()
		assert.Error(t, err)
	})
	t.Run("smoothing", func(t *testing.T) {
		t.Setenv("TAPE_DRAG_SMOOTHING", "1.5")
		_, err := LoadConfig()
		assert.ErrorContains(t, err, "drag smoothing")
	})
}

func TestUpHint(t *testing.T) {
	end := mgl32.Vec3{1, 2, 3}

	cfg := DefaultConfig()
	assert.Equal(t, geom.WorldUp, cfg.upHint(end))

	cfg.BasisReference = BasisDestination
	assert.Equal(t, end, cfg.upHint(end))
}
