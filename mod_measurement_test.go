package tape

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/tape/spatial/sim"
)

func newMeasurementApp(r *rig, onBack func()) (*App, *Actions) {
	app := NewAppBuilder().
		UseModule(LoggingModule{Logger: NewNopLogger()}).
		UseModule(TimeModule{Clock: r.clock}).
		UseModule(MeasurementModule{Engine: r.engine, OnBack: onBack}).
		Build()
	r.t.Cleanup(app.Close)

	actions, ok := Resource[Actions](app)
	require.True(r.t, ok)
	return app, actions
}

// frame ticks once and waits for the work the tick queued.
func frame(app *App, e *Engine) {
	app.Tick()
	e.Settle()
}

func TestMeasurementModuleMeasuresThroughFrames(t *testing.T) {
	r := newRig(t)
	app, actions := newMeasurementApp(r, nil)

	require.NoError(t, actions.Trigger(ActionAddPoint))
	frame(app, r.engine)
	pts := r.engine.Registry().Points()
	require.Len(t, pts, 1)
	assert.Equal(t, "Dot-Node-1", pts[0].Name())
	assert.True(t, pts[0].IsAnchored())

	r.session.SetCamera(aimCamera(mgl32.Vec3{0.5, 0, 0}))
	frame(app, r.engine)
	assert.Equal(t, FocusDetecting, r.engine.Focus().State())
	assert.Equal(t, 1, r.stripes(), "preview follows the reticle")

	require.NoError(t, actions.Trigger(ActionAddPoint))
	frame(app, r.engine)
	frame(app, r.engine)

	require.Len(t, r.engine.Registry().Points(), 2)
	require.Len(t, r.engine.Registry().Segments(), 1)
	labels := r.engine.Registry().Labels()
	require.Len(t, labels, 1)
	assert.Equal(t, "50.00 cm", labels[0].Text)
	assert.Equal(t, 0, r.stripes())
}

func TestMeasurementModuleRestartCooldown(t *testing.T) {
	r := newRig(t)
	app, actions := newMeasurementApp(r, nil)

	require.NoError(t, actions.Trigger(ActionAddPoint))
	frame(app, r.engine)
	require.NoError(t, actions.Trigger(ActionRestart))
	frame(app, r.engine)

	assert.Empty(t, r.engine.Registry().Points())
	assert.False(t, r.engine.IsRestartAvailable())
	assert.Equal(t, "Dot-Node-1", actions.NextPointName())

	r.clock.Advance(r.engine.Config().RestartCooldown / 2)
	frame(app, r.engine)
	assert.False(t, r.engine.IsRestartAvailable())

	r.clock.Advance(r.engine.Config().RestartCooldown / 2)
	frame(app, r.engine)
	assert.True(t, r.engine.IsRestartAvailable())
}

func TestMeasurementModuleBack(t *testing.T) {
	r := newRig(t)
	backs := 0
	app, actions := newMeasurementApp(r, func() { backs++ })

	require.NoError(t, actions.Trigger(ActionBack))
	frame(app, r.engine)

	assert.Equal(t, 1, backs)
	assert.False(t, r.session.IsRunning())
}

func TestMeasurementModuleRequiresEngine(t *testing.T) {
	assert.Panics(t, func() {
		NewAppBuilder().UseModule(MeasurementModule{}).Build()
	})
}

func TestMeasurementModuleInstallsTimeWhenMissing(t *testing.T) {
	r := newRig(t)
	app := NewAppBuilder().UseModule(MeasurementModule{Engine: r.engine}).Build()
	t.Cleanup(app.Close)

	tm, ok := Resource[Time](app)
	require.True(t, ok)
	assert.Equal(t, rigStart, tm.Time, "the engine clock drives frame time")
}

func TestMeasurementModuleBeforeTimeModule(t *testing.T) {
	r := newRig(t)
	var app *App
	require.NotPanics(t, func() {
		app = NewAppBuilder().
			UseModule(MeasurementModule{Engine: r.engine}).
			UseModule(TimeModule{}).
			Build()
	})
	t.Cleanup(app.Close)

	tm, ok := Resource[Time](app)
	require.True(t, ok)
	assert.Equal(t, rigStart, tm.Time, "the first installer wins")
}

func aimCamera(p mgl32.Vec3) mgl32.Mat4 {
	return sim.LookAt(p.Add(mgl32.Vec3{0, 1, 0.5}), p)
}
