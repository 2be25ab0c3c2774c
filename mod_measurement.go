package tape

// MeasurementModule wires an Engine into the frame loop.
//
// Each tick: the foreground mailbox is drained first, then queued actions and
// drags run, then the reticle is updated, and finally the live preview and the
// restart cooldown are refreshed.
type MeasurementModule struct {
	Engine *Engine
	// OnBack runs after the back action pauses the session.
	OnBack func()
}

func (m MeasurementModule) Install(app *App, cmd *Commands) {
	if m.Engine == nil {
		panic("MeasurementModule requires an Engine")
	}
	if _, ok := Resource[Time](app); !ok {
		installTime(cmd, m.Engine.clock)
	}

	cmd.AddResources(m.Engine, NewActions(m.OnBack))
	cmd.UseSystem(System(foregroundSystem).InStage(Prelude))
	cmd.UseSystem(System(actionSystem).InStage(PreUpdate))
	cmd.UseSystem(System(interactionSystem).InStage(PreUpdate))
	cmd.UseSystem(System(focusSystem).InStage(Update))
	cmd.UseSystem(System(livePreviewSystem).InStage(PostUpdate))
	cmd.UseSystem(System(restartCooldownSystem).InStage(PostUpdate))
	cmd.OnClose(m.Engine.Close)

	app.Logger().Infof("measurement module installed (basis reference %q)", m.Engine.cfg.BasisReference)
}
