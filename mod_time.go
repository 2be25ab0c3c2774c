package tape

import (
	"sync"
	"time"
)

// Clock is the time source of the frame loop and of engine timers.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type Time struct {
	Time  time.Time
	Dt    time.Duration
	clock Clock
}

func (t *Time) Clock() Clock {
	if t.clock == nil {
		return SystemClock{}
	}
	return t.clock
}

type TimeModule struct {
	Clock Clock
}

// Install is a no-op when a Time resource is already present, e.g. one put
// there by MeasurementModule from the engine clock.
func (mod TimeModule) Install(app *App, cmd *Commands) {
	if _, ok := Resource[Time](app); ok {
		app.Logger().Debugf("time already installed, ignoring TimeModule")
		return
	}
	clock := mod.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	installTime(cmd, clock)
}

func installTime(cmd *Commands, clock Clock) {
	cmd.AddResources(&Time{
		Time:  clock.Now(),
		Dt:    0,
		clock: clock,
	})
	cmd.UseSystem(System(timeSystem).InStage(Prelude))
}

func timeSystem(timeResource *Time) {
	now := timeResource.Clock().Now()

	timeResource.Dt = now.Sub(timeResource.Time)
	timeResource.Time = now
}
