package tape

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/tape/spatial/core"
	"github.com/gekko3d/tape/spatial/sim"
)

type countingHaptics struct {
	mu    sync.Mutex
	count int
}

func (h *countingHaptics) ImpactOccurred() {
	h.mu.Lock()
	h.count++
	h.mu.Unlock()
}

func (h *countingHaptics) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

type recordingMessenger struct {
	mu       sync.Mutex
	messages []string
	errors   []string
}

func (m *recordingMessenger) ShowMessage(text string) {
	m.mu.Lock()
	m.messages = append(m.messages, text)
	m.mu.Unlock()
}

func (m *recordingMessenger) ShowError(title, message string) {
	m.mu.Lock()
	m.errors = append(m.errors, title+"\n"+message)
	m.mu.Unlock()
}

func (m *recordingMessenger) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}

func (m *recordingMessenger) Errors() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.errors...)
}

var rigStart = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

// rig is an engine running against the simulator with a floor at y=0.
type rig struct {
	t        *testing.T
	session  *sim.Session
	scene    *sim.Scene
	floor    sim.Plane
	clock    *ManualClock
	haptics  *countingHaptics
	messages *recordingMessenger
	engine   *Engine
}

func newRig(t *testing.T, tweak ...func(*Config)) *rig {
	t.Helper()

	cfg := DefaultConfig()
	for _, fn := range tweak {
		fn(&cfg)
	}

	session := sim.NewSession()
	floor := sim.HorizontalPlane(0)
	scene := sim.NewScene(session)

	permission := NewCameraPermission(StaticAuthority{Status: AuthorizationAuthorized})
	_, err := permission.Configure(context.Background())
	require.NoError(t, err)

	r := &rig{
		t:        t,
		session:  session,
		scene:    scene,
		floor:    floor,
		clock:    NewManualClock(rigStart),
		haptics:  &countingHaptics{},
		messages: &recordingMessenger{},
	}
	r.engine, err = NewEngine(EngineOptions{
		Config:     cfg,
		Session:    session,
		Scene:      scene,
		Permission: permission,
		Haptics:    r.haptics,
		Messenger:  r.messages,
		Clock:      r.clock,
	})
	require.NoError(t, err)
	t.Cleanup(r.engine.Close)

	session.SetDelegate(r.engine)
	r.engine.ResetTracking()
	session.AddPlane(floor)
	r.aimAt(mgl32.Vec3{0, 0, 0})
	r.engine.Settle()
	return r
}

// aimAt points the camera at p and lets the reticle follow.
func (r *rig) aimAt(p mgl32.Vec3) {
	r.session.SetCamera(aimCamera(p))
	r.engine.UpdateFocus()
	r.engine.Settle()
}

// aimAtSky points the camera away from every surface.
func (r *rig) aimAtSky() {
	r.session.SetCamera(sim.LookAt(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 2, -1}))
	r.engine.UpdateFocus()
	r.engine.Settle()
}

// placeAt aims at p, adds a point and waits for it to settle.
func (r *rig) placeAt(name string, p mgl32.Vec3) *core.PointObject {
	r.t.Helper()
	r.aimAt(p)
	obj := r.engine.AddPoint(name)
	require.NotNil(r.t, obj)
	r.engine.Settle()
	return obj
}

func (r *rig) stripes() int {
	n := 0
	for _, node := range r.scene.Children(core.KindSegment) {
		if seg := node.(*core.Segment); seg.Style == core.LineStripes {
			n++
		}
	}
	return n
}

// holdUpdates parks the update queue until the returned func is called.
func (r *rig) holdUpdates() func() {
	gate := make(chan struct{})
	r.engine.updates.Async(func() { <-gate })
	var once sync.Once
	release := func() { once.Do(func() { close(gate) }) }
	r.t.Cleanup(release)
	return release
}
