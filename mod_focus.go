package tape

import (
	"slices"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/gekko3d/tape/spatial/core"
	"github.com/gekko3d/tape/spatial/geom"
)

type FocusState int

const (
	// FocusInitializing: no usable surface, the indicator hovers in front of the camera.
	FocusInitializing FocusState = iota
	// FocusDetecting: the indicator sits on a raycast hit in world space.
	FocusDetecting
)

func (s FocusState) String() string {
	if s == FocusDetecting {
		return "detecting"
	}
	return "initializing"
}

// FocusIndicator is the placement reticle.
type FocusIndicator struct {
	id            uuid.UUID
	hoverDistance float32

	mu       sync.Mutex
	state    FocusState
	hit      core.RaycastResult
	camera   core.Camera
	position mgl32.Vec3
	hidden   bool
	snapped  uuid.UUID
}

func NewFocusIndicator(hoverDistance float32) *FocusIndicator {
	return &FocusIndicator{
		id:            uuid.New(),
		hoverDistance: hoverDistance,
		state:         FocusInitializing,
		hidden:        true,
	}
}

func (f *FocusIndicator) NodeID() uuid.UUID   { return f.id }
func (f *FocusIndicator) Kind() core.NodeKind { return core.KindFocus }

func (f *FocusIndicator) State() FocusState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Detecting returns the hit and camera pose of the Detecting state.
func (f *FocusIndicator) Detecting() (core.RaycastResult, core.Camera, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != FocusDetecting {
		return core.RaycastResult{}, core.Camera{}, false
	}
	return f.hit, f.camera, true
}

func (f *FocusIndicator) SetDetecting(hit core.RaycastResult, camera core.Camera) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = FocusDetecting
	f.hit = hit
	f.camera = camera
	f.position = geom.TranslationOf(hit.WorldTransform)
	f.snapped = uuid.Nil
}

func (f *FocusIndicator) SetInitializing(camera core.Camera) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = FocusInitializing
	f.hit = core.RaycastResult{}
	f.camera = camera
	f.position = camera.PointInFront(f.hoverDistance)
	f.snapped = uuid.Nil
}

// SnapTo moves the indicator onto obj. It reports whether the snapped target
// or position changed, which is when snap feedback is due.
func (f *FocusIndicator) SnapTo(obj *core.PointObject) bool {
	pos := obj.WorldPosition()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snapped == obj.NodeID() && f.position == pos {
		return false
	}
	f.snapped = obj.NodeID()
	f.position = pos
	return true
}

// Snapped is the id of the point the indicator last snapped to.
func (f *FocusIndicator) Snapped() (uuid.UUID, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapped, f.snapped != uuid.Nil
}

func (f *FocusIndicator) WorldPosition() mgl32.Vec3 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position
}

func (f *FocusIndicator) Unhide() {
	f.mu.Lock()
	f.hidden = false
	f.mu.Unlock()
}

func (f *FocusIndicator) Hide() {
	f.mu.Lock()
	f.hidden = true
	f.mu.Unlock()
}

func (f *FocusIndicator) IsHidden() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hidden
}

// UpdateFocus runs the per-frame reticle transition.
func (e *Engine) UpdateFocus() {
	if !e.anyPointInView() {
		e.log.Debugf("%s", MsgTryMoving)
	}
	e.focus.Unhide()
	e.reticleKnown = true

	if e.snapFocus() {
		e.reticleTarget = e.focus.WorldPosition()
		return
	}

	camera := e.session.CurrentCamera()
	if camera.TrackingState == core.TrackingNormal {
		if query, ok := e.scene.RaycastQuery(e.scene.Center(), core.AlignmentAny); ok {
			if results := e.session.Raycast(query); len(results) > 0 {
				hit := results[0]
				e.reticleTarget = geom.TranslationOf(hit.WorldTransform)
				e.updates.Async(func() {
					e.scene.AddChild(e.focus)
					e.focus.SetDetecting(hit, camera)
				})
				return
			}
		}
	}

	e.reticleTarget = camera.PointInFront(e.focus.hoverDistance)
	e.updates.Async(func() {
		e.focus.SetInitializing(camera)
		e.scene.AttachToCamera(e.focus)
	})
}

// snapFocus pulls the reticle onto a placed point under the view center that is
// within the snap radius of the reticle.
func (e *Engine) snapFocus() bool {
	focusPos := e.focus.WorldPosition()
	near := e.pointsNear(focusPos, e.cfg.SnapRadius)
	if len(near) == 0 {
		return false
	}

	hits := e.scene.HitTest(e.scene.Center(), core.HitTestOptions{SearchAll: true})
	for _, node := range hits {
		obj, ok := node.(*core.PointObject)
		if !ok || obj.IsRemoved() || !slices.Contains(near, obj.NodeID()) {
			continue
		}
		if geom.Distance(obj.WorldPosition(), focusPos) >= e.cfg.SnapRadius {
			continue
		}
		if e.focus.SnapTo(obj) {
			e.log.Debugf("focus snapped to %s", obj.Name())
			e.impact()
		}
		return true
	}
	return false
}

// pointsNear rebuilds the point index from the committed points and returns
// the candidates within radius of p.
func (e *Engine) pointsNear(p mgl32.Vec3, radius float32) []uuid.UUID {
	e.nearby.Clear()
	for _, obj := range e.registry.CommittedPoints() {
		e.nearby.Insert(obj.NodeID(), core.PointBounds(obj.WorldPosition(), 0))
	}
	return e.nearby.QueryRadius(p, radius)
}

func (e *Engine) anyPointInView() bool {
	for _, p := range e.registry.Points() {
		if e.scene.IsInsideViewFrustum(p) {
			return true
		}
	}
	return false
}

func focusSystem(e *Engine) {
	e.UpdateFocus()
}
