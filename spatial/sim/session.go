// Package sim provides an in-memory tracking session and scene graph. They
// implement the collaborator contracts the measurement engine consumes and are
// used by tests and the command-line demo.
package sim

import (
	"math"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/gekko3d/tape/spatial/core"
	"github.com/gekko3d/tape/spatial/geom"
)

// Plane is an estimated real-world surface.
type Plane struct {
	ID        uuid.UUID
	Center    mgl32.Vec3
	Normal    mgl32.Vec3
	Alignment core.Alignment
	// HalfExtent bounds the plane to a disc around Center. Zero is unbounded.
	HalfExtent float32
}

func HorizontalPlane(height float32) Plane {
	return Plane{
		ID:        uuid.New(),
		Center:    mgl32.Vec3{0, height, 0},
		Normal:    mgl32.Vec3{0, 1, 0},
		Alignment: core.AlignmentHorizontal,
	}
}

func VerticalPlane(center, normal mgl32.Vec3) Plane {
	return Plane{
		ID:        uuid.New(),
		Center:    center,
		Normal:    normal.Normalize(),
		Alignment: core.AlignmentVertical,
	}
}

// Delegate receives session events. Calls are made without any session lock held.
type Delegate interface {
	DidAddPlaneAnchor(alignment core.Alignment)
	DidUpdateAnchor(anchor core.Anchor)
}

// Session simulates world tracking with a fixed set of planes.
type Session struct {
	mu       sync.Mutex
	camera   core.Camera
	planes   []Plane
	anchors  map[uuid.UUID]core.Anchor
	tracked  map[*trackedRaycast]struct{}
	delegate Delegate
	running  bool

	lastConfig  core.SessionConfig
	lastOptions core.RunOptions
	runs        int

	anchorAdds     int
	anchorRemovals int
}

func NewSession() *Session {
	return &Session{
		camera: core.Camera{
			Transform:     LookAt(mgl32.Vec3{0, 1.5, 1}, mgl32.Vec3{0, 0, 0}),
			TrackingState: core.TrackingNormal,
		},
		anchors: make(map[uuid.UUID]core.Anchor),
		tracked: make(map[*trackedRaycast]struct{}),
	}
}

// LookAt returns the camera-to-world transform of a camera at eye looking at target.
func LookAt(eye, target mgl32.Vec3) mgl32.Mat4 {
	up := mgl32.Vec3{0, 1, 0}
	if dir := target.Sub(eye); geom.Length(dir.Cross(up)) < 1e-4 {
		up = mgl32.Vec3{0, 0, -1}
	}
	return mgl32.LookAtV(eye, target, up).Inv()
}

func (s *Session) SetDelegate(d Delegate) {
	s.mu.Lock()
	s.delegate = d
	s.mu.Unlock()
}

func (s *Session) CurrentCamera() core.Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera
}

func (s *Session) SetCamera(transform mgl32.Mat4) {
	s.mu.Lock()
	s.camera.Transform = transform
	s.mu.Unlock()
}

func (s *Session) SetTrackingState(state core.TrackingState) {
	s.mu.Lock()
	s.camera.TrackingState = state
	s.mu.Unlock()
}

// AddPlane registers a detected surface and tells the delegate about it.
func (s *Session) AddPlane(p Plane) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.mu.Lock()
	s.planes = append(s.planes, p)
	d := s.delegate
	s.mu.Unlock()

	if d != nil {
		d.DidAddPlaneAnchor(p.Alignment)
	}
}

// MovePlane refines a plane's estimate and re-delivers every tracked raycast.
func (s *Session) MovePlane(id uuid.UUID, center mgl32.Vec3) bool {
	s.mu.Lock()
	found := false
	for i := range s.planes {
		if s.planes[i].ID == id {
			s.planes[i].Center = center
			found = true
			break
		}
	}
	s.mu.Unlock()

	if found {
		s.Refresh()
	}
	return found
}

// Refresh re-evaluates every active tracked raycast and delivers the current
// first hit to its callback.
func (s *Session) Refresh() {
	s.mu.Lock()
	subs := make([]*trackedRaycast, 0, len(s.tracked))
	for sub := range s.tracked {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	sort.Slice(subs, func(i, j int) bool { return subs[i].seq < subs[j].seq })
	for _, sub := range subs {
		sub.deliver()
	}
}

func (s *Session) Raycast(query core.RaycastQuery) []core.RaycastResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raycastLocked(query)
}

func (s *Session) raycastLocked(query core.RaycastQuery) []core.RaycastResult {
	if !s.running || s.camera.TrackingState == core.TrackingNotAvailable {
		return nil
	}
	dir, err := geom.Normalize(query.Direction)
	if err != nil {
		return nil
	}

	var results []core.RaycastResult
	for _, p := range s.planes {
		if query.Alignment != core.AlignmentAny && query.Alignment != p.Alignment {
			continue
		}
		denom := dir.Dot(p.Normal)
		if float32(math.Abs(float64(denom))) < 1e-6 {
			continue
		}
		t := p.Center.Sub(query.Origin).Dot(p.Normal) / denom
		if t < 0 {
			continue
		}
		hit := query.Origin.Add(dir.Mul(t))
		if p.HalfExtent > 0 && geom.Distance(hit, p.Center) > p.HalfExtent {
			continue
		}
		rot := mgl32.QuatBetweenVectors(mgl32.Vec3{0, 1, 0}, p.Normal)
		results = append(results, core.RaycastResult{
			WorldTransform: geom.Compose(hit, rot),
			Alignment:      p.Alignment,
			Distance:       t,
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	return results
}

type trackedRaycast struct {
	session *Session
	seq     uint64
	query   core.RaycastQuery
	update  func(core.RaycastResult)

	mu      sync.Mutex
	stopped bool
}

var trackedSeq struct {
	sync.Mutex
	next uint64
}

// TrackedRaycast starts a subscription. The first result, when there is one, is
// delivered before TrackedRaycast returns; later ones follow every Refresh.
func (s *Session) TrackedRaycast(query core.RaycastQuery, update func(core.RaycastResult)) core.Subscription {
	trackedSeq.Lock()
	trackedSeq.next++
	seq := trackedSeq.next
	trackedSeq.Unlock()

	sub := &trackedRaycast{session: s, seq: seq, query: query, update: update}
	s.mu.Lock()
	s.tracked[sub] = struct{}{}
	s.mu.Unlock()

	sub.deliver()
	return sub
}

func (t *trackedRaycast) deliver() {
	t.session.mu.Lock()
	results := t.session.raycastLocked(t.query)
	t.session.mu.Unlock()
	if len(results) == 0 {
		return
	}

	// Holding t.mu orders Stop after any in-flight callback.
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.update(results[0])
}

func (t *trackedRaycast) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()

	t.session.mu.Lock()
	delete(t.session.tracked, t)
	t.session.mu.Unlock()
}

// ActiveRaycasts is the number of tracked raycasts not yet stopped.
func (s *Session) ActiveRaycasts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tracked)
}

func (s *Session) Run(config core.SessionConfig, options core.RunOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
	s.runs++
	s.lastConfig = config
	s.lastOptions = options
	if options.RemoveExistingAnchors {
		s.anchors = make(map[uuid.UUID]core.Anchor)
	}
}

func (s *Session) Pause() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

func (s *Session) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// LastRun reports the configuration and options of the most recent Run and how
// many times Run has been called.
func (s *Session) LastRun() (core.SessionConfig, core.RunOptions, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastConfig, s.lastOptions, s.runs
}

func (s *Session) AddAnchor(anchor core.Anchor) {
	s.mu.Lock()
	s.anchors[anchor.ID] = anchor
	s.anchorAdds++
	s.mu.Unlock()
}

func (s *Session) RemoveAnchor(anchor core.Anchor) {
	s.mu.Lock()
	delete(s.anchors, anchor.ID)
	s.anchorRemovals++
	s.mu.Unlock()
}

func (s *Session) Anchors() []core.Anchor {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Anchor, 0, len(s.anchors))
	for _, a := range s.anchors {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AnchorCalls returns how many anchors were added and removed over the
// session's lifetime.
func (s *Session) AnchorCalls() (adds, removals int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.anchorAdds, s.anchorRemovals
}

// DriftAnchors shifts every anchor by offset, as a session does when it corrects
// its world estimate, and reports each move to the delegate.
func (s *Session) DriftAnchors(offset mgl32.Vec3) {
	s.mu.Lock()
	moved := make([]core.Anchor, 0, len(s.anchors))
	for id, a := range s.anchors {
		a.Transform = geom.WithTranslation(a.Transform, a.Position().Add(offset))
		s.anchors[id] = a
		moved = append(moved, a)
	}
	d := s.delegate
	s.mu.Unlock()

	if d == nil {
		return
	}
	sort.Slice(moved, func(i, j int) bool { return moved[i].Name < moved[j].Name })
	for _, a := range moved {
		d.DidUpdateAnchor(a)
	}
}
