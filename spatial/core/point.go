package core

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Phase is the placement lifecycle of a PointObject.
type Phase int

const (
	PhaseUnplaced Phase = iota
	PhasePendingRaycast
	PhaseCommitted
	PhaseRemoved
)

func (p Phase) String() string {
	switch p {
	case PhaseUnplaced:
		return "unplaced"
	case PhasePendingRaycast:
		return "pending-raycast"
	case PhaseCommitted:
		return "committed"
	case PhaseRemoved:
		return "removed"
	}
	return "unknown"
}

// PointObject is a user-placed marker.
//
// Two locks protect it. mu guards plain state and is never held while calling out.
// life orders removal against scene mutation driven by tracked raycast updates:
// Guard runs its callback under life only while the object is still live, and
// StopTrackedRaycast flips the object to removed under the same lock, so once it
// returns no queued update can touch the scene on this object's behalf.
type PointObject struct {
	id   uuid.UUID
	name string

	// AllowedAlignment is the surface orientation the point may be placed on.
	AllowedAlignment Alignment

	mu                 sync.Mutex
	seq                uint64
	transform          Transform
	query              *RaycastQuery
	initialResult      *RaycastResult
	committed          bool
	hidden             bool
	attached           bool
	anchor             *Anchor
	shouldUpdateAnchor bool

	life    sync.Mutex
	removed bool
	raycast Subscription
}

func NewPointObject(name string) *PointObject {
	return &PointObject{
		id:               uuid.New(),
		name:             name,
		AllowedAlignment: AlignmentAny,
		transform:        NewTransform(),
		hidden:           true,
	}
}

func (o *PointObject) NodeID() uuid.UUID { return o.id }
func (o *PointObject) Kind() NodeKind    { return KindPoint }
func (o *PointObject) Name() string      { return o.name }

// Seq is the insertion sequence assigned by the registry.
func (o *PointObject) Seq() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.seq
}

func (o *PointObject) SetSeq(seq uint64) {
	o.mu.Lock()
	o.seq = seq
	o.mu.Unlock()
}

// SetPlacement records the query a point was created from and the first result.
func (o *PointObject) SetPlacement(query RaycastQuery, initial RaycastResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.query = &query
	o.initialResult = &initial
}

// Placement returns the raycast query and the most recent initial result. ok is
// false when the point was created without a surface under the reticle.
func (o *PointObject) Placement() (RaycastQuery, *RaycastResult, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.query == nil {
		return RaycastQuery{}, nil, false
	}
	return *o.query, o.initialResult, true
}

// Commit applies a raycast result as the object's world transform.
func (o *PointObject) Commit(result RaycastResult) {
	o.SetWorldTransform(result.WorldTransform)
}

func (o *PointObject) SetWorldTransform(m mgl32.Mat4) {
	o.mu.Lock()
	o.transform = TransformFromMat4(m)
	o.committed = true
	o.mu.Unlock()
}

func (o *PointObject) WorldTransform() mgl32.Mat4 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.transform.ObjectToWorld()
}

func (o *PointObject) WorldPosition() mgl32.Vec3 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.transform.Position
}

func (o *PointObject) SetWorldPosition(p mgl32.Vec3) {
	o.mu.Lock()
	o.transform.Position = p
	o.mu.Unlock()
}

func (o *PointObject) WorldOrientation() mgl32.Quat {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.transform.Rotation
}

func (o *PointObject) SetWorldOrientation(q mgl32.Quat) {
	o.mu.Lock()
	o.transform.Rotation = q.Normalize()
	o.mu.Unlock()
}

func (o *PointObject) IsCommitted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.committed
}

func (o *PointObject) IsHidden() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.hidden
}

func (o *PointObject) SetHidden(hidden bool) {
	o.mu.Lock()
	o.hidden = hidden
	o.mu.Unlock()
}

// MarkAttached records that the node was added to the scene graph. It returns
// true only for the call that performed the transition.
func (o *PointObject) MarkAttached() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.attached {
		return false
	}
	o.attached = true
	return true
}

func (o *PointObject) IsAttached() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.attached
}

func (o *PointObject) Anchor() (Anchor, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.anchor == nil {
		return Anchor{}, false
	}
	return *o.anchor, true
}

func (o *PointObject) SetAnchor(a Anchor) {
	o.mu.Lock()
	o.anchor = &a
	o.mu.Unlock()
}

// RequestAnchorUpdate flags the object so the next tracked update creates or
// replaces its anchor.
func (o *PointObject) RequestAnchorUpdate() {
	o.mu.Lock()
	o.shouldUpdateAnchor = true
	o.mu.Unlock()
}

// TakeAnchorUpdate clears the anchor-pending flag and reports whether it was set.
func (o *PointObject) TakeAnchorUpdate() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	pending := o.shouldUpdateAnchor
	o.shouldUpdateAnchor = false
	return pending
}

func (o *PointObject) Phase() Phase {
	o.life.Lock()
	removed := o.removed
	o.life.Unlock()
	if removed {
		return PhaseRemoved
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	switch {
	case o.committed:
		return PhaseCommitted
	case o.query != nil:
		return PhasePendingRaycast
	}
	return PhaseUnplaced
}

// IsAnchored reports the Committed{anchored: true} sub-state.
func (o *PointObject) IsAnchored() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.anchor != nil
}

// Guard runs fn while the object is live and reports whether it ran.
func (o *PointObject) Guard(fn func()) bool {
	o.life.Lock()
	defer o.life.Unlock()
	if o.removed {
		return false
	}
	fn()
	return true
}

// SetTrackedRaycast installs the object's single tracked raycast, stopping any
// previous one. A subscription handed to an already removed object is stopped
// immediately.
func (o *PointObject) SetTrackedRaycast(sub Subscription) {
	if sub == nil {
		return
	}
	o.life.Lock()
	defer o.life.Unlock()
	if o.removed {
		sub.Stop()
		return
	}
	if o.raycast != nil && o.raycast != sub {
		o.raycast.Stop()
	}
	o.raycast = sub
}

func (o *PointObject) HasTrackedRaycast() bool {
	o.life.Lock()
	defer o.life.Unlock()
	return o.raycast != nil
}

// StopTrackedRaycast cancels the tracked raycast and marks the object removed.
func (o *PointObject) StopTrackedRaycast() {
	o.life.Lock()
	defer o.life.Unlock()
	if o.raycast != nil {
		o.raycast.Stop()
		o.raycast = nil
	}
	o.removed = true
}

func (o *PointObject) IsRemoved() bool {
	o.life.Lock()
	defer o.life.Unlock()
	return o.removed
}
