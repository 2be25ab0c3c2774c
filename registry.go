package tape

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/gekko3d/tape/spatial/core"
)

// Registry owns every placed point, committed segment and distance label, in
// insertion order. Collections may be mutated from any goroutine.
type Registry struct {
	scene   SceneView
	updates Dispatcher
	log     Logger

	mu       sync.Mutex
	points   []*core.PointObject
	segments []*core.Segment
	labels   []*core.DistanceLabel
	nextSeq  uint64

	loading atomic.Bool
}

func NewRegistry(scene SceneView, updates Dispatcher, log Logger) *Registry {
	if log == nil {
		log = NewNopLogger()
	}
	return &Registry{
		scene:   scene,
		updates: updates,
		log:     log,
	}
}

// Load appends obj and hands it to loaded on the update queue. IsLoading
// reports true from the call until just before loaded runs.
func (r *Registry) Load(obj *core.PointObject, loaded func(*core.PointObject)) {
	r.loading.Store(true)

	r.mu.Lock()
	r.nextSeq++
	obj.SetSeq(r.nextSeq)
	r.points = append(r.points, obj)
	r.mu.Unlock()

	ok := r.updates.Async(func() {
		r.loading.Store(false)
		loaded(obj)
	})
	if !ok {
		r.loading.Store(false)
		r.log.Warnf("update queue closed, %s will not be placed", obj.Name())
	}
}

func (r *Registry) IsLoading() bool {
	return r.loading.Load()
}

func (r *Registry) AddSegment(seg *core.Segment) {
	r.mu.Lock()
	r.segments = append(r.segments, seg)
	r.mu.Unlock()
}

func (r *Registry) AddLabel(label *core.DistanceLabel) {
	r.mu.Lock()
	r.labels = append(r.labels, label)
	r.mu.Unlock()
}

func (r *Registry) Points() []*core.PointObject {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.points)
}

func (r *Registry) Segments() []*core.Segment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.segments)
}

func (r *Registry) Labels() []*core.DistanceLabel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.labels)
}

// Len returns the size of the collection holding kind.
func (r *Registry) Len(kind core.NodeKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch kind {
	case core.KindPoint:
		return len(r.points)
	case core.KindSegment:
		return len(r.segments)
	case core.KindLabel:
		return len(r.labels)
	}
	return 0
}

// CommittedPoints lists points that have received a transform, in placement order.
func (r *Registry) CommittedPoints() []*core.PointObject {
	var out []*core.PointObject
	for _, p := range r.Points() {
		if p.IsCommitted() {
			out = append(out, p)
		}
	}
	return out
}

// LastTwoCommitted returns the second most recent and the most recent
// committed points.
func (r *Registry) LastTwoCommitted() (prev, last *core.PointObject, ok bool) {
	pts := r.CommittedPoints()
	if len(pts) < 2 {
		return nil, nil, false
	}
	return pts[len(pts)-2], pts[len(pts)-1], true
}

// IndexOfPoint returns obj's index or -1.
func (r *Registry) IndexOfPoint(obj *core.PointObject) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Index(r.points, obj)
}

// FindByAnchor returns the point bound to the anchor with the given id.
func (r *Registry) FindByAnchor(anchor core.Anchor) (*core.PointObject, bool) {
	for _, p := range r.Points() {
		if a, ok := p.Anchor(); ok && a.ID == anchor.ID {
			return p, true
		}
	}
	return nil, false
}

// RemovePoint stops the point's tracked raycast, detaches it and drops it.
// Out-of-range indices are ignored.
func (r *Registry) RemovePoint(index int) {
	r.mu.Lock()
	if index < 0 || index >= len(r.points) {
		r.mu.Unlock()
		return
	}
	obj := r.points[index]
	r.points = slices.Delete(r.points, index, index+1)
	r.mu.Unlock()

	obj.StopTrackedRaycast()
	r.scene.RemoveFromParent(obj)
}

func (r *Registry) RemoveSegment(index int) {
	r.mu.Lock()
	if index < 0 || index >= len(r.segments) {
		r.mu.Unlock()
		return
	}
	seg := r.segments[index]
	r.segments = slices.Delete(r.segments, index, index+1)
	r.mu.Unlock()

	r.scene.RemoveFromParent(seg)
}

func (r *Registry) RemoveLabel(index int) {
	r.mu.Lock()
	if index < 0 || index >= len(r.labels) {
		r.mu.Unlock()
		return
	}
	label := r.labels[index]
	r.labels = slices.Delete(r.labels, index, index+1)
	r.mu.Unlock()

	r.scene.RemoveFromParent(label)
}

// RemoveAll empties the collection holding kind, last entry first.
func (r *Registry) RemoveAll(kind core.NodeKind) {
	var remove func(int)
	switch kind {
	case core.KindPoint:
		remove = r.RemovePoint
	case core.KindSegment:
		remove = r.RemoveSegment
	case core.KindLabel:
		remove = r.RemoveLabel
	default:
		return
	}
	for i := r.Len(kind) - 1; i >= 0; i-- {
		remove(i)
	}
}

func (r *Registry) RemoveAllPoints()   { r.RemoveAll(core.KindPoint) }
func (r *Registry) RemoveAllSegments() { r.RemoveAll(core.KindSegment) }
func (r *Registry) RemoveAllLabels()   { r.RemoveAll(core.KindLabel) }
