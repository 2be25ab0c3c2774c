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

const (
	DefaultViewWidth  = 390
	DefaultViewHeight = 844

	fovY  = 60.0
	zNear = 0.01
	zFar  = 100.0

	// HitRadius is the pick radius of point nodes.
	HitRadius float32 = 0.01
)

// CameraSource supplies the pose the scene renders from.
type CameraSource interface {
	CurrentCamera() core.Camera
}

type parent int

const (
	parentWorld parent = iota
	parentCamera
)

type sceneEntry struct {
	node   core.Node
	parent parent
	seq    uint64
}

// Scene is a flat scene graph: nodes hang either off the world root or off the
// camera.
type Scene struct {
	camera        CameraSource
	width, height int

	mu      sync.Mutex
	nodes   map[uuid.UUID]sceneEntry
	nextSeq uint64
}

func NewScene(camera CameraSource) *Scene {
	return &Scene{
		camera: camera,
		width:  DefaultViewWidth,
		height: DefaultViewHeight,
		nodes:  make(map[uuid.UUID]sceneEntry),
	}
}

func (s *Scene) Size() (int, int) { return s.width, s.height }

func (s *Scene) Center() core.ScreenPoint {
	return core.ScreenPoint{X: float32(s.width) / 2, Y: float32(s.height) / 2}
}

func (s *Scene) projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(fovY), float32(s.width)/float32(s.height), zNear, zFar)
}

func (s *Scene) AddChild(node core.Node) {
	s.attach(node, parentWorld)
}

func (s *Scene) AttachToCamera(node core.Node) {
	s.attach(node, parentCamera)
}

// attach moves node under p. Re-parenting keeps the insertion order.
func (s *Scene) attach(node core.Node, p parent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.nodes[node.NodeID()]; ok {
		e.parent = p
		s.nodes[node.NodeID()] = e
		return
	}
	s.nextSeq++
	s.nodes[node.NodeID()] = sceneEntry{node: node, parent: p, seq: s.nextSeq}
}

func (s *Scene) RemoveFromParent(node core.Node) {
	s.mu.Lock()
	delete(s.nodes, node.NodeID())
	s.mu.Unlock()
}

func (s *Scene) IsAttached(node core.Node) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.nodes[node.NodeID()]
	return ok
}

func (s *Scene) IsAttachedToCamera(node core.Node) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.nodes[node.NodeID()]
	return ok && e.parent == parentCamera
}

// Children lists world nodes of the given kind in insertion order.
func (s *Scene) Children(kind core.NodeKind) []core.Node {
	s.mu.Lock()
	entries := make([]sceneEntry, 0, len(s.nodes))
	for _, e := range s.nodes {
		if e.parent == parentWorld && e.node.Kind() == kind {
			entries = append(entries, e)
		}
	}
	s.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	out := make([]core.Node, len(entries))
	for i, e := range entries {
		out[i] = e.node
	}
	return out
}

// RaycastQuery builds a world-space ray through a screen point.
func (s *Scene) RaycastQuery(point core.ScreenPoint, alignment core.Alignment) (core.RaycastQuery, bool) {
	cam := s.camera.CurrentCamera()
	view := cam.Transform.Inv()
	proj := s.projection()

	winY := float32(s.height) - point.Y
	near, err := mgl32.UnProject(mgl32.Vec3{point.X, winY, 0}, view, proj, 0, 0, s.width, s.height)
	if err != nil {
		return core.RaycastQuery{}, false
	}
	far, err := mgl32.UnProject(mgl32.Vec3{point.X, winY, 1}, view, proj, 0, 0, s.width, s.height)
	if err != nil {
		return core.RaycastQuery{}, false
	}
	if !finite(near) || !finite(far) {
		return core.RaycastQuery{}, false
	}
	dir, err := geom.Normalize(far.Sub(near))
	if err != nil {
		return core.RaycastQuery{}, false
	}
	return core.RaycastQuery{
		Origin:    cam.Position(),
		Direction: dir,
		Alignment: alignment,
	}, true
}

// HitTest picks point nodes along the ray through a screen point, nearest first.
func (s *Scene) HitTest(point core.ScreenPoint, opts core.HitTestOptions) []core.Node {
	q, ok := s.RaycastQuery(point, core.AlignmentAny)
	if !ok {
		return nil
	}

	type hit struct {
		node core.Node
		t    float32
	}
	var hits []hit
	for _, n := range s.Children(core.KindPoint) {
		if opts.IgnoreHidden && n.IsHidden() {
			continue
		}
		toCenter := n.WorldPosition().Sub(q.Origin)
		t := toCenter.Dot(q.Direction)
		if t < 0 {
			continue
		}
		closest := q.Origin.Add(q.Direction.Mul(t))
		if geom.Distance(closest, n.WorldPosition()) <= HitRadius {
			hits = append(hits, hit{node: n, t: t})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].t < hits[j].t })

	if !opts.SearchAll && len(hits) > 1 {
		hits = hits[:1]
	}
	out := make([]core.Node, len(hits))
	for i, h := range hits {
		out[i] = h.node
	}
	return out
}

type bounded interface {
	Bounds() [2]mgl32.Vec3
}

// ProjectToScreen maps a world position to screen coordinates.
func (s *Scene) ProjectToScreen(p mgl32.Vec3) core.ScreenPoint {
	view := s.camera.CurrentCamera().Transform.Inv()
	win := mgl32.Project(p, view, s.projection(), 0, 0, s.width, s.height)
	return core.ScreenPoint{X: win.X(), Y: float32(s.height) - win.Y()}
}

func (s *Scene) IsInsideViewFrustum(node core.Node) bool {
	view := s.camera.CurrentCamera().Transform.Inv()
	planes := core.ExtractFrustum(s.projection().Mul4(view))

	var box [2]mgl32.Vec3
	if b, ok := node.(bounded); ok {
		box = b.Bounds()
	} else {
		box = core.PointBounds(node.WorldPosition(), HitRadius)
	}
	return core.AABBInFrustum(box, planes)
}

// Len is the number of attached nodes, camera children included.
func (s *Scene) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

func finite(v mgl32.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return false
		}
	}
	return true
}
