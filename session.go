package tape

import (
	"github.com/gekko3d/tape/spatial/core"
)

// TrackingSession is the world-tracking host.
type TrackingSession interface {
	CurrentCamera() core.Camera
	// Raycast returns hits nearest first.
	Raycast(query core.RaycastQuery) []core.RaycastResult
	// TrackedRaycast keeps delivering the current first hit for query until the
	// subscription is stopped. update may be called on any goroutine.
	TrackedRaycast(query core.RaycastQuery, update func(core.RaycastResult)) core.Subscription
	Run(config core.SessionConfig, options core.RunOptions)
	Pause()
	AddAnchor(anchor core.Anchor)
	RemoveAnchor(anchor core.Anchor)
}

// SceneView is the rendered scene graph.
type SceneView interface {
	Center() core.ScreenPoint
	RaycastQuery(point core.ScreenPoint, alignment core.Alignment) (core.RaycastQuery, bool)
	HitTest(point core.ScreenPoint, opts core.HitTestOptions) []core.Node
	IsInsideViewFrustum(node core.Node) bool
	AddChild(node core.Node)
	AttachToCamera(node core.Node)
	RemoveFromParent(node core.Node)
}

// Dispatcher runs work on some other execution context.
type Dispatcher interface {
	Async(fn func()) bool
}
