package core

import "github.com/go-gl/mathgl/mgl32"

// Alignment restricts which estimated surfaces a raycast may hit.
type Alignment int

const (
	AlignmentAny Alignment = iota
	AlignmentHorizontal
	AlignmentVertical
)

// ScreenPoint is a position in view coordinates, origin top-left, in points.
type ScreenPoint struct {
	X, Y float32
}

type RaycastQuery struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
	Alignment Alignment
}

type RaycastResult struct {
	WorldTransform mgl32.Mat4
	Alignment      Alignment
	// Distance along the query ray.
	Distance float32
}

// Subscription is a cancelable tracked raycast. Stop must be idempotent.
type Subscription interface {
	Stop()
}

// HitTestOptions mirrors the scene graph's hit test switches.
type HitTestOptions struct {
	SearchAll      bool
	IgnoreHidden   bool
	IgnoreChildren bool
}
