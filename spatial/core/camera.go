package core

import "github.com/go-gl/mathgl/mgl32"

type TrackingState int

const (
	TrackingNotAvailable TrackingState = iota
	TrackingLimited
	TrackingNormal
)

func (s TrackingState) String() string {
	switch s {
	case TrackingNotAvailable:
		return "not available"
	case TrackingLimited:
		return "limited"
	case TrackingNormal:
		return "normal"
	}
	return "unknown"
}

// Camera is the tracked device pose for one frame.
type Camera struct {
	// Camera-to-world transform.
	Transform     mgl32.Mat4
	TrackingState TrackingState
}

func (c Camera) Position() mgl32.Vec3 {
	return c.Transform.Col(3).Vec3()
}

// PointInFront returns the world position distance units along the camera's
// viewing direction (-Z in camera space).
func (c Camera) PointInFront(distance float32) mgl32.Vec3 {
	return c.Transform.Mul4x1(mgl32.Vec4{0, 0, -distance, 1}).Vec3()
}
