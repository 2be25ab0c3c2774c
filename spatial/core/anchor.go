package core

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Anchor is a session-managed reference point. The session may move it as its
// world estimate improves.
type Anchor struct {
	ID        uuid.UUID
	Name      string
	Transform mgl32.Mat4
}

func NewAnchor(name string, transform mgl32.Mat4) Anchor {
	return Anchor{
		ID:        uuid.New(),
		Name:      name,
		Transform: transform,
	}
}

func (a Anchor) Position() mgl32.Vec3 {
	return a.Transform.Col(3).Vec3()
}
