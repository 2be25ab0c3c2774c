package core

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type NodeKind int

const (
	KindPoint NodeKind = iota
	KindSegment
	KindLabel
	KindFocus
)

func (k NodeKind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindSegment:
		return "segment"
	case KindLabel:
		return "label"
	case KindFocus:
		return "focus"
	}
	return "unknown"
}

// Node is anything the engine hands to the scene graph.
type Node interface {
	NodeID() uuid.UUID
	Kind() NodeKind
	WorldPosition() mgl32.Vec3
	IsHidden() bool
}
