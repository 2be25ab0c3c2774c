package core

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/gekko3d/tape/spatial/geom"
)

type LineStyle int

const (
	// LineContinuous is a committed measurement.
	LineContinuous LineStyle = iota
	// LineStripes is the dashed live preview.
	LineStripes
)

func (s LineStyle) String() string {
	if s == LineStripes {
		return "stripes"
	}
	return "continuous"
}

const DefaultLineRadius float32 = 0.003

// Segment is a cylinder joining two points. Start and End are captured when the
// segment is shaped and are not re-read from the points afterwards.
type Segment struct {
	id     uuid.UUID
	Style  LineStyle
	Radius float32
	Color  [4]float32

	Start     mgl32.Vec3
	End       mgl32.Vec3
	Length    float32
	Transform mgl32.Mat4
	Hidden    bool
}

// NewSegment builds a segment from start to end. upHint orients the cylinder's
// frame around its axis; see geom.BasisFromDirection.
func NewSegment(start, end, upHint mgl32.Vec3, style LineStyle) (*Segment, error) {
	s := &Segment{
		id:     uuid.New(),
		Style:  style,
		Radius: DefaultLineRadius,
		Color:  [4]float32{1, 1, 1, 1},
	}
	if err := s.Reshape(start, end, upHint); err != nil {
		return nil, err
	}
	return s, nil
}

// Reshape recomputes the segment in place. On error the segment keeps its
// previous geometry.
func (s *Segment) Reshape(start, end, upHint mgl32.Vec3) error {
	m, length, err := geom.SegmentTransform(start, end, upHint)
	if err != nil {
		return err
	}
	s.Start = start
	s.End = end
	s.Length = length
	s.Transform = m
	return nil
}

func (s *Segment) NodeID() uuid.UUID         { return s.id }
func (s *Segment) Kind() NodeKind            { return KindSegment }
func (s *Segment) WorldPosition() mgl32.Vec3 { return geom.Midpoint(s.Start, s.End) }
func (s *Segment) IsHidden() bool            { return s.Hidden }

// Bounds is the axis-aligned box around the segment's endpoints.
func (s *Segment) Bounds() [2]mgl32.Vec3 {
	r := s.Radius
	return [2]mgl32.Vec3{
		{min(s.Start.X(), s.End.X()) - r, min(s.Start.Y(), s.End.Y()) - r, min(s.Start.Z(), s.End.Z()) - r},
		{max(s.Start.X(), s.End.X()) + r, max(s.Start.Y(), s.End.Y()) + r, max(s.Start.Z(), s.End.Z()) + r},
	}
}
