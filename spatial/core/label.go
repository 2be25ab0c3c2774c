package core

import (
	"fmt"
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/gekko3d/tape/spatial/geom"
)

const (
	DefaultLabelTextSize = 25.0
	// DefaultLabelLift raises labels off the segment so they don't z-fight with it.
	DefaultLabelLift float32 = 0.01
)

var labelYellow = [4]float32{1, 1, 0, 1}

// DistanceLabel is a billboard annotation for one committed segment.
type DistanceLabel struct {
	id          uuid.UUID
	Text        string
	Centimeters float32
	Position    mgl32.Vec3
	TextSize    float64
	Color       [4]float32
	// Extent is the rendered text size in pixels at TextSize.
	Extent image.Point
}

// NewDistanceLabel annotates the distance between start and end. meters is the
// measured distance; the label shows it in centimeters.
func NewDistanceLabel(start, end mgl32.Vec3, meters float32, lift float32, textSize float64) *DistanceLabel {
	cm := meters * 100
	text := FormatCentimeters(cm)
	return &DistanceLabel{
		id:          uuid.New(),
		Text:        text,
		Centimeters: cm,
		Position:    LabelPosition(start, end, lift),
		TextSize:    textSize,
		Color:       labelYellow,
		Extent:      MeasureLabel(text, textSize),
	}
}

// FormatCentimeters renders a centimeter value with two decimals and a unit.
func FormatCentimeters(cm float32) string {
	return fmt.Sprintf("%.2f cm", cm)
}

// LabelPosition is the midpoint of a and b lifted along +Y.
func LabelPosition(a, b mgl32.Vec3, lift float32) mgl32.Vec3 {
	return geom.Midpoint(a, b).Add(mgl32.Vec3{0, lift, 0})
}

// MeasureLabel returns the pixel size of text drawn at textSize using the
// built-in bitmap face scaled from its native 13px height.
func MeasureLabel(text string, textSize float64) image.Point {
	face := basicfont.Face7x13
	advance := font.MeasureString(face, text).Ceil()
	height := face.Metrics().Height.Ceil()
	scale := textSize / float64(height)
	return image.Point{
		X: int(math.Ceil(float64(advance) * scale)),
		Y: int(math.Ceil(textSize)),
	}
}

func (l *DistanceLabel) NodeID() uuid.UUID         { return l.id }
func (l *DistanceLabel) Kind() NodeKind            { return KindLabel }
func (l *DistanceLabel) WorldPosition() mgl32.Vec3 { return l.Position }
func (l *DistanceLabel) IsHidden() bool            { return false }
