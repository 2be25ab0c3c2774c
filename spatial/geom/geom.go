// Package geom holds the stateless vector and transform helpers used to place
// points and orient measurement segments. All functions operate on mgl32 values
// in a right-handed, column-major convention.
package geom

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrDegenerate is returned when a vector or segment has (near) zero length.
var ErrDegenerate = errors.New("geom: degenerate vector")

// epsilon below which a length is treated as zero
const epsilon = 1e-6

var (
	WorldUp      = mgl32.Vec3{0, 1, 0}
	worldRight   = mgl32.Vec3{1, 0, 0}
	worldForward = mgl32.Vec3{0, 0, 1}
)

func Length(v mgl32.Vec3) float32 {
	return v.Len()
}

// Normalize returns v scaled to unit length. Zero-length input yields ErrDegenerate
// instead of NaNs.
func Normalize(v mgl32.Vec3) (mgl32.Vec3, error) {
	l := v.Len()
	if l < epsilon {
		return mgl32.Vec3{}, ErrDegenerate
	}
	return v.Mul(1 / l), nil
}

func Dot(a, b mgl32.Vec3) float32 {
	return a.Dot(b)
}

func Cross(a, b mgl32.Vec3) mgl32.Vec3 {
	return a.Cross(b)
}

// Distance is the Euclidean distance between a and b.
func Distance(a, b mgl32.Vec3) float32 {
	return b.Sub(a).Len()
}

// PlanarDistance is the distance reported on measurement labels. It is the full
// 3D distance, not a projection onto the ground plane.
func PlanarDistance(a, b mgl32.Vec3) float32 {
	dx := b.X() - a.X()
	dy := b.Y() - a.Y()
	dz := b.Z() - a.Z()
	return mgl32.Vec3{dx, dy, dz}.Len()
}

func Midpoint(a, b mgl32.Vec3) mgl32.Vec3 {
	return a.Add(b).Mul(0.5)
}

// BasisFromDirection builds an orthonormal right-handed frame whose Y axis points
// from -> to and whose origin sits at from.
//
// X and Z come from two cross products against upHint. When the direction is
// parallel to the hint the world X and then world Z axes are tried instead, so a
// valid frame is returned for every non-zero segment.
func BasisFromDirection(from, to, upHint mgl32.Vec3) (mgl32.Mat4, error) {
	lookAt := to.Sub(from)
	y, err := Normalize(lookAt)
	if err != nil {
		return mgl32.Ident4(), err
	}

	var side mgl32.Vec3
	found := false
	for _, ref := range [...]mgl32.Vec3{upHint, worldRight, worldForward} {
		side, err = Normalize(lookAt.Cross(ref))
		if err == nil {
			found = true
			break
		}
	}
	if !found {
		return mgl32.Ident4(), ErrDegenerate
	}

	x, err := Normalize(y.Cross(side))
	if err != nil {
		return mgl32.Ident4(), err
	}
	z, err := Normalize(x.Cross(y))
	if err != nil {
		return mgl32.Ident4(), err
	}

	return mgl32.Mat4FromCols(x.Vec4(0), y.Vec4(0), z.Vec4(0), from.Vec4(1)), nil
}

// SegmentTransform positions a unit-height cylinder (centred on its origin, axis
// along local Y) so that it spans exactly from -> to. The cylinder height to use
// is Distance(from, to).
func SegmentTransform(from, to, upHint mgl32.Vec3) (mgl32.Mat4, float32, error) {
	basis, err := BasisFromDirection(from, to, upHint)
	if err != nil {
		return mgl32.Ident4(), 0, err
	}
	height := Distance(from, to)
	return basis.Mul4(mgl32.Translate3D(0, height/2, 0)), height, nil
}

// TranslationOf returns column 3 of a transform.
func TranslationOf(m mgl32.Mat4) mgl32.Vec3 {
	return m.Col(3).Vec3()
}

// WithTranslation returns m with its translation column replaced by t.
func WithTranslation(m mgl32.Mat4, t mgl32.Vec3) mgl32.Mat4 {
	m[12], m[13], m[14] = t.X(), t.Y(), t.Z()
	return m
}

// OrientationOf factors the rotation out of a rigid transform.
func OrientationOf(m mgl32.Mat4) mgl32.Quat {
	return mgl32.Mat4ToQuat(m).Normalize()
}

// Compose builds translate * rotate.
func Compose(t mgl32.Vec3, q mgl32.Quat) mgl32.Mat4 {
	return mgl32.Translate3D(t.X(), t.Y(), t.Z()).Mul4(q.Normalize().Mat4())
}

// Slerp blends two orientations. amount 0 returns a, 1 returns b.
func Slerp(a, b mgl32.Quat, amount float32) mgl32.Quat {
	return mgl32.QuatSlerp(a, b, amount).Normalize()
}

// Transform applies m to the point p.
func Transform(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}
