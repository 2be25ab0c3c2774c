package geom

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceSymmetry(t *testing.T) {
	pairs := [][2]mgl32.Vec3{
		{{0, 0, 0}, {0, 1, 0}},
		{{1, 2, 3}, {-4, 5, 0.5}},
		{{-0.3, 0, 1.2}, {0.7, 0, -2}},
	}
	for _, p := range pairs {
		assert.Equal(t, Distance(p[0], p[1]), Distance(p[1], p[0]))
		assert.Equal(t, float32(0), Distance(p[0], p[0]))
		assert.InDelta(t, Distance(p[0], p[1]), PlanarDistance(p[0], p[1]), 1e-6)
	}
	assert.InDelta(t, 5.0, Distance(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{3, 0, 4}), 1e-6)
}

func TestPlanarDistanceIncludesHeight(t *testing.T) {
	// Not a ground-plane projection: the vertical component counts.
	assert.InDelta(t, 1.0, PlanarDistance(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0}), 1e-6)
}

func TestNormalize(t *testing.T) {
	n, err := Normalize(mgl32.Vec3{0, 3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, n.Len(), 1e-6)
	assert.InDelta(t, 0.6, n.Y(), 1e-6)

	_, err = Normalize(mgl32.Vec3{})
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestCrossAndDot(t *testing.T) {
	x := mgl32.Vec3{1, 0, 0}
	y := mgl32.Vec3{0, 1, 0}
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, Cross(x, y))
	assert.Equal(t, float32(0), Dot(x, y))
	assert.Equal(t, float32(1), Length(x))
}

func TestBasisFromDirection(t *testing.T) {
	tests := []struct {
		name string
		from mgl32.Vec3
		to   mgl32.Vec3
		hint mgl32.Vec3
	}{
		{"horizontal", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, WorldUp},
		{"vertical parallel to hint", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0}, WorldUp},
		{"diagonal", mgl32.Vec3{1, 2, 3}, mgl32.Vec3{-2, 0.5, 4}, WorldUp},
		{"destination reference through origin", mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 1, 1}},
		{"destination at origin", mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := BasisFromDirection(tc.from, tc.to, tc.hint)
			require.NoError(t, err)

			x, y, z := m.Col(0).Vec3(), m.Col(1).Vec3(), m.Col(2).Vec3()
			assert.InDelta(t, 1.0, x.Len(), 1e-5)
			assert.InDelta(t, 1.0, y.Len(), 1e-5)
			assert.InDelta(t, 1.0, z.Len(), 1e-5)
			assert.InDelta(t, 0.0, x.Dot(y), 1e-5)
			assert.InDelta(t, 0.0, y.Dot(z), 1e-5)
			assert.InDelta(t, 0.0, x.Dot(z), 1e-5)

			// Right-handed.
			assert.True(t, x.Cross(y).ApproxEqualThreshold(z, 1e-5), "x cross y = %v, z = %v", x.Cross(y), z)

			dir, _ := Normalize(tc.to.Sub(tc.from))
			assert.True(t, y.ApproxEqualThreshold(dir, 1e-5))
			assert.True(t, TranslationOf(m).ApproxEqual(tc.from))
		})
	}
}

func TestBasisFromDirectionDegenerate(t *testing.T) {
	p := mgl32.Vec3{0.5, 0, -1}
	_, err := BasisFromDirection(p, p, WorldUp)
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestSegmentTransformSpansEndpoints(t *testing.T) {
	from := mgl32.Vec3{0.2, 0, -1}
	to := mgl32.Vec3{0.2, 0, -1.5}

	m, height, err := SegmentTransform(from, to, WorldUp)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, height, 1e-6)

	// A unit cylinder centred on its origin spans local y in [-h/2, h/2].
	bottom := Transform(m, mgl32.Vec3{0, -height / 2, 0})
	top := Transform(m, mgl32.Vec3{0, height / 2, 0})
	center := Transform(m, mgl32.Vec3{})

	assert.True(t, bottom.ApproxEqualThreshold(from, 1e-5), "bottom %v", bottom)
	assert.True(t, top.ApproxEqualThreshold(to, 1e-5), "top %v", top)
	assert.True(t, center.ApproxEqualThreshold(Midpoint(from, to), 1e-5))
}

func TestTranslationAndOrientation(t *testing.T) {
	q := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	m := Compose(mgl32.Vec3{1, 2, 3}, q)

	assert.Equal(t, mgl32.Vec3{1, 2, 3}, TranslationOf(m))
	assert.True(t, OrientationOf(m).ApproxEqualThreshold(q, 1e-5) ||
		OrientationOf(m).ApproxEqualThreshold(q.Scale(-1), 1e-5))

	moved := WithTranslation(m, mgl32.Vec3{4, 5, 6})
	assert.Equal(t, mgl32.Vec3{4, 5, 6}, TranslationOf(moved))
	assert.Equal(t, m.Col(0), moved.Col(0))
}

func TestSlerpBlendFactor(t *testing.T) {
	a := mgl32.QuatIdent()
	b := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})

	assert.True(t, Slerp(a, b, 0).ApproxEqualThreshold(a, 1e-5))
	assert.True(t, Slerp(a, b, 1).ApproxEqualThreshold(b, 1e-5))

	tenth := Slerp(a, b, 0.1)
	expected := mgl32.QuatRotate(mgl32.DegToRad(9), mgl32.Vec3{0, 1, 0})
	assert.True(t, tenth.ApproxEqualThreshold(expected, 1e-4), "got %v", tenth)
}
