package tape

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/tape/spatial/core"
	"github.com/gekko3d/tape/spatial/geom"
	"github.com/gekko3d/tape/spatial/queue"
	"github.com/gekko3d/tape/spatial/sim"
)

type stopCounter struct{ stops int }

func (s *stopCounter) Stop() { s.stops++ }

func newTestRegistry(t *testing.T) (*Registry, *sim.Scene, *queue.Serial) {
	t.Helper()
	updates := queue.NewSerial("test.registry")
	t.Cleanup(updates.Close)
	scene := sim.NewScene(sim.NewSession())
	return NewRegistry(scene, updates, nil), scene, updates
}

func loadPoints(t *testing.T, reg *Registry, updates *queue.Serial, names ...string) []*core.PointObject {
	t.Helper()
	var out []*core.PointObject
	for _, name := range names {
		obj := core.NewPointObject(name)
		reg.Load(obj, func(*core.PointObject) {})
		updates.Sync(nil)
		out = append(out, obj)
	}
	return out
}

func TestRegistryLoad(t *testing.T) {
	reg, _, updates := newTestRegistry(t)

	gate := make(chan struct{})
	updates.Async(func() { <-gate })

	obj := core.NewPointObject("a")
	var loadingInHandler bool
	reg.Load(obj, func(loaded *core.PointObject) {
		assert.Same(t, obj, loaded)
		loadingInHandler = reg.IsLoading()
	})
	assert.True(t, reg.IsLoading())
	assert.Equal(t, 1, reg.Len(core.KindPoint))

	close(gate)
	updates.Sync(nil)
	assert.False(t, reg.IsLoading())
	assert.False(t, loadingInHandler, "the flag clears before the handler runs")
	assert.Equal(t, uint64(1), obj.Seq())
}

func TestRegistryRemoveOutOfBoundsIsNoop(t *testing.T) {
	reg, _, updates := newTestRegistry(t)
	loadPoints(t, reg, updates, "a", "b")

	seg, err := core.NewSegment(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, geom.WorldUp, core.LineContinuous)
	require.NoError(t, err)
	reg.AddSegment(seg)
	reg.AddLabel(core.NewDistanceLabel(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, 1, 0.01, 25))

	for _, index := range []int{-1, 2, 100} {
		reg.RemovePoint(index)
		reg.RemoveSegment(index)
		reg.RemoveLabel(index)
	}
	reg.RemoveSegment(1)
	reg.RemoveLabel(1)

	assert.Equal(t, 2, reg.Len(core.KindPoint))
	assert.Equal(t, 1, reg.Len(core.KindSegment))
	assert.Equal(t, 1, reg.Len(core.KindLabel))
}

func TestRegistryRemovePreservesOrder(t *testing.T) {
	reg, scene, updates := newTestRegistry(t)
	pts := loadPoints(t, reg, updates, "a", "b", "c")
	for _, p := range pts {
		scene.AddChild(p)
	}
	sub := &stopCounter{}
	pts[1].SetTrackedRaycast(sub)

	reg.RemovePoint(1)

	assert.Equal(t, []*core.PointObject{pts[0], pts[2]}, reg.Points())
	assert.Equal(t, 1, sub.stops)
	assert.True(t, pts[1].IsRemoved())
	assert.False(t, scene.IsAttached(pts[1]))
	assert.Equal(t, 0, reg.IndexOfPoint(pts[0]))
	assert.Equal(t, 1, reg.IndexOfPoint(pts[2]))
	assert.Equal(t, -1, reg.IndexOfPoint(pts[1]))
}

func TestRegistryRemoveAll(t *testing.T) {
	reg, scene, updates := newTestRegistry(t)
	pts := loadPoints(t, reg, updates, "a", "b", "c", "d")
	subs := make([]*stopCounter, len(pts))
	for i, p := range pts {
		subs[i] = &stopCounter{}
		p.SetTrackedRaycast(subs[i])
		scene.AddChild(p)
	}
	for i := 0; i < 2; i++ {
		seg, err := core.NewSegment(mgl32.Vec3{}, mgl32.Vec3{float32(i + 1), 0, 0}, geom.WorldUp, core.LineContinuous)
		require.NoError(t, err)
		reg.AddSegment(seg)
		scene.AddChild(seg)
	}

	reg.RemoveAllPoints()
	reg.RemoveAllSegments()
	reg.RemoveAllLabels()
	reg.RemoveAll(core.KindFocus)

	assert.Empty(t, reg.Points())
	assert.Empty(t, reg.Segments())
	assert.Empty(t, reg.Labels())
	assert.Equal(t, 0, scene.Len())
	for i, s := range subs {
		assert.Equal(t, 1, s.stops, "subscription %d", i)
	}
}

func TestRegistryLastTwoCommitted(t *testing.T) {
	reg, _, updates := newTestRegistry(t)
	pts := loadPoints(t, reg, updates, "a", "b", "c", "d")

	_, _, ok := reg.LastTwoCommitted()
	assert.False(t, ok)

	pts[0].SetWorldTransform(mgl32.Ident4())
	pts[1].SetWorldTransform(mgl32.Ident4())
	pts[3].SetWorldTransform(mgl32.Ident4())

	prev, last, ok := reg.LastTwoCommitted()
	require.True(t, ok)
	assert.Same(t, pts[1], prev, "uncommitted points are skipped")
	assert.Same(t, pts[3], last)
}

func TestRegistryFindByAnchor(t *testing.T) {
	reg, _, updates := newTestRegistry(t)
	pts := loadPoints(t, reg, updates, "a", "b")
	anchor := core.NewAnchor("b", mgl32.Ident4())
	pts[1].SetAnchor(anchor)

	found, ok := reg.FindByAnchor(anchor)
	require.True(t, ok)
	assert.Same(t, pts[1], found)

	_, ok = reg.FindByAnchor(core.NewAnchor("x", mgl32.Ident4()))
	assert.False(t, ok)
}
