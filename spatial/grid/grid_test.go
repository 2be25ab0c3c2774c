package grid

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func box(min, max float32) [2]mgl32.Vec3 {
	return [2]mgl32.Vec3{{min, min, min}, {max, max, max}}
}

func TestInsertAndQueryBox(t *testing.T) {
	g := New(2)

	id1, id2 := uuid.New(), uuid.New()
	g.Insert(id1, box(0, 1))
	g.Insert(id2, box(3, 4))
	assert.Equal(t, 2, g.Len())

	assert.Equal(t, []uuid.UUID{id1}, g.QueryBox(box(0, 1)))
	assert.Equal(t, []uuid.UUID{id2}, g.QueryBox(box(3, 4)))

	// Spans cells 0 and 1 on every axis, so both boxes are candidates.
	assert.ElementsMatch(t, []uuid.UUID{id1, id2}, g.QueryBox(box(1, 3)))
}

func TestQueryReturnsEachIDOnce(t *testing.T) {
	g := New(0.5)
	id := uuid.New()
	g.Insert(id, box(-1, 1))

	assert.Equal(t, []uuid.UUID{id}, g.QueryBox(box(-1, 1)))
}

func TestQueryRadius(t *testing.T) {
	g := New(0.25)
	near, far := uuid.New(), uuid.New()
	g.Insert(near, [2]mgl32.Vec3{{0.1, 0, 0}, {0.1, 0, 0}})
	g.Insert(far, [2]mgl32.Vec3{{2, 0, 0}, {2, 0, 0}})

	assert.Equal(t, []uuid.UUID{near}, g.QueryRadius(mgl32.Vec3{0, 0, 0}, 0.05))
	assert.Empty(t, g.QueryRadius(mgl32.Vec3{1, 1, 1}, 0.05))
}

func TestNegativeCoordinates(t *testing.T) {
	g := New(1)
	id := uuid.New()
	g.Insert(id, [2]mgl32.Vec3{{-0.5, -0.5, -0.5}, {-0.5, -0.5, -0.5}})

	assert.Empty(t, g.QueryRadius(mgl32.Vec3{0.5, 0.5, 0.5}, 0.1), "cells floor toward negative infinity")
	assert.Equal(t, []uuid.UUID{id}, g.QueryRadius(mgl32.Vec3{-0.9, -0.1, -0.5}, 0.05))
}

func TestClear(t *testing.T) {
	g := New(1)
	g.Insert(uuid.New(), box(0, 0))
	g.Clear()
	assert.Zero(t, g.Len())
	assert.Empty(t, g.QueryBox(box(-10, 10)))
}

func TestNonPositiveCellSize(t *testing.T) {
	assert.Equal(t, float32(1), New(0).CellSize())
}
