// Package grid is a uniform spatial hash over axis-aligned boxes.
package grid

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type cell struct {
	x, y, z int
}

// Grid buckets ids by the cells their boxes overlap. It stores ids only, so
// queries return broadphase candidates that callers refine against real
// positions.
type Grid struct {
	cellSize float32
	cells    map[cell][]uuid.UUID
	size     int
}

func New(cellSize float32) *Grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[cell][]uuid.UUID),
	}
}

func (g *Grid) CellSize() float32 { return g.cellSize }

// Len is the number of inserted ids.
func (g *Grid) Len() int { return g.size }

// Clear drops every id but keeps the bucket map for reuse.
func (g *Grid) Clear() {
	clear(g.cells)
	g.size = 0
}

// Insert adds id to every cell box overlaps. box is {min, max}.
func (g *Grid) Insert(id uuid.UUID, box [2]mgl32.Vec3) {
	g.visit(box, func(c cell) {
		g.cells[c] = append(g.cells[c], id)
	})
	g.size++
}

// QueryBox returns the ids sharing a cell with box, each once, in the order
// they were first found.
func (g *Grid) QueryBox(box [2]mgl32.Vec3) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	var out []uuid.UUID
	g.visit(box, func(c cell) {
		for _, id := range g.cells[c] {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	})
	return out
}

// QueryRadius is QueryBox over the cube enclosing the sphere.
func (g *Grid) QueryRadius(center mgl32.Vec3, radius float32) []uuid.UUID {
	r := mgl32.Vec3{radius, radius, radius}
	return g.QueryBox([2]mgl32.Vec3{center.Sub(r), center.Add(r)})
}

func (g *Grid) visit(box [2]mgl32.Vec3, fn func(cell)) {
	lo := g.cellOf(box[0])
	hi := g.cellOf(box[1])
	for x := lo.x; x <= hi.x; x++ {
		for y := lo.y; y <= hi.y; y++ {
			for z := lo.z; z <= hi.z; z++ {
				fn(cell{x, y, z})
			}
		}
	}
}

func (g *Grid) cellOf(p mgl32.Vec3) cell {
	return cell{g.index(p.X()), g.index(p.Y()), g.index(p.Z())}
}

func (g *Grid) index(v float32) int {
	return int(math.Floor(float64(v / g.cellSize)))
}
