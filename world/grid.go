package world

import (
	"math"

	"github.com/mlange-42/ark/ecs"
)

// Neighbor holds a nearby entity with precomputed spatial data.
type Neighbor struct {
	E      ecs.Entity
	DX, DY float64 // Toroidal delta from query origin
	DistSq float64 // Squared distance (avoid sqrt in hot path)
}

// Dist returns the distance to the neighbor.
func (n Neighbor) Dist() float64 {
	return math.Sqrt(n.DistSq)
}

// Locator returns an entity's current position.
type Locator func(ecs.Entity) (x, y float64)

// SpatialGrid is a uniform toroidal grid of entities bucketed at the last
// rebuild. Queries measure distance to each entity's live position through
// the locator, so entities may move between rebuilds as long as they stay
// within slack of the cell they were bucketed in. Queries skip entities the
// alive predicate rejects.
//
// Traversal order is deterministic: column offsets from -k to k, then row
// offsets from -k to k, then insertion order within a cell. When distances
// tie exactly, the first entity in that order wins QueryNearest.
type SpatialGrid struct {
	cellW, cellH  float64
	cols, rows    int
	width, height float64
	cells         [][]ecs.Entity
	locate        Locator
	alive         func(ecs.Entity) bool
	slack         float64

	colScratch, rowScratch []int
}

// NewSpatialGrid creates a grid covering the world. Cells are shrunk so that
// a whole number of them tiles each axis exactly. Slack defaults to one cell.
func NewSpatialGrid(width, height, cellSize float64, locate Locator, alive func(ecs.Entity) bool) *SpatialGrid {
	cols := int(math.Ceil(width / cellSize))
	rows := int(math.Ceil(height / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	cells := make([][]ecs.Entity, cols*rows)
	for i := range cells {
		cells[i] = make([]ecs.Entity, 0, 8)
	}

	g := &SpatialGrid{
		cellW:  width / float64(cols),
		cellH:  height / float64(rows),
		cols:   cols,
		rows:   rows,
		width:  width,
		height: height,
		cells:  cells,
		locate: locate,
		alive:  alive,
	}
	g.slack = math.Max(g.cellW, g.cellH)
	return g
}

// SetSlack sets how far an entity may drift from its bucket between
// rebuilds and still be found. Negative values are treated as zero.
func (g *SpatialGrid) SetSlack(d float64) {
	g.slack = math.Max(0, d)
}

// Slack returns the drift distance queries tolerate.
func (g *SpatialGrid) Slack() float64 { return g.slack }

// Clear removes all entities from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert buckets an entity by the given position.
func (g *SpatialGrid) Insert(e ecs.Entity, x, y float64) {
	idx := g.cellIndex(x, y)
	g.cells[idx] = append(g.cells[idx], e)
}

// QueryRadiusInto appends every accepted entity within radius (inclusive)
// of (x, y) to dst and returns it. Reuse dst across calls to avoid allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, x, y, radius float64, exclude ecs.Entity) []Neighbor {
	if radius < 0 {
		return dst
	}
	radiusSq := radius * radius
	g.visit(x, y, radius, func(e ecs.Entity) {
		if e == exclude || (g.alive != nil && !g.alive(e)) {
			return
		}
		ex, ey := g.locate(e)
		dx, dy := ToroidalDelta(x, y, ex, ey, g.width, g.height)
		distSq := dx*dx + dy*dy
		if distSq <= radiusSq {
			dst = append(dst, Neighbor{E: e, DX: dx, DY: dy, DistSq: distSq})
		}
	})
	return dst
}

// QueryNearest returns the closest accepted entity within radius.
func (g *SpatialGrid) QueryNearest(x, y, radius float64, exclude ecs.Entity) (Neighbor, bool) {
	var best Neighbor
	found := false
	if radius < 0 {
		return best, false
	}
	radiusSq := radius * radius
	g.visit(x, y, radius, func(e ecs.Entity) {
		if e == exclude || (g.alive != nil && !g.alive(e)) {
			return
		}
		ex, ey := g.locate(e)
		dx, dy := ToroidalDelta(x, y, ex, ey, g.width, g.height)
		distSq := dx*dx + dy*dy
		if distSq <= radiusSq && (!found || distSq < best.DistSq) {
			best = Neighbor{E: e, DX: dx, DY: dy, DistSq: distSq}
			found = true
		}
	})
	return best, found
}

// visit calls fn for every entity bucketed in a cell that may hold a match
// within radius after slack drift, visiting each cell at most once even when
// the window spans the world.
func (g *SpatialGrid) visit(x, y, radius float64, fn func(ecs.Entity)) {
	reach := radius + g.slack
	centerCol, centerRow := g.cellCoords(x, y)
	g.colScratch = axisCells(g.colScratch[:0], centerCol, int(reach/g.cellW)+1, g.cols)
	g.rowScratch = axisCells(g.rowScratch[:0], centerRow, int(reach/g.cellH)+1, g.rows)

	for _, col := range g.colScratch {
		for _, row := range g.rowScratch {
			for _, e := range g.cells[row*g.cols+col] {
				fn(e)
			}
		}
	}
}

// axisCells lists the wrapped cell indices center-k..center+k, or every
// index once when that window covers the whole axis.
func axisCells(dst []int, center, k, n int) []int {
	if 2*k+1 >= n {
		for i := 0; i < n; i++ {
			dst = append(dst, i)
		}
		return dst
	}
	for d := -k; d <= k; d++ {
		dst = append(dst, ((center+d)%n+n)%n)
	}
	return dst
}

func (g *SpatialGrid) cellCoords(x, y float64) (int, int) {
	col := int(x / g.cellW)
	row := int(y / g.cellH)

	// Clamp to valid range
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}

// cellIndex returns the flat index for a world position.
func (g *SpatialGrid) cellIndex(x, y float64) int {
	col, row := g.cellCoords(x, y)
	return row*g.cols + col
}

// ToroidalDelta returns the shortest path delta from (x1,y1) to (x2,y2).
func ToroidalDelta(x1, y1, x2, y2, w, h float64) (dx, dy float64) {
	dx = x2 - x1
	dy = y2 - y1

	if dx > w/2 {
		dx -= w
	} else if dx < -w/2 {
		dx += w
	}
	if dy > h/2 {
		dy -= h
	} else if dy < -h/2 {
		dy += h
	}

	return dx, dy
}

// Wrap maps a coordinate into [0, size).
func Wrap(v, size float64) float64 {
	v = math.Mod(v, size)
	if v < 0 {
		v += size
	}
	if v >= size {
		v = 0
	}
	return v
}
