// Package systems provides ECS systems for the simulation.
package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pelagialabs/pelagia/components"
)

// Neighbor holds a nearby entity with precomputed spatial data.
type Neighbor struct {
	E      ecs.Entity
	Delta  r3.Vec  // offset from query origin
	DistSq float64 // squared distance (avoid sqrt in hot path)
}

// SpatialGrid provides O(1) neighbor lookups using a cell-based grid.
// Cells partition the horizontal plane; depth is resolved by the exact
// distance test, which is cheap because the water column is shallow
// compared to the basin extent.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	width    float64
	height   float64
	cells    [][]ecs.Entity
}

// NewSpatialGrid creates a spatial grid covering the given basin area.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]ecs.Entity, cols*rows)
	for i := range cells {
		cells[i] = make([]ecs.Entity, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		width:    width,
		height:   height,
		cells:    cells,
	}
}

// Clear removes all entities from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an entity to the grid at the given position.
func (g *SpatialGrid) Insert(e ecs.Entity, pos r3.Vec) {
	idx := g.cellIndex(pos.X, pos.Y)
	g.cells[idx] = append(g.cells[idx], e)
}

// MaxQueryResults caps the number of neighbors returned by spatial
// queries, so density spikes cannot cause unbounded work.
const MaxQueryResults = 128

// QueryRadiusInto finds entities within radius of origin and appends
// them to dst, up to MaxQueryResults. Reuse dst across calls to avoid
// allocations. The basin has walls, not wrap, so cell ranges clamp at
// the edges.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, origin r3.Vec, radius float64, exclude ecs.Entity, posMap *ecs.Map1[components.Position]) []Neighbor {
	cellRadius := int(radius/g.cellSize) + 1

	centerCol := int(origin.X / g.cellSize)
	centerRow := int(origin.Y / g.cellSize)

	minCol := max(centerCol-cellRadius, 0)
	maxCol := min(centerCol+cellRadius, g.cols-1)
	minRow := max(centerRow-cellRadius, 0)
	maxRow := min(centerRow+cellRadius, g.rows-1)

	radiusSq := radius * radius

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			for _, e := range g.cells[row*g.cols+col] {
				if e == exclude {
					continue
				}
				pos := posMap.Get(e)
				if pos == nil {
					continue
				}
				delta := r3.Sub(pos.Pos, origin)
				distSq := r3.Dot(delta, delta)
				if distSq <= radiusSq {
					dst = append(dst, Neighbor{E: e, Delta: delta, DistSq: distSq})
					if len(dst) >= MaxQueryResults {
						return dst
					}
				}
			}
		}
	}

	return dst
}

// cellIndex returns the flat index for a world position, clamped to the
// grid.
func (g *SpatialGrid) cellIndex(x, y float64) int {
	col := int(x / g.cellSize)
	row := int(y / g.cellSize)

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

	return row*g.cols + col
}
