package physics

import "math"

// SpatialGrid is a uniform grid over the arena floor for broad-phase contact
// detection. The grid spans [-extent, extent] on X and Z; positions outside
// are clamped into the border cells, so nothing is ever lost, only binned
// coarsely.
//
// Cell size must be >= the maximum contact distance between any two
// entities so that all potential contacts are found within the 3x3
// neighborhood.
type SpatialGrid struct {
	extent      float64
	invCellSize float64 // 1 / cellSize (precomputed to avoid division)
	cols        int
	cells       []gridCell
}

// gridCell stores the indices of entities that fall within a grid cell.
// The slice is reused between frames (reset to [:0]) to avoid allocations.
type gridCell struct {
	items []int
}

// NewSpatialGrid creates a square grid covering [-extent, extent] on X and Z.
func NewSpatialGrid(extent, cellSize float64) *SpatialGrid {
	cols := int(math.Ceil(2 * extent / cellSize))
	if cols < 1 {
		cols = 1
	}
	return &SpatialGrid{
		extent:      extent,
		invCellSize: 1.0 / cellSize,
		cols:        cols,
		cells:       make([]gridCell, cols*cols),
	}
}

// Clear removes all items from the grid without deallocating cell memory.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i].items = g.cells[i].items[:0]
	}
}

// Insert adds an item (identified by index) at the given position.
func (g *SpatialGrid) Insert(p Vec3, index int) {
	col, row := g.posToCell(p)
	idx := row*g.cols + col
	g.cells[idx].items = append(g.cells[idx].items, index)
}

// InsertSpan adds an item to every cell touched by the floor rectangle
// spanned by from and to. Moving items are inserted along their whole path.
func (g *SpatialGrid) InsertSpan(from, to Vec3, index int) {
	c0, r0, c1, r1 := g.spanCells(from, to)
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			idx := r*g.cols + c
			g.cells[idx].items = append(g.cells[idx].items, index)
		}
	}
}

// QueryAround calls fn for each item index in the 3x3 cell neighborhood
// around the given position. If fn returns true, iteration stops early.
func (g *SpatialGrid) QueryAround(p Vec3, fn func(index int) bool) {
	g.QuerySpan(p, p, fn)
}

// QuerySpan calls fn for each item index in the cells touched by the floor
// rectangle spanned by from and to, widened by one cell on every side. An
// item stored in several cells is reported once per cell. If fn returns
// true, iteration stops early.
func (g *SpatialGrid) QuerySpan(from, to Vec3, fn func(index int) bool) {
	c0, r0, c1, r1 := g.spanCells(from, to)

	for r := max(r0-1, 0); r <= min(r1+1, g.cols-1); r++ {
		for c := max(c0-1, 0); c <= min(c1+1, g.cols-1); c++ {
			for _, itemIdx := range g.cells[r*g.cols+c].items {
				if fn(itemIdx) {
					return
				}
			}
		}
	}
}

// spanCells returns the clamped cell bounds of the rectangle from..to.
func (g *SpatialGrid) spanCells(from, to Vec3) (c0, r0, c1, r1 int) {
	c0, r0 = g.posToCell(from)
	c1, r1 = g.posToCell(to)
	if c0 > c1 {
		c0, c1 = c1, c0
	}
	if r0 > r1 {
		r0, r1 = r1, r0
	}
	return c0, r0, c1, r1
}

// posToCell converts a floor position to grid cell coordinates, clamped to
// the grid bounds.
func (g *SpatialGrid) posToCell(p Vec3) (col, row int) {
	col = clampCell(int(math.Floor((p.X+g.extent)*g.invCellSize)), g.cols)
	row = clampCell(int(math.Floor((p.Z+g.extent)*g.invCellSize)), g.cols)
	return col, row
}

func clampCell(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}
