package green

import "math"

// estimatedPointsPerCell seeds the index map capacity.
const estimatedPointsPerCell = 4

// SpatialIndex buckets points by horizontal position on a regular grid for
// fast neighbourhood queries. Cell size should roughly match the query
// radius it will serve.
type SpatialIndex struct {
	CellSize float64
	Grid     map[int64][]int // cell key -> point indices
}

// NewSpatialIndex creates an index with the given cell size in metres.
func NewSpatialIndex(cellSize float64) *SpatialIndex {
	return &SpatialIndex{
		CellSize: cellSize,
		Grid:     make(map[int64][]int),
	}
}

// Build populates the index from a point set, replacing any prior content.
func (si *SpatialIndex) Build(points []Vec3) {
	si.Grid = make(map[int64][]int, len(points)/estimatedPointsPerCell+1)
	for i, p := range points {
		key := si.cellKey(p.X, p.Y)
		si.Grid[key] = append(si.Grid[key], i)
	}
}

// Insert adds a single point index at the given horizontal position.
func (si *SpatialIndex) Insert(i int, x, y float64) {
	key := si.cellKey(x, y)
	si.Grid[key] = append(si.Grid[key], i)
}

// cellKey maps a horizontal position to a unique cell identifier using
// zigzag encoding and Szudzik's pairing function, which handles negative
// cell coordinates without collisions.
func (si *SpatialIndex) cellKey(x, y float64) int64 {
	cx := int64(math.Floor(x / si.CellSize))
	cy := int64(math.Floor(y / si.CellSize))
	return pairCells(cx, cy)
}

func pairCells(cx, cy int64) int64 {
	var a, b int64
	if cx >= 0 {
		a = 2 * cx
	} else {
		a = -2*cx - 1
	}
	if cy >= 0 {
		b = 2 * cy
	} else {
		b = -2*cy - 1
	}
	if a >= b {
		return a*a + a + b
	}
	return a + b*b
}

// Neighbors returns the indices of all points whose horizontal distance to
// q is at most radius. The scan widens to as many cell rings as the radius
// requires, so radius may exceed the cell size.
func (si *SpatialIndex) Neighbors(points []Vec3, q Vec2, radius float64) []int {
	if si.CellSize <= 0 {
		return nil
	}
	r2 := radius * radius
	cx := int64(math.Floor(q.X / si.CellSize))
	cy := int64(math.Floor(q.Y / si.CellSize))
	rings := int64(math.Ceil(radius / si.CellSize))

	var out []int
	for dx := -rings; dx <= rings; dx++ {
		for dy := -rings; dy <= rings; dy++ {
			for _, idx := range si.Grid[pairCells(cx+dx, cy+dy)] {
				p := points[idx]
				ddx := p.X - q.X
				ddy := p.Y - q.Y
				if ddx*ddx+ddy*ddy <= r2 {
					out = append(out, idx)
				}
			}
		}
	}
	return out
}

// NeighborsWidening runs Neighbors with each radius in turn and returns
// the first non-empty result along with the radius that produced it.
func (si *SpatialIndex) NeighborsWidening(points []Vec3, q Vec2, radii []float64) ([]int, float64) {
	for _, r := range radii {
		if found := si.Neighbors(points, q, r); len(found) > 0 {
			return found, r
		}
	}
	return nil, 0
}
