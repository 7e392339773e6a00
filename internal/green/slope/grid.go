package slope

import (
	"math"

	"github.com/fairway-data/greenread/internal/green"
)

const (
	// denseCellSize is the resolution of the O(1) lookup grid.
	denseCellSize = 0.05

	// splatRadius is how far each sample contributes into nearby cells.
	splatRadius = 0.15

	// minSplatDistance floors the inverse-squared distance weight.
	minSplatDistance = 0.01
)

// denseGrid is a regular cell-centred grid of pre-interpolated gradients.
// A cell is valid only if at least one sample splatted into it.
type denseGrid struct {
	minX, minY float64
	cols, rows int
	cells      []green.Vec2
	valid      []bool
}

func newDenseGrid(bounds green.Bounds) *denseGrid {
	cols := int(math.Ceil((bounds.Max.X-bounds.Min.X)/denseCellSize)) + 1
	rows := int(math.Ceil((bounds.Max.Y-bounds.Min.Y)/denseCellSize)) + 1
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return &denseGrid{
		minX:  bounds.Min.X,
		minY:  bounds.Min.Y,
		cols:  cols,
		rows:  rows,
		cells: make([]green.Vec2, cols*rows),
		valid: make([]bool, cols*rows),
	}
}

// splatDenseGrid accumulates every sample's gradient into the cells within
// splatRadius using inverse-squared-distance weights, then normalises.
func splatDenseGrid(bounds green.Bounds, positions []green.Vec3, gradients []green.Vec2) *denseGrid {
	g := newDenseGrid(bounds)
	weights := make([]float64, len(g.cells))
	reach := int(math.Ceil(splatRadius / denseCellSize))

	for si, pos := range positions {
		p := pos.Horizontal()
		ci := int(math.Floor((p.X - g.minX) / denseCellSize))
		cj := int(math.Floor((p.Y - g.minY) / denseCellSize))
		for dj := -reach; dj <= reach; dj++ {
			for di := -reach; di <= reach; di++ {
				i, j := ci+di, cj+dj
				if i < 0 || i >= g.cols || j < 0 || j >= g.rows {
					continue
				}
				center := g.cellCenter(i, j)
				d := center.Distance(p)
				if d > splatRadius {
					continue
				}
				if d < minSplatDistance {
					d = minSplatDistance
				}
				w := 1 / (d * d)
				idx := j*g.cols + i
				weights[idx] += w
				g.cells[idx] = g.cells[idx].Add(gradients[si].Scale(w))
			}
		}
	}

	for idx, w := range weights {
		if w > 0 {
			g.cells[idx] = g.cells[idx].Scale(1 / w)
			g.valid[idx] = true
		}
	}
	return g
}

func (g *denseGrid) cellCenter(i, j int) green.Vec2 {
	return green.Vec2{
		X: g.minX + (float64(i)+0.5)*denseCellSize,
		Y: g.minY + (float64(j)+0.5)*denseCellSize,
	}
}

// bilinear interpolates across the four cells surrounding p. All four
// must be valid, otherwise the lookup is a miss and the caller falls back
// to the spatial hash.
func (g *denseGrid) bilinear(p green.Vec2) (green.Vec2, bool) {
	fx := (p.X-g.minX)/denseCellSize - 0.5
	fy := (p.Y-g.minY)/denseCellSize - 0.5
	i0 := int(math.Floor(fx))
	j0 := int(math.Floor(fy))
	if i0 < 0 || j0 < 0 || i0+1 >= g.cols || j0+1 >= g.rows {
		return green.Vec2{}, false
	}
	idx00 := j0*g.cols + i0
	idx10 := idx00 + 1
	idx01 := idx00 + g.cols
	idx11 := idx01 + 1
	if !g.valid[idx00] || !g.valid[idx10] || !g.valid[idx01] || !g.valid[idx11] {
		return green.Vec2{}, false
	}
	tx := fx - float64(i0)
	ty := fy - float64(j0)

	bottom := g.cells[idx00].Scale(1 - tx).Add(g.cells[idx10].Scale(tx))
	top := g.cells[idx01].Scale(1 - tx).Add(g.cells[idx11].Scale(tx))
	return bottom.Scale(1 - ty).Add(top.Scale(ty)), true
}
