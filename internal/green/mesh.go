package green

import (
	"errors"
	"time"
)

// Classification of a captured triangle, when the capture subsystem
// provides one. Fragments without classification report ClassNone for
// every triangle.
type Classification int

const (
	ClassNone Classification = iota
	ClassFloor
	ClassWall
	ClassCeiling
	ClassOther
)

// MeshFragment is one raw capture chunk delivered by the scanning
// subsystem. Geometry is in the fragment's local frame; Transform maps it
// into the world frame (row-major 4x4).
type MeshFragment struct {
	Vertices        []Vec3
	Normals         []Vec3
	Indices         []uint32         // 3 per triangle
	Classifications []Classification // optional, 1 per triangle
	Transform       [16]float64
}

// TriangleCount returns the number of triangles in the fragment.
func (f *MeshFragment) TriangleCount() int { return len(f.Indices) / 3 }

// GreenSurface is the stitched, denoised capture of one putting green.
// It is immutable after construction: operations that change geometry
// (FilterToRadius) return a new surface.
type GreenSurface struct {
	ID         string    // surface identity, used to key derived caches
	Vertices   []Vec3
	Indices    []uint32
	Normals    []Vec3    // unit, 1 per vertex
	Bounds     Bounds
	Quality    float64   // [0,1]
	CapturedAt time.Time
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min, Max Vec3
}

// Extend grows the box to include p.
func (b *Bounds) Extend(p Vec3) {
	if p.X < b.Min.X {
		b.Min.X = p.X
	}
	if p.Y < b.Min.Y {
		b.Min.Y = p.Y
	}
	if p.Z < b.Min.Z {
		b.Min.Z = p.Z
	}
	if p.X > b.Max.X {
		b.Max.X = p.X
	}
	if p.Y > b.Max.Y {
		b.Max.Y = p.Y
	}
	if p.Z > b.Max.Z {
		b.Max.Z = p.Z
	}
}

// ContainsXY reports whether the horizontal projection of p lies inside
// the box expanded by margin on each side.
func (b Bounds) ContainsXY(p Vec3, margin float64) bool {
	return p.X >= b.Min.X-margin && p.X <= b.Max.X+margin &&
		p.Y >= b.Min.Y-margin && p.Y <= b.Max.Y+margin
}

// HorizontalArea is the footprint area of the box in square metres.
func (b Bounds) HorizontalArea() float64 {
	dx := b.Max.X - b.Min.X
	dy := b.Max.Y - b.Min.Y
	if dx <= 0 || dy <= 0 {
		return 0
	}
	return dx * dy
}

// VertexCount returns the number of vertices in the surface.
func (s *GreenSurface) VertexCount() int { return len(s.Vertices) }

// TriangleCount returns the number of triangles in the surface.
func (s *GreenSurface) TriangleCount() int { return len(s.Indices) / 3 }

// Validate checks the structural invariants: every index in range and one
// normal per vertex.
func (s *GreenSurface) Validate() error {
	if len(s.Normals) != len(s.Vertices) {
		return errors.New("normal count does not match vertex count")
	}
	if len(s.Indices)%3 != 0 {
		return errors.New("index count is not a multiple of 3")
	}
	n := uint32(len(s.Vertices))
	for _, idx := range s.Indices {
		if idx >= n {
			return errors.New("triangle index out of range")
		}
	}
	return nil
}

// BallPosition marks where the ball lies on the green.
type BallPosition struct {
	Position Vec3
	MarkedAt time.Time
}

// HolePosition marks the cup location.
type HolePosition struct {
	Position Vec3
	MarkedAt time.Time
}
