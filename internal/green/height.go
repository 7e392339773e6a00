package green

import "math"

// HeightCache answers surface-height queries for one GreenSurface. The
// triangle and vertex indices cost O(surface size) to build, so one cache
// is built per analysis and shared across the thousands of simulation
// steps run against the same surface. A cache is bound to the surface
// identity it was built from; queries against a different surface require
// a new cache.
//
// The cache is read-only after construction and safe for concurrent
// readers.
type HeightCache struct {
	SurfaceID string

	surface   *GreenSurface
	triIndex  *SpatialIndex // triangle centroids
	vtxIndex  *SpatialIndex // vertices, for the mesh-edge fallback
	centroids []Vec3
}

const heightCacheCellSize = 0.25

// fallback radii for inverse-distance vertex interpolation at mesh edges.
var heightFallbackRadii = []float64{0.1, 0.25, 0.5, 1.0}

// NewHeightCache builds the spatial lookup structures for a surface.
func NewHeightCache(s *GreenSurface) *HeightCache {
	hc := &HeightCache{
		SurfaceID: s.ID,
		surface:   s,
		triIndex:  NewSpatialIndex(heightCacheCellSize),
		vtxIndex:  NewSpatialIndex(heightCacheCellSize),
	}
	hc.centroids = make([]Vec3, 0, s.TriangleCount())
	for t := 0; t+2 < len(s.Indices); t += 3 {
		c := s.Vertices[s.Indices[t]].
			Add(s.Vertices[s.Indices[t+1]]).
			Add(s.Vertices[s.Indices[t+2]]).
			Scale(1.0 / 3.0)
		hc.triIndex.Insert(t/3, c.X, c.Y)
		hc.centroids = append(hc.centroids, c)
	}
	hc.vtxIndex.Build(s.Vertices)
	return hc
}

// HeightAt returns the surface height under the horizontal position p.
// It first tries barycentric interpolation on a containing triangle, then
// falls back to inverse-distance-weighted vertex interpolation with a
// widening search. The second return is false only when the surface has
// no vertices near p at any fallback radius.
func (hc *HeightCache) HeightAt(p Vec2) (float64, bool) {
	s := hc.surface

	// Candidate triangles from the centroid cells around p. A triangle can
	// span more than one cell, so scan a radius comfortably above the
	// typical triangle size.
	for _, ti := range hc.triIndex.Neighbors(hc.centroids, p, heightCacheCellSize*1.5) {
		t := ti * 3
		a := s.Vertices[s.Indices[t]]
		b := s.Vertices[s.Indices[t+1]]
		c := s.Vertices[s.Indices[t+2]]
		if h, ok := barycentricHeight(p, a, b, c); ok {
			return h, true
		}
	}

	// Fallback: IDW over nearby vertices. Covers queries just past the
	// mesh edge where no triangle contains p.
	neighbors, _ := hc.vtxIndex.NeighborsWidening(s.Vertices, p, heightFallbackRadii)
	if len(neighbors) == 0 {
		return 0, false
	}
	var wsum, hsum float64
	for _, i := range neighbors {
		v := s.Vertices[i]
		d := v.Horizontal().Distance(p)
		if d < 1e-6 {
			return v.Z, true
		}
		w := 1 / d
		wsum += w
		hsum += w * v.Z
	}
	return hsum / wsum, true
}

// barycentricHeight interpolates the height of p inside triangle abc.
// Returns false when p is outside the triangle or the triangle is
// degenerate in the horizontal plane.
func barycentricHeight(p Vec2, a, b, c Vec3) (float64, bool) {
	v0 := b.Horizontal().Sub(a.Horizontal())
	v1 := c.Horizontal().Sub(a.Horizontal())
	v2 := p.Sub(a.Horizontal())

	den := v0.Cross(v1)
	if math.Abs(den) < 1e-12 {
		return 0, false
	}
	w1 := v2.Cross(v1) / den
	w2 := v0.Cross(v2) / den
	w0 := 1 - w1 - w2
	const eps = -1e-9
	if w0 < eps || w1 < eps || w2 < eps {
		return 0, false
	}
	return w0*a.Z + w1*b.Z + w2*c.Z, true
}
