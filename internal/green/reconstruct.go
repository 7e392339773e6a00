package green

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// Reconstruction failure taxonomy. These are terminal: the caller must
// request more capture data, the core does not retry.
var (
	ErrNoFragments          = errors.New("no mesh fragments provided")
	ErrInsufficientVertices = errors.New("fewer than 3 usable vertices after filtering")
)

const (
	// minUpComponent accepts triangles whose averaged vertex normal is
	// within ~45 degrees of horizontal ground.
	minUpComponent = 0.7

	// mergeQuantum is the vertex dedup grid pitch. Abutting fragments
	// snap onto the same 1 mm cells and stitch without seams.
	mergeQuantum = 0.001

	// Laplacian smoothing schedule. The vertical axis uses a reduced
	// fraction so LiDAR depth jitter is flattened without erasing
	// genuine slope contours.
	smoothIterations     = 3
	smoothLambda         = 0.3
	smoothVerticalFactor = 0.5
)

// ReconstructOptions adjusts reconstruction behaviour. The zero value is
// the production configuration.
type ReconstructOptions struct {
	// KeepUnclassified keeps triangles without a floor classification as
	// long as their normal passes the up test. Captures from systems
	// without semantic classification set this implicitly.
	KeepUnclassified bool
}

// Reconstruct stitches raw mesh fragments into a single denoised
// GreenSurface. See the package documentation for the full stage list.
func Reconstruct(fragments []MeshFragment, opts ReconstructOptions) (*GreenSurface, error) {
	if len(fragments) == 0 {
		return nil, ErrNoFragments
	}

	b := newMeshBuilder()
	for fi := range fragments {
		if err := b.addFragment(&fragments[fi], opts); err != nil {
			return nil, fmt.Errorf("fragment %d: %w", fi, err)
		}
	}
	if len(b.vertices) < 3 {
		return nil, ErrInsufficientVertices
	}

	smoothLaplacian(b.vertices, b.indices, smoothIterations, smoothLambda)
	normals := recomputeNormals(b.vertices, b.indices)

	surf := &GreenSurface{
		ID:         uuid.New().String(),
		Vertices:   b.vertices,
		Indices:    b.indices,
		Normals:    normals,
		Bounds:     computeBounds(b.vertices),
		CapturedAt: time.Now(),
	}
	surf.Quality = qualityScore(surf)
	log.Printf("[reconstruct] stitched %d fragments into %d vertices / %d triangles (quality %.2f)",
		len(fragments), surf.VertexCount(), surf.TriangleCount(), surf.Quality)
	return surf, nil
}

// meshBuilder accumulates deduplicated geometry across fragments.
// Fragment normals are consumed by the ground test only; the output
// surface's normals are recomputed from the smoothed geometry.
type meshBuilder struct {
	vertices []Vec3
	indices  []uint32
	lookup   map[[3]int64]uint32 // quantized position -> vertex index
}

func newMeshBuilder() *meshBuilder {
	return &meshBuilder{lookup: make(map[[3]int64]uint32)}
}

func quantize(p Vec3) [3]int64 {
	return [3]int64{
		int64(roundHalfAway(p.X / mergeQuantum)),
		int64(roundHalfAway(p.Y / mergeQuantum)),
		int64(roundHalfAway(p.Z / mergeQuantum)),
	}
}

func roundHalfAway(v float64) float64 {
	if v >= 0 {
		return float64(int64(v + 0.5))
	}
	return float64(int64(v - 0.5))
}

// addFragment transforms one fragment into the world frame, rejects
// non-ground triangles, and merges surviving vertices into the shared
// pool.
func (b *meshBuilder) addFragment(f *MeshFragment, opts ReconstructOptions) error {
	if len(f.Indices)%3 != 0 {
		return errors.New("index count is not a multiple of 3")
	}
	nVerts := uint32(len(f.Vertices))

	world := make([]Vec3, len(f.Vertices))
	worldN := make([]Vec3, len(f.Vertices))
	for i, v := range f.Vertices {
		world[i] = ApplyTransform(v, f.Transform)
	}
	for i, n := range f.Normals {
		worldN[i] = ApplyRotation(n, f.Transform).Normalize()
	}
	// Fragments may omit normals entirely; treat missing normals as up so
	// the ground test depends on classification alone.
	for len(worldN) < len(world) {
		worldN = append(worldN, Vec3{Z: 1})
	}

	hasClass := len(f.Classifications) > 0
	if hasClass && len(f.Classifications) != f.TriangleCount() {
		return fmt.Errorf("classification count %d does not match triangle count %d",
			len(f.Classifications), f.TriangleCount())
	}
	for t := 0; t < len(f.Indices); t += 3 {
		i0, i1, i2 := f.Indices[t], f.Indices[t+1], f.Indices[t+2]
		if i0 >= nVerts || i1 >= nVerts || i2 >= nVerts {
			return errors.New("triangle index out of range")
		}
		if hasClass {
			switch f.Classifications[t/3] {
			case ClassFloor:
			case ClassNone:
				if !opts.KeepUnclassified {
					continue
				}
			default:
				continue
			}
		}
		avg := worldN[i0].Add(worldN[i1]).Add(worldN[i2]).Normalize()
		if avg.Z <= minUpComponent {
			continue
		}
		b.indices = append(b.indices,
			b.mergeVertex(world[i0]),
			b.mergeVertex(world[i1]),
			b.mergeVertex(world[i2]),
		)
	}
	return nil
}

// mergeVertex keeps the first position seen in each 1 mm grid cell.
func (b *meshBuilder) mergeVertex(p Vec3) uint32 {
	key := quantize(p)
	if idx, ok := b.lookup[key]; ok {
		return idx
	}
	idx := uint32(len(b.vertices))
	b.lookup[key] = idx
	b.vertices = append(b.vertices, p)
	return idx
}

// smoothLaplacian moves each vertex a fraction of the way toward the
// centroid of its triangle-adjacency neighbours. The vertical component
// moves at a reduced fraction.
func smoothLaplacian(vertices []Vec3, indices []uint32, iterations int, lambda float64) {
	if len(vertices) == 0 || len(indices) < 3 {
		return
	}
	adjacency := buildAdjacency(len(vertices), indices)
	vLambda := lambda * smoothVerticalFactor

	next := make([]Vec3, len(vertices))
	for it := 0; it < iterations; it++ {
		copy(next, vertices)
		for i, neighbors := range adjacency {
			if len(neighbors) == 0 {
				continue
			}
			var centroid Vec3
			for _, n := range neighbors {
				centroid = centroid.Add(vertices[n])
			}
			centroid = centroid.Scale(1 / float64(len(neighbors)))
			v := vertices[i]
			next[i] = Vec3{
				X: v.X + lambda*(centroid.X-v.X),
				Y: v.Y + lambda*(centroid.Y-v.Y),
				Z: v.Z + vLambda*(centroid.Z-v.Z),
			}
		}
		copy(vertices, next)
	}
}

func buildAdjacency(vertexCount int, indices []uint32) [][]int {
	adjacency := make([][]int, vertexCount)
	seen := make(map[[2]uint32]bool)
	addEdge := func(a, b uint32) {
		if a == b {
			return
		}
		key := [2]uint32{a, b}
		if a > b {
			key = [2]uint32{b, a}
		}
		if seen[key] {
			return
		}
		seen[key] = true
		adjacency[a] = append(adjacency[a], int(b))
		adjacency[b] = append(adjacency[b], int(a))
	}
	for t := 0; t+2 < len(indices); t += 3 {
		addEdge(indices[t], indices[t+1])
		addEdge(indices[t+1], indices[t+2])
		addEdge(indices[t+2], indices[t])
	}
	return adjacency
}

// recomputeNormals derives per-vertex normals from the smoothed geometry
// by accumulating unnormalised face cross products, which weights each
// face by twice its area. Degenerate triangles contribute nothing.
func recomputeNormals(vertices []Vec3, indices []uint32) []Vec3 {
	normals := make([]Vec3, len(vertices))
	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		e1 := vertices[i1].Sub(vertices[i0])
		e2 := vertices[i2].Sub(vertices[i0])
		face := e1.Cross(e2)
		if face.Norm() < 1e-12 {
			continue
		}
		normals[i0] = normals[i0].Add(face)
		normals[i1] = normals[i1].Add(face)
		normals[i2] = normals[i2].Add(face)
	}
	for i := range normals {
		n := normals[i].Normalize()
		if n == (Vec3{}) {
			// No non-degenerate face touched this vertex. Leave the
			// normal zero so the slope stage discards the sample instead
			// of trusting a fabricated up vector.
			continue
		}
		if n.Z < 0 {
			n = n.Scale(-1)
		}
		normals[i] = n
	}
	return normals
}

func computeBounds(vertices []Vec3) Bounds {
	if len(vertices) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: vertices[0], Max: vertices[0]}
	for _, v := range vertices[1:] {
		b.Extend(v)
	}
	return b
}

// qualityScore blends vertex density (target 1000/m^2) with covered area
// (target 10 m^2).
func qualityScore(s *GreenSurface) float64 {
	area := s.Bounds.HorizontalArea()
	if area <= 0 {
		return 0
	}
	density := float64(s.VertexCount()) / area
	dTerm := density / 1000
	if dTerm > 1 {
		dTerm = 1
	}
	aTerm := area / 10
	if aTerm > 1 {
		aTerm = 1
	}
	return 0.6*dTerm + 0.4*aTerm
}

// FilterToRadius rebuilds the surface restricted to triangles whose
// centroid lies within radius of center (horizontal distance), remapping
// indices. If fewer than 3 vertices survive the original surface is
// returned unchanged, since an empty surface would break every downstream
// stage.
func FilterToRadius(s *GreenSurface, center Vec3, radius float64) *GreenSurface {
	keep := make([]uint32, 0, len(s.Indices))
	for t := 0; t+2 < len(s.Indices); t += 3 {
		i0, i1, i2 := s.Indices[t], s.Indices[t+1], s.Indices[t+2]
		centroid := s.Vertices[i0].Add(s.Vertices[i1]).Add(s.Vertices[i2]).Scale(1.0 / 3.0)
		if centroid.HorizontalDistance(center) <= radius {
			keep = append(keep, i0, i1, i2)
		}
	}

	remap := make(map[uint32]uint32)
	var vertices []Vec3
	var normals []Vec3
	indices := make([]uint32, 0, len(keep))
	for _, old := range keep {
		idx, ok := remap[old]
		if !ok {
			idx = uint32(len(vertices))
			remap[old] = idx
			vertices = append(vertices, s.Vertices[old])
			normals = append(normals, s.Normals[old])
		}
		indices = append(indices, idx)
	}
	if len(vertices) < 3 {
		log.Printf("[reconstruct] radius filter would leave %d vertices; keeping original surface", len(vertices))
		return s
	}

	out := &GreenSurface{
		ID:         uuid.New().String(),
		Vertices:   vertices,
		Indices:    indices,
		Normals:    normals,
		Bounds:     computeBounds(vertices),
		CapturedAt: s.CapturedAt,
	}
	out.Quality = qualityScore(out)
	return out
}
