package green

import (
	"errors"
	"testing"
)

// quadFragment builds a unit quad at the given origin: 4 vertices, 2
// floor triangles, normals up.
func quadFragment(ox, oy float64) MeshFragment {
	return MeshFragment{
		Vertices: []Vec3{
			{X: ox, Y: oy, Z: 0},
			{X: ox + 1, Y: oy, Z: 0},
			{X: ox, Y: oy + 1, Z: 0},
			{X: ox + 1, Y: oy + 1, Z: 0},
		},
		Normals: []Vec3{
			{Z: 1}, {Z: 1}, {Z: 1}, {Z: 1},
		},
		Indices:         []uint32{0, 1, 2, 1, 3, 2},
		Classifications: []Classification{ClassFloor, ClassFloor},
		Transform:       IdentityTransform,
	}
}

func TestReconstructMergesSharedVertices(t *testing.T) {
	// Two quads sharing an edge at x=1: the two shared vertices must
	// merge, leaving 6 instead of 8.
	frags := []MeshFragment{quadFragment(0, 0), quadFragment(1, 0)}

	surf, err := Reconstruct(frags, ReconstructOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if surf.VertexCount() != 6 {
		t.Errorf("vertex count = %d, want 6 after merging the shared edge", surf.VertexCount())
	}
	if surf.TriangleCount() != 4 {
		t.Errorf("triangle count = %d, want 4", surf.TriangleCount())
	}
	if err := surf.Validate(); err != nil {
		t.Errorf("reconstructed surface invalid: %v", err)
	}
}

func TestReconstructRecomputesNormals(t *testing.T) {
	// Output normals derive from the merged, smoothed geometry. A flat
	// quad with skewed (but up-facing) fragment normals must still come
	// out with straight-up surface normals.
	frag := quadFragment(0, 0)
	skew := Vec3{X: 0.4, Y: 0.3, Z: 1}.Normalize()
	frag.Normals = []Vec3{skew, skew, skew, skew}

	surf, err := Reconstruct([]MeshFragment{frag}, ReconstructOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for i, n := range surf.Normals {
		if n.Z < 0.999 {
			t.Errorf("normal %d = %+v, want straight up for a flat surface", i, n)
		}
	}
}

func TestReconstructRejectsNonFloor(t *testing.T) {
	frag := quadFragment(0, 0)
	frag.Classifications = []Classification{ClassFloor, ClassWall}

	surf, err := Reconstruct([]MeshFragment{frag}, ReconstructOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if surf.TriangleCount() != 1 {
		t.Errorf("triangle count = %d, want 1 with the wall triangle dropped", surf.TriangleCount())
	}
}

func TestReconstructRejectsClassificationCountMismatch(t *testing.T) {
	// A classification array that is not one-per-triangle must be an
	// error, not a silent fall-back to unfiltered geometry: a producer
	// labelling per vertex would otherwise lose all wall filtering.
	frag := quadFragment(0, 0)
	frag.Classifications = []Classification{ClassFloor, ClassFloor, ClassFloor, ClassFloor}
	if _, err := Reconstruct([]MeshFragment{frag}, ReconstructOptions{}); err == nil {
		t.Error("expected error for per-vertex classifications")
	}

	frag = quadFragment(0, 0)
	frag.Classifications = []Classification{ClassFloor}
	if _, err := Reconstruct([]MeshFragment{frag}, ReconstructOptions{}); err == nil {
		t.Error("expected error for truncated classifications")
	}

	// Omitting classifications entirely stays legal.
	frag = quadFragment(0, 0)
	frag.Classifications = nil
	if _, err := Reconstruct([]MeshFragment{frag}, ReconstructOptions{}); err != nil {
		t.Errorf("fragment without classifications rejected: %v", err)
	}
}

func TestReconstructRejectsSteepNormals(t *testing.T) {
	// A vertical face reads as wall geometry regardless of labels.
	frag := quadFragment(0, 0)
	frag.Normals = []Vec3{{X: 1}, {X: 1}, {X: 1}, {X: 1}}

	_, err := Reconstruct([]MeshFragment{frag}, ReconstructOptions{})
	if !errors.Is(err, ErrInsufficientVertices) {
		t.Errorf("err = %v, want ErrInsufficientVertices", err)
	}
}

func TestReconstructKeepUnclassified(t *testing.T) {
	frag := quadFragment(0, 0)
	frag.Classifications = []Classification{ClassNone, ClassNone}

	if _, err := Reconstruct([]MeshFragment{frag}, ReconstructOptions{}); !errors.Is(err, ErrInsufficientVertices) {
		t.Errorf("unclassified triangles kept by default: err = %v", err)
	}

	surf, err := Reconstruct([]MeshFragment{frag}, ReconstructOptions{KeepUnclassified: true})
	if err != nil {
		t.Fatal(err)
	}
	if surf.TriangleCount() != 2 {
		t.Errorf("triangle count = %d, want 2 with KeepUnclassified", surf.TriangleCount())
	}
}

func TestReconstructNoFragments(t *testing.T) {
	if _, err := Reconstruct(nil, ReconstructOptions{}); !errors.Is(err, ErrNoFragments) {
		t.Errorf("err = %v, want ErrNoFragments", err)
	}
}

func TestReconstructAppliesTransform(t *testing.T) {
	frag := quadFragment(0, 0)
	// Translate by (10, 20, 0.5).
	frag.Transform = [16]float64{
		1, 0, 0, 10,
		0, 1, 0, 20,
		0, 0, 1, 0.5,
		0, 0, 0, 1,
	}

	surf, err := Reconstruct([]MeshFragment{frag}, ReconstructOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if surf.Bounds.Min.X < 9.9 || surf.Bounds.Max.X > 11.1 {
		t.Errorf("bounds X [%.2f, %.2f], want around [10, 11]", surf.Bounds.Min.X, surf.Bounds.Max.X)
	}
	if surf.Bounds.Min.Y < 19.9 {
		t.Errorf("bounds Y min %.2f, want around 20", surf.Bounds.Min.Y)
	}
}

func TestReconstructBadIndices(t *testing.T) {
	frag := quadFragment(0, 0)
	frag.Indices = []uint32{0, 1, 9}
	if _, err := Reconstruct([]MeshFragment{frag}, ReconstructOptions{}); err == nil {
		t.Error("expected error for out-of-range index")
	}

	frag = quadFragment(0, 0)
	frag.Indices = []uint32{0, 1}
	frag.Classifications = nil
	if _, err := Reconstruct([]MeshFragment{frag}, ReconstructOptions{}); err == nil {
		t.Error("expected error for non-multiple-of-3 indices")
	}
}

func TestQualityScoreBounds(t *testing.T) {
	surf, err := Reconstruct([]MeshFragment{quadFragment(0, 0)}, ReconstructOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if surf.Quality < 0 || surf.Quality > 1 {
		t.Errorf("quality %.3f outside [0,1]", surf.Quality)
	}
}

func TestFilterToRadius(t *testing.T) {
	frags := []MeshFragment{quadFragment(0, 0), quadFragment(5, 0)}
	surf, err := Reconstruct(frags, ReconstructOptions{})
	if err != nil {
		t.Fatal(err)
	}

	// Keep only the quad near the origin.
	filtered := FilterToRadius(surf, Vec3{X: 0.5, Y: 0.5}, 2)
	if filtered.TriangleCount() != 2 {
		t.Errorf("filtered triangle count = %d, want 2", filtered.TriangleCount())
	}
	if filtered.Bounds.Max.X > 1.5 {
		t.Errorf("filtered bounds max X = %.2f, want within the near quad", filtered.Bounds.Max.X)
	}
	if err := filtered.Validate(); err != nil {
		t.Errorf("filtered surface invalid: %v", err)
	}

	// A filter that would empty the surface returns it unchanged.
	same := FilterToRadius(surf, Vec3{X: 100, Y: 100}, 0.1)
	if same != surf {
		t.Error("degenerate filter should return the original surface")
	}
}
