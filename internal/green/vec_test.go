package green

import (
	"math"
	"testing"
)

func almostEq(a, b float64) bool { return math.Abs(a-b) < 1e-12 }

func TestVec2Rotate(t *testing.T) {
	v := Vec2{X: 1, Y: 0}

	r := v.Rotate(math.Pi / 2)
	if !almostEq(r.X, 0) || !almostEq(r.Y, 1) {
		t.Errorf("rotate 90: got (%.6f, %.6f), want (0, 1)", r.X, r.Y)
	}

	r = v.Rotate(-math.Pi / 2)
	if !almostEq(r.X, 0) || !almostEq(r.Y, -1) {
		t.Errorf("rotate -90: got (%.6f, %.6f), want (0, -1)", r.X, r.Y)
	}

	if n := v.Rotate(0.37).Norm(); !almostEq(n, 1) {
		t.Errorf("rotation changed length: %.9f", n)
	}
}

func TestVec2Cross(t *testing.T) {
	// Positive cross means b is to the left of a.
	a := Vec2{X: 1, Y: 0}
	if c := a.Cross(Vec2{X: 0, Y: 1}); c <= 0 {
		t.Errorf("cross with left vector = %.3f, want positive", c)
	}
	if c := a.Cross(Vec2{X: 0, Y: -1}); c >= 0 {
		t.Errorf("cross with right vector = %.3f, want negative", c)
	}
}

func TestNormalizeOr(t *testing.T) {
	def := Vec2{X: 0, Y: 1}
	if got := (Vec2{}).NormalizeOr(def); got != def {
		t.Errorf("zero vector: got %v, want default", got)
	}
	if got := (Vec2{X: 3, Y: 0}).NormalizeOr(def); !almostEq(got.X, 1) || !almostEq(got.Y, 0) {
		t.Errorf("nonzero vector: got %v, want (1, 0)", got)
	}
}

func TestVec3CrossRightHanded(t *testing.T) {
	x := Vec3{X: 1}
	y := Vec3{Y: 1}
	z := x.Cross(y)
	if !almostEq(z.Z, 1) || !almostEq(z.X, 0) || !almostEq(z.Y, 0) {
		t.Errorf("x cross y = %v, want z", z)
	}
}

func TestApplyTransform(t *testing.T) {
	// Rotation of 90 degrees about Z plus a translation.
	m := [16]float64{
		0, -1, 0, 5,
		1, 0, 0, -2,
		0, 0, 1, 1,
		0, 0, 0, 1,
	}

	p := ApplyTransform(Vec3{X: 1, Y: 0, Z: 0}, m)
	if !almostEq(p.X, 5) || !almostEq(p.Y, -1) || !almostEq(p.Z, 1) {
		t.Errorf("transformed point = %v, want (5, -1, 1)", p)
	}

	// Rotation ignores translation.
	n := ApplyRotation(Vec3{X: 1}, m)
	if !almostEq(n.X, 0) || !almostEq(n.Y, 1) || !almostEq(n.Z, 0) {
		t.Errorf("rotated normal = %v, want (0, 1, 0)", n)
	}
}

func TestHorizontalDistance(t *testing.T) {
	a := Vec3{X: 0, Y: 0, Z: 100}
	b := Vec3{X: 3, Y: 4, Z: -50}
	if d := a.HorizontalDistance(b); !almostEq(d, 5) {
		t.Errorf("horizontal distance = %.6f, want 5 regardless of Z", d)
	}
}

func TestBoundsContainsXY(t *testing.T) {
	b := Bounds{Min: Vec3{X: 0, Y: 0}, Max: Vec3{X: 2, Y: 2}}

	if !b.ContainsXY(Vec3{X: 1, Y: 1}, 0) {
		t.Error("interior point should be contained")
	}
	if b.ContainsXY(Vec3{X: 2.4, Y: 1}, 0.2) {
		t.Error("point beyond margin should not be contained")
	}
	if !b.ContainsXY(Vec3{X: 2.4, Y: 1}, 0.5) {
		t.Error("margin should extend containment")
	}
}
