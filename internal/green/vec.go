package green

import "math"

// Coordinate convention: X/Y span the horizontal plane, Z is up.
// All lengths are metres, all angles radians.

// Vec3 is a point or direction in world coordinates.
type Vec3 struct {
	X, Y, Z float64
}

// Vec2 is a point or direction in the horizontal plane.
type Vec2 struct {
	X, Y float64
}

func (a Vec3) Add(b Vec3) Vec3      { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3      { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Dot(b Vec3) float64   { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec3) Norm() float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z)
}

// Normalize returns the unit vector, or the zero vector if the input is
// degenerate. Callers that must not propagate a zero direction should use
// NormalizeOr instead.
func (a Vec3) Normalize() Vec3 {
	n := a.Norm()
	if n < 1e-12 {
		return Vec3{}
	}
	return Vec3{a.X / n, a.Y / n, a.Z / n}
}

// NormalizeOr returns the unit vector, or def when the input is too short
// to carry a direction.
func (a Vec3) NormalizeOr(def Vec3) Vec3 {
	n := a.Norm()
	if n < 1e-12 {
		return def
	}
	return Vec3{a.X / n, a.Y / n, a.Z / n}
}

// Horizontal projects the vector onto the horizontal plane.
func (a Vec3) Horizontal() Vec2 { return Vec2{a.X, a.Y} }

// HorizontalDistance is the distance between two points ignoring height.
func (a Vec3) HorizontalDistance(b Vec3) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func (a Vec2) Add(b Vec2) Vec2      { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2      { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Scale(s float64) Vec2 { return Vec2{a.X * s, a.Y * s} }
func (a Vec2) Dot(b Vec2) float64   { return a.X*b.X + a.Y*b.Y }

// Cross is the scalar z-component of the 3D cross product. Positive when b
// lies to the left of a.
func (a Vec2) Cross(b Vec2) float64 { return a.X*b.Y - a.Y*b.X }

func (a Vec2) Norm() float64 { return math.Hypot(a.X, a.Y) }

func (a Vec2) Normalize() Vec2 {
	n := a.Norm()
	if n < 1e-12 {
		return Vec2{}
	}
	return Vec2{a.X / n, a.Y / n}
}

// NormalizeOr returns the unit vector, or def when the input is degenerate.
func (a Vec2) NormalizeOr(def Vec2) Vec2 {
	n := a.Norm()
	if n < 1e-12 {
		return def
	}
	return Vec2{a.X / n, a.Y / n}
}

// Perp returns the vector rotated 90 degrees counter-clockwise.
func (a Vec2) Perp() Vec2 { return Vec2{-a.Y, a.X} }

// Rotate rotates the vector by theta radians counter-clockwise.
func (a Vec2) Rotate(theta float64) Vec2 {
	c := math.Cos(theta)
	s := math.Sin(theta)
	return Vec2{a.X*c - a.Y*s, a.X*s + a.Y*c}
}

func (a Vec2) Distance(b Vec2) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Vec3From lifts a horizontal point onto the given height.
func Vec3From(p Vec2, z float64) Vec3 { return Vec3{p.X, p.Y, z} }

// IdentityTransform is a 4x4 row-major identity matrix for fragment poses.
var IdentityTransform = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// ApplyTransform applies a 4x4 row-major homogeneous transform to a point.
func ApplyTransform(p Vec3, t [16]float64) Vec3 {
	return Vec3{
		t[0]*p.X + t[1]*p.Y + t[2]*p.Z + t[3],
		t[4]*p.X + t[5]*p.Y + t[6]*p.Z + t[7],
		t[8]*p.X + t[9]*p.Y + t[10]*p.Z + t[11],
	}
}

// ApplyRotation applies only the rotational part of a 4x4 row-major
// transform. Used for normals, which must not be translated.
func ApplyRotation(n Vec3, t [16]float64) Vec3 {
	return Vec3{
		t[0]*n.X + t[1]*n.Y + t[2]*n.Z,
		t[4]*n.X + t[5]*n.Y + t[6]*n.Z,
		t[8]*n.X + t[9]*n.Y + t[10]*n.Z,
	}
}
