// Package greentest builds synthetic capture bundles with known
// geometry, so tests can assert against analytic expectations instead
// of recorded scans.
package greentest

import (
	"math"
	"time"

	"github.com/fairway-data/greenread/internal/green"
)

// GridSpec controls the synthetic scan: a square patch of SizeMeters a
// side, sampled every StepMeters, centred on the origin.
type GridSpec struct {
	SizeMeters float64
	StepMeters float64
}

func DefaultGrid() GridSpec {
	return GridSpec{SizeMeters: 8, StepMeters: 0.1}
}

// HeightFunc gives the surface height at a horizontal position.
type HeightFunc func(x, y float64) float64

// Flat returns a level surface at the given height.
func Flat(z float64) HeightFunc {
	return func(x, y float64) float64 { return z }
}

// Tilted returns a plane rising along dir at slopePercent grade. dir
// need not be normalized.
func Tilted(slopePercent float64, dir green.Vec2) HeightFunc {
	d := dir.NormalizeOr(green.Vec2{X: 1})
	g := slopePercent / 100
	return func(x, y float64) float64 {
		return g * (x*d.X + y*d.Y)
	}
}

// Crowned returns a dome peaking at the origin, falling off
// parabolically to dropMeters at radius.
func Crowned(dropMeters, radius float64) HeightFunc {
	return func(x, y float64) float64 {
		r2 := (x*x + y*y) / (radius * radius)
		return -dropMeters * r2
	}
}

// Undulating superimposes a gentle sine swale on a base surface.
func Undulating(base HeightFunc, amplitude, wavelength float64) HeightFunc {
	k := 2 * math.Pi / wavelength
	return func(x, y float64) float64 {
		return base(x, y) + amplitude*math.Sin(k*x)*math.Cos(k*y)
	}
}

// Fragments samples the height function over the grid as a single
// triangulated fragment with analytic normals, classified as floor.
func Fragments(spec GridSpec, h HeightFunc) []green.MeshFragment {
	half := spec.SizeMeters / 2
	n := int(spec.SizeMeters/spec.StepMeters) + 1

	frag := green.MeshFragment{Transform: green.IdentityTransform}
	for iy := 0; iy < n; iy++ {
		for ix := 0; ix < n; ix++ {
			x := -half + float64(ix)*spec.StepMeters
			y := -half + float64(iy)*spec.StepMeters
			frag.Vertices = append(frag.Vertices, green.Vec3{X: x, Y: y, Z: h(x, y)})
			frag.Normals = append(frag.Normals, numericNormal(h, x, y))
		}
	}
	for iy := 0; iy < n-1; iy++ {
		for ix := 0; ix < n-1; ix++ {
			a := uint32(iy*n + ix)
			b := a + 1
			c := a + uint32(n)
			d := c + 1
			frag.Indices = append(frag.Indices, a, b, c, b, d, c)
			frag.Classifications = append(frag.Classifications, green.ClassFloor, green.ClassFloor)
		}
	}
	return []green.MeshFragment{frag}
}

// numericNormal central-differences the height function. Normals point
// up for any physically plausible green.
func numericNormal(h HeightFunc, x, y float64) green.Vec3 {
	const eps = 0.01
	dzdx := (h(x+eps, y) - h(x-eps, y)) / (2 * eps)
	dzdy := (h(x, y+eps) - h(x, y-eps)) / (2 * eps)
	return green.Vec3{X: -dzdx, Y: -dzdy, Z: 1}.Normalize()
}

// Bundle wraps the surface and marks into a capture bundle ready for
// the pipeline. Ball and hole Z values are filled from the surface.
func Bundle(spec GridSpec, h HeightFunc, ball, hole green.Vec2) *green.CaptureBundle {
	now := time.Date(2026, 5, 14, 9, 30, 0, 0, time.UTC)
	return &green.CaptureBundle{
		CapturedAt: now,
		Fragments:  Fragments(spec, h),
		Ball: green.BallPosition{
			Position: green.Vec3{X: ball.X, Y: ball.Y, Z: h(ball.X, ball.Y)},
			MarkedAt: now,
		},
		Hole: green.HolePosition{
			Position: green.Vec3{X: hole.X, Y: hole.Y, Z: h(hole.X, hole.Y)},
			MarkedAt: now,
		},
	}
}

// Surface reconstructs the synthetic fragments directly, for tests that
// do not exercise the full pipeline.
func Surface(spec GridSpec, h HeightFunc) *green.GreenSurface {
	s, err := green.Reconstruct(Fragments(spec, h), green.ReconstructOptions{})
	if err != nil {
		panic("greentest: reconstruct synthetic surface: " + err.Error())
	}
	return s
}
