// Package slope converts a reconstructed green surface into a denoised
// horizontal gradient field with constant-time lookups for the simulator
// hot loop.
package slope

import (
	"errors"
	"math"

	"github.com/fairway-data/greenread/internal/green"
)

// ErrNoSamples reports a surface that yielded no usable slope samples.
var ErrNoSamples = errors.New("slope field has no samples")

// Sample is one point of the gradient field. The gradient points uphill
// in the horizontal plane; its magnitude is rise over run.
type Sample struct {
	Position     green.Vec3
	Gradient     green.Vec2
	SlopePercent float64
	SlopeAngle   float64 // radians
}

// Stats summarises a slope field.
type Stats struct {
	MaxSlopePercent     float64
	AverageSlopePercent float64
	DominantDirection   green.Vec2 // unit, or zero when flat
}

// Field is the immutable slope lookup built once per analysis. Reads are
// safe from concurrent goroutines.
type Field struct {
	SurfaceID string
	Samples   []Sample
	Stats     Stats

	positions []green.Vec3 // sample positions for index queries
	hash      *green.SpatialIndex
	grid      *denseGrid
}

// newSample fills the derived fields from a gradient.
func newSample(pos green.Vec3, gradient green.Vec2) Sample {
	mag := gradient.Norm()
	return Sample{
		Position:     pos,
		Gradient:     gradient,
		SlopePercent: mag * 100,
		SlopeAngle:   math.Atan(mag),
	}
}

// IsEmpty reports whether the field has no samples at all.
func (f *Field) IsEmpty() bool { return len(f.Samples) == 0 }

// fallback radii for spatial-hash interpolation when the dense grid
// misses, widened progressively until neighbours appear.
var queryRadii = []float64{0.10, 0.25, 0.5, 1.0}

// SlopeAt returns the interpolated slope sample at a horizontal position.
//
// Lookup order: dense grid bilinear interpolation (all four surrounding
// cells must be valid), then inverse-distance interpolation over the
// spatial hash with widening radii, then the field's global
// dominant-direction average as a last resort. Returns false only when
// the field itself is empty.
func (f *Field) SlopeAt(p green.Vec2) (Sample, bool) {
	if f.IsEmpty() {
		return Sample{}, false
	}

	if g, ok := f.grid.bilinear(p); ok {
		return newSample(green.Vec3From(p, 0), g), true
	}

	if neighbors, _ := f.hash.NeighborsWidening(f.positions, p, queryRadii); len(neighbors) > 0 {
		var wsum float64
		var acc green.Vec2
		for _, i := range neighbors {
			d := f.positions[i].Horizontal().Distance(p)
			if d < 1e-3 {
				d = 1e-3
			}
			w := 1 / d
			wsum += w
			acc = acc.Add(f.Samples[i].Gradient.Scale(w))
		}
		return newSample(green.Vec3From(p, 0), acc.Scale(1/wsum)), true
	}

	// Nothing nearby anywhere: report the field-wide trend.
	g := f.Stats.DominantDirection.Scale(f.Stats.AverageSlopePercent / 100)
	return newSample(green.Vec3From(p, 0), g), true
}
