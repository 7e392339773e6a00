package slope

import (
	"log"
	"sort"

	"github.com/fairway-data/greenread/internal/green"
	"gonum.org/v1/gonum/stat"
)

const (
	// minUpComponent discards vertices whose normal is too far from
	// vertical to be putting surface.
	minUpComponent = 0.7

	// maxGradient rejects samples implying more than 35% slope; steeper
	// readings are capture noise or non-green terrain.
	maxGradient = 0.35

	// hashCellSize is shared by both denoising passes.
	hashCellSize = 0.15

	// outlierRadius bounds the neighbourhood used for the local median.
	outlierRadius = 0.25

	// outlierFactor clamps samples above this multiple of the local
	// median magnitude.
	outlierFactor = 3.0

	// smoothingRadius bounds the inverse-distance smoothing pass.
	smoothingRadius = 0.15

	// minSmoothingDistance floors the IDW distance to avoid
	// singularities.
	minSmoothingDistance = 0.01

	// Flat-artifact detection: indoor floors and reference planes read
	// as uniform sub-1% noise after denoising.
	flatAvgPercent = 0.8
	flatMaxPercent = 2.0

	// Summary statistic clamps. Anything beyond these is distrusted.
	maxStatSlopePercent = 15.0
	maxStatAvgPercent   = 10.0
)

// Build derives the slope field from a reconstructed surface.
func Build(surface *green.GreenSurface) *Field {
	positions, gradients := extractGradients(surface)

	field := &Field{SurfaceID: surface.ID}
	if len(positions) == 0 {
		log.Printf("[slope] surface %s produced no usable gradient samples", surface.ID)
		field.grid = newDenseGrid(surface.Bounds)
		field.hash = green.NewSpatialIndex(hashCellSize)
		return field
	}

	hash := green.NewSpatialIndex(hashCellSize)
	hash.Build(positions)

	gradients = rejectOutliers(positions, gradients, hash)
	gradients = smoothGradients(positions, gradients, hash)

	stats, flat := summarize(gradients)
	if flat {
		// Uniform sub-threshold readings across the whole field mean a
		// flat reference surface, not a subtly sloped green.
		log.Printf("[slope] surface %s reads flat (avg %.2f%%, max %.2f%%); zeroing field",
			surface.ID, stats.AverageSlopePercent, stats.MaxSlopePercent)
		for i := range gradients {
			gradients[i] = green.Vec2{}
		}
		stats = Stats{}
	}

	field.Samples = make([]Sample, len(positions))
	for i := range positions {
		field.Samples[i] = newSample(positions[i], gradients[i])
	}
	field.Stats = stats
	field.positions = positions
	field.hash = hash
	field.grid = splatDenseGrid(surface.Bounds, positions, gradients)
	return field
}

// extractGradients computes the analytic horizontal gradient for each
// near-vertical vertex normal: for unit normal n, the uphill gradient is
// (-nx/nz, -ny/nz).
func extractGradients(surface *green.GreenSurface) ([]green.Vec3, []green.Vec2) {
	var positions []green.Vec3
	var gradients []green.Vec2
	for i, n := range surface.Normals {
		if n.Z <= minUpComponent {
			continue
		}
		g := green.Vec2{X: -n.X / n.Z, Y: -n.Y / n.Z}
		if g.Norm() > maxGradient {
			continue
		}
		positions = append(positions, surface.Vertices[i])
		gradients = append(gradients, g)
	}
	return positions, gradients
}

// rejectOutliers clamps any sample whose gradient magnitude exceeds three
// times the local median, preserving its direction.
func rejectOutliers(positions []green.Vec3, gradients []green.Vec2, hash *green.SpatialIndex) []green.Vec2 {
	out := make([]green.Vec2, len(gradients))
	copy(out, gradients)

	for i := range gradients {
		neighbors := hash.Neighbors(positions, positions[i].Horizontal(), outlierRadius)
		if len(neighbors) < 2 {
			continue
		}
		mags := make([]float64, 0, len(neighbors))
		for _, ni := range neighbors {
			mags = append(mags, gradients[ni].Norm())
		}
		sort.Float64s(mags)
		median := stat.Quantile(0.5, stat.Empirical, mags, nil)
		if median <= 0 {
			continue
		}
		if mag := gradients[i].Norm(); mag > outlierFactor*median {
			out[i] = gradients[i].Scale(median / mag)
		}
	}
	return out
}

// smoothGradients replaces each gradient with the inverse-distance
// weighted average of its neighbourhood.
func smoothGradients(positions []green.Vec3, gradients []green.Vec2, hash *green.SpatialIndex) []green.Vec2 {
	out := make([]green.Vec2, len(gradients))
	for i := range gradients {
		p := positions[i].Horizontal()
		neighbors := hash.Neighbors(positions, p, smoothingRadius)
		if len(neighbors) == 0 {
			out[i] = gradients[i]
			continue
		}
		var wsum float64
		var acc green.Vec2
		for _, ni := range neighbors {
			d := positions[ni].Horizontal().Distance(p)
			if d < minSmoothingDistance {
				d = minSmoothingDistance
			}
			w := 1 / d
			wsum += w
			acc = acc.Add(gradients[ni].Scale(w))
		}
		out[i] = acc.Scale(1 / wsum)
	}
	return out
}

// summarize computes field statistics and reports whether the field reads
// as a flat artifact.
func summarize(gradients []green.Vec2) (Stats, bool) {
	if len(gradients) == 0 {
		return Stats{}, false
	}
	var sum green.Vec2
	mags := make([]float64, len(gradients))
	maxMag := 0.0
	for i, g := range gradients {
		mags[i] = g.Norm()
		if mags[i] > maxMag {
			maxMag = mags[i]
		}
		sum = sum.Add(g)
	}
	avg := stat.Mean(mags, nil)

	avgPct := avg * 100
	maxPct := maxMag * 100
	flat := avgPct < flatAvgPercent && maxPct < flatMaxPercent

	if maxPct > maxStatSlopePercent {
		maxPct = maxStatSlopePercent
	}
	if avgPct > maxStatAvgPercent {
		avgPct = maxStatAvgPercent
	}
	return Stats{
		MaxSlopePercent:     maxPct,
		AverageSlopePercent: avgPct,
		DominantDirection:   sum.Normalize(),
	}, flat
}
