// Package pipeline wires the reconstruction, slope, physics, simulation
// and solver stages into one analysis pass over a captured green.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fairway-data/greenread/internal/green"
	"github.com/fairway-data/greenread/internal/green/physics"
	"github.com/fairway-data/greenread/internal/green/sim"
	"github.com/fairway-data/greenread/internal/green/slope"
	"github.com/fairway-data/greenread/internal/green/solver"
)

// corridorPadding widens the analysis region beyond the ball-to-hole
// distance so breaking putts stay on reconstructed surface.
const corridorPadding = 2.0

// Options configures one analysis pass.
type Options struct {
	Conditions physics.Conditions
	Policy     solver.Policy

	// KeepUnclassified admits mesh fragments without a floor
	// classification, for capture sources that do not classify.
	KeepUnclassified bool
}

func DefaultOptions() Options {
	return Options{
		Conditions: physics.DefaultConditions(),
		Policy:     solver.DefaultPolicy(),
	}
}

// Analysis is everything one pass produces. Surface and Slopes stay
// attached so callers can render or re-query them; Release drops the
// heavy per-run caches when the caller is done.
type Analysis struct {
	Surface    *green.GreenSurface
	Slopes     *slope.Field
	Parameters physics.Parameters
	Lines      []solver.PuttingLine

	Ball green.Vec3
	Hole green.Vec3

	Elapsed time.Duration

	heights *green.HeightCache
	simr    *sim.Simulator
}

// Simulator exposes the run's simulator for what-if shots against the
// same surface and conditions.
func (a *Analysis) Simulator() *sim.Simulator { return a.simr }

// Release drops the spatial caches. The Analysis remains readable but
// can no longer simulate.
func (a *Analysis) Release() {
	a.heights = nil
	a.simr = nil
}

// Analyzer runs capture bundles through the full pipeline. It holds no
// per-run state; one Analyzer serves many captures.
type Analyzer struct {
	opts Options
}

func New(opts Options) *Analyzer {
	if opts.Policy.AngleSteps <= 0 {
		opts.Policy = solver.DefaultPolicy()
	}
	return &Analyzer{opts: opts}
}

// Analyze reconstructs the surface, derives slopes and physics, and
// solves putting lines for the bundle's marked ball and hole.
func (a *Analyzer) Analyze(ctx context.Context, bundle *green.CaptureBundle) (*Analysis, error) {
	start := time.Now()

	surface, err := green.Reconstruct(bundle.Fragments, green.ReconstructOptions{
		KeepUnclassified: a.opts.KeepUnclassified,
	})
	if err != nil {
		return nil, fmt.Errorf("reconstruct: %w", err)
	}
	log.Printf("[pipeline] reconstructed surface %s: %d vertices, %d triangles, quality %.2f",
		surface.ID, surface.VertexCount(), surface.TriangleCount(), surface.Quality)

	ball := bundle.Ball.Position
	hole := bundle.Hole.Position

	// Trim to the putt corridor before building slope and height
	// structures; a full scan can cover far more green than the putt
	// needs.
	mid := ball.Add(hole).Scale(0.5)
	radius := ball.HorizontalDistance(hole)/2 + corridorPadding
	working := green.FilterToRadius(surface, mid, radius)

	heights := green.NewHeightCache(working)
	if z, ok := heights.HeightAt(ball.Horizontal()); ok {
		ball.Z = z + physics.BallRadius
	}
	if z, ok := heights.HeightAt(hole.Horizontal()); ok {
		hole.Z = z
	}

	slopes := slope.Build(working)
	log.Printf("[pipeline] slope field: %d samples, max %.1f%%, avg %.1f%%",
		len(slopes.Samples), slopes.Stats.MaxSlopePercent, slopes.Stats.AverageSlopePercent)

	params, err := physics.Derive(a.opts.Conditions)
	if err != nil {
		return nil, fmt.Errorf("derive physics: %w", err)
	}

	simr := sim.New(slopes, params, heights, working.Bounds)
	lines, err := solver.New(simr, params, a.opts.Policy).Solve(ctx, ball, hole)
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}

	return &Analysis{
		Surface:    working,
		Slopes:     slopes,
		Parameters: params,
		Lines:      lines,
		Ball:       ball,
		Hole:       hole,
		Elapsed:    time.Since(start),
		heights:    heights,
		simr:       simr,
	}, nil
}
