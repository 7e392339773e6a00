package solver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/fairway-data/greenread/internal/green"
	"github.com/fairway-data/greenread/internal/green/physics"
	"github.com/fairway-data/greenread/internal/green/sim"
	"github.com/fairway-data/greenread/internal/units"
)

var (
	// ErrNoSolution reports a solve where no trial for any strategy
	// finished in the hole and no fallback trial came close enough.
	ErrNoSolution = errors.New("solver: no viable putting line found")

	// ErrDegenerate reports a ball placed on top of the hole.
	ErrDegenerate = errors.New("solver: ball and hole positions coincide")
)

// minSolveDistance is the ball-to-hole distance below which the putt is
// treated as a gimme rather than searched.
const minSolveDistance = 0.02

// fanWidenPerMeter grows the aim fan on longer putts, where slope has
// more room to act on the ball.
const fanWidenPerMeter = 0.6

// Fallback perturbations tried when the primary fan holes nothing.
var (
	fallbackSpeedFactors = []float64{0.9, 1.0, 1.1, 1.2}
	fallbackAngleDegs    = []float64{0, 2, -2, 5, -5}
)

// Refinement deltas searched around each winning trial inside the
// refinement window.
var (
	refineAngleDegs    = []float64{0.5, -0.5, 1, -1}
	refineSpeedFactors = []float64{1.015, 0.985, 1.03, 0.97}
)

// Solver searches launch angle and speed for putting lines that hole out
// under the derived physics, one line per strategy.
type Solver struct {
	simr   *sim.Simulator
	params physics.Parameters
	policy Policy
}

func New(simr *sim.Simulator, params physics.Parameters, policy Policy) *Solver {
	if policy.AngleSteps <= 0 {
		policy = DefaultPolicy()
	}
	return &Solver{simr: simr, params: params, policy: policy}
}

// trial is one simulated candidate with its score.
type trial struct {
	angle      float64 // radians off the direct line, positive = left
	speed      float64
	result     *sim.Result
	confidence float64
}

// Solve returns one putting line per strategy, best first within each
// strategy's own search. Lines that never holed carry a low-confidence
// closest-approach result rather than being dropped, so the caller
// always gets a read for every strategy unless the search found nothing
// usable at all.
func (s *Solver) Solve(ctx context.Context, ball, hole green.Vec3) ([]PuttingLine, error) {
	dist := ball.HorizontalDistance(hole)
	if dist < minSolveDistance {
		return nil, ErrDegenerate
	}

	deadline := time.Now().Add(s.policy.Deadline)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	searchDeadline := deadline.Add(-s.policy.RefinementWindow)
	if !searchDeadline.After(time.Now()) {
		searchDeadline = deadline
	}

	directDir := hole.Horizontal().Sub(ball.Horizontal()).Scale(1 / dist)
	start := time.Now()

	lines := make([]PuttingLine, 0, 3)
	var firstErr error
	for _, strategy := range Strategies() {
		best, err := s.solveStrategy(ctx, ball, hole, directDir, dist, strategy, searchDeadline)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		lines = append(lines, s.buildLine(best, strategy, ball, hole, directDir, dist))
	}
	if len(lines) == 0 {
		if firstErr != nil && !errors.Is(firstErr, ErrNoSolution) {
			return nil, firstErr
		}
		return nil, ErrNoSolution
	}

	// Spend whatever remains of the deadline polishing the lines found.
	if time.Now().Before(deadline) {
		s.refine(ctx, lines, ball, hole, directDir, dist, deadline)
	}

	log.Printf("[solver] solved %d/%d strategies for %.2fm putt in %s",
		len(lines), len(Strategies()), dist, time.Since(start).Round(time.Millisecond))
	return lines, nil
}

// solveStrategy runs the centre-outward fan search for one strategy.
func (s *Solver) solveStrategy(ctx context.Context, ball, hole green.Vec3, directDir green.Vec2, dist float64, strategy Strategy, deadline time.Time) (trial, error) {
	baseSpeed := s.params.SpeedForDistance(dist + strategy.OvershootMeters())
	exitAt := s.policy.earlyExit(strategy)

	var best trial
	haveHoled := false
	tried := 0

	for _, angle := range s.angleOffsets(dist) {
		for _, mult := range s.policy.SpeedMultipliers {
			if err := ctx.Err(); err != nil {
				if haveHoled || best.result != nil {
					return s.finalize(best, haveHoled)
				}
				return trial{}, fmt.Errorf("solver: %s search interrupted: %w", strategy, err)
			}
			if !time.Now().Before(deadline) {
				return s.finalize(best, haveHoled)
			}

			t := s.runTrial(ball, hole, directDir, dist, angle, baseSpeed*mult, strategy)
			tried++
			if tried%16 == 0 {
				runtime.Gosched()
			}

			if t.result.Holed() {
				if !haveHoled || t.confidence > best.confidence {
					best = t
					haveHoled = true
				}
				if t.confidence >= exitAt {
					return best, nil
				}
			} else if !haveHoled {
				if best.result == nil || t.result.ClosestApproach < best.result.ClosestApproach {
					best = t
				}
			}
		}
	}

	if haveHoled {
		return best, nil
	}
	return s.solveFallback(ctx, ball, hole, directDir, dist, strategy, baseSpeed, best, deadline)
}

// solveFallback perturbs speed and angle more coarsely when the fan
// holed nothing, keeping the closest approach seen anywhere.
func (s *Solver) solveFallback(ctx context.Context, ball, hole green.Vec3, directDir green.Vec2, dist float64, strategy Strategy, baseSpeed float64, best trial, deadline time.Time) (trial, error) {
	for _, f := range fallbackSpeedFactors {
		for _, deg := range fallbackAngleDegs {
			if ctx.Err() != nil || !time.Now().Before(deadline) {
				return s.finalize(best, false)
			}
			t := s.runTrial(ball, hole, directDir, dist, units.DegreesToRadians(deg), baseSpeed*f, strategy)
			if t.result.Holed() {
				return t, nil
			}
			if best.result == nil || t.result.ClosestApproach < best.result.ClosestApproach {
				best = t
			}
		}
	}
	return s.finalize(best, false)
}

// finalize rescores a non-holing best candidate as a fallback line.
func (s *Solver) finalize(best trial, holed bool) (trial, error) {
	if best.result == nil {
		return trial{}, ErrNoSolution
	}
	if !holed {
		best.confidence = scoreFallback(best.result.ClosestApproach)
		if best.confidence <= 0 {
			return trial{}, ErrNoSolution
		}
	}
	return best, nil
}

func (s *Solver) runTrial(ball, hole green.Vec3, directDir green.Vec2, dist, angle, speed float64, strategy Strategy) trial {
	dir := directDir.Rotate(angle)
	res := s.simr.Simulate(ball, hole, dir, speed)
	t := trial{angle: angle, speed: speed, result: res}
	if res.Holed() {
		t.confidence = scoreHoled(res, strategy, s.params, ball, hole)
	}
	return t
}

// angleOffsets yields the fan of aim angles, centre-outward: 0 first,
// then alternating left/right at growing offsets.
func (s *Solver) angleOffsets(dist float64) []float64 {
	half := s.policy.BaseHalfAngleDeg + fanWidenPerMeter*dist
	if half > s.policy.MaxHalfAngleDeg {
		half = s.policy.MaxHalfAngleDeg
	}
	steps := s.policy.AngleSteps
	if steps%2 == 0 {
		steps++
	}
	pairs := steps / 2
	offsets := make([]float64, 0, steps)
	offsets = append(offsets, 0)
	for i := 1; i <= pairs; i++ {
		a := units.DegreesToRadians(half * float64(i) / float64(pairs))
		offsets = append(offsets, a, -a)
	}
	return offsets
}

// refine runs local search around each holed line within the remaining
// deadline, keeping any strictly better neighbour.
func (s *Solver) refine(ctx context.Context, lines []PuttingLine, ball, hole green.Vec3, directDir green.Vec2, dist float64, deadline time.Time) {
	for i := range lines {
		if !lines[i].Holed {
			continue
		}
		for _, dA := range refineAngleDegs {
			for _, f := range refineSpeedFactors {
				if ctx.Err() != nil || !time.Now().Before(deadline) {
					return
				}
				angle := lines[i].AimAngle + units.DegreesToRadians(dA)
				t := s.runTrial(ball, hole, directDir, dist, angle, lines[i].LaunchSpeed*f, lines[i].Strategy)
				if t.result.Holed() && t.confidence > lines[i].Confidence {
					lines[i] = s.buildLine(t, lines[i].Strategy, ball, hole, directDir, dist)
				}
			}
		}
	}
}

func (s *Solver) buildLine(t trial, strategy Strategy, ball, hole green.Vec3, directDir green.Vec2, dist float64) PuttingLine {
	aimDir := directDir.Rotate(t.angle)
	aim2 := ball.Horizontal().Add(aimDir.Scale(dist))
	aim := green.Vec3{X: aim2.X, Y: aim2.Y, Z: hole.Z}

	entry := t.result.EntrySpeed
	if !t.result.Holed() {
		// Non-holing fallback: category reflects the pace at launch
		// scaled down, since no entry speed exists.
		entry = t.speed * 0.5
	}

	return PuttingLine{
		ID:            uuid.NewString(),
		Strategy:      strategy,
		AimPoint:      aim,
		Path:          t.result.Path,
		Break:         measureBreak(t.result.Path, ball, hole),
		SpeedCategory: categorizeSpeed(entry),
		LaunchSpeed:   t.speed,
		AimAngle:      t.angle,
		Confidence:    t.confidence,
		Distance:      dist,
		Holed:         t.result.Holed(),
	}
}
