// Package sim integrates rolling-ball motion over a slope field with a
// fixed time step and detects hole capture. Simulations are deterministic:
// identical inputs produce bit-for-bit identical results.
package sim

import (
	"math"

	"github.com/fairway-data/greenread/internal/green"
	"github.com/fairway-data/greenread/internal/green/physics"
	"github.com/fairway-data/greenread/internal/green/slope"
)

const (
	// pathSampleStride records every Nth integration step.
	pathSampleStride = 4

	// crossingPrecision is the binary-search resolution for the exact
	// hole-entry time, in seconds.
	crossingPrecision = 0.0001

	// boundsMargin extends the surface bounding box before a run is
	// declared out of bounds.
	boundsMargin = 0.5

	// earlyExitTravelFactor prunes runs that have rolled well past their
	// estimate while moving away from the hole.
	earlyExitTravelFactor = 1.5

	// minGrainSpeed floors the speed in the grain deflection term, which
	// scales inversely with speed.
	minGrainSpeed = 0.2
)

// phase is the rolling state machine position.
type phase int

const (
	phaseSkidding phase = iota
	phaseRolling
)

// Simulator runs putts against one surface, slope field and parameter
// set. It holds only immutable inputs plus the shared height cache, so a
// single Simulator may be used from concurrent goroutines as long as the
// cache is read-only, which it is after construction.
type Simulator struct {
	slopes  *slope.Field
	params  physics.Parameters
	heights *green.HeightCache
	bounds  green.Bounds
}

// New creates a simulator. The height cache must have been built from the
// same surface that produced the slope field.
func New(slopes *slope.Field, params physics.Parameters, heights *green.HeightCache, bounds green.Bounds) *Simulator {
	return &Simulator{slopes: slopes, params: params, heights: heights, bounds: bounds}
}

// holeZoneRadius is the capture zone: hole radius less ball radius.
const holeZoneRadius = physics.HoleRadius - physics.BallRadius

// Simulate rolls one ball from start toward dir at the given launch speed
// and reports how the putt ends.
func (s *Simulator) Simulate(ball, hole green.Vec3, dir green.Vec2, speed float64) *Result {
	dir = dir.NormalizeOr(green.Vec2{X: 1})
	if speed < 0 {
		speed = 0
	}

	pos := ball.Horizontal()
	vel := dir.Scale(speed)
	z := ball.Z
	if h, ok := s.heights.HeightAt(pos); ok {
		z = h
	}
	holeXY := hole.Horizontal()

	estRoll := s.params.DistanceForSpeed(speed)
	skidUntil := physics.SkidDistanceRatio * estRoll

	res := &Result{ClosestApproach: pos.Distance(holeXY)}
	res.Path = append(res.Path, PathPoint{Position: green.Vec3From(pos, z), Velocity: vel, Time: 0})

	traveled := 0.0
	enteredZone := false
	dt := s.params.TimeStep

	step := 0
	for t := 0.0; t < s.params.MaxTime; t += dt {
		if vel.Norm() < s.params.StopSpeed {
			return s.finish(res, pos, z, vel, t, enteredZone, StatusStopped)
		}

		grad := s.gradientAt(pos)
		ph := phaseSkidding
		if traveled >= skidUntil {
			ph = phaseRolling
		}

		newPos, newVel := rk4Step(pos, vel, dt, func(v green.Vec2) green.Vec2 {
			return s.acceleration(v, grad, ph)
		})

		// A friction-only direction flip is unphysical: friction stops a
		// ball, it does not push it back. Reversal is allowed only when
		// the slope at the new position drives the new direction.
		if newVel.Dot(vel) < 0 {
			downhill := s.gradientAt(newPos).Scale(-1)
			if downhill.Norm() < 1e-9 || downhill.Normalize().Dot(newVel) <= 0 {
				newVel = green.Vec2{}
			}
		}

		traveled += newPos.Distance(pos)

		// Hole interaction. Track closest approach every step; inside
		// the capture zone, evaluate the speed-dependent capture test.
		segClosest := closestPointDistance(pos, newPos, holeXY)
		if segClosest < res.ClosestApproach {
			res.ClosestApproach = segClosest
		}
		if segClosest <= holeZoneRadius {
			entrySpeed := newVel.Norm()
			if physics.CanCapture(entrySpeed, segClosest) {
				tEntry := s.captureTime(pos, newPos, holeXY, t, dt)
				holeZ := z
				if h, ok := s.heights.HeightAt(holeXY); ok {
					holeZ = h
				}
				res.Path = append(res.Path, PathPoint{
					Position: green.Vec3From(holeXY, holeZ),
					Velocity: newVel,
					Time:     tEntry,
				})
				res.FinalPosition = green.Vec3From(holeXY, holeZ)
				res.Status = StatusHoled
				res.EntrySpeed = entrySpeed
				res.EntryOffset = segClosest
				res.ClosestApproach = 0
				return res
			}
			enteredZone = true
		}

		pos = newPos
		vel = newVel

		if !s.bounds.ContainsXY(green.Vec3From(pos, z), boundsMargin) {
			return s.finish(res, pos, z, vel, t+dt, enteredZone, StatusOutOfBounds)
		}

		// Re-project onto the surface: the ball rolls, it does not
		// bounce, so the vertical component of motion is whatever the
		// terrain dictates.
		if h, ok := s.heights.HeightAt(pos); ok {
			z = h
		}

		// Prune runs that have overshot their flat-green estimate and
		// are rolling away with no chance of capture.
		if traveled > earlyExitTravelFactor*estRoll && !enteredZone {
			toHole := holeXY.Sub(pos)
			if vel.Dot(toHole) < 0 {
				return s.finish(res, pos, z, vel, t+dt, false, StatusStopped)
			}
		}

		step++
		if step%pathSampleStride == 0 {
			res.Path = append(res.Path, PathPoint{Position: green.Vec3From(pos, z), Velocity: vel, Time: t + dt})
		}
	}

	return s.finish(res, pos, z, vel, s.params.MaxTime, enteredZone, StatusTimeout)
}

// finish seals a non-holed result, downgrading a stop inside the rim's
// history to a lip-out.
func (s *Simulator) finish(res *Result, pos green.Vec2, z float64, vel green.Vec2, t float64, enteredZone bool, status Status) *Result {
	if status == StatusStopped && enteredZone {
		status = StatusLipOut
	}
	res.Status = status
	res.LippedOut = enteredZone && status != StatusHoled
	res.FinalPosition = green.Vec3From(pos, z)
	res.Path = append(res.Path, PathPoint{Position: res.FinalPosition, Velocity: vel, Time: t})
	return res
}

// gradientAt reads the uphill gradient under a position, zero when the
// field has nothing to say.
func (s *Simulator) gradientAt(p green.Vec2) green.Vec2 {
	sample, ok := s.slopes.SlopeAt(p)
	if !ok {
		return green.Vec2{}
	}
	return sample.Gradient
}

// acceleration sums the three forces acting on the rolling ball for a
// fixed slope sample: gravity along the slope, friction opposing travel,
// and the lateral grain push.
func (s *Simulator) acceleration(vel, grad green.Vec2, ph phase) green.Vec2 {
	speed := vel.Norm()
	var acc green.Vec2

	// Gravity along the slope, in the downhill direction. Pure rolling
	// diverts part of the work into spin, scaling the translational
	// component by 5/7.
	gradMag := grad.Norm()
	if gradMag > 1e-9 {
		sinTheta := gradMag / math.Sqrt(1+gradMag*gradMag)
		g := physics.Gravity * sinTheta
		if ph == phaseRolling {
			g *= physics.RollingFactor
		}
		acc = acc.Add(grad.Scale(-g / gradMag))
	}

	if speed > 1e-9 {
		travel := vel.Scale(1 / speed)

		// Friction opposes travel. Grain biases the magnitude: rolling
		// down-grain is faster, into the grain slower.
		var friction float64
		if ph == phaseSkidding {
			friction = s.params.SkidDecel
		} else {
			friction = s.params.RollDecel
		}
		friction *= 1 - s.params.GrainFactor*travel.Dot(s.params.GrainVector)
		acc = acc.Add(travel.Scale(-friction))

		// Lateral grain deflection: the component of the grain vector
		// perpendicular to travel pushes the ball sideways, strongest
		// across the grain and at low speed.
		perpGrain := s.params.GrainVector.Sub(travel.Scale(travel.Dot(s.params.GrainVector)))
		grainSpeed := speed
		if grainSpeed < minGrainSpeed {
			grainSpeed = minGrainSpeed
		}
		acc = acc.Add(perpGrain.Scale(s.params.GrainDeflection / grainSpeed))
	}

	return acc
}

// rk4Step advances position and velocity one time step with 4th-order
// Runge-Kutta. The velocity-dependent forces are re-evaluated at each of
// the four sub-stages; the slope sample is held fixed across them, since
// slope varies negligibly over a ~2 mm sub-step.
func rk4Step(pos, vel green.Vec2, dt float64, accel func(green.Vec2) green.Vec2) (green.Vec2, green.Vec2) {
	k1v := accel(vel)
	k1p := vel

	v2 := vel.Add(k1v.Scale(dt / 2))
	k2v := accel(v2)
	k2p := v2

	v3 := vel.Add(k2v.Scale(dt / 2))
	k3v := accel(v3)
	k3p := v3

	v4 := vel.Add(k3v.Scale(dt))
	k4v := accel(v4)
	k4p := v4

	newPos := pos.Add(k1p.Add(k2p.Scale(2)).Add(k3p.Scale(2)).Add(k4p).Scale(dt / 6))
	newVel := vel.Add(k1v.Add(k2v.Scale(2)).Add(k3v.Scale(2)).Add(k4v).Scale(dt / 6))
	return newPos, newVel
}

// closestPointDistance is the minimum distance from the hole centre to
// the segment travelled this step.
func closestPointDistance(a, b, hole green.Vec2) float64 {
	ab := b.Sub(a)
	den := ab.Dot(ab)
	if den < 1e-12 {
		return a.Distance(hole)
	}
	t := hole.Sub(a).Dot(ab) / den
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return a.Add(ab.Scale(t)).Distance(hole)
}

// captureTime locates the moment the ball first reaches the rim by binary
// search between the previous and current step, interpolating the step
// segment linearly.
func (s *Simulator) captureTime(prev, cur, hole green.Vec2, t, dt float64) float64 {
	lo, hi := 0.0, 1.0
	for hi-lo > crossingPrecision/dt {
		mid := (lo + hi) / 2
		p := prev.Add(cur.Sub(prev).Scale(mid))
		if p.Distance(hole) <= holeZoneRadius {
			hi = mid
		} else {
			lo = mid
		}
	}
	return t + hi*dt
}
