package solver

import (
	"math"

	"github.com/fairway-data/greenread/internal/green"
	"github.com/fairway-data/greenread/internal/green/sim"
)

// breakClampRatio bounds the reported break magnitude to half the
// straight-line distance, a sanity guard against corrupt slope data.
const breakClampRatio = 0.5

// straightThreshold is the deviation below which a putt reads as
// straight: half a percent of the distance, floored at 1.5 cm.
func straightThreshold(distance float64) float64 {
	t := 0.005 * distance
	if t < 0.015 {
		t = 0.015
	}
	return t
}

// measureBreak finds the maximum perpendicular horizontal deviation of
// the simulated path from the direct ball-to-hole line. Positive
// deviation (left of the line, facing the hole) reports a left break.
func measureBreak(path []sim.PathPoint, ball, hole green.Vec3) BreakInfo {
	line := hole.Horizontal().Sub(ball.Horizontal())
	dist := line.Norm()
	if dist < 1e-9 || len(path) == 0 {
		return BreakInfo{Direction: BreakStraight}
	}
	dir := line.Scale(1 / dist)

	maxDev := 0.0
	for _, p := range path {
		rel := p.Position.Horizontal().Sub(ball.Horizontal())
		dev := dir.Cross(rel)
		if math.Abs(dev) > math.Abs(maxDev) {
			maxDev = dev
		}
	}

	mag := math.Abs(maxDev)
	if limit := breakClampRatio * dist; mag > limit {
		mag = limit
	}
	if mag < straightThreshold(dist) {
		return BreakInfo{Direction: BreakStraight}
	}
	direction := BreakRight
	if maxDev > 0 {
		direction = BreakLeft
	}
	return BreakInfo{Direction: direction, Magnitude: mag}
}
