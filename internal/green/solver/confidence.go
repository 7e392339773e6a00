package solver

import (
	"math"

	"github.com/fairway-data/greenread/internal/green"
	"github.com/fairway-data/greenread/internal/green/physics"
	"github.com/fairway-data/greenread/internal/green/sim"
)

// maxConfidence bounds every reported score: the model never claims more
// certainty than the capture data supports.
const maxConfidence = 0.92

// Confidence factor weights. Each factor is clamped to [0,1] before
// weighting so no single term can dominate beyond its share.
const (
	weightEntryQuality = 0.30
	weightSpeedTarget  = 0.25
	weightStraightness = 0.25
	weightDistance     = 0.20

	penaltyLipOut   = 0.20
	penaltyHotEntry = 0.15
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// scoreHoled computes the confidence of a holing trial.
func scoreHoled(res *sim.Result, strategy Strategy, params physics.Parameters, ball, hole green.Vec3) float64 {
	dist := ball.HorizontalDistance(hole)

	entryQuality := clamp01(physics.CaptureProbability(res.EntrySpeed, res.EntryOffset))

	// How close the entry pace landed to the strategy's target: the
	// speed that would roll exactly the overshoot distance past the cup,
	// floored at the ideal drop-in pace.
	targetEntry := math.Max(physics.OptimalEntrySpeed, params.SpeedForDistance(strategy.OvershootMeters()))
	speedScore := clamp01(1 - math.Abs(res.EntrySpeed-targetEntry)/1.0)

	// Lateral deviation ratio from the direct line; a putt that swings
	// half its length scores zero here.
	straightScore := 1.0
	if dist > 1e-9 {
		info := measureBreak(res.Path, ball, hole)
		straightScore = clamp01(1 - 2*info.Magnitude/dist)
	}

	// Long putts carry more capture noise and surface uncertainty.
	distScore := clamp01(1 - math.Max(0, dist-5)/15)

	conf := weightEntryQuality*entryQuality +
		weightSpeedTarget*speedScore +
		weightStraightness*straightScore +
		weightDistance*distScore

	if res.LippedOut {
		conf -= penaltyLipOut
	}
	if res.EntrySpeed > physics.SimpleCaptureSpeed {
		conf -= penaltyHotEntry
	}

	if conf < 0 {
		return 0
	}
	if conf > maxConfidence {
		return maxConfidence
	}
	return conf
}

// maxFallbackConfidence caps the score of a closest-approach result that
// never holed.
const maxFallbackConfidence = 0.40

// scoreFallback derives a deliberately low confidence from the residual
// distance of the best non-holing trial.
func scoreFallback(closestApproach float64) float64 {
	conf := maxFallbackConfidence * (1 - closestApproach/2.0)
	if conf < 0 {
		return 0
	}
	if conf > maxFallbackConfidence {
		return maxFallbackConfidence
	}
	return conf
}
