package solver

import (
	"time"

	"github.com/fairway-data/greenread/internal/green"
	"github.com/fairway-data/greenread/internal/green/sim"
	"github.com/fairway-data/greenread/internal/units"
)

// Strategy is a risk profile for the putt. Strategies differ only in how
// far past the hole they aim to roll: a conservative line dies at the
// front edge, an aggressive one drives through the break.
type Strategy string

const (
	StrategyConservative Strategy = "conservative"
	StrategyOptimal      Strategy = "optimal"
	StrategyAggressive   Strategy = "aggressive"
)

// Strategies lists the profiles the solver searches, in solve order. The
// optimal line runs first so the tightest early-exit threshold gets the
// freshest time budget.
func Strategies() []Strategy {
	return []Strategy{StrategyOptimal, StrategyConservative, StrategyAggressive}
}

// OvershootMeters is the target roll-past distance for a strategy.
func (s Strategy) OvershootMeters() float64 {
	switch s {
	case StrategyAggressive:
		return units.InchesToMeters(17)
	case StrategyOptimal:
		return units.InchesToMeters(9)
	default:
		return 0
	}
}

// BreakDirection classifies which way the putt moves relative to the
// straight ball-to-hole line.
type BreakDirection string

const (
	BreakLeft     BreakDirection = "left"
	BreakRight    BreakDirection = "right"
	BreakStraight BreakDirection = "straight"
)

// BreakInfo describes the measured curvature of a solved line.
type BreakInfo struct {
	Direction BreakDirection `json:"direction"`
	Magnitude float64        `json:"magnitude_m"`
}

// SpeedCategory is the coarse pace recommendation shown to the player.
type SpeedCategory string

const (
	SpeedSoft   SpeedCategory = "soft"
	SpeedMedium SpeedCategory = "medium"
	SpeedFirm   SpeedCategory = "firm"
)

func categorizeSpeed(entrySpeed float64) SpeedCategory {
	switch {
	case entrySpeed < 0.5:
		return SpeedSoft
	case entrySpeed < 1.0:
		return SpeedMedium
	default:
		return SpeedFirm
	}
}

// PuttingLine is the solver's answer for one strategy.
type PuttingLine struct {
	ID       string   `json:"id"`
	Strategy Strategy `json:"strategy"`

	// AimPoint is the world position to aim at, not where the ball ends
	// up: it sits at the straight-line distance along the rotated launch
	// direction.
	AimPoint green.Vec3 `json:"aim_point"`

	Path          []sim.PathPoint `json:"path"`
	Break         BreakInfo       `json:"break"`
	SpeedCategory SpeedCategory   `json:"speed_category"`
	LaunchSpeed   float64         `json:"launch_speed"`
	AimAngle      float64         `json:"aim_angle"` // radians off the direct line, positive = left

	// Confidence is the solver's bounded certainty in [0, 0.92].
	Confidence float64 `json:"confidence"`

	// Distance is the straight-line ball-to-hole distance in metres.
	Distance float64 `json:"distance"`

	// Holed distinguishes a true solution from a closest-approach
	// fallback line.
	Holed bool `json:"holed"`
}

// Policy is the tunable search behaviour. These values trade solution
// quality against runtime; they are not physical invariants.
type Policy struct {
	// Deadline bounds the whole solve, refinement included.
	Deadline time.Duration

	// RefinementWindow is carved from the tail of the deadline for local
	// search around the best candidates.
	RefinementWindow time.Duration

	// SpeedMultipliers are applied to each strategy's base launch speed,
	// ordered centre-outward so the most plausible pace runs first.
	SpeedMultipliers []float64

	// AngleSteps is the number of aim offsets searched across the fan.
	AngleSteps int

	// BaseHalfAngleDeg is the fan half-width for a short putt; the fan
	// widens with distance up to MaxHalfAngleDeg.
	BaseHalfAngleDeg float64
	MaxHalfAngleDeg  float64

	// Early-exit confidence thresholds per strategy.
	EarlyExitOptimal float64
	EarlyExitOther   float64
}

// DefaultPolicy returns the tuned production search policy.
func DefaultPolicy() Policy {
	return Policy{
		Deadline:         4 * time.Second,
		RefinementWindow: time.Second,
		SpeedMultipliers: []float64{1.0, 0.96, 1.04, 0.92, 1.08, 1.12},
		AngleSteps:       25,
		BaseHalfAngleDeg: 6,
		MaxHalfAngleDeg:  15,
		EarlyExitOptimal: 0.90,
		EarlyExitOther:   0.85,
	}
}

func (p Policy) earlyExit(s Strategy) float64 {
	if s == StrategyOptimal {
		return p.EarlyExitOptimal
	}
	return p.EarlyExitOther
}
