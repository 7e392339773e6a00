package physics

import (
	"fmt"
	"math"

	"github.com/fairway-data/greenread/internal/green"
	"github.com/fairway-data/greenread/internal/units"
)

// Conditions are the environmental inputs to parameter derivation, as
// delivered by the configuration layer. Angles arrive in radians; the
// config package converts from degrees at the boundary.
type Conditions struct {
	StimpFeet    float64
	Grass        GrassType
	Moisture     float64 // [0,1]
	GrainAngle   float64 // radians, direction the grass lies toward
	TemperatureC float64
	AltitudeM    float64
}

// DefaultConditions is a dry 20 degree bentgrass green at stimp 10.
func DefaultConditions() Conditions {
	return Conditions{
		StimpFeet:    10,
		Grass:        GrassBent,
		Moisture:     0,
		TemperatureC: 20,
	}
}

// Parameters is the immutable coefficient set consumed by the simulator.
// Grain direction is stored as a precomputed unit vector so the hot loop
// never touches trigonometry.
type Parameters struct {
	Friction        float64 // base coefficient mu
	RollDecel       float64 // mu * g * 5/7
	SkidDecel       float64 // mu * g * skid multiplier
	GrainVector     green.Vec2
	GrainFactor     float64
	GrainDeflection float64

	TimeStep  float64
	MaxTime   float64
	StopSpeed float64
}

// Derive computes the physics parameters for a set of green conditions.
// Friction is obtained by inverting the stimpmeter release physics
// against the same two-phase deceleration model the simulator integrates,
// so a flat simulated putt at the release speed reproduces the declared
// stimp distance.
func Derive(cond Conditions) (Parameters, error) {
	profile, ok := grassProfiles[cond.Grass]
	if !ok {
		return Parameters{}, fmt.Errorf("unknown grass type %q", cond.Grass)
	}
	if cond.Moisture < 0 || cond.Moisture > 1 {
		return Parameters{}, fmt.Errorf("moisture %.2f outside [0,1]", cond.Moisture)
	}

	stimp := cond.StimpFeet
	if stimp < MinStimpFeet {
		stimp = MinStimpFeet
	}
	if stimp > MaxStimpFeet {
		stimp = MaxStimpFeet
	}
	stimpDist := units.FeetToMeters(stimp)

	// Energy balance over the declared stimp distance:
	//   v0^2 / 2 = mu * g * EffectiveDecelFactor * D
	mu := StimpReleaseSpeed * StimpReleaseSpeed / (2 * Gravity * EffectiveDecelFactor * stimpDist)

	// Moisture raises friction up to +40%.
	mu *= 1 + 0.4*cond.Moisture

	// Temperature adjusts around the 20C baseline, about 2% per 5C,
	// faster (less friction) when warm, capped at +-15%.
	tempFactor := 1 - 0.004*(cond.TemperatureC-20)
	if tempFactor < 0.85 {
		tempFactor = 0.85
	}
	if tempFactor > 1.15 {
		tempFactor = 1.15
	}
	mu *= tempFactor

	// Thinner air at altitude trims rolling drag marginally.
	altFactor := 1 - 2e-5*cond.AltitudeM
	if altFactor < 0.95 {
		altFactor = 0.95
	}
	mu *= altFactor

	return Parameters{
		Friction:        mu,
		RollDecel:       mu * Gravity * RollingFactor,
		SkidDecel:       mu * Gravity * SkidFrictionMultiplier,
		GrainVector:     green.Vec2{X: math.Cos(cond.GrainAngle), Y: math.Sin(cond.GrainAngle)},
		GrainFactor:     profile.grainFactor,
		GrainDeflection: profile.grainDeflection,
		TimeStep:        DefaultTimeStep,
		MaxTime:         MaxSimulationTime,
		StopSpeed:       StopSpeed,
	}, nil
}

// DistanceForSpeed returns the flat-green roll distance for a launch
// speed under the two-phase model. Strictly increasing in speed.
func (p Parameters) DistanceForSpeed(speed float64) float64 {
	if speed <= 0 {
		return 0
	}
	return speed * speed / (2 * p.Friction * Gravity * EffectiveDecelFactor)
}

// SpeedForDistance is the inverse of DistanceForSpeed.
func (p Parameters) SpeedForDistance(distance float64) float64 {
	if distance <= 0 {
		return 0
	}
	return math.Sqrt(2 * p.Friction * Gravity * EffectiveDecelFactor * distance)
}
