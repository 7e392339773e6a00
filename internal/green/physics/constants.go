// Package physics derives rolling-ball coefficients from green conditions
// and holds the constants shared between the parameter derivation and the
// simulator. The stimpmeter inversion in this package and the two-phase
// deceleration model in the sim package MUST agree on SkidDistanceRatio,
// SkidFrictionMultiplier and RollingFactor; both read them from here and a
// consistency test locks the round trip.
package physics

// Regulation equipment geometry (metres, kilograms).
const (
	BallMass   = 0.04593
	BallRadius = 0.021335
	HoleRadius = 0.054
	HoleDepth  = 0.1016
)

// BallMomentOfInertia is the rigid-sphere moment of inertia (2/5)mr^2.
const BallMomentOfInertia = 0.4 * BallMass * BallRadius * BallRadius

// Gravity is standard gravitational acceleration in m/s^2.
const Gravity = 9.81

// Two-phase deceleration model. After impact the ball skids before pure
// rolling is established; the skid phase covers a fixed fraction of the
// total roll distance at elevated friction, the rolling phase decelerates
// at the rigid-sphere factor 5/7.
const (
	RollingFactor          = 5.0 / 7.0
	SkidDistanceRatio      = 0.20
	SkidFrictionMultiplier = 1.4
)

// EffectiveDecelFactor is the distance-weighted blend of the two phases.
// A ball launched at v on a flat green stops after
// v^2 / (2 * mu * g * EffectiveDecelFactor) metres.
const EffectiveDecelFactor = SkidDistanceRatio*SkidFrictionMultiplier + (1-SkidDistanceRatio)*RollingFactor

// StimpReleaseSpeed is the speed at which a ball leaves the stimpmeter
// ramp, fixed by the device geometry.
const StimpReleaseSpeed = 1.83

// Integration defaults.
const (
	DefaultTimeStep   = 0.005 // seconds
	MaxSimulationTime = 8.0   // seconds
	StopSpeed         = 0.01  // m/s, below this the ball is stationary
)

// Hole capture thresholds from published short-game research.
const (
	// MaxCaptureSpeed is the fastest entry speed at which the hole can
	// physically capture a ball, dead-centre entry.
	MaxCaptureSpeed = 1.63

	// SimpleCaptureSpeed is the free-fall threshold: at or below it the
	// ball drops whenever it crosses the rim.
	SimpleCaptureSpeed = 1.31

	// OptimalEntrySpeed is the entry speed that maximises the effective
	// capture radius while still holding its line.
	OptimalEntrySpeed = 0.76
)

// Stimpmeter reading bounds, in feet. Readings outside this range are
// clamped during derivation.
const (
	MinStimpFeet = 6.0
	MaxStimpFeet = 14.0
)
