package physics

// EffectiveCaptureRadius returns the centre-offset within which the hole
// can capture a ball arriving at the given speed. The usable radius
// shrinks quadratically with speed: a dead-weight ball can fall in from
// the full rim, a firm one only through the middle.
func EffectiveCaptureRadius(speed float64) float64 {
	full := HoleRadius - BallRadius
	if speed <= 0 {
		return full
	}
	if speed >= MaxCaptureSpeed {
		return 0
	}
	ratio := speed / MaxCaptureSpeed
	return full * (1 - ratio*ratio)
}

// CanCapture reports whether a ball entering the hole zone at the given
// speed and centre offset physically drops.
func CanCapture(speed, offset float64) bool {
	if speed >= MaxCaptureSpeed || speed < 0 {
		return false
	}
	if offset < 0 {
		return false
	}
	return offset < EffectiveCaptureRadius(speed)
}

// CaptureProbability estimates the chance a ball at the given entry speed
// and offset holes out, in [0,1]. Below the free-fall threshold any entry
// inside the effective radius drops; above it the probability decays with
// speed as lip-outs become possible.
func CaptureProbability(speed, offset float64) float64 {
	if !CanCapture(speed, offset) {
		return 0
	}
	effR := EffectiveCaptureRadius(speed)
	offsetRatio := offset / effR
	p := 1 - offsetRatio*offsetRatio

	if speed > SimpleCaptureSpeed {
		// Linear decay from certain capture at the free-fall threshold
		// to zero at the maximum capture speed.
		p *= 1 - (speed-SimpleCaptureSpeed)/(MaxCaptureSpeed-SimpleCaptureSpeed)
	}
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
