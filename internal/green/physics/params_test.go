package physics

import (
	"math"
	"testing"

	"github.com/fairway-data/greenread/internal/units"
)

func TestDeriveStimpRoundTrip(t *testing.T) {
	// The friction inversion and the flat-green roll model must agree:
	// a ball released at stimpmeter speed rolls the declared stimp
	// distance, within 2%, for every supported grass and stimp.
	for _, grass := range GrassTypes() {
		for stimp := MinStimpFeet; stimp <= MaxStimpFeet; stimp++ {
			cond := DefaultConditions()
			cond.Grass = grass
			cond.StimpFeet = stimp

			params, err := Derive(cond)
			if err != nil {
				t.Fatalf("Derive(%s, stimp %.0f): %v", grass, stimp, err)
			}

			got := params.DistanceForSpeed(StimpReleaseSpeed)
			want := units.FeetToMeters(stimp)
			if rel := math.Abs(got-want) / want; rel > 0.02 {
				t.Errorf("grass %s stimp %.0f: roll distance %.3fm, want %.3fm (%.1f%% off)",
					grass, stimp, got, want, rel*100)
			}
		}
	}
}

func TestDeriveClampsStimp(t *testing.T) {
	low := DefaultConditions()
	low.StimpFeet = 3
	min := DefaultConditions()
	min.StimpFeet = MinStimpFeet

	pLow, err := Derive(low)
	if err != nil {
		t.Fatal(err)
	}
	pMin, err := Derive(min)
	if err != nil {
		t.Fatal(err)
	}
	if pLow.Friction != pMin.Friction {
		t.Errorf("stimp 3 friction %.5f, want clamped to stimp %.0f friction %.5f",
			pLow.Friction, MinStimpFeet, pMin.Friction)
	}

	high := DefaultConditions()
	high.StimpFeet = 25
	max := DefaultConditions()
	max.StimpFeet = MaxStimpFeet

	pHigh, err := Derive(high)
	if err != nil {
		t.Fatal(err)
	}
	pMax, err := Derive(max)
	if err != nil {
		t.Fatal(err)
	}
	if pHigh.Friction != pMax.Friction {
		t.Errorf("stimp 25 friction %.5f, want clamped to stimp %.0f friction %.5f",
			pHigh.Friction, MaxStimpFeet, pMax.Friction)
	}
}

func TestDeriveRejectsBadInput(t *testing.T) {
	bad := DefaultConditions()
	bad.Grass = "astroturf"
	if _, err := Derive(bad); err == nil {
		t.Error("expected error for unknown grass")
	}

	wet := DefaultConditions()
	wet.Moisture = 1.5
	if _, err := Derive(wet); err == nil {
		t.Error("expected error for moisture > 1")
	}
}

func TestMoistureRaisesFriction(t *testing.T) {
	dry, err := Derive(DefaultConditions())
	if err != nil {
		t.Fatal(err)
	}

	soaked := DefaultConditions()
	soaked.Moisture = 1
	wet, err := Derive(soaked)
	if err != nil {
		t.Fatal(err)
	}

	ratio := wet.Friction / dry.Friction
	if math.Abs(ratio-1.4) > 1e-9 {
		t.Errorf("saturated friction ratio %.4f, want 1.4", ratio)
	}
}

func TestTemperatureAdjustment(t *testing.T) {
	base, _ := Derive(DefaultConditions())

	hot := DefaultConditions()
	hot.TemperatureC = 35
	pHot, _ := Derive(hot)
	if pHot.Friction >= base.Friction {
		t.Errorf("hot green friction %.5f, want below baseline %.5f", pHot.Friction, base.Friction)
	}

	cold := DefaultConditions()
	cold.TemperatureC = 5
	pCold, _ := Derive(cold)
	if pCold.Friction <= base.Friction {
		t.Errorf("cold green friction %.5f, want above baseline %.5f", pCold.Friction, base.Friction)
	}

	// Extreme cold caps at +15%.
	freezing := DefaultConditions()
	freezing.TemperatureC = -100
	pFreeze, _ := Derive(freezing)
	if ratio := pFreeze.Friction / base.Friction; ratio > 1.15+1e-9 {
		t.Errorf("freezing friction ratio %.4f, want capped at 1.15", ratio)
	}
}

func TestAltitudeCap(t *testing.T) {
	base, _ := Derive(DefaultConditions())

	everest := DefaultConditions()
	everest.AltitudeM = 8000
	pAlt, _ := Derive(everest)

	ratio := pAlt.Friction / base.Friction
	if ratio < 0.95-1e-9 {
		t.Errorf("altitude friction ratio %.4f, want floored at 0.95", ratio)
	}
	if ratio >= 1 {
		t.Errorf("altitude friction ratio %.4f, want below 1", ratio)
	}
}

func TestSpeedDistanceInverse(t *testing.T) {
	params, err := Derive(DefaultConditions())
	if err != nil {
		t.Fatal(err)
	}

	for _, d := range []float64{0.5, 1, 3, 10, 25} {
		v := params.SpeedForDistance(d)
		back := params.DistanceForSpeed(v)
		if math.Abs(back-d) > 1e-9 {
			t.Errorf("distance %.2fm -> speed %.3f -> distance %.6fm", d, v, back)
		}
	}

	// Strictly increasing.
	prev := 0.0
	for v := 0.1; v <= 4; v += 0.1 {
		d := params.DistanceForSpeed(v)
		if d <= prev {
			t.Fatalf("DistanceForSpeed not increasing at v=%.1f", v)
		}
		prev = d
	}

	if params.DistanceForSpeed(0) != 0 {
		t.Error("zero speed should roll zero distance")
	}
	if params.SpeedForDistance(-1) != 0 {
		t.Error("negative distance should need zero speed")
	}
}

func TestGrainVector(t *testing.T) {
	cond := DefaultConditions()
	cond.GrainAngle = math.Pi / 2
	params, err := Derive(cond)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(params.GrainVector.X) > 1e-12 || math.Abs(params.GrainVector.Y-1) > 1e-12 {
		t.Errorf("grain vector for pi/2 = (%.4f, %.4f), want (0, 1)", params.GrainVector.X, params.GrainVector.Y)
	}
}

func TestEffectiveDecelFactorBlend(t *testing.T) {
	want := SkidDistanceRatio*SkidFrictionMultiplier + (1-SkidDistanceRatio)*RollingFactor
	if math.Abs(EffectiveDecelFactor-want) > 1e-15 {
		t.Fatalf("EffectiveDecelFactor %.9f does not match phase blend %.9f", EffectiveDecelFactor, want)
	}
}
