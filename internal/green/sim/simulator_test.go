package sim

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fairway-data/greenread/internal/green"
	"github.com/fairway-data/greenread/internal/green/greentest"
	"github.com/fairway-data/greenread/internal/green/physics"
	"github.com/fairway-data/greenread/internal/green/slope"
)

func newTestSimulator(t *testing.T, h greentest.HeightFunc) (*Simulator, physics.Parameters) {
	t.Helper()
	spec := greentest.GridSpec{SizeMeters: 6, StepMeters: 0.15}
	surface := greentest.Surface(spec, h)
	field := slope.Build(surface)
	cache := green.NewHeightCache(surface)
	params, err := physics.Derive(physics.DefaultConditions())
	if err != nil {
		t.Fatalf("derive parameters: %v", err)
	}
	return New(field, params, cache, surface.Bounds), params
}

func TestSimulateFlatStraightPutt(t *testing.T) {
	simr, params := newTestSimulator(t, greentest.Flat(0))

	ball := green.Vec3{X: -1.5, Y: 0, Z: physics.BallRadius}
	hole := green.Vec3{X: 1.5, Y: 0}

	// Launch hard enough to reach a touch past the hole.
	speed := params.SpeedForDistance(3.15)
	res := simr.Simulate(ball, hole, green.Vec2{X: 1}, speed)

	if !res.Holed() {
		t.Fatalf("status = %s (closest %.3f), want holed", res.Status, res.ClosestApproach)
	}
	if res.EntrySpeed <= 0 || res.EntrySpeed >= physics.MaxCaptureSpeed {
		t.Errorf("entry speed = %.3f, want in (0, %.2f)", res.EntrySpeed, physics.MaxCaptureSpeed)
	}
	if res.ClosestApproach != 0 {
		t.Errorf("closest approach = %.4f, want 0 on capture", res.ClosestApproach)
	}
	if len(res.Path) < 10 {
		t.Errorf("path has %d points, want a sampled trajectory", len(res.Path))
	}
	if res.Path[0].Position.Horizontal().Distance(ball.Horizontal()) > 1e-9 {
		t.Errorf("path starts at %v, want ball position", res.Path[0].Position)
	}
}

func TestSimulateDeterministic(t *testing.T) {
	simr, params := newTestSimulator(t, greentest.Undulating(greentest.Tilted(2, green.Vec2{Y: 1}), 0.004, 2.5))

	ball := green.Vec3{X: -1.5, Y: -0.5}
	hole := green.Vec3{X: 1.2, Y: 0.4}
	speed := params.SpeedForDistance(3.2)

	a := simr.Simulate(ball, hole, green.Vec2{X: 0.95, Y: 0.3}, speed)
	b := simr.Simulate(ball, hole, green.Vec2{X: 0.95, Y: 0.3}, speed)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("identical inputs produced different results (-first +second):\n%s", diff)
	}
}

func TestSimulateStopsShort(t *testing.T) {
	simr, params := newTestSimulator(t, greentest.Flat(0))

	ball := green.Vec3{X: -1.5, Y: 0}
	hole := green.Vec3{X: 1.5, Y: 0}
	speed := params.SpeedForDistance(1.5)

	res := simr.Simulate(ball, hole, green.Vec2{X: 1}, speed)
	if res.Holed() {
		t.Fatal("half-pace putt should not hole")
	}
	if res.Status != StatusStopped {
		t.Errorf("status = %s, want stopped", res.Status)
	}
	if res.LippedOut {
		t.Error("ball never reached the hole, lip-out flag should be clear")
	}
	if res.ClosestApproach < 1.0 {
		t.Errorf("closest approach = %.3f, want well short of the hole", res.ClosestApproach)
	}
}

func TestSimulateBlowByLipsOut(t *testing.T) {
	simr, params := newTestSimulator(t, greentest.Flat(0))

	ball := green.Vec3{X: -1.5, Y: 0}
	hole := green.Vec3{X: 1.5, Y: 0}

	// Way too much pace: the ball crosses the rim above the capture
	// speed and keeps going.
	speed := params.SpeedForDistance(10)
	res := simr.Simulate(ball, hole, green.Vec2{X: 1}, speed)

	if res.Holed() {
		t.Fatalf("entry at %.2f m/s should never capture", res.EntrySpeed)
	}
	if !res.LippedOut {
		t.Error("ball crossed the rim, want lipped out")
	}
	if res.Status != StatusOutOfBounds {
		t.Errorf("status = %s, want out_of_bounds after running off the patch", res.Status)
	}
}

func TestSimulateDeadWeightCapture(t *testing.T) {
	simr, params := newTestSimulator(t, greentest.Flat(0))

	ball := green.Vec3{X: -1.5, Y: 0}
	hole := green.Vec3{X: 1.5, Y: 0}

	// Dying pace: barely past the front edge.
	speed := params.SpeedForDistance(3.02)
	res := simr.Simulate(ball, hole, green.Vec2{X: 1}, speed)

	if !res.Holed() {
		t.Fatalf("status = %s (closest %.3f), want dead-weight capture", res.Status, res.ClosestApproach)
	}
	if res.EntrySpeed > physics.SimpleCaptureSpeed {
		t.Errorf("entry speed = %.3f, want below the free-fall threshold %.2f",
			res.EntrySpeed, physics.SimpleCaptureSpeed)
	}
}

func TestSimulateStimpRollDistance(t *testing.T) {
	// A ball released at the stimpmeter speed on a flat stimp-10 green
	// rolls the declared distance. Grain biases a single run, so average
	// a down-grain and an into-grain roll.
	simr, _ := newTestSimulator(t, greentest.Flat(0))
	hole := green.Vec3{Y: 2.5} // away from both rolls

	down := simr.Simulate(green.Vec3{X: -2.2}, hole, green.Vec2{X: 1}, physics.StimpReleaseSpeed)
	into := simr.Simulate(green.Vec3{X: 2.2}, hole, green.Vec2{X: -1}, physics.StimpReleaseSpeed)
	if down.Status != StatusStopped || into.Status != StatusStopped {
		t.Fatalf("statuses = %s, %s, want both stopped", down.Status, into.Status)
	}

	d1 := down.FinalPosition.X - (-2.2)
	d2 := 2.2 - into.FinalPosition.X
	mean := (d1 + d2) / 2

	want := 10 * 0.3048
	if math.Abs(mean-want)/want > 0.02 {
		t.Errorf("mean roll = %.3fm (%.3f down, %.3f into), want %.3fm within 2%%", mean, d1, d2, want)
	}
}

func TestSimulateUphillStopsShorterThanDownhill(t *testing.T) {
	simr, _ := newTestSimulator(t, greentest.Tilted(3, green.Vec2{X: 1}))

	start := green.Vec3{X: 0.5, Y: 0}
	hole := green.Vec3{X: -2.5, Y: 0} // downhill of the start
	const speed = 1.2

	up := simr.Simulate(start, hole, green.Vec2{X: 1}, speed)
	down := simr.Simulate(start, hole, green.Vec2{X: -1}, speed)

	upTravel := up.FinalPosition.Horizontal().Distance(start.Horizontal())
	downTravel := down.FinalPosition.Horizontal().Distance(start.Horizontal())
	if upTravel >= downTravel {
		t.Errorf("uphill travel %.3f >= downhill travel %.3f", upTravel, downTravel)
	}
}

func TestSimulateBreaksDownSlope(t *testing.T) {
	// Uphill is +Y; a putt hit along +X must drift toward -Y.
	simr, _ := newTestSimulator(t, greentest.Tilted(3, green.Vec2{Y: 1}))

	ball := green.Vec3{X: -1.5, Y: 0}
	hole := green.Vec3{X: 2.5, Y: 0}

	res := simr.Simulate(ball, hole, green.Vec2{X: 1}, 1.5)
	if res.Holed() {
		t.Fatal("putt should run out of pace before the hole")
	}
	if res.FinalPosition.Y > -0.05 {
		t.Errorf("final Y = %.3f, want drift below -0.05 down the slope", res.FinalPosition.Y)
	}
}

func TestSimulateZeroSpeed(t *testing.T) {
	simr, _ := newTestSimulator(t, greentest.Flat(0))

	ball := green.Vec3{X: 0, Y: 0}
	hole := green.Vec3{X: 2, Y: 0}

	res := simr.Simulate(ball, hole, green.Vec2{X: 1}, 0)
	if res.Status != StatusStopped {
		t.Errorf("status = %s, want stopped", res.Status)
	}
	if res.FinalPosition.Horizontal().Distance(ball.Horizontal()) > 1e-9 {
		t.Errorf("ball moved to %v from a standstill", res.FinalPosition)
	}
	if math.Abs(res.ClosestApproach-2) > 1e-9 {
		t.Errorf("closest approach = %.3f, want 2", res.ClosestApproach)
	}
}
