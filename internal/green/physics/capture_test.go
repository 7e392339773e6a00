package physics

import "testing"

func TestEffectiveCaptureRadius(t *testing.T) {
	full := HoleRadius - BallRadius

	if got := EffectiveCaptureRadius(0); got != full {
		t.Errorf("radius at rest = %.5f, want full %.5f", got, full)
	}
	if got := EffectiveCaptureRadius(MaxCaptureSpeed); got != 0 {
		t.Errorf("radius at max speed = %.5f, want 0", got)
	}
	if got := EffectiveCaptureRadius(2.5); got != 0 {
		t.Errorf("radius beyond max speed = %.5f, want 0", got)
	}

	// Strictly shrinking with speed.
	prev := full + 1
	for v := 0.0; v < MaxCaptureSpeed; v += 0.1 {
		r := EffectiveCaptureRadius(v)
		if r >= prev {
			t.Fatalf("radius not shrinking at v=%.1f", v)
		}
		prev = r
	}
}

func TestCanCapture(t *testing.T) {
	tests := []struct {
		name   string
		speed  float64
		offset float64
		want   bool
	}{
		{"dead weight centre", 0.1, 0, true},
		{"dead weight near rim", 0.05, 0.03, true},
		{"optimal pace centre", OptimalEntrySpeed, 0, true},
		{"too fast centre", MaxCaptureSpeed, 0, false},
		{"way too fast", 3.0, 0, false},
		{"fast and offset", 1.5, 0.02, false},
		{"negative speed", -0.5, 0, false},
		{"negative offset", 0.5, -0.01, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanCapture(tt.speed, tt.offset); got != tt.want {
				t.Errorf("CanCapture(%.2f, %.3f) = %v, want %v", tt.speed, tt.offset, got, tt.want)
			}
		})
	}
}

func TestCaptureProbability(t *testing.T) {
	// Slow and centred is certain.
	if p := CaptureProbability(0.3, 0); p != 1 {
		t.Errorf("slow centred probability = %.3f, want 1", p)
	}

	// Decays with offset at fixed speed.
	if CaptureProbability(0.5, 0.02) >= CaptureProbability(0.5, 0.01) {
		t.Error("probability should fall with offset")
	}

	// Decays with speed above the free-fall threshold.
	if CaptureProbability(1.5, 0) >= CaptureProbability(1.35, 0) {
		t.Error("probability should fall with speed above SimpleCaptureSpeed")
	}

	// Zero outside the capture envelope.
	if p := CaptureProbability(MaxCaptureSpeed+0.1, 0); p != 0 {
		t.Errorf("probability past max speed = %.3f, want 0", p)
	}
}
