package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fairway-data/greenread/internal/green/physics"
	"github.com/fairway-data/greenread/internal/units"
)

func TestEmptyTuningConfigDefaults(t *testing.T) {
	cfg := EmptyTuningConfig()

	// Getter methods fall back to defaults when fields are nil
	if cfg.GetStimpFeet() != 10 {
		t.Errorf("GetStimpFeet() = %f, want 10", cfg.GetStimpFeet())
	}
	if cfg.GetGrass() != physics.GrassBent {
		t.Errorf("GetGrass() = %v, want bent", cfg.GetGrass())
	}
	if cfg.GetSolveDeadline() != 4*time.Second {
		t.Errorf("GetSolveDeadline() = %v, want 4s", cfg.GetSolveDeadline())
	}
	if cfg.GetRefinementWindow() != time.Second {
		t.Errorf("GetRefinementWindow() = %v, want 1s", cfg.GetRefinementWindow())
	}
	if cfg.GetKeepUnclassified() != false {
		t.Errorf("GetKeepUnclassified() = %v, want false", cfg.GetKeepUnclassified())
	}
}

func TestLoadTuningConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	testJSON := `{
  "stimp_feet": 12,
  "grass": "bermuda",
  "moisture": 0.3,
  "grain_angle_deg": 90,
  "solve_deadline": "2s",
  "angle_steps": 11
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.StimpFeet == nil || *cfg.StimpFeet != 12 {
		t.Errorf("Expected StimpFeet 12, got %v", cfg.StimpFeet)
	}
	if cfg.Grass == nil || *cfg.Grass != "bermuda" {
		t.Errorf("Expected Grass 'bermuda', got %v", cfg.Grass)
	}
	if cfg.GetSolveDeadline() != 2*time.Second {
		t.Errorf("GetSolveDeadline() = %v, want 2s", cfg.GetSolveDeadline())
	}

	// Unset fields keep defaults
	if cfg.GetRefinementWindow() != time.Second {
		t.Errorf("GetRefinementWindow() = %v, want 1s", cfg.GetRefinementWindow())
	}
}

func TestLoadTuningConfigRejectsNonJSON(t *testing.T) {
	if _, err := LoadTuningConfig("tuning.yaml"); err == nil {
		t.Error("Expected error for non-JSON extension")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *TuningConfig
		wantErr bool
	}{
		{"empty is valid", EmptyTuningConfig(), false},
		{"valid stimp", &TuningConfig{StimpFeet: ptrFloat64(9.5)}, false},
		{"negative stimp", &TuningConfig{StimpFeet: ptrFloat64(-1)}, true},
		{"absurd stimp", &TuningConfig{StimpFeet: ptrFloat64(25)}, true},
		{"unknown grass", &TuningConfig{Grass: ptrString("astroturf")}, true},
		{"moisture above 1", &TuningConfig{Moisture: ptrFloat64(1.5)}, true},
		{"bad deadline", &TuningConfig{SolveDeadline: ptrString("soon")}, true},
		{"zero angle steps", &TuningConfig{AngleSteps: ptrInt(0)}, true},
		{"negative multiplier", &TuningConfig{SpeedMultipliers: []float64{1.0, -0.5}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConditionsConversion(t *testing.T) {
	cfg := &TuningConfig{
		StimpFeet:     ptrFloat64(11),
		Grass:         ptrString("poa"),
		Moisture:      ptrFloat64(0.2),
		GrainAngleDeg: ptrFloat64(180),
	}

	cond := cfg.Conditions()
	if cond.StimpFeet != 11 {
		t.Errorf("StimpFeet = %f, want 11", cond.StimpFeet)
	}
	if cond.Grass != physics.GrassPoa {
		t.Errorf("Grass = %v, want poa", cond.Grass)
	}
	want := units.DegreesToRadians(180)
	if diff := cond.GrainAngle - want; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("GrainAngle = %f, want %f", cond.GrainAngle, want)
	}
}

func TestPolicyConversion(t *testing.T) {
	cfg := &TuningConfig{
		SolveDeadline:  ptrString("500ms"),
		AngleSteps:     ptrInt(9),
		EarlyExitOther: ptrFloat64(0.7),
	}

	p := cfg.Policy()
	if p.Deadline != 500*time.Millisecond {
		t.Errorf("Deadline = %v, want 500ms", p.Deadline)
	}
	if p.AngleSteps != 9 {
		t.Errorf("AngleSteps = %d, want 9", p.AngleSteps)
	}
	if p.EarlyExitOther != 0.7 {
		t.Errorf("EarlyExitOther = %f, want 0.7", p.EarlyExitOther)
	}
	// Unset fields keep production defaults
	if p.BaseHalfAngleDeg != 6 {
		t.Errorf("BaseHalfAngleDeg = %f, want 6", p.BaseHalfAngleDeg)
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	if cfg.GetStimpFeet() != 10 {
		t.Errorf("defaults file stimp_feet = %f, want 10", cfg.GetStimpFeet())
	}
	if cfg.GetGrass() != physics.GrassBent {
		t.Errorf("defaults file grass = %v, want bent", cfg.GetGrass())
	}
}
