package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fairway-data/greenread/internal/green/physics"
	"github.com/fairway-data/greenread/internal/green/solver"
	"github.com/fairway-data/greenread/internal/units"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig is the root configuration for an analysis run: the green
// conditions feeding physics derivation plus the solver search policy.
// All fields are pointers so a partial JSON file overrides only what it
// names; angles are degrees in JSON and converted at this boundary.
type TuningConfig struct {
	// Green conditions
	StimpFeet      *float64 `json:"stimp_feet,omitempty"`
	Grass          *string  `json:"grass,omitempty"`
	Moisture       *float64 `json:"moisture,omitempty"` // 0 dry .. 1 saturated
	GrainAngleDeg  *float64 `json:"grain_angle_deg,omitempty"`
	TemperatureC   *float64 `json:"temperature_c,omitempty"`
	AltitudeMeters *float64 `json:"altitude_m,omitempty"`

	// Solver policy
	SolveDeadline    *string   `json:"solve_deadline,omitempty"`    // duration string like "4s"
	RefinementWindow *string   `json:"refinement_window,omitempty"` // duration string like "1s"
	SpeedMultipliers []float64 `json:"speed_multipliers,omitempty"`
	AngleSteps       *int      `json:"angle_steps,omitempty"`
	BaseHalfAngleDeg *float64  `json:"base_half_angle_deg,omitempty"`
	MaxHalfAngleDeg  *float64  `json:"max_half_angle_deg,omitempty"`
	EarlyExitOptimal *float64  `json:"early_exit_optimal,omitempty"`
	EarlyExitOther   *float64  `json:"early_exit_other,omitempty"`

	// Pipeline params
	KeepUnclassified *bool `json:"keep_unclassified,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under
// the max file size. Fields omitted from the JSON file retain their
// default values, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from
// DefaultConfigPath. It searches for the file in the current directory
// and common parent directories. Panics if the file cannot be loaded,
// intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/green/<pkg>/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.StimpFeet != nil {
		if *c.StimpFeet <= 0 || *c.StimpFeet > 20 {
			return fmt.Errorf("stimp_feet must be between 0 and 20, got %f", *c.StimpFeet)
		}
	}

	if c.Grass != nil && *c.Grass != "" {
		if _, err := physics.ParseGrassType(*c.Grass); err != nil {
			return fmt.Errorf("invalid grass: %w", err)
		}
	}

	if c.Moisture != nil {
		if *c.Moisture < 0 || *c.Moisture > 1 {
			return fmt.Errorf("moisture must be between 0 and 1, got %f", *c.Moisture)
		}
	}

	if c.SolveDeadline != nil && *c.SolveDeadline != "" {
		if _, err := time.ParseDuration(*c.SolveDeadline); err != nil {
			return fmt.Errorf("invalid solve_deadline '%s': %w", *c.SolveDeadline, err)
		}
	}

	if c.RefinementWindow != nil && *c.RefinementWindow != "" {
		if _, err := time.ParseDuration(*c.RefinementWindow); err != nil {
			return fmt.Errorf("invalid refinement_window '%s': %w", *c.RefinementWindow, err)
		}
	}

	if c.AngleSteps != nil {
		if *c.AngleSteps < 1 {
			return fmt.Errorf("angle_steps must be positive, got %d", *c.AngleSteps)
		}
	}

	for i, m := range c.SpeedMultipliers {
		if m <= 0 {
			return fmt.Errorf("speed_multipliers[%d] must be positive, got %f", i, m)
		}
	}

	return nil
}

// GetStimpFeet returns the stimp_feet value or the default.
func (c *TuningConfig) GetStimpFeet() float64 {
	if c.StimpFeet == nil {
		return 10 // default
	}
	return *c.StimpFeet
}

// GetGrass returns the parsed grass type or the default.
func (c *TuningConfig) GetGrass() physics.GrassType {
	if c.Grass == nil || *c.Grass == "" {
		return physics.GrassBent // default
	}
	g, err := physics.ParseGrassType(*c.Grass)
	if err != nil {
		return physics.GrassBent // default on parse error
	}
	return g
}

// GetSolveDeadline parses and returns the solve deadline.
func (c *TuningConfig) GetSolveDeadline() time.Duration {
	if c.SolveDeadline == nil || *c.SolveDeadline == "" {
		return 4 * time.Second // default
	}
	d, err := time.ParseDuration(*c.SolveDeadline)
	if err != nil {
		return 4 * time.Second // default on parse error
	}
	return d
}

// GetRefinementWindow parses and returns the refinement window.
func (c *TuningConfig) GetRefinementWindow() time.Duration {
	if c.RefinementWindow == nil || *c.RefinementWindow == "" {
		return time.Second // default
	}
	d, err := time.ParseDuration(*c.RefinementWindow)
	if err != nil {
		return time.Second // default on parse error
	}
	return d
}

// GetKeepUnclassified returns the keep_unclassified value or the default.
func (c *TuningConfig) GetKeepUnclassified() bool {
	if c.KeepUnclassified == nil {
		return false // default
	}
	return *c.KeepUnclassified
}

// Conditions converts the conditions block to physics.Conditions,
// filling unset fields with physics defaults. Grain angle converts from
// degrees here; everything downstream is radians.
func (c *TuningConfig) Conditions() physics.Conditions {
	cond := physics.DefaultConditions()
	cond.StimpFeet = c.GetStimpFeet()
	cond.Grass = c.GetGrass()
	if c.Moisture != nil {
		cond.Moisture = *c.Moisture
	}
	if c.GrainAngleDeg != nil {
		cond.GrainAngle = units.DegreesToRadians(*c.GrainAngleDeg)
	}
	if c.TemperatureC != nil {
		cond.TemperatureC = *c.TemperatureC
	}
	if c.AltitudeMeters != nil {
		cond.AltitudeM = *c.AltitudeMeters
	}
	return cond
}

// Policy converts the solver block to a solver.Policy, filling unset
// fields with the production defaults.
func (c *TuningConfig) Policy() solver.Policy {
	p := solver.DefaultPolicy()
	p.Deadline = c.GetSolveDeadline()
	p.RefinementWindow = c.GetRefinementWindow()
	if len(c.SpeedMultipliers) > 0 {
		p.SpeedMultipliers = c.SpeedMultipliers
	}
	if c.AngleSteps != nil {
		p.AngleSteps = *c.AngleSteps
	}
	if c.BaseHalfAngleDeg != nil {
		p.BaseHalfAngleDeg = *c.BaseHalfAngleDeg
	}
	if c.MaxHalfAngleDeg != nil {
		p.MaxHalfAngleDeg = *c.MaxHalfAngleDeg
	}
	if c.EarlyExitOptimal != nil {
		p.EarlyExitOptimal = *c.EarlyExitOptimal
	}
	if c.EarlyExitOther != nil {
		p.EarlyExitOther = *c.EarlyExitOther
	}
	return p
}
