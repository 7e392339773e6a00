package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CalibrationRun records one solved putt alongside its real-world
// outcome, so derived friction and capture constants can be checked
// against greens we have actually measured.
type CalibrationRun struct {
	RunID      string  `json:"run_id"`
	GreenLabel string  `json:"green_label"`
	Grass      string  `json:"grass"`
	StimpFeet  float64 `json:"stimp_feet"`
	Moisture   float64 `json:"moisture"`

	DistanceMeters float64 `json:"distance_m"`
	Strategy       string  `json:"strategy"`
	LaunchSpeed    float64 `json:"launch_speed"`
	AimAngleDeg    float64 `json:"aim_angle_deg"`
	PredictedHoled bool    `json:"predicted_holed"`
	Confidence     float64 `json:"confidence"`

	// ObservedHoled is nil until a tester records the physical result.
	ObservedHoled *bool   `json:"observed_holed,omitempty"`
	ObservedMissM float64 `json:"observed_miss_m"`

	SurfaceQuality float64         `json:"surface_quality"`
	LinesJSON      json.RawMessage `json:"lines_json,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	SolveMillis    int64           `json:"solve_ms"`
	CreatedAt      int64           `json:"created_at"`
}

// CalibrationStore provides persistence for calibration runs.
type CalibrationStore struct {
	db *sql.DB
}

// NewCalibrationStore creates a CalibrationStore backed by the given store.
func NewCalibrationStore(s *Store) *CalibrationStore {
	return &CalibrationStore{db: s.DB}
}

// Insert persists a new calibration run. If RunID is empty, a UUID is
// generated.
func (s *CalibrationStore) Insert(run *CalibrationRun) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}

	var linesStr interface{}
	if len(run.LinesJSON) > 0 {
		linesStr = string(run.LinesJSON)
	}

	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO calibration_runs (
				run_id, green_label, grass, stimp_feet, moisture,
				distance_m, strategy, launch_speed, aim_angle_deg,
				predicted_holed, confidence, observed_holed, observed_miss_m,
				surface_quality, lines_json, notes, solve_ms, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.GreenLabel, run.Grass, run.StimpFeet, run.Moisture,
			run.DistanceMeters, run.Strategy, run.LaunchSpeed, run.AimAngleDeg,
			boolInt(run.PredictedHoled), run.Confidence, nullBoolInt(run.ObservedHoled), run.ObservedMissM,
			run.SurfaceQuality, linesStr, nullStr(run.Notes), run.SolveMillis, run.CreatedAt,
		)
		return err
	})
}

// RecordOutcome attaches the physical result to an existing run.
func (s *CalibrationStore) RecordOutcome(runID string, holed bool, missMeters float64) error {
	return retryOnBusy(func() error {
		res, err := s.db.Exec(`
			UPDATE calibration_runs
			SET observed_holed = ?, observed_miss_m = ?
			WHERE run_id = ?`,
			boolInt(holed), missMeters, runID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("calibration run not found: %s", runID)
		}
		return nil
	})
}

// Get returns a single run by ID.
func (s *CalibrationStore) Get(runID string) (*CalibrationRun, error) {
	row := s.db.QueryRow(selectColumns+` FROM calibration_runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("calibration run not found: %s", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("query calibration run: %w", err)
	}
	return run, nil
}

// ListByGreen returns all runs for a labelled green, newest first.
func (s *CalibrationStore) ListByGreen(greenLabel string) ([]*CalibrationRun, error) {
	rows, err := s.db.Query(selectColumns+`
		FROM calibration_runs
		WHERE green_label = ?
		ORDER BY created_at DESC`, greenLabel)
	if err != nil {
		return nil, fmt.Errorf("query calibration runs: %w", err)
	}
	defer rows.Close()
	return collectRuns(rows)
}

// ListRecent returns the most recent runs across all greens.
func (s *CalibrationStore) ListRecent(limit int) ([]*CalibrationRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(selectColumns+`
		FROM calibration_runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query calibration runs: %w", err)
	}
	defer rows.Close()
	return collectRuns(rows)
}

// Accuracy summarises prediction quality for one green: how often the
// solver's holed/missed prediction matched the observed outcome, over
// runs that have an outcome recorded.
type Accuracy struct {
	GreenLabel string  `json:"green_label"`
	Scored     int     `json:"scored"`
	Matched    int     `json:"matched"`
	HitRate    float64 `json:"hit_rate"`
}

// AccuracyByGreen computes prediction accuracy for every green with at
// least one scored run.
func (s *CalibrationStore) AccuracyByGreen() ([]Accuracy, error) {
	rows, err := s.db.Query(`
		SELECT green_label,
		       COUNT(*) AS scored,
		       SUM(CASE WHEN predicted_holed = observed_holed THEN 1 ELSE 0 END) AS matched
		FROM calibration_runs
		WHERE observed_holed IS NOT NULL
		GROUP BY green_label
		ORDER BY green_label`)
	if err != nil {
		return nil, fmt.Errorf("query accuracy: %w", err)
	}
	defer rows.Close()

	var out []Accuracy
	for rows.Next() {
		var a Accuracy
		if err := rows.Scan(&a.GreenLabel, &a.Scored, &a.Matched); err != nil {
			return nil, fmt.Errorf("scan accuracy: %w", err)
		}
		if a.Scored > 0 {
			a.HitRate = float64(a.Matched) / float64(a.Scored)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Delete removes a run.
func (s *CalibrationStore) Delete(runID string) error {
	return retryOnBusy(func() error {
		_, err := s.db.Exec(`DELETE FROM calibration_runs WHERE run_id = ?`, runID)
		return err
	})
}

const selectColumns = `
	SELECT run_id, green_label, grass, stimp_feet, moisture,
	       distance_m, strategy, launch_speed, aim_angle_deg,
	       predicted_holed, confidence, observed_holed, observed_miss_m,
	       surface_quality, lines_json, notes, solve_ms, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*CalibrationRun, error) {
	var run CalibrationRun
	var predicted int
	var observed sql.NullInt64
	var lines sql.NullString
	var notes sql.NullString
	err := row.Scan(
		&run.RunID, &run.GreenLabel, &run.Grass, &run.StimpFeet, &run.Moisture,
		&run.DistanceMeters, &run.Strategy, &run.LaunchSpeed, &run.AimAngleDeg,
		&predicted, &run.Confidence, &observed, &run.ObservedMissM,
		&run.SurfaceQuality, &lines, &notes, &run.SolveMillis, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	run.PredictedHoled = predicted == 1
	if observed.Valid {
		v := observed.Int64 == 1
		run.ObservedHoled = &v
	}
	if lines.Valid {
		run.LinesJSON = json.RawMessage(lines.String)
	}
	run.Notes = notes.String
	return &run, nil
}

func collectRuns(rows *sql.Rows) ([]*CalibrationRun, error) {
	var runs []*CalibrationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan calibration run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullBoolInt(b *bool) interface{} {
	if b == nil {
		return nil
	}
	return boolInt(*b)
}
