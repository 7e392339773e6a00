// calibrate records solver predictions against observed putts and
// reports prediction accuracy per green. Typical session:
//
//	calibrate -db tune.db -bundle scan.json -green practice-9
//	calibrate -db tune.db -outcome <run_id> -holed -miss 0
//	calibrate -db tune.db -report
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/fairway-data/greenread/internal/config"
	"github.com/fairway-data/greenread/internal/green"
	"github.com/fairway-data/greenread/internal/green/pipeline"
	"github.com/fairway-data/greenread/internal/storage/sqlite"
	"github.com/fairway-data/greenread/internal/units"
)

func main() {
	var (
		dbPath        = flag.String("db", "calibration.db", "calibration database path")
		migrationsDir = flag.String("migrations", "migrations", "migrations directory")
		configPath    = flag.String("config", "", "tuning config JSON (optional)")

		bundlePath = flag.String("bundle", "", "capture bundle to analyze and record")
		greenLabel = flag.String("green", "", "green label for the recorded run")

		outcomeRun = flag.String("outcome", "", "run ID to record an observed outcome for")
		holed      = flag.Bool("holed", false, "observed: the putt dropped")
		missMeters = flag.Float64("miss", 0, "observed: miss distance in meters")

		report     = flag.Bool("report", false, "print per-green prediction accuracy")
		speedUnits = flag.String("speed-units", units.MPS, "display units for launch speed (mps, mph, kph)")
	)
	flag.Parse()

	if !units.IsValidSpeedUnit(*speedUnits) {
		log.Fatalf("invalid -speed-units %q, want one of %v", *speedUnits, units.ValidSpeedUnits)
	}

	store, err := sqlite.Open(*dbPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer store.Close()
	if err := store.MigrateUp(*migrationsDir); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	cs := sqlite.NewCalibrationStore(store)

	switch {
	case *bundlePath != "":
		if *greenLabel == "" {
			log.Fatal("-green is required with -bundle")
		}
		if err := recordRun(cs, *bundlePath, *greenLabel, *configPath, *speedUnits); err != nil {
			log.Fatalf("record run: %v", err)
		}
	case *outcomeRun != "":
		if err := cs.RecordOutcome(*outcomeRun, *holed, *missMeters); err != nil {
			log.Fatalf("record outcome: %v", err)
		}
		log.Printf("recorded outcome for %s: holed=%v miss=%.2fm (%.0fin)",
			*outcomeRun, *holed, *missMeters, units.MetersToInches(*missMeters))
	case *report:
		if err := printReport(cs); err != nil {
			log.Fatalf("report: %v", err)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func recordRun(cs *sqlite.CalibrationStore, bundlePath, greenLabel, configPath, speedUnits string) error {
	cfg := config.EmptyTuningConfig()
	if configPath != "" {
		var err error
		cfg, err = config.LoadTuningConfig(configPath)
		if err != nil {
			return err
		}
	}

	bundle, err := green.LoadCapture(bundlePath)
	if err != nil {
		return err
	}

	analyzer := pipeline.New(pipeline.Options{
		Conditions:       cfg.Conditions(),
		Policy:           cfg.Policy(),
		KeepUnclassified: cfg.GetKeepUnclassified(),
	})
	analysis, err := analyzer.Analyze(context.Background(), bundle)
	if err != nil {
		return err
	}
	defer analysis.Release()

	linesJSON, err := json.Marshal(analysis.Lines)
	if err != nil {
		return fmt.Errorf("marshal lines: %w", err)
	}

	// Record the line a player would actually use: the first solved
	// strategy in preference order.
	best := analysis.Lines[0]
	cond := cfg.Conditions()
	run := &sqlite.CalibrationRun{
		GreenLabel:     greenLabel,
		Grass:          string(cond.Grass),
		StimpFeet:      cond.StimpFeet,
		Moisture:       cond.Moisture,
		DistanceMeters: best.Distance,
		Strategy:       string(best.Strategy),
		LaunchSpeed:    best.LaunchSpeed,
		AimAngleDeg:    units.RadiansToDegrees(best.AimAngle),
		PredictedHoled: best.Holed,
		Confidence:     best.Confidence,
		SurfaceQuality: analysis.Surface.Quality,
		LinesJSON:      linesJSON,
		SolveMillis:    analysis.Elapsed.Milliseconds(),
	}
	if err := cs.Insert(run); err != nil {
		return err
	}

	log.Printf("recorded run %s: %s %.2fm (%.1fft) launch=%s aim=%.2f° conf=%.2f",
		run.RunID, run.Strategy, run.DistanceMeters, units.MetersToFeet(run.DistanceMeters),
		formatSpeed(run.LaunchSpeed, speedUnits), run.AimAngleDeg, run.Confidence)
	return nil
}

// formatSpeed renders a launch speed in the requested display units.
func formatSpeed(mps float64, unit string) string {
	v := units.ConvertSpeed(mps, unit)
	switch unit {
	case units.MPH:
		return fmt.Sprintf("%.1fmph", v)
	case units.KPH:
		return fmt.Sprintf("%.1fkph", v)
	default:
		return fmt.Sprintf("%.2fm/s", v)
	}
}

func printReport(cs *sqlite.CalibrationStore) error {
	acc, err := cs.AccuracyByGreen()
	if err != nil {
		return err
	}
	if len(acc) == 0 {
		fmt.Println("no scored runs")
		return nil
	}

	fmt.Printf("%-24s %8s %8s %8s\n", "green", "scored", "matched", "hitrate")
	for _, a := range acc {
		fmt.Printf("%-24s %8d %8d %7.1f%%\n", a.GreenLabel, a.Scored, a.Matched, a.HitRate*100)
	}
	return nil
}
