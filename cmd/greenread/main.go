package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fairway-data/greenread/internal/config"
	"github.com/fairway-data/greenread/internal/green"
	"github.com/fairway-data/greenread/internal/green/pipeline"
	"github.com/fairway-data/greenread/internal/monitor"
	"github.com/fairway-data/greenread/internal/storage/sqlite"
)

func main() {
	var (
		addr          = flag.String("addr", ":8080", "HTTP listen address")
		configPath    = flag.String("config", "", "tuning config JSON (optional; defaults apply)")
		bundlePath    = flag.String("bundle", "", "analyze a capture bundle file and print lines instead of serving")
		dbPath        = flag.String("db", "", "calibration database path (optional)")
		migrationsDir = flag.String("migrations", "migrations", "migrations directory")
	)
	flag.Parse()

	cfg := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}

	analyzer := pipeline.New(pipeline.Options{
		Conditions:       cfg.Conditions(),
		Policy:           cfg.Policy(),
		KeepUnclassified: cfg.GetKeepUnclassified(),
	})

	if *bundlePath != "" {
		if err := analyzeFile(analyzer, *bundlePath); err != nil {
			log.Fatalf("analyze %s: %v", *bundlePath, err)
		}
		return
	}

	var store *sqlite.Store
	if *dbPath != "" {
		var err error
		store, err = sqlite.Open(*dbPath)
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
		defer store.Close()
		if err := store.MigrateUp(*migrationsDir); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ws := monitor.NewWebServer(monitor.WebServerConfig{
		Address:  *addr,
		Analyzer: analyzer,
		Store:    store,
	})
	if err := ws.Start(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// analyzeFile runs one bundle through the pipeline and prints the solved
// lines as JSON on stdout.
func analyzeFile(analyzer *pipeline.Analyzer, path string) error {
	bundle, err := green.LoadCapture(path)
	if err != nil {
		return err
	}

	analysis, err := analyzer.Analyze(context.Background(), bundle)
	if err != nil {
		return err
	}
	defer analysis.Release()

	log.Printf("surface %s quality %.2f, slope max %.1f%% avg %.1f%%, solved in %s",
		analysis.Surface.ID, analysis.Surface.Quality,
		analysis.Slopes.Stats.MaxSlopePercent, analysis.Slopes.Stats.AverageSlopePercent,
		analysis.Elapsed)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(analysis.Lines); err != nil {
		return fmt.Errorf("encode lines: %w", err)
	}
	return nil
}
