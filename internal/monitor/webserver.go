// Package monitor serves the analysis HTTP API plus debug chart pages
// for inspecting reconstructed surfaces and solved lines in a browser.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/fairway-data/greenread/internal/green"
	"github.com/fairway-data/greenread/internal/green/pipeline"
	"github.com/fairway-data/greenread/internal/storage/sqlite"
)

// maxBundleBytes bounds an uploaded capture bundle (32MB).
const maxBundleBytes = 32 << 20

type WebServer struct {
	address  string
	analyzer *pipeline.Analyzer
	store    *sqlite.Store
	server   *http.Server

	mu   sync.Mutex
	last *pipeline.Analysis
}

// WebServerConfig contains configuration options for the web server.
type WebServerConfig struct {
	Address  string
	Analyzer *pipeline.Analyzer

	// Store is optional; calibration endpoints 404 without it.
	Store *sqlite.Store
}

func NewWebServer(config WebServerConfig) *WebServer {
	ws := &WebServer{
		address:  config.Address,
		analyzer: config.Analyzer,
		store:    config.Store,
	}

	ws.server = &http.Server{
		Addr:    ws.address,
		Handler: ws.setupRoutes(),
	}

	return ws
}

func (ws *WebServer) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (ws *WebServer) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[monitor] encode response: %v", err)
	}
}

// Start begins the HTTP server in a goroutine and handles graceful shutdown.
func (ws *WebServer) Start(ctx context.Context) error {
	go func() {
		log.Printf("Starting HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}

	log.Printf("HTTP server routine stopped")
	return nil
}

func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/api/green/analyze", ws.handleAnalyze)
	mux.HandleFunc("/api/green/lines", ws.handleLines)
	mux.HandleFunc("/api/green/slope", ws.handleSlopeStats)
	mux.HandleFunc("/api/calibration/runs", ws.handleCalibrationRuns)
	mux.HandleFunc("/api/calibration/accuracy", ws.handleCalibrationAccuracy)
	mux.HandleFunc("/debug/charts/slope", ws.handleSlopeChart)
	mux.HandleFunc("/debug/charts/lines", ws.handleLinesChart)

	return mux
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	ws.writeJSON(w, map[string]string{"status": "ok"})
}

// handleAnalyze accepts a capture bundle as the POST body, runs the full
// pipeline and returns the solved lines. The analysis is retained for
// the chart and query endpoints.
func (ws *WebServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var bundle green.CaptureBundle
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBundleBytes))
	if err := dec.Decode(&bundle); err != nil {
		ws.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("decode bundle: %v", err))
		return
	}

	analysis, err := ws.analyzer.Analyze(r.Context(), &bundle)
	if err != nil {
		ws.writeJSONError(w, http.StatusUnprocessableEntity, fmt.Sprintf("analyze: %v", err))
		return
	}

	ws.mu.Lock()
	if ws.last != nil {
		ws.last.Release()
	}
	ws.last = analysis
	ws.mu.Unlock()

	ws.writeJSON(w, map[string]interface{}{
		"surface_id": analysis.Surface.ID,
		"quality":    analysis.Surface.Quality,
		"slope":      analysis.Slopes.Stats,
		"lines":      analysis.Lines,
		"elapsed_ms": analysis.Elapsed.Milliseconds(),
	})
}

func (ws *WebServer) lastAnalysis() *pipeline.Analysis {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.last
}

func (ws *WebServer) handleLines(w http.ResponseWriter, r *http.Request) {
	a := ws.lastAnalysis()
	if a == nil {
		ws.writeJSONError(w, http.StatusNotFound, "no analysis available")
		return
	}
	ws.writeJSON(w, a.Lines)
}

func (ws *WebServer) handleSlopeStats(w http.ResponseWriter, r *http.Request) {
	a := ws.lastAnalysis()
	if a == nil {
		ws.writeJSONError(w, http.StatusNotFound, "no analysis available")
		return
	}
	ws.writeJSON(w, a.Slopes.Stats)
}

// handleCalibrationRuns returns recent calibration runs.
// Query params:
//
//	green (optional; filters to one labelled green)
//	limit (optional, default 50)
func (ws *WebServer) handleCalibrationRuns(w http.ResponseWriter, r *http.Request) {
	if ws.store == nil {
		ws.writeJSONError(w, http.StatusNotFound, "no calibration store configured")
		return
	}
	cs := sqlite.NewCalibrationStore(ws.store)

	if greenLabel := r.URL.Query().Get("green"); greenLabel != "" {
		runs, err := cs.ListByGreen(greenLabel)
		if err != nil {
			ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("list runs: %v", err))
			return
		}
		ws.writeJSON(w, runs)
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		fmt.Sscanf(l, "%d", &limit)
		if limit <= 0 || limit > 500 {
			limit = 50
		}
	}
	runs, err := cs.ListRecent(limit)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("list runs: %v", err))
		return
	}
	ws.writeJSON(w, runs)
}

func (ws *WebServer) handleCalibrationAccuracy(w http.ResponseWriter, r *http.Request) {
	if ws.store == nil {
		ws.writeJSONError(w, http.StatusNotFound, "no calibration store configured")
		return
	}
	acc, err := sqlite.NewCalibrationStore(ws.store).AccuracyByGreen()
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("accuracy: %v", err))
		return
	}
	ws.writeJSON(w, acc)
}
