package monitor

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// handleSlopeChart renders the slope field as an XY scatter (HTML) using
// go-echarts. Debugging-only endpoint to eyeball gradients without a
// frontend.
// Query params:
//   - max_points (optional; default 8000) to reduce payload size
func (ws *WebServer) handleSlopeChart(w http.ResponseWriter, r *http.Request) {
	a := ws.lastAnalysis()
	if a == nil {
		ws.writeJSONError(w, http.StatusNotFound, "no analysis available")
		return
	}

	maxPoints := 8000
	if mp := r.URL.Query().Get("max_points"); mp != "" {
		if v, err := strconv.Atoi(mp); err == nil && v > 100 && v <= 50000 {
			maxPoints = v
		}
	}

	samples := a.Slopes.Samples
	if len(samples) == 0 {
		ws.writeJSONError(w, http.StatusNotFound, "slope field is empty")
		return
	}

	// Downsample by stride to stay within maxPoints
	stride := 1
	if len(samples) > maxPoints {
		stride = int(math.Ceil(float64(len(samples)) / float64(maxPoints)))
	}

	data := make([]opts.ScatterData, 0, len(samples)/stride+1)
	maxAbs := 0.0
	maxSlope := 0.0
	for i := 0; i < len(samples); i += stride {
		s := samples[i]
		if math.Abs(s.Position.X) > maxAbs {
			maxAbs = math.Abs(s.Position.X)
		}
		if math.Abs(s.Position.Y) > maxAbs {
			maxAbs = math.Abs(s.Position.Y)
		}
		if s.SlopePercent > maxSlope {
			maxSlope = s.SlopePercent
		}
		data = append(data, opts.ScatterData{Value: []interface{}{s.Position.X, s.Position.Y, s.SlopePercent}})
	}

	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}
	if maxSlope == 0 {
		maxSlope = 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Green Slope Field", Theme: "dark", Width: "900px", Height: "900px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Slope Field", Subtitle: fmt.Sprintf("surface=%s points=%d stride=%d max=%.1f%%", a.Surface.ID, len(data), stride, a.Slopes.Stats.MaxSlopePercent)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxSlope),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}},
		}),
	)

	scatter.AddSeries("slope", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleLinesChart renders the solved putting lines over the ball and
// hole positions as an XY line chart (HTML).
func (ws *WebServer) handleLinesChart(w http.ResponseWriter, r *http.Request) {
	a := ws.lastAnalysis()
	if a == nil {
		ws.writeJSONError(w, http.StatusNotFound, "no analysis available")
		return
	}
	if len(a.Lines) == 0 {
		ws.writeJSONError(w, http.StatusNotFound, "no solved lines available")
		return
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Putting Lines", Theme: "dark", Width: "900px", Height: "900px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Putting Lines", Subtitle: fmt.Sprintf("ball=(%.2f,%.2f) hole=(%.2f,%.2f)", a.Ball.X, a.Ball.Y, a.Hole.X, a.Hole.Y)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
	)

	for _, pl := range a.Lines {
		data := make([]opts.LineData, 0, len(pl.Path))
		for _, p := range pl.Path {
			data = append(data, opts.LineData{Value: []interface{}{p.Position.X, p.Position.Y}})
		}
		name := fmt.Sprintf("%s (%.0f%%)", pl.Strategy, pl.Confidence*100)
		line.AddSeries(name, data)
	}

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
