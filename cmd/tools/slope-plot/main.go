// slope-plot renders a capture bundle's slope field to a PNG: sample
// positions colored by steepness, with the ball-to-hole line overlaid.
package main

import (
	"flag"
	"image/color"
	"log"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/fairway-data/greenread/internal/green"
	"github.com/fairway-data/greenread/internal/green/slope"
)

func main() {
	var (
		bundlePath = flag.String("bundle", "", "capture bundle JSON (required)")
		outPath    = flag.String("out", "slope.png", "output PNG path")
		sizeInches = flag.Float64("size", 8, "plot size in inches")
	)
	flag.Parse()

	if *bundlePath == "" {
		log.Fatal("-bundle is required")
	}

	bundle, err := green.LoadCapture(*bundlePath)
	if err != nil {
		log.Fatalf("load bundle: %v", err)
	}

	surface, err := green.Reconstruct(bundle.Fragments, green.ReconstructOptions{})
	if err != nil {
		log.Fatalf("reconstruct: %v", err)
	}
	field := slope.Build(surface)
	if field.IsEmpty() {
		log.Fatal("slope field is empty")
	}

	p := plot.New()
	p.Title.Text = "Slope Field"
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"

	if err := addSlopeBands(p, field); err != nil {
		log.Fatalf("plot slope samples: %v", err)
	}

	line := plotter.XYs{
		{X: bundle.Ball.Position.X, Y: bundle.Ball.Position.Y},
		{X: bundle.Hole.Position.X, Y: bundle.Hole.Position.Y},
	}
	puttLine, err := plotter.NewLine(line)
	if err != nil {
		log.Fatalf("plot putt line: %v", err)
	}
	puttLine.Color = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	puttLine.Width = vg.Points(2)
	p.Add(puttLine)
	p.Legend.Add("putt", puttLine)

	size := vg.Length(*sizeInches) * vg.Inch
	if err := p.Save(size, size, *outPath); err != nil {
		log.Fatalf("save plot: %v", err)
	}
	log.Printf("wrote %s: %d samples, max slope %.1f%%", *outPath, len(field.Samples), field.Stats.MaxSlopePercent)
}

// addSlopeBands buckets samples into steepness bands and adds one
// scatter per band, so the legend doubles as a color key.
func addSlopeBands(p *plot.Plot, field *slope.Field) error {
	bands := []struct {
		label string
		max   float64
		color color.RGBA
	}{
		{"<1%", 1, color.RGBA{R: 68, G: 1, B: 84, A: 255}},
		{"1-2%", 2, color.RGBA{R: 49, G: 104, B: 142, A: 255}},
		{"2-4%", 4, color.RGBA{R: 53, G: 183, B: 121, A: 255}},
		{">4%", math.Inf(1), color.RGBA{R: 253, G: 231, B: 37, A: 255}},
	}

	lo := 0.0
	for _, band := range bands {
		pts := make(plotter.XYs, 0)
		for _, s := range field.Samples {
			if s.SlopePercent >= lo && s.SlopePercent < band.max {
				pts = append(pts, plotter.XY{X: s.Position.X, Y: s.Position.Y})
			}
		}
		lo = band.max
		if len(pts) == 0 {
			continue
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		scatter.GlyphStyle.Color = band.color
		scatter.GlyphStyle.Radius = vg.Points(1.5)
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(scatter)
		p.Legend.Add(band.label, scatter)
	}
	return nil
}
