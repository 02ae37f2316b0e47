// Package sparkline renders an entity's daily score history as a small
// PNG line chart for report tooling.
package sparkline

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/fogleman/gg"

	"github.com/signalhouse/creatorstats/internal/model"
)

// Point is one day on the chart. Estimate marks days where the value came
// from the engagement fallback rather than graph data.
type Point struct {
	Date     time.Time
	Value    float64
	Estimate bool
}

// Config holds chart dimensions and colors.
type Config struct {
	Width       int
	Height      int
	Padding     int
	LineWidth   float64
	PointRadius float64
	Title       string
	Background  color.RGBA
	Line        color.RGBA
	EstimateDot color.RGBA
	GridColor   color.RGBA
	TextColor   color.RGBA
}

// DefaultConfig returns the default chart configuration.
func DefaultConfig() *Config {
	return &Config{
		Width:       400,
		Height:      200,
		Padding:     30,
		LineWidth:   2.0,
		PointRadius: 3.0,
		Title:       "Smart Followers",
		Background:  color.RGBA{248, 249, 250, 255}, // Light gray
		Line:        color.RGBA{13, 110, 253, 255},  // Blue
		EstimateDot: color.RGBA{255, 193, 7, 255},   // Amber
		GridColor:   color.RGBA{200, 200, 200, 255}, // Light gray
		TextColor:   color.RGBA{33, 37, 41, 255},    // Dark gray
	}
}

// Generator renders score history charts.
type Generator struct {
	config *Config
}

// NewGenerator creates a generator, falling back to the default config.
func NewGenerator(config *Config) *Generator {
	if config == nil {
		config = DefaultConfig()
	}
	return &Generator{config: config}
}

// FromSnapshots converts snapshot history, oldest first, into chart
// points. Rows with unparseable dates are dropped.
func FromSnapshots(snaps []model.SmartFollowersSnapshot) []Point {
	points := make([]Point, 0, len(snaps))
	for _, s := range snaps {
		day, err := model.ParseDate(s.AsOfDate)
		if err != nil {
			continue
		}
		points = append(points, Point{
			Date:     day,
			Value:    float64(s.SmartFollowersCount),
			Estimate: s.IsEstimate,
		})
	}
	return points
}

// Render draws the series as a PNG, scaled from zero to the series
// maximum. Estimated days get a distinct dot color.
func (g *Generator) Render(points []Point) ([]byte, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("no data points provided")
	}

	dc := gg.NewContext(g.config.Width, g.config.Height)
	dc.SetColor(g.config.Background)
	dc.Clear()

	drawWidth := float64(g.config.Width - 2*g.config.Padding)
	drawHeight := float64(g.config.Height - 2*g.config.Padding)
	drawX := float64(g.config.Padding)
	drawY := float64(g.config.Padding)

	maxValue := 0.0
	for _, p := range points {
		maxValue = math.Max(maxValue, p.Value)
	}
	if maxValue == 0 {
		maxValue = 1
	}

	g.drawGrid(dc, drawX, drawY, drawWidth, drawHeight, maxValue)
	g.drawSeries(dc, points, drawX, drawY, drawWidth, drawHeight, maxValue)
	g.drawLabels(dc, points, drawX, drawY, drawWidth, drawHeight)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}
	return buf.Bytes(), nil
}

// drawGrid draws horizontal reference lines at quarters of the maximum.
func (g *Generator) drawGrid(dc *gg.Context, x, y, width, height, maxValue float64) {
	dc.SetColor(g.config.GridColor)
	dc.SetLineWidth(0.5)

	for i := 0; i <= 4; i++ {
		frac := float64(i) / 4
		yPos := y + height - frac*height
		dc.DrawLine(x, yPos, x+width, yPos)
		dc.Stroke()

		dc.SetColor(g.config.TextColor)
		dc.DrawStringAnchored(formatLevel(frac*maxValue), x-5, yPos, 1, 0.5)
		dc.SetColor(g.config.GridColor)
	}
}

// drawSeries draws the line segments and day markers.
func (g *Generator) drawSeries(dc *gg.Context, points []Point, x, y, width, height, maxValue float64) {
	xPos := g.xPositions(points, x, width)

	dc.SetColor(g.config.Line)
	dc.SetLineWidth(g.config.LineWidth)
	for i := 0; i < len(points)-1; i++ {
		y1 := y + height - (points[i].Value/maxValue)*height
		y2 := y + height - (points[i+1].Value/maxValue)*height
		dc.DrawLine(xPos[i], y1, xPos[i+1], y2)
		dc.Stroke()
	}

	for i, p := range points {
		if p.Estimate {
			dc.SetColor(g.config.EstimateDot)
		} else {
			dc.SetColor(g.config.Line)
		}
		yPos := y + height - (p.Value/maxValue)*height
		dc.DrawCircle(xPos[i], yPos, g.config.PointRadius)
		dc.Fill()
	}
}

// xPositions spaces points horizontally by date. A single point or a
// zero-length date range centers on the chart.
func (g *Generator) xPositions(points []Point, x, width float64) []float64 {
	start := points[0].Date
	span := points[len(points)-1].Date.Sub(start).Seconds()

	xs := make([]float64, len(points))
	for i, p := range points {
		if span == 0 {
			xs[i] = x + width/2
			continue
		}
		xs[i] = x + (p.Date.Sub(start).Seconds()/span)*width
	}
	return xs
}

// drawLabels draws the date range and title.
func (g *Generator) drawLabels(dc *gg.Context, points []Point, x, y, width, height float64) {
	dc.SetColor(g.config.TextColor)

	startLabel := points[0].Date.Format("Jan 02")
	endLabel := points[len(points)-1].Date.Format("Jan 02")
	dc.DrawStringAnchored(startLabel, x, y+height+15, 0, 0)
	dc.DrawStringAnchored(endLabel, x+width, y+height+15, 1, 0)

	if g.config.Title != "" {
		dc.DrawStringAnchored(g.config.Title, x+width/2, y-10, 0.5, 0)
	}
}

func formatLevel(v float64) string {
	if v >= 10 || v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
