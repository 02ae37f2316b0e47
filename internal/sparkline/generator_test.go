package sparkline

import (
	"bytes"
	"testing"
	"time"

	"github.com/signalhouse/creatorstats/internal/model"
)

func day(s string) time.Time {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRenderHistory(t *testing.T) {
	generator := NewGenerator(nil)

	points := []Point{
		{Date: day("2026-01-01"), Value: 120},
		{Date: day("2026-01-02"), Value: 134},
		{Date: day("2026-01-03"), Value: 90, Estimate: true},
		{Date: day("2026-01-04"), Value: 151},
		{Date: day("2026-01-05"), Value: 160},
	}

	imageData, err := generator.Render(points)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(imageData) < 1000 {
		t.Fatalf("image suspiciously small: %d bytes", len(imageData))
	}
	if !bytes.HasPrefix(imageData, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

func TestRenderEmptyHistory(t *testing.T) {
	generator := NewGenerator(nil)

	if _, err := generator.Render(nil); err == nil {
		t.Fatal("expected error for empty history")
	}
}

func TestRenderSinglePoint(t *testing.T) {
	generator := NewGenerator(nil)

	imageData, err := generator.Render([]Point{{Date: day("2026-01-01"), Value: 42}})
	if err != nil {
		t.Fatalf("render single point: %v", err)
	}
	if len(imageData) == 0 {
		t.Fatal("image data is empty")
	}
}

func TestRenderAllZeroValues(t *testing.T) {
	generator := NewGenerator(nil)

	points := []Point{
		{Date: day("2026-01-01"), Value: 0},
		{Date: day("2026-01-02"), Value: 0},
	}
	if _, err := generator.Render(points); err != nil {
		t.Fatalf("render flat zero series: %v", err)
	}
}

func TestFromSnapshots(t *testing.T) {
	snaps := []model.SmartFollowersSnapshot{
		{AsOfDate: "2026-01-01", SmartFollowersCount: 10},
		{AsOfDate: "not-a-date", SmartFollowersCount: 99},
		{AsOfDate: "2026-01-02", SmartFollowersCount: 12, IsEstimate: true},
	}

	points := FromSnapshots(snaps)
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2 (bad date dropped)", len(points))
	}
	if points[0].Value != 10 || points[1].Value != 12 {
		t.Errorf("values = %v, %v", points[0].Value, points[1].Value)
	}
	if points[0].Estimate || !points[1].Estimate {
		t.Error("estimate flags not carried through")
	}
}

func TestCustomConfig(t *testing.T) {
	generator := NewGenerator(&Config{Width: 800, Height: 400, Padding: 30, Title: "Signal"})
	if generator.config.Width != 800 || generator.config.Height != 400 {
		t.Fatal("custom config not applied")
	}
}
