package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/signalhouse/creatorstats/internal/config"
	"github.com/signalhouse/creatorstats/internal/formatter"
	pipeline "github.com/signalhouse/creatorstats/internal/lambda"
	"github.com/signalhouse/creatorstats/internal/logging"
	"github.com/signalhouse/creatorstats/internal/model"
	"github.com/signalhouse/creatorstats/internal/scoring"
	"github.com/signalhouse/creatorstats/internal/sparkline"
)

func main() {
	var (
		entityType   = flag.String("type", "project", "Entity type to score (project or creator)")
		entityID     = flag.String("id", "", "Entity ID (required)")
		xUserID      = flag.String("xuser", "", "Platform account the entity is measured through (required)")
		date         = flag.String("date", "", "Score date YYYY-MM-DD (default: today UTC)")
		window       = flag.String("window", "7d", "Report window: 24h, 7d or 30d")
		configPath   = flag.String("config", "", "Path to config.yaml (default: environment variables)")
		jsonOut      = flag.Bool("json", false, "Print the full result as JSON")
		sparklineOut = flag.String("sparkline-out", "", "Write a 90-day smart-followers sparkline PNG to this path")
	)
	flag.Parse()

	if *entityID == "" || *xUserID == "" {
		fmt.Fprintf(os.Stderr, "Error: --id and --xuser are required\n")
		flag.Usage()
		os.Exit(1)
	}

	etype, err := model.ParseEntityType(*entityType)
	if err != nil {
		log.Fatalf("Invalid entity type: %v", err)
	}

	win, err := model.ParseWindow(*window)
	if err != nil {
		log.Fatalf("Invalid window: %v", err)
	}

	asOfDate := *date
	if asOfDate == "" {
		asOfDate = time.Now().UTC().Format(model.DateFormat)
	}

	logger := logging.NewCLILogger()

	var cfg *config.Config
	if *configPath != "" {
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	} else {
		config.LoadEnv(logger)
		cfg = config.LoadConfigFromEnv()
	}

	ctx := context.Background()
	runtime, err := pipeline.NewRuntime(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect stores: %v", err)
	}
	defer runtime.Close()

	svc := runtime.ScoringService()
	entity := model.TrackedEntity{EntityType: etype, EntityID: *entityID, XUserID: *xUserID}

	windows := []model.Window{model.WindowDay, model.WindowWeek, model.WindowMonth}
	score, err := svc.ScoreEntity(ctx, entity, asOfDate, windows)
	if err != nil {
		log.Fatalf("Scoring failed: %v", err)
	}

	var creatorScore *scoring.CreatorScore
	if etype == model.EntityCreator {
		creatorScore, err = svc.ScoreCreator(ctx, entity, asOfDate, win)
		if err != nil {
			log.Fatalf("Creator aggregation failed: %v", err)
		}
	}

	if *jsonOut {
		printJSON(score, creatorScore)
	} else {
		printText(ctx, runtime, score, creatorScore, win)
	}

	if *sparklineOut != "" {
		writeSparkline(ctx, svc, entity, asOfDate, *sparklineOut)
	}
}

func printJSON(score *scoring.EntityScore, creatorScore *scoring.CreatorScore) {
	out := struct {
		Entity  *scoring.EntityScore  `json:"entity"`
		Creator *scoring.CreatorScore `json:"creator,omitempty"`
	}{score, creatorScore}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal result: %v", err)
	}
	fmt.Println(string(data))
}

func printText(ctx context.Context, runtime *pipeline.Runtime, score *scoring.EntityScore, creatorScore *scoring.CreatorScore, win model.Window) {
	// Handle lookup is decoration only; scoring already ran.
	handle := ""
	if acct, err := runtime.Stores().Profiles.Account(ctx, score.Entity.XUserID); err == nil {
		handle = acct.Handle
	}

	var pulse *model.Pulse
	for i := range score.Pulses {
		if score.Pulses[i].Window == win {
			pulse = &score.Pulses[i]
		}
	}

	fmt.Print(formatter.FormatScorecard(formatter.Scorecard{
		EntityType: score.Entity.EntityType,
		EntityID:   score.Entity.EntityID,
		Handle:     handle,
		AsOfDate:   score.AsOfDate,
		Smart:      &score.SmartFollowers.Current,
		Delta:      &score.SmartFollowers,
		Pulse:      pulse,
	}))

	if len(score.Topics) > 0 {
		parts := make([]string, 0, len(score.Topics))
		for _, tc := range score.Topics {
			parts = append(parts, fmt.Sprintf("%s (%d)", tc.Topic, tc.Count))
		}
		fmt.Printf("topics: %s\n", strings.Join(parts, ", "))
	}

	if creatorScore != nil {
		fmt.Println()
		fmt.Print(formatter.FormatCreatorRollup(win, creatorScore.Aggregate))
	}
}

func writeSparkline(ctx context.Context, svc *scoring.Service, entity model.TrackedEntity, asOfDate, path string) {
	day, err := model.ParseDate(asOfDate)
	if err != nil {
		log.Fatalf("Invalid date: %v", err)
	}
	from := model.FormatDate(day.AddDate(0, 0, -90))

	history, err := svc.History(ctx, entity, from, asOfDate)
	if err != nil {
		log.Fatalf("Failed to load snapshot history: %v", err)
	}

	points := sparkline.FromSnapshots(history)
	png, err := sparkline.NewGenerator(nil).Render(points)
	if err != nil {
		log.Fatalf("Failed to render sparkline: %v", err)
	}

	if err := os.WriteFile(path, png, 0644); err != nil {
		log.Fatalf("Failed to write sparkline: %v", err)
	}
	fmt.Printf("Wrote 90-day sparkline to %s (%d points)\n", path, len(points))
}
