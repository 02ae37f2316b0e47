// creatorstatsd runs the daily scoring pipeline in-process on a ticker,
// for deployments without the Lambda plumbing.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/signalhouse/creatorstats/internal/config"
	pipeline "github.com/signalhouse/creatorstats/internal/lambda"
	"github.com/signalhouse/creatorstats/internal/logging"
	"github.com/signalhouse/creatorstats/internal/model"
	"github.com/signalhouse/creatorstats/internal/scheduler"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to config.yaml (default: environment variables)")
		interval   = flag.Duration("interval", 24*time.Hour, "Time between pipeline passes")
		once       = flag.Bool("once", false, "Run a single pipeline pass and exit")
		date       = flag.String("date", "", "Score date YYYY-MM-DD for -once (default: today UTC)")
	)
	flag.Parse()

	logger := logging.NewLogger()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	} else {
		config.LoadEnv(logger)
		cfg = config.LoadConfigFromEnv()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runtime, err := pipeline.NewRuntime(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect stores: %v", err)
	}
	defer runtime.Close()

	sched := scheduler.New(runtime.SmartRankJob(), runtime.SnapshotJob(), *interval, logger)

	if *once {
		asOfDate := *date
		if asOfDate == "" {
			asOfDate = time.Now().UTC().Format(model.DateFormat)
		}
		if err := sched.RunOnce(ctx, asOfDate); err != nil {
			log.Fatalf("Pipeline pass failed: %v", err)
		}
		return
	}

	logger.WithField("interval", interval.String()).Info("starting pipeline daemon")
	if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Scheduler stopped: %v", err)
	}
	logger.Info("pipeline daemon stopped")
}
