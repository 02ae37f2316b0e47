package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"github.com/signalhouse/creatorstats/internal/jobs"
	pipeline "github.com/signalhouse/creatorstats/internal/lambda"
	"github.com/signalhouse/creatorstats/internal/logging"
)

// SnapshotHandler handles the daily snapshot sweep function.
type SnapshotHandler struct {
	job *jobs.SnapshotJob
	log *logrus.Entry
}

// NewSnapshotHandler wires the handler against the platform stores.
func NewSnapshotHandler(ctx context.Context) (*SnapshotHandler, error) {
	logger := logging.NewJobLogger("snapshot")

	cfg := pipeline.LoadConfig(ctx, logger)
	runtime, err := pipeline.NewRuntime(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create runtime: %w", err)
	}

	return &SnapshotHandler{
		job: runtime.SnapshotJob(),
		log: logger,
	}, nil
}

// HandleRequest is the main Lambda handler
func (h *SnapshotHandler) HandleRequest(ctx context.Context, event pipeline.Event) (pipeline.Response, error) {
	asOfDate := event.Date(time.Now())
	h.log.WithFields(logging.Fields{
		"source":   event.Source,
		"runId":    event.RunID,
		"asOfDate": asOfDate,
	}).Info("snapshot sweep invoked")

	result, err := h.job.Run(ctx, asOfDate)
	if err != nil {
		h.log.WithError(err).Error("snapshot sweep failed")
		return pipeline.Response{
			StatusCode: 500,
			Body:       "Snapshot sweep failed: " + err.Error(),
			RunID:      result.RunID,
			AsOfDate:   asOfDate,
		}, err
	}

	return pipeline.Response{
		StatusCode: 200,
		Body: fmt.Sprintf("Snapshotted %d of %d entities (%d estimated, %d failed)",
			result.Snapshots, result.Entities, result.Estimates, result.Failures),
		RunID:    result.RunID,
		AsOfDate: asOfDate,
	}, nil
}

func main() {
	ctx := context.Background()
	handler, err := NewSnapshotHandler(ctx)
	if err != nil {
		log.Fatalf("Failed to create snapshot handler: %v", err)
	}

	lambda.Start(handler.HandleRequest)
}
