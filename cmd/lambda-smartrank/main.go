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

// SmartRankHandler handles the daily smart-account ranking function.
type SmartRankHandler struct {
	job *jobs.SmartRankJob
	log *logrus.Entry
}

// NewSmartRankHandler wires the handler against the platform stores.
func NewSmartRankHandler(ctx context.Context) (*SmartRankHandler, error) {
	logger := logging.NewJobLogger("smartrank")

	cfg := pipeline.LoadConfig(ctx, logger)
	runtime, err := pipeline.NewRuntime(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create runtime: %w", err)
	}

	return &SmartRankHandler{
		job: runtime.SmartRankJob(),
		log: logger,
	}, nil
}

// HandleRequest is the main Lambda handler
func (h *SmartRankHandler) HandleRequest(ctx context.Context, event pipeline.Event) (pipeline.Response, error) {
	asOfDate := event.Date(time.Now())
	h.log.WithFields(logging.Fields{
		"source":   event.Source,
		"asOfDate": asOfDate,
	}).Info("smartrank invoked")

	result, err := h.job.Run(ctx, asOfDate)
	if err != nil {
		h.log.WithError(err).Error("smart ranking failed")
		return pipeline.Response{
			StatusCode: 500,
			Body:       "Smart ranking failed: " + err.Error(),
			RunID:      result.RunID,
			AsOfDate:   asOfDate,
		}, err
	}

	return pipeline.Response{
		StatusCode: 200,
		Body:       fmt.Sprintf("Ranked %d accounts, %d classified smart", result.AccountsScored, result.SmartAccounts),
		RunID:      result.RunID,
		AsOfDate:   asOfDate,
	}, nil
}

func main() {
	ctx := context.Background()
	handler, err := NewSmartRankHandler(ctx)
	if err != nil {
		log.Fatalf("Failed to create smartrank handler: %v", err)
	}

	lambda.Start(handler.HandleRequest)
}
