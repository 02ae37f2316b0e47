package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	pipeline "github.com/signalhouse/creatorstats/internal/lambda"
	"github.com/signalhouse/creatorstats/internal/logging"
)

// OrchestratorHandler sequences the daily pipeline: the ranking function
// first, then the snapshot sweep, so the sweep reads the smart set it
// expects for the day.
type OrchestratorHandler struct {
	lambdaClient      *awslambda.Client
	smartRankFunction string
	snapshotFunction  string
	log               *logrus.Entry
}

// NewOrchestratorHandler creates a new orchestrator handler
func NewOrchestratorHandler(ctx context.Context) (*OrchestratorHandler, error) {
	logger := logging.NewJobLogger("orchestrator")
	cfg := pipeline.LoadConfig(ctx, logger)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &OrchestratorHandler{
		lambdaClient:      awslambda.NewFromConfig(awsCfg),
		smartRankFunction: cfg.Jobs.SmartRankFunction,
		snapshotFunction:  cfg.Jobs.SnapshotFunction,
		log:               logger,
	}, nil
}

// HandleRequest is the main Lambda handler
func (h *OrchestratorHandler) HandleRequest(ctx context.Context, event pipeline.Event) (pipeline.Response, error) {
	runID := uuid.New().String()
	asOfDate := event.Date(time.Now())

	h.log.WithFields(logging.Fields{
		"runId":    runID,
		"asOfDate": asOfDate,
		"source":   event.Source,
	}).Info("starting daily pipeline")

	rankResp, err := h.invoke(ctx, h.smartRankFunction, runID, asOfDate)
	if err != nil {
		h.log.WithError(err).Error("smartrank stage failed")
		return pipeline.Response{
			StatusCode: 500,
			Body:       "Smartrank stage failed: " + err.Error(),
			RunID:      runID,
			AsOfDate:   asOfDate,
		}, err
	}
	h.log.WithField("body", rankResp.Body).Info("smartrank stage complete")

	snapResp, err := h.invoke(ctx, h.snapshotFunction, runID, asOfDate)
	if err != nil {
		h.log.WithError(err).Error("snapshot stage failed")
		return pipeline.Response{
			StatusCode: 500,
			Body:       "Snapshot stage failed: " + err.Error(),
			RunID:      runID,
			AsOfDate:   asOfDate,
		}, err
	}
	h.log.WithField("body", snapResp.Body).Info("snapshot stage complete")

	return pipeline.Response{
		StatusCode: 200,
		Body:       fmt.Sprintf("Pipeline complete: %s; %s", rankResp.Body, snapResp.Body),
		RunID:      runID,
		AsOfDate:   asOfDate,
	}, nil
}

// invoke calls a pipeline function synchronously and decodes its response.
func (h *OrchestratorHandler) invoke(ctx context.Context, functionName, runID, asOfDate string) (pipeline.Response, error) {
	payload, err := json.Marshal(pipeline.Event{
		Source:   "creatorstats.orchestrator",
		Time:     time.Now().UTC().Format(time.RFC3339),
		AsOfDate: asOfDate,
		RunID:    runID,
	})
	if err != nil {
		return pipeline.Response{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	out, err := h.lambdaClient.Invoke(ctx, &awslambda.InvokeInput{
		FunctionName: aws.String(functionName),
		Payload:      payload,
	})
	if err != nil {
		return pipeline.Response{}, fmt.Errorf("failed to invoke %s: %w", functionName, err)
	}
	if out.FunctionError != nil {
		return pipeline.Response{}, fmt.Errorf("%s returned error: %s", functionName, string(out.Payload))
	}

	var resp pipeline.Response
	if err := json.Unmarshal(out.Payload, &resp); err != nil {
		return pipeline.Response{}, fmt.Errorf("failed to decode %s response: %w", functionName, err)
	}
	if resp.StatusCode != 200 {
		return pipeline.Response{}, fmt.Errorf("%s failed: %s", functionName, resp.Body)
	}
	return resp, nil
}

func main() {
	ctx := context.Background()
	handler, err := NewOrchestratorHandler(ctx)
	if err != nil {
		log.Fatalf("Failed to create orchestrator handler: %v", err)
	}

	lambda.Start(handler.HandleRequest)
}
