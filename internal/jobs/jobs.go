// Package jobs implements the daily pipeline stages: the smart-account
// ranking pass and the snapshot sweep over tracked entities. The Lambda
// entrypoints and the standalone scheduler both drive these.
package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/signalhouse/creatorstats/internal/model"
	"github.com/signalhouse/creatorstats/internal/smartfollow"
	"github.com/signalhouse/creatorstats/internal/smartrank"
	"github.com/signalhouse/creatorstats/internal/store"
)

// SmartRankResult summarizes one ranking run.
type SmartRankResult struct {
	RunID           string  `json:"run_id"`
	AsOfDate        string  `json:"as_of_date"`
	AccountsScored  int     `json:"accounts_scored"`
	SmartAccounts   int     `json:"smart_accounts"`
	DurationSeconds float64 `json:"duration_seconds"`
	Success         bool    `json:"success"`
	ErrorMessage    string  `json:"error_message,omitempty"`
}

// SmartRankJob recomputes the day's smart-account classification from the
// full follow graph and persists it.
type SmartRankJob struct {
	stores     store.Stores
	classifier *smartrank.Classifier
	log        logrus.FieldLogger
}

// NewSmartRankJob creates the ranking job.
func NewSmartRankJob(st store.Stores, cfg smartrank.Config, log logrus.FieldLogger) *SmartRankJob {
	return &SmartRankJob{
		stores:     st,
		classifier: smartrank.NewClassifier(cfg),
		log:        log,
	}
}

// Run executes one ranking pass for the given day. Rankings are
// recomputable, so rerunning a day overwrites it.
func (j *SmartRankJob) Run(ctx context.Context, asOfDate string) (*SmartRankResult, error) {
	runID := uuid.New().String()
	result := &SmartRankResult{RunID: runID, AsOfDate: asOfDate}
	log := j.log.WithFields(logrus.Fields{"runId": runID, "asOfDate": asOfDate})
	start := time.Now()

	if _, err := model.ParseDate(asOfDate); err != nil {
		result.ErrorMessage = err.Error()
		return result, err
	}

	log.Info("starting smart ranking")

	edges, err := j.stores.Graph.Edges(ctx)
	if err != nil {
		result.ErrorMessage = "failed to load follow graph: " + err.Error()
		return result, err
	}

	accounts, err := j.stores.Profiles.Accounts(ctx, accountIDs(edges))
	if err != nil {
		result.ErrorMessage = "failed to load account profiles: " + err.Error()
		return result, err
	}

	scores := j.classifier.Classify(edges, accounts, asOfDate, time.Now().UTC())
	if err := j.stores.SmartScores.PutScores(ctx, scores); err != nil {
		result.ErrorMessage = "failed to persist scores: " + err.Error()
		return result, err
	}

	for _, s := range scores {
		if s.IsSmart {
			result.SmartAccounts++
		}
	}
	result.AccountsScored = len(scores)
	result.DurationSeconds = time.Since(start).Seconds()
	result.Success = true

	log.WithFields(logrus.Fields{
		"accountsScored": result.AccountsScored,
		"smartAccounts":  result.SmartAccounts,
		"durationSec":    result.DurationSeconds,
	}).Info("smart ranking complete")
	return result, nil
}

// accountIDs returns the distinct accounts touched by the graph, in first
// appearance order.
func accountIDs(edges []model.FollowEdge) []string {
	seen := make(map[string]struct{}, len(edges)*2)
	var ids []string
	for _, e := range edges {
		if _, ok := seen[e.SrcAccountID]; !ok {
			seen[e.SrcAccountID] = struct{}{}
			ids = append(ids, e.SrcAccountID)
		}
		if _, ok := seen[e.DstAccountID]; !ok {
			seen[e.DstAccountID] = struct{}{}
			ids = append(ids, e.DstAccountID)
		}
	}
	return ids
}

// SnapshotResult summarizes one snapshot sweep.
type SnapshotResult struct {
	RunID           string  `json:"run_id"`
	AsOfDate        string  `json:"as_of_date"`
	Entities        int     `json:"entities"`
	Snapshots       int     `json:"snapshots"`
	Estimates       int     `json:"estimates"`
	Failures        int     `json:"failures"`
	DurationSeconds float64 `json:"duration_seconds"`
	Success         bool    `json:"success"`
	ErrorMessage    string  `json:"error_message,omitempty"`
}

// SnapshotJob sweeps every tracked entity and fixes its smart-follower
// snapshot for the day. One bad entity never stops the sweep.
type SnapshotJob struct {
	stores     store.Stores
	calculator *smartfollow.Calculator
	log        logrus.FieldLogger
}

// NewSnapshotJob creates the snapshot sweep job.
func NewSnapshotJob(st store.Stores, cfg smartfollow.Config, log logrus.FieldLogger) *SnapshotJob {
	return &SnapshotJob{
		stores:     st,
		calculator: smartfollow.NewCalculator(st, cfg, log),
		log:        log,
	}
}

// Run computes and caches the day's snapshot for every tracked entity.
func (j *SnapshotJob) Run(ctx context.Context, asOfDate string) (*SnapshotResult, error) {
	runID := uuid.New().String()
	result := &SnapshotResult{RunID: runID, AsOfDate: asOfDate}
	log := j.log.WithFields(logrus.Fields{"runId": runID, "asOfDate": asOfDate})
	start := time.Now()

	if _, err := model.ParseDate(asOfDate); err != nil {
		result.ErrorMessage = err.Error()
		return result, err
	}

	log.Info("starting snapshot sweep")

	entities, err := j.stores.Entities.TrackedEntities(ctx)
	if err != nil {
		result.ErrorMessage = "failed to list tracked entities: " + err.Error()
		return result, err
	}
	result.Entities = len(entities)

	for _, entity := range entities {
		key := model.SnapshotKey{
			EntityType: entity.EntityType,
			EntityID:   entity.EntityID,
			XUserID:    entity.XUserID,
			AsOfDate:   asOfDate,
		}

		res, err := j.calculator.SmartFollowers(ctx, key)
		if err != nil {
			result.Failures++
			log.WithError(err).WithFields(logrus.Fields{
				"entityType": entity.EntityType,
				"entityId":   entity.EntityID,
			}).Error("snapshot failed for entity")
			continue
		}

		result.Snapshots++
		if res.IsEstimate {
			result.Estimates++
		}
	}

	result.DurationSeconds = time.Since(start).Seconds()
	result.Success = true

	log.WithFields(logrus.Fields{
		"entities":    result.Entities,
		"snapshots":   result.Snapshots,
		"estimates":   result.Estimates,
		"failures":    result.Failures,
		"durationSec": result.DurationSeconds,
	}).Info("snapshot sweep complete")
	return result, nil
}
