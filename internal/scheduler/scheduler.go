// Package scheduler drives the scoring pipeline in-process for
// deployments that run on a plain host instead of Lambda.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/signalhouse/creatorstats/internal/jobs"
	"github.com/signalhouse/creatorstats/internal/model"
)

type Scheduler struct {
	smartRank *jobs.SmartRankJob
	snapshot  *jobs.SnapshotJob
	interval  time.Duration
	log       logrus.FieldLogger
}

func New(smartRank *jobs.SmartRankJob, snapshot *jobs.SnapshotJob, interval time.Duration, log logrus.FieldLogger) *Scheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{
		smartRank: smartRank,
		snapshot:  snapshot,
		interval:  interval,
		log:       log,
	}
}

// Start runs the pipeline immediately, then on every tick, until the
// context is cancelled. A failed pass is logged and the next tick retries
// with a fresh date.
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if err := s.RunOnce(ctx, today()); err != nil {
		s.log.WithError(err).Error("initial pipeline pass failed")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.RunOnce(ctx, today()); err != nil {
				s.log.WithError(err).Error("scheduled pipeline pass failed")
			}
		}
	}
}

// RunOnce executes one full pass for the given date: the ranking job
// first, so the snapshot sweep sees that day's smart set.
func (s *Scheduler) RunOnce(ctx context.Context, asOfDate string) error {
	s.log.WithField("asOfDate", asOfDate).Info("starting pipeline pass")

	rankRes, err := s.smartRank.Run(ctx, asOfDate)
	if err != nil {
		return fmt.Errorf("smart ranking failed: %w", err)
	}

	snapRes, err := s.snapshot.Run(ctx, asOfDate)
	if err != nil {
		return fmt.Errorf("snapshot sweep failed: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"asOfDate":      asOfDate,
		"smartAccounts": rankRes.SmartAccounts,
		"snapshots":     snapRes.Snapshots,
		"failures":      snapRes.Failures,
	}).Info("pipeline pass complete")
	return nil
}

func today() string {
	return time.Now().UTC().Format(model.DateFormat)
}
