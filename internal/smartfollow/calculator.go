// Package smartfollow answers smart-follower lookups with a strict source
// precedence: the cached daily snapshot wins, then the follow graph, then
// an engagement-based estimate. Missing data degrades the answer down that
// chain; it never fails a lookup.
package smartfollow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/signalhouse/creatorstats/internal/analyzer"
	"github.com/signalhouse/creatorstats/internal/model"
	"github.com/signalhouse/creatorstats/internal/store"
)

// Config holds the fallback-estimate knobs.
type Config struct {
	// FallbackWindowDays is the engagement lookback used when no graph
	// data exists for the account.
	FallbackWindowDays int
	// FallbackMinScore is the absolute engagement floor an author must
	// clear to count toward the estimate.
	FallbackMinScore float64
	// FallbackPercentile positions the relative bar within the window's
	// author distribution.
	FallbackPercentile float64
}

// Calculator computes smart-follower results and maintains the snapshot
// cache.
type Calculator struct {
	stores  store.Stores
	weights analyzer.EngagementWeights
	cfg     Config
	log     logrus.FieldLogger
}

// NewCalculator creates a calculator over the given stores.
func NewCalculator(st store.Stores, cfg Config, log logrus.FieldLogger) *Calculator {
	return &Calculator{
		stores:  st,
		weights: analyzer.DefaultEngagementWeights(),
		cfg:     cfg,
		log:     log,
	}
}

// SmartFollowers returns the smart-follower result for the key. A cached
// snapshot is returned verbatim; otherwise the result is computed, cached,
// and returned. Invalid keys are the only errors raised: store failures
// log a warning and degrade to the next source.
func (c *Calculator) SmartFollowers(ctx context.Context, key model.SnapshotKey) (model.SmartFollowersResult, error) {
	if !key.EntityType.Valid() {
		return model.SmartFollowersResult{}, fmt.Errorf("unknown entity type: %q", key.EntityType)
	}
	day, err := model.ParseDate(key.AsOfDate)
	if err != nil {
		return model.SmartFollowersResult{}, err
	}

	snap, err := c.stores.Snapshots.Get(ctx, key)
	if err == nil {
		return snap.Result(), nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		c.log.WithError(err).WithField("entityId", key.EntityID).Warn("snapshot read failed, recomputing")
	}

	result := c.compute(ctx, key, day)
	return c.persist(ctx, key, result), nil
}

// Delta compares the key's result against the same lookup seven and thirty
// days earlier. Each leg may hit the cache or trigger a fresh computation.
func (c *Calculator) Delta(ctx context.Context, key model.SnapshotKey) (model.SmartFollowersDelta, error) {
	current, err := c.SmartFollowers(ctx, key)
	if err != nil {
		return model.SmartFollowersDelta{}, err
	}

	day, err := model.ParseDate(key.AsOfDate)
	if err != nil {
		return model.SmartFollowersDelta{}, err
	}

	weekKey := key
	weekKey.AsOfDate = model.FormatDate(day.AddDate(0, 0, -7))
	week, err := c.SmartFollowers(ctx, weekKey)
	if err != nil {
		return model.SmartFollowersDelta{}, err
	}

	monthKey := key
	monthKey.AsOfDate = model.FormatDate(day.AddDate(0, 0, -30))
	month, err := c.SmartFollowers(ctx, monthKey)
	if err != nil {
		return model.SmartFollowersDelta{}, err
	}

	return model.SmartFollowersDelta{
		Current:   current,
		Change7d:  current.Count - week.Count,
		Change30d: current.Count - month.Count,
	}, nil
}

// compute derives the result from the follow graph, or from the engagement
// estimate when the account has no graph data.
func (c *Calculator) compute(ctx context.Context, key model.SnapshotKey, day time.Time) model.SmartFollowersResult {
	hasGraph, err := c.stores.Graph.HasFollowers(ctx, key.XUserID)
	if err != nil {
		c.log.WithError(err).WithField("xUserId", key.XUserID).Warn("graph check failed, using engagement estimate")
		return c.estimate(ctx, key, day)
	}
	if !hasGraph {
		return c.estimate(ctx, key, day)
	}

	followers, err := c.stores.Graph.Followers(ctx, key.XUserID)
	if err != nil {
		c.log.WithError(err).WithField("xUserId", key.XUserID).Warn("follower read failed, using engagement estimate")
		return c.estimate(ctx, key, day)
	}

	smartSet, err := c.stores.SmartScores.SmartSet(ctx, key.AsOfDate)
	if err != nil {
		c.log.WithError(err).WithField("asOfDate", key.AsOfDate).Warn("smart set read failed, using engagement estimate")
		return c.estimate(ctx, key, day)
	}

	count := 0
	for _, id := range followers {
		if _, ok := smartSet[id]; ok {
			count++
		}
	}

	return model.SmartFollowersResult{
		Count: count,
		Pct:   c.percentage(ctx, key.XUserID, count),
	}
}

// percentage divides the smart count by the account's total followers,
// clamped to [0,100]. An unknown or zero denominator yields zero.
func (c *Calculator) percentage(ctx context.Context, xUserID string, count int) float64 {
	acct, err := c.stores.Profiles.Account(ctx, xUserID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.log.WithError(err).WithField("xUserId", xUserID).Warn("profile read failed, reporting zero percentage")
		}
		return 0
	}
	if acct.FollowerCount <= 0 {
		return 0
	}
	pct := float64(count) / float64(acct.FollowerCount) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// estimate approximates smart followers from recent engagement: each author
// whose engagement clears both the absolute floor and the percentile bar
// counts as one. No denominator exists on this path, so the percentage
// stays zero and the result is flagged as an estimate.
func (c *Calculator) estimate(ctx context.Context, key model.SnapshotKey, day time.Time) model.SmartFollowersResult {
	to := day.AddDate(0, 0, 1)
	from := to.AddDate(0, 0, -c.cfg.FallbackWindowDays)

	records, err := c.stores.Content.ByEntity(ctx, key.EntityType, key.EntityID, from, to)
	if err != nil {
		c.log.WithError(err).WithField("entityId", key.EntityID).Warn("content read failed, estimating zero")
		return model.SmartFollowersResult{IsEstimate: true}
	}

	qualified := analyzer.HighTrustEngagers(records, c.weights, c.cfg.FallbackMinScore, c.cfg.FallbackPercentile)
	return model.SmartFollowersResult{
		Count:      len(qualified),
		IsEstimate: true,
	}
}

// persist caches the computed result for the day. Losing the insert race
// means another writer already fixed the day's answer, so that row wins.
func (c *Calculator) persist(ctx context.Context, key model.SnapshotKey, result model.SmartFollowersResult) model.SmartFollowersResult {
	snap := model.SmartFollowersSnapshot{
		EntityType:          key.EntityType,
		EntityID:            key.EntityID,
		XUserID:             key.XUserID,
		AsOfDate:            key.AsOfDate,
		SmartFollowersCount: result.Count,
		SmartFollowersPct:   result.Pct,
		IsEstimate:          result.IsEstimate,
		CreatedAt:           time.Now().UTC(),
	}

	err := c.stores.Snapshots.Insert(ctx, snap)
	if err == nil {
		return result
	}
	if errors.Is(err, store.ErrAlreadyExists) {
		if existing, getErr := c.stores.Snapshots.Get(ctx, key); getErr == nil {
			return existing.Result()
		}
		return result
	}

	c.log.WithError(err).WithField("entityId", key.EntityID).Warn("snapshot write failed, returning uncached result")
	return result
}
