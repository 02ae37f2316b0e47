// Package scoring assembles complete scorecards on demand: the
// smart-follower delta, composite pulses per window, and the topic spread
// of recent content. Request handlers and the operator CLIs drive it; the
// daily jobs only prime the snapshot cache it reads through.
package scoring

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/signalhouse/creatorstats/internal/analyzer"
	"github.com/signalhouse/creatorstats/internal/model"
	"github.com/signalhouse/creatorstats/internal/signal"
	"github.com/signalhouse/creatorstats/internal/smartfollow"
	"github.com/signalhouse/creatorstats/internal/store"
)

// Service is the on-demand read path over the platform stores.
type Service struct {
	stores  store.Stores
	calc    *smartfollow.Calculator
	metrics *signal.MetricsBuilder
	scorer  *signal.Scorer
	log     logrus.FieldLogger
}

// NewService wires the calculator and the composite scorer over one store
// bundle.
func NewService(st store.Stores, calcCfg smartfollow.Config, sigCfg signal.Config, log logrus.FieldLogger) *Service {
	return &Service{
		stores:  st,
		calc:    smartfollow.NewCalculator(st, calcCfg, log),
		metrics: signal.NewMetricsBuilder(),
		scorer:  signal.NewScorer(sigCfg),
		log:     log,
	}
}

// Calculator exposes the underlying smart-follower calculator for callers
// that only need point reads.
func (s *Service) Calculator() *smartfollow.Calculator {
	return s.calc
}

// TopicCount is one taxonomy topic with the number of window posts tagged
// with it.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// EntityScore is the full scorecard for one entity on one day.
type EntityScore struct {
	Entity         model.TrackedEntity       `json:"entity"`
	AsOfDate       string                    `json:"asOfDate"`
	SmartFollowers model.SmartFollowersDelta `json:"smartFollowers"`
	Pulses         []model.Pulse             `json:"pulses"`
	Topics         []TopicCount              `json:"topics,omitempty"`
}

// ScoreEntity computes the scorecard for one entity as of a date: the
// smart-follower delta plus one composite pulse per requested window.
// Topics are tallied over the widest requested window. Store failures on
// the content side degrade to empty windows; only an invalid entity or
// date returns an error.
func (s *Service) ScoreEntity(ctx context.Context, entity model.TrackedEntity, asOfDate string, windows []model.Window) (*EntityScore, error) {
	key := model.SnapshotKey{
		EntityType: entity.EntityType,
		EntityID:   entity.EntityID,
		XUserID:    entity.XUserID,
		AsOfDate:   asOfDate,
	}
	delta, err := s.calc.Delta(ctx, key)
	if err != nil {
		return nil, err
	}

	// Delta validated the date already.
	asOf, _ := model.ParseDate(asOfDate)
	dayEnd := asOf.AddDate(0, 0, 1)

	score := &EntityScore{
		Entity:         entity,
		AsOfDate:       asOfDate,
		SmartFollowers: delta,
	}

	var widest []model.ContentRecord
	var widestSpan time.Duration
	for _, w := range windows {
		records := s.windowContent(ctx, entity, dayEnd.Add(-w.Duration()), dayEnd)
		scores := s.authorScores(ctx, asOfDate, records)
		metrics := s.metrics.Build(records, scores)
		score.Pulses = append(score.Pulses, s.scorer.Pulse(w, records, metrics, delta.Current))

		if w.Duration() > widestSpan {
			widestSpan = w.Duration()
			widest = records
		}
	}

	score.Topics = topicCounts(widest)
	return score, nil
}

// CreatorScore is the creator-level roll-up: the creator's own
// smart-follower standing plus the cross-project aggregate of their
// authored content.
type CreatorScore struct {
	Creator        model.TrackedEntity       `json:"creator"`
	AsOfDate       string                    `json:"asOfDate"`
	Window         model.Window              `json:"window"`
	SmartFollowers model.SmartFollowersDelta `json:"smartFollowers"`
	Aggregate      model.CreatorAggregate    `json:"aggregate"`
	ProjectPulses  map[string]model.Pulse    `json:"projectPulses,omitempty"`
}

// ScoreCreator folds one creator's window of authored content into
// per-project pulses and their aggregate. Posts not attributed to a
// project contribute nothing; a project with no computable pulse is
// excluded from the means rather than counted as zero.
func (s *Service) ScoreCreator(ctx context.Context, creator model.TrackedEntity, asOfDate string, window model.Window) (*CreatorScore, error) {
	if creator.EntityType != model.EntityCreator {
		return nil, fmt.Errorf("creator scoring requires a creator entity, got %q", creator.EntityType)
	}

	key := model.SnapshotKey{
		EntityType: creator.EntityType,
		EntityID:   creator.EntityID,
		XUserID:    creator.XUserID,
		AsOfDate:   asOfDate,
	}
	delta, err := s.calc.Delta(ctx, key)
	if err != nil {
		return nil, err
	}

	asOf, _ := model.ParseDate(asOfDate)
	dayEnd := asOf.AddDate(0, 0, 1)

	records, err := s.stores.Content.ByAuthor(ctx, creator.XUserID, dayEnd.Add(-window.Duration()), dayEnd)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"entityId": creator.EntityID,
			"xUserId":  creator.XUserID,
		}).Warn("authored content unavailable, aggregating empty window")
		records = nil
	}

	byProject := make(map[string][]model.ContentRecord)
	for _, rec := range records {
		if rec.EntityType != model.EntityProject {
			continue
		}
		byProject[rec.EntityID] = append(byProject[rec.EntityID], rec)
	}

	scores := s.authorScores(ctx, asOfDate, records)

	projectIDs := make([]string, 0, len(byProject))
	for id := range byProject {
		projectIDs = append(projectIDs, id)
	}
	sort.Strings(projectIDs)

	out := &CreatorScore{
		Creator:        creator,
		AsOfDate:       asOfDate,
		Window:         window,
		SmartFollowers: delta,
	}

	pulses := make([]model.Pulse, 0, len(projectIDs))
	for _, id := range projectIDs {
		recs := byProject[id]
		metrics := s.metrics.Build(recs, scores)
		pulse := s.scorer.Pulse(window, recs, metrics, delta.Current)
		if out.ProjectPulses == nil {
			out.ProjectPulses = make(map[string]model.Pulse, len(projectIDs))
		}
		out.ProjectPulses[id] = pulse
		pulses = append(pulses, pulse)
	}

	out.Aggregate = signal.AggregateCreator(pulses)
	return out, nil
}

// History returns the entity's snapshot history with asOfDate in
// [from, to], oldest first, for trend reports and sparklines.
func (s *Service) History(ctx context.Context, entity model.TrackedEntity, from, to string) ([]model.SmartFollowersSnapshot, error) {
	return s.stores.Snapshots.History(ctx, entity.EntityType, entity.EntityID, entity.XUserID, from, to)
}

// windowContent loads one window of entity content, degrading to an empty
// window when the store fails. An empty window scores as null, which is
// the honest answer when the rows cannot be read.
func (s *Service) windowContent(ctx context.Context, entity model.TrackedEntity, from, to time.Time) []model.ContentRecord {
	records, err := s.stores.Content.ByEntity(ctx, entity.EntityType, entity.EntityID, from, to)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"entityType": entity.EntityType,
			"entityId":   entity.EntityID,
		}).Warn("window content unavailable, scoring empty window")
		return nil
	}
	return records
}

// authorScores loads the day's smart scores for the distinct authors in
// records. Missing scores degrade to an empty map, which Build treats as
// all-zero.
func (s *Service) authorScores(ctx context.Context, asOfDate string, records []model.ContentRecord) map[string]float64 {
	seen := make(map[string]struct{}, len(records))
	var ids []string
	for _, rec := range records {
		id := rec.AuthorID
		if id == "" {
			id = rec.AuthorHandle
		}
		if id == "" {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	scores, err := s.stores.SmartScores.ScoresFor(ctx, asOfDate, ids)
	if err != nil {
		s.log.WithError(err).WithField("asOfDate", asOfDate).Warn("author smart scores unavailable, treating authors as unscored")
		return nil
	}
	return scores
}

// topicCounts tallies taxonomy topics across the records, most frequent
// first, ties broken alphabetically.
func topicCounts(records []model.ContentRecord) []TopicCount {
	counts := make(map[string]int)
	for _, rec := range records {
		for _, topic := range analyzer.Topics(rec.Text) {
			counts[topic]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	out := make([]TopicCount, 0, len(counts))
	for topic, n := range counts {
		out = append(out, TopicCount{Topic: topic, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Topic < out[j].Topic
	})
	return out
}
