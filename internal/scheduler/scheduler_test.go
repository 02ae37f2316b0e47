package scheduler

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/signalhouse/creatorstats/internal/jobs"
	"github.com/signalhouse/creatorstats/internal/model"
	"github.com/signalhouse/creatorstats/internal/smartfollow"
	"github.com/signalhouse/creatorstats/internal/smartrank"
	"github.com/signalhouse/creatorstats/internal/store"
)

// recorder notes which pipeline stage touched its store first.
type recorder struct {
	calls []string
}

type fakeGraph struct {
	rec *recorder
	err error
}

func (f *fakeGraph) HasFollowers(context.Context, string) (bool, error) { return false, f.err }
func (f *fakeGraph) Followers(context.Context, string) ([]string, error) {
	return nil, f.err
}

func (f *fakeGraph) Edges(context.Context) ([]model.FollowEdge, error) {
	if f.rec != nil {
		f.rec.calls = append(f.rec.calls, "rank")
	}
	return nil, f.err
}

type fakeProfiles struct{}

func (fakeProfiles) Account(context.Context, string) (*model.TrackedAccount, error) {
	return nil, store.ErrNotFound
}

func (fakeProfiles) Accounts(context.Context, []string) ([]model.TrackedAccount, error) {
	return nil, nil
}

type fakeContent struct{}

func (fakeContent) ByEntity(context.Context, model.EntityType, string, time.Time, time.Time) ([]model.ContentRecord, error) {
	return nil, nil
}

func (fakeContent) ByAuthor(context.Context, string, time.Time, time.Time) ([]model.ContentRecord, error) {
	return nil, nil
}

type fakeScores struct{}

func (fakeScores) SmartSet(context.Context, string) (map[string]struct{}, error) { return nil, nil }
func (fakeScores) ScoresFor(context.Context, string, []string) (map[string]float64, error) {
	return nil, nil
}
func (fakeScores) PutScores(context.Context, []model.SmartAccountScore) error { return nil }

type fakeSnapshots struct{}

func (fakeSnapshots) Get(context.Context, model.SnapshotKey) (*model.SmartFollowersSnapshot, error) {
	return nil, store.ErrNotFound
}

func (fakeSnapshots) Insert(context.Context, model.SmartFollowersSnapshot) error { return nil }

func (fakeSnapshots) History(context.Context, model.EntityType, string, string, string, string) ([]model.SmartFollowersSnapshot, error) {
	return nil, nil
}

type fakeEntities struct {
	rec *recorder
}

func (f *fakeEntities) TrackedEntities(context.Context) ([]model.TrackedEntity, error) {
	if f.rec != nil {
		f.rec.calls = append(f.rec.calls, "snapshot")
	}
	return nil, nil
}

func testScheduler(graphErr error, rec *recorder) *Scheduler {
	st := store.Stores{
		Graph:       &fakeGraph{rec: rec, err: graphErr},
		Profiles:    fakeProfiles{},
		Content:     fakeContent{},
		SmartScores: fakeScores{},
		Snapshots:   fakeSnapshots{},
		Entities:    &fakeEntities{rec: rec},
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	smartRank := jobs.NewSmartRankJob(st, smartrank.Config{
		Damping:           0.85,
		Iterations:        30,
		MinAccountAgeDays: 90,
		BotRiskThreshold:  0.6,
		TopN:              500,
	}, log)
	snapshot := jobs.NewSnapshotJob(st, smartfollow.Config{
		FallbackWindowDays: 30,
		FallbackMinScore:   100,
		FallbackPercentile: 80,
	}, log)

	return New(smartRank, snapshot, time.Hour, log)
}

func TestRunOnceOrdersStages(t *testing.T) {
	rec := &recorder{}
	s := testScheduler(nil, rec)

	if err := s.RunOnce(context.Background(), "2026-04-01"); err != nil {
		t.Fatalf("run once: %v", err)
	}

	if len(rec.calls) != 2 || rec.calls[0] != "rank" || rec.calls[1] != "snapshot" {
		t.Fatalf("stages ran as %v, want [rank snapshot]", rec.calls)
	}
}

func TestRunOnceStopsAfterRankFailure(t *testing.T) {
	rec := &recorder{}
	s := testScheduler(errors.New("graph offline"), rec)

	err := s.RunOnce(context.Background(), "2026-04-01")
	if err == nil {
		t.Fatal("rank failure should propagate")
	}
	if !strings.Contains(err.Error(), "smart ranking failed") {
		t.Errorf("unexpected error: %v", err)
	}

	for _, call := range rec.calls {
		if call == "snapshot" {
			t.Error("snapshot sweep must not run after a failed ranking pass")
		}
	}
}

func TestStartReturnsOnCancel(t *testing.T) {
	s := testScheduler(nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after cancellation")
	}
}
