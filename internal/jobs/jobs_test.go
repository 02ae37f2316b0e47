package jobs

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/signalhouse/creatorstats/internal/model"
	"github.com/signalhouse/creatorstats/internal/smartfollow"
	"github.com/signalhouse/creatorstats/internal/smartrank"
	"github.com/signalhouse/creatorstats/internal/store"
)

type fakeGraph struct {
	edges     []model.FollowEdge
	followers map[string][]string
	err       error
}

func (f *fakeGraph) HasFollowers(_ context.Context, xUserID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return len(f.followers[xUserID]) > 0, nil
}

func (f *fakeGraph) Followers(_ context.Context, xUserID string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.followers[xUserID], nil
}

func (f *fakeGraph) Edges(context.Context) ([]model.FollowEdge, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.edges, nil
}

type fakeProfiles struct {
	accounts map[string]model.TrackedAccount
	err      error
}

func (f *fakeProfiles) Account(_ context.Context, xUserID string) (*model.TrackedAccount, error) {
	if f.err != nil {
		return nil, f.err
	}
	if a, ok := f.accounts[xUserID]; ok {
		return &a, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeProfiles) Accounts(_ context.Context, xUserIDs []string) ([]model.TrackedAccount, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.TrackedAccount
	for _, id := range xUserIDs {
		if a, ok := f.accounts[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeContent struct{}

func (fakeContent) ByEntity(context.Context, model.EntityType, string, time.Time, time.Time) ([]model.ContentRecord, error) {
	return nil, nil
}

func (fakeContent) ByAuthor(context.Context, string, time.Time, time.Time) ([]model.ContentRecord, error) {
	return nil, nil
}

type fakeScores struct {
	put    []model.SmartAccountScore
	putErr error
}

func (f *fakeScores) SmartSet(_ context.Context, asOfDate string) (map[string]struct{}, error) {
	set := make(map[string]struct{})
	for _, s := range f.put {
		if s.AsOfDate == asOfDate && s.IsSmart {
			set[s.AccountID] = struct{}{}
		}
	}
	return set, nil
}

func (f *fakeScores) ScoresFor(context.Context, string, []string) (map[string]float64, error) {
	return nil, nil
}

func (f *fakeScores) PutScores(_ context.Context, scores []model.SmartAccountScore) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.put = append(f.put, scores...)
	return nil
}

type fakeSnapshots struct {
	snaps map[model.SnapshotKey]model.SmartFollowersSnapshot
}

func (f *fakeSnapshots) Get(_ context.Context, key model.SnapshotKey) (*model.SmartFollowersSnapshot, error) {
	if s, ok := f.snaps[key]; ok {
		return &s, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeSnapshots) Insert(_ context.Context, snap model.SmartFollowersSnapshot) error {
	key := snap.Key()
	if _, ok := f.snaps[key]; ok {
		return store.ErrAlreadyExists
	}
	f.snaps[key] = snap
	return nil
}

func (f *fakeSnapshots) History(context.Context, model.EntityType, string, string, string, string) ([]model.SmartFollowersSnapshot, error) {
	return nil, nil
}

type fakeEntities struct {
	entities []model.TrackedEntity
	err      error
}

func (f *fakeEntities) TrackedEntities(context.Context) ([]model.TrackedEntity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entities, nil
}

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func oldAccount(id string, followers, following int) model.TrackedAccount {
	created := time.Now().UTC().AddDate(-2, 0, 0)
	return model.TrackedAccount{
		XUserID:          id,
		Handle:           id,
		FollowerCount:    followers,
		FollowingCount:   following,
		AccountCreatedAt: &created,
	}
}

func rankConfig() smartrank.Config {
	return smartrank.Config{
		Damping:           0.85,
		Iterations:        30,
		MinAccountAgeDays: 90,
		BotRiskThreshold:  0.6,
		TopN:              2,
	}
}

func TestSmartRankJobRun(t *testing.T) {
	graph := &fakeGraph{edges: []model.FollowEdge{
		{SrcAccountID: "a", DstAccountID: "b"},
		{SrcAccountID: "c", DstAccountID: "b"},
		{SrcAccountID: "b", DstAccountID: "a"},
	}}
	profiles := &fakeProfiles{accounts: map[string]model.TrackedAccount{
		"a": oldAccount("a", 1000, 500),
		"b": oldAccount("b", 5000, 200),
		"c": oldAccount("c", 300, 250),
	}}
	scores := &fakeScores{}

	st := store.Stores{
		Graph:       graph,
		Profiles:    profiles,
		Content:     fakeContent{},
		SmartScores: scores,
		Snapshots:   &fakeSnapshots{snaps: map[model.SnapshotKey]model.SmartFollowersSnapshot{}},
	}

	job := NewSmartRankJob(st, rankConfig(), testLogger())
	result, err := job.Run(context.Background(), "2026-04-01")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if !result.Success {
		t.Error("result should be marked successful")
	}
	if result.RunID == "" {
		t.Error("run should carry an ID")
	}
	if result.AccountsScored != 3 {
		t.Errorf("accounts scored = %d, want 3", result.AccountsScored)
	}
	if result.SmartAccounts != 2 {
		t.Errorf("smart accounts = %d, want 2 (TopN cutoff)", result.SmartAccounts)
	}

	if len(scores.put) != 3 {
		t.Fatalf("persisted %d scores, want 3", len(scores.put))
	}
	byID := make(map[string]model.SmartAccountScore, len(scores.put))
	for _, s := range scores.put {
		if s.AsOfDate != "2026-04-01" {
			t.Errorf("score for %s has date %q", s.AccountID, s.AsOfDate)
		}
		byID[s.AccountID] = s
	}
	if !byID["b"].IsSmart {
		t.Error("most-followed account should be admitted")
	}
}

func TestSmartRankJobInvalidDate(t *testing.T) {
	st := store.Stores{
		Graph:       &fakeGraph{},
		Profiles:    &fakeProfiles{},
		Content:     fakeContent{},
		SmartScores: &fakeScores{},
		Snapshots:   &fakeSnapshots{},
	}

	job := NewSmartRankJob(st, rankConfig(), testLogger())
	result, err := job.Run(context.Background(), "01/04/2026")
	if err == nil {
		t.Fatal("malformed date should be rejected")
	}
	if result.Success {
		t.Error("failed run must not be marked successful")
	}
}

func TestSmartRankJobGraphFailure(t *testing.T) {
	st := store.Stores{
		Graph:       &fakeGraph{err: errors.New("graph offline")},
		Profiles:    &fakeProfiles{},
		Content:     fakeContent{},
		SmartScores: &fakeScores{},
		Snapshots:   &fakeSnapshots{},
	}

	job := NewSmartRankJob(st, rankConfig(), testLogger())
	result, err := job.Run(context.Background(), "2026-04-01")
	if err == nil {
		t.Fatal("graph failure should propagate")
	}
	if result.ErrorMessage == "" {
		t.Error("result should carry the error message")
	}
}

func snapshotConfig() smartfollow.Config {
	return smartfollow.Config{
		FallbackWindowDays: 30,
		FallbackMinScore:   100,
		FallbackPercentile: 80,
	}
}

func TestSnapshotJobRun(t *testing.T) {
	graph := &fakeGraph{followers: map[string][]string{
		"x-1": {"f1", "f2"},
	}}
	profiles := &fakeProfiles{accounts: map[string]model.TrackedAccount{
		"x-1": oldAccount("x-1", 2, 0),
	}}
	scores := &fakeScores{put: []model.SmartAccountScore{
		{AccountID: "f1", AsOfDate: "2026-04-01", IsSmart: true},
	}}
	snaps := &fakeSnapshots{snaps: map[model.SnapshotKey]model.SmartFollowersSnapshot{}}
	entities := &fakeEntities{entities: []model.TrackedEntity{
		{EntityType: model.EntityProject, EntityID: "proj-1", XUserID: "x-1"},
		{EntityType: model.EntityCreator, EntityID: "c-1", XUserID: "x-2"},
	}}

	st := store.Stores{
		Graph:       graph,
		Profiles:    profiles,
		Content:     fakeContent{},
		SmartScores: scores,
		Snapshots:   snaps,
		Entities:    entities,
	}

	job := NewSnapshotJob(st, snapshotConfig(), testLogger())
	result, err := job.Run(context.Background(), "2026-04-01")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.Entities != 2 {
		t.Errorf("entities = %d, want 2", result.Entities)
	}
	if result.Snapshots != 2 {
		t.Errorf("snapshots = %d, want 2", result.Snapshots)
	}
	// x-2 has no graph data and no content, so its snapshot is an estimate.
	if result.Estimates != 1 {
		t.Errorf("estimates = %d, want 1", result.Estimates)
	}
	if result.Failures != 0 {
		t.Errorf("failures = %d, want 0", result.Failures)
	}
	if len(snaps.snaps) != 2 {
		t.Errorf("persisted %d snapshots, want 2", len(snaps.snaps))
	}

	key := model.SnapshotKey{EntityType: model.EntityProject, EntityID: "proj-1", XUserID: "x-1", AsOfDate: "2026-04-01"}
	snap, ok := snaps.snaps[key]
	if !ok {
		t.Fatalf("missing snapshot for %+v", key)
	}
	if snap.SmartFollowersCount != 1 {
		t.Errorf("smart count = %d, want 1 (f1 only)", snap.SmartFollowersCount)
	}
	if snap.SmartFollowersPct != 50 {
		t.Errorf("smart pct = %v, want 50", snap.SmartFollowersPct)
	}
}

func TestSnapshotJobBadEntityContinues(t *testing.T) {
	entities := &fakeEntities{entities: []model.TrackedEntity{
		{EntityType: "dao", EntityID: "d-1", XUserID: "x-bad"},
		{EntityType: model.EntityProject, EntityID: "proj-1", XUserID: "x-1"},
	}}
	snaps := &fakeSnapshots{snaps: map[model.SnapshotKey]model.SmartFollowersSnapshot{}}

	st := store.Stores{
		Graph:       &fakeGraph{},
		Profiles:    &fakeProfiles{},
		Content:     fakeContent{},
		SmartScores: &fakeScores{},
		Snapshots:   snaps,
		Entities:    entities,
	}

	job := NewSnapshotJob(st, snapshotConfig(), testLogger())
	result, err := job.Run(context.Background(), "2026-04-01")
	if err != nil {
		t.Fatalf("one bad entity must not stop the sweep: %v", err)
	}

	if result.Failures != 1 {
		t.Errorf("failures = %d, want 1", result.Failures)
	}
	if result.Snapshots != 1 {
		t.Errorf("snapshots = %d, want 1", result.Snapshots)
	}
	if !result.Success {
		t.Error("sweep with partial failures still completes")
	}
}

func TestSnapshotJobListFailure(t *testing.T) {
	st := store.Stores{
		Graph:       &fakeGraph{},
		Profiles:    &fakeProfiles{},
		Content:     fakeContent{},
		SmartScores: &fakeScores{},
		Snapshots:   &fakeSnapshots{},
		Entities:    &fakeEntities{err: errors.New("entities offline")},
	}

	job := NewSnapshotJob(st, snapshotConfig(), testLogger())
	if _, err := job.Run(context.Background(), "2026-04-01"); err == nil {
		t.Fatal("entity list failure should propagate")
	}
}
