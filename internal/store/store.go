// Package store defines the persistence contracts the scoring engine reads
// and writes through. Implementations live in the postgres and dynamo
// subpackages; consumers depend only on these interfaces so tests can swap
// in fakes.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/signalhouse/creatorstats/internal/model"
)

// ErrNotFound is returned by point reads when no row matches the key.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned by insert-if-absent writes when a row with
// the same key already exists. Callers treat it as "someone else won the
// race" rather than a failure.
var ErrAlreadyExists = errors.New("already exists")

// GraphStore reads the follow graph maintained by the upstream ingester.
type GraphStore interface {
	// HasFollowers reports whether any follower edges exist for the account.
	HasFollowers(ctx context.Context, xUserID string) (bool, error)
	// Followers returns the account IDs following the given account.
	Followers(ctx context.Context, xUserID string) ([]string, error)
	// Edges returns the full follow graph for the ranking stage.
	Edges(ctx context.Context) ([]model.FollowEdge, error)
}

// ProfileStore reads tracked platform accounts.
type ProfileStore interface {
	Account(ctx context.Context, xUserID string) (*model.TrackedAccount, error)
	Accounts(ctx context.Context, xUserIDs []string) ([]model.TrackedAccount, error)
}

// ContentStore reads posts and mentions attributed to an entity.
type ContentStore interface {
	// ByEntity returns content for the entity created within [from, to),
	// newest first.
	ByEntity(ctx context.Context, entityType model.EntityType, entityID string, from, to time.Time) ([]model.ContentRecord, error)
	// ByAuthor returns content authored by the account within [from, to),
	// newest first, across every entity it touched.
	ByAuthor(ctx context.Context, authorID string, from, to time.Time) ([]model.ContentRecord, error)
}

// SmartScoreStore persists the daily account classifications produced by
// the ranking stage and serves them back to the scoring paths.
type SmartScoreStore interface {
	// SmartSet returns the IDs of accounts classified smart on the given day.
	SmartSet(ctx context.Context, asOfDate string) (map[string]struct{}, error)
	// ScoresFor returns smart scores for the requested accounts on the given
	// day. Accounts with no row that day are absent from the result.
	ScoresFor(ctx context.Context, asOfDate string, accountIDs []string) (map[string]float64, error)
	// PutScores upserts a day's classifications. Rankings are recomputable,
	// so rewriting a day is allowed.
	PutScores(ctx context.Context, scores []model.SmartAccountScore) error
}

// SnapshotStore persists date-keyed smart-followers snapshots. Snapshots are
// write-once per key: Insert must fail with ErrAlreadyExists instead of
// overwriting.
type SnapshotStore interface {
	Get(ctx context.Context, key model.SnapshotKey) (*model.SmartFollowersSnapshot, error)
	Insert(ctx context.Context, snap model.SmartFollowersSnapshot) error
	// History returns snapshots for the entity with asOfDate in [from, to],
	// oldest first.
	History(ctx context.Context, entityType model.EntityType, entityID, xUserID, from, to string) ([]model.SmartFollowersSnapshot, error)
}

// EntityStore lists the entities the daily jobs iterate over.
type EntityStore interface {
	TrackedEntities(ctx context.Context) ([]model.TrackedEntity, error)
}

// Stores bundles every backend the engine needs. Jobs receive one of these
// instead of six separate arguments.
type Stores struct {
	Graph       GraphStore
	Profiles    ProfileStore
	Content     ContentStore
	SmartScores SmartScoreStore
	Snapshots   SnapshotStore
	Entities    EntityStore
}
