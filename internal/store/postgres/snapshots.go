package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/signalhouse/creatorstats/internal/model"
	"github.com/signalhouse/creatorstats/internal/store"
)

// SnapshotStore persists smart-followers snapshots in Postgres. The unique
// constraint on (entity_type, entity_id, x_user_id, as_of_date) is the only
// concurrency control: concurrent writers race to one winning row.
type SnapshotStore struct {
	db *sqlx.DB
}

var _ store.SnapshotStore = (*SnapshotStore)(nil)

// NewSnapshotStore creates a snapshot store on the shared pool.
func NewSnapshotStore(db *sqlx.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Get returns the snapshot for the key, or store.ErrNotFound.
func (s *SnapshotStore) Get(ctx context.Context, key model.SnapshotKey) (*model.SmartFollowersSnapshot, error) {
	var snap model.SmartFollowersSnapshot
	err := s.db.GetContext(ctx, &snap,
		`SELECT entity_type, entity_id, x_user_id, as_of_date, smart_followers_count,
		        smart_followers_pct, is_estimate, created_at
		   FROM smart_followers_snapshots
		  WHERE entity_type = $1 AND entity_id = $2 AND x_user_id = $3 AND as_of_date = $4`,
		key.EntityType, key.EntityID, key.XUserID, key.AsOfDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s/%s@%s: %w", key.EntityType, key.EntityID, key.AsOfDate, err)
	}
	return &snap, nil
}

// Insert writes the snapshot if no row exists for its key, returning
// store.ErrAlreadyExists when one does.
func (s *SnapshotStore) Insert(ctx context.Context, snap model.SmartFollowersSnapshot) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO smart_followers_snapshots
		     (entity_type, entity_id, x_user_id, as_of_date, smart_followers_count,
		      smart_followers_pct, is_estimate, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (entity_type, entity_id, x_user_id, as_of_date) DO NOTHING`,
		snap.EntityType, snap.EntityID, snap.XUserID, snap.AsOfDate,
		snap.SmartFollowersCount, snap.SmartFollowersPct, snap.IsEstimate, snap.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot %s/%s@%s: %w", snap.EntityType, snap.EntityID, snap.AsOfDate, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read snapshot insert result: %w", err)
	}
	if n == 0 {
		return store.ErrAlreadyExists
	}
	return nil
}

// History returns snapshots for the entity with as_of_date in [from, to],
// oldest first. Day keys sort lexicographically, so plain BETWEEN works.
func (s *SnapshotStore) History(ctx context.Context, entityType model.EntityType, entityID, xUserID, from, to string) ([]model.SmartFollowersSnapshot, error) {
	var snaps []model.SmartFollowersSnapshot
	err := s.db.SelectContext(ctx, &snaps,
		`SELECT entity_type, entity_id, x_user_id, as_of_date, smart_followers_count,
		        smart_followers_pct, is_estimate, created_at
		   FROM smart_followers_snapshots
		  WHERE entity_type = $1 AND entity_id = $2 AND x_user_id = $3
		    AND as_of_date BETWEEN $4 AND $5
		  ORDER BY as_of_date`,
		entityType, entityID, xUserID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot history for %s/%s: %w", entityType, entityID, err)
	}
	return snaps, nil
}
