package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/signalhouse/creatorstats/internal/model"
	"github.com/signalhouse/creatorstats/internal/store"
)

// GraphStore reads the follow-edge table written by the ingester.
type GraphStore struct {
	db *sqlx.DB
}

var _ store.GraphStore = (*GraphStore)(nil)

// NewGraphStore creates a graph reader on the shared pool.
func NewGraphStore(db *sqlx.DB) *GraphStore {
	return &GraphStore{db: db}
}

// HasFollowers reports whether any follower edges exist for the account.
func (s *GraphStore) HasFollowers(ctx context.Context, xUserID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM follow_edges WHERE dst_account_id = $1)`, xUserID)
	if err != nil {
		return false, fmt.Errorf("failed to check followers for %s: %w", xUserID, err)
	}
	return exists, nil
}

// Followers returns the account IDs following the given account.
func (s *GraphStore) Followers(ctx context.Context, xUserID string) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids,
		`SELECT src_account_id FROM follow_edges WHERE dst_account_id = $1`, xUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load followers for %s: %w", xUserID, err)
	}
	return ids, nil
}

// Edges returns the full follow graph.
func (s *GraphStore) Edges(ctx context.Context) ([]model.FollowEdge, error) {
	var edges []model.FollowEdge
	err := s.db.SelectContext(ctx, &edges,
		`SELECT src_account_id, dst_account_id FROM follow_edges`)
	if err != nil {
		return nil, fmt.Errorf("failed to load follow graph: %w", err)
	}
	return edges, nil
}
