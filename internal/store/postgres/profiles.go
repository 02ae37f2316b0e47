package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/signalhouse/creatorstats/internal/model"
	"github.com/signalhouse/creatorstats/internal/store"
)

// ProfileStore reads tracked platform accounts.
type ProfileStore struct {
	db *sqlx.DB
}

var _ store.ProfileStore = (*ProfileStore)(nil)

// NewProfileStore creates a profile reader on the shared pool.
func NewProfileStore(db *sqlx.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// Account returns a single tracked account, or store.ErrNotFound.
func (s *ProfileStore) Account(ctx context.Context, xUserID string) (*model.TrackedAccount, error) {
	var acct model.TrackedAccount
	err := s.db.GetContext(ctx, &acct,
		`SELECT x_user_id, handle, follower_count, following_count, account_created_at
		   FROM tracked_accounts WHERE x_user_id = $1`, xUserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", xUserID, err)
	}
	return &acct, nil
}

// Accounts returns the tracked accounts for the given IDs. IDs without a
// row are silently absent from the result.
func (s *ProfileStore) Accounts(ctx context.Context, xUserIDs []string) ([]model.TrackedAccount, error) {
	if len(xUserIDs) == 0 {
		return nil, nil
	}
	var accts []model.TrackedAccount
	err := s.db.SelectContext(ctx, &accts,
		`SELECT x_user_id, handle, follower_count, following_count, account_created_at
		   FROM tracked_accounts WHERE x_user_id = ANY($1)`, pq.Array(xUserIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	return accts, nil
}
