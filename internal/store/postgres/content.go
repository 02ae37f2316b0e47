package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/signalhouse/creatorstats/internal/model"
	"github.com/signalhouse/creatorstats/internal/store"
)

// maxContentRows bounds a single window read so a mention storm cannot blow
// up scoring latency. The newest rows win.
const maxContentRows = 5000

// ContentStore reads posts and mentions attributed to an entity.
type ContentStore struct {
	db *sqlx.DB
}

var _ store.ContentStore = (*ContentStore)(nil)

// NewContentStore creates a content reader on the shared pool.
func NewContentStore(db *sqlx.DB) *ContentStore {
	return &ContentStore{db: db}
}

// ByEntity returns content for the entity created within [from, to),
// newest first.
func (s *ContentStore) ByEntity(ctx context.Context, entityType model.EntityType, entityID string, from, to time.Time) ([]model.ContentRecord, error) {
	var records []model.ContentRecord
	err := s.db.SelectContext(ctx, &records,
		`SELECT id, author_handle, author_id, entity_type, entity_id, created_at,
		        likes, replies, reshares, text, sentiment_score, is_official
		   FROM content_records
		  WHERE entity_type = $1 AND entity_id = $2
		    AND created_at >= $3 AND created_at < $4
		  ORDER BY created_at DESC
		  LIMIT $5`,
		entityType, entityID, from, to, maxContentRows)
	if err != nil {
		return nil, fmt.Errorf("failed to load content for %s/%s: %w", entityType, entityID, err)
	}
	return records, nil
}

// ByAuthor returns content authored by the account within [from, to),
// newest first, across every entity it touched.
func (s *ContentStore) ByAuthor(ctx context.Context, authorID string, from, to time.Time) ([]model.ContentRecord, error) {
	var records []model.ContentRecord
	err := s.db.SelectContext(ctx, &records,
		`SELECT id, author_handle, author_id, entity_type, entity_id, created_at,
		        likes, replies, reshares, text, sentiment_score, is_official
		   FROM content_records
		  WHERE author_id = $1
		    AND created_at >= $2 AND created_at < $3
		  ORDER BY created_at DESC
		  LIMIT $4`,
		authorID, from, to, maxContentRows)
	if err != nil {
		return nil, fmt.Errorf("failed to load content by author %s: %w", authorID, err)
	}
	return records, nil
}
