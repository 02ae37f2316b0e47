package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/signalhouse/creatorstats/internal/model"
	"github.com/signalhouse/creatorstats/internal/store"
)

// EntityStore lists the entities the daily jobs iterate over.
type EntityStore struct {
	db *sqlx.DB
}

var _ store.EntityStore = (*EntityStore)(nil)

// NewEntityStore creates an entity reader on the shared pool.
func NewEntityStore(db *sqlx.DB) *EntityStore {
	return &EntityStore{db: db}
}

// TrackedEntities returns every scoreable entity in a stable order.
func (s *EntityStore) TrackedEntities(ctx context.Context) ([]model.TrackedEntity, error) {
	var entities []model.TrackedEntity
	err := s.db.SelectContext(ctx, &entities,
		`SELECT entity_type, entity_id, x_user_id FROM tracked_entities
		  ORDER BY entity_type, entity_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracked entities: %w", err)
	}
	return entities, nil
}
