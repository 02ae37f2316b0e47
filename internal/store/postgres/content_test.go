package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/signalhouse/creatorstats/internal/model"
)

func TestContentByEntity(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewContentStore(db)

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	sent := 64.0

	rows := sqlmock.NewRows([]string{
		"id", "author_handle", "author_id", "entity_type", "entity_id", "created_at",
		"likes", "replies", "reshares", "text", "sentiment_score", "is_official",
	}).
		AddRow(int64(2), "bob", "u2", "project", "proj-1", from.AddDate(0, 0, 3), 5, 1, 0, "later post", sent, false).
		AddRow(int64(1), "alice", "u1", "project", "proj-1", from.AddDate(0, 0, 1), 10, 2, 3, "earlier post", nil, true)

	mock.ExpectQuery("SELECT id, author_handle").
		WithArgs("project", "proj-1", from, to, maxContentRows).
		WillReturnRows(rows)

	records, err := s.ByEntity(context.Background(), model.EntityProject, "proj-1", from, to)
	if err != nil {
		t.Fatalf("by entity: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != 2 || records[1].ID != 1 {
		t.Fatalf("records out of order: %+v", records)
	}
	if records[0].SentimentScore == nil || *records[0].SentimentScore != 64.0 {
		t.Fatalf("sentiment not carried through: %+v", records[0])
	}
	if records[1].SentimentScore != nil {
		t.Fatalf("nil sentiment should stay nil: %+v", records[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestContentByAuthor(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewContentStore(db)

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 30)

	rows := sqlmock.NewRows([]string{
		"id", "author_handle", "author_id", "entity_type", "entity_id", "created_at",
		"likes", "replies", "reshares", "text", "sentiment_score", "is_official",
	}).
		AddRow(int64(9), "carol", "u3", "project", "proj-2", from.AddDate(0, 0, 10), 12, 0, 4, "update from proj-2", nil, false).
		AddRow(int64(7), "carol", "u3", "project", "proj-1", from.AddDate(0, 0, 2), 3, 1, 0, "update from proj-1", nil, false)

	mock.ExpectQuery("SELECT id, author_handle").
		WithArgs("u3", from, to, maxContentRows).
		WillReturnRows(rows)

	records, err := s.ByAuthor(context.Background(), "u3", from, to)
	if err != nil {
		t.Fatalf("by author: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].EntityID != "proj-2" || records[1].EntityID != "proj-1" {
		t.Fatalf("records span wrong entities: %+v", records)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
