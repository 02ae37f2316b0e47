package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/signalhouse/creatorstats/internal/model"
)

func TestSmartSet(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewSmartScoreStore(db)

	rows := sqlmock.NewRows([]string{"account_id"}).
		AddRow("u1").
		AddRow("u2")

	mock.ExpectQuery("SELECT account_id FROM smart_account_scores").
		WithArgs("2026-01-02").
		WillReturnRows(rows)

	set, err := s.SmartSet(context.Background(), "2026-01-02")
	if err != nil {
		t.Fatalf("smart set: %v", err)
	}
	if len(set) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(set))
	}
	if _, ok := set["u1"]; !ok {
		t.Fatalf("u1 missing from smart set: %v", set)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestScoresFor(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewSmartScoreStore(db)

	rows := sqlmock.NewRows([]string{"account_id", "smart_score"}).
		AddRow("u1", 0.81).
		AddRow("u3", 0.42)

	mock.ExpectQuery("SELECT account_id, smart_score").
		WithArgs("2026-01-02", sqlmock.AnyArg()).
		WillReturnRows(rows)

	scores, err := s.ScoresFor(context.Background(), "2026-01-02", []string{"u1", "u2", "u3"})
	if err != nil {
		t.Fatalf("scores for: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(scores))
	}
	if scores["u1"] != 0.81 {
		t.Fatalf("u1 score = %v, want 0.81", scores["u1"])
	}
	if _, ok := scores["u2"]; ok {
		t.Fatalf("u2 should be absent, got %v", scores["u2"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestScoresForEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewSmartScoreStore(db)

	scores, err := s.ScoresFor(context.Background(), "2026-01-02", nil)
	if err != nil {
		t.Fatalf("scores for: %v", err)
	}
	if len(scores) != 0 {
		t.Fatalf("expected empty map, got %v", scores)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPutScores(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewSmartScoreStore(db)

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO smart_account_scores")
	mock.ExpectExec("INSERT INTO smart_account_scores").
		WithArgs("u1", "2026-01-02", 0.9, 0.1, 0.86, true).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO smart_account_scores").
		WithArgs("u2", "2026-01-02", 0.2, 0.8, 0.2, false).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	scores := []model.SmartAccountScore{
		{AccountID: "u1", AsOfDate: "2026-01-02", PageRank: 0.9, BotRisk: 0.1, SmartScore: 0.86, IsSmart: true},
		{AccountID: "u2", AsOfDate: "2026-01-02", PageRank: 0.2, BotRisk: 0.8, SmartScore: 0.2, IsSmart: false},
	}
	if err := s.PutScores(context.Background(), scores); err != nil {
		t.Fatalf("put scores: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPutScoresEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewSmartScoreStore(db)

	if err := s.PutScores(context.Background(), nil); err != nil {
		t.Fatalf("put scores: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
