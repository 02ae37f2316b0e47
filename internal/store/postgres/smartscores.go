package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/signalhouse/creatorstats/internal/model"
	"github.com/signalhouse/creatorstats/internal/store"
)

// SmartScoreStore persists daily account classifications. Unlike snapshots,
// a day's rankings may be recomputed and rewritten.
type SmartScoreStore struct {
	db *sqlx.DB
}

var _ store.SmartScoreStore = (*SmartScoreStore)(nil)

// NewSmartScoreStore creates a score store on the shared pool.
func NewSmartScoreStore(db *sqlx.DB) *SmartScoreStore {
	return &SmartScoreStore{db: db}
}

// SmartSet returns the IDs of accounts classified smart on the given day.
func (s *SmartScoreStore) SmartSet(ctx context.Context, asOfDate string) (map[string]struct{}, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids,
		`SELECT account_id FROM smart_account_scores WHERE as_of_date = $1 AND is_smart`, asOfDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load smart set for %s: %w", asOfDate, err)
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// ScoresFor returns smart scores for the requested accounts on the given
// day. Accounts without a row that day are absent from the result.
func (s *SmartScoreStore) ScoresFor(ctx context.Context, asOfDate string, accountIDs []string) (map[string]float64, error) {
	scores := make(map[string]float64, len(accountIDs))
	if len(accountIDs) == 0 {
		return scores, nil
	}

	var rows []struct {
		AccountID  string  `db:"account_id"`
		SmartScore float64 `db:"smart_score"`
	}
	err := s.db.SelectContext(ctx, &rows,
		`SELECT account_id, smart_score FROM smart_account_scores
		  WHERE as_of_date = $1 AND account_id = ANY($2)`,
		asOfDate, pq.Array(accountIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load smart scores for %s: %w", asOfDate, err)
	}
	for _, r := range rows {
		scores[r.AccountID] = r.SmartScore
	}
	return scores, nil
}

// PutScores upserts a day's classifications in one transaction.
func (s *SmartScoreStore) PutScores(ctx context.Context, scores []model.SmartAccountScore) error {
	if len(scores) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin score write: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO smart_account_scores
		     (account_id, as_of_date, pagerank, bot_risk, smart_score, is_smart)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (account_id, as_of_date) DO UPDATE
		    SET pagerank = EXCLUDED.pagerank,
		        bot_risk = EXCLUDED.bot_risk,
		        smart_score = EXCLUDED.smart_score,
		        is_smart = EXCLUDED.is_smart`)
	if err != nil {
		return fmt.Errorf("failed to prepare score write: %w", err)
	}
	defer stmt.Close()

	for _, sc := range scores {
		if _, err := stmt.ExecContext(ctx, sc.AccountID, sc.AsOfDate, sc.PageRank, sc.BotRisk, sc.SmartScore, sc.IsSmart); err != nil {
			return fmt.Errorf("failed to write score for %s: %w", sc.AccountID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit score write: %w", err)
	}
	return nil
}
