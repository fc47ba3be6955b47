package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SearchHistoryRepository persists per-user search history with an
// upsert-with-increment on the (user, query) pair.
type SearchHistoryRepository struct {
	db dbtx
}

func NewSearchHistoryRepository(pool *pgxpool.Pool) *SearchHistoryRepository {
	return &SearchHistoryRepository{db: pool}
}

func (r *SearchHistoryRepository) Upsert(ctx context.Context, userID, query string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO search_history (user_id, query)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, query)
		 DO UPDATE SET count = search_history.count + 1, updated_at = now()`,
		userID, query,
	)
	return err
}

func (r *SearchHistoryRepository) TrimToCap(ctx context.Context, userID string, keep int) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM search_history
		 WHERE user_id = $1 AND id NOT IN (
		     SELECT id FROM search_history
		     WHERE user_id = $1
		     ORDER BY updated_at DESC, id DESC
		     LIMIT $2
		 )`,
		userID, keep,
	)
	return err
}

func (r *SearchHistoryRepository) Recent(ctx context.Context, userID string, limit int) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT query FROM search_history
		 WHERE user_id = $1
		 ORDER BY updated_at DESC, id DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

func (r *SearchHistoryRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM search_history WHERE user_id = $1`, userID)
	return err
}

func (r *SearchHistoryRepository) TopQueries(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT query FROM search_history
		 GROUP BY query
		 ORDER BY SUM(count) DESC, query ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}
