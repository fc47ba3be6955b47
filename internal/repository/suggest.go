package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SuggestionRepository backs autocomplete. Fuzzy lookups need the pg_trgm
// extension from the search migration; prefix lookups only need plain ILIKE.
type SuggestionRepository struct {
	db dbtx
}

func NewSuggestionRepository(pool *pgxpool.Pool) *SuggestionRepository {
	return &SuggestionRepository{db: pool}
}

func (r *SuggestionRepository) UniversityNamesFuzzy(ctx context.Context, query string, limit int) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT name FROM universities
		 WHERE name ILIKE $1 OR word_similarity($2, name) > 0.3
		 ORDER BY name ILIKE $1 DESC, word_similarity($2, name) DESC, name ASC
		 LIMIT $3`,
		prefixPattern(query), query, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

func (r *SuggestionRepository) NoteSubjectsFuzzy(ctx context.Context, query string, limit int) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT subject FROM (
		     SELECT DISTINCT subject FROM notes
		     WHERE subject ILIKE $1 OR word_similarity($2, subject) > 0.3
		 ) s
		 ORDER BY subject ILIKE $1 DESC, word_similarity($2, subject) DESC, subject ASC
		 LIMIT $3`,
		prefixPattern(query), query, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

func (r *SuggestionRepository) UniversityNamesPrefix(ctx context.Context, query string, limit int) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT name FROM universities
		 WHERE name ILIKE $1
		 ORDER BY name ASC
		 LIMIT $2`,
		prefixPattern(query), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

func (r *SuggestionRepository) NoteSubjectsPrefix(ctx context.Context, query string, limit int) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT subject FROM notes
		 WHERE subject ILIKE $1
		 ORDER BY subject ASC
		 LIMIT $2`,
		prefixPattern(query), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

func (r *SuggestionRepository) PostTagsPrefix(ctx context.Context, query string, limit int) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT tag FROM posts, unnest(tags) AS tag
		 WHERE tag ILIKE $1
		 ORDER BY tag ASC
		 LIMIT $2`,
		prefixPattern(query), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}
