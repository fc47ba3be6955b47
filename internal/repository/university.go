package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/campushub/campushub/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// universityTextVector is the on-the-fly tsvector used by the fallback text
// query. It covers the same fields as the indexed search_vector column.
const universityTextVector = `to_tsvector('simple', name || ' ' || city || ' ' || country || ' ' || description)`

type UniversityRepository struct {
	db dbtx
}

func NewUniversityRepository(pool *pgxpool.Pool) *UniversityRepository {
	return &UniversityRepository{db: pool}
}

func NewUniversityRepositoryWithTx(tx pgx.Tx) *UniversityRepository {
	return &UniversityRepository{db: tx}
}

func (r *UniversityRepository) Create(ctx context.Context, u *domain.University) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO universities (id, name, country, city, website, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Name, u.Country, u.City, u.Website, u.Description, u.CreatedAt, u.UpdatedAt,
	)
	return err
}

func (r *UniversityRepository) GetByID(ctx context.Context, id string) (*domain.University, error) {
	var u domain.University
	err := r.db.QueryRow(ctx,
		`SELECT id, name, country, city, website, description, avg_rating, review_count, created_at, updated_at
		 FROM universities WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Name, &u.Country, &u.City, &u.Website, &u.Description, &u.AvgRating, &u.ReviewCount, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUniversityNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UniversityRepository) List(ctx context.Context, country string, limit, offset int) ([]domain.UniversitySummary, int, error) {
	b := &whereBuilder{}
	b.addExpr("TRUE")
	if country != "" {
		b.add("country = $%d", country)
	}

	limitIdx := b.next(limit)
	offsetIdx := b.next(offset)
	rows, err := r.db.Query(ctx, fmt.Sprintf(
		`SELECT id, name, country, city, avg_rating, review_count
		 FROM universities WHERE %s
		 ORDER BY name ASC, id ASC
		 LIMIT $%d OFFSET $%d`, b.clause(), limitIdx, offsetIdx), b.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	summaries, err := scanUniversitySummaries(rows, false)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.count(ctx, b.clause(), b.args[:len(b.args)-2]...)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

// Exists reports whether any universities are present; used by the seeder.
func (r *UniversityRepository) Exists(ctx context.Context) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM universities)`).Scan(&exists)
	return exists, err
}

// RecalcRating recomputes the denormalized rating aggregate from reviews.
// Runs inside the review-write transaction.
func (r *UniversityRepository) RecalcRating(ctx context.Context, universityID string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE universities SET
		     avg_rating = COALESCE((SELECT AVG(rating) FROM reviews WHERE university_id = $1), 0),
		     review_count = (SELECT COUNT(*) FROM reviews WHERE university_id = $1),
		     updated_at = now()
		 WHERE id = $1`,
		universityID,
	)
	return err
}

func (r *UniversityRepository) SearchIndexed(ctx context.Context, query string, sortBy domain.SortBy, limit, offset int) ([]domain.UniversitySummary, int, error) {
	where := `search_vector @@ websearch_to_tsquery('simple', $1)`
	rows, err := r.db.Query(ctx, fmt.Sprintf(
		`SELECT id, name, country, city, avg_rating, review_count,
		        ts_rank(search_vector, websearch_to_tsquery('simple', $1))::float8 AS score
		 FROM universities
		 WHERE %s
		 ORDER BY %s
		 LIMIT $2 OFFSET $3`, where, universityOrder(sortBy, true)),
		query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	summaries, err := scanUniversitySummaries(rows, true)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.count(ctx, where, query)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

func (r *UniversityRepository) SearchText(ctx context.Context, query string, sortBy domain.SortBy, limit, offset int) ([]domain.UniversitySummary, int, error) {
	where := universityTextVector + ` @@ plainto_tsquery('simple', $1)`
	rows, err := r.db.Query(ctx, fmt.Sprintf(
		`SELECT id, name, country, city, avg_rating, review_count,
		        ts_rank(%s, plainto_tsquery('simple', $1))::float8 AS score
		 FROM universities
		 WHERE %s
		 ORDER BY %s
		 LIMIT $2 OFFSET $3`, universityTextVector, where, universityOrder(sortBy, true)),
		query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	summaries, err := scanUniversitySummaries(rows, true)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.count(ctx, where, query)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

func (r *UniversityRepository) SearchSubstring(ctx context.Context, query string, sortBy domain.SortBy, limit, offset int) ([]domain.UniversitySummary, int, error) {
	where := `(name ILIKE $1 OR city ILIKE $1 OR description ILIKE $1)`
	pattern := likePattern(query)
	rows, err := r.db.Query(ctx, fmt.Sprintf(
		`SELECT id, name, country, city, avg_rating, review_count
		 FROM universities
		 WHERE %s
		 ORDER BY %s
		 LIMIT $2 OFFSET $3`, where, universityOrder(sortBy, false)),
		pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	summaries, err := scanUniversitySummaries(rows, false)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.count(ctx, where, pattern)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

func (r *UniversityRepository) count(ctx context.Context, where string, args ...any) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM universities WHERE `+where, args...).Scan(&n)
	return n, err
}

// universityOrder maps a sort to a deterministic ORDER BY. The substring
// scan has no relevance signal, so relevance degrades to the entity's
// natural order (name).
func universityOrder(sortBy domain.SortBy, hasScore bool) string {
	switch sortBy {
	case domain.SortByNewest:
		return "created_at DESC, id DESC"
	case domain.SortByName:
		return "name ASC, id ASC"
	case domain.SortByRating:
		return "avg_rating DESC, review_count DESC, id DESC"
	}
	if hasScore {
		return "score DESC, created_at DESC, id DESC"
	}
	return "name ASC, id ASC"
}

func scanUniversitySummaries(rows pgx.Rows, withScore bool) ([]domain.UniversitySummary, error) {
	summaries := []domain.UniversitySummary{}
	for rows.Next() {
		var s domain.UniversitySummary
		var err error
		if withScore {
			err = rows.Scan(&s.ID, &s.Name, &s.Country, &s.City, &s.AvgRating, &s.ReviewCount, &s.Score)
		} else {
			err = rows.Scan(&s.ID, &s.Name, &s.Country, &s.City, &s.AvgRating, &s.ReviewCount)
		}
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
