package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/campushub/campushub/internal/domain"
	"github.com/campushub/campushub/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reviewTextVector = `to_tsvector('simple', r.title || ' ' || r.content)`

const reviewSummaryColumns = `r.id, r.title, r.content, r.rating, r.author_id, a.username,
	r.university_id, uni.name, r.created_at`

const reviewFrom = `FROM reviews r
	JOIN users a ON a.id = r.author_id
	JOIN universities uni ON uni.id = r.university_id`

type ReviewRepository struct {
	db dbtx
}

func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{db: pool}
}

func NewReviewRepositoryWithTx(tx pgx.Tx) *ReviewRepository {
	return &ReviewRepository{db: tx}
}

func (r *ReviewRepository) Create(ctx context.Context, rev *domain.Review) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO reviews (id, author_id, university_id, rating, title, content, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rev.ID, rev.AuthorID, rev.UniversityID, rev.Rating, rev.Title, rev.Content, rev.CreatedAt, rev.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrReviewAlreadyExists
		}
		return err
	}
	return nil
}

func (r *ReviewRepository) ListByUniversity(ctx context.Context, universityID string, limit, offset int) ([]domain.ReviewSummary, int, error) {
	where := `r.university_id = $1`
	rows, err := r.db.Query(ctx, fmt.Sprintf(
		`SELECT %s
		 %s
		 WHERE %s
		 ORDER BY r.created_at DESC, r.id DESC
		 LIMIT $2 OFFSET $3`, reviewSummaryColumns, reviewFrom, where),
		universityID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	summaries, err := scanReviewSummaries(rows, false)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.count(ctx, where, universityID)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

func (r *ReviewRepository) SearchIndexed(ctx context.Context, query string, f service.ReviewFilters, limit, offset int) ([]domain.ReviewSummary, int, error) {
	b := &whereBuilder{}
	b.add("r.search_vector @@ websearch_to_tsquery('simple', $%d)", query)
	reviewApplyFilters(b, f)
	filterArgs := append([]any(nil), b.args...)
	where := b.clause()

	limitIdx := b.next(limit)
	offsetIdx := b.next(offset)
	rows, err := r.db.Query(ctx, fmt.Sprintf(
		`SELECT %s, ts_rank(r.search_vector, websearch_to_tsquery('simple', $1))::float8 AS score
		 %s
		 WHERE %s
		 ORDER BY score DESC, r.created_at DESC, r.id DESC
		 LIMIT $%d OFFSET $%d`, reviewSummaryColumns, reviewFrom, where, limitIdx, offsetIdx), b.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	summaries, err := scanReviewSummaries(rows, true)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.count(ctx, where, filterArgs...)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

func (r *ReviewRepository) SearchText(ctx context.Context, query string, f service.ReviewFilters, limit, offset int) ([]domain.ReviewSummary, int, error) {
	b := &whereBuilder{}
	b.add(reviewTextVector+" @@ plainto_tsquery('simple', $%d)", query)
	reviewApplyFilters(b, f)
	filterArgs := append([]any(nil), b.args...)
	where := b.clause()

	limitIdx := b.next(limit)
	offsetIdx := b.next(offset)
	rows, err := r.db.Query(ctx, fmt.Sprintf(
		`SELECT %s, ts_rank(%s, plainto_tsquery('simple', $1))::float8 AS score
		 %s
		 WHERE %s
		 ORDER BY score DESC, r.created_at DESC, r.id DESC
		 LIMIT $%d OFFSET $%d`, reviewSummaryColumns, reviewTextVector, reviewFrom, where, limitIdx, offsetIdx), b.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	summaries, err := scanReviewSummaries(rows, true)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.count(ctx, where, filterArgs...)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

func (r *ReviewRepository) SearchSubstring(ctx context.Context, query string, f service.ReviewFilters, limit, offset int) ([]domain.ReviewSummary, int, error) {
	b := &whereBuilder{}
	b.add("(r.title ILIKE $%d OR r.content ILIKE $1)", likePattern(query))
	reviewApplyFilters(b, f)
	filterArgs := append([]any(nil), b.args...)
	where := b.clause()

	limitIdx := b.next(limit)
	offsetIdx := b.next(offset)
	rows, err := r.db.Query(ctx, fmt.Sprintf(
		`SELECT %s
		 %s
		 WHERE %s
		 ORDER BY r.created_at DESC, r.id DESC
		 LIMIT $%d OFFSET $%d`, reviewSummaryColumns, reviewFrom, where, limitIdx, offsetIdx), b.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	summaries, err := scanReviewSummaries(rows, false)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.count(ctx, where, filterArgs...)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

func (r *ReviewRepository) count(ctx context.Context, where string, args ...any) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) `+reviewFrom+` WHERE `+where, args...).Scan(&n)
	return n, err
}

func reviewApplyFilters(b *whereBuilder, f service.ReviewFilters) {
	if f.UniversityID != "" {
		b.add("r.university_id = $%d", f.UniversityID)
	}
	if f.MinRating > 0 {
		b.add("r.rating >= $%d", f.MinRating)
	}
}

func scanReviewSummaries(rows pgx.Rows, withScore bool) ([]domain.ReviewSummary, error) {
	summaries := []domain.ReviewSummary{}
	for rows.Next() {
		var s domain.ReviewSummary
		dest := []any{&s.ID, &s.Title, &s.Content, &s.Rating, &s.AuthorID, &s.AuthorUsername,
			&s.UniversityID, &s.UniversityName, &s.CreatedAt}
		if withScore {
			dest = append(dest, &s.Score)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
