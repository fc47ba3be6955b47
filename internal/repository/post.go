package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/campushub/campushub/internal/domain"
	"github.com/campushub/campushub/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postTextVector = `to_tsvector('simple', p.title || ' ' || p.content || ' ' || array_to_string(p.tags, ' '))`

const postSummaryColumns = `p.id, p.title, p.category, p.tags, p.author_id, a.username,
	p.university_id, COALESCE(uni.name, ''), p.like_count, p.comment_count, p.created_at`

const postFrom = `FROM posts p
	JOIN users a ON a.id = p.author_id
	LEFT JOIN universities uni ON uni.id = p.university_id`

type PostRepository struct {
	db dbtx
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: pool}
}

func (r *PostRepository) Create(ctx context.Context, p *domain.Post) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO posts (id, author_id, university_id, category, title, content, tags, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.AuthorID, nullableString(p.UniversityID), p.Category, p.Title, p.Content, p.Tags, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*domain.PostDetail, error) {
	var d domain.PostDetail
	var universityID *string
	err := r.db.QueryRow(ctx,
		`SELECT p.id, p.author_id, p.university_id, p.category, p.title, p.content, p.tags,
		        p.like_count, p.comment_count, p.created_at, p.updated_at, a.username, COALESCE(uni.name, '')
		 `+postFrom+`
		 WHERE p.id = $1`, id,
	).Scan(&d.ID, &d.AuthorID, &universityID, &d.Category, &d.Title, &d.Content, &d.Tags,
		&d.LikeCount, &d.CommentCount, &d.CreatedAt, &d.UpdatedAt, &d.AuthorUsername, &d.UniversityName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, err
	}
	if universityID != nil {
		d.UniversityID = *universityID
	}
	return &d, nil
}

// List returns posts newest-first, optionally filtered by university and
// category.
func (r *PostRepository) List(ctx context.Context, f service.PostFilters, limit, offset int) ([]domain.PostSummary, int, error) {
	b := &whereBuilder{}
	b.addExpr("TRUE")
	postApplyFilters(b, f)
	filterArgs := append([]any(nil), b.args...)
	where := b.clause()

	limitIdx := b.next(limit)
	offsetIdx := b.next(offset)
	rows, err := r.db.Query(ctx, fmt.Sprintf(
		`SELECT %s
		 %s
		 WHERE %s
		 ORDER BY p.created_at DESC, p.id DESC
		 LIMIT $%d OFFSET $%d`, postSummaryColumns, postFrom, where, limitIdx, offsetIdx), b.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	summaries, err := scanPostSummaries(rows, false)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.count(ctx, where, filterArgs...)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

// Trending returns the most liked posts of the last seven days.
func (r *PostRepository) Trending(ctx context.Context, limit int) ([]domain.PostSummary, error) {
	rows, err := r.db.Query(ctx, fmt.Sprintf(
		`SELECT %s
		 %s
		 WHERE p.created_at > now() - INTERVAL '7 days'
		 ORDER BY p.like_count DESC, p.comment_count DESC, p.created_at DESC
		 LIMIT $1`, postSummaryColumns, postFrom), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPostSummaries(rows, false)
}

func (r *PostRepository) SearchIndexed(ctx context.Context, query string, f service.PostFilters, sortBy domain.SortBy, limit, offset int) ([]domain.PostSummary, int, error) {
	b := &whereBuilder{}
	b.add("p.search_vector @@ websearch_to_tsquery('simple', $%d)", query)
	postApplyFilters(b, f)
	filterArgs := append([]any(nil), b.args...)
	where := b.clause()

	limitIdx := b.next(limit)
	offsetIdx := b.next(offset)
	rows, err := r.db.Query(ctx, fmt.Sprintf(
		`SELECT %s, ts_rank(p.search_vector, websearch_to_tsquery('simple', $1))::float8 AS score
		 %s
		 WHERE %s
		 ORDER BY %s
		 LIMIT $%d OFFSET $%d`, postSummaryColumns, postFrom, where, postOrder(sortBy, true), limitIdx, offsetIdx), b.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	summaries, err := scanPostSummaries(rows, true)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.count(ctx, where, filterArgs...)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

func (r *PostRepository) SearchText(ctx context.Context, query string, f service.PostFilters, sortBy domain.SortBy, limit, offset int) ([]domain.PostSummary, int, error) {
	b := &whereBuilder{}
	b.add(postTextVector+" @@ plainto_tsquery('simple', $%d)", query)
	postApplyFilters(b, f)
	filterArgs := append([]any(nil), b.args...)
	where := b.clause()

	limitIdx := b.next(limit)
	offsetIdx := b.next(offset)
	rows, err := r.db.Query(ctx, fmt.Sprintf(
		`SELECT %s, ts_rank(%s, plainto_tsquery('simple', $1))::float8 AS score
		 %s
		 WHERE %s
		 ORDER BY %s
		 LIMIT $%d OFFSET $%d`, postSummaryColumns, postTextVector, postFrom, where, postOrder(sortBy, true), limitIdx, offsetIdx), b.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	summaries, err := scanPostSummaries(rows, true)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.count(ctx, where, filterArgs...)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

func (r *PostRepository) SearchSubstring(ctx context.Context, query string, f service.PostFilters, sortBy domain.SortBy, limit, offset int) ([]domain.PostSummary, int, error) {
	b := &whereBuilder{}
	b.add("(p.title ILIKE $%d OR p.content ILIKE $1 OR array_to_string(p.tags, ' ') ILIKE $1)", likePattern(query))
	postApplyFilters(b, f)
	filterArgs := append([]any(nil), b.args...)
	where := b.clause()

	limitIdx := b.next(limit)
	offsetIdx := b.next(offset)
	rows, err := r.db.Query(ctx, fmt.Sprintf(
		`SELECT %s
		 %s
		 WHERE %s
		 ORDER BY %s
		 LIMIT $%d OFFSET $%d`, postSummaryColumns, postFrom, where, postOrder(sortBy, false), limitIdx, offsetIdx), b.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	summaries, err := scanPostSummaries(rows, false)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.count(ctx, where, filterArgs...)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

func (r *PostRepository) count(ctx context.Context, where string, args ...any) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) `+postFrom+` WHERE `+where, args...).Scan(&n)
	return n, err
}

func postApplyFilters(b *whereBuilder, f service.PostFilters) {
	if f.Category != "" {
		b.add("p.category = $%d", string(f.Category))
	}
	if f.UniversityID != "" {
		b.add("p.university_id = $%d", f.UniversityID)
	}
}

func postOrder(sortBy domain.SortBy, hasScore bool) string {
	switch sortBy {
	case domain.SortByNewest:
		return "p.created_at DESC, p.id DESC"
	}
	if hasScore {
		return "score DESC, p.created_at DESC, p.id DESC"
	}
	return "p.created_at DESC, p.id DESC"
}

func scanPostSummaries(rows pgx.Rows, withScore bool) ([]domain.PostSummary, error) {
	summaries := []domain.PostSummary{}
	for rows.Next() {
		var s domain.PostSummary
		var universityID *string
		dest := []any{&s.ID, &s.Title, &s.Category, &s.Tags, &s.AuthorID, &s.AuthorUsername,
			&universityID, &s.UniversityName, &s.LikeCount, &s.CommentCount, &s.CreatedAt}
		if withScore {
			dest = append(dest, &s.Score)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if universityID != nil {
			s.UniversityID = *universityID
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
