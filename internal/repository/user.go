package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/campushub/campushub/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userTextVector = `to_tsvector('simple', u.username || ' ' || u.display_name || ' ' || u.department || ' ' || u.bio)`

// userSummaryColumns always joins the university so display fields are
// populated, never raw foreign keys alone.
const userSummaryColumns = `u.id, u.username, u.display_name, u.university_id, COALESCE(uni.name, ''), u.department`

const userFrom = `FROM users u LEFT JOIN universities uni ON uni.id = u.university_id`

type UserRepository struct {
	db dbtx
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, username, display_name, university_id, department, bio, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Username, u.DisplayName, nullableString(u.UniversityID), u.Department, u.Bio, u.CreatedAt, u.UpdatedAt,
	)
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	var universityID *string
	err := r.db.QueryRow(ctx,
		`SELECT id, username, display_name, university_id, department, bio, created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Username, &u.DisplayName, &universityID, &u.Department, &u.Bio, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if universityID != nil {
		u.UniversityID = *universityID
	}
	return &u, nil
}

// GetSummary returns the public profile projection.
func (r *UserRepository) GetSummary(ctx context.Context, id string) (*domain.UserSummary, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userSummaryColumns+` `+userFrom+` WHERE u.id = $1`, id)
	s, err := scanUserSummary(row, false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *UserRepository) SearchIndexed(ctx context.Context, query string, limit, offset int) ([]domain.UserSummary, int, error) {
	where := `u.search_vector @@ websearch_to_tsquery('simple', $1)`
	rows, err := r.db.Query(ctx, fmt.Sprintf(
		`SELECT %s, ts_rank(u.search_vector, websearch_to_tsquery('simple', $1))::float8 AS score
		 %s
		 WHERE %s
		 ORDER BY score DESC, u.created_at DESC, u.id DESC
		 LIMIT $2 OFFSET $3`, userSummaryColumns, userFrom, where),
		query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	summaries, err := scanUserSummaries(rows, true)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.count(ctx, where, query)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

func (r *UserRepository) SearchText(ctx context.Context, query string, limit, offset int) ([]domain.UserSummary, int, error) {
	where := userTextVector + ` @@ plainto_tsquery('simple', $1)`
	rows, err := r.db.Query(ctx, fmt.Sprintf(
		`SELECT %s, ts_rank(%s, plainto_tsquery('simple', $1))::float8 AS score
		 %s
		 WHERE %s
		 ORDER BY score DESC, u.created_at DESC, u.id DESC
		 LIMIT $2 OFFSET $3`, userSummaryColumns, userTextVector, userFrom, where),
		query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	summaries, err := scanUserSummaries(rows, true)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.count(ctx, where, query)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

func (r *UserRepository) SearchSubstring(ctx context.Context, query string, limit, offset int) ([]domain.UserSummary, int, error) {
	where := `(u.username ILIKE $1 OR u.display_name ILIKE $1 OR u.department ILIKE $1)`
	pattern := likePattern(query)
	rows, err := r.db.Query(ctx, fmt.Sprintf(
		`SELECT %s
		 %s
		 WHERE %s
		 ORDER BY u.created_at DESC, u.id DESC
		 LIMIT $2 OFFSET $3`, userSummaryColumns, userFrom, where),
		pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	summaries, err := scanUserSummaries(rows, false)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.count(ctx, where, pattern)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

func (r *UserRepository) count(ctx context.Context, where string, args ...any) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) `+userFrom+` WHERE `+where, args...).Scan(&n)
	return n, err
}

func scanUserSummary(row pgx.Row, withScore bool) (*domain.UserSummary, error) {
	var s domain.UserSummary
	var universityID *string
	dest := []any{&s.ID, &s.Username, &s.DisplayName, &universityID, &s.UniversityName, &s.Department}
	if withScore {
		dest = append(dest, &s.Score)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if universityID != nil {
		s.UniversityID = *universityID
	}
	return &s, nil
}

func scanUserSummaries(rows pgx.Rows, withScore bool) ([]domain.UserSummary, error) {
	summaries := []domain.UserSummary{}
	for rows.Next() {
		s, err := scanUserSummary(rows, withScore)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *s)
	}
	return summaries, rows.Err()
}
