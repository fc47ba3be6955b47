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

const noteTextVector = `to_tsvector('simple', n.title || ' ' || n.subject || ' ' || n.course_code || ' ' || n.description)`

const noteSummaryColumns = `n.id, n.title, n.subject, n.note_type, n.course_code, n.uploader_id, up.username,
	n.university_id, uni.name, n.download_count, n.created_at`

const noteFrom = `FROM notes n
	JOIN users up ON up.id = n.uploader_id
	JOIN universities uni ON uni.id = n.university_id`

type NoteRepository struct {
	db dbtx
}

func NewNoteRepository(pool *pgxpool.Pool) *NoteRepository {
	return &NoteRepository{db: pool}
}

func (r *NoteRepository) Create(ctx context.Context, n *domain.Note) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO notes (id, uploader_id, university_id, subject, note_type, title, description, course_code, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		n.ID, n.UploaderID, n.UniversityID, n.Subject, n.NoteType, n.Title, n.Description, n.CourseCode, n.CreatedAt, n.UpdatedAt,
	)
	return err
}

func (r *NoteRepository) GetByID(ctx context.Context, id string) (*domain.NoteDetail, error) {
	var d domain.NoteDetail
	err := r.db.QueryRow(ctx,
		`SELECT n.id, n.uploader_id, n.university_id, n.subject, n.note_type, n.title, n.description,
		        n.course_code, n.download_count, n.created_at, n.updated_at, up.username, uni.name
		 `+noteFrom+`
		 WHERE n.id = $1`, id,
	).Scan(&d.ID, &d.UploaderID, &d.UniversityID, &d.Subject, &d.NoteType, &d.Title, &d.Description,
		&d.CourseCode, &d.DownloadCount, &d.CreatedAt, &d.UpdatedAt, &d.UploaderUsername, &d.UniversityName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *NoteRepository) List(ctx context.Context, f service.NoteFilters, limit, offset int) ([]domain.NoteSummary, int, error) {
	b := &whereBuilder{}
	b.addExpr("TRUE")
	noteApplyFilters(b, f)
	filterArgs := append([]any(nil), b.args...)
	where := b.clause()

	limitIdx := b.next(limit)
	offsetIdx := b.next(offset)
	rows, err := r.db.Query(ctx, fmt.Sprintf(
		`SELECT %s
		 %s
		 WHERE %s
		 ORDER BY n.created_at DESC, n.id DESC
		 LIMIT $%d OFFSET $%d`, noteSummaryColumns, noteFrom, where, limitIdx, offsetIdx), b.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	summaries, err := scanNoteSummaries(rows, false)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.count(ctx, where, filterArgs...)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

func (r *NoteRepository) SearchIndexed(ctx context.Context, query string, f service.NoteFilters, sortBy domain.SortBy, limit, offset int) ([]domain.NoteSummary, int, error) {
	b := &whereBuilder{}
	b.add("n.search_vector @@ websearch_to_tsquery('simple', $%d)", query)
	noteApplyFilters(b, f)
	filterArgs := append([]any(nil), b.args...)
	where := b.clause()

	limitIdx := b.next(limit)
	offsetIdx := b.next(offset)
	rows, err := r.db.Query(ctx, fmt.Sprintf(
		`SELECT %s, ts_rank(n.search_vector, websearch_to_tsquery('simple', $1))::float8 AS score
		 %s
		 WHERE %s
		 ORDER BY %s
		 LIMIT $%d OFFSET $%d`, noteSummaryColumns, noteFrom, where, noteOrder(sortBy, true), limitIdx, offsetIdx), b.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	summaries, err := scanNoteSummaries(rows, true)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.count(ctx, where, filterArgs...)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

func (r *NoteRepository) SearchText(ctx context.Context, query string, f service.NoteFilters, sortBy domain.SortBy, limit, offset int) ([]domain.NoteSummary, int, error) {
	b := &whereBuilder{}
	b.add(noteTextVector+" @@ plainto_tsquery('simple', $%d)", query)
	noteApplyFilters(b, f)
	filterArgs := append([]any(nil), b.args...)
	where := b.clause()

	limitIdx := b.next(limit)
	offsetIdx := b.next(offset)
	rows, err := r.db.Query(ctx, fmt.Sprintf(
		`SELECT %s, ts_rank(%s, plainto_tsquery('simple', $1))::float8 AS score
		 %s
		 WHERE %s
		 ORDER BY %s
		 LIMIT $%d OFFSET $%d`, noteSummaryColumns, noteTextVector, noteFrom, where, noteOrder(sortBy, true), limitIdx, offsetIdx), b.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	summaries, err := scanNoteSummaries(rows, true)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.count(ctx, where, filterArgs...)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

func (r *NoteRepository) SearchSubstring(ctx context.Context, query string, f service.NoteFilters, sortBy domain.SortBy, limit, offset int) ([]domain.NoteSummary, int, error) {
	b := &whereBuilder{}
	b.add("(n.title ILIKE $%d OR n.subject ILIKE $1 OR n.course_code ILIKE $1 OR n.description ILIKE $1)", likePattern(query))
	noteApplyFilters(b, f)
	filterArgs := append([]any(nil), b.args...)
	where := b.clause()

	limitIdx := b.next(limit)
	offsetIdx := b.next(offset)
	rows, err := r.db.Query(ctx, fmt.Sprintf(
		`SELECT %s
		 %s
		 WHERE %s
		 ORDER BY %s
		 LIMIT $%d OFFSET $%d`, noteSummaryColumns, noteFrom, where, noteOrder(sortBy, false), limitIdx, offsetIdx), b.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	summaries, err := scanNoteSummaries(rows, false)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.count(ctx, where, filterArgs...)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

func (r *NoteRepository) count(ctx context.Context, where string, args ...any) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) `+noteFrom+` WHERE `+where, args...).Scan(&n)
	return n, err
}

func noteApplyFilters(b *whereBuilder, f service.NoteFilters) {
	if f.UniversityID != "" {
		b.add("n.university_id = $%d", f.UniversityID)
	}
	if f.Subject != "" {
		b.add("n.subject = $%d", f.Subject)
	}
	if f.NoteType != "" {
		b.add("n.note_type = $%d", string(f.NoteType))
	}
}

func noteOrder(sortBy domain.SortBy, hasScore bool) string {
	switch sortBy {
	case domain.SortByNewest:
		return "n.created_at DESC, n.id DESC"
	}
	if hasScore {
		return "score DESC, n.created_at DESC, n.id DESC"
	}
	return "n.created_at DESC, n.id DESC"
}

func scanNoteSummaries(rows pgx.Rows, withScore bool) ([]domain.NoteSummary, error) {
	summaries := []domain.NoteSummary{}
	for rows.Next() {
		var s domain.NoteSummary
		dest := []any{&s.ID, &s.Title, &s.Subject, &s.NoteType, &s.CourseCode, &s.UploaderID, &s.UploaderUsername,
			&s.UniversityID, &s.UniversityName, &s.DownloadCount, &s.CreatedAt}
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
