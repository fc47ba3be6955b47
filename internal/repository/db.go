package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// dbtx abstracts over a pgx pool and an open transaction so repositories can
// run inside either.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// likePattern escapes LIKE metacharacters in raw user input and wraps it for
// a substring match. The queries using it rely on the default '\' escape.
func likePattern(raw string) string {
	return "%" + escapeLike(raw) + "%"
}

// prefixPattern anchors the escaped input at the start of the string.
func prefixPattern(raw string) string {
	return escapeLike(raw) + "%"
}

func escapeLike(raw string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(raw)
}

func scanStrings(rows pgx.Rows) ([]string, error) {
	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// whereBuilder accumulates AND-ed conditions with positional arguments.
// Condition expressions embed a single %d placeholder for the arg index,
// e.g. "p.category = $%d".
type whereBuilder struct {
	conds []string
	args  []any
}

func (b *whereBuilder) add(expr string, arg any) {
	b.args = append(b.args, arg)
	b.conds = append(b.conds, fmt.Sprintf(expr, len(b.args)))
}

// addExpr appends a condition that reuses already-bound arguments.
func (b *whereBuilder) addExpr(expr string) {
	b.conds = append(b.conds, expr)
}

// next reserves the next argument slot and returns its index.
func (b *whereBuilder) next(arg any) int {
	b.args = append(b.args, arg)
	return len(b.args)
}

func (b *whereBuilder) clause() string {
	return strings.Join(b.conds, " AND ")
}
