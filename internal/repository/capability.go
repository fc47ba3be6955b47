package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CapabilityProbe checks whether the full-text search migration has been
// applied by running a trivial query against the generated search column.
type CapabilityProbe struct {
	db dbtx
}

func NewCapabilityProbe(pool *pgxpool.Pool) *CapabilityProbe {
	return &CapabilityProbe{db: pool}
}

func (p *CapabilityProbe) ProbeIndexed(ctx context.Context) error {
	var id string
	err := p.db.QueryRow(ctx,
		`SELECT id FROM universities
		 WHERE search_vector @@ websearch_to_tsquery('simple', $1)
		 LIMIT 1`,
		"probe",
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	return err
}
