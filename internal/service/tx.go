package service

import (
	"context"

	"github.com/campushub/campushub/internal/domain"
)

// TxRepositories provides transaction-bound repositories.
type TxRepositories interface {
	Reviews() ReviewWriter
	Universities() UniversityRatingUpdater
}

// ReviewWriter persists a new review.
type ReviewWriter interface {
	Create(ctx context.Context, rev *domain.Review) error
}

// UniversityRatingUpdater recomputes a university's denormalized rating from
// its reviews.
type UniversityRatingUpdater interface {
	RecalcRating(ctx context.Context, universityID string) error
}

// TxRunner executes a function within a transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(repos TxRepositories) error) error
}
