package service

import (
	"context"
	"time"

	"github.com/campushub/campushub/internal/domain"
	"github.com/campushub/campushub/internal/pagination"
	"github.com/campushub/campushub/internal/telemetry"
)

// ReviewListRepository reads reviews outside a transaction.
type ReviewListRepository interface {
	ListByUniversity(ctx context.Context, universityID string, limit, offset int) ([]domain.ReviewSummary, int, error)
}

// UniversityReader resolves universities for existence checks.
type UniversityReader interface {
	GetByID(ctx context.Context, id string) (*domain.University, error)
}

// ReviewService handles business logic for university reviews. Creating a
// review and refreshing the university's denormalized rating happen in one
// transaction.
type ReviewService struct {
	listRepo     ReviewListRepository
	universities UniversityReader
	tx           TxRunner
	uuidGen      UUIDGenerator
}

// NewReviewService creates a new ReviewService instance
func NewReviewService(listRepo ReviewListRepository, universities UniversityReader, tx TxRunner) *ReviewService {
	return &ReviewService{listRepo: listRepo, universities: universities, tx: tx, uuidGen: &DefaultUUIDGenerator{}}
}

// NewReviewServiceWithUUIDGen creates a new ReviewService with custom UUID generator (for testing)
func NewReviewServiceWithUUIDGen(listRepo ReviewListRepository, universities UniversityReader, tx TxRunner, uuidGen UUIDGenerator) *ReviewService {
	return &ReviewService{listRepo: listRepo, universities: universities, tx: tx, uuidGen: uuidGen}
}

// CreateReviewInput represents the input for creating a review
type CreateReviewInput struct {
	AuthorID     string
	UniversityID string
	Rating       int
	Title        string
	Content      string
}

// Create validates and persists a review, then recalculates the target
// university's average rating within the same transaction. A second review
// for the same (author, university) pair fails with ErrReviewAlreadyExists.
func (s *ReviewService) Create(ctx context.Context, input CreateReviewInput) (*domain.Review, error) {
	ctx, span := telemetry.StartSpan(ctx, "ReviewService.Create", telemetry.SpanAttributes{
		UserID:       input.AuthorID,
		UniversityID: input.UniversityID,
		Operation:    "create",
	})
	defer span.End()

	if input.Content == "" || input.UniversityID == "" {
		return nil, domain.ErrMissingRequiredField
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, domain.ErrInvalidRating
	}
	if _, err := s.universities.GetByID(ctx, input.UniversityID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	review := &domain.Review{
		ID:           s.uuidGen.NewString(),
		AuthorID:     input.AuthorID,
		UniversityID: input.UniversityID,
		Rating:       input.Rating,
		Title:        input.Title,
		Content:      input.Content,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.tx.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Reviews().Create(ctx, review); err != nil {
			return err
		}
		return repos.Universities().RecalcRating(ctx, input.UniversityID)
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return review, nil
}

// ListByUniversity returns a university's reviews, newest first.
func (s *ReviewService) ListByUniversity(ctx context.Context, universityID string, opts SearchOptions) (*ResultSet[domain.ReviewSummary], error) {
	if _, err := s.universities.GetByID(ctx, universityID); err != nil {
		return nil, err
	}
	page, limit := pagination.Clamp(opts.Page, opts.Limit, pagination.DefaultLimit)
	offset := pagination.Offset(page, limit)
	reviews, total, err := s.listRepo.ListByUniversity(ctx, universityID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &ResultSet[domain.ReviewSummary]{Results: reviews, Total: total}, nil
}
