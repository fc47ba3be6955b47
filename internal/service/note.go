package service

import (
	"context"
	"time"

	"github.com/campushub/campushub/internal/domain"
	"github.com/campushub/campushub/internal/pagination"
	"github.com/campushub/campushub/internal/telemetry"
)

// NoteRepositoryInterface defines the repository interface for note persistence
type NoteRepositoryInterface interface {
	Create(ctx context.Context, n *domain.Note) error
	GetByID(ctx context.Context, id string) (*domain.NoteDetail, error)
	List(ctx context.Context, f NoteFilters, limit, offset int) ([]domain.NoteSummary, int, error)
}

// NoteService handles business logic for study notes
type NoteService struct {
	repo    NoteRepositoryInterface
	uuidGen UUIDGenerator
}

// NewNoteService creates a new NoteService instance
func NewNoteService(repo NoteRepositoryInterface) *NoteService {
	return &NoteService{repo: repo, uuidGen: &DefaultUUIDGenerator{}}
}

// NewNoteServiceWithUUIDGen creates a new NoteService with custom UUID generator (for testing)
func NewNoteServiceWithUUIDGen(repo NoteRepositoryInterface, uuidGen UUIDGenerator) *NoteService {
	return &NoteService{repo: repo, uuidGen: uuidGen}
}

// CreateNoteInput represents the input for creating a note
type CreateNoteInput struct {
	UploaderID   string
	UniversityID string
	Subject      string
	NoteType     domain.NoteType
	Title        string
	Description  string
	CourseCode   string
}

// Create validates and persists new note metadata.
func (s *NoteService) Create(ctx context.Context, input CreateNoteInput) (*domain.Note, error) {
	ctx, span := telemetry.StartSpan(ctx, "NoteService.Create", telemetry.SpanAttributes{
		UserID:       input.UploaderID,
		UniversityID: input.UniversityID,
		Operation:    "create",
	})
	defer span.End()

	if input.Title == "" || input.Subject == "" || input.UniversityID == "" {
		return nil, domain.ErrMissingRequiredField
	}
	if !domain.ValidNoteType(input.NoteType) {
		return nil, domain.ErrInvalidNoteType
	}

	now := time.Now().UTC()
	note := &domain.Note{
		ID:           s.uuidGen.NewString(),
		UploaderID:   input.UploaderID,
		UniversityID: input.UniversityID,
		Subject:      input.Subject,
		NoteType:     input.NoteType,
		Title:        input.Title,
		Description:  input.Description,
		CourseCode:   input.CourseCode,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, note); err != nil {
		span.SetError(err)
		return nil, err
	}
	return note, nil
}

// Get returns a single note with uploader and university resolved.
func (s *NoteService) Get(ctx context.Context, id string) (*domain.NoteDetail, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns notes newest first, filtered by university, subject and type.
func (s *NoteService) List(ctx context.Context, f NoteFilters, opts SearchOptions) (*ResultSet[domain.NoteSummary], error) {
	page, limit := pagination.Clamp(opts.Page, opts.Limit, pagination.DefaultLimit)
	offset := pagination.Offset(page, limit)
	notes, total, err := s.repo.List(ctx, f, limit, offset)
	if err != nil {
		return nil, err
	}
	return &ResultSet[domain.NoteSummary]{Results: notes, Total: total}, nil
}
