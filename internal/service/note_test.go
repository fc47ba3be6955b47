package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/campushub/campushub/internal/domain"
)

type MockNoteRepository struct {
	mock.Mock
}

func (m *MockNoteRepository) Create(ctx context.Context, n *domain.Note) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNoteRepository) GetByID(ctx context.Context, id string) (*domain.NoteDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NoteDetail), args.Error(1)
}

func (m *MockNoteRepository) List(ctx context.Context, f NoteFilters, limit, offset int) ([]domain.NoteSummary, int, error) {
	args := m.Called(ctx, f, limit, offset)
	return args.Get(0).([]domain.NoteSummary), args.Int(1), args.Error(2)
}

func TestNoteCreate_Success(t *testing.T) {
	repo := new(MockNoteRepository)
	svc := NewNoteServiceWithUUIDGen(repo, &StaticUUIDGenerator{ID: "note-1"})

	repo.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Note) bool {
		return n.ID == "note-1" && n.NoteType == domain.NoteTypeLecture
	})).Return(nil)

	note, err := svc.Create(context.Background(), CreateNoteInput{
		UploaderID:   "user-1",
		UniversityID: "uni-1",
		Subject:      "Linear Algebra",
		NoteType:     domain.NoteTypeLecture,
		Title:        "Week 3: eigenvalues",
		CourseCode:   "MATH201",
	})

	assert.NoError(t, err)
	assert.Equal(t, "note-1", note.ID)
	repo.AssertExpectations(t)
}

func TestNoteCreate_MissingUniversity(t *testing.T) {
	repo := new(MockNoteRepository)
	svc := NewNoteService(repo)

	_, err := svc.Create(context.Background(), CreateNoteInput{
		UploaderID: "user-1",
		Subject:    "Linear Algebra",
		NoteType:   domain.NoteTypeLecture,
		Title:      "Week 3",
	})

	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
	repo.AssertNotCalled(t, "Create")
}

func TestNoteCreate_InvalidType(t *testing.T) {
	svc := NewNoteService(new(MockNoteRepository))

	_, err := svc.Create(context.Background(), CreateNoteInput{
		UploaderID:   "user-1",
		UniversityID: "uni-1",
		Subject:      "Linear Algebra",
		NoteType:     domain.NoteType("doodle"),
		Title:        "Week 3",
	})

	assert.ErrorIs(t, err, domain.ErrInvalidNoteType)
}

func TestNoteList_FiltersPassedThrough(t *testing.T) {
	repo := new(MockNoteRepository)
	svc := NewNoteService(repo)

	filters := NoteFilters{UniversityID: "uni-1", Subject: "Physics", NoteType: domain.NoteTypeExam}
	repo.On("List", mock.Anything, filters, 20, 0).
		Return([]domain.NoteSummary{{ID: "n1"}}, 1, nil)

	result, err := svc.List(context.Background(), filters, SearchOptions{})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	repo.AssertExpectations(t)
}
