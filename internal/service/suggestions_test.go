package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/campushub/campushub/internal/domain"
)

type MockSuggestionRepository struct {
	mock.Mock
}

func (m *MockSuggestionRepository) UniversityNamesFuzzy(ctx context.Context, query string, limit int) ([]string, error) {
	args := m.Called(ctx, query, limit)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSuggestionRepository) NoteSubjectsFuzzy(ctx context.Context, query string, limit int) ([]string, error) {
	args := m.Called(ctx, query, limit)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSuggestionRepository) UniversityNamesPrefix(ctx context.Context, query string, limit int) ([]string, error) {
	args := m.Called(ctx, query, limit)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSuggestionRepository) NoteSubjectsPrefix(ctx context.Context, query string, limit int) ([]string, error) {
	args := m.Called(ctx, query, limit)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSuggestionRepository) PostTagsPrefix(ctx context.Context, query string, limit int) ([]string, error) {
	args := m.Called(ctx, query, limit)
	return args.Get(0).([]string), args.Error(1)
}

func TestGetSuggestions_ShortQueryReturnsEmpty(t *testing.T) {
	repo := new(MockSuggestionRepository)
	svc := NewSuggestionService(NewStaticCapability(TierAdvanced), repo)

	suggestions, err := svc.GetSuggestions(context.Background(), " m ", 10)

	assert.NoError(t, err)
	assert.NotNil(t, suggestions)
	assert.Empty(t, suggestions)
	repo.AssertNotCalled(t, "UniversityNamesFuzzy")
	repo.AssertNotCalled(t, "UniversityNamesPrefix")
}

func TestGetSuggestions_FuzzyPathOnAdvancedTier(t *testing.T) {
	repo := new(MockSuggestionRepository)
	svc := NewSuggestionService(NewStaticCapability(TierAdvanced), repo)

	repo.On("UniversityNamesFuzzy", mock.Anything, "stan", 10).
		Return([]string{"Stanford University"}, nil)
	repo.On("NoteSubjectsFuzzy", mock.Anything, "stan", 10).
		Return([]string{"Statistics"}, nil)

	suggestions, err := svc.GetSuggestions(context.Background(), "stan", 10)

	assert.NoError(t, err)
	assert.Equal(t, []domain.Suggestion{
		{Type: domain.SuggestionUniversity, Text: "Stanford University"},
		{Type: domain.SuggestionSubject, Text: "Statistics"},
	}, suggestions)
	repo.AssertNotCalled(t, "UniversityNamesPrefix")
	repo.AssertNotCalled(t, "PostTagsPrefix")
}

func TestGetSuggestions_FuzzyErrorDegradesToPrefix(t *testing.T) {
	repo := new(MockSuggestionRepository)
	svc := NewSuggestionService(NewStaticCapability(TierAdvanced), repo)

	repo.On("UniversityNamesFuzzy", mock.Anything, "stan", 10).
		Return([]string{}, errors.New("pg_trgm not available"))
	repo.On("UniversityNamesPrefix", mock.Anything, "stan", 10).
		Return([]string{"Stanford University"}, nil)
	repo.On("NoteSubjectsPrefix", mock.Anything, "stan", 10).
		Return([]string{}, nil)
	repo.On("PostTagsPrefix", mock.Anything, "stan", 10).
		Return([]string{}, nil)

	suggestions, err := svc.GetSuggestions(context.Background(), "stan", 10)

	assert.NoError(t, err)
	assert.Equal(t, []domain.Suggestion{
		{Type: domain.SuggestionUniversity, Text: "Stanford University"},
	}, suggestions)
}

func TestGetSuggestions_FallbackTierSkipsFuzzy(t *testing.T) {
	repo := new(MockSuggestionRepository)
	svc := NewSuggestionService(NewStaticCapability(TierFallback), repo)

	repo.On("UniversityNamesPrefix", mock.Anything, "chem", 10).
		Return([]string{}, nil)
	repo.On("NoteSubjectsPrefix", mock.Anything, "chem", 10).
		Return([]string{"Chemistry"}, nil)
	repo.On("PostTagsPrefix", mock.Anything, "chem", 10).
		Return([]string{"chemistry-lab"}, nil)

	suggestions, err := svc.GetSuggestions(context.Background(), "chem", 10)

	assert.NoError(t, err)
	assert.Len(t, suggestions, 2)
	repo.AssertNotCalled(t, "UniversityNamesFuzzy")
	repo.AssertNotCalled(t, "NoteSubjectsFuzzy")
}

func TestGetSuggestions_PrefixMatchesSortFirst(t *testing.T) {
	repo := new(MockSuggestionRepository)
	svc := NewSuggestionService(NewStaticCapability(TierFallback), repo)

	// NoteSubjectsPrefix matches anywhere in multi-word subjects, so matches
	// that are not anchored at the start can appear alongside anchored ones.
	repo.On("UniversityNamesPrefix", mock.Anything, "data", 10).
		Return([]string{}, nil)
	repo.On("NoteSubjectsPrefix", mock.Anything, "data", 10).
		Return([]string{"Big Data Analytics", "Databases"}, nil)
	repo.On("PostTagsPrefix", mock.Anything, "data", 10).
		Return([]string{"data-science"}, nil)

	suggestions, err := svc.GetSuggestions(context.Background(), "data", 10)

	assert.NoError(t, err)
	texts := make([]string, len(suggestions))
	for i, s := range suggestions {
		texts[i] = s.Text
	}
	assert.Equal(t, []string{"Databases", "data-science", "Big Data Analytics"}, texts)
}

func TestGetSuggestions_TruncatesToDefaultLimit(t *testing.T) {
	repo := new(MockSuggestionRepository)
	svc := NewSuggestionService(NewStaticCapability(TierFallback), repo)

	names := []string{"Aalborg", "Aalto", "Alberta", "Algiers", "Almeria", "Altoona"}
	subjects := []string{"Algebra", "Algorithms", "Alloys"}

	repo.On("UniversityNamesPrefix", mock.Anything, "al", DefaultSuggestionLimit).
		Return(names, nil)
	repo.On("NoteSubjectsPrefix", mock.Anything, "al", DefaultSuggestionLimit).
		Return(subjects, nil)
	repo.On("PostTagsPrefix", mock.Anything, "al", DefaultSuggestionLimit).
		Return([]string{}, nil)

	suggestions, err := svc.GetSuggestions(context.Background(), "al", 0)

	assert.NoError(t, err)
	assert.Len(t, suggestions, DefaultSuggestionLimit)
}

func TestGetSuggestions_PrefixSourceErrorPropagates(t *testing.T) {
	repo := new(MockSuggestionRepository)
	svc := NewSuggestionService(NewStaticCapability(TierFallback), repo)

	repo.On("UniversityNamesPrefix", mock.Anything, "stan", 10).
		Return([]string{}, errors.New("connection reset"))

	suggestions, err := svc.GetSuggestions(context.Background(), "stan", 10)

	assert.Error(t, err)
	assert.Nil(t, suggestions)
}
