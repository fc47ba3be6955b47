package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/campushub/campushub/internal/domain"
)

type MockUniversitySearchRepository struct {
	mock.Mock
}

func (m *MockUniversitySearchRepository) SearchIndexed(ctx context.Context, query string, sortBy domain.SortBy, limit, offset int) ([]domain.UniversitySummary, int, error) {
	args := m.Called(ctx, query, sortBy, limit, offset)
	return args.Get(0).([]domain.UniversitySummary), args.Int(1), args.Error(2)
}

func (m *MockUniversitySearchRepository) SearchText(ctx context.Context, query string, sortBy domain.SortBy, limit, offset int) ([]domain.UniversitySummary, int, error) {
	args := m.Called(ctx, query, sortBy, limit, offset)
	return args.Get(0).([]domain.UniversitySummary), args.Int(1), args.Error(2)
}

func (m *MockUniversitySearchRepository) SearchSubstring(ctx context.Context, query string, sortBy domain.SortBy, limit, offset int) ([]domain.UniversitySummary, int, error) {
	args := m.Called(ctx, query, sortBy, limit, offset)
	return args.Get(0).([]domain.UniversitySummary), args.Int(1), args.Error(2)
}

type MockUserSearchRepository struct {
	mock.Mock
}

func (m *MockUserSearchRepository) SearchIndexed(ctx context.Context, query string, limit, offset int) ([]domain.UserSummary, int, error) {
	args := m.Called(ctx, query, limit, offset)
	return args.Get(0).([]domain.UserSummary), args.Int(1), args.Error(2)
}

func (m *MockUserSearchRepository) SearchText(ctx context.Context, query string, limit, offset int) ([]domain.UserSummary, int, error) {
	args := m.Called(ctx, query, limit, offset)
	return args.Get(0).([]domain.UserSummary), args.Int(1), args.Error(2)
}

func (m *MockUserSearchRepository) SearchSubstring(ctx context.Context, query string, limit, offset int) ([]domain.UserSummary, int, error) {
	args := m.Called(ctx, query, limit, offset)
	return args.Get(0).([]domain.UserSummary), args.Int(1), args.Error(2)
}

type MockPostSearchRepository struct {
	mock.Mock
}

func (m *MockPostSearchRepository) SearchIndexed(ctx context.Context, query string, f PostFilters, sortBy domain.SortBy, limit, offset int) ([]domain.PostSummary, int, error) {
	args := m.Called(ctx, query, f, sortBy, limit, offset)
	return args.Get(0).([]domain.PostSummary), args.Int(1), args.Error(2)
}

func (m *MockPostSearchRepository) SearchText(ctx context.Context, query string, f PostFilters, sortBy domain.SortBy, limit, offset int) ([]domain.PostSummary, int, error) {
	args := m.Called(ctx, query, f, sortBy, limit, offset)
	return args.Get(0).([]domain.PostSummary), args.Int(1), args.Error(2)
}

func (m *MockPostSearchRepository) SearchSubstring(ctx context.Context, query string, f PostFilters, sortBy domain.SortBy, limit, offset int) ([]domain.PostSummary, int, error) {
	args := m.Called(ctx, query, f, sortBy, limit, offset)
	return args.Get(0).([]domain.PostSummary), args.Int(1), args.Error(2)
}

type MockNoteSearchRepository struct {
	mock.Mock
}

func (m *MockNoteSearchRepository) SearchIndexed(ctx context.Context, query string, f NoteFilters, sortBy domain.SortBy, limit, offset int) ([]domain.NoteSummary, int, error) {
	args := m.Called(ctx, query, f, sortBy, limit, offset)
	return args.Get(0).([]domain.NoteSummary), args.Int(1), args.Error(2)
}

func (m *MockNoteSearchRepository) SearchText(ctx context.Context, query string, f NoteFilters, sortBy domain.SortBy, limit, offset int) ([]domain.NoteSummary, int, error) {
	args := m.Called(ctx, query, f, sortBy, limit, offset)
	return args.Get(0).([]domain.NoteSummary), args.Int(1), args.Error(2)
}

func (m *MockNoteSearchRepository) SearchSubstring(ctx context.Context, query string, f NoteFilters, sortBy domain.SortBy, limit, offset int) ([]domain.NoteSummary, int, error) {
	args := m.Called(ctx, query, f, sortBy, limit, offset)
	return args.Get(0).([]domain.NoteSummary), args.Int(1), args.Error(2)
}

type MockReviewSearchRepository struct {
	mock.Mock
}

func (m *MockReviewSearchRepository) SearchIndexed(ctx context.Context, query string, f ReviewFilters, limit, offset int) ([]domain.ReviewSummary, int, error) {
	args := m.Called(ctx, query, f, limit, offset)
	return args.Get(0).([]domain.ReviewSummary), args.Int(1), args.Error(2)
}

func (m *MockReviewSearchRepository) SearchText(ctx context.Context, query string, f ReviewFilters, limit, offset int) ([]domain.ReviewSummary, int, error) {
	args := m.Called(ctx, query, f, limit, offset)
	return args.Get(0).([]domain.ReviewSummary), args.Int(1), args.Error(2)
}

func (m *MockReviewSearchRepository) SearchSubstring(ctx context.Context, query string, f ReviewFilters, limit, offset int) ([]domain.ReviewSummary, int, error) {
	args := m.Called(ctx, query, f, limit, offset)
	return args.Get(0).([]domain.ReviewSummary), args.Int(1), args.Error(2)
}

func newTestSearchService(tier Tier, unis *MockUniversitySearchRepository) *SearchService {
	return NewSearchService(
		NewStaticCapability(tier),
		unis,
		new(MockUserSearchRepository),
		new(MockPostSearchRepository),
		new(MockNoteSearchRepository),
		new(MockReviewSearchRepository),
		nil,
	)
}

func TestSearchUniversities_AdvancedTierUsesIndexedQuery(t *testing.T) {
	unis := new(MockUniversitySearchRepository)
	unis.On("SearchIndexed", mock.Anything, "stanford", domain.SortBy(""), 20, 0).
		Return([]domain.UniversitySummary{{ID: "u1", Name: "Stanford University", Score: 1.5}}, 1, nil)

	svc := newTestSearchService(TierAdvanced, unis)

	rs, err := svc.SearchUniversities(context.Background(), "stanford", SearchOptions{})
	assert.NoError(t, err)
	assert.Len(t, rs.Results, 1)
	assert.Equal(t, 1, rs.Total)
	unis.AssertNotCalled(t, "SearchText", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	unis.AssertNotCalled(t, "SearchSubstring", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchUniversities_AdvancedTierZeroHitsIsAuthoritative(t *testing.T) {
	// the indexed query degrades on error only; an empty match set is a
	// valid answer and must not trigger the rougher scans
	unis := new(MockUniversitySearchRepository)
	unis.On("SearchIndexed", mock.Anything, "stanf", domain.SortBy(""), 20, 0).
		Return([]domain.UniversitySummary{}, 0, nil)

	svc := newTestSearchService(TierAdvanced, unis)

	rs, err := svc.SearchUniversities(context.Background(), "stanf", SearchOptions{})
	assert.NoError(t, err)
	assert.Empty(t, rs.Results)
	assert.Equal(t, 0, rs.Total)
	unis.AssertNotCalled(t, "SearchText", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	unis.AssertNotCalled(t, "SearchSubstring", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchUniversities_IndexedErrorDegradesToTextQuery(t *testing.T) {
	unis := new(MockUniversitySearchRepository)
	unis.On("SearchIndexed", mock.Anything, "stanford", domain.SortBy(""), 20, 0).
		Return([]domain.UniversitySummary{}, 0, errors.New("index unavailable"))
	unis.On("SearchText", mock.Anything, "stanford", domain.SortBy(""), 20, 0).
		Return([]domain.UniversitySummary{{ID: "u1", Name: "Stanford University"}}, 1, nil)

	svc := newTestSearchService(TierAdvanced, unis)

	rs, err := svc.SearchUniversities(context.Background(), "stanford", SearchOptions{})
	assert.NoError(t, err)
	assert.Equal(t, 1, rs.Total)
	unis.AssertExpectations(t)
}

func TestSearchUniversities_FallbackTierSkipsIndexedQuery(t *testing.T) {
	unis := new(MockUniversitySearchRepository)
	unis.On("SearchText", mock.Anything, "stanford", domain.SortBy(""), 20, 0).
		Return([]domain.UniversitySummary{{ID: "u1", Name: "Stanford University"}}, 1, nil)

	svc := newTestSearchService(TierFallback, unis)

	rs, err := svc.SearchUniversities(context.Background(), "stanford", SearchOptions{})
	assert.NoError(t, err)
	assert.Equal(t, 1, rs.Total)
	unis.AssertNotCalled(t, "SearchIndexed", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchUniversities_ZeroTextHitsRetriesSubstring(t *testing.T) {
	// a mid-word fragment matches no token but does match a substring
	unis := new(MockUniversitySearchRepository)
	unis.On("SearchText", mock.Anything, "tanfo", domain.SortBy(""), 20, 0).
		Return([]domain.UniversitySummary{}, 0, nil)
	unis.On("SearchSubstring", mock.Anything, "tanfo", domain.SortBy(""), 20, 0).
		Return([]domain.UniversitySummary{{ID: "u1", Name: "Stanford University"}}, 1, nil)

	svc := newTestSearchService(TierFallback, unis)

	rs, err := svc.SearchUniversities(context.Background(), "tanfo", SearchOptions{})
	assert.NoError(t, err)
	assert.Equal(t, 1, rs.Total)
	unis.AssertExpectations(t)
}

func TestSearchUniversities_EmptyPagePastEndStaysOnTextTier(t *testing.T) {
	// page 2 of a 15-match query has no rows but the match set is non-empty;
	// the total must stay consistent with page 1 rather than switching tiers
	unis := new(MockUniversitySearchRepository)
	unis.On("SearchText", mock.Anything, "stanford", domain.SortBy(""), 20, 20).
		Return([]domain.UniversitySummary{}, 15, nil)

	svc := newTestSearchService(TierFallback, unis)

	rs, err := svc.SearchUniversities(context.Background(), "stanford", SearchOptions{Page: 2, Limit: 20})
	assert.NoError(t, err)
	assert.Empty(t, rs.Results)
	assert.Equal(t, 15, rs.Total)
	unis.AssertNotCalled(t, "SearchSubstring", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchUniversities_TextErrorRetriesSubstring(t *testing.T) {
	unis := new(MockUniversitySearchRepository)
	unis.On("SearchText", mock.Anything, "stanford", domain.SortBy(""), 20, 0).
		Return([]domain.UniversitySummary{}, 0, errors.New("syntax error"))
	unis.On("SearchSubstring", mock.Anything, "stanford", domain.SortBy(""), 20, 0).
		Return([]domain.UniversitySummary{{ID: "u1", Name: "Stanford University"}}, 1, nil)

	svc := newTestSearchService(TierFallback, unis)

	rs, err := svc.SearchUniversities(context.Background(), "stanford", SearchOptions{})
	assert.NoError(t, err)
	assert.Equal(t, 1, rs.Total)
	unis.AssertExpectations(t)
}

func TestSearchUniversities_SubstringErrorPropagates(t *testing.T) {
	unis := new(MockUniversitySearchRepository)
	unis.On("SearchText", mock.Anything, "stanford", domain.SortBy(""), 20, 0).
		Return([]domain.UniversitySummary{}, 0, nil)
	unis.On("SearchSubstring", mock.Anything, "stanford", domain.SortBy(""), 20, 0).
		Return([]domain.UniversitySummary{}, 0, errors.New("storage unreachable"))

	svc := newTestSearchService(TierFallback, unis)

	rs, err := svc.SearchUniversities(context.Background(), "stanford", SearchOptions{})
	assert.Error(t, err)
	assert.Nil(t, rs)
}

func TestSearchUniversities_PaginationClamped(t *testing.T) {
	unis := new(MockUniversitySearchRepository)
	// page 3 at limit 10 becomes offset 20; limit above MaxLimit is capped
	unis.On("SearchText", mock.Anything, "stanford", domain.SortBy(""), 10, 20).
		Return([]domain.UniversitySummary{}, 0, nil)
	unis.On("SearchSubstring", mock.Anything, "stanford", domain.SortBy(""), 10, 20).
		Return([]domain.UniversitySummary{}, 25, nil)

	svc := newTestSearchService(TierFallback, unis)

	rs, err := svc.SearchUniversities(context.Background(), "stanford", SearchOptions{Page: 3, Limit: 10})
	assert.NoError(t, err)
	assert.Equal(t, 25, rs.Total)
	assert.LessOrEqual(t, len(rs.Results), 10)
}

func TestSearchPosts_FiltersPassedThrough(t *testing.T) {
	posts := new(MockPostSearchRepository)
	filters := PostFilters{Category: domain.PostCategoryAcademic, UniversityID: "u1"}
	posts.On("SearchText", mock.Anything, "exam", filters, domain.SortByNewest, 20, 0).
		Return([]domain.PostSummary{{ID: "p1", Title: "exam tips"}}, 1, nil)

	svc := NewSearchService(
		NewStaticCapability(TierFallback),
		new(MockUniversitySearchRepository),
		new(MockUserSearchRepository),
		posts,
		new(MockNoteSearchRepository),
		new(MockReviewSearchRepository),
		nil,
	)

	rs, err := svc.SearchPosts(context.Background(), "exam", filters, SearchOptions{SortBy: domain.SortByNewest})
	assert.NoError(t, err)
	assert.Equal(t, 1, rs.Total)
	posts.AssertExpectations(t)
}
