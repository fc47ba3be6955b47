package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/campushub/campushub/internal/domain"
)

type recordingTracker struct {
	mu      sync.Mutex
	saved   []string
	popular []string
}

func (t *recordingTracker) SaveSearchHistory(ctx context.Context, userID, query string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.saved = append(t.saved, userID+":"+query)
}

func (t *recordingTracker) UpdatePopularSearches(query string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.popular = append(t.popular, query)
}

func (t *recordingTracker) snapshot() ([]string, []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.saved...), append([]string(nil), t.popular...)
}

func newGlobalFixture(tracker SearchTracker) (*SearchService, *MockUniversitySearchRepository, *MockUserSearchRepository, *MockPostSearchRepository, *MockNoteSearchRepository, *MockReviewSearchRepository) {
	unis := new(MockUniversitySearchRepository)
	users := new(MockUserSearchRepository)
	posts := new(MockPostSearchRepository)
	notes := new(MockNoteSearchRepository)
	reviews := new(MockReviewSearchRepository)
	svc := NewSearchService(NewStaticCapability(TierFallback), unis, users, posts, notes, reviews, tracker)
	return svc, unis, users, posts, notes, reviews
}

func TestGlobalSearch_CountsSumToTotal(t *testing.T) {
	svc, unis, users, posts, notes, reviews := newGlobalFixture(nil)

	unis.On("SearchText", mock.Anything, "mit", domain.SortBy(""), 5, 0).
		Return([]domain.UniversitySummary{{ID: "u1"}}, 3, nil)
	users.On("SearchText", mock.Anything, "mit", 5, 0).
		Return([]domain.UserSummary{{ID: "us1"}}, 2, nil)
	posts.On("SearchText", mock.Anything, "mit", PostFilters{}, domain.SortBy(""), 5, 0).
		Return([]domain.PostSummary{{ID: "p1"}}, 7, nil)
	notes.On("SearchText", mock.Anything, "mit", NoteFilters{}, domain.SortBy(""), 5, 0).
		Return([]domain.NoteSummary{{ID: "n1"}}, 1, nil)
	reviews.On("SearchText", mock.Anything, "mit", ReviewFilters{}, 5, 0).
		Return([]domain.ReviewSummary{{ID: "r1"}}, 4, nil)

	result, err := svc.GlobalSearch(context.Background(), "mit", GlobalSearchOptions{})
	assert.NoError(t, err)
	assert.Equal(t, "mit", result.Query)

	sum := 0
	for _, n := range result.Counts {
		sum += n
	}
	assert.Equal(t, sum, result.Total)
	assert.Equal(t, 17, result.Total)
	assert.Equal(t, 3, result.Counts[domain.EntityUniversity])
	assert.Equal(t, 2, result.Counts[domain.EntityUser])
	assert.Equal(t, 7, result.Counts[domain.EntityPost])
	assert.Equal(t, 1, result.Counts[domain.EntityNote])
	assert.Equal(t, 4, result.Counts[domain.EntityReview])
}

func TestGlobalSearch_DefaultPerTypeLimit(t *testing.T) {
	svc, unis, users, posts, notes, reviews := newGlobalFixture(nil)

	unis.On("SearchText", mock.Anything, "mit", domain.SortBy(""), DefaultGlobalLimit, 0).
		Return([]domain.UniversitySummary{}, 0, nil)
	unis.On("SearchSubstring", mock.Anything, "mit", domain.SortBy(""), DefaultGlobalLimit, 0).
		Return([]domain.UniversitySummary{}, 0, nil)
	users.On("SearchText", mock.Anything, "mit", DefaultGlobalLimit, 0).
		Return([]domain.UserSummary{}, 0, nil)
	users.On("SearchSubstring", mock.Anything, "mit", DefaultGlobalLimit, 0).
		Return([]domain.UserSummary{}, 0, nil)
	posts.On("SearchText", mock.Anything, "mit", PostFilters{}, domain.SortBy(""), DefaultGlobalLimit, 0).
		Return([]domain.PostSummary{}, 0, nil)
	posts.On("SearchSubstring", mock.Anything, "mit", PostFilters{}, domain.SortBy(""), DefaultGlobalLimit, 0).
		Return([]domain.PostSummary{}, 0, nil)
	notes.On("SearchText", mock.Anything, "mit", NoteFilters{}, domain.SortBy(""), DefaultGlobalLimit, 0).
		Return([]domain.NoteSummary{}, 0, nil)
	notes.On("SearchSubstring", mock.Anything, "mit", NoteFilters{}, domain.SortBy(""), DefaultGlobalLimit, 0).
		Return([]domain.NoteSummary{}, 0, nil)
	reviews.On("SearchText", mock.Anything, "mit", ReviewFilters{}, DefaultGlobalLimit, 0).
		Return([]domain.ReviewSummary{}, 0, nil)
	reviews.On("SearchSubstring", mock.Anything, "mit", ReviewFilters{}, DefaultGlobalLimit, 0).
		Return([]domain.ReviewSummary{}, 0, nil)

	result, err := svc.GlobalSearch(context.Background(), "mit", GlobalSearchOptions{})
	assert.NoError(t, err)
	assert.Equal(t, 0, result.Total)
}

func TestGlobalSearch_StrategyErrorFailsResponse(t *testing.T) {
	svc, unis, users, posts, notes, reviews := newGlobalFixture(nil)

	unis.On("SearchText", mock.Anything, "mit", domain.SortBy(""), 5, 0).
		Return([]domain.UniversitySummary{}, 0, nil)
	unis.On("SearchSubstring", mock.Anything, "mit", domain.SortBy(""), 5, 0).
		Return([]domain.UniversitySummary{}, 0, errors.New("storage unreachable"))
	users.On("SearchText", mock.Anything, "mit", 5, 0).
		Return([]domain.UserSummary{{ID: "us1"}}, 1, nil)
	posts.On("SearchText", mock.Anything, "mit", PostFilters{}, domain.SortBy(""), 5, 0).
		Return([]domain.PostSummary{{ID: "p1"}}, 1, nil)
	notes.On("SearchText", mock.Anything, "mit", NoteFilters{}, domain.SortBy(""), 5, 0).
		Return([]domain.NoteSummary{{ID: "n1"}}, 1, nil)
	reviews.On("SearchText", mock.Anything, "mit", ReviewFilters{}, 5, 0).
		Return([]domain.ReviewSummary{{ID: "r1"}}, 1, nil)

	result, err := svc.GlobalSearch(context.Background(), "mit", GlobalSearchOptions{})
	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestGlobalSearch_RecordsHistoryForAuthenticatedCaller(t *testing.T) {
	tracker := &recordingTracker{}
	svc, unis, users, posts, notes, reviews := newGlobalFixture(tracker)

	unis.On("SearchText", mock.Anything, "mit", domain.SortBy(""), 5, 0).
		Return([]domain.UniversitySummary{{ID: "u1"}}, 1, nil)
	users.On("SearchText", mock.Anything, "mit", 5, 0).
		Return([]domain.UserSummary{{ID: "us1"}}, 1, nil)
	posts.On("SearchText", mock.Anything, "mit", PostFilters{}, domain.SortBy(""), 5, 0).
		Return([]domain.PostSummary{{ID: "p1"}}, 1, nil)
	notes.On("SearchText", mock.Anything, "mit", NoteFilters{}, domain.SortBy(""), 5, 0).
		Return([]domain.NoteSummary{{ID: "n1"}}, 1, nil)
	reviews.On("SearchText", mock.Anything, "mit", ReviewFilters{}, 5, 0).
		Return([]domain.ReviewSummary{{ID: "r1"}}, 1, nil)

	_, err := svc.GlobalSearch(context.Background(), "mit", GlobalSearchOptions{UserID: "user-1"})
	assert.NoError(t, err)

	// the tracker runs in its own goroutine
	assert.Eventually(t, func() bool {
		saved, popular := tracker.snapshot()
		return len(saved) == 1 && len(popular) == 1
	}, time.Second, 10*time.Millisecond)

	saved, popular := tracker.snapshot()
	assert.Equal(t, []string{"user-1:mit"}, saved)
	assert.Equal(t, []string{"mit"}, popular)
}

func TestGlobalSearch_AnonymousCallerSkipsHistory(t *testing.T) {
	tracker := &recordingTracker{}
	svc, unis, users, posts, notes, reviews := newGlobalFixture(tracker)

	unis.On("SearchText", mock.Anything, "mit", domain.SortBy(""), 5, 0).
		Return([]domain.UniversitySummary{{ID: "u1"}}, 1, nil)
	users.On("SearchText", mock.Anything, "mit", 5, 0).
		Return([]domain.UserSummary{{ID: "us1"}}, 1, nil)
	posts.On("SearchText", mock.Anything, "mit", PostFilters{}, domain.SortBy(""), 5, 0).
		Return([]domain.PostSummary{{ID: "p1"}}, 1, nil)
	notes.On("SearchText", mock.Anything, "mit", NoteFilters{}, domain.SortBy(""), 5, 0).
		Return([]domain.NoteSummary{{ID: "n1"}}, 1, nil)
	reviews.On("SearchText", mock.Anything, "mit", ReviewFilters{}, 5, 0).
		Return([]domain.ReviewSummary{{ID: "r1"}}, 1, nil)

	_, err := svc.GlobalSearch(context.Background(), "mit", GlobalSearchOptions{})
	assert.NoError(t, err)

	// popularity is tracked regardless of identity; history is not
	assert.Eventually(t, func() bool {
		_, popular := tracker.snapshot()
		return len(popular) == 1
	}, time.Second, 10*time.Millisecond)

	saved, _ := tracker.snapshot()
	assert.Empty(t, saved)
}
