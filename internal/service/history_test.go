package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/campushub/campushub/internal/cache"
)

type MockSearchHistoryRepository struct {
	mock.Mock
}

func (m *MockSearchHistoryRepository) Upsert(ctx context.Context, userID, query string) error {
	args := m.Called(ctx, userID, query)
	return args.Error(0)
}

func (m *MockSearchHistoryRepository) TrimToCap(ctx context.Context, userID string, keep int) error {
	args := m.Called(ctx, userID, keep)
	return args.Error(0)
}

func (m *MockSearchHistoryRepository) Recent(ctx context.Context, userID string, limit int) ([]string, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSearchHistoryRepository) Clear(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockSearchHistoryRepository) TopQueries(ctx context.Context, limit int) ([]string, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]string), args.Error(1)
}

func newHistoryService(repo SearchHistoryRepository) *HistoryService {
	return NewHistoryService(repo, cache.NewMemory())
}

func TestSaveSearchHistory_NormalizesQuery(t *testing.T) {
	repo := new(MockSearchHistoryRepository)
	svc := newHistoryService(repo)

	repo.On("Upsert", mock.Anything, "user-1", "mit").Return(nil)
	repo.On("TrimToCap", mock.Anything, "user-1", HistoryCap).Return(nil)

	svc.SaveSearchHistory(context.Background(), "user-1", "  MIT  ")

	repo.AssertExpectations(t)
}

func TestSaveSearchHistory_ShortQueryIsNoOp(t *testing.T) {
	repo := new(MockSearchHistoryRepository)
	svc := newHistoryService(repo)

	svc.SaveSearchHistory(context.Background(), "user-1", " m ")

	repo.AssertNotCalled(t, "Upsert")
	repo.AssertNotCalled(t, "TrimToCap")
}

func TestSaveSearchHistory_UpsertErrorSkipsTrim(t *testing.T) {
	repo := new(MockSearchHistoryRepository)
	svc := newHistoryService(repo)

	repo.On("Upsert", mock.Anything, "user-1", "mit").Return(errors.New("connection lost"))

	svc.SaveSearchHistory(context.Background(), "user-1", "mit")

	repo.AssertNotCalled(t, "TrimToCap")
}

func TestSaveSearchHistory_TrimErrorIsSwallowed(t *testing.T) {
	repo := new(MockSearchHistoryRepository)
	svc := newHistoryService(repo)

	repo.On("Upsert", mock.Anything, "user-1", "mit").Return(nil)
	repo.On("TrimToCap", mock.Anything, "user-1", HistoryCap).Return(errors.New("timeout"))

	assert.NotPanics(t, func() {
		svc.SaveSearchHistory(context.Background(), "user-1", "mit")
	})
}

func TestGetRecentSearches_DefaultLimit(t *testing.T) {
	repo := new(MockSearchHistoryRepository)
	svc := newHistoryService(repo)

	repo.On("Recent", mock.Anything, "user-1", DefaultRecentLimit).
		Return([]string{"mit", "stanford"}, nil)

	searches, err := svc.GetRecentSearches(context.Background(), "user-1", 0)

	assert.NoError(t, err)
	assert.Equal(t, []string{"mit", "stanford"}, searches)
}

func TestClearSearchHistory(t *testing.T) {
	repo := new(MockSearchHistoryRepository)
	svc := newHistoryService(repo)

	repo.On("Clear", mock.Anything, "user-1").Return(nil)

	assert.NoError(t, svc.ClearSearchHistory(context.Background(), "user-1"))
	repo.AssertExpectations(t)
}

func TestGetPopularSearches_RanksByFrequency(t *testing.T) {
	svc := newHistoryService(new(MockSearchHistoryRepository))

	svc.UpdatePopularSearches("MIT")
	svc.UpdatePopularSearches("mit")
	svc.UpdatePopularSearches("mit ")
	svc.UpdatePopularSearches("stanford")
	svc.UpdatePopularSearches("stanford")
	svc.UpdatePopularSearches("oxford")

	// force a re-sort; the counter only recomputes the ranking periodically
	assert.NoError(t, svc.SnapshotPopular(context.Background()))

	popular, err := svc.GetPopularSearches(context.Background(), 10)

	assert.NoError(t, err)
	assert.Equal(t, []string{"mit", "stanford", "oxford"}, popular)
}

func TestUpdatePopularSearches_ShortQueryIgnored(t *testing.T) {
	repo := new(MockSearchHistoryRepository)
	svc := newHistoryService(repo)

	svc.UpdatePopularSearches("x")

	repo.On("TopQueries", mock.Anything, mock.Anything).Return([]string{}, nil)
	popular, err := svc.GetPopularSearches(context.Background(), 10)
	assert.NoError(t, err)
	assert.Empty(t, popular)
}

func TestUpdatePopularSearches_RankingRefreshCadence(t *testing.T) {
	svc := newHistoryService(new(MockSearchHistoryRepository))

	// First update populates the ranking. Subsequent updates accumulate in the
	// counter but do not re-sort until the cadence threshold.
	svc.UpdatePopularSearches("alpha")
	svc.UpdatePopularSearches("beta")
	svc.UpdatePopularSearches("beta")

	popular, err := svc.GetPopularSearches(context.Background(), 10)
	assert.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, popular)

	for i := 0; i < popularResortEvery; i++ {
		svc.UpdatePopularSearches(fmt.Sprintf("query-%02d", i%3))
	}

	popular, err = svc.GetPopularSearches(context.Background(), 10)
	assert.NoError(t, err)
	assert.Contains(t, popular, "beta")
}

func TestGetPopularSearches_ColdStartFallsBackToPersistedHistory(t *testing.T) {
	repo := new(MockSearchHistoryRepository)
	svc := newHistoryService(repo)

	repo.On("TopQueries", mock.Anything, popularRankingSize).
		Return([]string{"mit", "stanford", "oxford"}, nil)

	popular, err := svc.GetPopularSearches(context.Background(), 2)

	assert.NoError(t, err)
	assert.Equal(t, []string{"mit", "stanford"}, popular)

	// second call is served from the cache
	popular, err = svc.GetPopularSearches(context.Background(), 2)
	assert.NoError(t, err)
	assert.Equal(t, []string{"mit", "stanford"}, popular)
	repo.AssertNumberOfCalls(t, "TopQueries", 1)
}

func TestGetPopularSearches_RepositoryErrorPropagates(t *testing.T) {
	repo := new(MockSearchHistoryRepository)
	svc := newHistoryService(repo)

	repo.On("TopQueries", mock.Anything, popularRankingSize).
		Return([]string{}, errors.New("storage unreachable"))

	popular, err := svc.GetPopularSearches(context.Background(), 5)

	assert.Error(t, err)
	assert.Nil(t, popular)
}

func TestSnapshotPopular_WritesRankingToCache(t *testing.T) {
	repo := new(MockSearchHistoryRepository)
	c := cache.NewMemory()
	svc := NewHistoryService(repo, c)

	svc.UpdatePopularSearches("mit")
	svc.UpdatePopularSearches("mit")
	svc.UpdatePopularSearches("stanford")

	assert.NoError(t, svc.SnapshotPopular(context.Background()))

	data, err := c.Get(context.Background(), "search:popular")
	assert.NoError(t, err)
	assert.JSONEq(t, `["mit","stanford"]`, string(data))
}

func TestSnapshotPopular_EmptyCounterSkipsCacheWrite(t *testing.T) {
	repo := new(MockSearchHistoryRepository)
	c := cache.NewMemory()
	svc := NewHistoryService(repo, c)

	assert.NoError(t, svc.SnapshotPopular(context.Background()))

	_, err := c.Get(context.Background(), "search:popular")
	assert.Error(t, err)
}
