package service

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/campushub/campushub/internal/cache"
)

const (
	// HistoryCap is the hard per-user bound on stored history entries,
	// enforced eagerly after every write.
	HistoryCap = 50

	// DefaultRecentLimit applies when GET /search/recent omits limit.
	DefaultRecentLimit = 10

	popularRankingSize = 20
	popularResortEvery = 100
	popularCacheKey    = "search:popular"
	popularCacheTTL    = 5 * time.Minute
)

// SearchHistoryRepository persists per-user search history.
type SearchHistoryRepository interface {
	// Upsert creates the (user, query) entry at count=1, or increments count
	// and bumps updated_at when it already exists.
	Upsert(ctx context.Context, userID, query string) error
	// TrimToCap deletes the entries beyond the most recently updated `keep`
	// for the given user.
	TrimToCap(ctx context.Context, userID string, keep int) error
	Recent(ctx context.Context, userID string, limit int) ([]string, error)
	Clear(ctx context.Context, userID string) error
	// TopQueries aggregates persisted history counts across all users,
	// grouped by query, highest summed count first.
	TopQueries(ctx context.Context, limit int) ([]string, error)
}

// HistoryService tracks per-user search history (persisted) and a
// process-local approximate popularity counter (ephemeral). History writes
// are best-effort telemetry: storage errors are logged and swallowed.
type HistoryService struct {
	repo  SearchHistoryRepository
	cache cache.Cache

	mu      sync.Mutex
	counts  map[string]int
	updates int
	ranking []string
}

func NewHistoryService(repo SearchHistoryRepository, c cache.Cache) *HistoryService {
	return &HistoryService{
		repo:   repo,
		cache:  c,
		counts: make(map[string]int),
	}
}

// NormalizeQuery trims and lowercases a raw query for history keys.
func NormalizeQuery(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// SaveSearchHistory upserts the (user, query) pair and then enforces the
// per-user cap. Never returns an error; failures here must not affect the
// search response.
func (s *HistoryService) SaveSearchHistory(ctx context.Context, userID, query string) {
	normalized := NormalizeQuery(query)
	if len([]rune(normalized)) < MinQueryLength {
		return
	}

	if err := s.repo.Upsert(ctx, userID, normalized); err != nil {
		log.Printf("history: failed to save search %q for user %s: %v", normalized, userID, err)
		return
	}
	if err := s.repo.TrimToCap(ctx, userID, HistoryCap); err != nil {
		log.Printf("history: failed to trim history for user %s: %v", userID, err)
	}
}

// GetRecentSearches returns the user's most recently updated queries.
func (s *HistoryService) GetRecentSearches(ctx context.Context, userID string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return s.repo.Recent(ctx, userID, limit)
}

// ClearSearchHistory deletes every history entry for the user.
func (s *HistoryService) ClearSearchHistory(ctx context.Context, userID string) error {
	return s.repo.Clear(ctx, userID)
}

// UpdatePopularSearches folds one search into the in-process counter. The
// cached top-N ranking is only recomputed every popularResortEvery updates
// (or when empty), trading freshness for avoiding a sort on every search.
func (s *HistoryService) UpdatePopularSearches(query string) {
	normalized := NormalizeQuery(query)
	if len([]rune(normalized)) < MinQueryLength {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[normalized]++
	s.updates++
	if len(s.ranking) == 0 || s.updates >= popularResortEvery {
		s.resortLocked()
		s.updates = 0
	}
}

// resortLocked recomputes the cached ranking. Callers must hold mu.
func (s *HistoryService) resortLocked() {
	type entry struct {
		query string
		count int
	}
	entries := make([]entry, 0, len(s.counts))
	for q, c := range s.counts {
		entries = append(entries, entry{q, c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].query < entries[j].query
	})
	if len(entries) > popularRankingSize {
		entries = entries[:popularRankingSize]
	}
	s.ranking = make([]string, len(entries))
	for i, e := range entries {
		s.ranking[i] = e.query
	}
}

// GetPopularSearches returns the cached in-process ranking when available.
// In a freshly started process the ranking is empty, so it falls back to a
// one-time aggregation over persisted history, memoized through the cache.
func (s *HistoryService) GetPopularSearches(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 || limit > popularRankingSize {
		limit = popularRankingSize
	}

	s.mu.Lock()
	ranking := s.ranking
	s.mu.Unlock()
	if len(ranking) > 0 {
		if len(ranking) > limit {
			ranking = ranking[:limit]
		}
		return ranking, nil
	}

	if data, err := s.cache.Get(ctx, popularCacheKey); err == nil {
		var cached []string
		if err := json.Unmarshal(data, &cached); err == nil {
			if len(cached) > limit {
				cached = cached[:limit]
			}
			return cached, nil
		}
	}

	top, err := s.repo.TopQueries(ctx, popularRankingSize)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(top); err == nil {
		if err := s.cache.Set(ctx, popularCacheKey, data, popularCacheTTL); err != nil {
			log.Printf("history: failed to cache popular searches: %v", err)
		}
	}
	if len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

// SnapshotPopular re-sorts the counter and refreshes the cached popular list
// so restarts do not start cold. Driven by the background worker.
func (s *HistoryService) SnapshotPopular(ctx context.Context) error {
	s.mu.Lock()
	s.resortLocked()
	s.updates = 0
	ranking := make([]string, len(s.ranking))
	copy(ranking, s.ranking)
	s.mu.Unlock()

	if len(ranking) == 0 {
		return nil
	}
	data, err := json.Marshal(ranking)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, popularCacheKey, data, popularCacheTTL)
}
