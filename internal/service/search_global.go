package service

import (
	"context"
	"sync"

	"github.com/campushub/campushub/internal/domain"
)

// DefaultGlobalLimit bounds each entity type's contribution to a federated
// search response. Distinct from the full pagination limit used by
// single-entity search.
const DefaultGlobalLimit = 5

// GlobalSearchOptions configures a federated search. UserID is empty for
// anonymous callers.
type GlobalSearchOptions struct {
	Limit  int
	UserID string
}

// GlobalSearchResult is the fan-in of all five entity strategies. Counts
// holds the per-type totals; Total is their sum.
type GlobalSearchResult struct {
	Query        string
	Universities []domain.UniversitySummary
	Users        []domain.UserSummary
	Posts        []domain.PostSummary
	Notes        []domain.NoteSummary
	Reviews      []domain.ReviewSummary
	Counts       map[domain.EntityType]int
	Total        int
}

// SearchTracker records queries into history and the popularity counter.
// Both are best-effort side effects; implementations must never panic and
// must swallow their own storage errors.
type SearchTracker interface {
	SaveSearchHistory(ctx context.Context, userID, query string)
	UpdatePopularSearches(query string)
}

// GlobalSearch fans the query out to all five entity strategies concurrently
// and assembles per-type result lists and counts. The caller is responsible
// for rejecting queries shorter than 2 characters. History and popularity
// recording happen asynchronously and can never fail the response.
func (s *SearchService) GlobalSearch(ctx context.Context, query string, opts GlobalSearchOptions) (*GlobalSearchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultGlobalLimit
	}
	perType := SearchOptions{Page: 1, Limit: limit}

	var (
		wg           sync.WaitGroup
		universities *ResultSet[domain.UniversitySummary]
		users        *ResultSet[domain.UserSummary]
		posts        *ResultSet[domain.PostSummary]
		notes        *ResultSet[domain.NoteSummary]
		reviews      *ResultSet[domain.ReviewSummary]
		errs         [5]error
	)

	wg.Add(5)
	go func() {
		defer wg.Done()
		universities, errs[0] = s.SearchUniversities(ctx, query, perType)
	}()
	go func() {
		defer wg.Done()
		users, errs[1] = s.SearchUsers(ctx, query, perType)
	}()
	go func() {
		defer wg.Done()
		posts, errs[2] = s.SearchPosts(ctx, query, PostFilters{}, perType)
	}()
	go func() {
		defer wg.Done()
		notes, errs[3] = s.SearchNotes(ctx, query, NoteFilters{}, perType)
	}()
	go func() {
		defer wg.Done()
		reviews, errs[4] = s.SearchReviews(ctx, query, ReviewFilters{}, perType)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	counts := map[domain.EntityType]int{
		domain.EntityUniversity: universities.Total,
		domain.EntityUser:       users.Total,
		domain.EntityPost:       posts.Total,
		domain.EntityNote:       notes.Total,
		domain.EntityReview:     reviews.Total,
	}
	total := 0
	for _, n := range counts {
		total += n
	}

	if s.tracker != nil {
		// Detached from the request context so an early client disconnect
		// does not abort the write.
		bg := context.WithoutCancel(ctx)
		go func() {
			s.tracker.UpdatePopularSearches(query)
			if opts.UserID != "" {
				s.tracker.SaveSearchHistory(bg, opts.UserID, query)
			}
		}()
	}

	return &GlobalSearchResult{
		Query:        query,
		Universities: universities.Results,
		Users:        users.Results,
		Posts:        posts.Results,
		Notes:        notes.Results,
		Reviews:      reviews.Results,
		Counts:       counts,
		Total:        total,
	}, nil
}
