package service

import (
	"context"
	"log"

	"github.com/campushub/campushub/internal/domain"
	"github.com/campushub/campushub/internal/pagination"
)

// ResultSet is one page of search hits for a single entity type, along with
// the count of all matching documents independent of pagination.
type ResultSet[T any] struct {
	Results []T
	Total   int
}

// SearchOptions carries pagination and ordering for single-entity search.
// Page is 1-based. Limit is assumed to be clamped by the caller.
type SearchOptions struct {
	Page   int
	Limit  int
	SortBy domain.SortBy
}

// PostFilters narrows post search. Zero values mean no filtering.
type PostFilters struct {
	Category     domain.PostCategory
	UniversityID string
}

// NoteFilters narrows note search.
type NoteFilters struct {
	UniversityID string
	Subject      string
	NoteType     domain.NoteType
}

// ReviewFilters narrows review search.
type ReviewFilters struct {
	UniversityID string
	MinRating    int
}

// Per-entity search repositories. Each exposes the three query shapes the
// tiered algorithm needs: the indexed ranked query (requires the search
// migration), the on-the-fly text query, and the substring scan. All three
// return one page of summaries plus the total match count.

type UniversitySearchRepository interface {
	SearchIndexed(ctx context.Context, query string, sortBy domain.SortBy, limit, offset int) ([]domain.UniversitySummary, int, error)
	SearchText(ctx context.Context, query string, sortBy domain.SortBy, limit, offset int) ([]domain.UniversitySummary, int, error)
	SearchSubstring(ctx context.Context, query string, sortBy domain.SortBy, limit, offset int) ([]domain.UniversitySummary, int, error)
}

type UserSearchRepository interface {
	SearchIndexed(ctx context.Context, query string, limit, offset int) ([]domain.UserSummary, int, error)
	SearchText(ctx context.Context, query string, limit, offset int) ([]domain.UserSummary, int, error)
	SearchSubstring(ctx context.Context, query string, limit, offset int) ([]domain.UserSummary, int, error)
}

type PostSearchRepository interface {
	SearchIndexed(ctx context.Context, query string, f PostFilters, sortBy domain.SortBy, limit, offset int) ([]domain.PostSummary, int, error)
	SearchText(ctx context.Context, query string, f PostFilters, sortBy domain.SortBy, limit, offset int) ([]domain.PostSummary, int, error)
	SearchSubstring(ctx context.Context, query string, f PostFilters, sortBy domain.SortBy, limit, offset int) ([]domain.PostSummary, int, error)
}

type NoteSearchRepository interface {
	SearchIndexed(ctx context.Context, query string, f NoteFilters, sortBy domain.SortBy, limit, offset int) ([]domain.NoteSummary, int, error)
	SearchText(ctx context.Context, query string, f NoteFilters, sortBy domain.SortBy, limit, offset int) ([]domain.NoteSummary, int, error)
	SearchSubstring(ctx context.Context, query string, f NoteFilters, sortBy domain.SortBy, limit, offset int) ([]domain.NoteSummary, int, error)
}

type ReviewSearchRepository interface {
	SearchIndexed(ctx context.Context, query string, f ReviewFilters, limit, offset int) ([]domain.ReviewSummary, int, error)
	SearchText(ctx context.Context, query string, f ReviewFilters, limit, offset int) ([]domain.ReviewSummary, int, error)
	SearchSubstring(ctx context.Context, query string, f ReviewFilters, limit, offset int) ([]domain.ReviewSummary, int, error)
}

// SearchService runs the tiered search algorithm for every entity type. The
// callers are responsible for rejecting empty queries; the strategies assume
// non-empty text.
type SearchService struct {
	prober       *CapabilityProber
	universities UniversitySearchRepository
	users        UserSearchRepository
	posts        PostSearchRepository
	notes        NoteSearchRepository
	reviews      ReviewSearchRepository
	tracker      SearchTracker
}

// NewSearchService wires the five entity strategies. tracker may be nil when
// history/popularity recording is not wanted.
func NewSearchService(
	prober *CapabilityProber,
	universities UniversitySearchRepository,
	users UserSearchRepository,
	posts PostSearchRepository,
	notes NoteSearchRepository,
	reviews ReviewSearchRepository,
	tracker SearchTracker,
) *SearchService {
	return &SearchService{
		prober:       prober,
		universities: universities,
		users:        users,
		posts:        posts,
		notes:        notes,
		reviews:      reviews,
		tracker:      tracker,
	}
}

type tierQuery[T any] func(ctx context.Context) ([]T, int, error)

// searchTwoTier is the algorithm every entity strategy shares. The indexed
// query runs only when the advanced tier resolved; any error there degrades
// to the text query rather than failing the request. A text query matching
// nothing at all (or erroring) retries as a substring scan. The retry keys
// off the total, not the page: an empty page past the end of a non-empty
// match set stays on the text tier so totals agree across pages. Only an
// error from the final attempt propagates.
func searchTwoTier[T any](ctx context.Context, prober *CapabilityProber, indexed, text, substring tierQuery[T]) (*ResultSet[T], error) {
	if prober.EnsureCapability(ctx) == TierAdvanced {
		results, total, err := indexed(ctx)
		if err == nil {
			return &ResultSet[T]{Results: results, Total: total}, nil
		}
		log.Printf("search: indexed query failed, degrading to text query: %v", err)
	}

	results, total, err := text(ctx)
	if err == nil && total > 0 {
		return &ResultSet[T]{Results: results, Total: total}, nil
	}
	if err != nil {
		log.Printf("search: text query failed, retrying as substring scan: %v", err)
	}

	results, total, err = substring(ctx)
	if err != nil {
		return nil, err
	}
	return &ResultSet[T]{Results: results, Total: total}, nil
}

func (s *SearchService) SearchUniversities(ctx context.Context, query string, opts SearchOptions) (*ResultSet[domain.UniversitySummary], error) {
	page, limit := pagination.Clamp(opts.Page, opts.Limit, pagination.DefaultLimit)
	offset := pagination.Offset(page, limit)
	return searchTwoTier(ctx, s.prober,
		func(ctx context.Context) ([]domain.UniversitySummary, int, error) {
			return s.universities.SearchIndexed(ctx, query, opts.SortBy, limit, offset)
		},
		func(ctx context.Context) ([]domain.UniversitySummary, int, error) {
			return s.universities.SearchText(ctx, query, opts.SortBy, limit, offset)
		},
		func(ctx context.Context) ([]domain.UniversitySummary, int, error) {
			return s.universities.SearchSubstring(ctx, query, opts.SortBy, limit, offset)
		},
	)
}

func (s *SearchService) SearchUsers(ctx context.Context, query string, opts SearchOptions) (*ResultSet[domain.UserSummary], error) {
	page, limit := pagination.Clamp(opts.Page, opts.Limit, pagination.DefaultLimit)
	offset := pagination.Offset(page, limit)
	return searchTwoTier(ctx, s.prober,
		func(ctx context.Context) ([]domain.UserSummary, int, error) {
			return s.users.SearchIndexed(ctx, query, limit, offset)
		},
		func(ctx context.Context) ([]domain.UserSummary, int, error) {
			return s.users.SearchText(ctx, query, limit, offset)
		},
		func(ctx context.Context) ([]domain.UserSummary, int, error) {
			return s.users.SearchSubstring(ctx, query, limit, offset)
		},
	)
}

func (s *SearchService) SearchPosts(ctx context.Context, query string, f PostFilters, opts SearchOptions) (*ResultSet[domain.PostSummary], error) {
	page, limit := pagination.Clamp(opts.Page, opts.Limit, pagination.DefaultLimit)
	offset := pagination.Offset(page, limit)
	return searchTwoTier(ctx, s.prober,
		func(ctx context.Context) ([]domain.PostSummary, int, error) {
			return s.posts.SearchIndexed(ctx, query, f, opts.SortBy, limit, offset)
		},
		func(ctx context.Context) ([]domain.PostSummary, int, error) {
			return s.posts.SearchText(ctx, query, f, opts.SortBy, limit, offset)
		},
		func(ctx context.Context) ([]domain.PostSummary, int, error) {
			return s.posts.SearchSubstring(ctx, query, f, opts.SortBy, limit, offset)
		},
	)
}

func (s *SearchService) SearchNotes(ctx context.Context, query string, f NoteFilters, opts SearchOptions) (*ResultSet[domain.NoteSummary], error) {
	page, limit := pagination.Clamp(opts.Page, opts.Limit, pagination.DefaultLimit)
	offset := pagination.Offset(page, limit)
	return searchTwoTier(ctx, s.prober,
		func(ctx context.Context) ([]domain.NoteSummary, int, error) {
			return s.notes.SearchIndexed(ctx, query, f, opts.SortBy, limit, offset)
		},
		func(ctx context.Context) ([]domain.NoteSummary, int, error) {
			return s.notes.SearchText(ctx, query, f, opts.SortBy, limit, offset)
		},
		func(ctx context.Context) ([]domain.NoteSummary, int, error) {
			return s.notes.SearchSubstring(ctx, query, f, opts.SortBy, limit, offset)
		},
	)
}

func (s *SearchService) SearchReviews(ctx context.Context, query string, f ReviewFilters, opts SearchOptions) (*ResultSet[domain.ReviewSummary], error) {
	page, limit := pagination.Clamp(opts.Page, opts.Limit, pagination.DefaultLimit)
	offset := pagination.Offset(page, limit)
	return searchTwoTier(ctx, s.prober,
		func(ctx context.Context) ([]domain.ReviewSummary, int, error) {
			return s.reviews.SearchIndexed(ctx, query, f, limit, offset)
		},
		func(ctx context.Context) ([]domain.ReviewSummary, int, error) {
			return s.reviews.SearchText(ctx, query, f, limit, offset)
		},
		func(ctx context.Context) ([]domain.ReviewSummary, int, error) {
			return s.reviews.SearchSubstring(ctx, query, f, limit, offset)
		},
	)
}
