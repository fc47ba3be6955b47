package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/campushub/campushub/internal/api"
	"github.com/campushub/campushub/internal/api/middleware"
	"github.com/campushub/campushub/internal/domain"
	"github.com/campushub/campushub/internal/pagination"
	"github.com/campushub/campushub/internal/service"
)

type SearchService interface {
	GlobalSearch(ctx context.Context, query string, opts service.GlobalSearchOptions) (*service.GlobalSearchResult, error)
	SearchUniversities(ctx context.Context, query string, opts service.SearchOptions) (*service.ResultSet[domain.UniversitySummary], error)
	SearchUsers(ctx context.Context, query string, opts service.SearchOptions) (*service.ResultSet[domain.UserSummary], error)
	SearchPosts(ctx context.Context, query string, f service.PostFilters, opts service.SearchOptions) (*service.ResultSet[domain.PostSummary], error)
	SearchNotes(ctx context.Context, query string, f service.NoteFilters, opts service.SearchOptions) (*service.ResultSet[domain.NoteSummary], error)
	SearchReviews(ctx context.Context, query string, f service.ReviewFilters, opts service.SearchOptions) (*service.ResultSet[domain.ReviewSummary], error)
}

type SuggestionService interface {
	GetSuggestions(ctx context.Context, query string, limit int) ([]domain.Suggestion, error)
}

type HistoryService interface {
	GetRecentSearches(ctx context.Context, userID string, limit int) ([]string, error)
	ClearSearchHistory(ctx context.Context, userID string) error
	GetPopularSearches(ctx context.Context, limit int) ([]string, error)
}

type SearchHandler struct {
	search      SearchService
	suggestions SuggestionService
	history     HistoryService
}

func NewSearchHandler(search SearchService, suggestions SuggestionService, history HistoryService) *SearchHandler {
	return &SearchHandler{search: search, suggestions: suggestions, history: history}
}

// queryParam returns the trimmed q parameter and whether it meets the
// 2-character minimum.
func queryParam(r *http.Request) (string, bool) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	return q, len([]rune(q)) >= service.MinQueryLength
}

func intParam(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return v
}

func searchOptions(r *http.Request) service.SearchOptions {
	return service.SearchOptions{
		Page:   intParam(r, "page"),
		Limit:  intParam(r, "limit"),
		SortBy: domain.SortBy(r.URL.Query().Get("sortBy")),
	}
}

func pageOf(r *http.Request, total int) pagination.Page {
	page, limit := pagination.Clamp(intParam(r, "page"), intParam(r, "limit"), pagination.DefaultLimit)
	return pagination.New(page, limit, total)
}

// searchFailed hides backend errors behind a generic message; the cause is
// logged server-side only.
func searchFailed(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("search: %s %s failed: %v", r.Method, r.URL.Path, err)
	api.Error(w, http.StatusInternalServerError, "Search failed")
}

type globalCountsResponse struct {
	Universities int `json:"universities"`
	Users        int `json:"users"`
	Posts        int `json:"posts"`
	Notes        int `json:"notes"`
	Reviews      int `json:"reviews"`
	Total        int `json:"total"`
}

type globalResultsResponse struct {
	Universities []domain.UniversitySummary `json:"universities"`
	Users        []domain.UserSummary       `json:"users"`
	Posts        []domain.PostSummary       `json:"posts"`
	Notes        []domain.NoteSummary       `json:"notes"`
	Reviews      []domain.ReviewSummary     `json:"reviews"`
}

type globalSearchResponse struct {
	Query   string                `json:"query"`
	Results globalResultsResponse `json:"results"`
	Counts  globalCountsResponse  `json:"counts"`
}

type typedSearchResponse struct {
	Query   string `json:"query"`
	Type    string `json:"type"`
	Results any    `json:"results"`
	Total   int    `json:"total"`
}

// Global handles GET /search: federated search across all entity types, or a
// single type when the type parameter is given.
func (h *SearchHandler) Global(w http.ResponseWriter, r *http.Request) {
	q, ok := queryParam(r)
	if !ok {
		api.Error(w, http.StatusBadRequest, domain.ErrQueryTooShort.Message)
		return
	}

	limit := intParam(r, "limit")

	if typeParam := r.URL.Query().Get("type"); typeParam != "" {
		h.typedSearch(w, r, q, domain.EntityType(typeParam), limit)
		return
	}

	result, err := h.search.GlobalSearch(r.Context(), q, service.GlobalSearchOptions{
		Limit:  limit,
		UserID: middleware.GetUserID(r.Context()),
	})
	if err != nil {
		searchFailed(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, globalSearchResponse{
		Query: result.Query,
		Results: globalResultsResponse{
			Universities: result.Universities,
			Users:        result.Users,
			Posts:        result.Posts,
			Notes:        result.Notes,
			Reviews:      result.Reviews,
		},
		Counts: globalCountsResponse{
			Universities: result.Counts[domain.EntityUniversity],
			Users:        result.Counts[domain.EntityUser],
			Posts:        result.Counts[domain.EntityPost],
			Notes:        result.Counts[domain.EntityNote],
			Reviews:      result.Counts[domain.EntityReview],
			Total:        result.Total,
		},
	})
}

func (h *SearchHandler) typedSearch(w http.ResponseWriter, r *http.Request, q string, entityType domain.EntityType, limit int) {
	if !domain.ValidEntityType(entityType) {
		api.Error(w, http.StatusBadRequest, domain.ErrInvalidEntityType.Message)
		return
	}

	opts := service.SearchOptions{Page: 1, Limit: limit}
	var (
		results any
		total   int
		err     error
	)
	switch entityType {
	case domain.EntityUniversity:
		var rs *service.ResultSet[domain.UniversitySummary]
		if rs, err = h.search.SearchUniversities(r.Context(), q, opts); err == nil {
			results, total = rs.Results, rs.Total
		}
	case domain.EntityUser:
		var rs *service.ResultSet[domain.UserSummary]
		if rs, err = h.search.SearchUsers(r.Context(), q, opts); err == nil {
			results, total = rs.Results, rs.Total
		}
	case domain.EntityPost:
		var rs *service.ResultSet[domain.PostSummary]
		if rs, err = h.search.SearchPosts(r.Context(), q, service.PostFilters{}, opts); err == nil {
			results, total = rs.Results, rs.Total
		}
	case domain.EntityNote:
		var rs *service.ResultSet[domain.NoteSummary]
		if rs, err = h.search.SearchNotes(r.Context(), q, service.NoteFilters{}, opts); err == nil {
			results, total = rs.Results, rs.Total
		}
	case domain.EntityReview:
		var rs *service.ResultSet[domain.ReviewSummary]
		if rs, err = h.search.SearchReviews(r.Context(), q, service.ReviewFilters{}, opts); err == nil {
			results, total = rs.Results, rs.Total
		}
	}
	if err != nil {
		searchFailed(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, typedSearchResponse{
		Query:   q,
		Type:    string(entityType),
		Results: results,
		Total:   total,
	})
}

// Universities handles GET /search/universities.
func (h *SearchHandler) Universities(w http.ResponseWriter, r *http.Request) {
	q, ok := queryParam(r)
	if !ok {
		api.Error(w, http.StatusBadRequest, domain.ErrQueryTooShort.Message)
		return
	}

	rs, err := h.search.SearchUniversities(r.Context(), q, searchOptions(r))
	if err != nil {
		searchFailed(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{
		"query":        q,
		"universities": rs.Results,
		"pagination":   pageOf(r, rs.Total),
	})
}

// Users handles GET /search/users.
func (h *SearchHandler) Users(w http.ResponseWriter, r *http.Request) {
	q, ok := queryParam(r)
	if !ok {
		api.Error(w, http.StatusBadRequest, domain.ErrQueryTooShort.Message)
		return
	}

	rs, err := h.search.SearchUsers(r.Context(), q, searchOptions(r))
	if err != nil {
		searchFailed(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{
		"query":      q,
		"users":      rs.Results,
		"pagination": pageOf(r, rs.Total),
	})
}

// Posts handles GET /search/posts.
func (h *SearchHandler) Posts(w http.ResponseWriter, r *http.Request) {
	q, ok := queryParam(r)
	if !ok {
		api.Error(w, http.StatusBadRequest, domain.ErrQueryTooShort.Message)
		return
	}

	params := r.URL.Query()
	if c := params.Get("category"); c != "" && !domain.ValidPostCategory(domain.PostCategory(c)) {
		api.Error(w, http.StatusBadRequest, domain.ErrInvalidPostCategory.Message)
		return
	}
	filters := service.PostFilters{
		Category:     domain.PostCategory(params.Get("category")),
		UniversityID: params.Get("universityId"),
	}

	rs, err := h.search.SearchPosts(r.Context(), q, filters, searchOptions(r))
	if err != nil {
		searchFailed(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{
		"query":      q,
		"posts":      rs.Results,
		"pagination": pageOf(r, rs.Total),
	})
}

// Notes handles GET /search/notes.
func (h *SearchHandler) Notes(w http.ResponseWriter, r *http.Request) {
	q, ok := queryParam(r)
	if !ok {
		api.Error(w, http.StatusBadRequest, domain.ErrQueryTooShort.Message)
		return
	}

	params := r.URL.Query()
	if nt := params.Get("noteType"); nt != "" && !domain.ValidNoteType(domain.NoteType(nt)) {
		api.Error(w, http.StatusBadRequest, domain.ErrInvalidNoteType.Message)
		return
	}
	filters := service.NoteFilters{
		UniversityID: params.Get("universityId"),
		Subject:      params.Get("subject"),
		NoteType:     domain.NoteType(params.Get("noteType")),
	}

	rs, err := h.search.SearchNotes(r.Context(), q, filters, searchOptions(r))
	if err != nil {
		searchFailed(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{
		"query":      q,
		"notes":      rs.Results,
		"pagination": pageOf(r, rs.Total),
	})
}

// Reviews handles GET /search/reviews.
func (h *SearchHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	q, ok := queryParam(r)
	if !ok {
		api.Error(w, http.StatusBadRequest, domain.ErrQueryTooShort.Message)
		return
	}

	filters := service.ReviewFilters{
		UniversityID: r.URL.Query().Get("universityId"),
		MinRating:    intParam(r, "minRating"),
	}

	rs, err := h.search.SearchReviews(r.Context(), q, filters, searchOptions(r))
	if err != nil {
		searchFailed(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{
		"query":      q,
		"reviews":    rs.Results,
		"pagination": pageOf(r, rs.Total),
	})
}

// Suggestions handles GET /search/suggestions. Short queries return an empty
// list rather than an error.
func (h *SearchHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	suggestions, err := h.suggestions.GetSuggestions(r.Context(), q, intParam(r, "limit"))
	if err != nil {
		searchFailed(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

// Recent handles GET /search/recent. Requires identity.
func (h *SearchHandler) Recent(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	searches, err := h.history.GetRecentSearches(r.Context(), userID, intParam(r, "limit"))
	if err != nil {
		searchFailed(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{"searches": searches})
}

// ClearRecent handles DELETE /search/recent. Requires identity.
func (h *SearchHandler) ClearRecent(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.history.ClearSearchHistory(r.Context(), userID); err != nil {
		searchFailed(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{"message": "search history cleared"})
}

// Popular handles GET /search/popular.
func (h *SearchHandler) Popular(w http.ResponseWriter, r *http.Request) {
	searches, err := h.history.GetPopularSearches(r.Context(), intParam(r, "limit"))
	if err != nil {
		searchFailed(w, r, err)
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{"searches": searches})
}
