package service

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/campushub/campushub/internal/domain"
)

// DefaultSuggestionLimit is the merged suggestion count returned when the
// caller does not specify one.
const DefaultSuggestionLimit = 8

// MinQueryLength is the shortest query accepted by search, suggestions and
// history recording, measured after trimming.
const MinQueryLength = 2

// SuggestionRepository exposes the prefix-oriented lookups behind
// autocomplete. The fuzzy variants require the search migration (pg_trgm);
// the prefix variants are plain anchored scans.
type SuggestionRepository interface {
	UniversityNamesFuzzy(ctx context.Context, query string, limit int) ([]string, error)
	NoteSubjectsFuzzy(ctx context.Context, query string, limit int) ([]string, error)
	UniversityNamesPrefix(ctx context.Context, query string, limit int) ([]string, error)
	NoteSubjectsPrefix(ctx context.Context, query string, limit int) ([]string, error)
	PostTagsPrefix(ctx context.Context, query string, limit int) ([]string, error)
}

// SuggestionService produces autocomplete entries. Distinct from full-text
// search: lookups are prefix-anchored, not token-based.
type SuggestionService struct {
	prober *CapabilityProber
	repo   SuggestionRepository
}

func NewSuggestionService(prober *CapabilityProber, repo SuggestionRepository) *SuggestionService {
	return &SuggestionService{prober: prober, repo: repo}
}

// GetSuggestions returns up to limit suggestions for the given prefix.
// Queries shorter than MinQueryLength return an empty slice without touching
// the backend.
func (s *SuggestionService) GetSuggestions(ctx context.Context, query string, limit int) ([]domain.Suggestion, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinQueryLength {
		return []domain.Suggestion{}, nil
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	if s.prober.EnsureCapability(ctx) == TierAdvanced {
		suggestions, err := s.fuzzySuggestions(ctx, query, limit)
		if err == nil {
			return suggestions, nil
		}
		log.Printf("suggestions: fuzzy lookup failed, degrading to prefix scan: %v", err)
	}

	return s.prefixSuggestions(ctx, query, limit)
}

func (s *SuggestionService) fuzzySuggestions(ctx context.Context, query string, limit int) ([]domain.Suggestion, error) {
	names, err := s.repo.UniversityNamesFuzzy(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	subjects, err := s.repo.NoteSubjectsFuzzy(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	suggestions := make([]domain.Suggestion, 0, len(names)+len(subjects))
	for _, n := range names {
		suggestions = append(suggestions, domain.Suggestion{Type: domain.SuggestionUniversity, Text: n})
	}
	for _, sub := range subjects {
		suggestions = append(suggestions, domain.Suggestion{Type: domain.SuggestionSubject, Text: sub})
	}
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}

func (s *SuggestionService) prefixSuggestions(ctx context.Context, query string, limit int) ([]domain.Suggestion, error) {
	names, err := s.repo.UniversityNamesPrefix(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	subjects, err := s.repo.NoteSubjectsPrefix(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	tags, err := s.repo.PostTagsPrefix(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	suggestions := make([]domain.Suggestion, 0, len(names)+len(subjects)+len(tags))
	for _, n := range names {
		suggestions = append(suggestions, domain.Suggestion{Type: domain.SuggestionUniversity, Text: n})
	}
	for _, sub := range subjects {
		suggestions = append(suggestions, domain.Suggestion{Type: domain.SuggestionSubject, Text: sub})
	}
	for _, t := range tags {
		suggestions = append(suggestions, domain.Suggestion{Type: domain.SuggestionTag, Text: t})
	}

	// The three sources are queried independently and concatenated without a
	// shared relevance signal, so prefix matches on the raw query go first
	// and remaining ties break alphabetically.
	lowered := strings.ToLower(query)
	sort.SliceStable(suggestions, func(i, j int) bool {
		pi := strings.HasPrefix(strings.ToLower(suggestions[i].Text), lowered)
		pj := strings.HasPrefix(strings.ToLower(suggestions[j].Text), lowered)
		if pi != pj {
			return pi
		}
		return suggestions[i].Text < suggestions[j].Text
	})

	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}
