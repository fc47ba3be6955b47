package domain

// EntityType identifies one of the searchable entity kinds.
type EntityType string

const (
	EntityUniversity EntityType = "university"
	EntityUser       EntityType = "user"
	EntityPost       EntityType = "post"
	EntityNote       EntityType = "note"
	EntityReview     EntityType = "review"
)

// ValidEntityType reports whether t names a searchable entity.
func ValidEntityType(t EntityType) bool {
	switch t {
	case EntityUniversity, EntityUser, EntityPost, EntityNote, EntityReview:
		return true
	}
	return false
}

// SortBy selects the result ordering for paginated entity search.
type SortBy string

const (
	SortByRelevance SortBy = "relevance"
	SortByNewest    SortBy = "newest"
	SortByName      SortBy = "name"
	SortByRating    SortBy = "rating"
)

// Suggestion is a single autocomplete entry.
type Suggestion struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

const (
	SuggestionUniversity = "university"
	SuggestionSubject    = "subject"
	SuggestionTag        = "tag"
)
