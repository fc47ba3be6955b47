package domain

import "time"

// PostCategory classifies forum posts.
type PostCategory string

const (
	PostCategoryGeneral  PostCategory = "general"
	PostCategoryAcademic PostCategory = "academic"
	PostCategoryHousing  PostCategory = "housing"
	PostCategorySocial   PostCategory = "social"
	PostCategoryEvents   PostCategory = "events"
)

// ValidPostCategory reports whether c is a known category.
func ValidPostCategory(c PostCategory) bool {
	switch c {
	case PostCategoryGeneral, PostCategoryAcademic, PostCategoryHousing,
		PostCategorySocial, PostCategoryEvents:
		return true
	}
	return false
}

// Post is a forum post scoped to a university community.
type Post struct {
	ID           string
	AuthorID     string
	UniversityID string
	Category     PostCategory
	Title        string
	Content      string
	Tags         []string
	LikeCount    int
	CommentCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PostSummary is the projection returned by search, list and trending
// endpoints. Author and university display fields are always populated.
type PostSummary struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Category       string    `json:"category"`
	Tags           []string  `json:"tags,omitempty"`
	AuthorID       string    `json:"authorId"`
	AuthorUsername string    `json:"authorUsername"`
	UniversityID   string    `json:"universityId,omitempty"`
	UniversityName string    `json:"universityName,omitempty"`
	LikeCount      int       `json:"likeCount"`
	CommentCount   int       `json:"commentCount"`
	CreatedAt      time.Time `json:"createdAt"`
	Score          float64   `json:"score,omitempty"`
}

// PostDetail is a full post with its display relations resolved.
type PostDetail struct {
	Post
	AuthorUsername string
	UniversityName string
}
