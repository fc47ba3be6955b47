package domain

import "time"

// Review is a student review of a university. One review per
// (author, university) pair.
type Review struct {
	ID           string
	AuthorID     string
	UniversityID string
	Rating       int
	Title        string
	Content      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ReviewSummary is the projection returned by search and list endpoints.
type ReviewSummary struct {
	ID             string    `json:"id"`
	Title          string    `json:"title,omitempty"`
	Content        string    `json:"content"`
	Rating         int       `json:"rating"`
	AuthorID       string    `json:"authorId"`
	AuthorUsername string    `json:"authorUsername"`
	UniversityID   string    `json:"universityId"`
	UniversityName string    `json:"universityName"`
	CreatedAt      time.Time `json:"createdAt"`
	Score          float64   `json:"score,omitempty"`
}
