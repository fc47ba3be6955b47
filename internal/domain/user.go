package domain

import "time"

// User is a platform member. Authentication is handled by an external
// identity provider; this record only carries profile data.
type User struct {
	ID           string
	Username     string
	DisplayName  string
	UniversityID string
	Department   string
	Bio          string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserSummary is the public projection of a user.
type UserSummary struct {
	ID             string  `json:"id"`
	Username       string  `json:"username"`
	DisplayName    string  `json:"displayName"`
	UniversityID   string  `json:"universityId,omitempty"`
	UniversityName string  `json:"universityName,omitempty"`
	Department     string  `json:"department,omitempty"`
	Score          float64 `json:"score,omitempty"`
}
