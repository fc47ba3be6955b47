package domain

import "time"

// University is a reference entity; the catalogue is seeded, not user-created.
type University struct {
	ID          string
	Name        string
	Country     string
	City        string
	Website     string
	Description string
	AvgRating   float64
	ReviewCount int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UniversitySummary is the projection returned by search and list endpoints.
// Score is only set when a ranked search path produced the row.
type UniversitySummary struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Country     string  `json:"country"`
	City        string  `json:"city"`
	AvgRating   float64 `json:"avgRating"`
	ReviewCount int     `json:"reviewCount"`
	Score       float64 `json:"score,omitempty"`
}
