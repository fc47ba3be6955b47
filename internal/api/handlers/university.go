package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/campushub/campushub/internal/api"
	"github.com/campushub/campushub/internal/domain"
	"github.com/campushub/campushub/internal/pagination"
)

type UniversityRepository interface {
	GetByID(ctx context.Context, id string) (*domain.University, error)
	List(ctx context.Context, country string, limit, offset int) ([]domain.UniversitySummary, int, error)
}

// UniversityHandler serves the seeded university catalogue. Reads go straight
// to the repository; there is no business logic between.
type UniversityHandler struct {
	repo UniversityRepository
}

func NewUniversityHandler(repo UniversityRepository) *UniversityHandler {
	return &UniversityHandler{repo: repo}
}

type UniversityResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Country     string  `json:"country"`
	City        string  `json:"city"`
	Website     string  `json:"website,omitempty"`
	Description string  `json:"description,omitempty"`
	AvgRating   float64 `json:"avgRating"`
	ReviewCount int     `json:"reviewCount"`
	CreatedAt   string  `json:"createdAt"`
}

func universityToResponse(u *domain.University) *UniversityResponse {
	return &UniversityResponse{
		ID:          u.ID,
		Name:        u.Name,
		Country:     u.Country,
		City:        u.City,
		Website:     u.Website,
		Description: u.Description,
		AvgRating:   u.AvgRating,
		ReviewCount: u.ReviewCount,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
	}
}

// List handles GET /universities.
func (h *UniversityHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination.Clamp(intParam(r, "page"), intParam(r, "limit"), pagination.DefaultLimit)

	universities, total, err := h.repo.List(r.Context(), r.URL.Query().Get("country"), limit, pagination.Offset(page, limit))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{
		"universities": universities,
		"pagination":   pagination.New(page, limit, total),
	})
}

// Get handles GET /universities/{id}.
func (h *UniversityHandler) Get(w http.ResponseWriter, r *http.Request) {
	university, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, universityToResponse(university))
}
