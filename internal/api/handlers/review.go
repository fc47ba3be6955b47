package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/campushub/campushub/internal/api"
	"github.com/campushub/campushub/internal/api/middleware"
	"github.com/campushub/campushub/internal/domain"
	"github.com/campushub/campushub/internal/pagination"
	"github.com/campushub/campushub/internal/service"
)

type ReviewService interface {
	Create(ctx context.Context, input service.CreateReviewInput) (*domain.Review, error)
	ListByUniversity(ctx context.Context, universityID string, opts service.SearchOptions) (*service.ResultSet[domain.ReviewSummary], error)
}

type ReviewHandler struct {
	svc ReviewService
}

func NewReviewHandler(svc ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

type CreateReviewRequest struct {
	UniversityID string `json:"universityId"`
	Rating       int    `json:"rating"`
	Title        string `json:"title"`
	Content      string `json:"content"`
}

type ReviewResponse struct {
	ID           string `json:"id"`
	AuthorID     string `json:"authorId"`
	UniversityID string `json:"universityId"`
	Rating       int    `json:"rating"`
	Title        string `json:"title,omitempty"`
	Content      string `json:"content"`
	CreatedAt    string `json:"createdAt"`
}

func reviewToResponse(rev *domain.Review) *ReviewResponse {
	return &ReviewResponse{
		ID:           rev.ID,
		AuthorID:     rev.AuthorID,
		UniversityID: rev.UniversityID,
		Rating:       rev.Rating,
		Title:        rev.Title,
		Content:      rev.Content,
		CreatedAt:    rev.CreatedAt.Format(time.RFC3339),
	}
}

// Create handles POST /reviews.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	review, err := h.svc.Create(r.Context(), service.CreateReviewInput{
		AuthorID:     userID,
		UniversityID: req.UniversityID,
		Rating:       req.Rating,
		Title:        req.Title,
		Content:      req.Content,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, reviewToResponse(review))
}

// ListByUniversity handles GET /universities/{id}/reviews.
func (h *ReviewHandler) ListByUniversity(w http.ResponseWriter, r *http.Request) {
	rs, err := h.svc.ListByUniversity(r.Context(), chi.URLParam(r, "id"), searchOptions(r))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	page, limit := pagination.Clamp(intParam(r, "page"), intParam(r, "limit"), pagination.DefaultLimit)
	api.JSON(w, http.StatusOK, map[string]any{
		"reviews":    rs.Results,
		"pagination": pagination.New(page, limit, rs.Total),
	})
}
