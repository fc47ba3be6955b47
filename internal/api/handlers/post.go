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

type PostService interface {
	Create(ctx context.Context, input service.CreatePostInput) (*domain.Post, error)
	Get(ctx context.Context, id string) (*domain.PostDetail, error)
	List(ctx context.Context, f service.PostFilters, opts service.SearchOptions) (*service.ResultSet[domain.PostSummary], error)
	Trending(ctx context.Context, limit int) ([]domain.PostSummary, error)
}

type PostHandler struct {
	svc PostService
}

func NewPostHandler(svc PostService) *PostHandler {
	return &PostHandler{svc: svc}
}

type CreatePostRequest struct {
	UniversityID string   `json:"universityId"`
	Category     string   `json:"category"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Tags         []string `json:"tags"`
}

type PostResponse struct {
	ID             string   `json:"id"`
	AuthorID       string   `json:"authorId"`
	AuthorUsername string   `json:"authorUsername,omitempty"`
	UniversityID   string   `json:"universityId,omitempty"`
	UniversityName string   `json:"universityName,omitempty"`
	Category       string   `json:"category"`
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	Tags           []string `json:"tags,omitempty"`
	LikeCount      int      `json:"likeCount"`
	CommentCount   int      `json:"commentCount"`
	CreatedAt      string   `json:"createdAt"`
}

func postToResponse(p *domain.Post, authorUsername, universityName string) *PostResponse {
	return &PostResponse{
		ID:             p.ID,
		AuthorID:       p.AuthorID,
		AuthorUsername: authorUsername,
		UniversityID:   p.UniversityID,
		UniversityName: universityName,
		Category:       string(p.Category),
		Title:          p.Title,
		Content:        p.Content,
		Tags:           p.Tags,
		LikeCount:      p.LikeCount,
		CommentCount:   p.CommentCount,
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
	}
}

// Create handles POST /posts.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post, err := h.svc.Create(r.Context(), service.CreatePostInput{
		AuthorID:     userID,
		UniversityID: req.UniversityID,
		Category:     domain.PostCategory(req.Category),
		Title:        req.Title,
		Content:      req.Content,
		Tags:         req.Tags,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, postToResponse(post, "", ""))
}

// Get handles GET /posts/{id}.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, postToResponse(&post.Post, post.AuthorUsername, post.UniversityName))
}

// List handles GET /posts.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	if c := params.Get("category"); c != "" && !domain.ValidPostCategory(domain.PostCategory(c)) {
		api.Error(w, http.StatusBadRequest, domain.ErrInvalidPostCategory.Message)
		return
	}

	rs, err := h.svc.List(r.Context(), service.PostFilters{
		Category:     domain.PostCategory(params.Get("category")),
		UniversityID: params.Get("universityId"),
	}, searchOptions(r))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	page, limit := pagination.Clamp(intParam(r, "page"), intParam(r, "limit"), pagination.DefaultLimit)
	api.JSON(w, http.StatusOK, map[string]any{
		"posts":      rs.Results,
		"pagination": pagination.New(page, limit, rs.Total),
	})
}

// Trending handles GET /posts/trending.
func (h *PostHandler) Trending(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.Trending(r.Context(), intParam(r, "limit"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{"posts": posts})
}
