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

type NoteService interface {
	Create(ctx context.Context, input service.CreateNoteInput) (*domain.Note, error)
	Get(ctx context.Context, id string) (*domain.NoteDetail, error)
	List(ctx context.Context, f service.NoteFilters, opts service.SearchOptions) (*service.ResultSet[domain.NoteSummary], error)
}

type NoteHandler struct {
	svc NoteService
}

func NewNoteHandler(svc NoteService) *NoteHandler {
	return &NoteHandler{svc: svc}
}

type CreateNoteRequest struct {
	UniversityID string `json:"universityId"`
	Subject      string `json:"subject"`
	NoteType     string `json:"noteType"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	CourseCode   string `json:"courseCode"`
}

type NoteResponse struct {
	ID               string `json:"id"`
	UploaderID       string `json:"uploaderId"`
	UploaderUsername string `json:"uploaderUsername,omitempty"`
	UniversityID     string `json:"universityId"`
	UniversityName   string `json:"universityName,omitempty"`
	Subject          string `json:"subject"`
	NoteType         string `json:"noteType"`
	Title            string `json:"title"`
	Description      string `json:"description,omitempty"`
	CourseCode       string `json:"courseCode,omitempty"`
	DownloadCount    int    `json:"downloadCount"`
	CreatedAt        string `json:"createdAt"`
}

func noteToResponse(n *domain.Note, uploaderUsername, universityName string) *NoteResponse {
	return &NoteResponse{
		ID:               n.ID,
		UploaderID:       n.UploaderID,
		UploaderUsername: uploaderUsername,
		UniversityID:     n.UniversityID,
		UniversityName:   universityName,
		Subject:          n.Subject,
		NoteType:         string(n.NoteType),
		Title:            n.Title,
		Description:      n.Description,
		CourseCode:       n.CourseCode,
		DownloadCount:    n.DownloadCount,
		CreatedAt:        n.CreatedAt.Format(time.RFC3339),
	}
}

// Create handles POST /notes.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	note, err := h.svc.Create(r.Context(), service.CreateNoteInput{
		UploaderID:   userID,
		UniversityID: req.UniversityID,
		Subject:      req.Subject,
		NoteType:     domain.NoteType(req.NoteType),
		Title:        req.Title,
		Description:  req.Description,
		CourseCode:   req.CourseCode,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, noteToResponse(note, "", ""))
}

// Get handles GET /notes/{id}.
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	note, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, noteToResponse(&note.Note, note.UploaderUsername, note.UniversityName))
}

// List handles GET /notes.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	if nt := params.Get("noteType"); nt != "" && !domain.ValidNoteType(domain.NoteType(nt)) {
		api.Error(w, http.StatusBadRequest, domain.ErrInvalidNoteType.Message)
		return
	}

	rs, err := h.svc.List(r.Context(), service.NoteFilters{
		UniversityID: params.Get("universityId"),
		Subject:      params.Get("subject"),
		NoteType:     domain.NoteType(params.Get("noteType")),
	}, searchOptions(r))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	page, limit := pagination.Clamp(intParam(r, "page"), intParam(r, "limit"), pagination.DefaultLimit)
	api.JSON(w, http.StatusOK, map[string]any{
		"notes":      rs.Results,
		"pagination": pagination.New(page, limit, rs.Total),
	})
}
