package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/pharma-crm/internal/entity"
	"github.com/xavierca1/pharma-crm/internal/infra/database"
	"github.com/xavierca1/pharma-crm/internal/infra/http/middleware"
	"github.com/xavierca1/pharma-crm/internal/usecase"
)

type CommentHandler struct {
	Comments *database.CommentRepository
	Leads    usecase.LeadRepositoryInterface
}

func NewCommentHandler(comments *database.CommentRepository, leads usecase.LeadRepositoryInterface) *CommentHandler {
	return &CommentHandler{Comments: comments, Leads: leads}
}

func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "id")

	comments, err := h.Comments.ListByLead(r.Context(), leadID)
	if err != nil {
		writeError(w, err)
		return
	}
	if comments == nil {
		comments = []*entity.Comment{}
	}
	writeJSON(w, http.StatusOK, comments)
}

func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.ActorID(r.Context())
	if !requireActor(w, actorID) {
		return
	}

	leadID := chi.URLParam(r, "id")
	if _, err := h.Leads.FindByID(r.Context(), leadID); err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "lead not found",
				"code":  usecase.CodeNotFound,
			})
			return
		}
		writeError(w, err)
		return
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Body) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "comment body is required",
			"code":  usecase.CodeValidation,
		})
		return
	}

	comment := entity.NewComment(leadID, actorID, req.Body)
	if err := h.Comments.Create(r.Context(), comment); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}
