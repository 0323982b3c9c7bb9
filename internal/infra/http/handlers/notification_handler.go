package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/pharma-crm/internal/entity"
	"github.com/xavierca1/pharma-crm/internal/infra/database"
	"github.com/xavierca1/pharma-crm/internal/infra/http/middleware"
	"github.com/xavierca1/pharma-crm/internal/usecase"
)

type NotificationHandler struct {
	Notifications *database.NotificationRepository
}

func NewNotificationHandler(notifications *database.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{Notifications: notifications}
}

// List (GET /notifications?unread=true) returns the caller's own
// notifications, newest first.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.ActorID(r.Context())
	if !requireActor(w, actorID) {
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifications, err := h.Notifications.ListByUser(r.Context(), actorID, unreadOnly)
	if err != nil {
		writeError(w, err)
		return
	}
	if notifications == nil {
		notifications = []*entity.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

// MarkRead (POST /notifications/{id}/read) only touches the caller's own rows.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.ActorID(r.Context())
	if !requireActor(w, actorID) {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.Notifications.MarkRead(r.Context(), id, actorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "notification not found",
				"code":  usecase.CodeNotFound,
			})
			return
		}
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
