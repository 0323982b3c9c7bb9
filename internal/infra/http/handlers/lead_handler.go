package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/pharma-crm/internal/entity"
	"github.com/xavierca1/pharma-crm/internal/infra/http/middleware"
	"github.com/xavierca1/pharma-crm/internal/usecase"
)

type LeadHandler struct {
	IngestUC *usecase.IngestLeadUseCase
	UpdateUC *usecase.UpdateLeadDetailsUseCase
	StatusUC *usecase.UpdateLeadStatusUseCase
	AssignUC *usecase.AssignLeadUseCase
	Leads    usecase.LeadRepositoryInterface
	Users    usecase.UserDirectoryInterface
	Audit    usecase.AuditLogSink
}

func NewLeadHandler(
	ingestUC *usecase.IngestLeadUseCase,
	updateUC *usecase.UpdateLeadDetailsUseCase,
	statusUC *usecase.UpdateLeadStatusUseCase,
	assignUC *usecase.AssignLeadUseCase,
	leads usecase.LeadRepositoryInterface,
	users usecase.UserDirectoryInterface,
	audit usecase.AuditLogSink,
) *LeadHandler {
	return &LeadHandler{
		IngestUC: ingestUC,
		UpdateUC: updateUC,
		StatusUC: statusUC,
		AssignUC: assignUC,
		Leads:    leads,
		Users:    users,
		Audit:    audit,
	}
}

// Create (POST /leads) is the manual entry point: stricter validation than
// the machine paths, then straight into the merge engine.
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.ActorID(r.Context())
	if !requireActor(w, actorID) {
		return
	}

	var input usecase.IngestLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if errs := usecase.ValidateLeadCandidate(input); len(errs) > 0 {
		details := make([]map[string]string, 0, len(errs))
		for _, ve := range errs {
			details = append(details, map[string]string{"field": ve.Field, "message": ve.Message})
		}
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"code":   usecase.CodeValidation,
			"fields": details,
		})
		return
	}

	input.ActorID = actorID
	input.Origin = usecase.OriginManual

	output, err := h.IngestUC.Execute(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	middleware.RecordLeadIngested(usecase.OriginManual, outcomeOf(output))

	status := http.StatusCreated
	if !output.Created {
		status = http.StatusOK
	}
	writeJSON(w, status, output)
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "id")

	lead, err := h.Leads.FindByID(r.Context(), leadID)
	if err != nil {
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

	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	leads, err := h.Leads.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if leads == nil {
		leads = []*entity.Lead{}
	}
	writeJSON(w, http.StatusOK, leads)
}

func (h *LeadHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.ActorID(r.Context())
	if !requireActor(w, actorID) {
		return
	}

	var input usecase.UpdateLeadDetailsInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	input.ActorID = actorID
	input.LeadID = chi.URLParam(r, "id")

	lead, err := h.UpdateUC.Execute(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.ActorID(r.Context())
	if !requireActor(w, actorID) {
		return
	}

	var input usecase.UpdateLeadStatusInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	input.ActorID = actorID
	input.LeadID = chi.URLParam(r, "id")

	lead, err := h.StatusUC.Execute(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) Assign(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.ActorID(r.Context())
	if !requireActor(w, actorID) {
		return
	}

	var input usecase.AssignLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	input.ActorID = actorID
	input.LeadID = chi.URLParam(r, "id")

	lead, err := h.AssignUC.Execute(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// Delete (DELETE /leads/{id}) is admin-only. Managers club and reassign;
// only admins remove records outright.
func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.ActorID(r.Context())
	if !requireActor(w, actorID) {
		return
	}

	actor, err := h.Users.FindByID(r.Context(), actorID)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "acting user not found",
				"code":  usecase.CodeActorUnknown,
			})
			return
		}
		writeError(w, err)
		return
	}
	if actor.Role != entity.RoleAdmin {
		writeJSON(w, http.StatusForbidden, map[string]string{
			"error": "only admins may delete leads",
			"code":  usecase.CodeUnauthorized,
		})
		return
	}

	leadID := chi.URLParam(r, "id")
	if err := h.Leads.Delete(r.Context(), leadID); err != nil {
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

	effects := &usecase.SideEffectRunner{}
	effects.Add("audit delete", func(ctx context.Context) error {
		return h.Audit.Append(ctx, actorID, entity.ActionDeleteLead,
			fmt.Sprintf("deleted lead %s", leadID), leadID)
	})
	effects.Flush(r.Context())

	w.WriteHeader(http.StatusNoContent)
}

func outcomeOf(output *usecase.IngestLeadOutput) string {
	switch {
	case output.Created:
		return "created"
	case output.Clubbed:
		return "clubbed"
	default:
		return "skipped"
	}
}
