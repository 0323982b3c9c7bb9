package handlers

import (
	"net/http"

	"github.com/xavierca1/pharma-crm/internal/infra/http/middleware"
	"github.com/xavierca1/pharma-crm/internal/usecase"
)

type DedupHandler struct {
	SweepUC *usecase.RunDeduplicationUseCase
}

func NewDedupHandler(sweepUC *usecase.RunDeduplicationUseCase) *DedupHandler {
	return &DedupHandler{SweepUC: sweepUC}
}

// Handle (POST /admin/deduplicate) runs the global sweep.
func (h *DedupHandler) Handle(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.ActorID(r.Context())
	if !requireActor(w, actorID) {
		return
	}

	output, err := h.SweepUC.Execute(r.Context(), actorID)
	if err != nil {
		writeError(w, err)
		return
	}

	middleware.RecordDedupSweep(output.MergedCount, output.DeletedCount)
	writeJSON(w, http.StatusOK, output)
}
