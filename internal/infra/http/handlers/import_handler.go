package handlers

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/xavierca1/pharma-crm/internal/infra/http/middleware"
	"github.com/xavierca1/pharma-crm/internal/usecase"
)

type ImportHandler struct {
	ImportUC *usecase.BulkImportUseCase
}

func NewImportHandler(importUC *usecase.BulkImportUseCase) *ImportHandler {
	return &ImportHandler{ImportUC: importUC}
}

type importRequest struct {
	AssignTo string                  `json:"assign_to"`
	Leads    []usecase.LeadCandidate `json:"leads"`
}

// Handle (POST /leads/import) accepts either a JSON batch or a CSV file
// (Content-Type: text/csv, assignee via ?assign_to=). Both feed the same
// batch use case.
func (h *ImportHandler) Handle(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.ActorID(r.Context())
	if !requireActor(w, actorID) {
		return
	}

	var input usecase.BulkImportInput
	input.ActorID = actorID

	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/csv") {
		candidates, err := parseCSV(r.Body)
		if err != nil {
			http.Error(w, "invalid CSV: "+err.Error(), http.StatusBadRequest)
			return
		}
		input.AssignTo = r.URL.Query().Get("assign_to")
		input.Candidates = candidates
	} else {
		var req importRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		input.AssignTo = req.AssignTo
		input.Candidates = req.Leads
	}

	if len(input.Candidates) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "no lead records in request",
			"code":  usecase.CodeValidation,
		})
		return
	}

	output, err := h.ImportUC.Execute(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	middleware.RecordLeadsIngested(usecase.OriginImport, "created", output.Imported)
	middleware.RecordLeadsIngested(usecase.OriginImport, "clubbed", output.Clubbed)
	middleware.RecordLeadsIngested(usecase.OriginImport, "skipped", output.Skipped)
	writeJSON(w, http.StatusOK, output)
}

// parseCSV maps columns by header name, so column order in the file does
// not matter. Unknown headers are ignored.
func parseCSV(body io.Reader) ([]usecase.LeadCandidate, error) {
	reader := csv.NewReader(body)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	index := map[string]int{}
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	field := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var candidates []usecase.LeadCandidate
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, usecase.LeadCandidate{
			Name:        field(record, "name"),
			Subject:     field(record, "subject"),
			Message:     field(record, "message"),
			MobileNo:    field(record, "mobile_no"),
			Email:       field(record, "email"),
			AltMobileNo: field(record, "alt_mobile_no"),
			AltEmail:    field(record, "alt_email"),
			State:       field(record, "state"),
			District:    field(record, "district"),
			Station:     field(record, "station"),
			Pincode:     field(record, "pincode"),
			AgencyName:  field(record, "agency_name"),
			Source:      field(record, "source"),
		})
	}
	return candidates, nil
}
