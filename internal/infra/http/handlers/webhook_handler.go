package handlers

import (
	"io"
	"log"
	"net/http"
	"os"

	"github.com/xavierca1/pharma-crm/internal/infra/http/middleware"
	"github.com/xavierca1/pharma-crm/internal/infra/integration/leadfeed"
	"github.com/xavierca1/pharma-crm/internal/usecase"
)

type WebhookHandler struct {
	Ingest usecase.IngestExecutor
}

func NewWebhookHandler(ingest usecase.IngestExecutor) *WebhookHandler {
	return &WebhookHandler{Ingest: ingest}
}

type webhookResponse struct {
	Received int `json:"received"`
	Created  int `json:"created"`
	Clubbed  int `json:"clubbed"`
	Skipped  int `json:"skipped"`
}

// Handle (POST /webhook/leads) accepts the lead portal's enquiry payload:
// a single object or an array, with the portal's quirks (field aliases,
// trailing commas, broken sibling records) absorbed by the leadfeed decoder.
// Always answers 200 so the portal does not retry endlessly; unusable
// records are counted as skipped, never rejected wholesale.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if token := os.Getenv("WEBHOOK_TOKEN"); token != "" {
		if r.Header.Get("X-Webhook-Token") != token {
			http.Error(w, "invalid webhook token", http.StatusUnauthorized)
			return
		}
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	raws, unparsable := leadfeed.DecodeEnquiries(body)
	if unparsable > 0 {
		log.Printf("⚠️ [WEBHOOK] %d unparsable record(s) in delivery", unparsable)
	}

	resp := webhookResponse{Received: len(raws) + unparsable, Skipped: unparsable}

	for _, raw := range raws {
		enq, ok := leadfeed.MapEnquiry(raw)
		if !ok {
			resp.Skipped++
			continue
		}

		res, ierr := h.Ingest.Execute(r.Context(), usecase.IngestLeadInput{
			Name:       enq.Name,
			Subject:    enq.Subject,
			Message:    enq.Message,
			MobileNo:   enq.MobileNo,
			Email:      enq.Email,
			State:      enq.State,
			District:   enq.District,
			Station:    enq.Station,
			Pincode:    enq.Pincode,
			AgencyName: enq.AgencyName,
			Source:     enq.Source,
			Origin:     usecase.OriginWebhook,
		})
		if ierr != nil {
			// One bad enquiry never fails the whole delivery.
			log.Printf("⚠️ [WEBHOOK] enquiry rejected: %v", ierr)
			resp.Skipped++
			continue
		}

		switch {
		case res.Created:
			resp.Created++
		case res.Clubbed:
			resp.Clubbed++
		default:
			resp.Skipped++
		}
	}

	middleware.RecordLeadsIngested(usecase.OriginWebhook, "created", resp.Created)
	middleware.RecordLeadsIngested(usecase.OriginWebhook, "clubbed", resp.Clubbed)
	middleware.RecordLeadsIngested(usecase.OriginWebhook, "skipped", resp.Skipped)

	writeJSON(w, http.StatusOK, resp)
}
