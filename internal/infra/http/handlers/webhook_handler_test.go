package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/pharma-crm/internal/usecase"
)

// stubIngest records what reached the merge engine and scripts the outcome
// per mobile number.
type stubIngest struct {
	inputs   []usecase.IngestLeadInput
	outcomes map[string]*usecase.IngestLeadOutput
	err      error
}

func (s *stubIngest) Execute(ctx context.Context, input usecase.IngestLeadInput) (*usecase.IngestLeadOutput, error) {
	s.inputs = append(s.inputs, input)
	if s.err != nil {
		return nil, s.err
	}
	if out, ok := s.outcomes[input.MobileNo]; ok {
		return out, nil
	}
	return &usecase.IngestLeadOutput{LeadID: "lead-1", Created: true}, nil
}

func TestWebhookHandlesMixedBatch(t *testing.T) {
	ingest := &stubIngest{outcomes: map[string]*usecase.IngestLeadOutput{
		"9000000002": {LeadID: "lead-2", Clubbed: true},
	}}
	h := NewWebhookHandler(ingest)

	body := `[
		{"SENDERNAME":"A","SENDERMOBILE":"9000000001"},
		{"mobile":"9000000002","subject":"Repeat"},
		{"name":"No Contact Keys"}
	]`
	req := httptest.NewRequest(http.MethodPost, "/webhook/leads", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Handle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp webhookResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 3, resp.Received)
	assert.Equal(t, 1, resp.Created)
	assert.Equal(t, 1, resp.Clubbed)
	assert.Equal(t, 1, resp.Skipped)

	// Only the two keyed records reached the engine, both tagged webhook.
	assert.Len(t, ingest.inputs, 2)
	for _, input := range ingest.inputs {
		assert.Equal(t, usecase.OriginWebhook, input.Origin)
	}
}

func TestWebhookSingleObjectWithTrailingComma(t *testing.T) {
	ingest := &stubIngest{}
	h := NewWebhookHandler(ingest)

	req := httptest.NewRequest(http.MethodPost, "/webhook/leads",
		strings.NewReader(`{"name":"Sloppy","mobile":"9000000003",}`))
	rec := httptest.NewRecorder()

	h.Handle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, ingest.inputs, 1)
	assert.Equal(t, "9000000003", ingest.inputs[0].MobileNo)
}

func TestWebhookRejectsBadToken(t *testing.T) {
	t.Setenv("WEBHOOK_TOKEN", "s3cret")

	h := NewWebhookHandler(&stubIngest{})
	req := httptest.NewRequest(http.MethodPost, "/webhook/leads", strings.NewReader(`{}`))
	req.Header.Set("X-Webhook-Token", "wrong")
	rec := httptest.NewRecorder()

	h.Handle(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// A structurally malformed record must never abort the delivery: its good
// siblings still reach the merge engine and the broken one is counted.
func TestWebhookMalformedRecordDoesNotAbortBatch(t *testing.T) {
	ingest := &stubIngest{}
	h := NewWebhookHandler(ingest)

	body := `[{"name":"Good","mobile":"9000000001"},{"broken":}]`
	req := httptest.NewRequest(http.MethodPost, "/webhook/leads", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Handle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, ingest.inputs, 1)
	assert.Equal(t, "9000000001", ingest.inputs[0].MobileNo)

	var resp webhookResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Received)
	assert.Equal(t, 1, resp.Created)
	assert.Equal(t, 1, resp.Skipped)
}

func TestWebhookOpaquePayloadCountsAsSkipped(t *testing.T) {
	ingest := &stubIngest{}
	h := NewWebhookHandler(ingest)

	req := httptest.NewRequest(http.MethodPost, "/webhook/leads", strings.NewReader(`garbage`))
	rec := httptest.NewRecorder()

	h.Handle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, ingest.inputs)

	var resp webhookResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Received)
	assert.Equal(t, 1, resp.Skipped)
}
