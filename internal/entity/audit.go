package entity

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions
const (
	ActionCreateLead        = "CREATE_LEAD"
	ActionClubDuplicateLead = "CLUB_DUPLICATE_LEAD"
	ActionRunDeduplication  = "RUN_DEDUPLICATION"
	ActionBulkImportLeads   = "BULK_IMPORT_LEADS"
	ActionUpdateLeadDetails = "UPDATE_LEAD_DETAILS"
	ActionUpdateLeadStatus  = "UPDATE_LEAD_STATUS"
	ActionAssignLead        = "ASSIGN_LEAD"
	ActionDeleteLead        = "DELETE_LEAD"
)

// AuditLogEntry is append-only. Nothing in the system mutates or deletes one.
type AuditLogEntry struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actor_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	LeadID    string    `json:"lead_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewAuditLogEntry(actorID, action, details, leadID string) *AuditLogEntry {
	return &AuditLogEntry{
		ID:        uuid.New().String(),
		ActorID:   actorID,
		Action:    action,
		Details:   details,
		LeadID:    leadID,
		CreatedAt: time.Now(),
	}
}
