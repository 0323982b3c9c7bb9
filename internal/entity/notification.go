package entity

import (
	"time"

	"github.com/google/uuid"
)

// Notification types
const (
	NotifyLeadAssigned     = "lead_assigned"
	NotifyLeadReassigned   = "lead_reassigned"
	NotifyDuplicateClubbed = "duplicate_clubbed"
	NotifyNewLead          = "new_lead"
	NotifyLeadsImported    = "leads_imported"
	NotifyFollowupDue      = "followup_due"
)

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	LeadID    string    `json:"lead_id,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func NewNotification(userID, title, message, ntype, leadID string) *Notification {
	return &Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      ntype,
		LeadID:    leadID,
		CreatedAt: time.Now(),
	}
}
