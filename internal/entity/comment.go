package entity

import (
	"time"

	"github.com/google/uuid"
)

// Comment belongs to exactly one lead. Ownership moves to the primary when
// its lead loses a merge; comments themselves are never deleted.
type Comment struct {
	ID        string    `json:"id"`
	LeadID    string    `json:"lead_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func NewComment(leadID, authorID, body string) *Comment {
	return &Comment{
		ID:        uuid.New().String(),
		LeadID:    leadID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: time.Now(),
	}
}
