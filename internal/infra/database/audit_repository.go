package database

import (
	"context"
	"database/sql"

	"github.com/xavierca1/pharma-crm/internal/entity"
)

// AuditLogRepository only ever inserts. There is no update or delete here on
// purpose: the log is append-only.
type AuditLogRepository struct {
	DB *sql.DB
}

func NewAuditLogRepository(db *sql.DB) *AuditLogRepository {
	return &AuditLogRepository{DB: db}
}

// Append implements usecase.AuditLogSink.
func (r *AuditLogRepository) Append(ctx context.Context, actorID, action, details, leadID string) error {
	e := entity.NewAuditLogEntry(actorID, action, details, leadID)

	query := `
		INSERT INTO audit_log (id, actor_id, action, details, lead_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.DB.ExecContext(ctx, query,
		e.ID, e.ActorID, e.Action, e.Details, nullString(e.LeadID), e.CreatedAt)
	return err
}

func (r *AuditLogRepository) ListByLead(ctx context.Context, leadID string) ([]*entity.AuditLogEntry, error) {
	query := `
		SELECT id, actor_id, action, details, COALESCE(lead_id, ''), created_at
		FROM audit_log WHERE lead_id = $1 ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*entity.AuditLogEntry
	for rows.Next() {
		var e entity.AuditLogEntry
		err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Details, &e.LeadID, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
