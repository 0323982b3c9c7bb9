package database

import (
	"context"
	"database/sql"

	"github.com/xavierca1/pharma-crm/internal/entity"
)

type CommentRepository struct {
	DB *sql.DB
}

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{DB: db}
}

func (r *CommentRepository) Create(ctx context.Context, c *entity.Comment) error {
	query := `
		INSERT INTO comments (id, lead_id, author_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.DB.ExecContext(ctx, query, c.ID, c.LeadID, c.AuthorID, c.Body, c.CreatedAt)
	return err
}

func (r *CommentRepository) ListByLead(ctx context.Context, leadID string) ([]*entity.Comment, error) {
	query := `
		SELECT id, lead_id, author_id, body, created_at
		FROM comments WHERE lead_id = $1 ORDER BY created_at
	`
	rows, err := r.DB.QueryContext(ctx, query, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*entity.Comment
	for rows.Next() {
		var c entity.Comment
		if err := rows.Scan(&c.ID, &c.LeadID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}

// Reparent moves every comment of a clubbed lead to the surviving one.
// Comments are never deleted during a merge.
func (r *CommentRepository) Reparent(ctx context.Context, fromLeadID, toLeadID string) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE comments SET lead_id = $2 WHERE lead_id = $1`, fromLeadID, toLeadID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
