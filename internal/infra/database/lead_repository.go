package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/xavierca1/pharma-crm/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `
	id, name, subject, message, mobile_no, email,
	alt_mobile_no, alt_email, state, district, station, pincode,
	agency_name, source, COALESCE(assigned_to, ''), status, COALESCE(heat, ''),
	next_followup, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var lead entity.Lead
	var nextFollowup sql.NullTime

	err := row.Scan(
		&lead.ID, &lead.Name, &lead.Subject, &lead.Message, &lead.MobileNo, &lead.Email,
		&lead.AltMobileNo, &lead.AltEmail, &lead.State, &lead.District, &lead.Station, &lead.Pincode,
		&lead.AgencyName, &lead.Source, &lead.AssignedTo, &lead.Status, &lead.Heat,
		&nextFollowup, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if nextFollowup.Valid {
		t := nextFollowup.Time
		lead.NextFollowup = &t
	}
	return &lead, nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT` + leadColumns + ` FROM leads WHERE id = $1`

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	return lead, err
}

// FindByMobile: exact string match, no normalization. (nil, nil) when absent.
func (r *LeadRepository) FindByMobile(ctx context.Context, mobileNo string) (*entity.Lead, error) {
	query := `SELECT` + leadColumns + ` FROM leads WHERE mobile_no = $1 AND mobile_no <> '' LIMIT 1`

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, mobileNo))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return lead, err
}

func (r *LeadRepository) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	query := `SELECT` + leadColumns + ` FROM leads WHERE email = $1 AND email <> '' LIMIT 1`

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return lead, err
}

// Insert relies on the partial unique indexes uq_leads_mobile_no and
// uq_leads_email (see schema.sql) to serialize concurrent ingestions for the
// same key: the loser gets entity.ErrDuplicateLead and re-resolves.
func (r *LeadRepository) Insert(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (
			id, name, subject, message, mobile_no, email,
			alt_mobile_no, alt_email, state, district, station, pincode,
			agency_name, source, assigned_to, status, heat, next_followup,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err := r.DB.ExecContext(ctx, query,
		lead.ID, lead.Name, lead.Subject, lead.Message, lead.MobileNo, lead.Email,
		lead.AltMobileNo, lead.AltEmail, lead.State, lead.District, lead.Station, lead.Pincode,
		lead.AgencyName, lead.Source, nullString(lead.AssignedTo), lead.Status, nullString(lead.Heat),
		lead.NextFollowup, lead.CreatedAt, lead.UpdatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return entity.ErrDuplicateLead
		}
		return err
	}

	return nil
}

// Patch applies a fill map built by the merge engine. Keys are column names
// from entity.FillableFields plus assigned_to, status, heat, next_followup.
func (r *LeadRepository) Patch(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	// Deterministic column order keeps the statement stable for logs/tests.
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sets []string
	var args []interface{}
	for i, k := range keys {
		sets = append(sets, fmt.Sprintf("%s = $%d", k, i+1))
		args = append(args, fields[k])
	}
	args = append(args, id)

	query := fmt.Sprintf(
		"UPDATE leads SET %s, updated_at = NOW() WHERE id = $%d",
		strings.Join(sets, ", "), len(args),
	)

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

// ListAll feeds the dedup sweep. The ordering makes the first member of every
// sweep group the earliest-created record.
func (r *LeadRepository) ListAll(ctx context.Context) ([]*entity.Lead, error) {
	query := `SELECT` + leadColumns + ` FROM leads ORDER BY created_at, id`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// ListDueFollowups returns assigned, still-live leads whose follow-up is due.
func (r *LeadRepository) ListDueFollowups(ctx context.Context, due time.Time) ([]*entity.Lead, error) {
	query := `SELECT` + leadColumns + ` FROM leads
		WHERE next_followup IS NOT NULL
		  AND next_followup <= $1
		  AND COALESCE(assigned_to, '') <> ''
		  AND status <> $2
		ORDER BY next_followup`

	rows, err := r.DB.QueryContext(ctx, query, due, entity.StatusNotRelevant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
