package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/pharma-crm/internal/entity"
)

type PincodeRepository struct {
	DB *sql.DB
}

func NewPincodeRepository(db *sql.DB) *PincodeRepository {
	return &PincodeRepository{DB: db}
}

// Resolve returns (nil, nil) for unknown pincodes; the caller just keeps the
// candidate's own state/district.
func (r *PincodeRepository) Resolve(ctx context.Context, pincode string) (*entity.PincodeMapping, error) {
	query := `SELECT pincode, state, district FROM pincode_mappings WHERE pincode = $1`

	var m entity.PincodeMapping
	err := r.DB.QueryRowContext(ctx, query, pincode).Scan(&m.Pincode, &m.State, &m.District)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
