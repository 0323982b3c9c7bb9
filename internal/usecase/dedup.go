package usecase

import (
	"context"

	"github.com/xavierca1/pharma-crm/internal/entity"
)

// Deduper resolves a candidate's (mobile, email) pair to an existing lead.
// Matching is exact string equality, no normalization — the same digits with
// a country code prefix are a different key on purpose (see DESIGN.md).
type Deduper struct {
	Leads LeadRepositoryInterface
}

// FindDuplicate: mobile match takes priority over email match.
func (d *Deduper) FindDuplicate(ctx context.Context, mobileNo, email string) (*entity.Lead, error) {
	if mobileNo != "" {
		lead, err := d.Leads.FindByMobile(ctx, mobileNo)
		if err != nil {
			return nil, err
		}
		if lead != nil {
			return lead, nil
		}
	}

	if email != "" {
		lead, err := d.Leads.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if lead != nil {
			return lead, nil
		}
	}

	return nil, nil
}

// BlockedAsNotRelevant: once a lead was marked not_relevant, candidates with
// the same key are silently dropped forever (until a human flips the status).
func (d *Deduper) BlockedAsNotRelevant(lead *entity.Lead) bool {
	return lead != nil && lead.Status == entity.StatusNotRelevant
}
