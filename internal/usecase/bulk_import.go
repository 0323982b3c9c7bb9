package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/xavierca1/pharma-crm/internal/entity"
)

// LeadCandidate is one structurally-validated record from an import file.
type LeadCandidate struct {
	Name        string `json:"name"`
	Subject     string `json:"subject"`
	Message     string `json:"message"`
	MobileNo    string `json:"mobile_no"`
	Email       string `json:"email"`
	AltMobileNo string `json:"alt_mobile_no"`
	AltEmail    string `json:"alt_email"`
	State       string `json:"state"`
	District    string `json:"district"`
	Station     string `json:"station"`
	Pincode     string `json:"pincode"`
	AgencyName  string `json:"agency_name"`
	Source      string `json:"source"`
}

type BulkImportInput struct {
	ActorID    string
	AssignTo   string // applied uniformly to the whole batch when set
	Candidates []LeadCandidate
}

// BulkImportOutput carries aggregate counters, not per-item errors.
type BulkImportOutput struct {
	Imported int `json:"imported"`
	Clubbed  int `json:"clubbed"`
	Skipped  int `json:"skipped"`
}

type BulkImportUseCase struct {
	Ingest        IngestExecutor
	Users         UserDirectoryInterface
	Pincodes      PincodeLookupInterface
	Notifications NotificationSink
	Audit         AuditLogSink
}

func NewBulkImportUseCase(
	ingest IngestExecutor,
	users UserDirectoryInterface,
	pincodes PincodeLookupInterface,
	notifications NotificationSink,
	audit AuditLogSink,
) *BulkImportUseCase {
	return &BulkImportUseCase{
		Ingest:        ingest,
		Users:         users,
		Pincodes:      pincodes,
		Notifications: notifications,
		Audit:         audit,
	}
}

func (uc *BulkImportUseCase) Execute(ctx context.Context, input BulkImportInput) (*BulkImportOutput, error) {

	actor, err := uc.Users.FindByID(ctx, input.ActorID)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil, &DomainError{Code: CodeActorUnknown, Message: "importing user not found"}
		}
		return nil, &TechnicalError{Code: CodeDatabase, Message: err.Error()}
	}
	if !actor.IsElevated() {
		return nil, &DomainError{Code: CodeUnauthorized, Message: "only admins and managers may import leads"}
	}

	if input.AssignTo != "" {
		if _, err := uc.Users.FindByID(ctx, input.AssignTo); err != nil {
			if errors.Is(err, entity.ErrUserNotFound) {
				return nil, &DomainError{Code: CodeNotFound, Message: "assignee not found"}
			}
			return nil, &TechnicalError{Code: CodeDatabase, Message: err.Error()}
		}
	}

	out := &BulkImportOutput{}

	for i, cand := range input.Candidates {
		if cand.MobileNo == "" && cand.Email == "" {
			out.Skipped++
			continue
		}

		// Pincode mapping replaces the candidate's own state/district before
		// the insert; for clubs the fill-if-missing rule takes over anyway.
		if cand.Pincode != "" {
			mapping, perr := uc.Pincodes.Resolve(ctx, cand.Pincode)
			if perr == nil && mapping != nil {
				cand.State = mapping.State
				cand.District = mapping.District
			}
		}

		res, ierr := uc.Ingest.Execute(ctx, IngestLeadInput{
			Name:        cand.Name,
			Subject:     cand.Subject,
			Message:     cand.Message,
			MobileNo:    cand.MobileNo,
			Email:       cand.Email,
			AltMobileNo: cand.AltMobileNo,
			AltEmail:    cand.AltEmail,
			State:       cand.State,
			District:    cand.District,
			Station:     cand.Station,
			Pincode:     cand.Pincode,
			AgencyName:  cand.AgencyName,
			Source:      cand.Source,
			AssignTo:    input.AssignTo,
			ActorID:     input.ActorID,
			Origin:      OriginImport,
		})
		if ierr != nil {
			// One bad record never aborts the batch.
			log.Printf("⚠️ [IMPORT] record %d rejected: %v", i+1, ierr)
			out.Skipped++
			continue
		}

		switch {
		case res.Created:
			out.Imported++
		case res.Clubbed:
			out.Clubbed++
		default:
			out.Skipped++
		}
	}

	// One summary audit entry and one aggregated fan-out for the whole batch.
	effects := &SideEffectRunner{}

	effects.Add("audit bulk import", func(ctx context.Context) error {
		return uc.Audit.Append(ctx, input.ActorID, entity.ActionBulkImportLeads,
			fmt.Sprintf("bulk import: %d imported, %d clubbed, %d skipped of %d records",
				out.Imported, out.Clubbed, out.Skipped, len(input.Candidates)),
			"")
	})

	if out.Imported > 0 {
		effects.Add("notify elevated users", func(ctx context.Context) error {
			users, uerr := uc.Users.ListElevated(ctx)
			if uerr != nil {
				return uerr
			}
			for _, user := range users {
				uerr = uc.Notifications.Notify(ctx, user.ID,
					"Leads imported",
					fmt.Sprintf("%d new leads were imported.", out.Imported),
					entity.NotifyLeadsImported, "")
				if uerr != nil {
					return uerr
				}
			}
			return nil
		})
	}

	effects.Flush(ctx)

	return out, nil
}
