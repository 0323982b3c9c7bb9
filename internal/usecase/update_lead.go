package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/xavierca1/pharma-crm/internal/entity"
)

// UpdateLeadDetailsInput is the administrative edit path. Unlike a merge it
// may overwrite non-empty fields: a non-empty input value replaces whatever
// the record holds.
type UpdateLeadDetailsInput struct {
	ActorID string
	LeadID  string

	Name        string `json:"name"`
	Subject     string `json:"subject"`
	Message     string `json:"message"`
	AltMobileNo string `json:"alt_mobile_no"`
	AltEmail    string `json:"alt_email"`
	State       string `json:"state"`
	District    string `json:"district"`
	Station     string `json:"station"`
	Pincode     string `json:"pincode"`
	AgencyName  string `json:"agency_name"`
	Source      string `json:"source"`
}

type UpdateLeadDetailsUseCase struct {
	Leads    LeadRepositoryInterface
	Users    UserDirectoryInterface
	Pincodes PincodeLookupInterface
	Audit    AuditLogSink
}

func NewUpdateLeadDetailsUseCase(
	leads LeadRepositoryInterface,
	users UserDirectoryInterface,
	pincodes PincodeLookupInterface,
	audit AuditLogSink,
) *UpdateLeadDetailsUseCase {
	return &UpdateLeadDetailsUseCase{Leads: leads, Users: users, Pincodes: pincodes, Audit: audit}
}

func (uc *UpdateLeadDetailsUseCase) Execute(ctx context.Context, input UpdateLeadDetailsInput) (*entity.Lead, error) {

	actor, err := uc.Users.FindByID(ctx, input.ActorID)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil, &DomainError{Code: CodeActorUnknown, Message: "acting user not found"}
		}
		return nil, &TechnicalError{Code: CodeDatabase, Message: err.Error()}
	}
	if !actor.IsElevated() {
		return nil, &DomainError{Code: CodeUnauthorized, Message: "only admins and managers may edit lead details"}
	}

	lead, err := uc.Leads.FindByID(ctx, input.LeadID)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, &DomainError{Code: CodeNotFound, Message: "lead not found"}
		}
		return nil, &TechnicalError{Code: CodeDatabase, Message: err.Error()}
	}

	patch := map[string]interface{}{}
	set := func(field, value string) {
		if value != "" && value != lead.FieldValue(field) {
			patch[field] = value
			lead.SetFieldValue(field, value)
		}
	}
	set("name", input.Name)
	set("subject", input.Subject)
	set("message", input.Message)
	set("alt_mobile_no", input.AltMobileNo)
	set("alt_email", input.AltEmail)
	set("state", input.State)
	set("district", input.District)
	set("station", input.Station)
	set("pincode", input.Pincode)
	set("agency_name", input.AgencyName)
	set("source", input.Source)

	// Pincode mapping fills state/district, but an explicit caller value wins.
	if input.Pincode != "" {
		mapping, perr := uc.Pincodes.Resolve(ctx, input.Pincode)
		if perr == nil && mapping != nil {
			if input.State == "" {
				set("state", mapping.State)
			}
			if input.District == "" {
				set("district", mapping.District)
			}
		}
	}

	if len(patch) == 0 {
		return lead, nil
	}

	if err := uc.Leads.Patch(ctx, lead.ID, patch); err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to update lead: " + err.Error()}
	}

	effects := &SideEffectRunner{}
	effects.Add("audit update details", func(ctx context.Context) error {
		return uc.Audit.Append(ctx, input.ActorID, entity.ActionUpdateLeadDetails,
			fmt.Sprintf("updated %d field(s) of lead %s", len(patch), lead.ID), lead.ID)
	})
	effects.Flush(ctx)

	return lead, nil
}
