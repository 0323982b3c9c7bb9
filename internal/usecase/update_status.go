package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xavierca1/pharma-crm/internal/entity"
)

type UpdateLeadStatusInput struct {
	ActorID string
	LeadID  string

	Status       string     `json:"status,omitempty"`
	Heat         string     `json:"heat,omitempty"`
	NextFollowup *time.Time `json:"next_followup,omitempty"`
}

// UpdateLeadStatusUseCase moves a lead through
// yet_to_decide -> relevant | not_relevant and maintains heat/follow-up.
// Allowed for the assigned staff member on their own lead, and for elevated
// actors on any lead.
type UpdateLeadStatusUseCase struct {
	Leads LeadRepositoryInterface
	Users UserDirectoryInterface
	Audit AuditLogSink
}

func NewUpdateLeadStatusUseCase(
	leads LeadRepositoryInterface,
	users UserDirectoryInterface,
	audit AuditLogSink,
) *UpdateLeadStatusUseCase {
	return &UpdateLeadStatusUseCase{Leads: leads, Users: users, Audit: audit}
}

func (uc *UpdateLeadStatusUseCase) Execute(ctx context.Context, input UpdateLeadStatusInput) (*entity.Lead, error) {

	actor, err := uc.Users.FindByID(ctx, input.ActorID)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil, &DomainError{Code: CodeActorUnknown, Message: "acting user not found"}
		}
		return nil, &TechnicalError{Code: CodeDatabase, Message: err.Error()}
	}

	lead, err := uc.Leads.FindByID(ctx, input.LeadID)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, &DomainError{Code: CodeNotFound, Message: "lead not found"}
		}
		return nil, &TechnicalError{Code: CodeDatabase, Message: err.Error()}
	}

	if !actor.IsElevated() && lead.AssignedTo != actor.ID {
		return nil, &DomainError{Code: CodeUnauthorized, Message: "lead is not assigned to you"}
	}

	patch := map[string]interface{}{}

	if input.Status != "" {
		switch input.Status {
		case entity.StatusYetToDecide, entity.StatusRelevant, entity.StatusNotRelevant:
			patch["status"] = input.Status
			lead.Status = input.Status
		default:
			return nil, &DomainError{Code: CodeValidation, Message: "invalid status: " + input.Status}
		}
	}

	if input.Heat != "" {
		switch input.Heat {
		case entity.HeatHot, entity.HeatCold, entity.HeatMatured:
			patch["heat"] = input.Heat
			lead.Heat = input.Heat
		default:
			return nil, &DomainError{Code: CodeValidation, Message: "invalid heat: " + input.Heat}
		}
	}

	if input.NextFollowup != nil {
		patch["next_followup"] = *input.NextFollowup
		lead.NextFollowup = input.NextFollowup
	}

	if len(patch) == 0 {
		return lead, nil
	}

	if err := uc.Leads.Patch(ctx, lead.ID, patch); err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to update lead status: " + err.Error()}
	}

	effects := &SideEffectRunner{}
	effects.Add("audit update status", func(ctx context.Context) error {
		return uc.Audit.Append(ctx, input.ActorID, entity.ActionUpdateLeadStatus,
			fmt.Sprintf("lead %s: status=%s heat=%s", lead.ID, lead.Status, lead.Heat), lead.ID)
	})
	effects.Flush(ctx)

	return lead, nil
}
