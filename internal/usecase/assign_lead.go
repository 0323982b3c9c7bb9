package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/xavierca1/pharma-crm/internal/entity"
)

type AssignLeadInput struct {
	ActorID  string
	LeadID   string
	AssignTo string `json:"assign_to"`
}

type AssignLeadUseCase struct {
	Leads         LeadRepositoryInterface
	Users         UserDirectoryInterface
	Notifications NotificationSink
	Audit         AuditLogSink
}

func NewAssignLeadUseCase(
	leads LeadRepositoryInterface,
	users UserDirectoryInterface,
	notifications NotificationSink,
	audit AuditLogSink,
) *AssignLeadUseCase {
	return &AssignLeadUseCase{Leads: leads, Users: users, Notifications: notifications, Audit: audit}
}

func (uc *AssignLeadUseCase) Execute(ctx context.Context, input AssignLeadInput) (*entity.Lead, error) {

	actor, err := uc.Users.FindByID(ctx, input.ActorID)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil, &DomainError{Code: CodeActorUnknown, Message: "acting user not found"}
		}
		return nil, &TechnicalError{Code: CodeDatabase, Message: err.Error()}
	}
	if !actor.IsElevated() {
		return nil, &DomainError{Code: CodeUnauthorized, Message: "only admins and managers may assign leads"}
	}

	assignee, err := uc.Users.FindByID(ctx, input.AssignTo)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil, &DomainError{Code: CodeNotFound, Message: "assignee not found"}
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

	if lead.AssignedTo == assignee.ID {
		return lead, nil
	}

	ntype := entity.NotifyLeadAssigned
	title := "Lead assigned to you"
	if lead.AssignedTo != "" {
		ntype = entity.NotifyLeadReassigned
		title = "Lead reassigned to you"
	}

	if err := uc.Leads.Patch(ctx, lead.ID, map[string]interface{}{"assigned_to": assignee.ID}); err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to assign lead: " + err.Error()}
	}
	lead.AssignedTo = assignee.ID

	effects := &SideEffectRunner{}
	effects.Add("notify assignee", func(ctx context.Context) error {
		return uc.Notifications.Notify(ctx, assignee.ID, title,
			fmt.Sprintf("Lead %s (%s) is now yours.", lead.Name, lead.Subject),
			ntype, lead.ID)
	})
	effects.Add("audit assign", func(ctx context.Context) error {
		return uc.Audit.Append(ctx, input.ActorID, entity.ActionAssignLead,
			fmt.Sprintf("assigned lead %s to %s", lead.ID, assignee.Name), lead.ID)
	})
	effects.Flush(ctx)

	return lead, nil
}
