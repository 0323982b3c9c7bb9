package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/xavierca1/pharma-crm/internal/entity"
	"github.com/xavierca1/pharma-crm/internal/infra/queue"
)

// Ingestion origins. Assignment rules and notification fan-out differ per
// origin: only the import path may (re)assign, and the import path aggregates
// its fan-out after the batch instead of per candidate.
const (
	OriginManual  = "manual"
	OriginImport  = "import"
	OriginWebhook = "webhook"
	OriginFeed    = "feed"
)

// SystemActorID is used for audit entries written by unattended entry points
// (webhook, feed poller).
const SystemActorID = "system"

type IngestLeadInput struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Message string `json:"message"`

	MobileNo string `json:"mobile_no"`
	Email    string `json:"email"`

	AltMobileNo string `json:"alt_mobile_no"`
	AltEmail    string `json:"alt_email"`
	State       string `json:"state"`
	District    string `json:"district"`
	Station     string `json:"station"`
	Pincode     string `json:"pincode"`
	AgencyName  string `json:"agency_name"`
	Source      string `json:"source"`

	// AssignTo is honored on the import origin only.
	AssignTo string `json:"-"`
	ActorID  string `json:"-"`
	Origin   string `json:"-"`
}

type IngestLeadOutput struct {
	LeadID  string `json:"lead_id"`
	Created bool   `json:"created"`
	Clubbed bool   `json:"clubbed"`
	Skipped bool   `json:"skipped"`
}

type IngestLeadUseCase struct {
	Leads         LeadRepositoryInterface
	Users         UserDirectoryInterface
	Notifications NotificationSink
	Audit         AuditLogSink
	Queue         queue.WelcomeEmailQueueInterface
}

func NewIngestLeadUseCase(
	leads LeadRepositoryInterface,
	users UserDirectoryInterface,
	notifications NotificationSink,
	audit AuditLogSink,
	welcomeQueue queue.WelcomeEmailQueueInterface,
) *IngestLeadUseCase {
	return &IngestLeadUseCase{
		Leads:         leads,
		Users:         users,
		Notifications: notifications,
		Audit:         audit,
		Queue:         welcomeQueue,
	}
}

// Execute is the pairwise merge engine. One candidate in, one surviving lead
// out: either a fresh insert, a club into an existing record, or a silent
// skip when the key was previously marked not_relevant.
func (uc *IngestLeadUseCase) Execute(ctx context.Context, input IngestLeadInput) (*IngestLeadOutput, error) {

	if input.MobileNo == "" && input.Email == "" {
		// Not an error: batch callers count this and move on.
		return &IngestLeadOutput{Skipped: true}, nil
	}

	deduper := &Deduper{Leads: uc.Leads}
	dup, err := deduper.FindDuplicate(ctx, input.MobileNo, input.Email)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "duplicate lookup failed: " + err.Error()}
	}

	if deduper.BlockedAsNotRelevant(dup) {
		// Never resurrect a discarded lead.
		return &IngestLeadOutput{LeadID: dup.ID, Skipped: true}, nil
	}

	if dup != nil {
		return uc.club(ctx, dup, input)
	}

	return uc.insert(ctx, input)
}

// club merges the candidate into the existing record: fill-if-missing on the
// fillable fields, assignment rules for the import origin, then the
// best-effort tail (clubbed notification + audit entry).
func (uc *IngestLeadUseCase) club(ctx context.Context, dup *entity.Lead, input IngestLeadInput) (*IngestLeadOutput, error) {

	patch := map[string]interface{}{}
	for _, field := range entity.FillableFields {
		if dup.FieldValue(field) != "" {
			continue
		}
		if value := candidateFieldValue(input, field); value != "" {
			patch[field] = value
		}
	}

	effects := &SideEffectRunner{}
	assignee := dup.AssignedTo

	if input.Origin == OriginImport && input.AssignTo != "" {
		switch {
		case dup.AssignedTo == "":
			patch["assigned_to"] = input.AssignTo
			assignee = input.AssignTo
			uc.addAssignNotification(effects, input.AssignTo, dup, entity.NotifyLeadAssigned)
		case dup.AssignedTo != input.AssignTo:
			patch["assigned_to"] = input.AssignTo
			assignee = input.AssignTo
			uc.addAssignNotification(effects, input.AssignTo, dup, entity.NotifyLeadReassigned)
		}
		// Equal assignee: no-op, no notification.
	}

	if len(patch) > 0 {
		if err := uc.Leads.Patch(ctx, dup.ID, patch); err != nil {
			return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to club duplicate: " + err.Error()}
		}
	}

	if assignee != "" {
		target := assignee
		effects.Add("notify duplicate clubbed", func(ctx context.Context) error {
			return uc.Notifications.Notify(ctx, target,
				"Duplicate lead clubbed",
				fmt.Sprintf("An enquiry from %s was clubbed into an existing lead.", candidateIdentity(input)),
				entity.NotifyDuplicateClubbed, dup.ID)
		})
	}

	effects.Add("audit club", func(ctx context.Context) error {
		return uc.Audit.Append(ctx, actorOrSystem(input.ActorID), entity.ActionClubDuplicateLead,
			fmt.Sprintf("clubbed %s candidate %s into lead %s", input.Origin, candidateIdentity(input), dup.ID),
			dup.ID)
	})

	effects.Flush(ctx)

	return &IngestLeadOutput{LeadID: dup.ID, Clubbed: true}, nil
}

func (uc *IngestLeadUseCase) insert(ctx context.Context, input IngestLeadInput) (*IngestLeadOutput, error) {

	lead, err := entity.NewLead(input.Name, input.Subject, input.Message, input.MobileNo, input.Email)
	if err != nil {
		return nil, &DomainError{Code: CodeValidation, Message: err.Error()}
	}

	lead.AltMobileNo = input.AltMobileNo
	lead.AltEmail = input.AltEmail
	lead.State = input.State
	lead.District = input.District
	lead.Station = input.Station
	lead.Pincode = input.Pincode
	lead.AgencyName = input.AgencyName
	lead.Source = input.Source

	if input.Origin == OriginImport && input.AssignTo != "" {
		lead.AssignedTo = input.AssignTo
	}

	if err := uc.Leads.Insert(ctx, lead); err != nil {
		if errors.Is(err, entity.ErrDuplicateLead) {
			// Lost a race with a concurrent ingestion for the same key.
			// The winner's row is the duplicate now; club into it.
			deduper := &Deduper{Leads: uc.Leads}
			dup, derr := deduper.FindDuplicate(ctx, input.MobileNo, input.Email)
			if derr == nil && dup != nil {
				if deduper.BlockedAsNotRelevant(dup) {
					return &IngestLeadOutput{LeadID: dup.ID, Skipped: true}, nil
				}
				return uc.club(ctx, dup, input)
			}
		}
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to insert lead: " + err.Error()}
	}

	effects := &SideEffectRunner{}

	if isUsableEmail(lead.Email) {
		effects.Add("queue welcome email", func(ctx context.Context) error {
			return uc.Queue.PublishWelcomeEmail(ctx, queue.WelcomeEmailPayload{
				LeadID: lead.ID,
				Email:  lead.Email,
				Name:   lead.Name,
				Origin: input.Origin,
			})
		})
	}

	if lead.AssignedTo != "" {
		uc.addAssignNotification(effects, lead.AssignedTo, lead, entity.NotifyLeadAssigned)
	}

	if input.Origin != OriginImport {
		// Bulk import fans out once after the loop, not per candidate.
		effects.Add("notify elevated users", func(ctx context.Context) error {
			return uc.fanOutNewLead(ctx, lead)
		})
		effects.Add("audit create", func(ctx context.Context) error {
			return uc.Audit.Append(ctx, actorOrSystem(input.ActorID), entity.ActionCreateLead,
				fmt.Sprintf("created lead %s from %s", candidateIdentity(input), input.Origin),
				lead.ID)
		})
	}

	effects.Flush(ctx)

	return &IngestLeadOutput{LeadID: lead.ID, Created: true}, nil
}

func (uc *IngestLeadUseCase) fanOutNewLead(ctx context.Context, lead *entity.Lead) error {
	users, err := uc.Users.ListElevated(ctx)
	if err != nil {
		return err
	}
	for _, user := range users {
		err = uc.Notifications.Notify(ctx, user.ID,
			"New lead created",
			fmt.Sprintf("New enquiry from %s (%s).", lead.Name, lead.Subject),
			entity.NotifyNewLead, lead.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (uc *IngestLeadUseCase) addAssignNotification(effects *SideEffectRunner, userID string, lead *entity.Lead, ntype string) {
	title := "Lead assigned to you"
	if ntype == entity.NotifyLeadReassigned {
		title = "Lead reassigned to you"
	}
	effects.Add("notify "+ntype, func(ctx context.Context) error {
		return uc.Notifications.Notify(ctx, userID, title,
			fmt.Sprintf("Lead %s (%s) is now yours.", lead.Name, lead.Subject),
			ntype, lead.ID)
	})
}

func candidateFieldValue(input IngestLeadInput, field string) string {
	switch field {
	case "name":
		return input.Name
	case "subject":
		return input.Subject
	case "message":
		return input.Message
	case "alt_mobile_no":
		return input.AltMobileNo
	case "alt_email":
		return input.AltEmail
	case "state":
		return input.State
	case "district":
		return input.District
	case "source":
		return input.Source
	case "station":
		return input.Station
	case "pincode":
		return input.Pincode
	case "agency_name":
		return input.AgencyName
	}
	return ""
}

func candidateIdentity(input IngestLeadInput) string {
	switch {
	case input.MobileNo != "" && input.Email != "":
		return input.MobileNo + "/" + input.Email
	case input.MobileNo != "":
		return input.MobileNo
	default:
		return input.Email
	}
}

func actorOrSystem(actorID string) string {
	if actorID == "" {
		return SystemActorID
	}
	return actorID
}
