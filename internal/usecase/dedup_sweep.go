package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/xavierca1/pharma-crm/internal/entity"
)

type DedupSweepOutput struct {
	GroupsProcessed   int `json:"groups_processed"`
	MergedCount       int `json:"merged_count"`
	DeletedCount      int `json:"deleted_count"`
	NotificationsSent int `json:"notifications_sent"`
}

// RunDeduplicationUseCase is the administrative re-dedup over the whole
// store. It is idempotent: a second run over an untouched store finds only
// singleton groups and changes nothing.
type RunDeduplicationUseCase struct {
	Leads         LeadRepositoryInterface
	Comments      CommentRepositoryInterface
	Users         UserDirectoryInterface
	Notifications NotificationSink
	Audit         AuditLogSink
}

func NewRunDeduplicationUseCase(
	leads LeadRepositoryInterface,
	comments CommentRepositoryInterface,
	users UserDirectoryInterface,
	notifications NotificationSink,
	audit AuditLogSink,
) *RunDeduplicationUseCase {
	return &RunDeduplicationUseCase{
		Leads:         leads,
		Comments:      comments,
		Users:         users,
		Notifications: notifications,
		Audit:         audit,
	}
}

func (uc *RunDeduplicationUseCase) Execute(ctx context.Context, actorID string) (*DedupSweepOutput, error) {

	actor, err := uc.Users.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil, &DomainError{Code: CodeActorUnknown, Message: "acting user not found"}
		}
		return nil, &TechnicalError{Code: CodeDatabase, Message: err.Error()}
	}
	if !actor.IsElevated() {
		return nil, &DomainError{Code: CodeUnauthorized, Message: "only admins and managers may run deduplication"}
	}

	// One snapshot, ordered by creation time, so the first member of every
	// group is the earliest-created record.
	leads, err := uc.Leads.ListAll(ctx)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to load leads: " + err.Error()}
	}

	// A lead with both keys joins a mobile group and an email group.
	var groupKeys []string
	groups := map[string][]*entity.Lead{}
	addMember := func(key string, lead *entity.Lead) {
		if _, seen := groups[key]; !seen {
			groupKeys = append(groupKeys, key)
		}
		groups[key] = append(groups[key], lead)
	}
	for _, lead := range leads {
		if lead.MobileNo != "" {
			addMember("m:"+lead.MobileNo, lead)
		}
		if lead.Email != "" {
			addMember("e:"+lead.Email, lead)
		}
	}

	// Scoped to this invocation; overlapping groups must not process the
	// same physical record twice.
	visited := map[string]bool{}
	out := &DedupSweepOutput{}

	for _, key := range groupKeys {
		var fresh []*entity.Lead
		for _, member := range groups[key] {
			if !visited[member.ID] {
				fresh = append(fresh, member)
			}
		}

		if len(fresh) <= 1 {
			for _, member := range fresh {
				visited[member.ID] = true
			}
			continue
		}

		if err := uc.collapseGroup(ctx, fresh, actorID, out); err != nil {
			return nil, err
		}

		for _, member := range fresh {
			visited[member.ID] = true
		}
		out.GroupsProcessed++
	}

	return out, nil
}

// collapseGroup merges a fresh group into its earliest-created member and
// deletes the rest.
func (uc *RunDeduplicationUseCase) collapseGroup(ctx context.Context, fresh []*entity.Lead, actorID string, out *DedupSweepOutput) error {

	// fresh preserves scan order, but elect the primary explicitly.
	primary := fresh[0]
	for _, member := range fresh[1:] {
		if member.CreatedAt.Before(primary.CreatedAt) {
			primary = member
		}
	}
	var losers []*entity.Lead
	for _, member := range fresh {
		if member.ID != primary.ID {
			losers = append(losers, member)
		}
	}

	// Fill-if-missing in loser order: the first loser to offer a value for an
	// empty field wins it; the primary's next_followup is never touched.
	patch := map[string]interface{}{}
	for _, loser := range losers {
		for _, field := range entity.FillableFields {
			if primary.FieldValue(field) != "" {
				continue
			}
			if value := loser.FieldValue(field); value != "" {
				patch[field] = value
				primary.SetFieldValue(field, value)
			}
		}
	}

	if primary.AssignedTo == "" {
		for _, loser := range losers {
			if loser.AssignedTo != "" {
				patch["assigned_to"] = loser.AssignedTo
				primary.AssignedTo = loser.AssignedTo
				break
			}
		}
	}

	// Comments move before their lead disappears.
	for _, loser := range losers {
		if _, err := uc.Comments.Reparent(ctx, loser.ID, primary.ID); err != nil {
			return &TechnicalError{Code: CodeDatabase,
				Message: fmt.Sprintf("failed to reparent comments of lead %s: %v", loser.ID, err)}
		}
	}

	if len(patch) > 0 {
		if err := uc.Leads.Patch(ctx, primary.ID, patch); err != nil {
			return &TechnicalError{Code: CodeDatabase,
				Message: fmt.Sprintf("failed to merge into lead %s: %v", primary.ID, err)}
		}
		out.MergedCount++
	}

	if primary.AssignedTo != "" {
		err := uc.Notifications.Notify(ctx, primary.AssignedTo,
			"Duplicate leads clubbed",
			fmt.Sprintf("%d duplicate(s) were clubbed into lead %s.", len(losers), primary.Name),
			entity.NotifyDuplicateClubbed, primary.ID)
		if err == nil {
			out.NotificationsSent++
		} else {
			log.Printf("⚠️ side effect 'notify duplicate clubbed' failed: %v", err)
		}
	}

	for _, loser := range losers {
		if err := uc.Leads.Delete(ctx, loser.ID); err != nil {
			return &TechnicalError{Code: CodeDatabase,
				Message: fmt.Sprintf("failed to delete clubbed lead %s: %v", loser.ID, err)}
		}
		out.DeletedCount++
	}

	effects := &SideEffectRunner{}
	effects.Add("audit dedup group", func(ctx context.Context) error {
		return uc.Audit.Append(ctx, actorID, entity.ActionRunDeduplication,
			fmt.Sprintf("clubbed %d duplicate(s) into lead %s", len(losers), primary.ID),
			primary.ID)
	})
	effects.Flush(ctx)

	return nil
}
