package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/xavierca1/pharma-crm/internal/entity"
	"github.com/xavierca1/pharma-crm/internal/infra/integration/sms"
	"github.com/xavierca1/pharma-crm/internal/usecase"
)

// FollowupReminderWorker notifies the assignee when a lead's follow-up falls
// due, with a best-effort SMS to their mobile. The follow-up is cleared after
// reminding so the next tick does not fire again.
type FollowupReminderWorker struct {
	leads         usecase.LeadRepositoryInterface
	users         usecase.UserDirectoryInterface
	notifications usecase.NotificationSink
	sms           *sms.Client
	tickInterval  time.Duration
}

func NewFollowupReminderWorker(
	leads usecase.LeadRepositoryInterface,
	users usecase.UserDirectoryInterface,
	notifications usecase.NotificationSink,
	smsClient *sms.Client,
	tickInterval time.Duration,
) *FollowupReminderWorker {
	if tickInterval <= 0 {
		tickInterval = time.Minute
	}
	return &FollowupReminderWorker{
		leads:         leads,
		users:         users,
		notifications: notifications,
		sms:           smsClient,
		tickInterval:  tickInterval,
	}
}

func (w *FollowupReminderWorker) Start(ctx context.Context) {
	log.Printf("🕒 [FOLLOWUP] reminder worker started (every %s)", w.tickInterval)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.remind(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ [FOLLOWUP] reminder worker stopped")
			return
		case <-ticker.C:
			w.remind(ctx)
		}
	}
}

func (w *FollowupReminderWorker) remind(ctx context.Context) {
	due, err := w.leads.ListDueFollowups(ctx, time.Now())
	if err != nil {
		log.Printf("❌ [FOLLOWUP] failed to list due follow-ups: %v", err)
		return
	}

	for _, lead := range due {
		message := fmt.Sprintf("Follow-up due for lead %s (%s).", lead.Name, lead.MobileNo)

		err := w.notifications.Notify(ctx, lead.AssignedTo,
			"Follow-up due", message, entity.NotifyFollowupDue, lead.ID)
		if err != nil {
			log.Printf("⚠️ [FOLLOWUP] notification failed for lead %s: %v", lead.ID, err)
			continue
		}

		if w.sms != nil && w.sms.Configured() {
			if assignee, uerr := w.users.FindByID(ctx, lead.AssignedTo); uerr == nil && assignee.MobileNo != "" {
				if serr := w.sms.SendSMS(sms.SendSMSInput{To: assignee.MobileNo, Message: message}); serr != nil {
					log.Printf("⚠️ [FOLLOWUP] sms failed for lead %s: %v", lead.ID, serr)
				}
			}
		}

		if perr := w.leads.Patch(ctx, lead.ID, map[string]interface{}{"next_followup": nil}); perr != nil {
			log.Printf("⚠️ [FOLLOWUP] failed to clear follow-up on lead %s: %v", lead.ID, perr)
		}
	}

	if len(due) > 0 {
		log.Printf("✅ [FOLLOWUP] reminded %d assignee(s)", len(due))
	}
}
