package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/pharma-crm/internal/entity"
	"github.com/xavierca1/pharma-crm/internal/infra/queue"
)

func quietUsers() *MockUserDirectory {
	users := new(MockUserDirectory)
	users.On("ListElevated", mock.Anything).Return([]*entity.User{}, nil).Maybe()
	return users
}

func newIngestUC(leads *fakeLeadRepo) (*IngestLeadUseCase, *MockNotificationSink, *MockAuditSink, *MockWelcomeQueue) {
	notif, audit := quietSinks()
	q := quietQueue()
	return &IngestLeadUseCase{
		Leads:         leads,
		Users:         quietUsers(),
		Notifications: notif,
		Audit:         audit,
		Queue:         q,
	}, notif, audit, q
}

func TestIngestCreatesNewLead(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLeadRepo()
	uc, _, _, _ := newIngestUC(repo)

	out, err := uc.Execute(ctx, IngestLeadInput{
		Name:     "Asha Verma",
		Subject:  "Distribution enquiry",
		MobileNo: "9876543210",
		Email:    "asha@example.com",
		Origin:   OriginManual,
		ActorID:  "admin-1",
	})

	assert.NoError(t, err)
	assert.True(t, out.Created)
	assert.False(t, out.Clubbed)

	lead, _ := repo.FindByID(ctx, out.LeadID)
	assert.Equal(t, "Asha Verma", lead.Name)
	assert.Equal(t, entity.StatusYetToDecide, lead.Status)
}

func TestIngestSkipsWhenBothKeysEmpty(t *testing.T) {
	uc, _, _, _ := newIngestUC(newFakeLeadRepo())

	out, err := uc.Execute(context.Background(), IngestLeadInput{Name: "No Keys"})

	assert.NoError(t, err)
	assert.True(t, out.Skipped)
	assert.Empty(t, out.LeadID)
}

// When the candidate's mobile matches one lead and its email matches another,
// the mobile match wins.
func TestIngestMobileMatchTakesPriority(t *testing.T) {
	ctx := context.Background()
	byMobile := mustLead("Mobile Match", "s", "9000000001", "", time.Now().Add(-2*time.Hour))
	byEmail := mustLead("Email Match", "s", "", "shared@example.com", time.Now().Add(-time.Hour))
	repo := newFakeLeadRepo(byMobile, byEmail)
	uc, _, _, _ := newIngestUC(repo)

	out, err := uc.Execute(ctx, IngestLeadInput{
		Name:     "Candidate",
		MobileNo: "9000000001",
		Email:    "shared@example.com",
		Origin:   OriginWebhook,
	})

	assert.NoError(t, err)
	assert.True(t, out.Clubbed)
	assert.Equal(t, byMobile.ID, out.LeadID)
}

func TestIngestClubFillsOnlyMissingFields(t *testing.T) {
	ctx := context.Background()
	existing := mustLead("", "Old subject", "9000000002", "kept@example.com", time.Now().Add(-time.Hour))
	repo := newFakeLeadRepo(existing)
	uc, _, _, _ := newIngestUC(repo)

	out, err := uc.Execute(ctx, IngestLeadInput{
		Name:     "Filled Name",
		Subject:  "New subject",
		MobileNo: "9000000002",
		Email:    "different@example.com",
		State:    "Kerala",
		Origin:   OriginFeed,
	})

	assert.NoError(t, err)
	assert.True(t, out.Clubbed)

	merged, _ := repo.FindByID(ctx, existing.ID)
	assert.Equal(t, "Filled Name", merged.Name, "empty field should be filled")
	assert.Equal(t, "Old subject", merged.Subject, "non-empty field must never be overwritten")
	assert.Equal(t, "Kerala", merged.State)
	assert.Equal(t, "kept@example.com", merged.Email,
		"a mobile-matched merge leaves the record's email alone even when the candidate differs")
}

func TestIngestNotRelevantLeadBlocksResurrection(t *testing.T) {
	ctx := context.Background()
	discarded := mustLead("Discarded", "s", "9000000003", "", time.Now().Add(-time.Hour))
	discarded.Status = entity.StatusNotRelevant
	discarded.State = ""
	repo := newFakeLeadRepo(discarded)

	notif := new(MockNotificationSink)
	audit := new(MockAuditSink)
	uc := &IngestLeadUseCase{
		Leads: repo, Users: quietUsers(),
		Notifications: notif, Audit: audit, Queue: quietQueue(),
	}

	out, err := uc.Execute(ctx, IngestLeadInput{
		Name:     "Retry",
		MobileNo: "9000000003",
		State:    "Punjab",
		Origin:   OriginWebhook,
	})

	assert.NoError(t, err)
	assert.True(t, out.Skipped)
	assert.Equal(t, discarded.ID, out.LeadID)

	// No merge, no side effects: the record stays untouched.
	unchanged, _ := repo.FindByID(ctx, discarded.ID)
	assert.Empty(t, unchanged.State)
	notif.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	audit.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestQueuesWelcomeEmailForUsableAddress(t *testing.T) {
	ctx := context.Background()
	uc, _, _, q := newIngestUC(newFakeLeadRepo())

	out, err := uc.Execute(ctx, IngestLeadInput{
		Name: "Mail Me", Subject: "s",
		Email:  "mailme@example.com",
		Origin: OriginManual,
	})

	assert.NoError(t, err)
	assert.True(t, out.Created)
	q.AssertCalled(t, "PublishWelcomeEmail", mock.Anything, mock.MatchedBy(func(p queue.WelcomeEmailPayload) bool {
		return p.Email == "mailme@example.com" && p.LeadID == out.LeadID
	}))
}

func TestIngestSkipsWelcomeEmailForPlaceholderAddress(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLeadRepo()
	notif, audit := quietSinks()
	q := new(MockWelcomeQueue)
	uc := &IngestLeadUseCase{
		Leads: repo, Users: quietUsers(),
		Notifications: notif, Audit: audit, Queue: q,
	}

	out, err := uc.Execute(ctx, IngestLeadInput{
		Name: "Portal Lead", Subject: "s",
		MobileNo: "9000000004",
		Email:    PlaceholderEmail,
		Origin:   OriginWebhook,
	})

	assert.NoError(t, err)
	assert.True(t, out.Created)
	q.AssertNotCalled(t, "PublishWelcomeEmail", mock.Anything, mock.Anything)
}

func TestIngestImportReassignsAndNotifies(t *testing.T) {
	ctx := context.Background()
	existing := mustLead("Assigned", "s", "9000000005", "", time.Now().Add(-time.Hour))
	existing.AssignedTo = "staff-old"
	repo := newFakeLeadRepo(existing)

	notif := new(MockNotificationSink)
	notif.On("Notify", mock.Anything, "staff-new", mock.Anything, mock.Anything, entity.NotifyLeadReassigned, existing.ID).Return(nil).Once()
	notif.On("Notify", mock.Anything, "staff-new", mock.Anything, mock.Anything, entity.NotifyDuplicateClubbed, existing.ID).Return(nil).Once()
	_, audit := quietSinks()

	uc := &IngestLeadUseCase{
		Leads: repo, Users: quietUsers(),
		Notifications: notif, Audit: audit, Queue: quietQueue(),
	}

	out, err := uc.Execute(ctx, IngestLeadInput{
		Name:     "Dup",
		MobileNo: "9000000005",
		AssignTo: "staff-new",
		ActorID:  "manager-1",
		Origin:   OriginImport,
	})

	assert.NoError(t, err)
	assert.True(t, out.Clubbed)

	merged, _ := repo.FindByID(ctx, existing.ID)
	assert.Equal(t, "staff-new", merged.AssignedTo)
	notif.AssertExpectations(t)
}

// Manual/webhook/feed origins must ignore AssignTo even when set.
func TestIngestNonImportOriginIgnoresAssignTo(t *testing.T) {
	ctx := context.Background()
	repo := newFakeLeadRepo()
	uc, _, _, _ := newIngestUC(repo)

	out, err := uc.Execute(ctx, IngestLeadInput{
		Name: "Web Lead", Subject: "s",
		MobileNo: "9000000006",
		AssignTo: "staff-1",
		Origin:   OriginWebhook,
	})

	assert.NoError(t, err)
	lead, _ := repo.FindByID(ctx, out.LeadID)
	assert.Empty(t, lead.AssignedTo)
}
