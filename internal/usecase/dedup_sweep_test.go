package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/pharma-crm/internal/entity"
)

func newSweepUC(repo *fakeLeadRepo, comments *fakeCommentRepo) (*RunDeduplicationUseCase, *MockNotificationSink, *MockAuditSink) {
	users := new(MockUserDirectory)
	users.On("FindByID", mock.Anything, "admin-1").
		Return(&entity.User{ID: "admin-1", Role: entity.RoleAdmin}, nil)
	notif, audit := quietSinks()
	return &RunDeduplicationUseCase{
		Leads: repo, Comments: comments, Users: users,
		Notifications: notif, Audit: audit,
	}, notif, audit
}

func TestSweepRejectsNonElevatedActor(t *testing.T) {
	users := new(MockUserDirectory)
	users.On("FindByID", mock.Anything, "staff-1").
		Return(&entity.User{ID: "staff-1", Role: entity.RoleStaff}, nil)

	uc := &RunDeduplicationUseCase{
		Leads: newFakeLeadRepo(), Comments: newFakeCommentRepo(), Users: users,
		Notifications: new(MockNotificationSink), Audit: new(MockAuditSink),
	}

	_, err := uc.Execute(context.Background(), "staff-1")
	assert.Error(t, err)
	assert.Equal(t, CodeUnauthorized, ErrorCode(err))
}

func TestSweepMergesIntoEarliestCreated(t *testing.T) {
	ctx := context.Background()
	base := time.Now().Add(-3 * time.Hour)

	oldest := mustLead("Oldest", "s", "9100000001", "", base)
	oldest.State = ""
	middle := mustLead("Middle", "s", "9100000001", "", base.Add(time.Hour))
	middle.State = "Kerala"
	middle.NextFollowup = ptrTime(base.Add(48 * time.Hour))
	newest := mustLead("Newest", "s", "9100000001", "", base.Add(2*time.Hour))
	newest.State = "Punjab"

	repo := newFakeLeadRepo(oldest, middle, newest)
	uc, _, _ := newSweepUC(repo, newFakeCommentRepo())

	out, err := uc.Execute(ctx, "admin-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, out.GroupsProcessed)
	assert.Equal(t, 2, out.DeletedCount)

	leads, _ := repo.ListAll(ctx)
	assert.Len(t, leads, 1)
	survivor := leads[0]
	assert.Equal(t, oldest.ID, survivor.ID)
	assert.Equal(t, "Oldest", survivor.Name, "survivor keeps its own name")
	assert.Equal(t, "Kerala", survivor.State, "first loser in creation order wins the empty field")
	assert.Nil(t, survivor.NextFollowup, "loser follow-ups never land on the survivor")
}

func TestSweepIsIdempotent(t *testing.T) {
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	a := mustLead("A", "s", "9100000002", "", base)
	b := mustLead("B", "s", "9100000002", "", base.Add(time.Minute))
	repo := newFakeLeadRepo(a, b)
	uc, _, _ := newSweepUC(repo, newFakeCommentRepo())

	first, err := uc.Execute(ctx, "admin-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, first.GroupsProcessed)

	second, err := uc.Execute(ctx, "admin-1")
	assert.NoError(t, err)
	assert.Equal(t, 0, second.GroupsProcessed)
	assert.Equal(t, 0, second.DeletedCount)
	assert.Equal(t, 0, second.MergedCount)
}

func TestSweepReparentsCommentsBeforeDeleting(t *testing.T) {
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	winner := mustLead("Winner", "s", "9100000003", "", base)
	loser := mustLead("Loser", "s", "9100000003", "", base.Add(time.Minute))

	comments := newFakeCommentRepo()
	comments.add(winner.ID, "kept")
	comments.add(loser.ID, "moved 1")
	comments.add(loser.ID, "moved 2")

	repo := newFakeLeadRepo(winner, loser)
	uc, _, _ := newSweepUC(repo, comments)

	out, err := uc.Execute(ctx, "admin-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, out.DeletedCount)

	kept, _ := comments.ListByLead(ctx, winner.ID)
	assert.Len(t, kept, 3)
	orphaned, _ := comments.ListByLead(ctx, loser.ID)
	assert.Empty(t, orphaned)
}

// A lead sharing its mobile with one group and its email with another bridges
// both; the sweep must still process each physical record exactly once.
func TestSweepOverlappingGroupsProcessOnce(t *testing.T) {
	ctx := context.Background()
	base := time.Now().Add(-2 * time.Hour)

	byMobile := mustLead("Mobile", "s", "9100000004", "", base)
	bridge := mustLead("Bridge", "s", "9100000004", "bridge@example.com", base.Add(time.Minute))
	byEmail := mustLead("Email", "s", "", "bridge@example.com", base.Add(2*time.Minute))

	repo := newFakeLeadRepo(byMobile, bridge, byEmail)
	uc, _, _ := newSweepUC(repo, newFakeCommentRepo())

	out, err := uc.Execute(ctx, "admin-1")
	assert.NoError(t, err)

	leads, _ := repo.ListAll(ctx)
	assert.Len(t, leads, 2, "email group keeps its now-singleton member")
	assert.Equal(t, 1, out.GroupsProcessed)
	assert.Equal(t, 1, out.DeletedCount)

	_, err = repo.FindByID(ctx, byMobile.ID)
	assert.NoError(t, err, "earliest lead survives")
	_, err = repo.FindByID(ctx, byEmail.ID)
	assert.NoError(t, err, "already-visited member is left alone")
}

func TestSweepAdoptsAssigneeAndNotifies(t *testing.T) {
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	unassigned := mustLead("Primary", "s", "9100000005", "", base)
	assigned := mustLead("Dup", "s", "9100000005", "", base.Add(time.Minute))
	assigned.AssignedTo = "staff-1"

	repo := newFakeLeadRepo(unassigned, assigned)
	users := new(MockUserDirectory)
	users.On("FindByID", mock.Anything, "admin-1").
		Return(&entity.User{ID: "admin-1", Role: entity.RoleAdmin}, nil)

	notif := new(MockNotificationSink)
	notif.On("Notify", mock.Anything, "staff-1", mock.Anything, mock.Anything, entity.NotifyDuplicateClubbed, unassigned.ID).Return(nil).Once()
	_, audit := quietSinks()

	uc := &RunDeduplicationUseCase{
		Leads: repo, Comments: newFakeCommentRepo(), Users: users,
		Notifications: notif, Audit: audit,
	}

	out, err := uc.Execute(ctx, "admin-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, out.NotificationsSent)

	survivor, _ := repo.FindByID(ctx, unassigned.ID)
	assert.Equal(t, "staff-1", survivor.AssignedTo)
	notif.AssertExpectations(t)
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
