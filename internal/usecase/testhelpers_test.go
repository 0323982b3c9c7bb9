package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/pharma-crm/internal/entity"
	"github.com/xavierca1/pharma-crm/internal/infra/queue"
)

// fakeLeadRepo is an in-memory stand-in with the same contract as the
// Postgres repository, including the unique mobile/email rejection.
type fakeLeadRepo struct {
	leads map[string]*entity.Lead
}

func newFakeLeadRepo(seed ...*entity.Lead) *fakeLeadRepo {
	r := &fakeLeadRepo{leads: map[string]*entity.Lead{}}
	for _, lead := range seed {
		r.leads[lead.ID] = lead
	}
	return r
}

func (r *fakeLeadRepo) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	if lead, ok := r.leads[id]; ok {
		return lead, nil
	}
	return nil, entity.ErrLeadNotFound
}

func (r *fakeLeadRepo) FindByMobile(ctx context.Context, mobileNo string) (*entity.Lead, error) {
	if mobileNo == "" {
		return nil, nil
	}
	for _, lead := range r.sorted() {
		if lead.MobileNo == mobileNo {
			return lead, nil
		}
	}
	return nil, nil
}

func (r *fakeLeadRepo) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	if email == "" {
		return nil, nil
	}
	for _, lead := range r.sorted() {
		if lead.Email == email {
			return lead, nil
		}
	}
	return nil, nil
}

func (r *fakeLeadRepo) Insert(ctx context.Context, lead *entity.Lead) error {
	for _, existing := range r.leads {
		if (lead.MobileNo != "" && existing.MobileNo == lead.MobileNo) ||
			(lead.Email != "" && existing.Email == lead.Email) {
			return entity.ErrDuplicateLead
		}
	}
	r.leads[lead.ID] = lead
	return nil
}

func (r *fakeLeadRepo) Patch(ctx context.Context, id string, fields map[string]interface{}) error {
	lead, ok := r.leads[id]
	if !ok {
		return entity.ErrLeadNotFound
	}
	for field, value := range fields {
		switch field {
		case "assigned_to":
			lead.AssignedTo = value.(string)
		case "status":
			lead.Status = value.(string)
		case "heat":
			lead.Heat = value.(string)
		case "next_followup":
			if value == nil {
				lead.NextFollowup = nil
			} else {
				t := value.(time.Time)
				lead.NextFollowup = &t
			}
		default:
			lead.SetFieldValue(field, value.(string))
		}
	}
	lead.UpdatedAt = time.Now()
	return nil
}

func (r *fakeLeadRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.leads[id]; !ok {
		return entity.ErrLeadNotFound
	}
	delete(r.leads, id)
	return nil
}

func (r *fakeLeadRepo) ListAll(ctx context.Context) ([]*entity.Lead, error) {
	return r.sorted(), nil
}

func (r *fakeLeadRepo) ListDueFollowups(ctx context.Context, due time.Time) ([]*entity.Lead, error) {
	var out []*entity.Lead
	for _, lead := range r.sorted() {
		if lead.NextFollowup != nil && !lead.NextFollowup.After(due) &&
			lead.AssignedTo != "" && lead.Status != entity.StatusNotRelevant {
			out = append(out, lead)
		}
	}
	return out, nil
}

// sorted mirrors the repository's ORDER BY created_at, id.
func (r *fakeLeadRepo) sorted() []*entity.Lead {
	out := make([]*entity.Lead, 0, len(r.leads))
	for _, lead := range r.leads {
		out = append(out, lead)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// fakeCommentRepo keeps comments per lead and supports the merge reparent.
type fakeCommentRepo struct {
	comments map[string][]*entity.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: map[string][]*entity.Comment{}}
}

func (r *fakeCommentRepo) add(leadID, body string) {
	r.comments[leadID] = append(r.comments[leadID], entity.NewComment(leadID, "author", body))
}

func (r *fakeCommentRepo) ListByLead(ctx context.Context, leadID string) ([]*entity.Comment, error) {
	return r.comments[leadID], nil
}

func (r *fakeCommentRepo) Reparent(ctx context.Context, fromLeadID, toLeadID string) (int64, error) {
	moved := r.comments[fromLeadID]
	for _, c := range moved {
		c.LeadID = toLeadID
	}
	r.comments[toLeadID] = append(r.comments[toLeadID], moved...)
	delete(r.comments, fromLeadID)
	return int64(len(moved)), nil
}

type MockNotificationSink struct {
	mock.Mock
}

func (m *MockNotificationSink) Notify(ctx context.Context, userID, title, message, ntype, leadID string) error {
	args := m.Called(ctx, userID, title, message, ntype, leadID)
	return args.Error(0)
}

type MockAuditSink struct {
	mock.Mock
}

func (m *MockAuditSink) Append(ctx context.Context, actorID, action, details, leadID string) error {
	args := m.Called(ctx, actorID, action, details, leadID)
	return args.Error(0)
}

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) FindByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserDirectory) ListElevated(ctx context.Context) ([]*entity.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.User), args.Error(1)
}

type MockWelcomeQueue struct {
	mock.Mock
}

func (m *MockWelcomeQueue) PublishWelcomeEmail(ctx context.Context, payload queue.WelcomeEmailPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

type MockPincodeLookup struct {
	mock.Mock
}

func (m *MockPincodeLookup) Resolve(ctx context.Context, pincode string) (*entity.PincodeMapping, error) {
	args := m.Called(ctx, pincode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PincodeMapping), args.Error(1)
}

// quiet sinks for tests that do not assert on notifications/audit.
func quietSinks() (*MockNotificationSink, *MockAuditSink) {
	notif := new(MockNotificationSink)
	notif.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	audit := new(MockAuditSink)
	audit.On("Append", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return notif, audit
}

func quietQueue() *MockWelcomeQueue {
	q := new(MockWelcomeQueue)
	q.On("PublishWelcomeEmail", mock.Anything, mock.Anything).Return(nil).Maybe()
	return q
}

func mustLead(name, subject, mobileNo, email string, createdAt time.Time) *entity.Lead {
	lead, err := entity.NewLead(name, subject, "", mobileNo, email)
	if err != nil {
		panic(err)
	}
	lead.CreatedAt = createdAt
	lead.UpdatedAt = createdAt
	return lead
}
