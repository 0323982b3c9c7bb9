package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/pharma-crm/internal/entity"
)

type LeadRepositoryInterface interface {
	FindByID(ctx context.Context, id string) (*entity.Lead, error)
	// FindByMobile / FindByEmail return (nil, nil) when no row matches.
	FindByMobile(ctx context.Context, mobileNo string) (*entity.Lead, error)
	FindByEmail(ctx context.Context, email string) (*entity.Lead, error)
	// Insert returns entity.ErrDuplicateLead when the unique mobile/email
	// indexes reject the row (two racers, one winner).
	Insert(ctx context.Context, lead *entity.Lead) error
	Patch(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	// ListAll returns every lead ordered by creation time.
	ListAll(ctx context.Context) ([]*entity.Lead, error)
	ListDueFollowups(ctx context.Context, due time.Time) ([]*entity.Lead, error)
}

type CommentRepositoryInterface interface {
	ListByLead(ctx context.Context, leadID string) ([]*entity.Comment, error)
	// Reparent moves every comment of fromLeadID to toLeadID and reports how
	// many moved.
	Reparent(ctx context.Context, fromLeadID, toLeadID string) (int64, error)
}

// NotificationSink is fire-and-forget from the engine's point of view; the
// engine routes calls through the side-effect runner and never fails on it.
type NotificationSink interface {
	Notify(ctx context.Context, userID, title, message, ntype, leadID string) error
}

// AuditLogSink is append-only and best-effort.
type AuditLogSink interface {
	Append(ctx context.Context, actorID, action, details, leadID string) error
}

type UserDirectoryInterface interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
	ListElevated(ctx context.Context) ([]*entity.User, error)
}

type PincodeLookupInterface interface {
	// Resolve returns (nil, nil) when no mapping exists for the pincode.
	Resolve(ctx context.Context, pincode string) (*entity.PincodeMapping, error)
}

// IngestExecutor lets the batch entry points (bulk import, webhook, feed
// poller) delegate to the pairwise merge engine.
type IngestExecutor interface {
	Execute(ctx context.Context, input IngestLeadInput) (*IngestLeadOutput, error)
}
