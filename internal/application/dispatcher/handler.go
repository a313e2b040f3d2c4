package dispatcher

import (
	"context"

	"github.com/crestbridge/ir-portal/internal/domain/entity"
)

// Outcome is what a handler hands back to the coordinator on a successful
// approval. NotificationData flows through to the requester notification and
// the API response; AuditAction, when set, replaces the default audit action
// for the ticket.
type Outcome struct {
	NotificationData map[string]interface{}
	AuditAction      string
}

// Handler performs the entity-specific side effects of a decision. Approve
// runs with the ticket already claimed by the conditional update, so the
// handler holds exclusive logical ownership of it. Reject is best-effort:
// its errors are logged but never abort the rejection.
//
// Irreversible marks handlers whose effects cannot be compensated (GDPR
// erasure). The coordinator never rolls a ticket back to pending after such
// a handler has run.
type Handler interface {
	Approve(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) (*Outcome, error)
	Reject(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) error
	Irreversible() bool
}

// HandlerInfo contains handler metadata for diagnostics.
type HandlerInfo struct {
	Name       string
	EntityType entity.EntityType
	Handler    Handler
}
