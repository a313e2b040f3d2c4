package port

import (
	"context"
	"time"

	"github.com/crestbridge/ir-portal/internal/domain/entity"
)

// TicketResolution carries the fields written by the conditional status
// update that claims a pending ticket.
type TicketResolution struct {
	Status          string
	ActorID         int64
	Notes           string
	RejectionReason string
	ResolvedAt      time.Time
	ProcessingHours float64
}

// TicketRepository defines persistence operations for ApprovalTicket.
//
// ClaimPending and ReturnToPending are single conditional updates guarded by
// the current status; they report false when zero rows matched, which means a
// concurrent writer got there first. This is the engine's only concurrency
// control.
type TicketRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.ApprovalTicket, error)
	ClaimPending(ctx context.Context, id int64, res TicketResolution) (bool, error)
	ReturnToPending(ctx context.Context, id int64, annotation string) (bool, error)
	SoftDelete(ctx context.Context, id int64, at time.Time) error
	List(ctx context.Context, status string, limit, offset int) ([]*entity.ApprovalTicket, error)
	ListResolvedBetween(ctx context.Context, from, to time.Time) ([]*entity.ApprovalTicket, error)
}

// StatusUpdate carries the actor/timestamp pair stamped onto a domain record
// when its ticket is decided.
type StatusUpdate struct {
	Status  string
	ActorID int64
	At      time.Time
}

// AllocationRepository defines persistence operations for Allocation.
type AllocationRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Allocation, error)
	SetStatus(ctx context.Context, id int64, upd StatusUpdate) error
}

// DealRepository defines persistence operations for Deal.
type DealRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Deal, error)
	SetStatus(ctx context.Context, id int64, upd StatusUpdate) error
}

// InterestRepository defines persistence operations for DealInterest.
type InterestRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.DealInterest, error)
	SetStatus(ctx context.Context, id int64, upd StatusUpdate) error
}

// AccessRepository defines persistence operations for DataRoomAccess.
type AccessRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.DataRoomAccess, error)
	SetExpiry(ctx context.Context, id int64, expiresAt time.Time) error
}

// SubmissionRepository defines persistence operations for DealSubmission.
type SubmissionRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.DealSubmission, error)
	SetStatus(ctx context.Context, id int64, upd StatusUpdate) error
}

// SubscriptionRepository defines persistence operations for Subscription.
// FindOrCreate relies on the unique (investor_id, deal_id, vehicle_id)
// constraint: on a conflicting insert it re-reads and returns the existing
// row with created=false.
type SubscriptionRepository interface {
	FindOrCreate(ctx context.Context, sub *entity.Subscription) (*entity.Subscription, bool, error)
	GetByID(ctx context.Context, id int64) (*entity.Subscription, error)
}

// FeePlanRepository defines persistence operations for FeePlan.
type FeePlanRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.FeePlan, error)
}

// ValuationRepository defines persistence operations for Valuation.
type ValuationRepository interface {
	LatestForDeal(ctx context.Context, dealID int64) (*entity.Valuation, error)
}

// ReferralRepository resolves introducer links for subscription attribution.
type ReferralRepository interface {
	ActiveIntroducerForInvestor(ctx context.Context, investorID int64) (*int64, error)
}

// SignatureRequestRepository defines persistence operations for
// SignatureRequest.
type SignatureRequestRepository interface {
	Create(ctx context.Context, req *entity.SignatureRequest) error
}

// DocumentRepository defines persistence operations for Document.
type DocumentRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Document, error)
	Create(ctx context.Context, doc *entity.Document) error
	SetStatus(ctx context.Context, id int64, upd StatusUpdate) error
}

// WireInstructionRepository defines persistence operations for
// WireInstruction.
type WireInstructionRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.WireInstruction, error)
	SetStatus(ctx context.Context, id int64, upd StatusUpdate) error
}

// SaleRequestRepository defines persistence operations for SaleRequest.
type SaleRequestRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.SaleRequest, error)
	SetStatus(ctx context.Context, id int64, upd StatusUpdate) error
}

// InvestorRepository defines persistence operations for Investor.
type InvestorRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Investor, error)
	GetByUserID(ctx context.Context, userID int64) (*entity.Investor, error)
	SetKYCStatus(ctx context.Context, id int64, upd StatusUpdate) error
	LinkUser(ctx context.Context, investorID, userID int64) error
	Anonymize(ctx context.Context, id int64, email, legalName string, at time.Time) error
}

// UserRepository defines persistence operations for User.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Create(ctx context.Context, user *entity.User) error
	Anonymize(ctx context.Context, id int64, email, fullName string, at time.Time) error
}

// InvitationRepository defines persistence operations for MemberInvitation.
type InvitationRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.MemberInvitation, error)
	SetStatus(ctx context.Context, id int64, upd StatusUpdate, expiresAt *time.Time) error
}

// ProfileRepository defines persistence operations for ArrangerProfile.
// ApplyChanges accepts only whitelisted field names.
type ProfileRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.ArrangerProfile, error)
	ApplyChanges(ctx context.Context, id int64, changes map[string]string) error
}

// NotificationRepository defines persistence operations for Notification.
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	PurgeForUser(ctx context.Context, userID int64) (int64, error)
}

// AuditRepository defines persistence operations for AuditEntry.
type AuditRepository interface {
	Create(ctx context.Context, e *entity.AuditEntry) error
	MarkAnonymizedForActor(ctx context.Context, actorUserID int64) (int64, error)
}

// TransactionManager handles database transactions.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
