package entity

import (
	"fmt"
	"math"
	"time"
)

// EntityType selects the handler responsible for an approval ticket.
// The set is closed: the dispatcher registry refuses to start unless every
// value listed in AllEntityTypes has a registered handler.
type EntityType string

const (
	EntityAllocation              EntityType = "allocation"
	EntityInvestorOnboarding      EntityType = "investor_onboarding"
	EntityDeal                    EntityType = "deal"
	EntityDealInterest            EntityType = "deal_interest"
	EntityDealInterestNDA         EntityType = "deal_interest_nda"
	EntityDataRoomAccessExtension EntityType = "data_room_access_extension"
	EntityDealSubscription        EntityType = "deal_subscription"
	EntityDocument                EntityType = "document"
	EntityWireInstruction         EntityType = "wire_instruction"
	EntitySaleRequest             EntityType = "sale_request"
	EntityGDPRDeletionRequest     EntityType = "gdpr_deletion_request"
	EntityArrangerProfileUpdate   EntityType = "arranger_profile_update"
	EntityMemberInvitation        EntityType = "member_invitation"
)

// AllEntityTypes enumerates every ticket entity type the engine processes.
func AllEntityTypes() []EntityType {
	return []EntityType{
		EntityAllocation,
		EntityInvestorOnboarding,
		EntityDeal,
		EntityDealInterest,
		EntityDealInterestNDA,
		EntityDataRoomAccessExtension,
		EntityDealSubscription,
		EntityDocument,
		EntityWireInstruction,
		EntitySaleRequest,
		EntityGDPRDeletionRequest,
		EntityArrangerProfileUpdate,
		EntityMemberInvitation,
	}
}

// ParseEntityType validates a raw tag against the closed set.
func ParseEntityType(raw string) (EntityType, error) {
	for _, et := range AllEntityTypes() {
		if string(et) == raw {
			return et, nil
		}
	}
	return "", fmt.Errorf("unknown entity type %q", raw)
}

// Ticket status constants. Both resolved states are terminal; the only
// reverse transition is the system-initiated rollback to pending after a
// handler failure.
const (
	TicketStatusPending  = "pending"
	TicketStatusApproved = "approved"
	TicketStatusRejected = "rejected"
)

// Decision action constants.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// ApprovalTicket is the unit of work: a pending staff decision on a domain
// record, resolved at most once.
type ApprovalTicket struct {
	ID                        int64      `json:"id"`
	EntityType                EntityType `json:"entity_type"`
	EntityID                  int64      `json:"entity_id"`
	EntityMetadata            string     `json:"entity_metadata,omitempty"`
	Status                    string     `json:"status"`
	RequestedBy               *int64     `json:"requested_by,omitempty"`
	ApprovedBy                *int64     `json:"approved_by,omitempty"`
	Notes                     string     `json:"notes,omitempty"`
	RejectionReason           string     `json:"rejection_reason,omitempty"`
	ActualProcessingTimeHours *float64   `json:"actual_processing_time_hours,omitempty"`
	CreatedAt                 time.Time  `json:"created_at"`
	ApprovedAt                *time.Time `json:"approved_at,omitempty"`
	ResolvedAt                *time.Time `json:"resolved_at,omitempty"`
	UpdatedAt                 time.Time  `json:"updated_at"`
	DeletedAt                 *time.Time `json:"deleted_at,omitempty"`
}

// IsPending reports whether the ticket is still awaiting a decision.
func (t *ApprovalTicket) IsPending() bool {
	return t.Status == TicketStatusPending
}

// ProcessingHours computes the elapsed hours between ticket creation and
// resolution, rounded to two decimals.
func ProcessingHours(createdAt, resolvedAt time.Time) float64 {
	hours := resolvedAt.Sub(createdAt).Hours()
	return math.Round(hours*100) / 100
}
