package entity

import (
	"encoding/json"
	"fmt"
)

// Ticket metadata is stored as JSON but decoded into a discriminated payload
// per entity type, so handlers work with concrete fields instead of digging
// through a free-form map.

// OnboardingPayload carries the prospective account details for an
// investor_onboarding ticket.
type OnboardingPayload struct {
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
}

// SubscriptionPayload carries the submission context for a deal_subscription
// ticket.
type SubscriptionPayload struct {
	VehicleID        int64   `json:"vehicle_id"`
	RequestedAmount  float64 `json:"requested_amount"`
	IntroducerUserID *int64  `json:"introducer_user_id,omitempty"`
}

// ProfileUpdatePayload carries the requested field changes for an
// arranger_profile_update ticket. Keys are column-level field names.
type ProfileUpdatePayload struct {
	Changes map[string]string `json:"changes"`
}

// InvitationPayload carries the invitee details for a member_invitation
// ticket.
type InvitationPayload struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// TicketPayload is the union of all per-type metadata payloads. Exactly one
// field is populated, matching the ticket's entity type.
type TicketPayload struct {
	Onboarding    *OnboardingPayload
	Subscription  *SubscriptionPayload
	ProfileUpdate *ProfileUpdatePayload
	Invitation    *InvitationPayload
}

// DecodePayload parses raw ticket metadata into the payload shape for the
// given entity type. Types that carry no metadata return an empty payload;
// malformed JSON is an error for types that require one.
func DecodePayload(entityType EntityType, raw string) (*TicketPayload, error) {
	p := &TicketPayload{}
	if raw == "" {
		switch entityType {
		case EntityInvestorOnboarding, EntityArrangerProfileUpdate, EntityMemberInvitation:
			return nil, fmt.Errorf("entity type %s requires metadata", entityType)
		default:
			return p, nil
		}
	}

	switch entityType {
	case EntityInvestorOnboarding:
		var v OnboardingPayload
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("decode onboarding payload: %w", err)
		}
		if v.Email == "" {
			return nil, fmt.Errorf("onboarding payload missing email")
		}
		p.Onboarding = &v
	case EntityDealSubscription:
		var v SubscriptionPayload
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("decode subscription payload: %w", err)
		}
		p.Subscription = &v
	case EntityArrangerProfileUpdate:
		var v ProfileUpdatePayload
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("decode profile update payload: %w", err)
		}
		if len(v.Changes) == 0 {
			return nil, fmt.Errorf("profile update payload has no changes")
		}
		p.ProfileUpdate = &v
	case EntityMemberInvitation:
		var v InvitationPayload
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("decode invitation payload: %w", err)
		}
		p.Invitation = &v
	default:
		// Remaining types ignore metadata entirely.
	}

	return p, nil
}
