package entity

import "testing"

func TestDecodePayload_Onboarding(t *testing.T) {
	p, err := DecodePayload(EntityInvestorOnboarding, `{"email": "a@b.example", "full_name": "A B"}`)
	if err != nil {
		t.Fatalf("DecodePayload() error = %v", err)
	}
	if p.Onboarding == nil || p.Onboarding.Email != "a@b.example" {
		t.Errorf("payload = %+v", p.Onboarding)
	}

	if _, err := DecodePayload(EntityInvestorOnboarding, `{"full_name": "No Email"}`); err == nil {
		t.Error("DecodePayload() = nil without email")
	}
	if _, err := DecodePayload(EntityInvestorOnboarding, ""); err == nil {
		t.Error("DecodePayload() = nil without metadata")
	}
}

func TestDecodePayload_Subscription(t *testing.T) {
	p, err := DecodePayload(EntityDealSubscription, `{"vehicle_id": 3, "requested_amount": 25000, "introducer_user_id": 9}`)
	if err != nil {
		t.Fatalf("DecodePayload() error = %v", err)
	}
	if p.Subscription == nil || p.Subscription.VehicleID != 3 {
		t.Fatalf("payload = %+v", p.Subscription)
	}
	if p.Subscription.IntroducerUserID == nil || *p.Subscription.IntroducerUserID != 9 {
		t.Errorf("introducer = %v", p.Subscription.IntroducerUserID)
	}

	// Subscription metadata is optional: tickets created before vehicles
	// existed carry none.
	p, err = DecodePayload(EntityDealSubscription, "")
	if err != nil {
		t.Fatalf("DecodePayload() error = %v", err)
	}
	if p.Subscription != nil {
		t.Errorf("empty metadata produced a payload: %+v", p.Subscription)
	}
}

func TestDecodePayload_ProfileUpdate(t *testing.T) {
	p, err := DecodePayload(EntityArrangerProfileUpdate, `{"changes": {"firm_name": "New Firm"}}`)
	if err != nil {
		t.Fatalf("DecodePayload() error = %v", err)
	}
	if p.ProfileUpdate == nil || p.ProfileUpdate.Changes["firm_name"] != "New Firm" {
		t.Errorf("payload = %+v", p.ProfileUpdate)
	}

	if _, err := DecodePayload(EntityArrangerProfileUpdate, `{"changes": {}}`); err == nil {
		t.Error("DecodePayload() = nil with empty change set")
	}
}

func TestDecodePayload_TypesWithoutMetadata(t *testing.T) {
	for _, et := range []EntityType{EntityAllocation, EntityDeal, EntitySaleRequest, EntityGDPRDeletionRequest} {
		p, err := DecodePayload(et, `{"stray": true}`)
		if err != nil {
			t.Errorf("DecodePayload(%s) error = %v", et, err)
			continue
		}
		if p.Onboarding != nil || p.Subscription != nil || p.ProfileUpdate != nil || p.Invitation != nil {
			t.Errorf("DecodePayload(%s) populated a payload from ignored metadata", et)
		}
	}
}

func TestDecodePayload_MalformedJSON(t *testing.T) {
	if _, err := DecodePayload(EntityMemberInvitation, `{"email": `); err == nil {
		t.Error("DecodePayload() = nil for malformed JSON")
	}
}

func TestAnonymizedIdentifiers_Deterministic(t *testing.T) {
	if AnonymizedEmail(7) != AnonymizedEmail(7) {
		t.Error("anonymized email not deterministic")
	}
	if AnonymizedEmail(7) == AnonymizedEmail(8) {
		t.Error("anonymized emails collide across users")
	}
	if AnonymizedName(7) == "" {
		t.Error("anonymized name empty")
	}
}
