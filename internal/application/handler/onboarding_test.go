package handler

import (
	"context"
	"testing"

	"github.com/crestbridge/ir-portal/internal/domain/entity"
)

func onboardingTicket(metadata string) *entity.ApprovalTicket {
	return &entity.ApprovalTicket{
		ID:             1,
		EntityType:     entity.EntityInvestorOnboarding,
		EntityID:       50,
		EntityMetadata: metadata,
	}
}

func TestOnboardingApprove_ProvisionsPortalAccount(t *testing.T) {
	investorRepo := &mockInvestorRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Investor, error) {
			return &entity.Investor{ID: id, Email: "new@investor.example"}, nil
		},
	}
	userRepo := &mockUserRepo{}
	h := NewOnboardingHandler(investorRepo, userRepo, &mockTxManager{}, noopLogger{})

	ticket := onboardingTicket(`{"email": "new@investor.example", "full_name": "New Investor"}`)
	outcome, err := h.Approve(context.Background(), ticket, &entity.User{ID: 2})
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	if len(investorRepo.kycCalls) != 1 || investorRepo.kycCalls[0].upd.Status != entity.KYCStatusApproved {
		t.Errorf("kyc calls = %+v", investorRepo.kycCalls)
	}

	if len(userRepo.created) != 1 {
		t.Fatalf("created %d users, want 1", len(userRepo.created))
	}
	user := userRepo.created[0]
	if user.Email != "new@investor.example" || user.FullName != "New Investor" {
		t.Errorf("provisioned user = %+v", user)
	}
	if !user.MustResetPassword {
		t.Error("provisioned user must be flagged for password reset")
	}
	if !user.IsActive || user.IsStaff {
		t.Errorf("provisioned user flags = active:%v staff:%v", user.IsActive, user.IsStaff)
	}

	if len(investorRepo.links) != 1 || investorRepo.links[0].userID != user.ID {
		t.Errorf("link calls = %+v", investorRepo.links)
	}
	if outcome.NotificationData["user_provisioned"] != true {
		t.Errorf("outcome = %v", outcome.NotificationData)
	}
}

func TestOnboardingApprove_LinksExistingAccount(t *testing.T) {
	investorRepo := &mockInvestorRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Investor, error) {
			return &entity.Investor{ID: id}, nil
		},
	}
	userRepo := &mockUserRepo{
		getByEmailFunc: func(ctx context.Context, email string) (*entity.User, error) {
			return &entity.User{ID: 33, Email: email}, nil
		},
	}
	h := NewOnboardingHandler(investorRepo, userRepo, &mockTxManager{}, noopLogger{})

	ticket := onboardingTicket(`{"email": "existing@investor.example"}`)
	outcome, err := h.Approve(context.Background(), ticket, &entity.User{ID: 2})
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	if len(userRepo.created) != 0 {
		t.Error("no account should be provisioned when one exists")
	}
	if len(investorRepo.links) != 1 || investorRepo.links[0].userID != 33 {
		t.Errorf("link calls = %+v", investorRepo.links)
	}
	if outcome.NotificationData["user_provisioned"] != false {
		t.Errorf("outcome = %v", outcome.NotificationData)
	}
}

func TestOnboardingApprove_AlreadyLinkedInvestorSkipsLink(t *testing.T) {
	linkedUserID := int64(33)
	investorRepo := &mockInvestorRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Investor, error) {
			return &entity.Investor{ID: id, UserID: &linkedUserID}, nil
		},
	}
	userRepo := &mockUserRepo{
		getByEmailFunc: func(ctx context.Context, email string) (*entity.User, error) {
			return &entity.User{ID: linkedUserID, Email: email}, nil
		},
	}
	h := NewOnboardingHandler(investorRepo, userRepo, &mockTxManager{}, noopLogger{})

	ticket := onboardingTicket(`{"email": "existing@investor.example"}`)
	if _, err := h.Approve(context.Background(), ticket, &entity.User{ID: 2}); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if len(investorRepo.links) != 0 {
		t.Errorf("link calls = %+v, want none", investorRepo.links)
	}
}

func TestOnboardingApprove_PayloadValidation(t *testing.T) {
	h := NewOnboardingHandler(&mockInvestorRepo{}, &mockUserRepo{}, &mockTxManager{}, noopLogger{})

	tests := []struct {
		name     string
		metadata string
	}{
		{"missing metadata", ""},
		{"missing email", `{"full_name": "No Email"}`},
		{"malformed email", `{"email": "not-an-email"}`},
		{"malformed json", `{"email": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := h.Approve(context.Background(), onboardingTicket(tt.metadata), &entity.User{ID: 2}); err == nil {
				t.Error("Approve() = nil, want payload error")
			}
		})
	}
}

func TestOnboardingReject_MarksKYCRejected(t *testing.T) {
	investorRepo := &mockInvestorRepo{}
	h := NewOnboardingHandler(investorRepo, &mockUserRepo{}, &mockTxManager{}, noopLogger{})

	ticket := onboardingTicket(`{"email": "new@investor.example"}`)
	if err := h.Reject(context.Background(), ticket, &entity.User{ID: 2}); err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if len(investorRepo.kycCalls) != 1 || investorRepo.kycCalls[0].upd.Status != entity.KYCStatusRejected {
		t.Errorf("kyc calls = %+v", investorRepo.kycCalls)
	}
}
