package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crestbridge/ir-portal/internal/application/dispatcher"
	"github.com/crestbridge/ir-portal/internal/application/port"
	"github.com/crestbridge/ir-portal/internal/domain/entity"
	"github.com/crestbridge/ir-portal/pkg/utils"
)

// OnboardingHandler finalizes investor KYC onboarding. Approval updates the
// KYC status and, when no portal account exists for the prospective email,
// provisions one with a temporary credential flagged for reset and links it
// to the investor.
type OnboardingHandler struct {
	investorRepo port.InvestorRepository
	userRepo     port.UserRepository
	txManager    port.TransactionManager
	logger       Logger
}

// NewOnboardingHandler creates the investor_onboarding handler.
func NewOnboardingHandler(
	investorRepo port.InvestorRepository,
	userRepo port.UserRepository,
	txManager port.TransactionManager,
	logger Logger,
) *OnboardingHandler {
	return &OnboardingHandler{
		investorRepo: investorRepo,
		userRepo:     userRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// Approve marks the investor's KYC approved and provisions a linked portal
// account if one does not already exist for the payload email.
func (h *OnboardingHandler) Approve(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) (*dispatcher.Outcome, error) {
	payload, err := entity.DecodePayload(ticket.EntityType, ticket.EntityMetadata)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateEmail(payload.Onboarding.Email); err != nil {
		return nil, fmt.Errorf("onboarding payload: %w", err)
	}

	investor, err := h.investorRepo.GetByID(ctx, ticket.EntityID)
	if err != nil {
		return nil, fmt.Errorf("load investor %d: %w", ticket.EntityID, err)
	}
	if investor == nil {
		return nil, fmt.Errorf("investor %d not found", ticket.EntityID)
	}

	upd := port.StatusUpdate{
		Status:  entity.KYCStatusApproved,
		ActorID: actor.ID,
		At:      time.Now(),
	}
	if err := h.investorRepo.SetKYCStatus(ctx, investor.ID, upd); err != nil {
		return nil, fmt.Errorf("set kyc status: %w", err)
	}

	user, err := h.userRepo.GetByEmail(ctx, payload.Onboarding.Email)
	if err != nil {
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	provisioned := false
	if user == nil {
		user = &entity.User{
			Email:             payload.Onboarding.Email,
			FullName:          payload.Onboarding.FullName,
			IsActive:          true,
			MustResetPassword: true,
			PasswordHash:      uuid.NewString(),
		}
		err = h.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
			if err := h.userRepo.Create(txCtx, user); err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			if err := h.investorRepo.LinkUser(txCtx, investor.ID, user.ID); err != nil {
				return fmt.Errorf("link user: %w", err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		provisioned = true
		h.logger.Info("Provisioned portal account for investor",
			"investor_id", investor.ID, "user_id", user.ID)
	} else if investor.UserID == nil {
		if err := h.investorRepo.LinkUser(ctx, investor.ID, user.ID); err != nil {
			return nil, fmt.Errorf("link existing user: %w", err)
		}
	}

	return &dispatcher.Outcome{
		NotificationData: map[string]interface{}{
			"investor_id":      investor.ID,
			"user_id":          user.ID,
			"user_provisioned": provisioned,
		},
	}, nil
}

// Reject marks the investor's KYC rejected.
func (h *OnboardingHandler) Reject(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) error {
	upd := port.StatusUpdate{
		Status:  entity.KYCStatusRejected,
		ActorID: actor.ID,
		At:      time.Now(),
	}
	if err := h.investorRepo.SetKYCStatus(ctx, ticket.EntityID, upd); err != nil {
		return fmt.Errorf("reject onboarding %d: %w", ticket.EntityID, err)
	}
	return nil
}

// Irreversible reports false.
func (h *OnboardingHandler) Irreversible() bool { return false }
