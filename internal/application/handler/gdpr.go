package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/crestbridge/ir-portal/internal/application/dispatcher"
	"github.com/crestbridge/ir-portal/internal/application/port"
	"github.com/crestbridge/ir-portal/internal/domain/entity"
)

// GDPRHandler implements right-to-erasure. It anonymizes the portal account
// and any linked investor record, purges the user's notifications and flags
// their audit trail as anonymized. The handler is irreversible: once any
// anonymization has committed there is no meaningful rollback, so the
// coordinator never returns these tickets to pending.
type GDPRHandler struct {
	userRepo         port.UserRepository
	investorRepo     port.InvestorRepository
	notificationRepo port.NotificationRepository
	auditRepo        port.AuditRepository
	txManager        port.TransactionManager
	logger           Logger
}

// NewGDPRHandler creates the gdpr_deletion_request handler.
func NewGDPRHandler(
	userRepo port.UserRepository,
	investorRepo port.InvestorRepository,
	notificationRepo port.NotificationRepository,
	auditRepo port.AuditRepository,
	txManager port.TransactionManager,
	logger Logger,
) *GDPRHandler {
	return &GDPRHandler{
		userRepo:         userRepo,
		investorRepo:     investorRepo,
		notificationRepo: notificationRepo,
		auditRepo:        auditRepo,
		txManager:        txManager,
		logger:           logger,
	}
}

// Approve anonymizes the subject user. The ticket's entity id is the user id.
func (h *GDPRHandler) Approve(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) (*dispatcher.Outcome, error) {
	user, err := h.userRepo.GetByID(ctx, ticket.EntityID)
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", ticket.EntityID, err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d not found", ticket.EntityID)
	}

	now := time.Now()
	var purged int64

	err = h.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := h.userRepo.Anonymize(txCtx, user.ID, entity.AnonymizedEmail(user.ID), entity.AnonymizedName(user.ID), now); err != nil {
			return fmt.Errorf("anonymize user: %w", err)
		}

		investor, err := h.investorRepo.GetByUserID(txCtx, user.ID)
		if err != nil {
			return fmt.Errorf("load linked investor: %w", err)
		}
		if investor != nil {
			if err := h.investorRepo.Anonymize(txCtx, investor.ID, entity.AnonymizedEmail(user.ID), entity.AnonymizedName(user.ID), now); err != nil {
				return fmt.Errorf("anonymize investor: %w", err)
			}
		}

		purged, err = h.notificationRepo.PurgeForUser(txCtx, user.ID)
		if err != nil {
			return fmt.Errorf("purge notifications: %w", err)
		}

		if _, err := h.auditRepo.MarkAnonymizedForActor(txCtx, user.ID); err != nil {
			return fmt.Errorf("flag audit entries: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("Erasure applied",
		"user_id", user.ID,
		"notifications_purged", purged,
	)

	return &dispatcher.Outcome{
		AuditAction: entity.AuditActionErasure,
		NotificationData: map[string]interface{}{
			"user_id": user.ID,
		},
	}, nil
}

// Reject leaves the subject untouched; only the ticket records the refusal.
func (h *GDPRHandler) Reject(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) error {
	return nil
}

// Irreversible reports true: anonymization cannot be compensated.
func (h *GDPRHandler) Irreversible() bool { return true }
