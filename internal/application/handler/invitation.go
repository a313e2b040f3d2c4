package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/crestbridge/ir-portal/internal/application/dispatcher"
	"github.com/crestbridge/ir-portal/internal/application/port"
	"github.com/crestbridge/ir-portal/internal/domain/entity"
)

// invitationWindow is the fresh acceptance window granted on approval.
const invitationWindow = 7 * 24 * time.Hour

// InvitationHandler promotes member invitations to ready-for-acceptance,
// extends their expiry and sends the transactional invitation email. The
// email is downstream orchestration and degrades on failure.
type InvitationHandler struct {
	invitationRepo port.InvitationRepository
	mailer         port.EmailSender
	logger         Logger
}

// NewInvitationHandler creates the member_invitation handler.
func NewInvitationHandler(invitationRepo port.InvitationRepository, mailer port.EmailSender, logger Logger) *InvitationHandler {
	return &InvitationHandler{
		invitationRepo: invitationRepo,
		mailer:         mailer,
		logger:         logger,
	}
}

// Approve promotes the invitation and emails the invitee.
func (h *InvitationHandler) Approve(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) (*dispatcher.Outcome, error) {
	invitation, err := h.invitationRepo.GetByID(ctx, ticket.EntityID)
	if err != nil {
		return nil, fmt.Errorf("load invitation %d: %w", ticket.EntityID, err)
	}
	if invitation == nil {
		return nil, fmt.Errorf("invitation %d not found", ticket.EntityID)
	}

	now := time.Now()
	expiresAt := now.Add(invitationWindow)
	upd := port.StatusUpdate{Status: entity.InvitationStatusReady, ActorID: actor.ID, At: now}
	if err := h.invitationRepo.SetStatus(ctx, invitation.ID, upd, &expiresAt); err != nil {
		return nil, fmt.Errorf("promote invitation %d: %w", invitation.ID, err)
	}

	subject := "Your invitation to the investor portal"
	body := fmt.Sprintf(
		"Your invitation has been approved. You can accept it until %s.",
		expiresAt.Format(time.RFC1123),
	)
	if err := h.mailer.Send(ctx, invitation.Email, subject, body); err != nil {
		h.logger.Error("Invitation email failed", "invitation_id", invitation.ID, "error", err)
	}

	return &dispatcher.Outcome{
		NotificationData: map[string]interface{}{
			"invitation_id": invitation.ID,
			"expires_at":    expiresAt,
		},
	}, nil
}

// Reject declines the invitation.
func (h *InvitationHandler) Reject(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) error {
	upd := port.StatusUpdate{
		Status:  entity.InvitationStatusDeclined,
		ActorID: actor.ID,
		At:      time.Now(),
	}
	if err := h.invitationRepo.SetStatus(ctx, ticket.EntityID, upd, nil); err != nil {
		return fmt.Errorf("decline invitation %d: %w", ticket.EntityID, err)
	}
	return nil
}

// Irreversible reports false.
func (h *InvitationHandler) Irreversible() bool { return false }
