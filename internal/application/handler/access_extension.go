package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/crestbridge/ir-portal/internal/application/dispatcher"
	"github.com/crestbridge/ir-portal/internal/application/port"
	"github.com/crestbridge/ir-portal/internal/domain/entity"
)

// extensionWindow is the grant added to a data room access on approval.
const extensionWindow = 7 * 24 * time.Hour

// AccessExtensionHandler extends data-room access grants. The new expiry is
// computed from the grant's current expiry, not from the approval time, so a
// slow approval never shortens the effective extension.
type AccessExtensionHandler struct {
	accessRepo port.AccessRepository
	logger     Logger
}

// NewAccessExtensionHandler creates the data_room_access_extension handler.
func NewAccessExtensionHandler(accessRepo port.AccessRepository, logger Logger) *AccessExtensionHandler {
	return &AccessExtensionHandler{
		accessRepo: accessRepo,
		logger:     logger,
	}
}

// Approve pushes the access expiry out by the extension window.
func (h *AccessExtensionHandler) Approve(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) (*dispatcher.Outcome, error) {
	access, err := h.accessRepo.GetByID(ctx, ticket.EntityID)
	if err != nil {
		return nil, fmt.Errorf("load access grant %d: %w", ticket.EntityID, err)
	}
	if access == nil {
		return nil, fmt.Errorf("access grant %d not found", ticket.EntityID)
	}

	newExpiry := access.ExpiresAt.Add(extensionWindow)
	if err := h.accessRepo.SetExpiry(ctx, access.ID, newExpiry); err != nil {
		return nil, fmt.Errorf("extend access grant %d: %w", access.ID, err)
	}

	h.logger.Info("Data room access extended",
		"access_id", access.ID,
		"previous_expiry", access.ExpiresAt,
		"new_expiry", newExpiry,
	)

	return &dispatcher.Outcome{
		NotificationData: map[string]interface{}{
			"access_id":  access.ID,
			"expires_at": newExpiry,
		},
	}, nil
}

// Reject leaves the grant untouched; the declined ticket is the only record
// of the request.
func (h *AccessExtensionHandler) Reject(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) error {
	return nil
}

// Irreversible reports false.
func (h *AccessExtensionHandler) Irreversible() bool { return false }
