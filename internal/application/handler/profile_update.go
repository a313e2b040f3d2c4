package handler

import (
	"context"
	"fmt"

	"github.com/crestbridge/ir-portal/internal/application/dispatcher"
	"github.com/crestbridge/ir-portal/internal/application/port"
	"github.com/crestbridge/ir-portal/internal/domain/entity"
)

// ProfileUpdateHandler applies staff-approved field changes to an arranger
// profile. The requested changes travel in the ticket payload; the repository
// enforces the field whitelist.
type ProfileUpdateHandler struct {
	profileRepo port.ProfileRepository
	logger      Logger
}

// NewProfileUpdateHandler creates the arranger_profile_update handler.
func NewProfileUpdateHandler(profileRepo port.ProfileRepository, logger Logger) *ProfileUpdateHandler {
	return &ProfileUpdateHandler{
		profileRepo: profileRepo,
		logger:      logger,
	}
}

// Approve applies the requested changes to the profile.
func (h *ProfileUpdateHandler) Approve(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) (*dispatcher.Outcome, error) {
	payload, err := entity.DecodePayload(ticket.EntityType, ticket.EntityMetadata)
	if err != nil {
		return nil, err
	}

	profile, err := h.profileRepo.GetByID(ctx, ticket.EntityID)
	if err != nil {
		return nil, fmt.Errorf("load profile %d: %w", ticket.EntityID, err)
	}
	if profile == nil {
		return nil, fmt.Errorf("profile %d not found", ticket.EntityID)
	}

	if err := h.profileRepo.ApplyChanges(ctx, profile.ID, payload.ProfileUpdate.Changes); err != nil {
		return nil, fmt.Errorf("apply profile changes: %w", err)
	}

	h.logger.Info("Profile changes applied",
		"profile_id", profile.ID,
		"field_count", len(payload.ProfileUpdate.Changes),
	)

	return &dispatcher.Outcome{
		NotificationData: map[string]interface{}{
			"profile_id":     profile.ID,
			"fields_changed": len(payload.ProfileUpdate.Changes),
		},
	}, nil
}

// Reject discards the requested changes; nothing was applied.
func (h *ProfileUpdateHandler) Reject(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) error {
	return nil
}

// Irreversible reports false.
func (h *ProfileUpdateHandler) Irreversible() bool { return false }
