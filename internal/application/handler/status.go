package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/crestbridge/ir-portal/internal/application/dispatcher"
	"github.com/crestbridge/ir-portal/internal/application/port"
	"github.com/crestbridge/ir-portal/internal/domain/entity"
)

// StatusHandler decides records whose approval is a single status flip with
// actor and timestamp: allocations, deals, documents, wire instructions and
// sale requests.
type StatusHandler struct {
	name   string
	store  statusStore
	logger Logger
}

// NewStatusHandler creates a status-flip handler over the given store.
func NewStatusHandler(name string, store statusStore, logger Logger) *StatusHandler {
	return &StatusHandler{
		name:   name,
		store:  store,
		logger: logger,
	}
}

// Approve flips the record to APPROVED. The update is the core domain
// mutation: its failure is fatal and triggers the coordinator's rollback.
func (h *StatusHandler) Approve(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) (*dispatcher.Outcome, error) {
	upd := port.StatusUpdate{
		Status:  entity.RecordStatusApproved,
		ActorID: actor.ID,
		At:      time.Now(),
	}
	if err := h.store.SetStatus(ctx, ticket.EntityID, upd); err != nil {
		return nil, fmt.Errorf("approve %s %d: %w", h.name, ticket.EntityID, err)
	}

	h.logger.Info("Record approved", "handler", h.name, "entity_id", ticket.EntityID, "actor_id", actor.ID)
	return &dispatcher.Outcome{
		NotificationData: map[string]interface{}{
			"entity_id": ticket.EntityID,
			"status":    entity.RecordStatusApproved,
		},
	}, nil
}

// Reject flips the record to REJECTED.
func (h *StatusHandler) Reject(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) error {
	upd := port.StatusUpdate{
		Status:  entity.RecordStatusRejected,
		ActorID: actor.ID,
		At:      time.Now(),
	}
	if err := h.store.SetStatus(ctx, ticket.EntityID, upd); err != nil {
		return fmt.Errorf("reject %s %d: %w", h.name, ticket.EntityID, err)
	}
	return nil
}

// Irreversible reports false: a status flip is always compensatable.
func (h *StatusHandler) Irreversible() bool { return false }
