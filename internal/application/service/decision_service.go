package service

import (
	"context"
	"fmt"
	"time"

	"github.com/crestbridge/ir-portal/internal/application/dispatcher"
	"github.com/crestbridge/ir-portal/internal/application/port"
	"github.com/crestbridge/ir-portal/internal/domain/approval"
	"github.com/crestbridge/ir-portal/internal/domain/entity"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// DecideRequest is a staff decision on a pending ticket. The actor has
// already been authenticated and capability-checked by the transport layer.
type DecideRequest struct {
	TicketID        int64
	Action          string
	Notes           string
	RejectionReason string
	Actor           *entity.User
}

// DecideResult is the structured outcome returned to the caller.
type DecideResult struct {
	Success          bool                   `json:"success"`
	Message          string                 `json:"message,omitempty"`
	NotificationData map[string]interface{} `json:"notification_data,omitempty"`
}

// DecisionService finalizes staff decisions on approval tickets.
type DecisionService interface {
	Decide(ctx context.Context, req DecideRequest) (*DecideResult, error)
	SoftDelete(ctx context.Context, ticketID int64, actor *entity.User) error
	ListTickets(ctx context.Context, status string, limit, offset int) ([]*entity.ApprovalTicket, error)
}

type decisionServiceImpl struct {
	tickets       port.TicketRepository
	registry      dispatcher.Registry
	audit         AuditService
	notifications NotificationService
	logger        Logger
}

// NewDecisionService creates a new DecisionService.
func NewDecisionService(
	tickets port.TicketRepository,
	registry dispatcher.Registry,
	audit AuditService,
	notifications NotificationService,
	logger Logger,
) DecisionService {
	return &decisionServiceImpl{
		tickets:       tickets,
		registry:      registry,
		audit:         audit,
		notifications: notifications,
		logger:        logger,
	}
}

// Decide applies a decision to a pending ticket exactly once.
//
// The conditional update in ClaimPending is the sole concurrency guard: of
// two concurrent decisions, exactly one claims the row and the other gets
// ErrConflict. Handler failures during an approval trigger a compensating
// reset to pending, except for irreversible handlers, whose partial effects
// cannot be undone.
func (s *decisionServiceImpl) Decide(ctx context.Context, req DecideRequest) (*DecideResult, error) {
	if req.Action != entity.ActionApprove && req.Action != entity.ActionReject {
		return nil, fmt.Errorf("%w: %q", approval.ErrInvalidAction, req.Action)
	}

	ticket, err := s.tickets.GetByID(ctx, req.TicketID)
	if err != nil {
		return nil, fmt.Errorf("load ticket %d: %w", req.TicketID, err)
	}
	if ticket == nil || ticket.DeletedAt != nil {
		return nil, approval.ErrTicketNotFound
	}

	// Convenience pre-check; the conditional update below is authoritative.
	if !ticket.IsPending() {
		return nil, approval.ErrAlreadyProcessed
	}

	now := time.Now()
	status := entity.TicketStatusApproved
	if req.Action == entity.ActionReject {
		status = entity.TicketStatusRejected
	}

	resolution := port.TicketResolution{
		Status:          status,
		ActorID:         req.Actor.ID,
		Notes:           req.Notes,
		RejectionReason: req.RejectionReason,
		ResolvedAt:      now,
		ProcessingHours: entity.ProcessingHours(ticket.CreatedAt, now),
	}

	claimed, err := s.tickets.ClaimPending(ctx, ticket.ID, resolution)
	if err != nil {
		return nil, fmt.Errorf("claim ticket %d: %w", ticket.ID, err)
	}
	if !claimed {
		return nil, approval.ErrConflict
	}

	// Reflect the claimed state on the in-memory ticket before dispatch.
	ticket.Status = status
	ticket.ResolvedAt = &now
	ticket.Notes = req.Notes
	ticket.RejectionReason = req.RejectionReason
	hours := resolution.ProcessingHours
	ticket.ActualProcessingTimeHours = &hours
	if status == entity.TicketStatusApproved {
		ticket.ApprovedAt = &now
		ticket.ApprovedBy = &req.Actor.ID
	}

	var outcome *dispatcher.Outcome
	if req.Action == entity.ActionApprove {
		outcome, err = s.registry.Approve(ctx, ticket, req.Actor)
		if err != nil {
			return nil, s.compensate(ctx, ticket, req.Actor, err)
		}
	} else {
		// Rejection side effects are best-effort: the transition committed.
		if rejErr := s.registry.Reject(ctx, ticket, req.Actor); rejErr != nil {
			s.logger.Error("Rejection side effect failed",
				"ticket_id", ticket.ID,
				"entity_type", ticket.EntityType,
				"error", rejErr,
			)
		}
	}

	s.writeDecisionAudit(ctx, ticket, req, outcome)
	s.notifyRequester(ctx, ticket, req.Action, outcome)

	result := &DecideResult{
		Success: true,
		Message: fmt.Sprintf("ticket %d %s", ticket.ID, status),
	}
	if outcome != nil {
		result.NotificationData = outcome.NotificationData
	}

	s.logger.Info("Decision applied",
		"ticket_id", ticket.ID,
		"entity_type", ticket.EntityType,
		"action", req.Action,
		"actor_id", req.Actor.ID,
		"processing_hours", resolution.ProcessingHours,
	)
	return result, nil
}

// compensate handles an approval handler failure: reset the ticket to
// pending where the handler permits it, and escalate to the critical path
// when the reset is impossible or fails.
func (s *decisionServiceImpl) compensate(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User, handlerErr error) error {
	if s.registry.Irreversible(ticket.EntityType) {
		// Resetting to pending after partial anonymization would be a lie;
		// surface a terminal failure and leave the audit trail to say why.
		s.audit.LogCritical(ctx, &entity.AuditEntry{
			ActorUserID: &actor.ID,
			Action:      entity.AuditActionRollbackFailed,
			Entity:      string(ticket.EntityType),
			EntityID:    ticket.ID,
			Metadata:    fmt.Sprintf(`{"handler_error":%q,"irreversible":true}`, handlerErr.Error()),
		})
		return &approval.HandlerFailedError{
			EntityType: string(ticket.EntityType),
			TicketID:   ticket.ID,
			Retryable:  false,
			Err:        handlerErr,
		}
	}

	annotation := fmt.Sprintf("[rollback %s] approval handler failed: %v",
		time.Now().UTC().Format(time.RFC3339), handlerErr)

	rolled, rbErr := s.tickets.ReturnToPending(ctx, ticket.ID, annotation)
	if rbErr != nil || !rolled {
		if rbErr == nil {
			rbErr = fmt.Errorf("compensating update matched no rows")
		}
		s.logger.Error("CRITICAL: rollback failed, ticket state ambiguous",
			"ticket_id", ticket.ID,
			"handler_error", handlerErr,
			"rollback_error", rbErr,
		)
		// The critical audit entry must land or its failure must surface.
		if auditErr := s.audit.LogCritical(ctx, &entity.AuditEntry{
			ActorUserID: &actor.ID,
			Action:      entity.AuditActionRollbackFailed,
			Entity:      string(ticket.EntityType),
			EntityID:    ticket.ID,
			Metadata:    fmt.Sprintf(`{"handler_error":%q,"rollback_error":%q}`, handlerErr.Error(), rbErr.Error()),
		}); auditErr != nil {
			s.logger.Error("CRITICAL: audit write for failed rollback also failed",
				"ticket_id", ticket.ID, "error", auditErr)
		}
		return &approval.RollbackFailedError{
			TicketID:    ticket.ID,
			HandlerErr:  handlerErr,
			RollbackErr: rbErr,
		}
	}

	s.audit.Log(ctx, &entity.AuditEntry{
		ActorUserID: &actor.ID,
		Action:      entity.AuditActionRolledBack,
		Entity:      string(ticket.EntityType),
		EntityID:    ticket.ID,
		Severity:    entity.AuditSeverityWarning,
		Metadata:    fmt.Sprintf(`{"handler_error":%q}`, handlerErr.Error()),
	})

	return &approval.HandlerFailedError{
		EntityType: string(ticket.EntityType),
		TicketID:   ticket.ID,
		Retryable:  true,
		Err:        handlerErr,
	}
}

func (s *decisionServiceImpl) writeDecisionAudit(ctx context.Context, ticket *entity.ApprovalTicket, req DecideRequest, outcome *dispatcher.Outcome) {
	action := entity.AuditActionApproved
	if req.Action == entity.ActionReject {
		action = entity.AuditActionRejected
	}
	if outcome != nil && outcome.AuditAction != "" {
		action = outcome.AuditAction
	}

	s.audit.Log(ctx, &entity.AuditEntry{
		ActorUserID: &req.Actor.ID,
		Action:      action,
		Entity:      string(ticket.EntityType),
		EntityID:    ticket.ID,
		Severity:    entity.AuditSeverityInfo,
		Metadata: fmt.Sprintf(`{"entity_id":%d,"notes":%q,"rejection_reason":%q}`,
			ticket.EntityID, req.Notes, req.RejectionReason),
	})
}

func (s *decisionServiceImpl) notifyRequester(ctx context.Context, ticket *entity.ApprovalTicket, action string, outcome *dispatcher.Outcome) {
	if ticket.RequestedBy == nil {
		return
	}

	title := "Your request was approved"
	message := fmt.Sprintf("Your %s request has been approved.", ticket.EntityType)
	if action == entity.ActionReject {
		title = "Your request was rejected"
		message = fmt.Sprintf("Your %s request has been rejected.", ticket.EntityType)
		if ticket.RejectionReason != "" {
			message = fmt.Sprintf("%s Reason: %s", message, ticket.RejectionReason)
		}
	}

	var data map[string]interface{}
	if outcome != nil {
		data = outcome.NotificationData
	}
	s.notifications.Notify(ctx, *ticket.RequestedBy, title, message, entity.NotificationTypeApprovalOutcome, data)
}

// SoftDelete timestamps deleted_at on the ticket. It is unrelated to the
// decision state machine.
func (s *decisionServiceImpl) SoftDelete(ctx context.Context, ticketID int64, actor *entity.User) error {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return fmt.Errorf("load ticket %d: %w", ticketID, err)
	}
	if ticket == nil || ticket.DeletedAt != nil {
		return approval.ErrTicketNotFound
	}

	if err := s.tickets.SoftDelete(ctx, ticketID, time.Now()); err != nil {
		return fmt.Errorf("soft delete ticket %d: %w", ticketID, err)
	}

	s.audit.Log(ctx, &entity.AuditEntry{
		ActorUserID: &actor.ID,
		Action:      entity.AuditActionSoftDeleted,
		Entity:      string(ticket.EntityType),
		EntityID:    ticket.ID,
		Severity:    entity.AuditSeverityInfo,
	})
	return nil
}

// ListTickets retrieves a paginated list of tickets, optionally filtered by
// status.
func (s *decisionServiceImpl) ListTickets(ctx context.Context, status string, limit, offset int) ([]*entity.ApprovalTicket, error) {
	tickets, err := s.tickets.List(ctx, status, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list tickets", "error", err, "status", status)
		return nil, err
	}
	return tickets, nil
}
