package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/crestbridge/ir-portal/internal/application/dispatcher"
	"github.com/crestbridge/ir-portal/internal/application/port"
	"github.com/crestbridge/ir-portal/internal/domain/approval"
	"github.com/crestbridge/ir-portal/internal/domain/entity"
)

// Mock collaborators

type mockTicketRepo struct {
	getByIDFunc         func(ctx context.Context, id int64) (*entity.ApprovalTicket, error)
	claimPendingFunc    func(ctx context.Context, id int64, res port.TicketResolution) (bool, error)
	returnToPendingFunc func(ctx context.Context, id int64, annotation string) (bool, error)
	softDeleteFunc      func(ctx context.Context, id int64, at time.Time) error
	listFunc            func(ctx context.Context, status string, limit, offset int) ([]*entity.ApprovalTicket, error)
	listResolvedFunc    func(ctx context.Context, from, to time.Time) ([]*entity.ApprovalTicket, error)

	claimedResolutions []port.TicketResolution
	rollbackAnnotation string
}

func (m *mockTicketRepo) GetByID(ctx context.Context, id int64) (*entity.ApprovalTicket, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return pendingTicket(id), nil
}

func (m *mockTicketRepo) ClaimPending(ctx context.Context, id int64, res port.TicketResolution) (bool, error) {
	m.claimedResolutions = append(m.claimedResolutions, res)
	if m.claimPendingFunc != nil {
		return m.claimPendingFunc(ctx, id, res)
	}
	return true, nil
}

func (m *mockTicketRepo) ReturnToPending(ctx context.Context, id int64, annotation string) (bool, error) {
	m.rollbackAnnotation = annotation
	if m.returnToPendingFunc != nil {
		return m.returnToPendingFunc(ctx, id, annotation)
	}
	return true, nil
}

func (m *mockTicketRepo) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	if m.softDeleteFunc != nil {
		return m.softDeleteFunc(ctx, id, at)
	}
	return nil
}

func (m *mockTicketRepo) List(ctx context.Context, status string, limit, offset int) ([]*entity.ApprovalTicket, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, status, limit, offset)
	}
	return nil, nil
}

func (m *mockTicketRepo) ListResolvedBetween(ctx context.Context, from, to time.Time) ([]*entity.ApprovalTicket, error) {
	if m.listResolvedFunc != nil {
		return m.listResolvedFunc(ctx, from, to)
	}
	return nil, nil
}

type mockRegistry struct {
	approveFunc      func(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) (*dispatcher.Outcome, error)
	rejectFunc       func(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) error
	irreversibleFunc func(entityType entity.EntityType) bool
}

func (m *mockRegistry) Register(entityType entity.EntityType, name string, h dispatcher.Handler) error {
	return nil
}

func (m *mockRegistry) Complete() error { return nil }

func (m *mockRegistry) Approve(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) (*dispatcher.Outcome, error) {
	if m.approveFunc != nil {
		return m.approveFunc(ctx, ticket, actor)
	}
	return &dispatcher.Outcome{}, nil
}

func (m *mockRegistry) Reject(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) error {
	if m.rejectFunc != nil {
		return m.rejectFunc(ctx, ticket, actor)
	}
	return nil
}

func (m *mockRegistry) Irreversible(entityType entity.EntityType) bool {
	if m.irreversibleFunc != nil {
		return m.irreversibleFunc(entityType)
	}
	return false
}

func (m *mockRegistry) ListHandlers() []dispatcher.HandlerInfo { return nil }

type mockAuditService struct {
	entries         []*entity.AuditEntry
	logCriticalFunc func(ctx context.Context, e *entity.AuditEntry) error
}

func (m *mockAuditService) Log(ctx context.Context, e *entity.AuditEntry) {
	m.entries = append(m.entries, e)
}

func (m *mockAuditService) LogCritical(ctx context.Context, e *entity.AuditEntry) error {
	e.Severity = entity.AuditSeverityCritical
	m.entries = append(m.entries, e)
	if m.logCriticalFunc != nil {
		return m.logCriticalFunc(ctx, e)
	}
	return nil
}

func (m *mockAuditService) lastAction() string {
	if len(m.entries) == 0 {
		return ""
	}
	return m.entries[len(m.entries)-1].Action
}

type notifyCall struct {
	userID   int64
	title    string
	message  string
	metadata map[string]interface{}
}

type mockNotificationService struct {
	calls []notifyCall
}

func (m *mockNotificationService) Notify(ctx context.Context, userID int64, title, message, notifType string, metadata map[string]interface{}) {
	m.calls = append(m.calls, notifyCall{userID: userID, title: title, message: message, metadata: metadata})
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

func pendingTicket(id int64) *entity.ApprovalTicket {
	requestedBy := int64(7)
	return &entity.ApprovalTicket{
		ID:          id,
		EntityType:  entity.EntityAllocation,
		EntityID:    100,
		Status:      entity.TicketStatusPending,
		RequestedBy: &requestedBy,
		CreatedAt:   time.Now().Add(-3*time.Hour - 30*time.Minute),
	}
}

func staffActor() *entity.User {
	return &entity.User{ID: 42, Email: "ops@crestbridge.example", IsStaff: true, IsActive: true}
}

func newTestService(tickets *mockTicketRepo, registry *mockRegistry) (DecisionService, *mockAuditService, *mockNotificationService) {
	audit := &mockAuditService{}
	notifications := &mockNotificationService{}
	svc := NewDecisionService(tickets, registry, audit, notifications, &mockLogger{})
	return svc, audit, notifications
}

func TestDecide_InvalidAction(t *testing.T) {
	svc, _, _ := newTestService(&mockTicketRepo{}, &mockRegistry{})

	_, err := svc.Decide(context.Background(), DecideRequest{
		TicketID: 1, Action: "rubber-stamp", Actor: staffActor(),
	})
	if !errors.Is(err, approval.ErrInvalidAction) {
		t.Fatalf("Decide() error = %v, want ErrInvalidAction", err)
	}
}

func TestDecide_TicketNotFound(t *testing.T) {
	tickets := &mockTicketRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.ApprovalTicket, error) {
			return nil, nil
		},
	}
	svc, _, _ := newTestService(tickets, &mockRegistry{})

	_, err := svc.Decide(context.Background(), DecideRequest{
		TicketID: 1, Action: entity.ActionApprove, Actor: staffActor(),
	})
	if !errors.Is(err, approval.ErrTicketNotFound) {
		t.Fatalf("Decide() error = %v, want ErrTicketNotFound", err)
	}
}

func TestDecide_SoftDeletedTicketNotFound(t *testing.T) {
	deletedAt := time.Now()
	tickets := &mockTicketRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.ApprovalTicket, error) {
			ticket := pendingTicket(id)
			ticket.DeletedAt = &deletedAt
			return ticket, nil
		},
	}
	svc, _, _ := newTestService(tickets, &mockRegistry{})

	_, err := svc.Decide(context.Background(), DecideRequest{
		TicketID: 1, Action: entity.ActionApprove, Actor: staffActor(),
	})
	if !errors.Is(err, approval.ErrTicketNotFound) {
		t.Fatalf("Decide() error = %v, want ErrTicketNotFound", err)
	}
}

func TestDecide_AlreadyProcessed(t *testing.T) {
	tickets := &mockTicketRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.ApprovalTicket, error) {
			ticket := pendingTicket(id)
			ticket.Status = entity.TicketStatusApproved
			return ticket, nil
		},
	}
	svc, _, _ := newTestService(tickets, &mockRegistry{})

	_, err := svc.Decide(context.Background(), DecideRequest{
		TicketID: 1, Action: entity.ActionApprove, Actor: staffActor(),
	})
	if !errors.Is(err, approval.ErrAlreadyProcessed) {
		t.Fatalf("Decide() error = %v, want ErrAlreadyProcessed", err)
	}
}

// Two decisions against the same pending ticket: the conditional update lets
// exactly one through, the loser gets ErrConflict.
func TestDecide_ConcurrentResolutionConflict(t *testing.T) {
	claimed := false
	tickets := &mockTicketRepo{
		claimPendingFunc: func(ctx context.Context, id int64, res port.TicketResolution) (bool, error) {
			if claimed {
				return false, nil
			}
			claimed = true
			return true, nil
		},
	}
	svc, _, _ := newTestService(tickets, &mockRegistry{})

	first, err := svc.Decide(context.Background(), DecideRequest{
		TicketID: 1, Action: entity.ActionApprove, Actor: staffActor(),
	})
	if err != nil {
		t.Fatalf("first Decide() error = %v", err)
	}
	if !first.Success {
		t.Fatalf("first Decide() success = false")
	}

	_, err = svc.Decide(context.Background(), DecideRequest{
		TicketID: 1, Action: entity.ActionReject, Actor: staffActor(),
	})
	if !errors.Is(err, approval.ErrConflict) {
		t.Fatalf("second Decide() error = %v, want ErrConflict", err)
	}
}

func TestDecide_ApproveSuccess(t *testing.T) {
	tickets := &mockTicketRepo{}
	registry := &mockRegistry{
		approveFunc: func(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) (*dispatcher.Outcome, error) {
			if ticket.Status != entity.TicketStatusApproved {
				t.Errorf("handler saw status %q, want approved", ticket.Status)
			}
			return &dispatcher.Outcome{
				NotificationData: map[string]interface{}{"allocation_id": int64(100)},
			}, nil
		},
	}
	svc, audit, notifications := newTestService(tickets, registry)

	result, err := svc.Decide(context.Background(), DecideRequest{
		TicketID: 1, Action: entity.ActionApprove, Notes: "checks out", Actor: staffActor(),
	})
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if !result.Success {
		t.Fatalf("Decide() success = false")
	}
	if result.NotificationData["allocation_id"] != int64(100) {
		t.Errorf("notification data not propagated: %v", result.NotificationData)
	}

	// Processing time is computed against the claim, rounded to two decimals.
	if len(tickets.claimedResolutions) != 1 {
		t.Fatalf("ClaimPending called %d times, want 1", len(tickets.claimedResolutions))
	}
	hours := tickets.claimedResolutions[0].ProcessingHours
	if hours != 3.5 {
		t.Errorf("processing hours = %v, want 3.5", hours)
	}

	if audit.lastAction() != entity.AuditActionApproved {
		t.Errorf("audit action = %q, want %q", audit.lastAction(), entity.AuditActionApproved)
	}
	if len(notifications.calls) != 1 || notifications.calls[0].userID != 7 {
		t.Errorf("requester notification missing: %+v", notifications.calls)
	}
}

func TestDecide_RejectSideEffectFailureIsLoggedOnly(t *testing.T) {
	tickets := &mockTicketRepo{}
	registry := &mockRegistry{
		rejectFunc: func(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) error {
			return errors.New("downstream status update failed")
		},
	}
	svc, audit, notifications := newTestService(tickets, registry)

	result, err := svc.Decide(context.Background(), DecideRequest{
		TicketID:        1,
		Action:          entity.ActionReject,
		RejectionReason: "allocation oversubscribed",
		Actor:           staffActor(),
	})
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if !result.Success {
		t.Fatalf("Decide() success = false; rejection is durable once claimed")
	}
	if audit.lastAction() != entity.AuditActionRejected {
		t.Errorf("audit action = %q, want %q", audit.lastAction(), entity.AuditActionRejected)
	}
	if len(notifications.calls) != 1 {
		t.Fatalf("requester notification missing")
	}
	if !strings.Contains(notifications.calls[0].message, "allocation oversubscribed") {
		t.Errorf("rejection reason missing from notification: %q", notifications.calls[0].message)
	}
}

func TestDecide_HandlerFailureRollsBackToPending(t *testing.T) {
	tickets := &mockTicketRepo{}
	registry := &mockRegistry{
		approveFunc: func(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) (*dispatcher.Outcome, error) {
			return nil, errors.New("allocation record missing")
		},
	}
	svc, audit, notifications := newTestService(tickets, registry)

	_, err := svc.Decide(context.Background(), DecideRequest{
		TicketID: 1, Action: entity.ActionApprove, Actor: staffActor(),
	})

	var handlerErr *approval.HandlerFailedError
	if !errors.As(err, &handlerErr) {
		t.Fatalf("Decide() error = %v, want HandlerFailedError", err)
	}
	if !handlerErr.Retryable {
		t.Errorf("error not marked retryable after successful rollback")
	}
	if !strings.Contains(tickets.rollbackAnnotation, "approval handler failed") {
		t.Errorf("rollback annotation = %q", tickets.rollbackAnnotation)
	}
	if audit.lastAction() != entity.AuditActionRolledBack {
		t.Errorf("audit action = %q, want %q", audit.lastAction(), entity.AuditActionRolledBack)
	}
	if len(notifications.calls) != 0 {
		t.Errorf("no requester notification expected on a failed approval")
	}
}

func TestDecide_RollbackFailureIsCritical(t *testing.T) {
	handlerFailure := errors.New("allocation record missing")
	rollbackFailure := errors.New("database is locked")

	tickets := &mockTicketRepo{
		returnToPendingFunc: func(ctx context.Context, id int64, annotation string) (bool, error) {
			return false, rollbackFailure
		},
	}
	registry := &mockRegistry{
		approveFunc: func(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) (*dispatcher.Outcome, error) {
			return nil, handlerFailure
		},
	}
	svc, audit, _ := newTestService(tickets, registry)

	_, err := svc.Decide(context.Background(), DecideRequest{
		TicketID: 1, Action: entity.ActionApprove, Actor: staffActor(),
	})

	var rollbackErr *approval.RollbackFailedError
	if !errors.As(err, &rollbackErr) {
		t.Fatalf("Decide() error = %v, want RollbackFailedError", err)
	}
	if !errors.Is(rollbackErr.HandlerErr, handlerFailure) || !errors.Is(rollbackErr.RollbackErr, rollbackFailure) {
		t.Errorf("RollbackFailedError must carry both causes: %+v", rollbackErr)
	}
	msg := rollbackErr.Error()
	if !strings.Contains(msg, handlerFailure.Error()) || !strings.Contains(msg, rollbackFailure.Error()) {
		t.Errorf("both error messages must be present in %q", msg)
	}

	if audit.lastAction() != entity.AuditActionRollbackFailed {
		t.Errorf("audit action = %q, want %q", audit.lastAction(), entity.AuditActionRollbackFailed)
	}
	if audit.entries[len(audit.entries)-1].Severity != entity.AuditSeverityCritical {
		t.Errorf("rollback failure must be audited as critical")
	}
}

func TestDecide_RollbackMatchingNoRowsIsCritical(t *testing.T) {
	tickets := &mockTicketRepo{
		returnToPendingFunc: func(ctx context.Context, id int64, annotation string) (bool, error) {
			return false, nil
		},
	}
	registry := &mockRegistry{
		approveFunc: func(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) (*dispatcher.Outcome, error) {
			return nil, errors.New("handler blew up")
		},
	}
	svc, _, _ := newTestService(tickets, registry)

	_, err := svc.Decide(context.Background(), DecideRequest{
		TicketID: 1, Action: entity.ActionApprove, Actor: staffActor(),
	})

	var rollbackErr *approval.RollbackFailedError
	if !errors.As(err, &rollbackErr) {
		t.Fatalf("Decide() error = %v, want RollbackFailedError", err)
	}
}

func TestDecide_IrreversibleHandlerSkipsRollback(t *testing.T) {
	tickets := &mockTicketRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.ApprovalTicket, error) {
			ticket := pendingTicket(id)
			ticket.EntityType = entity.EntityGDPRDeletionRequest
			return ticket, nil
		},
	}
	registry := &mockRegistry{
		approveFunc: func(ctx context.Context, ticket *entity.ApprovalTicket, actor *entity.User) (*dispatcher.Outcome, error) {
			return nil, errors.New("purge failed midway")
		},
		irreversibleFunc: func(entityType entity.EntityType) bool {
			return entityType == entity.EntityGDPRDeletionRequest
		},
	}
	svc, audit, _ := newTestService(tickets, registry)

	_, err := svc.Decide(context.Background(), DecideRequest{
		TicketID: 1, Action: entity.ActionApprove, Actor: staffActor(),
	})

	var handlerErr *approval.HandlerFailedError
	if !errors.As(err, &handlerErr) {
		t.Fatalf("Decide() error = %v, want HandlerFailedError", err)
	}
	if handlerErr.Retryable {
		t.Errorf("irreversible handler failure must not be retryable")
	}
	if tickets.rollbackAnnotation != "" {
		t.Errorf("ReturnToPending must not be called for irreversible handlers")
	}
	if audit.lastAction() != entity.AuditActionRollbackFailed {
		t.Errorf("audit action = %q, want %q", audit.lastAction(), entity.AuditActionRollbackFailed)
	}
}

func TestSoftDelete(t *testing.T) {
	t.Run("missing ticket", func(t *testing.T) {
		tickets := &mockTicketRepo{
			getByIDFunc: func(ctx context.Context, id int64) (*entity.ApprovalTicket, error) {
				return nil, nil
			},
		}
		svc, _, _ := newTestService(tickets, &mockRegistry{})

		err := svc.SoftDelete(context.Background(), 9, staffActor())
		if !errors.Is(err, approval.ErrTicketNotFound) {
			t.Fatalf("SoftDelete() error = %v, want ErrTicketNotFound", err)
		}
	})

	t.Run("success is audited", func(t *testing.T) {
		tickets := &mockTicketRepo{}
		svc, audit, _ := newTestService(tickets, &mockRegistry{})

		if err := svc.SoftDelete(context.Background(), 1, staffActor()); err != nil {
			t.Fatalf("SoftDelete() error = %v", err)
		}
		if audit.lastAction() != entity.AuditActionSoftDeleted {
			t.Errorf("audit action = %q, want %q", audit.lastAction(), entity.AuditActionSoftDeleted)
		}
	})
}
