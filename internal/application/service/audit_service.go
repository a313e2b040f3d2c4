package service

import (
	"context"

	"github.com/crestbridge/ir-portal/internal/application/port"
	"github.com/crestbridge/ir-portal/internal/domain/entity"
)

// AuditService writes the append-only audit trail. Log is fire-and-forget:
// a failed write is logged but never blocks the primary response path.
// LogCritical is reserved for the rollback-failure path, where the write is
// required to succeed or its failure surfaced to the caller.
type AuditService interface {
	Log(ctx context.Context, e *entity.AuditEntry)
	LogCritical(ctx context.Context, e *entity.AuditEntry) error
}

type auditServiceImpl struct {
	repo   port.AuditRepository
	logger Logger
}

// NewAuditService creates a new AuditService.
func NewAuditService(repo port.AuditRepository, logger Logger) AuditService {
	return &auditServiceImpl{
		repo:   repo,
		logger: logger,
	}
}

func (s *auditServiceImpl) Log(ctx context.Context, e *entity.AuditEntry) {
	if e.Severity == "" {
		e.Severity = entity.AuditSeverityInfo
	}
	if err := s.repo.Create(ctx, e); err != nil {
		s.logger.Error("Audit write failed",
			"action", e.Action,
			"entity", e.Entity,
			"entity_id", e.EntityID,
			"error", err,
		)
	}
}

func (s *auditServiceImpl) LogCritical(ctx context.Context, e *entity.AuditEntry) error {
	e.Severity = entity.AuditSeverityCritical
	if err := s.repo.Create(ctx, e); err != nil {
		s.logger.Error("Critical audit write failed",
			"action", e.Action,
			"entity", e.Entity,
			"entity_id", e.EntityID,
			"error", err,
		)
		return err
	}
	return nil
}
