package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/crestbridge/ir-portal/internal/application/port"
	"github.com/crestbridge/ir-portal/internal/domain/entity"
	"github.com/crestbridge/ir-portal/internal/infrastructure/persistence/sqlite"
)

// AuditRepository implements port.AuditRepository over the append-only
// audit_log table.
type AuditRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(db *sql.DB, logger *zap.Logger) port.AuditRepository {
	return &AuditRepository{db: db, logger: logger}
}

// Create appends an audit entry.
func (r *AuditRepository) Create(ctx context.Context, e *entity.AuditEntry) error {
	query := `
		INSERT INTO audit_log (actor_user_id, action, entity, entity_id, severity, metadata, anonymized, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		nullableInt64(e.ActorUserID), e.Action, e.Entity, e.EntityID,
		e.Severity, e.Metadata, e.Anonymized, time.Now())
	if err != nil {
		r.logger.Error("Failed to append audit entry",
			zap.String("action", e.Action), zap.Error(err))
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	e.ID = id
	return nil
}

// MarkAnonymizedForActor flags every entry attributed to the actor as
// anonymized and returns the count. Entries are never deleted; erasure only
// masks the attribution.
func (r *AuditRepository) MarkAnonymizedForActor(ctx context.Context, actorUserID int64) (int64, error) {
	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx,
		`UPDATE audit_log SET anonymized = 1 WHERE actor_user_id = ?`, actorUserID)
	if err != nil {
		r.logger.Error("Failed to flag audit entries anonymized",
			zap.Int64("actor_user_id", actorUserID), zap.Error(err))
		return 0, fmt.Errorf("failed to flag audit entries: %w", err)
	}
	return result.RowsAffected()
}

// Verify interface compliance
var _ port.AuditRepository = (*AuditRepository)(nil)
