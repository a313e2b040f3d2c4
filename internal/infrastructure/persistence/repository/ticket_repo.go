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

// TicketRepository implements port.TicketRepository over sqlite.
type TicketRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTicketRepository creates a new ticket repository.
func NewTicketRepository(db *sql.DB, logger *zap.Logger) port.TicketRepository {
	return &TicketRepository{
		db:     db,
		logger: logger,
	}
}

const ticketColumns = `
	id, entity_type, entity_id, entity_metadata, status,
	requested_by, approved_by, notes, rejection_reason,
	actual_processing_time_hours,
	created_at, approved_at, resolved_at, updated_at, deleted_at
`

// GetByID retrieves a ticket by id, returning (nil, nil) when absent.
func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*entity.ApprovalTicket, error) {
	query := `SELECT ` + ticketColumns + ` FROM approval_tickets WHERE id = ?`

	ticket, err := scanTicket(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get ticket", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return ticket, nil
}

// ClaimPending performs the conditional resolution update. The status guard
// inside the statement is the engine's only concurrency control: of two
// concurrent claims exactly one matches the row.
func (r *TicketRepository) ClaimPending(ctx context.Context, id int64, res port.TicketResolution) (bool, error) {
	query := `
		UPDATE approval_tickets
		SET status = ?,
			approved_by = ?,
			approved_at = ?,
			resolved_at = ?,
			notes = ?,
			rejection_reason = ?,
			actual_processing_time_hours = ?,
			updated_at = ?
		WHERE id = ? AND status = ? AND deleted_at IS NULL
	`

	var approvedAt sql.NullTime
	if res.Status == entity.TicketStatusApproved {
		approvedAt = sql.NullTime{Time: res.ResolvedAt, Valid: true}
	}

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		res.Status,
		res.ActorID,
		approvedAt,
		res.ResolvedAt,
		res.Notes,
		res.RejectionReason,
		res.ProcessingHours,
		res.ResolvedAt,
		id,
		entity.TicketStatusPending,
	)
	if err != nil {
		r.logger.Error("Failed to claim ticket", zap.Int64("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to claim ticket: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected == 1, nil
}

// ReturnToPending is the compensating update after a handler failure: it
// resets the resolution fields and appends the rollback annotation to notes.
// Guarded by the claimed status so it cannot clobber an unrelated state.
func (r *TicketRepository) ReturnToPending(ctx context.Context, id int64, annotation string) (bool, error) {
	query := `
		UPDATE approval_tickets
		SET status = ?,
			approved_by = NULL,
			approved_at = NULL,
			resolved_at = NULL,
			actual_processing_time_hours = NULL,
			notes = CASE WHEN notes = '' THEN ? ELSE notes || char(10) || ? END,
			updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		entity.TicketStatusPending,
		annotation,
		annotation,
		time.Now(),
		id,
		entity.TicketStatusApproved,
	)
	if err != nil {
		r.logger.Error("Failed to return ticket to pending", zap.Int64("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to return ticket to pending: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected == 1, nil
}

// SoftDelete timestamps deleted_at.
func (r *TicketRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE approval_tickets SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, at, at, id)
	if err != nil {
		r.logger.Error("Failed to soft delete ticket", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to soft delete ticket: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("ticket %d not found", id)
	}
	return nil
}

// List retrieves tickets, optionally filtered by status, newest first.
func (r *TicketRepository) List(ctx context.Context, status string, limit, offset int) ([]*entity.ApprovalTicket, error) {
	query := `SELECT ` + ticketColumns + ` FROM approval_tickets WHERE deleted_at IS NULL`
	args := []interface{}{}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list tickets", zap.Error(err))
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	return collectTickets(rows)
}

// ListResolvedBetween retrieves resolved tickets in the window, for the
// activity report.
func (r *TicketRepository) ListResolvedBetween(ctx context.Context, from, to time.Time) ([]*entity.ApprovalTicket, error) {
	query := `SELECT ` + ticketColumns + `
		FROM approval_tickets
		WHERE deleted_at IS NULL
			AND resolved_at IS NOT NULL
			AND resolved_at >= ? AND resolved_at < ?
		ORDER BY resolved_at ASC`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, from, to)
	if err != nil {
		r.logger.Error("Failed to list resolved tickets", zap.Error(err))
		return nil, fmt.Errorf("failed to list resolved tickets: %w", err)
	}
	defer rows.Close()

	return collectTickets(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTicket(row rowScanner) (*entity.ApprovalTicket, error) {
	var t entity.ApprovalTicket
	var rawType string
	var requestedBy, approvedBy sql.NullInt64
	var processingHours sql.NullFloat64
	var approvedAt, resolvedAt, deletedAt sql.NullTime

	err := row.Scan(
		&t.ID,
		&rawType,
		&t.EntityID,
		&t.EntityMetadata,
		&t.Status,
		&requestedBy,
		&approvedBy,
		&t.Notes,
		&t.RejectionReason,
		&processingHours,
		&t.CreatedAt,
		&approvedAt,
		&resolvedAt,
		&t.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	t.EntityType = entity.EntityType(rawType)
	if requestedBy.Valid {
		t.RequestedBy = &requestedBy.Int64
	}
	if approvedBy.Valid {
		t.ApprovedBy = &approvedBy.Int64
	}
	if processingHours.Valid {
		t.ActualProcessingTimeHours = &processingHours.Float64
	}
	if approvedAt.Valid {
		t.ApprovedAt = &approvedAt.Time
	}
	if resolvedAt.Valid {
		t.ResolvedAt = &resolvedAt.Time
	}
	if deletedAt.Valid {
		t.DeletedAt = &deletedAt.Time
	}
	return &t, nil
}

func collectTickets(rows *sql.Rows) ([]*entity.ApprovalTicket, error) {
	var tickets []*entity.ApprovalTicket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// Verify interface compliance
var _ port.TicketRepository = (*TicketRepository)(nil)
