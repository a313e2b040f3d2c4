package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/crestbridge/ir-portal/internal/application/port"
	"github.com/crestbridge/ir-portal/internal/domain/entity"
	"github.com/crestbridge/ir-portal/internal/infrastructure/persistence/sqlite"
)

// AllocationRepository implements port.AllocationRepository.
type AllocationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAllocationRepository creates a new allocation repository.
func NewAllocationRepository(db *sql.DB, logger *zap.Logger) port.AllocationRepository {
	return &AllocationRepository{db: db, logger: logger}
}

// GetByID retrieves an allocation by id, returning (nil, nil) when absent.
func (r *AllocationRepository) GetByID(ctx context.Context, id int64) (*entity.Allocation, error) {
	query := `
		SELECT id, investor_id, deal_id, shares, status, decided_by, decided_at, created_at, updated_at
		FROM allocations WHERE id = ?
	`

	var a entity.Allocation
	var decidedBy sql.NullInt64
	var decidedAt sql.NullTime

	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.InvestorID, &a.DealID, &a.Shares, &a.Status,
		&decidedBy, &decidedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get allocation", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get allocation: %w", err)
	}

	if decidedBy.Valid {
		a.DecidedBy = &decidedBy.Int64
	}
	if decidedAt.Valid {
		a.DecidedAt = &decidedAt.Time
	}
	return &a, nil
}

// SetStatus stamps the decision onto the allocation.
func (r *AllocationRepository) SetStatus(ctx context.Context, id int64, upd port.StatusUpdate) error {
	return setRecordStatus(ctx, r.db, "allocations", id, upd)
}

// Verify interface compliance
var _ port.AllocationRepository = (*AllocationRepository)(nil)
