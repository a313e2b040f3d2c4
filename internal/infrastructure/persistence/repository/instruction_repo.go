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

// WireInstructionRepository implements port.WireInstructionRepository.
type WireInstructionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewWireInstructionRepository creates a new wire instruction repository.
func NewWireInstructionRepository(db *sql.DB, logger *zap.Logger) port.WireInstructionRepository {
	return &WireInstructionRepository{db: db, logger: logger}
}

// GetByID retrieves a wire instruction by id, returning (nil, nil) when
// absent.
func (r *WireInstructionRepository) GetByID(ctx context.Context, id int64) (*entity.WireInstruction, error) {
	query := `
		SELECT id, deal_id, status, decided_by, decided_at, created_at, updated_at
		FROM wire_instructions WHERE id = ?
	`

	var w entity.WireInstruction
	var decidedBy sql.NullInt64
	var decidedAt sql.NullTime

	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&w.ID, &w.DealID, &w.Status, &decidedBy, &decidedAt, &w.CreatedAt, &w.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get wire instruction", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get wire instruction: %w", err)
	}

	if decidedBy.Valid {
		w.DecidedBy = &decidedBy.Int64
	}
	if decidedAt.Valid {
		w.DecidedAt = &decidedAt.Time
	}
	return &w, nil
}

// SetStatus stamps the decision onto the wire instruction.
func (r *WireInstructionRepository) SetStatus(ctx context.Context, id int64, upd port.StatusUpdate) error {
	return setRecordStatus(ctx, r.db, "wire_instructions", id, upd)
}

// Verify interface compliance
var _ port.WireInstructionRepository = (*WireInstructionRepository)(nil)

// SaleRequestRepository implements port.SaleRequestRepository.
type SaleRequestRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSaleRequestRepository creates a new sale request repository.
func NewSaleRequestRepository(db *sql.DB, logger *zap.Logger) port.SaleRequestRepository {
	return &SaleRequestRepository{db: db, logger: logger}
}

// GetByID retrieves a sale request by id, returning (nil, nil) when absent.
func (r *SaleRequestRepository) GetByID(ctx context.Context, id int64) (*entity.SaleRequest, error) {
	query := `
		SELECT id, investor_id, deal_id, shares, status, decided_by, decided_at, created_at, updated_at
		FROM sale_requests WHERE id = ?
	`

	var s entity.SaleRequest
	var decidedBy sql.NullInt64
	var decidedAt sql.NullTime

	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.InvestorID, &s.DealID, &s.Shares, &s.Status,
		&decidedBy, &decidedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get sale request", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get sale request: %w", err)
	}

	if decidedBy.Valid {
		s.DecidedBy = &decidedBy.Int64
	}
	if decidedAt.Valid {
		s.DecidedAt = &decidedAt.Time
	}
	return &s, nil
}

// SetStatus stamps the decision onto the sale request.
func (r *SaleRequestRepository) SetStatus(ctx context.Context, id int64, upd port.StatusUpdate) error {
	return setRecordStatus(ctx, r.db, "sale_requests", id, upd)
}

// Verify interface compliance
var _ port.SaleRequestRepository = (*SaleRequestRepository)(nil)
