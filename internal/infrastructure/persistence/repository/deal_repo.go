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

// DealRepository implements port.DealRepository.
type DealRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDealRepository creates a new deal repository.
func NewDealRepository(db *sql.DB, logger *zap.Logger) port.DealRepository {
	return &DealRepository{db: db, logger: logger}
}

// GetByID retrieves a deal by id, returning (nil, nil) when absent.
func (r *DealRepository) GetByID(ctx context.Context, id int64) (*entity.Deal, error) {
	query := `
		SELECT id, name, default_fee_plan_id, status, decided_by, decided_at, created_at, updated_at
		FROM deals WHERE id = ?
	`

	var d entity.Deal
	var feePlanID, decidedBy sql.NullInt64
	var decidedAt sql.NullTime

	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&d.ID, &d.Name, &feePlanID, &d.Status,
		&decidedBy, &decidedAt, &d.CreatedAt, &d.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get deal", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}

	if feePlanID.Valid {
		d.DefaultFeePlanID = &feePlanID.Int64
	}
	if decidedBy.Valid {
		d.DecidedBy = &decidedBy.Int64
	}
	if decidedAt.Valid {
		d.DecidedAt = &decidedAt.Time
	}
	return &d, nil
}

// SetStatus stamps the decision onto the deal.
func (r *DealRepository) SetStatus(ctx context.Context, id int64, upd port.StatusUpdate) error {
	return setRecordStatus(ctx, r.db, "deals", id, upd)
}

// Verify interface compliance
var _ port.DealRepository = (*DealRepository)(nil)
