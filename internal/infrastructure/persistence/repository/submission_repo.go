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

// SubmissionRepository implements port.SubmissionRepository.
type SubmissionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSubmissionRepository creates a new deal submission repository.
func NewSubmissionRepository(db *sql.DB, logger *zap.Logger) port.SubmissionRepository {
	return &SubmissionRepository{db: db, logger: logger}
}

// GetByID retrieves a submission by id, returning (nil, nil) when absent.
func (r *SubmissionRepository) GetByID(ctx context.Context, id int64) (*entity.DealSubmission, error) {
	query := `
		SELECT id, investor_id, deal_id, amount, status, decided_by, decided_at, created_at, updated_at
		FROM deal_submissions WHERE id = ?
	`

	var s entity.DealSubmission
	var decidedBy sql.NullInt64
	var decidedAt sql.NullTime

	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.InvestorID, &s.DealID, &s.Amount, &s.Status,
		&decidedBy, &decidedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get submission", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	if decidedBy.Valid {
		s.DecidedBy = &decidedBy.Int64
	}
	if decidedAt.Valid {
		s.DecidedAt = &decidedAt.Time
	}
	return &s, nil
}

// SetStatus stamps the decision onto the submission.
func (r *SubmissionRepository) SetStatus(ctx context.Context, id int64, upd port.StatusUpdate) error {
	return setRecordStatus(ctx, r.db, "deal_submissions", id, upd)
}

// Verify interface compliance
var _ port.SubmissionRepository = (*SubmissionRepository)(nil)
