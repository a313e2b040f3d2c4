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

// InterestRepository implements port.InterestRepository.
type InterestRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInterestRepository creates a new deal interest repository.
func NewInterestRepository(db *sql.DB, logger *zap.Logger) port.InterestRepository {
	return &InterestRepository{db: db, logger: logger}
}

// GetByID retrieves a deal interest by id, returning (nil, nil) when absent.
func (r *InterestRepository) GetByID(ctx context.Context, id int64) (*entity.DealInterest, error) {
	query := `
		SELECT id, investor_id, deal_id, status, decided_by, decided_at, created_at, updated_at
		FROM deal_interests WHERE id = ?
	`

	var di entity.DealInterest
	var decidedBy sql.NullInt64
	var decidedAt sql.NullTime

	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&di.ID, &di.InvestorID, &di.DealID, &di.Status,
		&decidedBy, &decidedAt, &di.CreatedAt, &di.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get deal interest", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get deal interest: %w", err)
	}

	if decidedBy.Valid {
		di.DecidedBy = &decidedBy.Int64
	}
	if decidedAt.Valid {
		di.DecidedAt = &decidedAt.Time
	}
	return &di, nil
}

// SetStatus stamps the decision onto the interest record.
func (r *InterestRepository) SetStatus(ctx context.Context, id int64, upd port.StatusUpdate) error {
	return setRecordStatus(ctx, r.db, "deal_interests", id, upd)
}

// Verify interface compliance
var _ port.InterestRepository = (*InterestRepository)(nil)

// SignatureRequestRepository implements port.SignatureRequestRepository.
type SignatureRequestRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSignatureRequestRepository creates a new signature request repository.
func NewSignatureRequestRepository(db *sql.DB, logger *zap.Logger) port.SignatureRequestRepository {
	return &SignatureRequestRepository{db: db, logger: logger}
}

// Create inserts a signature request.
func (r *SignatureRequestRepository) Create(ctx context.Context, req *entity.SignatureRequest) error {
	query := `
		INSERT INTO signature_requests (document_id, user_id, role, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		req.DocumentID, req.UserID, req.Role, req.Status, now, now)
	if err != nil {
		r.logger.Error("Failed to create signature request",
			zap.Int64("document_id", req.DocumentID), zap.Error(err))
		return fmt.Errorf("failed to create signature request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	req.ID = id
	return nil
}

// Verify interface compliance
var _ port.SignatureRequestRepository = (*SignatureRequestRepository)(nil)
