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

// InvestorRepository implements port.InvestorRepository.
type InvestorRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInvestorRepository creates a new investor repository.
func NewInvestorRepository(db *sql.DB, logger *zap.Logger) port.InvestorRepository {
	return &InvestorRepository{db: db, logger: logger}
}

const investorColumns = `
	id, user_id, email, legal_name, kyc_status,
	kyc_approved_by, kyc_approved_at, anonymized_at, created_at, updated_at
`

// GetByID retrieves an investor by id, returning (nil, nil) when absent.
func (r *InvestorRepository) GetByID(ctx context.Context, id int64) (*entity.Investor, error) {
	query := `SELECT ` + investorColumns + ` FROM investors WHERE id = ?`
	return r.scanOne(ctx, query, id)
}

// GetByUserID retrieves the investor linked to a user, returning (nil, nil)
// when none exists.
func (r *InvestorRepository) GetByUserID(ctx context.Context, userID int64) (*entity.Investor, error) {
	query := `SELECT ` + investorColumns + ` FROM investors WHERE user_id = ?`
	return r.scanOne(ctx, query, userID)
}

// SetKYCStatus stamps the KYC decision onto the investor.
func (r *InvestorRepository) SetKYCStatus(ctx context.Context, id int64, upd port.StatusUpdate) error {
	query := `
		UPDATE investors
		SET kyc_status = ?, kyc_approved_by = ?, kyc_approved_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		upd.Status, upd.ActorID, upd.At, upd.At, id)
	if err != nil {
		r.logger.Error("Failed to set KYC status", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to set KYC status: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("investor %d not found", id)
	}
	return nil
}

// LinkUser attaches a portal account to the investor.
func (r *InvestorRepository) LinkUser(ctx context.Context, investorID, userID int64) error {
	query := `UPDATE investors SET user_id = ?, updated_at = ? WHERE id = ?`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, userID, time.Now(), investorID)
	if err != nil {
		r.logger.Error("Failed to link user to investor",
			zap.Int64("investor_id", investorID), zap.Int64("user_id", userID), zap.Error(err))
		return fmt.Errorf("failed to link user to investor: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("investor %d not found", investorID)
	}
	return nil
}

// Anonymize replaces identifying fields with placeholders.
func (r *InvestorRepository) Anonymize(ctx context.Context, id int64, email, legalName string, at time.Time) error {
	query := `
		UPDATE investors
		SET email = ?, legal_name = ?, anonymized_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, email, legalName, at, at, id)
	if err != nil {
		r.logger.Error("Failed to anonymize investor", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to anonymize investor: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("investor %d not found", id)
	}
	return nil
}

func (r *InvestorRepository) scanOne(ctx context.Context, query string, arg interface{}) (*entity.Investor, error) {
	var inv entity.Investor
	var userID, approvedBy sql.NullInt64
	var approvedAt, anonymizedAt sql.NullTime

	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, arg).Scan(
		&inv.ID, &userID, &inv.Email, &inv.LegalName, &inv.KYCStatus,
		&approvedBy, &approvedAt, &anonymizedAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get investor", zap.Error(err))
		return nil, fmt.Errorf("failed to get investor: %w", err)
	}

	if userID.Valid {
		inv.UserID = &userID.Int64
	}
	if approvedBy.Valid {
		inv.KYCApprovedBy = &approvedBy.Int64
	}
	if approvedAt.Valid {
		inv.KYCApprovedAt = &approvedAt.Time
	}
	if anonymizedAt.Valid {
		inv.AnonymizedAt = &anonymizedAt.Time
	}
	return &inv, nil
}

// Verify interface compliance
var _ port.InvestorRepository = (*InvestorRepository)(nil)
