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

// FeePlanRepository implements port.FeePlanRepository.
type FeePlanRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewFeePlanRepository creates a new fee plan repository.
func NewFeePlanRepository(db *sql.DB, logger *zap.Logger) port.FeePlanRepository {
	return &FeePlanRepository{db: db, logger: logger}
}

// GetByID retrieves a fee plan by id, returning (nil, nil) when absent.
func (r *FeePlanRepository) GetByID(ctx context.Context, id int64) (*entity.FeePlan, error) {
	query := `
		SELECT id, deal_id, name, structure, setup_fee_percent, management_fee_percent, carry_percent, created_at
		FROM fee_plans WHERE id = ?
	`

	var fp entity.FeePlan
	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&fp.ID, &fp.DealID, &fp.Name, &fp.Structure,
		&fp.SetupFeePercent, &fp.ManagementFeePercent, &fp.CarryPercent, &fp.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get fee plan", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get fee plan: %w", err)
	}
	return &fp, nil
}

// Verify interface compliance
var _ port.FeePlanRepository = (*FeePlanRepository)(nil)

// ValuationRepository implements port.ValuationRepository.
type ValuationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewValuationRepository creates a new valuation repository.
func NewValuationRepository(db *sql.DB, logger *zap.Logger) port.ValuationRepository {
	return &ValuationRepository{db: db, logger: logger}
}

// LatestForDeal retrieves the most recent valuation for a deal, returning
// (nil, nil) when the deal has none.
func (r *ValuationRepository) LatestForDeal(ctx context.Context, dealID int64) (*entity.Valuation, error) {
	query := `
		SELECT id, deal_id, price_per_share, effective_at
		FROM valuations
		WHERE deal_id = ?
		ORDER BY effective_at DESC
		LIMIT 1
	`

	var v entity.Valuation
	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, dealID).Scan(
		&v.ID, &v.DealID, &v.PricePerShare, &v.EffectiveAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get latest valuation", zap.Int64("deal_id", dealID), zap.Error(err))
		return nil, fmt.Errorf("failed to get latest valuation: %w", err)
	}
	return &v, nil
}

// Verify interface compliance
var _ port.ValuationRepository = (*ValuationRepository)(nil)

// ReferralRepository implements port.ReferralRepository.
type ReferralRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReferralRepository creates a new referral repository.
func NewReferralRepository(db *sql.DB, logger *zap.Logger) port.ReferralRepository {
	return &ReferralRepository{db: db, logger: logger}
}

// ActiveIntroducerForInvestor resolves the introducer on the investor's
// active referral link, if any.
func (r *ReferralRepository) ActiveIntroducerForInvestor(ctx context.Context, investorID int64) (*int64, error) {
	query := `
		SELECT introducer_user_id
		FROM referral_links
		WHERE investor_id = ? AND active = 1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var introducerID int64
	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, investorID).Scan(&introducerID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to resolve introducer", zap.Int64("investor_id", investorID), zap.Error(err))
		return nil, fmt.Errorf("failed to resolve introducer: %w", err)
	}
	return &introducerID, nil
}

// Verify interface compliance
var _ port.ReferralRepository = (*ReferralRepository)(nil)
