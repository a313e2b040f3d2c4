package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/crestbridge/ir-portal/internal/application/port"
	"github.com/crestbridge/ir-portal/internal/domain/entity"
	"github.com/crestbridge/ir-portal/internal/infrastructure/persistence/sqlite"
)

// SubscriptionRepository implements port.SubscriptionRepository.
type SubscriptionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSubscriptionRepository creates a new subscription repository.
func NewSubscriptionRepository(db *sql.DB, logger *zap.Logger) port.SubscriptionRepository {
	return &SubscriptionRepository{db: db, logger: logger}
}

const subscriptionColumns = `
	id, investor_id, deal_id, vehicle_id, submission_id, fee_plan_id,
	setup_fee_percent, management_fee_percent, carry_percent,
	price_per_share, draft_shares, amount, funding_deadline,
	introducer_user_id, status, created_at, updated_at
`

// FindOrCreate inserts the subscription, relying on the unique
// (investor_id, deal_id, vehicle_id) constraint for dedup: a conflicting
// insert re-reads and returns the existing row with created=false. The
// constraint makes the dedup an enforced invariant rather than a racy
// existence check.
func (r *SubscriptionRepository) FindOrCreate(ctx context.Context, sub *entity.Subscription) (*entity.Subscription, bool, error) {
	query := `
		INSERT INTO subscriptions (
			investor_id, deal_id, vehicle_id, submission_id, fee_plan_id,
			setup_fee_percent, management_fee_percent, carry_percent,
			price_per_share, draft_shares, amount, funding_deadline,
			introducer_user_id, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		sub.InvestorID,
		sub.DealID,
		sub.VehicleID,
		sub.SubmissionID,
		nullableInt64(sub.FeePlanID),
		sub.SetupFeePercent,
		sub.ManagementFeePercent,
		sub.CarryPercent,
		sub.PricePerShare,
		sub.DraftShares,
		sub.Amount,
		nullableTime(sub.FundingDeadline),
		nullableInt64(sub.IntroducerUserID),
		sub.Status,
		now,
		now,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			existing, findErr := r.findByKey(ctx, sub.InvestorID, sub.DealID, sub.VehicleID)
			if findErr != nil {
				return nil, false, findErr
			}
			if existing == nil {
				return nil, false, fmt.Errorf("subscription conflict but no existing row for investor %d deal %d", sub.InvestorID, sub.DealID)
			}
			return existing, false, nil
		}
		r.logger.Error("Failed to create subscription",
			zap.Int64("investor_id", sub.InvestorID),
			zap.Int64("deal_id", sub.DealID),
			zap.Error(err),
		)
		return nil, false, fmt.Errorf("failed to create subscription: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get last insert id: %w", err)
	}
	sub.ID = id
	sub.CreatedAt = now
	sub.UpdatedAt = now
	return sub, true, nil
}

// GetByID retrieves a subscription by id, returning (nil, nil) when absent.
func (r *SubscriptionRepository) GetByID(ctx context.Context, id int64) (*entity.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = ?`
	return r.scanOne(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
}

func (r *SubscriptionRepository) findByKey(ctx context.Context, investorID, dealID, vehicleID int64) (*entity.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE investor_id = ? AND deal_id = ? AND vehicle_id = ?`
	return r.scanOne(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, investorID, dealID, vehicleID))
}

func (r *SubscriptionRepository) scanOne(row *sql.Row) (*entity.Subscription, error) {
	var s entity.Subscription
	var feePlanID, introducerID sql.NullInt64
	var fundingDeadline sql.NullTime

	err := row.Scan(
		&s.ID, &s.InvestorID, &s.DealID, &s.VehicleID, &s.SubmissionID, &feePlanID,
		&s.SetupFeePercent, &s.ManagementFeePercent, &s.CarryPercent,
		&s.PricePerShare, &s.DraftShares, &s.Amount, &fundingDeadline,
		&introducerID, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan subscription: %w", err)
	}

	if feePlanID.Valid {
		s.FeePlanID = &feePlanID.Int64
	}
	if introducerID.Valid {
		s.IntroducerUserID = &introducerID.Int64
	}
	if fundingDeadline.Valid {
		s.FundingDeadline = &fundingDeadline.Time
	}
	return &s, nil
}

func nullableInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullableTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}

// Verify interface compliance
var _ port.SubscriptionRepository = (*SubscriptionRepository)(nil)
