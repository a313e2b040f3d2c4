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

// InvitationRepository implements port.InvitationRepository.
type InvitationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInvitationRepository creates a new invitation repository.
func NewInvitationRepository(db *sql.DB, logger *zap.Logger) port.InvitationRepository {
	return &InvitationRepository{db: db, logger: logger}
}

// GetByID retrieves an invitation by id, returning (nil, nil) when absent.
func (r *InvitationRepository) GetByID(ctx context.Context, id int64) (*entity.MemberInvitation, error) {
	query := `
		SELECT id, email, role, status, expires_at, requested_by,
			decided_by, decided_at, created_at, updated_at
		FROM member_invitations WHERE id = ?
	`

	var inv entity.MemberInvitation
	var requestedBy, decidedBy sql.NullInt64
	var decidedAt sql.NullTime

	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&inv.ID, &inv.Email, &inv.Role, &inv.Status, &inv.ExpiresAt, &requestedBy,
		&decidedBy, &decidedAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get invitation", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	if requestedBy.Valid {
		inv.RequestedBy = &requestedBy.Int64
	}
	if decidedBy.Valid {
		inv.DecidedBy = &decidedBy.Int64
	}
	if decidedAt.Valid {
		inv.DecidedAt = &decidedAt.Time
	}
	return &inv, nil
}

// SetStatus stamps the decision onto the invitation, optionally moving the
// expiry.
func (r *InvitationRepository) SetStatus(ctx context.Context, id int64, upd port.StatusUpdate, expiresAt *time.Time) error {
	query := `
		UPDATE member_invitations
		SET status = ?, decided_by = ?, decided_at = ?,
			expires_at = COALESCE(?, expires_at), updated_at = ?
		WHERE id = ?
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		upd.Status, upd.ActorID, upd.At, nullableTime(expiresAt), upd.At, id)
	if err != nil {
		r.logger.Error("Failed to update invitation", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update invitation: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("invitation %d not found", id)
	}
	return nil
}

// Verify interface compliance
var _ port.InvitationRepository = (*InvitationRepository)(nil)

// profileFields whitelists the arranger profile columns a ticket may change.
var profileFields = map[string]bool{
	"firm_name":    true,
	"bio":          true,
	"website":      true,
	"contact_line": true,
}

// ProfileRepository implements port.ProfileRepository.
type ProfileRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProfileRepository creates a new arranger profile repository.
func NewProfileRepository(db *sql.DB, logger *zap.Logger) port.ProfileRepository {
	return &ProfileRepository{db: db, logger: logger}
}

// GetByID retrieves a profile by id, returning (nil, nil) when absent.
func (r *ProfileRepository) GetByID(ctx context.Context, id int64) (*entity.ArrangerProfile, error) {
	query := `
		SELECT id, user_id, firm_name, bio, website, contact_line, created_at, updated_at
		FROM arranger_profiles WHERE id = ?
	`

	var p entity.ArrangerProfile
	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.UserID, &p.FirmName, &p.Bio, &p.Website, &p.ContactLine,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get profile", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

// ApplyChanges updates whitelisted profile fields. Unknown field names are
// rejected before any SQL is built.
func (r *ProfileRepository) ApplyChanges(ctx context.Context, id int64, changes map[string]string) error {
	if len(changes) == 0 {
		return fmt.Errorf("no changes to apply")
	}

	query := `UPDATE arranger_profiles SET `
	args := make([]interface{}, 0, len(changes)+2)
	for field, value := range changes {
		if !profileFields[field] {
			return fmt.Errorf("field %q is not updatable", field)
		}
		query += field + ` = ?, `
		args = append(args, value)
	}
	query += `updated_at = ? WHERE id = ?`
	args = append(args, time.Now(), id)

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to apply profile changes", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to apply profile changes: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("profile %d not found", id)
	}
	return nil
}

// Verify interface compliance
var _ port.ProfileRepository = (*ProfileRepository)(nil)
