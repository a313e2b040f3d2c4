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

// AccessRepository implements port.AccessRepository.
type AccessRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAccessRepository creates a new data room access repository.
func NewAccessRepository(db *sql.DB, logger *zap.Logger) port.AccessRepository {
	return &AccessRepository{db: db, logger: logger}
}

// GetByID retrieves an access grant by id, returning (nil, nil) when absent.
func (r *AccessRepository) GetByID(ctx context.Context, id int64) (*entity.DataRoomAccess, error) {
	query := `
		SELECT id, user_id, deal_id, expires_at, created_at, updated_at
		FROM data_room_access WHERE id = ?
	`

	var a entity.DataRoomAccess
	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.UserID, &a.DealID, &a.ExpiresAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get access grant", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get access grant: %w", err)
	}
	return &a, nil
}

// SetExpiry writes the new expiry.
func (r *AccessRepository) SetExpiry(ctx context.Context, id int64, expiresAt time.Time) error {
	query := `UPDATE data_room_access SET expires_at = ?, updated_at = ? WHERE id = ?`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, expiresAt, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to set access expiry", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to set access expiry: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("access grant %d not found", id)
	}
	return nil
}

// Verify interface compliance
var _ port.AccessRepository = (*AccessRepository)(nil)
