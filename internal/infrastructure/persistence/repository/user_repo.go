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

// UserRepository implements port.UserRepository.
type UserRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sql.DB, logger *zap.Logger) port.UserRepository {
	return &UserRepository{db: db, logger: logger}
}

const userColumns = `
	id, email, full_name, phone, is_staff, is_active,
	must_reset_password, password_hash, anonymized_at, created_at, updated_at
`

// GetByID retrieves a user by id, returning (nil, nil) when absent.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.scanOne(ctx, query, id)
}

// GetByEmail retrieves a user by email, returning (nil, nil) when absent.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return r.scanOne(ctx, query, email)
}

// Create inserts a user.
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (
			email, full_name, phone, is_staff, is_active,
			must_reset_password, password_hash, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		user.Email, user.FullName, user.Phone, user.IsStaff, user.IsActive,
		user.MustResetPassword, user.PasswordHash, now, now,
	)
	if err != nil {
		r.logger.Error("Failed to create user", zap.String("email", user.Email), zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	user.ID = id
	return nil
}

// Anonymize replaces identifying fields with placeholders, clears contact
// details and deactivates the account.
func (r *UserRepository) Anonymize(ctx context.Context, id int64, email, fullName string, at time.Time) error {
	query := `
		UPDATE users
		SET email = ?, full_name = ?, phone = '', is_active = 0,
			password_hash = '', anonymized_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query, email, fullName, at, at, id)
	if err != nil {
		r.logger.Error("Failed to anonymize user", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to anonymize user: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("user %d not found", id)
	}
	return nil
}

func (r *UserRepository) scanOne(ctx context.Context, query string, arg interface{}) (*entity.User, error) {
	var u entity.User
	var anonymizedAt sql.NullTime

	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.FullName, &u.Phone, &u.IsStaff, &u.IsActive,
		&u.MustResetPassword, &u.PasswordHash, &anonymizedAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get user", zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if anonymizedAt.Valid {
		u.AnonymizedAt = &anonymizedAt.Time
	}
	return &u, nil
}

// Verify interface compliance
var _ port.UserRepository = (*UserRepository)(nil)
