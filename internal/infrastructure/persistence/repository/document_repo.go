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

// DocumentRepository implements port.DocumentRepository.
type DocumentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository(db *sql.DB, logger *zap.Logger) port.DocumentRepository {
	return &DocumentRepository{db: db, logger: logger}
}

// GetByID retrieves a document by id, returning (nil, nil) when absent.
func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*entity.Document, error) {
	query := `
		SELECT id, name, storage_path, content_type, size_bytes,
			subscription_id, interest_id, status, decided_by, decided_at,
			created_at, updated_at
		FROM documents WHERE id = ?
	`

	var d entity.Document
	var subscriptionID, interestID, decidedBy sql.NullInt64
	var decidedAt sql.NullTime

	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&d.ID, &d.Name, &d.StoragePath, &d.ContentType, &d.SizeBytes,
		&subscriptionID, &interestID, &d.Status, &decidedBy, &decidedAt,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get document", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	if subscriptionID.Valid {
		d.SubscriptionID = &subscriptionID.Int64
	}
	if interestID.Valid {
		d.InterestID = &interestID.Int64
	}
	if decidedBy.Valid {
		d.DecidedBy = &decidedBy.Int64
	}
	if decidedAt.Valid {
		d.DecidedAt = &decidedAt.Time
	}
	return &d, nil
}

// Create registers a document record.
func (r *DocumentRepository) Create(ctx context.Context, doc *entity.Document) error {
	query := `
		INSERT INTO documents (
			name, storage_path, content_type, size_bytes,
			subscription_id, interest_id, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		doc.Name, doc.StoragePath, doc.ContentType, doc.SizeBytes,
		nullableInt64(doc.SubscriptionID), nullableInt64(doc.InterestID),
		doc.Status, now, now,
	)
	if err != nil {
		r.logger.Error("Failed to create document", zap.String("name", doc.Name), zap.Error(err))
		return fmt.Errorf("failed to create document: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	doc.ID = id
	return nil
}

// SetStatus stamps the decision onto the document.
func (r *DocumentRepository) SetStatus(ctx context.Context, id int64, upd port.StatusUpdate) error {
	return setRecordStatus(ctx, r.db, "documents", id, upd)
}

// Verify interface compliance
var _ port.DocumentRepository = (*DocumentRepository)(nil)
