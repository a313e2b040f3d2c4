package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/crestbridge/ir-portal/internal/application/port"
	"github.com/crestbridge/ir-portal/internal/infrastructure/persistence/sqlite"
)

// setRecordStatus stamps status, actor and timestamp onto a decided record.
// The table name comes from a fixed call site, never from input.
func setRecordStatus(ctx context.Context, db *sql.DB, table string, id int64, upd port.StatusUpdate) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = ?, decided_by = ?, decided_at = ?, updated_at = ?
		WHERE id = ?
	`, table)

	result, err := sqlite.ExecutorFrom(ctx, db).ExecContext(ctx, query,
		upd.Status, upd.ActorID, upd.At, upd.At, id)
	if err != nil {
		return fmt.Errorf("failed to update %s status: %w", table, err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("%s %d not found", table, id)
	}
	return nil
}
