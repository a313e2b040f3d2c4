package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crestbridge/ir-portal/pkg/database"
)

// newTestDB opens a throwaway database with the full schema applied.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:            filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.NewMigrator(db, zap.NewNop()).RunMigrations())
	return db
}

// seedUser inserts a minimal user row and returns its id.
func seedUser(t *testing.T, db *database.DB, email string) int64 {
	t.Helper()
	now := time.Now()
	res, err := db.Exec(`
		INSERT INTO users (email, full_name, is_staff, is_active, must_reset_password, password_hash, created_at, updated_at)
		VALUES (?, ?, 0, 1, 0, 'x', ?, ?)`,
		email, "Test User", now, now)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// seedInvestor inserts a minimal investor row and returns its id.
func seedInvestor(t *testing.T, db *database.DB, email string) int64 {
	t.Helper()
	now := time.Now()
	res, err := db.Exec(`
		INSERT INTO investors (email, legal_name, kyc_status, created_at, updated_at)
		VALUES (?, ?, 'PENDING', ?, ?)`,
		email, "Test Investor LLC", now, now)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// seedDeal inserts a minimal deal row and returns its id.
func seedDeal(t *testing.T, db *database.DB, name string) int64 {
	t.Helper()
	now := time.Now()
	res, err := db.Exec(`
		INSERT INTO deals (name, status, created_at, updated_at)
		VALUES (?, 'PENDING', ?, ?)`,
		name, now, now)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// seedSubmission inserts a pending deal submission and returns its id.
func seedSubmission(t *testing.T, db *database.DB, investorID, dealID int64, amount float64) int64 {
	t.Helper()
	now := time.Now()
	res, err := db.Exec(`
		INSERT INTO deal_submissions (investor_id, deal_id, amount, status, created_at, updated_at)
		VALUES (?, ?, ?, 'PENDING', ?, ?)`,
		investorID, dealID, amount, now, now)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// seedTicket inserts a pending ticket and returns its id.
func seedTicket(t *testing.T, db *database.DB, entityType string, entityID int64) int64 {
	t.Helper()
	now := time.Now()
	res, err := db.Exec(`
		INSERT INTO approval_tickets (entity_type, entity_id, status, created_at, updated_at)
		VALUES (?, ?, 'pending', ?, ?)`,
		entityType, entityID, now, now)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}
