package database

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Migrator handles database migrations
type Migrator struct {
	db     *DB
	logger *zap.Logger
}

// NewMigrator creates a new migrator
func NewMigrator(db *DB, logger *zap.Logger) *Migrator {
	return &Migrator{
		db:     db,
		logger: logger,
	}
}

// createMigrationsTable creates the migrations tracking table
func (m *Migrator) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
	_, err := m.db.Exec(query)
	return err
}

// getAppliedMigrations returns the list of applied migration versions
func (m *Migrator) getAppliedMigrations() (map[int]bool, error) {
	rows, err := m.db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// RunMigrations applies all pending migrations in version order. The
// migration list ships in the binary, so a fresh database bootstraps
// without external schema files.
func (m *Migrator) RunMigrations() error {
	m.logger.Info("Starting database migrations")

	if err := m.createMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, migration := range migrations {
		if applied[migration.Version] {
			m.logger.Debug("Skipping applied migration",
				zap.Int("version", migration.Version),
				zap.String("name", migration.Name))
			continue
		}

		m.logger.Info("Applying migration",
			zap.Int("version", migration.Version),
			zap.String("name", migration.Name))

		if err := m.applyMigration(migration); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
		}
	}

	m.logger.Info("Database migrations completed successfully")
	return nil
}

// applyMigration applies a single migration within a transaction
func (m *Migrator) applyMigration(migration Migration) error {
	return m.db.WithTransaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(migration.SQL); err != nil {
			return fmt.Errorf("failed to execute migration SQL: %w", err)
		}

		_, err := tx.Exec(
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			migration.Version,
			migration.Name,
		)
		if err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}

		return nil
	})
}

// migrations is the ordered schema history. Append only; never edit an
// applied version.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		SQL:     initialSchema,
	},
}

const initialSchema = `
CREATE TABLE users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL UNIQUE,
	full_name TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	is_staff INTEGER NOT NULL DEFAULT 0,
	is_active INTEGER NOT NULL DEFAULT 1,
	must_reset_password INTEGER NOT NULL DEFAULT 0,
	password_hash TEXT NOT NULL,
	anonymized_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE investors (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER REFERENCES users(id),
	email TEXT NOT NULL,
	legal_name TEXT NOT NULL,
	kyc_status TEXT NOT NULL DEFAULT 'pending',
	kyc_approved_by INTEGER REFERENCES users(id),
	kyc_approved_at DATETIME,
	anonymized_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE deals (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	default_fee_plan_id INTEGER,
	status TEXT NOT NULL DEFAULT 'pending',
	decided_by INTEGER REFERENCES users(id),
	decided_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE fee_plans (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	deal_id INTEGER NOT NULL REFERENCES deals(id),
	name TEXT NOT NULL,
	structure TEXT NOT NULL DEFAULT '',
	setup_fee_percent REAL NOT NULL DEFAULT 0,
	management_fee_percent REAL NOT NULL DEFAULT 0,
	carry_percent REAL NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);

CREATE TABLE valuations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	deal_id INTEGER NOT NULL REFERENCES deals(id),
	price_per_share REAL NOT NULL,
	effective_at DATETIME NOT NULL
);

CREATE TABLE allocations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	investor_id INTEGER NOT NULL REFERENCES investors(id),
	deal_id INTEGER NOT NULL REFERENCES deals(id),
	shares REAL NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	decided_by INTEGER REFERENCES users(id),
	decided_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE deal_interests (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	investor_id INTEGER NOT NULL REFERENCES investors(id),
	deal_id INTEGER NOT NULL REFERENCES deals(id),
	status TEXT NOT NULL DEFAULT 'pending',
	decided_by INTEGER REFERENCES users(id),
	decided_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE deal_submissions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	investor_id INTEGER NOT NULL REFERENCES investors(id),
	deal_id INTEGER NOT NULL REFERENCES deals(id),
	amount REAL NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'pending',
	decided_by INTEGER REFERENCES users(id),
	decided_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE data_room_access (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id),
	deal_id INTEGER NOT NULL REFERENCES deals(id),
	expires_at DATETIME NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE subscriptions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	investor_id INTEGER NOT NULL REFERENCES investors(id),
	deal_id INTEGER NOT NULL REFERENCES deals(id),
	vehicle_id INTEGER NOT NULL,
	submission_id INTEGER REFERENCES deal_submissions(id),
	fee_plan_id INTEGER REFERENCES fee_plans(id),
	setup_fee_percent REAL NOT NULL DEFAULT 0,
	management_fee_percent REAL NOT NULL DEFAULT 0,
	carry_percent REAL NOT NULL DEFAULT 0,
	price_per_share REAL NOT NULL DEFAULT 0,
	draft_shares REAL NOT NULL DEFAULT 0,
	amount REAL NOT NULL DEFAULT 0,
	funding_deadline DATETIME,
	introducer_user_id INTEGER REFERENCES users(id),
	status TEXT NOT NULL DEFAULT 'draft',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE(investor_id, deal_id, vehicle_id)
);

CREATE TABLE referral_links (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	investor_id INTEGER NOT NULL REFERENCES investors(id),
	introducer_user_id INTEGER NOT NULL REFERENCES users(id),
	active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL
);

CREATE TABLE documents (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	content_type TEXT NOT NULL DEFAULT '',
	size_bytes INTEGER NOT NULL DEFAULT 0,
	subscription_id INTEGER REFERENCES subscriptions(id),
	interest_id INTEGER REFERENCES deal_interests(id),
	status TEXT NOT NULL DEFAULT 'draft',
	decided_by INTEGER REFERENCES users(id),
	decided_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE signature_requests (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id INTEGER NOT NULL REFERENCES documents(id),
	user_id INTEGER NOT NULL REFERENCES users(id),
	role TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE wire_instructions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	deal_id INTEGER NOT NULL REFERENCES deals(id),
	status TEXT NOT NULL DEFAULT 'pending',
	decided_by INTEGER REFERENCES users(id),
	decided_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE sale_requests (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	investor_id INTEGER NOT NULL REFERENCES investors(id),
	deal_id INTEGER NOT NULL REFERENCES deals(id),
	shares REAL NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	decided_by INTEGER REFERENCES users(id),
	decided_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE member_invitations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL,
	role TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	expires_at DATETIME,
	requested_by INTEGER REFERENCES users(id),
	decided_by INTEGER REFERENCES users(id),
	decided_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE arranger_profiles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id),
	firm_name TEXT NOT NULL DEFAULT '',
	bio TEXT NOT NULL DEFAULT '',
	website TEXT NOT NULL DEFAULT '',
	contact_line TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE notifications (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id),
	title TEXT NOT NULL,
	message TEXT NOT NULL,
	type TEXT NOT NULL,
	metadata TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);

CREATE TABLE audit_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	actor_user_id INTEGER,
	action TEXT NOT NULL,
	entity TEXT NOT NULL,
	entity_id INTEGER NOT NULL,
	severity TEXT NOT NULL DEFAULT 'info',
	metadata TEXT NOT NULL DEFAULT '',
	anonymized INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);

CREATE TABLE approval_tickets (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	entity_type TEXT NOT NULL,
	entity_id INTEGER NOT NULL,
	entity_metadata TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'pending',
	requested_by INTEGER REFERENCES users(id),
	approved_by INTEGER REFERENCES users(id),
	notes TEXT NOT NULL DEFAULT '',
	rejection_reason TEXT NOT NULL DEFAULT '',
	actual_processing_time_hours REAL,
	created_at DATETIME NOT NULL,
	approved_at DATETIME,
	resolved_at DATETIME,
	updated_at DATETIME NOT NULL,
	deleted_at DATETIME
);

CREATE INDEX idx_approval_tickets_status ON approval_tickets(status);
CREATE INDEX idx_approval_tickets_entity ON approval_tickets(entity_type, entity_id);
CREATE INDEX idx_notifications_user ON notifications(user_id);
CREATE INDEX idx_audit_log_actor ON audit_log(actor_user_id);
`
