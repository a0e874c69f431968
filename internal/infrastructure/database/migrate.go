package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/faithflow/pledge-service/internal/domain/model"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	// Create extensions first
	if err := createExtensions(db); err != nil {
		logger.Error("Failed to create extensions", zap.Error(err))
		return err
	}

	// Create custom types BEFORE auto-migrate
	if err := createCustomTypes(db); err != nil {
		logger.Error("Failed to create custom types", zap.Error(err))
		return err
	}

	// Auto-migrate all models
	err := db.AutoMigrate(
		&model.Campaign{},
		&model.Pledge{},
		&model.PaymentAttempt{},
		&model.AuditLogEntry{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	// Create custom indexes and constraints
	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	// Guard the append-only audit table
	if err := createAuditGuard(db, logger); err != nil {
		logger.Error("Failed to create audit guard", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createExtensions creates required PostgreSQL extensions
func createExtensions(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		return err
	}
	return nil
}

// createCustomTypes creates custom PostgreSQL enum types
func createCustomTypes(db *gorm.DB) error {
	types := map[string]string{
		"pledge_status":    `CREATE TYPE pledge_status AS ENUM ('pending', 'partial', 'completed', 'cancelled')`,
		"installment_plan": `CREATE TYPE installment_plan AS ENUM ('lump-sum', 'weekly', 'bi-weekly', 'monthly')`,
		"attempt_status":   `CREATE TYPE attempt_status AS ENUM ('pending', 'success', 'failed')`,
		"audit_action":     `CREATE TYPE audit_action AS ENUM ('pledge_created', 'pledge_updated', 'pledge_cancelled', 'pledge_deleted', 'payment_initiated', 'payment_success', 'payment_failed', 'contribution_recorded')`,
	}

	for name, ddl := range types {
		var exists bool
		db.Raw(`SELECT EXISTS (SELECT 1 FROM pg_type WHERE typname = ?)`, name).Scan(&exists)
		if !exists {
			if err := db.Exec(ddl).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// createCustomIndexes creates custom indexes that GORM doesn't handle automatically
func createCustomIndexes(db *gorm.DB) error {
	// One open attempt per fingerprint: the insert-time dedup relies on this
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS unique_open_attempt_fingerprint ON payment_attempts (fingerprint) WHERE status = 'pending'`).Error; err != nil {
		return err
	}

	// Pending attempts awaiting a callback, for operational queries
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_payment_attempts_pending ON payment_attempts (created_at) WHERE status = 'pending'`).Error; err != nil {
		return err
	}

	// Flagged attempts surface in the review queue
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_payment_attempts_review ON payment_attempts (created_at) WHERE needs_review = true`).Error; err != nil {
		return err
	}

	return nil
}

// createAuditGuard installs a trigger that rejects UPDATE and DELETE on
// audit_entries, enforcing append-only at the database layer.
func createAuditGuard(db *gorm.DB, logger *zap.Logger) error {
	guardFunctionSQL := `
CREATE OR REPLACE FUNCTION reject_audit_mutation() RETURNS TRIGGER AS $$
BEGIN
    RAISE EXCEPTION 'audit_entries is append-only';
END;
$$ LANGUAGE plpgsql;`

	if err := db.Exec(guardFunctionSQL).Error; err != nil {
		return err
	}

	if err := db.Exec(`DROP TRIGGER IF EXISTS audit_entries_append_only ON audit_entries`).Error; err != nil {
		logger.Warn("Failed to drop existing audit guard trigger", zap.Error(err))
	}

	triggerSQL := `
CREATE TRIGGER audit_entries_append_only
    BEFORE UPDATE OR DELETE ON audit_entries
    FOR EACH ROW EXECUTE FUNCTION reject_audit_mutation();`

	return db.Exec(triggerSQL).Error
}
