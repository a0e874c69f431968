package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuditAction identifies the financial state change an audit entry records
type AuditAction string

const (
	AuditActionPledgeCreated        AuditAction = "pledge_created"
	AuditActionPledgeUpdated        AuditAction = "pledge_updated"
	AuditActionPledgeCancelled      AuditAction = "pledge_cancelled"
	AuditActionPledgeDeleted        AuditAction = "pledge_deleted"
	AuditActionPaymentInitiated     AuditAction = "payment_initiated"
	AuditActionPaymentSuccess       AuditAction = "payment_success"
	AuditActionPaymentFailed        AuditAction = "payment_failed"
	AuditActionContributionRecorded AuditAction = "contribution_recorded"
)

// Scan implements sql.Scanner interface
func (a *AuditAction) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*a = AuditAction(v)
	case []byte:
		*a = AuditAction(v)
	default:
		return nil
	}
	return nil
}

// Value implements driver.Valuer interface
func (a AuditAction) Value() (driver.Value, error) {
	return string(a), nil
}

// AuditLogEntry is an append-only record of a financial state change.
// Rows are never updated or deleted after insertion; the repository exposes
// no mutation methods and a database trigger rejects UPDATE and DELETE.
type AuditLogEntry struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionID uuid.UUID       `gorm:"column:transaction_id;type:uuid;not null;index" json:"transaction_id"`
	Action        AuditAction     `gorm:"type:audit_action;not null;index:idx_audit_entries_action_created" json:"action"`
	PledgeID      *int64          `gorm:"index" json:"pledge_id,omitempty"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"amount"`
	Status        string          `gorm:"size:50;not null" json:"status"`
	ActorID       uuid.UUID       `gorm:"column:actor_id;type:uuid;not null;index" json:"actor_id"`
	Metadata      JSONB           `gorm:"type:jsonb;default:'{}'" json:"metadata,omitempty"`
	CreatedAt     time.Time       `gorm:"default:now();index:idx_audit_entries_action_created" json:"created_at"`
}

// TableName specifies the table name for GORM
func (AuditLogEntry) TableName() string {
	return "audit_entries"
}

// JSONB represents a JSONB database type
type JSONB map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONB) Scan(src interface{}) error {
	if src == nil {
		*j = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for JSONB")
	}
	return json.Unmarshal(data, j)
}
