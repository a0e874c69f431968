package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AttemptStatus represents the processing status of a payment attempt
type AttemptStatus string

const (
	AttemptStatusPending AttemptStatus = "pending"
	AttemptStatusSuccess AttemptStatus = "success"
	AttemptStatusFailed  AttemptStatus = "failed"
)

// Scan implements sql.Scanner interface
func (a *AttemptStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*a = AttemptStatus(v)
	case []byte:
		*a = AttemptStatus(v)
	default:
		*a = AttemptStatusPending
	}
	return nil
}

// Value implements driver.Valuer interface
func (a AttemptStatus) Value() (driver.Value, error) {
	return string(a), nil
}

// Terminal reports whether the attempt can no longer change state
func (a AttemptStatus) Terminal() bool {
	return a == AttemptStatusSuccess || a == AttemptStatusFailed
}

// Failure reasons recorded when an attempt is closed without a ledger mutation.
const (
	FailureReasonGatewayRejected = "gateway_rejected"
	FailureReasonOverpayment     = "overpayment"
	FailureReasonPledgeCancelled = "pledge_cancelled"
	FailureReasonGatewayFailed   = "gateway_failed"
)

// PaymentAttempt represents a single request to collect money against a pledge
// via the external payment rail. Fingerprint de-duplicates repeated requests
// within the dedup window; a partial unique index on open attempts enforces it.
type PaymentAttempt struct {
	ID               int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionID    uuid.UUID       `gorm:"column:transaction_id;type:uuid;not null;uniqueIndex" json:"transaction_id"`
	PledgeID         int64           `gorm:"not null;index" json:"pledge_id"`
	Amount           decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Contact          string          `gorm:"size:20;not null" json:"contact"`
	Status           AttemptStatus   `gorm:"type:attempt_status;not null;default:'pending';index" json:"status"`
	Fingerprint      string          `gorm:"size:64;not null;index" json:"-"`
	GatewayReference *string         `gorm:"size:100;index" json:"gateway_reference,omitempty"`
	ReceiptID        *string         `gorm:"size:100" json:"receipt_id,omitempty"`
	FailureReason    *string         `gorm:"size:100" json:"failure_reason,omitempty"`
	NeedsReview      bool            `gorm:"not null;default:false;index" json:"needs_review"`
	CreatedAt        time.Time       `gorm:"default:now();index" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (PaymentAttempt) TableName() string {
	return "payment_attempts"
}
