package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InitiatePaymentRequest is the payload for collecting money against a pledge
type InitiatePaymentRequest struct {
	Amount  decimal.Decimal `json:"amount" validate:"required"`
	Contact string          `json:"contact" validate:"required"`
}

// PaymentAttemptDTO represents a payment attempt for API responses. Duplicate
// is set when the request matched an already-open attempt instead of creating
// a new one.
type PaymentAttemptDTO struct {
	ID               int64     `json:"id"`
	TransactionID    uuid.UUID `json:"transaction_id"`
	PledgeID         int64     `json:"pledge_id"`
	Amount           string    `json:"amount"`
	Contact          string    `json:"contact"`
	Status           string    `json:"status"`
	GatewayReference string    `json:"gateway_reference,omitempty"`
	FailureReason    string    `json:"failure_reason,omitempty"`
	Duplicate        bool      `json:"duplicate,omitempty"`
	NeedsReview      bool      `json:"needs_review,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// RecordContributionRequest is the payload for recording an offline
// contribution (cash, transfer) directly against a pledge.
type RecordContributionRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Method string          `json:"method" validate:"required,oneof=cash transfer cheque"`
	Notes  string          `json:"notes" validate:"omitempty,max=500"`
}

// GatewayCallbackRequest is the payload delivered by the mobile-money rail
// when a payment outcome is known.
type GatewayCallbackRequest struct {
	GatewayReference string `json:"gateway_reference" validate:"required"`
	Status           string `json:"status" validate:"required,oneof=success failed"`
	ReceiptID        string `json:"receipt_id,omitempty"`
}
