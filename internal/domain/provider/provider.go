package provider

import (
	"context"

	"github.com/shopspring/decimal"
)

// PaymentGateway defines the interface for the external mobile-money rail.
// Initiate is synchronous: the rail either accepts the collection request
// (outcome arrives later on the callback endpoint) or rejects it outright.
type PaymentGateway interface {
	// Initiate asks the rail to collect amount from contact, tagged with the
	// caller's reference for correlation.
	Initiate(ctx context.Context, req *InitiateRequest) (*InitiateResponse, error)

	// VerifyCallback checks the signature on an inbound outcome notification.
	VerifyCallback(payload []byte, signature string) bool

	// GatewayName returns the rail identifier
	GatewayName() string
}

// InitiateRequest represents a collection request sent to the rail
type InitiateRequest struct {
	Contact   string          `json:"contact"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
	Narrative string          `json:"narrative,omitempty"`
}

// InitiateResponse represents the rail's synchronous answer
type InitiateResponse struct {
	Accepted         bool   `json:"accepted"`
	GatewayReference string `json:"gateway_reference,omitempty"`
	RejectReason     string `json:"reject_reason,omitempty"`
}

// GatewayError represents a transport or protocol failure talking to the rail
type GatewayError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}
