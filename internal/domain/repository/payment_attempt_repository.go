package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/faithflow/pledge-service/internal/domain/model"
)

// PaymentAttemptRepository defines the interface for payment attempt data
// operations.
type PaymentAttemptRepository interface {
	// CreateOrGetOpen inserts the attempt unless an open attempt with the same
	// fingerprint already exists, in which case that attempt is returned and
	// created is false. The insert and its payment_initiated audit entry share
	// one transaction.
	CreateOrGetOpen(ctx context.Context, attempt *model.PaymentAttempt, actorID uuid.UUID) (*model.PaymentAttempt, bool, error)

	// GetByID retrieves an attempt by its identifier, nil when absent
	GetByID(ctx context.Context, id int64) (*model.PaymentAttempt, error)

	// GetByTransactionID retrieves an attempt by its public transaction id
	GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*model.PaymentAttempt, error)

	// AttachGatewayReference stores the rail's correlation reference on a
	// pending attempt
	AttachGatewayReference(ctx context.Context, id int64, reference string) error

	// MarkFailed transitions a pending attempt to failed with the given reason
	// and records payment_failed. No-op (nil, no error) when the attempt is
	// already terminal.
	MarkFailed(ctx context.Context, id int64, reason string, needsReview bool, actorID uuid.UUID) error
}
