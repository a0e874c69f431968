package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/faithflow/pledge-service/internal/domain/dto"
	"github.com/faithflow/pledge-service/internal/domain/model"
)

// PledgeRepository defines the interface for pledge data operations. Every
// mutating method appends its audit entry inside the same database
// transaction; a failed audit write fails the whole operation.
type PledgeRepository interface {
	// Create persists a new pledge and records pledge_created
	Create(ctx context.Context, pledge *model.Pledge, actorID uuid.UUID) error

	// GetByID retrieves a pledge by its identifier, nil when absent
	GetByID(ctx context.Context, id int64) (*model.Pledge, error)

	// List retrieves pledges matching the filters
	List(ctx context.Context, filters dto.PledgeFilters) ([]model.Pledge, error)

	// Count counts pledges matching the filters
	Count(ctx context.Context, filters dto.PledgeFilters) (int64, error)

	// Update persists edited pledge fields and records pledge_updated with the
	// changed fields as metadata
	Update(ctx context.Context, pledge *model.Pledge, changed model.JSONB, actorID uuid.UUID) error

	// Cancel transitions a pending or partial pledge to cancelled
	Cancel(ctx context.Context, id int64, actorID uuid.UUID) (*model.Pledge, error)

	// Delete removes a pledge; the deletion itself is audited
	Delete(ctx context.Context, id int64, actorID uuid.UUID) error

	// ApplyPayment increments the paid amount under a row lock, recomputes the
	// remaining amount and status, and records the given audit action.
	// Rejects amounts that would exceed the pledged amount and payments
	// against cancelled pledges.
	ApplyPayment(ctx context.Context, id int64, amount decimal.Decimal, transactionID, actorID uuid.UUID, action model.AuditAction, metadata model.JSONB) (*model.Pledge, error)
}
