package repository

import (
	"context"

	"github.com/faithflow/pledge-service/internal/domain/model"
)

// OutcomeResult reports what a callback resolution did. Exactly one of
// Applied, Duplicate, or a non-empty Rejected reason is set for success
// outcomes; failure outcomes set none of them.
type OutcomeResult struct {
	Attempt *model.PaymentAttempt
	Pledge  *model.Pledge
	// Applied is true when a success outcome credited the pledge
	Applied bool
	// Duplicate is true when the attempt was already terminal
	Duplicate bool
	// Rejected carries the failure reason when a success outcome could not be
	// applied (overpayment, cancelled pledge) and the attempt was failed with
	// needs_review set
	Rejected string
}

// ReconciliationRepository resolves asynchronous gateway outcomes. The
// attempt transition, the pledge balance change, and the audit entry are
// committed in a single transaction so a crash can never leave a half-applied
// outcome.
type ReconciliationRepository interface {
	// ResolveSuccess applies a successful collection identified by the rail's
	// reference: locks the attempt and its pledge, credits the pledge if the
	// amount still fits, and marks the attempt. Returns UnknownAttemptError
	// when no attempt carries the reference.
	ResolveSuccess(ctx context.Context, gatewayReference, receiptID string) (*OutcomeResult, error)

	// ResolveFailure marks the referenced attempt failed with the rail's
	// reason. Terminal attempts are left untouched and reported as Duplicate.
	ResolveFailure(ctx context.Context, gatewayReference, reason string) (*OutcomeResult, error)
}
