package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainErrors "github.com/faithflow/pledge-service/internal/domain/errors"
	"github.com/faithflow/pledge-service/internal/domain/model"
	domainRepo "github.com/faithflow/pledge-service/internal/domain/repository"
)

// SystemActorID identifies reconciliation writes in the audit trail. Outcomes
// arrive from the payment rail, not from an authenticated member.
var SystemActorID = uuid.Nil

// reconciliationRepository implements the ReconciliationRepository interface
type reconciliationRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewReconciliationRepository creates a new reconciliation repository
func NewReconciliationRepository(db *gorm.DB, logger *zap.Logger) domainRepo.ReconciliationRepository {
	return &reconciliationRepository{
		db:     db,
		logger: logger,
	}
}

// ResolveSuccess applies a successful collection in one transaction. The
// attempt is locked first, then its pledge, always in that order so two
// callbacks can never deadlock each other. A success that cannot be applied
// (cancelled pledge, overpayment) fails the attempt and flags it for review
// instead of crediting the ledger.
func (r *reconciliationRepository) ResolveSuccess(ctx context.Context, gatewayReference, receiptID string) (*domainRepo.OutcomeResult, error) {
	result := &domainRepo.OutcomeResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempt, err := r.lockAttempt(tx, gatewayReference)
		if err != nil {
			return err
		}
		result.Attempt = attempt

		if attempt.Status.Terminal() {
			result.Duplicate = true
			return nil
		}

		var pledge model.Pledge
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", attempt.PledgeID).
			First(&pledge).Error
		if err != nil {
			return fmt.Errorf("failed to lock pledge: %w", err)
		}

		if pledge.Status == model.PledgeStatusCancelled {
			result.Rejected = model.FailureReasonPledgeCancelled
			result.Pledge = &pledge
			return r.failAttempt(tx, attempt, model.FailureReasonPledgeCancelled, model.JSONB{
				"receipt_id":    receiptID,
				"pledge_status": string(pledge.Status),
			})
		}

		remaining := pledge.PledgedAmount.Sub(pledge.PaidAmount)
		if attempt.Amount.GreaterThan(remaining) {
			result.Rejected = model.FailureReasonOverpayment
			result.Pledge = &pledge
			return r.failAttempt(tx, attempt, model.FailureReasonOverpayment, model.JSONB{
				"receipt_id": receiptID,
				"remaining":  remaining.String(),
			})
		}

		pledge.PaidAmount = pledge.PaidAmount.Add(attempt.Amount)
		pledge.RemainingAmount = pledge.PledgedAmount.Sub(pledge.PaidAmount)
		pledge.Status = model.DeriveStatus(pledge.PaidAmount, pledge.PledgedAmount)
		pledge.UpdatedAt = time.Now()

		if err := tx.Save(&pledge).Error; err != nil {
			return fmt.Errorf("failed to apply payment to pledge: %w", err)
		}

		attempt.Status = model.AttemptStatusSuccess
		attempt.ReceiptID = &receiptID
		attempt.UpdatedAt = time.Now()

		if err := tx.Save(attempt).Error; err != nil {
			return fmt.Errorf("failed to mark attempt success: %w", err)
		}

		result.Applied = true
		result.Pledge = &pledge

		return appendAudit(tx, &model.AuditLogEntry{
			TransactionID: attempt.TransactionID,
			Action:        model.AuditActionPaymentSuccess,
			PledgeID:      &attempt.PledgeID,
			Amount:        attempt.Amount,
			Status:        string(pledge.Status),
			ActorID:       SystemActorID,
			Metadata: model.JSONB{
				"receipt_id":  receiptID,
				"paid_amount": pledge.PaidAmount.String(),
			},
		})
	})

	if err != nil {
		r.logger.Error("failed to resolve success outcome",
			zap.String("gateway_reference", gatewayReference),
			zap.Error(err))
		return nil, err
	}

	return result, nil
}

// ResolveFailure marks the referenced attempt failed with the rail's reason
func (r *reconciliationRepository) ResolveFailure(ctx context.Context, gatewayReference, reason string) (*domainRepo.OutcomeResult, error) {
	result := &domainRepo.OutcomeResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempt, err := r.lockAttempt(tx, gatewayReference)
		if err != nil {
			return err
		}
		result.Attempt = attempt

		if attempt.Status.Terminal() {
			result.Duplicate = true
			return nil
		}

		return r.failAttempt(tx, attempt, reason, model.JSONB{
			"gateway_reason": reason,
		})
	})

	if err != nil {
		r.logger.Error("failed to resolve failure outcome",
			zap.String("gateway_reference", gatewayReference),
			zap.Error(err))
		return nil, err
	}

	return result, nil
}

func (r *reconciliationRepository) lockAttempt(tx *gorm.DB, gatewayReference string) (*model.PaymentAttempt, error) {
	var attempt model.PaymentAttempt

	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("gateway_reference = ?", gatewayReference).
		First(&attempt).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.NewUnknownAttemptError(gatewayReference)
		}
		return nil, fmt.Errorf("failed to lock attempt: %w", err)
	}

	return &attempt, nil
}

// failAttempt closes the locked attempt with needs_review set and records
// payment_failed on the caller's transaction.
func (r *reconciliationRepository) failAttempt(tx *gorm.DB, attempt *model.PaymentAttempt, reason string, metadata model.JSONB) error {
	attempt.Status = model.AttemptStatusFailed
	attempt.FailureReason = &reason
	attempt.NeedsReview = reason != model.FailureReasonGatewayFailed
	attempt.UpdatedAt = time.Now()

	if err := tx.Save(attempt).Error; err != nil {
		return fmt.Errorf("failed to mark attempt failed: %w", err)
	}

	metadata["failure_reason"] = reason

	return appendAudit(tx, &model.AuditLogEntry{
		TransactionID: attempt.TransactionID,
		Action:        model.AuditActionPaymentFailed,
		PledgeID:      &attempt.PledgeID,
		Amount:        attempt.Amount,
		Status:        string(attempt.Status),
		ActorID:       SystemActorID,
		Metadata:      metadata,
	})
}
