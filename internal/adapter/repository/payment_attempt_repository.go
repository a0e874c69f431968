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

	"github.com/faithflow/pledge-service/internal/domain/model"
	domainRepo "github.com/faithflow/pledge-service/internal/domain/repository"
)

// paymentAttemptRepository implements the PaymentAttemptRepository interface
type paymentAttemptRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPaymentAttemptRepository creates a new payment attempt repository
func NewPaymentAttemptRepository(db *gorm.DB, logger *zap.Logger) domainRepo.PaymentAttemptRepository {
	return &paymentAttemptRepository{
		db:     db,
		logger: logger,
	}
}

// CreateOrGetOpen inserts the attempt unless an open attempt with the same
// fingerprint exists. The partial unique index on open-attempt fingerprints
// makes the race safe: a concurrent duplicate hits ON CONFLICT DO NOTHING and
// both callers converge on the surviving row.
func (r *paymentAttemptRepository) CreateOrGetOpen(ctx context.Context, attempt *model.PaymentAttempt, actorID uuid.UUID) (*model.PaymentAttempt, bool, error) {
	var result *model.PaymentAttempt
	var created bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		insert := tx.Clauses(clause.OnConflict{
			Columns:     []clause.Column{{Name: "fingerprint"}},
			TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "status = 'pending'"}}},
			DoNothing:   true,
		}).Create(attempt)

		if insert.Error != nil {
			return fmt.Errorf("failed to create payment attempt: %w", insert.Error)
		}

		if insert.RowsAffected == 0 {
			var existing model.PaymentAttempt
			err := tx.Where("fingerprint = ? AND status = ?", attempt.Fingerprint, model.AttemptStatusPending).
				First(&existing).Error
			if err != nil {
				return fmt.Errorf("failed to fetch open attempt: %w", err)
			}
			result = &existing
			return nil
		}

		created = true
		result = attempt

		return appendAudit(tx, &model.AuditLogEntry{
			TransactionID: attempt.TransactionID,
			Action:        model.AuditActionPaymentInitiated,
			PledgeID:      &attempt.PledgeID,
			Amount:        attempt.Amount,
			Status:        string(attempt.Status),
			ActorID:       actorID,
			Metadata: model.JSONB{
				"contact": attempt.Contact,
			},
		})
	})

	if err != nil {
		r.logger.Error("failed to create or get payment attempt",
			zap.Int64("pledge_id", attempt.PledgeID),
			zap.Error(err))
		return nil, false, err
	}

	return result, created, nil
}

// GetByID retrieves an attempt by its identifier
func (r *paymentAttemptRepository) GetByID(ctx context.Context, id int64) (*model.PaymentAttempt, error) {
	var attempt model.PaymentAttempt

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&attempt).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("failed to get payment attempt",
			zap.Int64("attempt_id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get payment attempt: %w", err)
	}

	return &attempt, nil
}

// GetByTransactionID retrieves an attempt by its public transaction id
func (r *paymentAttemptRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*model.PaymentAttempt, error) {
	var attempt model.PaymentAttempt

	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&attempt).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("failed to get payment attempt by transaction id",
			zap.String("transaction_id", transactionID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get payment attempt: %w", err)
	}

	return &attempt, nil
}

// AttachGatewayReference stores the rail's correlation reference on a pending attempt
func (r *paymentAttemptRepository) AttachGatewayReference(ctx context.Context, id int64, reference string) error {
	result := r.db.WithContext(ctx).
		Model(&model.PaymentAttempt{}).
		Where("id = ? AND status = ?", id, model.AttemptStatusPending).
		Updates(map[string]interface{}{
			"gateway_reference": reference,
			"updated_at":        time.Now(),
		})

	if result.Error != nil {
		r.logger.Error("failed to attach gateway reference",
			zap.Int64("attempt_id", id),
			zap.Error(result.Error))
		return fmt.Errorf("failed to attach gateway reference: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("attempt %d is not pending", id)
	}

	return nil
}

// MarkFailed transitions a pending attempt to failed with the given reason.
// Already-terminal attempts are left untouched.
func (r *paymentAttemptRepository) MarkFailed(ctx context.Context, id int64, reason string, needsReview bool, actorID uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var attempt model.PaymentAttempt
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&attempt).Error
		if err != nil {
			return fmt.Errorf("failed to lock attempt: %w", err)
		}

		if attempt.Status.Terminal() {
			return nil
		}

		attempt.Status = model.AttemptStatusFailed
		attempt.FailureReason = &reason
		attempt.NeedsReview = needsReview
		attempt.UpdatedAt = time.Now()

		if err := tx.Save(&attempt).Error; err != nil {
			return fmt.Errorf("failed to mark attempt failed: %w", err)
		}

		return appendAudit(tx, &model.AuditLogEntry{
			TransactionID: attempt.TransactionID,
			Action:        model.AuditActionPaymentFailed,
			PledgeID:      &attempt.PledgeID,
			Amount:        attempt.Amount,
			Status:        string(attempt.Status),
			ActorID:       actorID,
			Metadata: model.JSONB{
				"failure_reason": reason,
				"needs_review":   needsReview,
			},
		})
	})

	if err != nil {
		r.logger.Error("failed to mark attempt failed",
			zap.Int64("attempt_id", id),
			zap.String("reason", reason),
			zap.Error(err))
		return err
	}

	return nil
}
