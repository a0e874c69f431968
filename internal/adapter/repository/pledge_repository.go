package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/faithflow/pledge-service/internal/domain/dto"
	domainErrors "github.com/faithflow/pledge-service/internal/domain/errors"
	"github.com/faithflow/pledge-service/internal/domain/model"
	domainRepo "github.com/faithflow/pledge-service/internal/domain/repository"
)

// pledgeRepository implements the PledgeRepository interface
type pledgeRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPledgeRepository creates a new pledge repository instance
func NewPledgeRepository(db *gorm.DB, logger *zap.Logger) domainRepo.PledgeRepository {
	return &pledgeRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists a new pledge and its pledge_created audit entry atomically
func (r *pledgeRepository) Create(ctx context.Context, pledge *model.Pledge, actorID uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(pledge).Error; err != nil {
			return fmt.Errorf("failed to create pledge: %w", err)
		}

		return appendAudit(tx, &model.AuditLogEntry{
			TransactionID: uuid.New(),
			Action:        model.AuditActionPledgeCreated,
			PledgeID:      &pledge.ID,
			Amount:        pledge.PledgedAmount,
			Status:        string(pledge.Status),
			ActorID:       actorID,
			Metadata: model.JSONB{
				"campaign_id":       pledge.CampaignID,
				"installment_plan":  string(pledge.InstallmentPlan),
				"installment_count": pledge.InstallmentCount,
			},
		})
	})

	if err != nil {
		r.logger.Error("failed to create pledge",
			zap.String("member_id", pledge.MemberID.String()),
			zap.Int64("campaign_id", pledge.CampaignID),
			zap.Error(err))
		return err
	}

	return nil
}

// GetByID retrieves a pledge by its identifier
func (r *pledgeRepository) GetByID(ctx context.Context, id int64) (*model.Pledge, error) {
	var pledge model.Pledge

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&pledge).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("failed to get pledge",
			zap.Int64("pledge_id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get pledge: %w", err)
	}

	return &pledge, nil
}

// List retrieves pledges matching the filters
func (r *pledgeRepository) List(ctx context.Context, filters dto.PledgeFilters) ([]model.Pledge, error) {
	var pledges []model.Pledge

	query := r.applyFilters(r.db.WithContext(ctx), filters).
		Order("created_at DESC").
		Limit(filters.Limit).
		Offset(filters.Offset)

	if err := query.Find(&pledges).Error; err != nil {
		r.logger.Error("failed to list pledges", zap.Error(err))
		return nil, fmt.Errorf("failed to list pledges: %w", err)
	}

	return pledges, nil
}

// Count counts pledges matching the filters
func (r *pledgeRepository) Count(ctx context.Context, filters dto.PledgeFilters) (int64, error) {
	var count int64

	query := r.applyFilters(r.db.WithContext(ctx).Model(&model.Pledge{}), filters)

	if err := query.Count(&count).Error; err != nil {
		r.logger.Error("failed to count pledges", zap.Error(err))
		return 0, fmt.Errorf("failed to count pledges: %w", err)
	}

	return count, nil
}

func (r *pledgeRepository) applyFilters(query *gorm.DB, filters dto.PledgeFilters) *gorm.DB {
	if filters.MemberID != nil {
		query = query.Where("member_id = ?", *filters.MemberID)
	}
	if filters.CampaignID != nil {
		query = query.Where("campaign_id = ?", *filters.CampaignID)
	}
	if filters.Status != nil && *filters.Status != "" {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Overdue {
		query = query.Where("due_date < ? AND status NOT IN ?",
			time.Now(), []model.PledgeStatus{model.PledgeStatusCompleted, model.PledgeStatusCancelled})
	}
	return query
}

// Update persists edited pledge fields and records pledge_updated
func (r *pledgeRepository) Update(ctx context.Context, pledge *model.Pledge, changed model.JSONB, actorID uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(pledge).Error; err != nil {
			return fmt.Errorf("failed to update pledge: %w", err)
		}

		return appendAudit(tx, &model.AuditLogEntry{
			TransactionID: uuid.New(),
			Action:        model.AuditActionPledgeUpdated,
			PledgeID:      &pledge.ID,
			Amount:        pledge.PledgedAmount,
			Status:        string(pledge.Status),
			ActorID:       actorID,
			Metadata:      changed,
		})
	})

	if err != nil {
		r.logger.Error("failed to update pledge",
			zap.Int64("pledge_id", pledge.ID),
			zap.Error(err))
		return err
	}

	return nil
}

// Cancel transitions a non-terminal pledge to cancelled under a row lock
func (r *pledgeRepository) Cancel(ctx context.Context, id int64, actorID uuid.UUID) (*model.Pledge, error) {
	var pledge model.Pledge

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&pledge).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return gorm.ErrRecordNotFound
			}
			return fmt.Errorf("failed to lock pledge: %w", err)
		}

		if pledge.Status.Terminal() {
			return domainErrors.NewPledgeTerminalError(pledge.ID, string(pledge.Status))
		}

		previousStatus := pledge.Status
		pledge.Status = model.PledgeStatusCancelled
		pledge.UpdatedAt = time.Now()

		if err := tx.Save(&pledge).Error; err != nil {
			return fmt.Errorf("failed to cancel pledge: %w", err)
		}

		return appendAudit(tx, &model.AuditLogEntry{
			TransactionID: uuid.New(),
			Action:        model.AuditActionPledgeCancelled,
			PledgeID:      &pledge.ID,
			Amount:        pledge.PledgedAmount,
			Status:        string(pledge.Status),
			ActorID:       actorID,
			Metadata: model.JSONB{
				"previous_status": string(previousStatus),
				"paid_amount":     pledge.PaidAmount.String(),
			},
		})
	})

	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Error("failed to cancel pledge",
				zap.Int64("pledge_id", id),
				zap.Error(err))
		}
		return nil, err
	}

	return &pledge, nil
}

// Delete removes a pledge and records pledge_deleted. The audit entry outlives
// the row so the deletion itself stays traceable.
func (r *pledgeRepository) Delete(ctx context.Context, id int64, actorID uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pledge model.Pledge
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&pledge).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return gorm.ErrRecordNotFound
			}
			return fmt.Errorf("failed to lock pledge: %w", err)
		}

		if err := tx.Delete(&model.Pledge{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete pledge: %w", err)
		}

		return appendAudit(tx, &model.AuditLogEntry{
			TransactionID: uuid.New(),
			Action:        model.AuditActionPledgeDeleted,
			PledgeID:      &id,
			Amount:        pledge.PledgedAmount,
			Status:        string(pledge.Status),
			ActorID:       actorID,
			Metadata: model.JSONB{
				"member_id":   pledge.MemberID.String(),
				"campaign_id": pledge.CampaignID,
				"paid_amount": pledge.PaidAmount.String(),
			},
		})
	})

	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Error("failed to delete pledge",
				zap.Int64("pledge_id", id),
				zap.Error(err))
		}
		return err
	}

	return nil
}

// ApplyPayment credits a pledge atomically: the row is locked, the amount is
// checked against the remaining balance, and the balance, status, and audit
// entry all commit together. Concurrent payments serialize on the row lock, so
// the second of two racing overpayments sees the updated balance and fails.
func (r *pledgeRepository) ApplyPayment(ctx context.Context, id int64, amount decimal.Decimal, transactionID, actorID uuid.UUID, action model.AuditAction, metadata model.JSONB) (*model.Pledge, error) {
	var pledge model.Pledge

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&pledge).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return gorm.ErrRecordNotFound
			}
			return fmt.Errorf("failed to lock pledge: %w", err)
		}

		if pledge.Status == model.PledgeStatusCancelled {
			return domainErrors.NewPledgeTerminalError(pledge.ID, string(pledge.Status))
		}

		remaining := pledge.PledgedAmount.Sub(pledge.PaidAmount)
		if amount.GreaterThan(remaining) {
			return domainErrors.NewOverpaymentError(amount, remaining)
		}

		pledge.PaidAmount = pledge.PaidAmount.Add(amount)
		pledge.RemainingAmount = pledge.PledgedAmount.Sub(pledge.PaidAmount)
		pledge.Status = model.DeriveStatus(pledge.PaidAmount, pledge.PledgedAmount)
		pledge.UpdatedAt = time.Now()

		if err := tx.Save(&pledge).Error; err != nil {
			return fmt.Errorf("failed to apply payment: %w", err)
		}

		return appendAudit(tx, &model.AuditLogEntry{
			TransactionID: transactionID,
			Action:        action,
			PledgeID:      &pledge.ID,
			Amount:        amount,
			Status:        string(pledge.Status),
			ActorID:       actorID,
			Metadata:      metadata,
		})
	})

	if err != nil {
		r.logger.Warn("payment not applied",
			zap.Int64("pledge_id", id),
			zap.String("amount", amount.String()),
			zap.Error(err))
		return nil, err
	}

	r.logger.Info("payment applied",
		zap.Int64("pledge_id", id),
		zap.String("amount", amount.String()),
		zap.String("paid_amount", pledge.PaidAmount.String()),
		zap.String("status", string(pledge.Status)))

	return &pledge, nil
}
