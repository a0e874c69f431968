package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/faithflow/pledge-service/internal/domain/dto"
	"github.com/faithflow/pledge-service/internal/domain/model"
	domainRepo "github.com/faithflow/pledge-service/internal/domain/repository"
)

// appendAudit inserts an audit entry on the caller's transaction. Every
// mutating repository in this package calls it before committing, so an audit
// failure rolls the financial change back with it.
func appendAudit(tx *gorm.DB, entry *model.AuditLogEntry) error {
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// auditLogRepository implements the AuditLogRepository interface
type auditLogRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *gorm.DB, logger *zap.Logger) domainRepo.AuditLogRepository {
	return &auditLogRepository{
		db:     db,
		logger: logger,
	}
}

// List retrieves audit entries matching the filters, newest first
func (r *auditLogRepository) List(ctx context.Context, filters dto.AuditFilters) ([]model.AuditLogEntry, error) {
	var entries []model.AuditLogEntry

	query := r.applyFilters(r.db.WithContext(ctx), filters).
		Order("created_at DESC").
		Limit(filters.Limit).
		Offset(filters.Offset)

	if err := query.Find(&entries).Error; err != nil {
		r.logger.Error("failed to list audit entries", zap.Error(err))
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}

	return entries, nil
}

// Count counts audit entries matching the filters
func (r *auditLogRepository) Count(ctx context.Context, filters dto.AuditFilters) (int64, error) {
	var count int64

	query := r.applyFilters(r.db.WithContext(ctx).Model(&model.AuditLogEntry{}), filters)

	if err := query.Count(&count).Error; err != nil {
		r.logger.Error("failed to count audit entries", zap.Error(err))
		return 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	return count, nil
}

func (r *auditLogRepository) applyFilters(query *gorm.DB, filters dto.AuditFilters) *gorm.DB {
	if filters.ActorID != nil {
		query = query.Where("actor_id = ?", *filters.ActorID)
	}
	if filters.Action != nil && *filters.Action != "" {
		query = query.Where("action = ?", *filters.Action)
	}
	if filters.TransactionID != nil {
		query = query.Where("transaction_id = ?", *filters.TransactionID)
	}
	if filters.PledgeID != nil {
		query = query.Where("pledge_id = ?", *filters.PledgeID)
	}
	if filters.StartDate != nil {
		query = query.Where("created_at >= ?", *filters.StartDate)
	}
	if filters.EndDate != nil {
		query = query.Where("created_at <= ?", *filters.EndDate)
	}
	return query
}
