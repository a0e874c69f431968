package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/faithflow/pledge-service/internal/domain/dto"
	"github.com/faithflow/pledge-service/internal/domain/repository"
)

// AuditService exposes the read side of the audit trail
type AuditService struct {
	auditRepo repository.AuditLogRepository
	logger    *zap.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo repository.AuditLogRepository, logger *zap.Logger) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// ListEntries retrieves audit entries matching the filters with pagination
func (s *AuditService) ListEntries(ctx context.Context, filters dto.AuditFilters) (*dto.AuditListResponse, error) {
	filters.SetDefaults()

	entries, err := s.auditRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}

	total, err := s.auditRepo.Count(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to count audit entries: %w", err)
	}

	entryDTOs := make([]dto.AuditEntryDTO, len(entries))
	for i, entry := range entries {
		entryDTOs[i] = dto.AuditEntryDTO{
			ID:            entry.ID,
			TransactionID: entry.TransactionID,
			Action:        string(entry.Action),
			PledgeID:      entry.PledgeID,
			Amount:        entry.Amount.StringFixed(moneyScale),
			Status:        entry.Status,
			ActorID:       entry.ActorID,
			Metadata:      entry.Metadata,
			CreatedAt:     entry.CreatedAt,
		}
	}

	return &dto.AuditListResponse{
		Entries: entryDTOs,
		Pagination: dto.PaginationInfo{
			Total:   total,
			Limit:   filters.Limit,
			Offset:  filters.Offset,
			HasMore: int64(filters.Offset+filters.Limit) < total,
		},
	}, nil
}
