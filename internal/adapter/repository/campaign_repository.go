package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/faithflow/pledge-service/internal/domain/model"
	domainRepo "github.com/faithflow/pledge-service/internal/domain/repository"
)

// campaignRepository implements the CampaignRepository interface
type campaignRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *gorm.DB, logger *zap.Logger) domainRepo.CampaignRepository {
	return &campaignRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a campaign by its identifier
func (r *campaignRepository) GetByID(ctx context.Context, id int64) (*model.Campaign, error) {
	var campaign model.Campaign

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&campaign).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("failed to get campaign",
			zap.Int64("campaign_id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	return &campaign, nil
}
