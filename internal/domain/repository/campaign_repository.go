package repository

import (
	"context"

	"github.com/faithflow/pledge-service/internal/domain/model"
)

// CampaignRepository defines read access to campaigns. Campaigns are managed
// by the membership system; this service only checks whether a campaign still
// accepts pledges and reads its end date for installment planning.
type CampaignRepository interface {
	// GetByID retrieves a campaign by its identifier, nil when absent
	GetByID(ctx context.Context, id int64) (*model.Campaign, error)
}
