package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Campaign is the read-side record of a fundraising campaign. Campaign
// management lives elsewhere; this service only consults it when validating
// pledge creation.
type Campaign struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string          `gorm:"size:200;not null" json:"name"`
	GoalAmount    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"goal_amount"`
	CurrentAmount decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"current_amount"`
	StartDate     time.Time       `gorm:"not null" json:"start_date"`
	EndDate       time.Time       `gorm:"not null;index" json:"end_date"`
	AllowPledges  bool            `gorm:"not null;default:true" json:"allow_pledges"`
	CreatedAt     time.Time       `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for GORM
func (Campaign) TableName() string {
	return "campaigns"
}

// AcceptsPledges reports whether a new pledge may be created against the campaign
func (c *Campaign) AcceptsPledges(now time.Time) bool {
	return c.AllowPledges && c.EndDate.After(now)
}
