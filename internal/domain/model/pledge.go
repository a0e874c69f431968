package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PledgeStatus represents the lifecycle state of a pledge
type PledgeStatus string

const (
	PledgeStatusPending   PledgeStatus = "pending"
	PledgeStatusPartial   PledgeStatus = "partial"
	PledgeStatusCompleted PledgeStatus = "completed"
	PledgeStatusCancelled PledgeStatus = "cancelled"
)

// Scan implements sql.Scanner interface
func (s *PledgeStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = PledgeStatus(v)
	case []byte:
		*s = PledgeStatus(v)
	default:
		*s = PledgeStatusPending
	}
	return nil
}

// Value implements driver.Valuer interface
func (s PledgeStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// Terminal reports whether no further payments are accepted against the pledge
func (s PledgeStatus) Terminal() bool {
	return s == PledgeStatusCompleted || s == PledgeStatusCancelled
}

// InstallmentPlan represents the cadence by which a pledge is paid down
type InstallmentPlan string

const (
	InstallmentPlanLumpSum  InstallmentPlan = "lump-sum"
	InstallmentPlanWeekly   InstallmentPlan = "weekly"
	InstallmentPlanBiWeekly InstallmentPlan = "bi-weekly"
	InstallmentPlanMonthly  InstallmentPlan = "monthly"
)

// Scan implements sql.Scanner interface
func (p *InstallmentPlan) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*p = InstallmentPlan(v)
	case []byte:
		*p = InstallmentPlan(v)
	default:
		*p = InstallmentPlanLumpSum
	}
	return nil
}

// Value implements driver.Valuer interface
func (p InstallmentPlan) Value() (driver.Value, error) {
	return string(p), nil
}

// CadenceDays returns the number of days between installments, or 0 for lump-sum
func (p InstallmentPlan) CadenceDays() int {
	switch p {
	case InstallmentPlanWeekly:
		return 7
	case InstallmentPlanBiWeekly:
		return 14
	case InstallmentPlanMonthly:
		return 30
	default:
		return 0
	}
}

// Valid reports whether the plan is one of the known cadences
func (p InstallmentPlan) Valid() bool {
	switch p {
	case InstallmentPlanLumpSum, InstallmentPlanWeekly, InstallmentPlanBiWeekly, InstallmentPlanMonthly:
		return true
	}
	return false
}

// Pledge represents a member's multi-installment commitment toward a campaign
type Pledge struct {
	ID               int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CampaignID       int64           `gorm:"not null;index" json:"campaign_id"`
	MemberID         uuid.UUID       `gorm:"column:member_id;type:uuid;not null;index" json:"member_id"`
	PledgedAmount    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"pledged_amount"`
	PaidAmount       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"paid_amount"`
	RemainingAmount  decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"remaining_amount"`
	InstallmentPlan  InstallmentPlan `gorm:"type:installment_plan;not null" json:"installment_plan"`
	InstallmentCount int             `gorm:"not null;default:1" json:"installment_count"`
	DueDate          time.Time       `gorm:"not null;index" json:"due_date"`
	Status           PledgeStatus    `gorm:"type:pledge_status;not null;default:'pending';index" json:"status"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `gorm:"default:now()" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Pledge) TableName() string {
	return "pledges"
}

// DeriveStatus returns the non-cancelled status implied by the paid/pledged amounts
func DeriveStatus(paid, pledged decimal.Decimal) PledgeStatus {
	switch {
	case paid.GreaterThanOrEqual(pledged):
		return PledgeStatusCompleted
	case paid.IsPositive():
		return PledgeStatusPartial
	default:
		return PledgeStatusPending
	}
}

// Overdue reports whether the pledge's due date has passed without completion
func (p *Pledge) Overdue(now time.Time) bool {
	return p.DueDate.Before(now) && !p.Status.Terminal()
}
