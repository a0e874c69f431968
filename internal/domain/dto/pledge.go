package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreatePledgeRequest is the payload for creating a pledge
type CreatePledgeRequest struct {
	CampaignID       int64           `json:"campaign_id" validate:"required,gt=0"`
	PledgedAmount    decimal.Decimal `json:"pledged_amount" validate:"required"`
	InstallmentPlan  string          `json:"installment_plan" validate:"required,oneof=lump-sum weekly bi-weekly monthly"`
	InstallmentCount int             `json:"installment_count" validate:"omitempty,gte=1"`
	DueDate          time.Time       `json:"due_date" validate:"required"`
	Notes            string          `json:"notes" validate:"omitempty,max=500"`
}

// UpdatePledgeRequest is the payload for editing a pledge. Nil fields are
// left unchanged.
type UpdatePledgeRequest struct {
	PledgedAmount    *decimal.Decimal `json:"pledged_amount,omitempty"`
	InstallmentPlan  *string          `json:"installment_plan,omitempty" validate:"omitempty,oneof=lump-sum weekly bi-weekly monthly"`
	InstallmentCount *int             `json:"installment_count,omitempty" validate:"omitempty,gte=1"`
	DueDate          *time.Time       `json:"due_date,omitempty"`
	Notes            *string          `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// PledgeFilters contains query filters for pledge listing
type PledgeFilters struct {
	MemberID   *uuid.UUID
	CampaignID *int64
	Status     *string
	Overdue    bool
	Limit      int
	Offset     int
}

// SetDefaults sets default values for pagination
func (f *PledgeFilters) SetDefaults() {
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// PaginationInfo contains pagination metadata
type PaginationInfo struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

// PledgeDTO represents a pledge for API responses
type PledgeDTO struct {
	ID               int64     `json:"id"`
	CampaignID       int64     `json:"campaign_id"`
	MemberID         uuid.UUID `json:"member_id"`
	PledgedAmount    string    `json:"pledged_amount"`
	PaidAmount       string    `json:"paid_amount"`
	RemainingAmount  string    `json:"remaining_amount"`
	InstallmentPlan  string    `json:"installment_plan"`
	InstallmentCount int       `json:"installment_count"`
	DueDate          time.Time `json:"due_date"`
	Status           string    `json:"status"`
	Overdue          bool      `json:"overdue"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// PledgeListResponse represents the paginated pledge list response
type PledgeListResponse struct {
	Pledges    []PledgeDTO    `json:"pledges"`
	Pagination PaginationInfo `json:"pagination"`
}
