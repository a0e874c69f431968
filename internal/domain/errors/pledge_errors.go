package errors

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BelowAmountPaidError is returned when an edit would set the pledged amount
// under what has already been collected. Callers render Floor as the minimum
// acceptable value.
type BelowAmountPaidError struct {
	Requested decimal.Decimal
	Floor     decimal.Decimal
}

func (e *BelowAmountPaidError) Error() string {
	return fmt.Sprintf("pledged amount %s is below amount already paid %s", e.Requested.String(), e.Floor.String())
}

// NewBelowAmountPaidError creates a new BelowAmountPaidError
func NewBelowAmountPaidError(requested, floor decimal.Decimal) *BelowAmountPaidError {
	return &BelowAmountPaidError{Requested: requested, Floor: floor}
}

// PledgeTerminalError is returned when an operation targets a pledge that has
// reached a terminal status.
type PledgeTerminalError struct {
	PledgeID int64
	Status   string
}

func (e *PledgeTerminalError) Error() string {
	return fmt.Sprintf("pledge %d is %s and can no longer be modified", e.PledgeID, e.Status)
}

// NewPledgeTerminalError creates a new PledgeTerminalError
func NewPledgeTerminalError(pledgeID int64, status string) *PledgeTerminalError {
	return &PledgeTerminalError{PledgeID: pledgeID, Status: status}
}

// CampaignClosedError is returned when a pledge is created against a campaign
// that does not accept pledges or has already ended.
type CampaignClosedError struct {
	CampaignID int64
	EndDate    time.Time
}

func (e *CampaignClosedError) Error() string {
	return fmt.Sprintf("campaign %d does not accept pledges", e.CampaignID)
}

// NewCampaignClosedError creates a new CampaignClosedError
func NewCampaignClosedError(campaignID int64, endDate time.Time) *CampaignClosedError {
	return &CampaignClosedError{CampaignID: campaignID, EndDate: endDate}
}

// InstallmentLimitError is returned when a chosen installment count exceeds
// the maximum permitted by the campaign's remaining duration.
type InstallmentLimitError struct {
	Requested int
	Max       int
}

func (e *InstallmentLimitError) Error() string {
	return fmt.Sprintf("installment count %d exceeds the maximum of %d for the campaign's remaining duration", e.Requested, e.Max)
}

// NewInstallmentLimitError creates a new InstallmentLimitError
func NewInstallmentLimitError(requested, max int) *InstallmentLimitError {
	return &InstallmentLimitError{Requested: requested, Max: max}
}
