package dto

import (
	"time"

	"github.com/google/uuid"
)

// AuditFilters contains query filters for audit entry retrieval
type AuditFilters struct {
	ActorID       *uuid.UUID
	Action        *string
	TransactionID *uuid.UUID
	PledgeID      *int64
	StartDate     *time.Time
	EndDate       *time.Time
	Limit         int
	Offset        int
}

// SetDefaults sets default values for pagination
func (f *AuditFilters) SetDefaults() {
	if f.Limit == 0 {
		f.Limit = 50
	}
	if f.Limit > 200 {
		f.Limit = 200
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// AuditEntryDTO represents an audit entry for API responses
type AuditEntryDTO struct {
	ID            int64                  `json:"id"`
	TransactionID uuid.UUID              `json:"transaction_id"`
	Action        string                 `json:"action"`
	PledgeID      *int64                 `json:"pledge_id,omitempty"`
	Amount        string                 `json:"amount"`
	Status        string                 `json:"status"`
	ActorID       uuid.UUID              `json:"actor_id"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// AuditListResponse represents the paginated audit entry list response
type AuditListResponse struct {
	Entries    []AuditEntryDTO `json:"entries"`
	Pagination PaginationInfo  `json:"pagination"`
}
