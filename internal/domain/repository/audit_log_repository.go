package repository

import (
	"context"

	"github.com/faithflow/pledge-service/internal/domain/dto"
	"github.com/faithflow/pledge-service/internal/domain/model"
)

// AuditLogRepository defines the read side of the append-only audit trail.
// Entries are appended by the mutating repositories inside their own
// transactions; nothing updates or deletes them.
type AuditLogRepository interface {
	// List retrieves audit entries matching the filters, newest first
	List(ctx context.Context, filters dto.AuditFilters) ([]model.AuditLogEntry, error)

	// Count counts audit entries matching the filters
	Count(ctx context.Context, filters dto.AuditFilters) (int64, error)
}
