package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/faithflow/pledge-service/internal/adapter/repository"
	domainRepo "github.com/faithflow/pledge-service/internal/domain/repository"
)

// Repositories holds all repository instances
type Repositories struct {
	Pledge         domainRepo.PledgeRepository
	PaymentAttempt domainRepo.PaymentAttemptRepository
	Reconciliation domainRepo.ReconciliationRepository
	AuditLog       domainRepo.AuditLogRepository
	Campaign       domainRepo.CampaignRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		Pledge:         repository.NewPledgeRepository(db, logger),
		PaymentAttempt: repository.NewPaymentAttemptRepository(db, logger),
		Reconciliation: repository.NewReconciliationRepository(db, logger),
		AuditLog:       repository.NewAuditLogRepository(db, logger),
		Campaign:       repository.NewCampaignRepository(db, logger),
	}
}
