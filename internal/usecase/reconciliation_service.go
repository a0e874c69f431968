package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/faithflow/pledge-service/internal/domain/dto"
	"github.com/faithflow/pledge-service/internal/domain/model"
	"github.com/faithflow/pledge-service/internal/domain/repository"
)

// ReconciliationService resolves asynchronous payment outcomes delivered by
// the rail's callback. Callbacks can arrive late, repeated, or out of order;
// resolution is idempotent and repeated notifications for a settled attempt
// are acknowledged without touching the ledger.
type ReconciliationService struct {
	reconRepo repository.ReconciliationRepository
	logger    *zap.Logger
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(reconRepo repository.ReconciliationRepository, logger *zap.Logger) *ReconciliationService {
	return &ReconciliationService{
		reconRepo: reconRepo,
		logger:    logger,
	}
}

// ProcessCallback applies an outcome notification. Returns UnknownAttemptError
// when the reference matches no issued attempt; the handler surfaces that as a
// client error so the rail's retry does not mask the integrity violation.
func (s *ReconciliationService) ProcessCallback(ctx context.Context, req dto.GatewayCallbackRequest) (*repository.OutcomeResult, error) {
	var result *repository.OutcomeResult
	var err error

	switch req.Status {
	case "success":
		result, err = s.reconRepo.ResolveSuccess(ctx, req.GatewayReference, req.ReceiptID)
	case "failed":
		result, err = s.reconRepo.ResolveFailure(ctx, req.GatewayReference, model.FailureReasonGatewayFailed)
	default:
		return nil, fmt.Errorf("unknown callback status %q", req.Status)
	}

	if err != nil {
		return nil, err
	}

	switch {
	case result.Duplicate:
		s.logger.Info("repeated callback for settled attempt",
			zap.String("gateway_reference", req.GatewayReference),
			zap.Int64("attempt_id", result.Attempt.ID),
			zap.String("status", string(result.Attempt.Status)))
	case result.Rejected != "":
		s.logger.Warn("success outcome rejected, attempt flagged for review",
			zap.String("gateway_reference", req.GatewayReference),
			zap.Int64("attempt_id", result.Attempt.ID),
			zap.String("reason", result.Rejected))
	case result.Applied:
		s.logger.Info("payment reconciled",
			zap.String("gateway_reference", req.GatewayReference),
			zap.Int64("attempt_id", result.Attempt.ID),
			zap.Int64("pledge_id", result.Pledge.ID),
			zap.String("pledge_status", string(result.Pledge.Status)))
	default:
		s.logger.Info("failure outcome recorded",
			zap.String("gateway_reference", req.GatewayReference),
			zap.Int64("attempt_id", result.Attempt.ID))
	}

	return result, nil
}
