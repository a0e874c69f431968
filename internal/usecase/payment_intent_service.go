package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/faithflow/pledge-service/internal/apperrors"
	"github.com/faithflow/pledge-service/internal/domain/dto"
	domainErrors "github.com/faithflow/pledge-service/internal/domain/errors"
	"github.com/faithflow/pledge-service/internal/domain/model"
	"github.com/faithflow/pledge-service/internal/domain/provider"
	"github.com/faithflow/pledge-service/internal/domain/repository"
)

// contactPattern matches mobile-money subscriber numbers: an optional leading
// plus followed by 9 to 15 digits.
var contactPattern = regexp.MustCompile(`^\+?[0-9]{9,15}$`)

// PaymentIntentService handles payment initiation against the mobile-money
// rail, including request de-duplication.
type PaymentIntentService struct {
	pledgeRepo  repository.PledgeRepository
	attemptRepo repository.PaymentAttemptRepository
	gateway     provider.PaymentGateway
	dedupWindow time.Duration
	logger      *zap.Logger
}

// NewPaymentIntentService creates a new payment intent service
func NewPaymentIntentService(
	pledgeRepo repository.PledgeRepository,
	attemptRepo repository.PaymentAttemptRepository,
	gateway provider.PaymentGateway,
	dedupWindow time.Duration,
	logger *zap.Logger,
) *PaymentIntentService {
	if dedupWindow <= 0 {
		dedupWindow = 120 * time.Second
	}
	return &PaymentIntentService{
		pledgeRepo:  pledgeRepo,
		attemptRepo: attemptRepo,
		gateway:     gateway,
		dedupWindow: dedupWindow,
		logger:      logger,
	}
}

// InitiatePayment opens a payment attempt against a pledge and asks the rail
// to collect. Identical requests inside the dedup window share one fingerprint
// and converge on the same open attempt; the caller sees duplicate=true
// instead of a second charge. Amounts exceeding the remaining balance are
// refused before anything reaches the rail.
func (s *PaymentIntentService) InitiatePayment(ctx context.Context, pledgeID int64, actorID uuid.UUID, req dto.InitiatePaymentRequest) (*dto.PaymentAttemptDTO, error) {
	if !req.Amount.IsPositive() {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "payment amount must be positive", nil)
	}
	if !contactPattern.MatchString(req.Contact) {
		return nil, domainErrors.NewInvalidContactError(req.Contact)
	}

	pledge, err := s.pledgeRepo.GetByID(ctx, pledgeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pledge: %w", err)
	}
	if pledge == nil {
		return nil, nil
	}
	if pledge.Status.Terminal() {
		return nil, domainErrors.NewPledgeTerminalError(pledge.ID, string(pledge.Status))
	}

	amount := req.Amount.Round(moneyScale)
	remaining := pledge.PledgedAmount.Sub(pledge.PaidAmount)
	if amount.GreaterThan(remaining) {
		return nil, domainErrors.NewOverpaymentError(amount, remaining)
	}

	attempt := &model.PaymentAttempt{
		TransactionID: uuid.New(),
		PledgeID:      pledgeID,
		Amount:        amount,
		Contact:       req.Contact,
		Status:        model.AttemptStatusPending,
		Fingerprint:   s.fingerprint(pledgeID, amount, req.Contact, time.Now()),
	}

	attempt, created, err := s.attemptRepo.CreateOrGetOpen(ctx, attempt, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to open payment attempt: %w", err)
	}

	if !created {
		s.logger.Info("duplicate payment request absorbed",
			zap.Int64("pledge_id", pledgeID),
			zap.Int64("attempt_id", attempt.ID))
		return s.toDTO(attempt, true), nil
	}

	resp, err := s.gateway.Initiate(ctx, &provider.InitiateRequest{
		Contact:   req.Contact,
		Amount:    amount,
		Reference: attempt.TransactionID.String(),
		Narrative: fmt.Sprintf("Pledge %d installment", pledgeID),
	})
	if err != nil {
		s.logger.Error("gateway initiation failed",
			zap.Int64("attempt_id", attempt.ID),
			zap.Error(err))
		if markErr := s.attemptRepo.MarkFailed(ctx, attempt.ID, model.FailureReasonGatewayFailed, false, actorID); markErr != nil {
			s.logger.Error("failed to close attempt after gateway error",
				zap.Int64("attempt_id", attempt.ID),
				zap.Error(markErr))
		}
		return nil, fmt.Errorf("payment rail unavailable: %w", err)
	}

	if !resp.Accepted {
		if err := s.attemptRepo.MarkFailed(ctx, attempt.ID, model.FailureReasonGatewayRejected, false, actorID); err != nil {
			return nil, fmt.Errorf("failed to close rejected attempt: %w", err)
		}
		attempt.Status = model.AttemptStatusFailed
		reason := model.FailureReasonGatewayRejected
		attempt.FailureReason = &reason
		s.logger.Warn("gateway rejected collection request",
			zap.Int64("attempt_id", attempt.ID),
			zap.String("reject_reason", resp.RejectReason))
		return s.toDTO(attempt, false), nil
	}

	if err := s.attemptRepo.AttachGatewayReference(ctx, attempt.ID, resp.GatewayReference); err != nil {
		return nil, fmt.Errorf("failed to record gateway reference: %w", err)
	}
	attempt.GatewayReference = &resp.GatewayReference

	s.logger.Info("payment initiated",
		zap.Int64("pledge_id", pledgeID),
		zap.Int64("attempt_id", attempt.ID),
		zap.String("gateway_reference", resp.GatewayReference),
		zap.String("amount", amount.String()))

	return s.toDTO(attempt, false), nil
}

// GetAttempt retrieves a payment attempt by its public transaction id, for
// clients polling an in-flight collection.
func (s *PaymentIntentService) GetAttempt(ctx context.Context, transactionID uuid.UUID) (*dto.PaymentAttemptDTO, error) {
	attempt, err := s.attemptRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt == nil {
		return nil, nil
	}
	return s.toDTO(attempt, false), nil
}

// fingerprint hashes the request identity with a coarse time bucket so that
// byte-identical requests land on the same value for the dedup window and
// diverge afterwards.
func (s *PaymentIntentService) fingerprint(pledgeID int64, amount decimal.Decimal, contact string, now time.Time) string {
	bucket := now.Unix() / int64(s.dedupWindow.Seconds())
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s|%s|%d", pledgeID, amount.StringFixed(moneyScale), contact, bucket)))
	return hex.EncodeToString(sum[:])
}

func (s *PaymentIntentService) toDTO(attempt *model.PaymentAttempt, duplicate bool) *dto.PaymentAttemptDTO {
	d := &dto.PaymentAttemptDTO{
		ID:            attempt.ID,
		TransactionID: attempt.TransactionID,
		PledgeID:      attempt.PledgeID,
		Amount:        attempt.Amount.StringFixed(moneyScale),
		Contact:       attempt.Contact,
		Status:        string(attempt.Status),
		Duplicate:     duplicate,
		NeedsReview:   attempt.NeedsReview,
		CreatedAt:     attempt.CreatedAt,
	}
	if attempt.GatewayReference != nil {
		d.GatewayReference = *attempt.GatewayReference
	}
	if attempt.FailureReason != nil {
		d.FailureReason = *attempt.FailureReason
	}
	return d
}
