package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/faithflow/pledge-service/internal/apperrors"
	"github.com/faithflow/pledge-service/internal/domain/dto"
	domainErrors "github.com/faithflow/pledge-service/internal/domain/errors"
	"github.com/faithflow/pledge-service/internal/domain/model"
	"github.com/faithflow/pledge-service/internal/domain/repository"
)

// PledgeService handles pledge lifecycle business logic
type PledgeService struct {
	pledgeRepo   repository.PledgeRepository
	campaignRepo repository.CampaignRepository
	logger       *zap.Logger
}

// NewPledgeService creates a new pledge service
func NewPledgeService(
	pledgeRepo repository.PledgeRepository,
	campaignRepo repository.CampaignRepository,
	logger *zap.Logger,
) *PledgeService {
	return &PledgeService{
		pledgeRepo:   pledgeRepo,
		campaignRepo: campaignRepo,
		logger:       logger,
	}
}

// CreatePledge validates the request against the campaign and persists the
// pledge. An omitted installment count defaults to the maximum the campaign's
// remaining duration permits.
func (s *PledgeService) CreatePledge(ctx context.Context, memberID uuid.UUID, req dto.CreatePledgeRequest) (*dto.PledgeDTO, error) {
	if !req.PledgedAmount.IsPositive() {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "pledged amount must be positive", nil)
	}

	plan := model.InstallmentPlan(req.InstallmentPlan)
	if !plan.Valid() {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, fmt.Sprintf("unknown installment plan %q", req.InstallmentPlan), nil)
	}

	if req.DueDate.Before(startOfDay(time.Now())) {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "due date cannot be in the past", nil)
	}

	campaign, err := s.campaignRepo.GetByID(ctx, req.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign: %w", err)
	}
	if campaign == nil {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, fmt.Sprintf("campaign %d not found", req.CampaignID), nil)
	}

	now := time.Now()
	if !campaign.AcceptsPledges(now) {
		return nil, domainErrors.NewCampaignClosedError(campaign.ID, campaign.EndDate)
	}

	max := MaxInstallments(plan, now, campaign.EndDate)
	count := req.InstallmentCount
	if count == 0 {
		count = max
	}
	if count > max {
		return nil, domainErrors.NewInstallmentLimitError(count, max)
	}

	pledge := &model.Pledge{
		CampaignID:       req.CampaignID,
		MemberID:         memberID,
		PledgedAmount:    req.PledgedAmount.Round(moneyScale),
		PaidAmount:       decimal.Zero,
		RemainingAmount:  req.PledgedAmount.Round(moneyScale),
		InstallmentPlan:  plan,
		InstallmentCount: count,
		DueDate:          req.DueDate,
		Status:           model.PledgeStatusPending,
		Notes:            req.Notes,
	}

	if err := s.pledgeRepo.Create(ctx, pledge, memberID); err != nil {
		return nil, fmt.Errorf("failed to create pledge: %w", err)
	}

	s.logger.Info("pledge created",
		zap.Int64("pledge_id", pledge.ID),
		zap.String("member_id", memberID.String()),
		zap.Int64("campaign_id", pledge.CampaignID),
		zap.String("amount", pledge.PledgedAmount.String()))

	return s.toDTO(pledge), nil
}

// GetPledge retrieves a single pledge
func (s *PledgeService) GetPledge(ctx context.Context, id int64) (*dto.PledgeDTO, error) {
	pledge, err := s.pledgeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get pledge: %w", err)
	}
	if pledge == nil {
		return nil, nil
	}
	return s.toDTO(pledge), nil
}

// ListPledges retrieves pledges matching the filters with pagination
func (s *PledgeService) ListPledges(ctx context.Context, filters dto.PledgeFilters) (*dto.PledgeListResponse, error) {
	filters.SetDefaults()

	pledges, err := s.pledgeRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list pledges: %w", err)
	}

	total, err := s.pledgeRepo.Count(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to count pledges: %w", err)
	}

	pledgeDTOs := make([]dto.PledgeDTO, len(pledges))
	for i := range pledges {
		pledgeDTOs[i] = *s.toDTO(&pledges[i])
	}

	return &dto.PledgeListResponse{
		Pledges: pledgeDTOs,
		Pagination: dto.PaginationInfo{
			Total:   total,
			Limit:   filters.Limit,
			Offset:  filters.Offset,
			HasMore: int64(filters.Offset+filters.Limit) < total,
		},
	}, nil
}

// UpdatePledge applies the non-nil request fields to a pledge. Terminal
// pledges are not editable; lowering the pledged amount under what has
// already been collected is refused. Amount changes recompute the remaining
// amount and status.
func (s *PledgeService) UpdatePledge(ctx context.Context, id int64, actorID uuid.UUID, req dto.UpdatePledgeRequest) (*dto.PledgeDTO, error) {
	pledge, err := s.pledgeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get pledge: %w", err)
	}
	if pledge == nil {
		return nil, nil
	}

	if pledge.Status.Terminal() {
		return nil, domainErrors.NewPledgeTerminalError(pledge.ID, string(pledge.Status))
	}

	changed := model.JSONB{}

	if req.PledgedAmount != nil {
		amount := req.PledgedAmount.Round(moneyScale)
		if !amount.IsPositive() {
			return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "pledged amount must be positive", nil)
		}
		if amount.LessThan(pledge.PaidAmount) {
			return nil, domainErrors.NewBelowAmountPaidError(amount, pledge.PaidAmount)
		}
		changed["pledged_amount"] = map[string]string{
			"from": pledge.PledgedAmount.String(),
			"to":   amount.String(),
		}
		pledge.PledgedAmount = amount
	}

	if req.InstallmentPlan != nil {
		plan := model.InstallmentPlan(*req.InstallmentPlan)
		if !plan.Valid() {
			return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, fmt.Sprintf("unknown installment plan %q", *req.InstallmentPlan), nil)
		}
		changed["installment_plan"] = map[string]string{
			"from": string(pledge.InstallmentPlan),
			"to":   string(plan),
		}
		pledge.InstallmentPlan = plan
	}

	if req.InstallmentCount != nil {
		changed["installment_count"] = map[string]int{
			"from": pledge.InstallmentCount,
			"to":   *req.InstallmentCount,
		}
		pledge.InstallmentCount = *req.InstallmentCount
	}

	if req.InstallmentPlan != nil || req.InstallmentCount != nil {
		campaign, err := s.campaignRepo.GetByID(ctx, pledge.CampaignID)
		if err != nil {
			return nil, fmt.Errorf("failed to load campaign: %w", err)
		}
		if campaign == nil {
			// Campaigns are never removed while pledges reference them.
			return nil, apperrors.NewAppError(apperrors.ErrInternal,
				fmt.Sprintf("campaign %d referenced by pledge %d not found", pledge.CampaignID, pledge.ID), nil)
		}
		max := MaxInstallments(pledge.InstallmentPlan, time.Now(), campaign.EndDate)
		if pledge.InstallmentCount > max {
			return nil, domainErrors.NewInstallmentLimitError(pledge.InstallmentCount, max)
		}
	}

	if req.DueDate != nil {
		if req.DueDate.Before(startOfDay(time.Now())) {
			return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "due date cannot be in the past", nil)
		}
		changed["due_date"] = map[string]string{
			"from": pledge.DueDate.Format(time.RFC3339),
			"to":   req.DueDate.Format(time.RFC3339),
		}
		pledge.DueDate = *req.DueDate
	}

	if req.Notes != nil {
		pledge.Notes = *req.Notes
		changed["notes"] = "updated"
	}

	if len(changed) == 0 {
		return s.toDTO(pledge), nil
	}

	pledge.RemainingAmount = pledge.PledgedAmount.Sub(pledge.PaidAmount)
	pledge.Status = model.DeriveStatus(pledge.PaidAmount, pledge.PledgedAmount)
	pledge.UpdatedAt = time.Now()

	if err := s.pledgeRepo.Update(ctx, pledge, changed, actorID); err != nil {
		return nil, fmt.Errorf("failed to update pledge: %w", err)
	}

	return s.toDTO(pledge), nil
}

// CancelPledge transitions a non-terminal pledge to cancelled
func (s *PledgeService) CancelPledge(ctx context.Context, id int64, actorID uuid.UUID) (*dto.PledgeDTO, error) {
	pledge, err := s.pledgeRepo.Cancel(ctx, id, actorID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("pledge cancelled",
		zap.Int64("pledge_id", id),
		zap.String("actor_id", actorID.String()))

	return s.toDTO(pledge), nil
}

// DeletePledge removes a pledge entirely. Reserved for administrators; the
// audit entry is the only trace left behind.
func (s *PledgeService) DeletePledge(ctx context.Context, id int64, actorID uuid.UUID) error {
	return s.pledgeRepo.Delete(ctx, id, actorID)
}

// RecordContribution credits an offline gift (cash, transfer, cheque) against
// a pledge, bypassing the payment rail but not the ledger rules: overpayments
// and cancelled pledges are refused the same way.
func (s *PledgeService) RecordContribution(ctx context.Context, pledgeID int64, actorID uuid.UUID, req dto.RecordContributionRequest) (*dto.PledgeDTO, error) {
	if !req.Amount.IsPositive() {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "contribution amount must be positive", nil)
	}

	metadata := model.JSONB{
		"method": req.Method,
	}
	if req.Notes != "" {
		metadata["notes"] = req.Notes
	}

	pledge, err := s.pledgeRepo.ApplyPayment(ctx, pledgeID, req.Amount.Round(moneyScale),
		uuid.New(), actorID, model.AuditActionContributionRecorded, metadata)
	if err != nil {
		return nil, err
	}

	s.logger.Info("contribution recorded",
		zap.Int64("pledge_id", pledgeID),
		zap.String("amount", req.Amount.String()),
		zap.String("method", req.Method))

	return s.toDTO(pledge), nil
}

// PlanPreview computes the permissible installment schedule for a prospective
// pledge without persisting anything.
func (s *PledgeService) PlanPreview(ctx context.Context, campaignID int64, amount decimal.Decimal, planName string, count int) (*dto.PlanPreviewResponse, error) {
	plan := model.InstallmentPlan(planName)
	if !plan.Valid() {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, fmt.Sprintf("unknown installment plan %q", planName), nil)
	}
	if !amount.IsPositive() {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidArgument, "amount must be positive", nil)
	}

	campaign, err := s.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign: %w", err)
	}
	if campaign == nil {
		return nil, apperrors.NewAppError(apperrors.ErrNotFound, fmt.Sprintf("campaign %d not found", campaignID), nil)
	}

	now := time.Now()
	max := MaxInstallments(plan, now, campaign.EndDate)
	if count == 0 {
		count = max
	}
	if count > max {
		return nil, domainErrors.NewInstallmentLimitError(count, max)
	}

	schedule := BuildSchedule(amount.Round(moneyScale), plan, count, now, campaign.EndDate)
	installments := make([]dto.InstallmentDTO, len(schedule))
	for i, inst := range schedule {
		installments[i] = dto.InstallmentDTO{
			Sequence: inst.Sequence,
			Amount:   inst.Amount.StringFixed(moneyScale),
			DueDate:  inst.DueDate.Format("2006-01-02"),
		}
	}

	return &dto.PlanPreviewResponse{
		Plan:            planName,
		MaxInstallments: max,
		Count:           count,
		Installments:    installments,
	}, nil
}

// startOfDay truncates t to midnight in its own location; due dates are
// checked at day granularity, so a due date of today is still acceptable.
func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func (s *PledgeService) toDTO(pledge *model.Pledge) *dto.PledgeDTO {
	return &dto.PledgeDTO{
		ID:               pledge.ID,
		CampaignID:       pledge.CampaignID,
		MemberID:         pledge.MemberID,
		PledgedAmount:    pledge.PledgedAmount.StringFixed(moneyScale),
		PaidAmount:       pledge.PaidAmount.StringFixed(moneyScale),
		RemainingAmount:  pledge.RemainingAmount.StringFixed(moneyScale),
		InstallmentPlan:  string(pledge.InstallmentPlan),
		InstallmentCount: pledge.InstallmentCount,
		DueDate:          pledge.DueDate,
		Status:           string(pledge.Status),
		Overdue:          pledge.Overdue(time.Now()),
		Notes:            pledge.Notes,
		CreatedAt:        pledge.CreatedAt,
	}
}
