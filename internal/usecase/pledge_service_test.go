package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/faithflow/pledge-service/internal/domain/dto"
	domainErrors "github.com/faithflow/pledge-service/internal/domain/errors"
	"github.com/faithflow/pledge-service/internal/domain/model"
	"github.com/faithflow/pledge-service/internal/usecase"
)

// MockPledgeRepository is a mock implementation of PledgeRepository
type MockPledgeRepository struct {
	mock.Mock
}

func (m *MockPledgeRepository) Create(ctx context.Context, pledge *model.Pledge, actorID uuid.UUID) error {
	args := m.Called(ctx, pledge, actorID)
	return args.Error(0)
}

func (m *MockPledgeRepository) GetByID(ctx context.Context, id int64) (*model.Pledge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Pledge), args.Error(1)
}

func (m *MockPledgeRepository) List(ctx context.Context, filters dto.PledgeFilters) ([]model.Pledge, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]model.Pledge), args.Error(1)
}

func (m *MockPledgeRepository) Count(ctx context.Context, filters dto.PledgeFilters) (int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPledgeRepository) Update(ctx context.Context, pledge *model.Pledge, changed model.JSONB, actorID uuid.UUID) error {
	args := m.Called(ctx, pledge, changed, actorID)
	return args.Error(0)
}

func (m *MockPledgeRepository) Cancel(ctx context.Context, id int64, actorID uuid.UUID) (*model.Pledge, error) {
	args := m.Called(ctx, id, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Pledge), args.Error(1)
}

func (m *MockPledgeRepository) Delete(ctx context.Context, id int64, actorID uuid.UUID) error {
	args := m.Called(ctx, id, actorID)
	return args.Error(0)
}

func (m *MockPledgeRepository) ApplyPayment(ctx context.Context, id int64, amount decimal.Decimal, transactionID, actorID uuid.UUID, action model.AuditAction, metadata model.JSONB) (*model.Pledge, error) {
	args := m.Called(ctx, id, amount, transactionID, actorID, action, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Pledge), args.Error(1)
}

// MockCampaignRepository is a mock implementation of CampaignRepository
type MockCampaignRepository struct {
	mock.Mock
}

func (m *MockCampaignRepository) GetByID(ctx context.Context, id int64) (*model.Campaign, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Campaign), args.Error(1)
}

func openCampaign(id int64, daysLeft int) *model.Campaign {
	return &model.Campaign{
		ID:           id,
		Name:         "Building Fund",
		GoalAmount:   decimal.NewFromInt(1000000),
		StartDate:    time.Now().AddDate(0, -1, 0),
		EndDate:      time.Now().AddDate(0, 0, daysLeft),
		AllowPledges: true,
	}
}

func TestPledgeService_CreatePledge(t *testing.T) {
	logger := zap.NewNop()
	memberID := uuid.New()
	ctx := context.Background()

	t.Run("omitted installment count defaults to the campaign maximum", func(t *testing.T) {
		mockPledges := new(MockPledgeRepository)
		mockCampaigns := new(MockCampaignRepository)
		service := usecase.NewPledgeService(mockPledges, mockCampaigns, logger)

		mockCampaigns.On("GetByID", ctx, int64(1)).Return(openCampaign(1, 95), nil)
		mockPledges.On("Create", ctx, mock.AnythingOfType("*model.Pledge"), memberID).
			Run(func(args mock.Arguments) {
				args.Get(1).(*model.Pledge).ID = 42
			}).
			Return(nil)

		result, err := service.CreatePledge(ctx, memberID, dto.CreatePledgeRequest{
			CampaignID:      1,
			PledgedAmount:   decimal.NewFromInt(10000),
			InstallmentPlan: "monthly",
			DueDate:         time.Now().AddDate(0, 0, 95),
		})

		assert.NoError(t, err)
		assert.NotNil(t, result)
		assert.Equal(t, int64(42), result.ID)
		assert.Equal(t, 3, result.InstallmentCount)
		assert.Equal(t, "10000.00", result.PledgedAmount)
		assert.Equal(t, "10000.00", result.RemainingAmount)
		assert.Equal(t, "pending", result.Status)

		mockPledges.AssertExpectations(t)
		mockCampaigns.AssertExpectations(t)
	})

	t.Run("installment count over the campaign maximum is refused", func(t *testing.T) {
		mockPledges := new(MockPledgeRepository)
		mockCampaigns := new(MockCampaignRepository)
		service := usecase.NewPledgeService(mockPledges, mockCampaigns, logger)

		mockCampaigns.On("GetByID", ctx, int64(1)).Return(openCampaign(1, 95), nil)

		result, err := service.CreatePledge(ctx, memberID, dto.CreatePledgeRequest{
			CampaignID:       1,
			PledgedAmount:    decimal.NewFromInt(10000),
			InstallmentPlan:  "monthly",
			InstallmentCount: 6,
			DueDate:          time.Now().AddDate(0, 0, 95),
		})

		assert.Nil(t, result)
		var limitErr *domainErrors.InstallmentLimitError
		assert.ErrorAs(t, err, &limitErr)
		assert.Equal(t, 3, limitErr.Max)
		mockPledges.AssertNotCalled(t, "Create")
	})

	t.Run("campaign past its end date refuses new pledges", func(t *testing.T) {
		mockPledges := new(MockPledgeRepository)
		mockCampaigns := new(MockCampaignRepository)
		service := usecase.NewPledgeService(mockPledges, mockCampaigns, logger)

		closed := openCampaign(1, 95)
		closed.EndDate = time.Now().AddDate(0, 0, -1)
		mockCampaigns.On("GetByID", ctx, int64(1)).Return(closed, nil)

		result, err := service.CreatePledge(ctx, memberID, dto.CreatePledgeRequest{
			CampaignID:      1,
			PledgedAmount:   decimal.NewFromInt(5000),
			InstallmentPlan: "lump-sum",
			DueDate:         time.Now().AddDate(0, 0, 30),
		})

		assert.Nil(t, result)
		var closedErr *domainErrors.CampaignClosedError
		assert.ErrorAs(t, err, &closedErr)
	})

	t.Run("due date in the past is refused before any lookup", func(t *testing.T) {
		mockPledges := new(MockPledgeRepository)
		mockCampaigns := new(MockCampaignRepository)
		service := usecase.NewPledgeService(mockPledges, mockCampaigns, logger)

		result, err := service.CreatePledge(ctx, memberID, dto.CreatePledgeRequest{
			CampaignID:      1,
			PledgedAmount:   decimal.NewFromInt(5000),
			InstallmentPlan: "monthly",
			DueDate:         time.Now().AddDate(0, 0, -30),
		})

		assert.Nil(t, result)
		assert.Error(t, err)
		mockCampaigns.AssertNotCalled(t, "GetByID")
		mockPledges.AssertNotCalled(t, "Create")
	})

	t.Run("non-positive amount is refused before any lookup", func(t *testing.T) {
		mockPledges := new(MockPledgeRepository)
		mockCampaigns := new(MockCampaignRepository)
		service := usecase.NewPledgeService(mockPledges, mockCampaigns, logger)

		result, err := service.CreatePledge(ctx, memberID, dto.CreatePledgeRequest{
			CampaignID:      1,
			PledgedAmount:   decimal.Zero,
			InstallmentPlan: "monthly",
			DueDate:         time.Now().AddDate(0, 0, 30),
		})

		assert.Nil(t, result)
		assert.Error(t, err)
		mockCampaigns.AssertNotCalled(t, "GetByID")
	})
}

func TestPledgeService_UpdatePledge(t *testing.T) {
	logger := zap.NewNop()
	actorID := uuid.New()
	ctx := context.Background()

	t.Run("lowering below the amount already paid is refused", func(t *testing.T) {
		mockPledges := new(MockPledgeRepository)
		mockCampaigns := new(MockCampaignRepository)
		service := usecase.NewPledgeService(mockPledges, mockCampaigns, logger)

		pledge := &model.Pledge{
			ID:              7,
			CampaignID:      1,
			MemberID:        actorID,
			PledgedAmount:   decimal.NewFromInt(5000),
			PaidAmount:      decimal.NewFromInt(2000),
			RemainingAmount: decimal.NewFromInt(3000),
			InstallmentPlan: model.InstallmentPlanMonthly,
			Status:          model.PledgeStatusPartial,
		}
		mockPledges.On("GetByID", ctx, int64(7)).Return(pledge, nil)

		lower := decimal.NewFromInt(1000)
		result, err := service.UpdatePledge(ctx, 7, actorID, dto.UpdatePledgeRequest{
			PledgedAmount: &lower,
		})

		assert.Nil(t, result)
		var belowErr *domainErrors.BelowAmountPaidError
		assert.ErrorAs(t, err, &belowErr)
		assert.Equal(t, "2000", belowErr.Floor.String())
		mockPledges.AssertNotCalled(t, "Update")
	})

	t.Run("completed pledges cannot be edited, even to raise the amount", func(t *testing.T) {
		mockPledges := new(MockPledgeRepository)
		mockCampaigns := new(MockCampaignRepository)
		service := usecase.NewPledgeService(mockPledges, mockCampaigns, logger)

		pledge := &model.Pledge{
			ID:              8,
			CampaignID:      1,
			MemberID:        actorID,
			PledgedAmount:   decimal.NewFromInt(5000),
			PaidAmount:      decimal.NewFromInt(5000),
			RemainingAmount: decimal.Zero,
			InstallmentPlan: model.InstallmentPlanLumpSum,
			Status:          model.PledgeStatusCompleted,
		}
		mockPledges.On("GetByID", ctx, int64(8)).Return(pledge, nil)

		raised := decimal.NewFromInt(8000)
		result, err := service.UpdatePledge(ctx, 8, actorID, dto.UpdatePledgeRequest{
			PledgedAmount: &raised,
		})

		assert.Nil(t, result)
		var terminalErr *domainErrors.PledgeTerminalError
		assert.ErrorAs(t, err, &terminalErr)
		assert.Equal(t, "completed", terminalErr.Status)
		mockPledges.AssertNotCalled(t, "Update")
	})

	t.Run("cancelled pledges cannot be edited", func(t *testing.T) {
		mockPledges := new(MockPledgeRepository)
		mockCampaigns := new(MockCampaignRepository)
		service := usecase.NewPledgeService(mockPledges, mockCampaigns, logger)

		pledge := &model.Pledge{
			ID:            9,
			PledgedAmount: decimal.NewFromInt(5000),
			Status:        model.PledgeStatusCancelled,
		}
		mockPledges.On("GetByID", ctx, int64(9)).Return(pledge, nil)

		note := "late update"
		result, err := service.UpdatePledge(ctx, 9, actorID, dto.UpdatePledgeRequest{Notes: &note})

		assert.Nil(t, result)
		var terminalErr *domainErrors.PledgeTerminalError
		assert.ErrorAs(t, err, &terminalErr)
	})

	t.Run("moving the due date into the past is refused", func(t *testing.T) {
		mockPledges := new(MockPledgeRepository)
		mockCampaigns := new(MockCampaignRepository)
		service := usecase.NewPledgeService(mockPledges, mockCampaigns, logger)

		pledge := &model.Pledge{
			ID:              10,
			CampaignID:      1,
			PledgedAmount:   decimal.NewFromInt(5000),
			RemainingAmount: decimal.NewFromInt(5000),
			InstallmentPlan: model.InstallmentPlanMonthly,
			Status:          model.PledgeStatusPending,
		}
		mockPledges.On("GetByID", ctx, int64(10)).Return(pledge, nil)

		past := time.Now().AddDate(0, 0, -7)
		result, err := service.UpdatePledge(ctx, 10, actorID, dto.UpdatePledgeRequest{DueDate: &past})

		assert.Nil(t, result)
		assert.Error(t, err)
		mockPledges.AssertNotCalled(t, "Update")
	})

	t.Run("missing campaign during a plan edit is an error, not a bypass", func(t *testing.T) {
		mockPledges := new(MockPledgeRepository)
		mockCampaigns := new(MockCampaignRepository)
		service := usecase.NewPledgeService(mockPledges, mockCampaigns, logger)

		pledge := &model.Pledge{
			ID:              11,
			CampaignID:      99,
			PledgedAmount:   decimal.NewFromInt(5000),
			RemainingAmount: decimal.NewFromInt(5000),
			InstallmentPlan: model.InstallmentPlanMonthly,
			Status:          model.PledgeStatusPending,
		}
		mockPledges.On("GetByID", ctx, int64(11)).Return(pledge, nil)
		mockCampaigns.On("GetByID", ctx, int64(99)).Return(nil, nil)

		count := 12
		result, err := service.UpdatePledge(ctx, 11, actorID, dto.UpdatePledgeRequest{InstallmentCount: &count})

		assert.Nil(t, result)
		assert.Error(t, err)
		mockPledges.AssertNotCalled(t, "Update")
	})

	t.Run("unknown pledge returns nil without error", func(t *testing.T) {
		mockPledges := new(MockPledgeRepository)
		mockCampaigns := new(MockCampaignRepository)
		service := usecase.NewPledgeService(mockPledges, mockCampaigns, logger)

		mockPledges.On("GetByID", ctx, int64(404)).Return(nil, nil)

		result, err := service.UpdatePledge(ctx, 404, actorID, dto.UpdatePledgeRequest{})

		assert.NoError(t, err)
		assert.Nil(t, result)
	})
}

func TestPledgeService_RecordContribution(t *testing.T) {
	logger := zap.NewNop()
	actorID := uuid.New()
	ctx := context.Background()

	t.Run("offline gift settles the pledge", func(t *testing.T) {
		mockPledges := new(MockPledgeRepository)
		mockCampaigns := new(MockCampaignRepository)
		service := usecase.NewPledgeService(mockPledges, mockCampaigns, logger)

		settled := &model.Pledge{
			ID:              3,
			PledgedAmount:   decimal.NewFromInt(5000),
			PaidAmount:      decimal.NewFromInt(5000),
			RemainingAmount: decimal.Zero,
			Status:          model.PledgeStatusCompleted,
		}
		mockPledges.On("ApplyPayment", ctx, int64(3), decimal.NewFromInt(5000),
			mock.AnythingOfType("uuid.UUID"), actorID, model.AuditActionContributionRecorded,
			mock.AnythingOfType("model.JSONB")).
			Return(settled, nil)

		result, err := service.RecordContribution(ctx, 3, actorID, dto.RecordContributionRequest{
			Amount: decimal.NewFromInt(5000),
			Method: "cash",
		})

		assert.NoError(t, err)
		assert.Equal(t, "completed", result.Status)
		assert.Equal(t, "0.00", result.RemainingAmount)
		mockPledges.AssertExpectations(t)
	})

	t.Run("non-positive contribution is refused", func(t *testing.T) {
		mockPledges := new(MockPledgeRepository)
		mockCampaigns := new(MockCampaignRepository)
		service := usecase.NewPledgeService(mockPledges, mockCampaigns, logger)

		result, err := service.RecordContribution(ctx, 3, actorID, dto.RecordContributionRequest{
			Amount: decimal.NewFromInt(-50),
			Method: "cash",
		})

		assert.Nil(t, result)
		assert.Error(t, err)
		mockPledges.AssertNotCalled(t, "ApplyPayment")
	})
}

func TestPledgeService_PlanPreview(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("monthly preview splits with remainder on the last installment", func(t *testing.T) {
		mockPledges := new(MockPledgeRepository)
		mockCampaigns := new(MockCampaignRepository)
		service := usecase.NewPledgeService(mockPledges, mockCampaigns, logger)

		mockCampaigns.On("GetByID", ctx, int64(1)).Return(openCampaign(1, 95), nil)

		result, err := service.PlanPreview(ctx, 1, decimal.NewFromInt(10000), "monthly", 0)

		assert.NoError(t, err)
		assert.Equal(t, 3, result.MaxInstallments)
		assert.Equal(t, 3, result.Count)
		assert.Len(t, result.Installments, 3)
		assert.Equal(t, "3333.33", result.Installments[0].Amount)
		assert.Equal(t, "3333.33", result.Installments[1].Amount)
		assert.Equal(t, "3333.34", result.Installments[2].Amount)
	})

	t.Run("unknown plan name is refused", func(t *testing.T) {
		mockPledges := new(MockPledgeRepository)
		mockCampaigns := new(MockCampaignRepository)
		service := usecase.NewPledgeService(mockPledges, mockCampaigns, logger)

		result, err := service.PlanPreview(ctx, 1, decimal.NewFromInt(10000), "quarterly", 0)

		assert.Nil(t, result)
		assert.Error(t, err)
		mockCampaigns.AssertNotCalled(t, "GetByID")
	})
}
