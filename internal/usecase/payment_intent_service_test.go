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
	"github.com/faithflow/pledge-service/internal/domain/provider"
	"github.com/faithflow/pledge-service/internal/usecase"
)

// MockPaymentAttemptRepository is a mock implementation of PaymentAttemptRepository
type MockPaymentAttemptRepository struct {
	mock.Mock
}

func (m *MockPaymentAttemptRepository) CreateOrGetOpen(ctx context.Context, attempt *model.PaymentAttempt, actorID uuid.UUID) (*model.PaymentAttempt, bool, error) {
	args := m.Called(ctx, attempt, actorID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.PaymentAttempt), args.Bool(1), args.Error(2)
}

func (m *MockPaymentAttemptRepository) GetByID(ctx context.Context, id int64) (*model.PaymentAttempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentAttempt), args.Error(1)
}

func (m *MockPaymentAttemptRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*model.PaymentAttempt, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentAttempt), args.Error(1)
}

func (m *MockPaymentAttemptRepository) AttachGatewayReference(ctx context.Context, id int64, reference string) error {
	args := m.Called(ctx, id, reference)
	return args.Error(0)
}

func (m *MockPaymentAttemptRepository) MarkFailed(ctx context.Context, id int64, reason string, needsReview bool, actorID uuid.UUID) error {
	args := m.Called(ctx, id, reason, needsReview, actorID)
	return args.Error(0)
}

// MockPaymentGateway is a mock implementation of the mobile-money rail client
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) Initiate(ctx context.Context, req *provider.InitiateRequest) (*provider.InitiateResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.InitiateResponse), args.Error(1)
}

func (m *MockPaymentGateway) VerifyCallback(payload []byte, signature string) bool {
	args := m.Called(payload, signature)
	return args.Bool(0)
}

func (m *MockPaymentGateway) GatewayName() string {
	return "momo"
}

func partialPledge(id int64, pledged, paid int64) *model.Pledge {
	return &model.Pledge{
		ID:              id,
		CampaignID:      1,
		MemberID:        uuid.New(),
		PledgedAmount:   decimal.NewFromInt(pledged),
		PaidAmount:      decimal.NewFromInt(paid),
		RemainingAmount: decimal.NewFromInt(pledged - paid),
		InstallmentPlan: model.InstallmentPlanMonthly,
		Status:          model.DeriveStatus(decimal.NewFromInt(paid), decimal.NewFromInt(pledged)),
		DueDate:         time.Now().AddDate(0, 3, 0),
	}
}

func TestPaymentIntentService_InitiatePayment(t *testing.T) {
	logger := zap.NewNop()
	actorID := uuid.New()
	ctx := context.Background()

	t.Run("accepted collection attaches the gateway reference", func(t *testing.T) {
		mockPledges := new(MockPledgeRepository)
		mockAttempts := new(MockPaymentAttemptRepository)
		mockGateway := new(MockPaymentGateway)
		service := usecase.NewPaymentIntentService(mockPledges, mockAttempts, mockGateway, 2*time.Minute, logger)

		opened := &model.PaymentAttempt{
			ID:            10,
			TransactionID: uuid.New(),
			PledgeID:      1,
			Amount:        decimal.NewFromInt(1000),
			Contact:       "+256700000001",
			Status:        model.AttemptStatusPending,
		}

		mockPledges.On("GetByID", ctx, int64(1)).Return(partialPledge(1, 5000, 2000), nil)
		mockAttempts.On("CreateOrGetOpen", ctx, mock.AnythingOfType("*model.PaymentAttempt"), actorID).
			Return(opened, true, nil)
		mockGateway.On("Initiate", ctx, mock.AnythingOfType("*provider.InitiateRequest")).
			Return(&provider.InitiateResponse{Accepted: true, GatewayReference: "MM-123"}, nil)
		mockAttempts.On("AttachGatewayReference", ctx, int64(10), "MM-123").Return(nil)

		result, err := service.InitiatePayment(ctx, 1, actorID, dto.InitiatePaymentRequest{
			Amount:  decimal.NewFromInt(1000),
			Contact: "+256700000001",
		})

		assert.NoError(t, err)
		assert.NotNil(t, result)
		assert.False(t, result.Duplicate)
		assert.Equal(t, "MM-123", result.GatewayReference)
		assert.Equal(t, "pending", result.Status)

		mockAttempts.AssertExpectations(t)
		mockGateway.AssertExpectations(t)
	})

	t.Run("repeated request inside the window returns the open attempt", func(t *testing.T) {
		mockPledges := new(MockPledgeRepository)
		mockAttempts := new(MockPaymentAttemptRepository)
		mockGateway := new(MockPaymentGateway)
		service := usecase.NewPaymentIntentService(mockPledges, mockAttempts, mockGateway, 2*time.Minute, logger)

		existing := &model.PaymentAttempt{
			ID:            10,
			TransactionID: uuid.New(),
			PledgeID:      1,
			Amount:        decimal.NewFromInt(1000),
			Contact:       "+256700000001",
			Status:        model.AttemptStatusPending,
		}

		mockPledges.On("GetByID", ctx, int64(1)).Return(partialPledge(1, 5000, 2000), nil)
		mockAttempts.On("CreateOrGetOpen", ctx, mock.AnythingOfType("*model.PaymentAttempt"), actorID).
			Return(existing, false, nil)

		result, err := service.InitiatePayment(ctx, 1, actorID, dto.InitiatePaymentRequest{
			Amount:  decimal.NewFromInt(1000),
			Contact: "+256700000001",
		})

		assert.NoError(t, err)
		assert.True(t, result.Duplicate)
		assert.Equal(t, int64(10), result.ID)
		assert.Equal(t, existing.TransactionID, result.TransactionID)
		mockGateway.AssertNotCalled(t, "Initiate")
	})

	t.Run("amount over the remaining balance is refused before the rail", func(t *testing.T) {
		mockPledges := new(MockPledgeRepository)
		mockAttempts := new(MockPaymentAttemptRepository)
		mockGateway := new(MockPaymentGateway)
		service := usecase.NewPaymentIntentService(mockPledges, mockAttempts, mockGateway, 2*time.Minute, logger)

		mockPledges.On("GetByID", ctx, int64(1)).Return(partialPledge(1, 5000, 2000), nil)

		result, err := service.InitiatePayment(ctx, 1, actorID, dto.InitiatePaymentRequest{
			Amount:  decimal.NewFromInt(3001),
			Contact: "+256700000001",
		})

		assert.Nil(t, result)
		var overErr *domainErrors.OverpaymentError
		assert.ErrorAs(t, err, &overErr)
		assert.Equal(t, "3000", overErr.Remaining.String())
		mockAttempts.AssertNotCalled(t, "CreateOrGetOpen")
	})

	t.Run("synchronous gateway rejection closes the attempt", func(t *testing.T) {
		mockPledges := new(MockPledgeRepository)
		mockAttempts := new(MockPaymentAttemptRepository)
		mockGateway := new(MockPaymentGateway)
		service := usecase.NewPaymentIntentService(mockPledges, mockAttempts, mockGateway, 2*time.Minute, logger)

		opened := &model.PaymentAttempt{
			ID:            11,
			TransactionID: uuid.New(),
			PledgeID:      1,
			Amount:        decimal.NewFromInt(500),
			Contact:       "+256700000001",
			Status:        model.AttemptStatusPending,
		}

		mockPledges.On("GetByID", ctx, int64(1)).Return(partialPledge(1, 5000, 0), nil)
		mockAttempts.On("CreateOrGetOpen", ctx, mock.AnythingOfType("*model.PaymentAttempt"), actorID).
			Return(opened, true, nil)
		mockGateway.On("Initiate", ctx, mock.AnythingOfType("*provider.InitiateRequest")).
			Return(&provider.InitiateResponse{Accepted: false, RejectReason: "subscriber not found"}, nil)
		mockAttempts.On("MarkFailed", ctx, int64(11), model.FailureReasonGatewayRejected, false, actorID).Return(nil)

		result, err := service.InitiatePayment(ctx, 1, actorID, dto.InitiatePaymentRequest{
			Amount:  decimal.NewFromInt(500),
			Contact: "+256700000001",
		})

		assert.NoError(t, err)
		assert.Equal(t, "failed", result.Status)
		assert.Equal(t, model.FailureReasonGatewayRejected, result.FailureReason)
		mockAttempts.AssertExpectations(t)
	})

	t.Run("transport failure closes the attempt and surfaces the error", func(t *testing.T) {
		mockPledges := new(MockPledgeRepository)
		mockAttempts := new(MockPaymentAttemptRepository)
		mockGateway := new(MockPaymentGateway)
		service := usecase.NewPaymentIntentService(mockPledges, mockAttempts, mockGateway, 2*time.Minute, logger)

		opened := &model.PaymentAttempt{
			ID:            12,
			TransactionID: uuid.New(),
			PledgeID:      1,
			Amount:        decimal.NewFromInt(500),
			Contact:       "+256700000001",
			Status:        model.AttemptStatusPending,
		}

		mockPledges.On("GetByID", ctx, int64(1)).Return(partialPledge(1, 5000, 0), nil)
		mockAttempts.On("CreateOrGetOpen", ctx, mock.AnythingOfType("*model.PaymentAttempt"), actorID).
			Return(opened, true, nil)
		mockGateway.On("Initiate", ctx, mock.AnythingOfType("*provider.InitiateRequest")).
			Return(nil, &provider.GatewayError{Code: "API_ERROR", Message: "timeout"})
		mockAttempts.On("MarkFailed", ctx, int64(12), model.FailureReasonGatewayFailed, false, actorID).Return(nil)

		result, err := service.InitiatePayment(ctx, 1, actorID, dto.InitiatePaymentRequest{
			Amount:  decimal.NewFromInt(500),
			Contact: "+256700000001",
		})

		assert.Nil(t, result)
		assert.Error(t, err)
		mockAttempts.AssertExpectations(t)
	})

	t.Run("malformed contact is refused", func(t *testing.T) {
		mockPledges := new(MockPledgeRepository)
		mockAttempts := new(MockPaymentAttemptRepository)
		mockGateway := new(MockPaymentGateway)
		service := usecase.NewPaymentIntentService(mockPledges, mockAttempts, mockGateway, 2*time.Minute, logger)

		result, err := service.InitiatePayment(ctx, 1, actorID, dto.InitiatePaymentRequest{
			Amount:  decimal.NewFromInt(500),
			Contact: "not-a-number",
		})

		assert.Nil(t, result)
		var contactErr *domainErrors.InvalidContactError
		assert.ErrorAs(t, err, &contactErr)
		mockPledges.AssertNotCalled(t, "GetByID")
	})

	t.Run("cancelled pledge refuses new payments", func(t *testing.T) {
		mockPledges := new(MockPledgeRepository)
		mockAttempts := new(MockPaymentAttemptRepository)
		mockGateway := new(MockPaymentGateway)
		service := usecase.NewPaymentIntentService(mockPledges, mockAttempts, mockGateway, 2*time.Minute, logger)

		cancelled := partialPledge(2, 5000, 1000)
		cancelled.Status = model.PledgeStatusCancelled
		mockPledges.On("GetByID", ctx, int64(2)).Return(cancelled, nil)

		result, err := service.InitiatePayment(ctx, 2, actorID, dto.InitiatePaymentRequest{
			Amount:  decimal.NewFromInt(500),
			Contact: "+256700000001",
		})

		assert.Nil(t, result)
		var terminalErr *domainErrors.PledgeTerminalError
		assert.ErrorAs(t, err, &terminalErr)
	})
}

func TestPaymentIntentService_GetAttempt(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("unknown transaction id returns nil without error", func(t *testing.T) {
		mockPledges := new(MockPledgeRepository)
		mockAttempts := new(MockPaymentAttemptRepository)
		mockGateway := new(MockPaymentGateway)
		service := usecase.NewPaymentIntentService(mockPledges, mockAttempts, mockGateway, 2*time.Minute, logger)

		transactionID := uuid.New()
		mockAttempts.On("GetByTransactionID", ctx, transactionID).Return(nil, nil)

		result, err := service.GetAttempt(ctx, transactionID)

		assert.NoError(t, err)
		assert.Nil(t, result)
	})
}
