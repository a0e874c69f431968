package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/faithflow/pledge-service/internal/apperrors"
	"github.com/faithflow/pledge-service/internal/domain/dto"
	domainErrors "github.com/faithflow/pledge-service/internal/domain/errors"
	"github.com/faithflow/pledge-service/internal/usecase"
)

// PaymentHandler handles payment initiation and attempt polling
type PaymentHandler struct {
	logger        *zap.Logger
	intentService *usecase.PaymentIntentService
}

// NewPaymentHandler creates a new payment handler instance
func NewPaymentHandler(logger *zap.Logger, intentService *usecase.PaymentIntentService) *PaymentHandler {
	return &PaymentHandler{
		logger:        logger,
		intentService: intentService,
	}
}

// InitiatePayment handles POST /api/v1/pledges/:id/payments
func (h *PaymentHandler) InitiatePayment(c echo.Context) error {
	actorID, err := actorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "unauthorized",
		})
	}

	pledgeID, err := pledgeIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid pledge id",
		})
	}

	var req dto.InitiatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	attempt, err := h.intentService.InitiatePayment(c.Request().Context(), pledgeID, actorID, req)
	if err != nil {
		return h.mapPaymentError(c, err)
	}
	if attempt == nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "pledge not found",
		})
	}

	// A duplicate returns the attempt already in flight, not a new charge
	if attempt.Duplicate {
		return c.JSON(http.StatusOK, attempt)
	}

	return c.JSON(http.StatusAccepted, attempt)
}

// GetAttempt handles GET /api/v1/payments/:id
func (h *PaymentHandler) GetAttempt(c echo.Context) error {
	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid transaction id",
		})
	}

	attempt, err := h.intentService.GetAttempt(c.Request().Context(), transactionID)
	if err != nil {
		h.logger.Error("failed to get payment attempt",
			zap.String("transaction_id", transactionID.String()),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to retrieve payment attempt",
		})
	}
	if attempt == nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "payment attempt not found",
		})
	}

	return c.JSON(http.StatusOK, attempt)
}

// mapPaymentError translates domain errors to HTTP responses
func (h *PaymentHandler) mapPaymentError(c echo.Context, err error) error {
	var invalidContact *domainErrors.InvalidContactError
	var overpay *domainErrors.OverpaymentError
	var terminal *domainErrors.PledgeTerminalError

	switch {
	case errors.As(err, &invalidContact):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
			"code":  "invalid_contact",
		})
	case errors.As(err, &overpay):
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{
			"error": err.Error(),
			"code":  "overpayment",
		})
	case errors.As(err, &terminal):
		return c.JSON(http.StatusConflict, map[string]string{
			"error": err.Error(),
			"code":  "pledge_terminal",
		})
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return c.JSON(apperrors.ToHTTPStatus(appErr.Code()), map[string]string{
			"error": appErr.Error(),
		})
	}

	h.logger.Error("payment initiation failed", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}
