package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/faithflow/pledge-service/internal/domain/dto"
	domainErrors "github.com/faithflow/pledge-service/internal/domain/errors"
	"github.com/faithflow/pledge-service/internal/domain/provider"
	"github.com/faithflow/pledge-service/internal/usecase"
)

// signatureHeader carries the HMAC the rail computes over the raw body
const signatureHeader = "X-Momo-Signature"

// CallbackHandler receives payment outcome notifications from the rail
type CallbackHandler struct {
	logger            *zap.Logger
	gateway           provider.PaymentGateway
	reconciliationSvc *usecase.ReconciliationService
}

// NewCallbackHandler creates a new callback handler instance
func NewCallbackHandler(logger *zap.Logger, gateway provider.PaymentGateway, reconciliationSvc *usecase.ReconciliationService) *CallbackHandler {
	return &CallbackHandler{
		logger:            logger,
		gateway:           gateway,
		reconciliationSvc: reconciliationSvc,
	}
}

// HandleCallback handles POST /callbacks/momo
func (h *CallbackHandler) HandleCallback(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("failed to read callback body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "failed to read request body",
		})
	}
	c.Request().Body = io.NopCloser(bytes.NewReader(body))

	sig := c.Request().Header.Get(signatureHeader)
	if !h.gateway.VerifyCallback(body, sig) {
		h.logger.Warn("callback signature verification failed",
			zap.String("gateway", h.gateway.GatewayName()))
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "signature verification failed",
		})
	}

	var req dto.GatewayCallbackRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid callback payload",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	result, err := h.reconciliationSvc.ProcessCallback(c.Request().Context(), req)
	if err != nil {
		var unknown *domainErrors.UnknownAttemptError
		if errors.As(err, &unknown) {
			h.logger.Warn("callback for unknown gateway reference",
				zap.String("gateway_reference", req.GatewayReference))
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "unknown gateway reference",
			})
		}
		h.logger.Error("failed to process callback",
			zap.String("gateway_reference", req.GatewayReference),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to process callback",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"received":  true,
		"applied":   result.Applied,
		"duplicate": result.Duplicate,
	})
}
