package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/faithflow/pledge-service/internal/apperrors"
	"github.com/faithflow/pledge-service/internal/domain/dto"
	domainErrors "github.com/faithflow/pledge-service/internal/domain/errors"
	"github.com/faithflow/pledge-service/internal/usecase"
)

// PledgeHandler handles pledge-related HTTP requests
type PledgeHandler struct {
	logger        *zap.Logger
	pledgeService *usecase.PledgeService
}

// NewPledgeHandler creates a new pledge handler instance
func NewPledgeHandler(logger *zap.Logger, pledgeService *usecase.PledgeService) *PledgeHandler {
	return &PledgeHandler{
		logger:        logger,
		pledgeService: pledgeService,
	}
}

// CreatePledge handles POST /api/v1/pledges
func (h *PledgeHandler) CreatePledge(c echo.Context) error {
	memberID, err := actorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "unauthorized",
		})
	}

	var req dto.CreatePledgeRequest
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

	pledge, err := h.pledgeService.CreatePledge(c.Request().Context(), memberID, req)
	if err != nil {
		return h.mapPledgeError(c, err)
	}

	return c.JSON(http.StatusCreated, pledge)
}

// ListPledges handles GET /api/v1/pledges
func (h *PledgeHandler) ListPledges(c echo.Context) error {
	memberID, err := actorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "unauthorized",
		})
	}

	filters := dto.PledgeFilters{}

	// Non-admin callers only see their own pledges
	if isAdmin(c) {
		if memberStr := c.QueryParam("member_id"); memberStr != "" {
			id, err := uuid.Parse(memberStr)
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{
					"error": "invalid member_id parameter",
				})
			}
			filters.MemberID = &id
		}
	} else {
		filters.MemberID = &memberID
	}

	if campaignStr := c.QueryParam("campaign_id"); campaignStr != "" {
		id, err := strconv.ParseInt(campaignStr, 10, 64)
		if err != nil || id < 1 {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "invalid campaign_id parameter",
			})
		}
		filters.CampaignID = &id
	}

	if status := c.QueryParam("status"); status != "" {
		validStatuses := map[string]bool{
			"pending":   true,
			"partial":   true,
			"completed": true,
			"cancelled": true,
		}
		if !validStatuses[status] {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "invalid status, must be one of: pending, partial, completed, cancelled",
			})
		}
		filters.Status = &status
	}

	filters.Overdue = c.QueryParam("overdue") == "true"

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "invalid limit parameter",
			})
		}
		filters.Limit = limit
	}

	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "invalid offset parameter",
			})
		}
		filters.Offset = offset
	}

	response, err := h.pledgeService.ListPledges(c.Request().Context(), filters)
	if err != nil {
		h.logger.Error("failed to list pledges", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to retrieve pledges",
		})
	}

	return c.JSON(http.StatusOK, response)
}

// GetPledge handles GET /api/v1/pledges/:id
func (h *PledgeHandler) GetPledge(c echo.Context) error {
	id, err := pledgeIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid pledge id",
		})
	}

	pledge, err := h.pledgeService.GetPledge(c.Request().Context(), id)
	if err != nil {
		h.logger.Error("failed to get pledge", zap.Int64("pledge_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to retrieve pledge",
		})
	}
	if pledge == nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "pledge not found",
		})
	}

	return c.JSON(http.StatusOK, pledge)
}

// UpdatePledge handles PATCH /api/v1/pledges/:id
func (h *PledgeHandler) UpdatePledge(c echo.Context) error {
	actorID, err := actorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "unauthorized",
		})
	}

	id, err := pledgeIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid pledge id",
		})
	}

	var req dto.UpdatePledgeRequest
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

	pledge, err := h.pledgeService.UpdatePledge(c.Request().Context(), id, actorID, req)
	if err != nil {
		return h.mapPledgeError(c, err)
	}
	if pledge == nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "pledge not found",
		})
	}

	return c.JSON(http.StatusOK, pledge)
}

// CancelPledge handles POST /api/v1/pledges/:id/cancel
func (h *PledgeHandler) CancelPledge(c echo.Context) error {
	actorID, err := actorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "unauthorized",
		})
	}

	id, err := pledgeIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid pledge id",
		})
	}

	pledge, err := h.pledgeService.CancelPledge(c.Request().Context(), id, actorID)
	if err != nil {
		return h.mapPledgeError(c, err)
	}

	return c.JSON(http.StatusOK, pledge)
}

// DeletePledge handles DELETE /api/v1/pledges/:id (admin only)
func (h *PledgeHandler) DeletePledge(c echo.Context) error {
	actorID, err := actorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "unauthorized",
		})
	}
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, map[string]string{
			"error": "admin role required",
		})
	}

	id, err := pledgeIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid pledge id",
		})
	}

	if err := h.pledgeService.DeletePledge(c.Request().Context(), id, actorID); err != nil {
		return h.mapPledgeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// RecordContribution handles POST /api/v1/pledges/:id/contributions (admin only)
func (h *PledgeHandler) RecordContribution(c echo.Context) error {
	actorID, err := actorFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "unauthorized",
		})
	}
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, map[string]string{
			"error": "admin role required",
		})
	}

	id, err := pledgeIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid pledge id",
		})
	}

	var req dto.RecordContributionRequest
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

	pledge, err := h.pledgeService.RecordContribution(c.Request().Context(), id, actorID, req)
	if err != nil {
		return h.mapPledgeError(c, err)
	}

	return c.JSON(http.StatusOK, pledge)
}

// PlanPreview handles GET /api/v1/plan-preview
func (h *PledgeHandler) PlanPreview(c echo.Context) error {
	campaignID, err := strconv.ParseInt(c.QueryParam("campaign_id"), 10, 64)
	if err != nil || campaignID < 1 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid campaign_id parameter",
		})
	}

	amount, err := decimal.NewFromString(c.QueryParam("amount"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid amount parameter",
		})
	}

	plan := c.QueryParam("plan")
	if plan == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "plan parameter is required",
		})
	}

	count := 0
	if countStr := c.QueryParam("count"); countStr != "" {
		count, err = strconv.Atoi(countStr)
		if err != nil || count < 1 {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "invalid count parameter",
			})
		}
	}

	preview, err := h.pledgeService.PlanPreview(c.Request().Context(), campaignID, amount, plan, count)
	if err != nil {
		return h.mapPledgeError(c, err)
	}

	return c.JSON(http.StatusOK, preview)
}

// mapPledgeError translates domain errors to HTTP responses
func (h *PledgeHandler) mapPledgeError(c echo.Context, err error) error {
	var belowPaid *domainErrors.BelowAmountPaidError
	var terminal *domainErrors.PledgeTerminalError
	var closed *domainErrors.CampaignClosedError
	var limit *domainErrors.InstallmentLimitError
	var overpay *domainErrors.OverpaymentError

	switch {
	case errors.As(err, &belowPaid):
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{
			"error": err.Error(),
			"code":  "below_amount_paid",
		})
	case errors.As(err, &terminal):
		return c.JSON(http.StatusConflict, map[string]string{
			"error": err.Error(),
			"code":  "pledge_terminal",
		})
	case errors.As(err, &closed):
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{
			"error": err.Error(),
			"code":  "campaign_closed",
		})
	case errors.As(err, &limit):
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{
			"error": err.Error(),
			"code":  "installment_limit_exceeded",
		})
	case errors.As(err, &overpay):
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{
			"error": err.Error(),
			"code":  "overpayment",
		})
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "pledge not found",
		})
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return c.JSON(apperrors.ToHTTPStatus(appErr.Code()), map[string]string{
			"error": appErr.Error(),
		})
	}

	h.logger.Error("pledge operation failed", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}
