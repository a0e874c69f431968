package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/faithflow/pledge-service/internal/domain/dto"
	"github.com/faithflow/pledge-service/internal/usecase"
)

// AuditHandler exposes the audit trail to administrators
type AuditHandler struct {
	logger       *zap.Logger
	auditService *usecase.AuditService
}

// NewAuditHandler creates a new audit handler instance
func NewAuditHandler(logger *zap.Logger, auditService *usecase.AuditService) *AuditHandler {
	return &AuditHandler{
		logger:       logger,
		auditService: auditService,
	}
}

// ListEntries handles GET /api/v1/audit (admin only)
func (h *AuditHandler) ListEntries(c echo.Context) error {
	if _, err := actorFromContext(c); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "unauthorized",
		})
	}
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, map[string]string{
			"error": "admin role required",
		})
	}

	filters := dto.AuditFilters{}

	if actorStr := c.QueryParam("actor_id"); actorStr != "" {
		id, err := uuid.Parse(actorStr)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "invalid actor_id parameter",
			})
		}
		filters.ActorID = &id
	}

	if action := c.QueryParam("action"); action != "" {
		filters.Action = &action
	}

	if txStr := c.QueryParam("transaction_id"); txStr != "" {
		id, err := uuid.Parse(txStr)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "invalid transaction_id parameter",
			})
		}
		filters.TransactionID = &id
	}

	if pledgeStr := c.QueryParam("pledge_id"); pledgeStr != "" {
		id, err := strconv.ParseInt(pledgeStr, 10, 64)
		if err != nil || id < 1 {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "invalid pledge_id parameter",
			})
		}
		filters.PledgeID = &id
	}

	if startDateStr := c.QueryParam("start_date"); startDateStr != "" {
		startDate, err := time.Parse(time.RFC3339, startDateStr)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "invalid start_date format, use ISO 8601",
			})
		}
		filters.StartDate = &startDate
	}

	if endDateStr := c.QueryParam("end_date"); endDateStr != "" {
		endDate, err := time.Parse(time.RFC3339, endDateStr)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "invalid end_date format, use ISO 8601",
			})
		}
		filters.EndDate = &endDate
	}

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

	response, err := h.auditService.ListEntries(c.Request().Context(), filters)
	if err != nil {
		h.logger.Error("failed to list audit entries", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to retrieve audit entries",
		})
	}

	return c.JSON(http.StatusOK, response)
}
