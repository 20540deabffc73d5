package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/academy-api/internal/dto"
	"github.com/noah-isme/academy-api/internal/service"
	"github.com/noah-isme/academy-api/internal/utils"
)

// RetentionAuditHandler exposes compliance reads over retained data.
type RetentionAuditHandler struct {
	service service.RetentionAuditService
	logger  zerolog.Logger
}

// NewRetentionAuditHandler constructs the handler.
func NewRetentionAuditHandler(service service.RetentionAuditService, logger zerolog.Logger) *RetentionAuditHandler {
	return &RetentionAuditHandler{
		service: service,
		logger:  logger.With().Str("component", "retention_audit_handler").Logger(),
	}
}

// Register attaches routes.
func (h *RetentionAuditHandler) Register(router fiber.Router) {
	router.Get("/retention/:anonymousId", h.inspect)
	router.Get("/withdrawals", h.listHistory)
}

func (h *RetentionAuditHandler) inspect(c *fiber.Ctx) error {
	anonymousID := strings.TrimSpace(c.Params("anonymousId"))
	if anonymousID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "anonymous id is required")
	}

	inspection, err := h.service.Inspect(c.UserContext(), anonymousID)
	if err != nil {
		if errors.Is(err, service.ErrRetentionRecordNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "retention record not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Str("anonymous_id", anonymousID).Msg("failed to inspect retention record")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to inspect retention record")
	}

	requestLogger(h.logger, c).Info().
		Str("anonymous_id", anonymousID).
		Uint("actor_id", userIDFromContext(c)).
		Msg("retention record accessed")

	return utils.SendSuccess(c, "retention record retrieved", dto.NewRetentionInspectionResponse(inspection.User, inspection.Counts))
}

func (h *RetentionAuditHandler) listHistory(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	result, err := h.service.ListHistory(c.UserContext(), c.Query("role"), page, pageSize)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRoleFilter) {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid role")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list withdrawal history")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list withdrawal history")
	}

	meta := fiber.Map{
		"pagination": dto.NewPaginationMeta(result.Page, result.PageSize, result.Total),
	}
	return utils.OK(c, dto.NewWithdrawalHistoryResponses(result.Items), "withdrawal history retrieved", meta)
}
