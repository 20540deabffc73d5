package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/academy-api/internal/dto"
	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/service"
	"github.com/noah-isme/academy-api/internal/utils"
)

// WithdrawalHandler lets an authenticated user close their own account.
type WithdrawalHandler struct {
	service   service.WithdrawalService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewWithdrawalHandler constructs the handler.
func NewWithdrawalHandler(service service.WithdrawalService, validate *validator.Validate, logger zerolog.Logger) *WithdrawalHandler {
	return &WithdrawalHandler{
		service:   service,
		validator: validate,
		logger:    logger.With().Str("component", "withdrawal_handler").Logger(),
	}
}

// Register attaches routes.
func (h *WithdrawalHandler) Register(router fiber.Router) {
	router.Delete("", h.withdraw)
}

func (h *WithdrawalHandler) withdraw(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}
	role, ok := models.ParseRole(userRoleFromContext(c))
	if !ok {
		return utils.SendError(c, fiber.StatusForbidden, "account role cannot be withdrawn")
	}

	var req dto.WithdrawAccountRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}
	if err := h.validator.Struct(req); err != nil {
		if isValidationError(err) {
			return utils.Fail(c, fiber.StatusBadRequest, "validation failed", validationDetails(err))
		}
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Withdraw(c.UserContext(), role, userID, req.Reason); err != nil {
		var withdrawalErr *service.WithdrawalError
		if errors.As(err, &withdrawalErr) {
			status := fiber.StatusConflict
			if withdrawalErr.Kind == service.WithdrawalNotFound {
				status = fiber.StatusNotFound
			}
			return utils.SendError(c, status, withdrawalErr.Message)
		}

		logger.Error().Err(err).Uint("user_id", userID).Str("role", string(role)).Msg("account withdrawal failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to withdraw account")
	}

	return utils.SendSuccess(c, "account withdrawn", nil)
}
