package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/academy-api/internal/dto"
	"github.com/noah-isme/academy-api/internal/service"
	"github.com/noah-isme/academy-api/internal/utils"
)

// AcademyCodeHandler issues academy join codes.
type AcademyCodeHandler struct {
	service service.AcademyCodeService
	logger  zerolog.Logger
}

// NewAcademyCodeHandler constructs the handler.
func NewAcademyCodeHandler(service service.AcademyCodeService, logger zerolog.Logger) *AcademyCodeHandler {
	return &AcademyCodeHandler{
		service: service,
		logger:  logger.With().Str("component", "academy_code_handler").Logger(),
	}
}

// Register attaches routes.
func (h *AcademyCodeHandler) Register(router fiber.Router) {
	router.Get("/code", h.generate)
}

func (h *AcademyCodeHandler) generate(c *fiber.Ctx) error {
	code, err := h.service.Generate(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to generate academy code")
		return utils.SendError(c, fiber.StatusServiceUnavailable, "failed to generate academy code")
	}

	return utils.SendSuccess(c, "academy code generated", dto.AcademyCodeResponse{Code: code})
}
