package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rhetoriclab/rhetorica-api/internal/service"
	"github.com/rhetoriclab/rhetorica-api/internal/utils"
)

// ProgressHandler exposes the student dashboard.
type ProgressHandler struct {
	service service.ProgressService
	logger  zerolog.Logger
}

// NewProgressHandler constructs the handler.
func NewProgressHandler(service service.ProgressService, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		service: service,
		logger:  logger.With().Str("component", "progress_handler").Logger(),
	}
}

// Register attaches the progress routes.
func (h *ProgressHandler) Register(router fiber.Router) {
	router.Get("", h.studentProgress)
}

func (h *ProgressHandler) studentProgress(c *fiber.Ctx) error {
	progress, err := h.service.StudentProgress(c.Context(), userIDFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "progress retrieved", progress)
}
