package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rhetoriclab/rhetorica-api/internal/service"
	"github.com/rhetoriclab/rhetorica-api/internal/utils"
)

// ReviewHandler exposes the teacher-side annotation heatmap.
type ReviewHandler struct {
	service service.ReviewService
	logger  zerolog.Logger
}

// NewReviewHandler constructs the handler.
func NewReviewHandler(service service.ReviewService, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  logger.With().Str("component", "review_handler").Logger(),
	}
}

// Register attaches the review routes. The router is expected to already be
// gated to teachers.
func (h *ReviewHandler) Register(router fiber.Router) {
	router.Get("/assignments/:id/heatmap", h.heatmap)
	router.Get("/assignments/:id/segments/:pos", h.segmentDetail)
}

func (h *ReviewHandler) heatmap(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	heatmap, err := h.service.Heatmap(c.Context(), userIDFromContext(c), assignmentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "heatmap retrieved", heatmap)
}

// segmentDetail resolves the segment covering a character position and lists
// which students annotated it.
func (h *ReviewHandler) segmentDetail(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	position, err := strconv.Atoi(c.Params("pos"))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "position must be an integer")
	}

	detail, err := h.service.SegmentDetail(c.Context(), userIDFromContext(c), assignmentID, position)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "segment detail retrieved", detail)
}

func (h *ReviewHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrNotClassOwner):
		return utils.SendError(c, fiber.StatusForbidden, "only the class owner may review it")
	case errors.Is(err, service.ErrInvalidSelection):
		return utils.SendError(c, fiber.StatusBadRequest, "position is outside the reading")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
