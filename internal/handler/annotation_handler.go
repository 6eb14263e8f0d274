package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rhetoriclab/rhetorica-api/internal/dto"
	"github.com/rhetoriclab/rhetorica-api/internal/service"
	"github.com/rhetoriclab/rhetorica-api/internal/utils"
)

// AnnotationHandler wires annotation HTTP routes. Students only ever see and
// edit their own annotations; reads are scoped to (assignment, caller).
type AnnotationHandler struct {
	service service.AnnotationService
	logger  zerolog.Logger
}

// NewAnnotationHandler constructs the handler.
func NewAnnotationHandler(service service.AnnotationService, logger zerolog.Logger) *AnnotationHandler {
	return &AnnotationHandler{
		service: service,
		logger:  logger.With().Str("component", "annotation_handler").Logger(),
	}
}

// RegisterAssignmentRoutes attaches the assignment-scoped annotation endpoints.
func (h *AnnotationHandler) RegisterAssignmentRoutes(router fiber.Router) {
	router.Get("/:id/annotations", h.listOwn)
	router.Post("/:id/annotations", h.create)
}

// Register attaches the annotation-scoped endpoints.
func (h *AnnotationHandler) Register(router fiber.Router) {
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *AnnotationHandler) create(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AnnotationCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	annotation, err := h.service.Create(c.Context(), userIDFromContext(c), assignmentID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "annotation created", annotation)
}

func (h *AnnotationHandler) listOwn(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	annotations, err := h.service.ListOwn(c.Context(), userIDFromContext(c), assignmentID)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "annotations retrieved", annotations)
}

func (h *AnnotationHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AnnotationUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	annotation, err := h.service.Update(c.Context(), userIDFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "annotation updated", annotation)
}

func (h *AnnotationHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), userIDFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "annotation deleted", fiber.Map{"id": id})
}

func (h *AnnotationHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrAnnotationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "annotation not found")
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrNotAnnotationOwner):
		return utils.SendError(c, fiber.StatusForbidden, "caller does not own this annotation")
	case errors.Is(err, service.ErrInvalidSelection):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "selection does not match assignment content")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *AnnotationHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
