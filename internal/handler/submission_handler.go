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

// SubmissionHandler wires the essay wizard routes, all scoped to the calling
// student's submission on one assignment.
type SubmissionHandler struct {
	service  service.SubmissionService
	progress service.ProgressService
	logger   zerolog.Logger
}

// NewSubmissionHandler constructs the handler. The progress service is only
// used to invalidate the caller's cached dashboard after writes.
func NewSubmissionHandler(service service.SubmissionService, progress service.ProgressService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service:  service,
		progress: progress,
		logger:   logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the wizard endpoints under /assignments/:id/submission.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Get("/:id/submission", h.get)
	router.Put("/:id/submission/spacecat", h.saveSpacecat)
	router.Put("/:id/submission/thesis", h.saveThesis)
	router.Post("/:id/submission/paragraphs", h.addParagraph)
	router.Patch("/:id/submission/paragraphs/:paragraphID", h.updateParagraph)
	router.Delete("/:id/submission/paragraphs/:paragraphID", h.deleteParagraph)
	router.Post("/:id/submission/reorder", h.reorder)
	router.Post("/:id/submission/submit", h.submit)
	router.Get("/:id/submission/essay", h.essay)
}

func (h *SubmissionHandler) get(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.service.Get(c.Context(), userIDFromContext(c), assignmentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission retrieved", submission)
}

func (h *SubmissionHandler) saveSpacecat(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SpacecatRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.SaveSpacecat(c.Context(), userIDFromContext(c), assignmentID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	h.invalidateProgress(c)
	return utils.SendSuccess(c, "rhetorical situation saved", submission)
}

func (h *SubmissionHandler) saveThesis(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ThesisRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.SaveThesis(c.Context(), userIDFromContext(c), assignmentID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	h.invalidateProgress(c)
	return utils.SendSuccess(c, "thesis saved", submission)
}

func (h *SubmissionHandler) addParagraph(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ParagraphRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.AddParagraph(c.Context(), userIDFromContext(c), assignmentID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "paragraph added", submission)
}

func (h *SubmissionHandler) updateParagraph(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	paragraphID := c.Params("paragraphID")

	var payload dto.ParagraphRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.UpdateParagraph(c.Context(), userIDFromContext(c), assignmentID, paragraphID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "paragraph updated", submission)
}

func (h *SubmissionHandler) deleteParagraph(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.service.DeleteParagraph(c.Context(), userIDFromContext(c), assignmentID, c.Params("paragraphID"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "paragraph deleted", submission)
}

func (h *SubmissionHandler) reorder(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ReorderRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.Reorder(c.Context(), userIDFromContext(c), assignmentID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "paragraphs reordered", submission)
}

func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.service.Submit(c.Context(), userIDFromContext(c), assignmentID)
	if err != nil {
		return h.handleError(c, err)
	}

	h.invalidateProgress(c)
	return utils.SendSuccess(c, "essay submitted", submission)
}

// essay returns the plain-text export for copy or download.
func (h *SubmissionHandler) essay(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	essay, err := h.service.Essay(c.Context(), userIDFromContext(c), assignmentID)
	if err != nil {
		return h.handleError(c, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(essay)
}

func (h *SubmissionHandler) invalidateProgress(c *fiber.Ctx) {
	if h.progress == nil {
		return
	}
	h.progress.Invalidate(c.Context(), userIDFromContext(c))
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrAnnotationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "annotation not found")
	case errors.Is(err, service.ErrNotAnnotationOwner):
		return utils.SendError(c, fiber.StatusForbidden, "claim annotation does not belong to the caller")
	case errors.Is(err, service.ErrParagraphNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "paragraph not found")
	case errors.Is(err, service.ErrThesisIncomplete):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "thesis requires two verbs and a purpose")
	case errors.Is(err, service.ErrRatioNotMet):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "commentary must have at least twice as many sentences as evidence")
	case errors.Is(err, service.ErrReorderMismatch):
		return utils.SendError(c, fiber.StatusBadRequest, "reorder list must contain every paragraph exactly once")
	case errors.Is(err, service.ErrAlreadySubmitted):
		return utils.SendError(c, fiber.StatusConflict, "submission already handed in")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *SubmissionHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
