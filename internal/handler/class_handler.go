package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rhetoriclab/rhetorica-api/internal/dto"
	"github.com/rhetoriclab/rhetorica-api/internal/models"
	"github.com/rhetoriclab/rhetorica-api/internal/service"
	"github.com/rhetoriclab/rhetorica-api/internal/utils"
)

// ClassHandler wires class HTTP routes: creation and rosters for teachers,
// join-by-code for students.
type ClassHandler struct {
	service service.ClassService
	logger  zerolog.Logger
}

// NewClassHandler constructs the handler.
func NewClassHandler(service service.ClassService, logger zerolog.Logger) *ClassHandler {
	return &ClassHandler{
		service: service,
		logger:  logger.With().Str("component", "class_handler").Logger(),
	}
}

// Register attaches class endpoints to the router group.
func (h *ClassHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Post("/join", h.join)
	router.Get("/:id", h.get)
	router.Get("/:id/roster", h.roster)
}

func (h *ClassHandler) create(c *fiber.Ctx) error {
	if userRoleFromContext(c) != models.RoleTeacher {
		return utils.SendError(c, fiber.StatusForbidden, "only teachers can create classes")
	}

	var payload dto.ClassCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	class, err := h.service.Create(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "class created", class)
}

// list returns the caller's classes: owned classes for teachers, enrolled
// classes for students.
func (h *ClassHandler) list(c *fiber.Ctx) error {
	userID := userIDFromContext(c)

	var (
		classes []dto.ClassResponse
		err     error
	)
	if userRoleFromContext(c) == models.RoleTeacher {
		classes, err = h.service.ListForTeacher(c.Context(), userID)
	} else {
		classes, err = h.service.ListForStudent(c.Context(), userID)
	}
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "classes retrieved", classes)
}

func (h *ClassHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	class, err := h.service.Get(c.Context(), id, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "class retrieved", class)
}

func (h *ClassHandler) join(c *fiber.Ctx) error {
	var payload dto.ClassJoinRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	class, err := h.service.Join(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "class joined", class)
}

func (h *ClassHandler) roster(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	roster, err := h.service.Roster(c.Context(), id, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "roster retrieved", roster)
}

func (h *ClassHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "class not found")
	case errors.Is(err, service.ErrInvalidJoinCode):
		return utils.SendError(c, fiber.StatusNotFound, "join code not recognized")
	case errors.Is(err, service.ErrNotClassOwner):
		return utils.SendError(c, fiber.StatusForbidden, "caller does not own this class")
	case errors.Is(err, service.ErrJoinCodeExhausted):
		return utils.SendError(c, fiber.StatusConflict, "could not allocate a unique join code, retry")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *ClassHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
