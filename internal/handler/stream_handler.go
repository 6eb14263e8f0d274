package handler

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/rhetoriclab/rhetorica-api/internal/middleware"
	"github.com/rhetoriclab/rhetorica-api/internal/service"
)

// StreamHandler wires the websocket upgrade for live annotation events.
type StreamHandler struct {
	service service.StreamService
	logger  zerolog.Logger
}

// NewStreamHandler constructs the handler.
func NewStreamHandler(service service.StreamService, logger zerolog.Logger) *StreamHandler {
	return &StreamHandler{
		service: service,
		logger:  logger.With().Str("component", "stream_handler").Logger(),
	}
}

// Register binds the websocket route on the assignment-scoped router group.
func (h *StreamHandler) Register(router fiber.Router) {
	router.Use("/:id/annotations/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			ctx := c.UserContext()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
			c.Locals("request_ctx", ctx)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/:id/annotations/ws", websocket.New(h.handleConnection))
}

func (h *StreamHandler) handleConnection(conn *websocket.Conn) {
	userID, ok := conn.Locals("user_id").(uint)
	if !ok || userID == 0 {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(fiber.StatusUnauthorized, "user id missing"))
		_ = conn.Close()
		return
	}

	assignmentID, err := strconv.ParseUint(conn.Params("id"), 10, 64)
	if err != nil || assignmentID == 0 {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(fiber.StatusBadRequest, "assignment id required"))
		_ = conn.Close()
		return
	}

	role := fmt.Sprint(conn.Locals("user_role"))
	correlation := fmt.Sprint(conn.Locals("correlation_id"))
	baseCtx, _ := conn.Locals("request_ctx").(context.Context)

	opts := service.StreamConnectionOptions{
		UserID:        userID,
		Role:          role,
		AssignmentID:  uint(assignmentID),
		CorrelationID: correlation,
		Context:       baseCtx,
	}

	h.logger.Info().Uint("user_id", userID).Uint64("assignment_id", assignmentID).Msg("annotation stream connected")
	h.service.ServeConnection(conn, opts)
	h.logger.Info().Uint("user_id", userID).Uint64("assignment_id", assignmentID).Msg("annotation stream disconnected")
}
