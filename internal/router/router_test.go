package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/rhetoriclab/rhetorica-api/internal/config"
	"github.com/rhetoriclab/rhetorica-api/internal/handler"
	"github.com/rhetoriclab/rhetorica-api/internal/router"
)

// Assignment-scoped routes must register even when only one of the handlers
// sharing the /assignments group is wired.
func TestRegisterAssignmentGroupWithoutAssignmentHandler(t *testing.T) {
	app := fiber.New()
	router.Register(app, config.Config{AppName: "Rhetorica API"}, router.Dependencies{
		StreamHandler: handler.NewStreamHandler(nil, zerolog.Nop()),
	})

	// A plain GET without upgrade headers reaches the websocket guard, so a
	// routed request answers 426 rather than a 404 routing miss.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/assignments/1/annotations/ws", nil)
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUpgradeRequired, res.StatusCode)
}
