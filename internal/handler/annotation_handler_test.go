package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rhetoriclab/rhetorica-api/internal/config"
	"github.com/rhetoriclab/rhetorica-api/internal/dto"
	"github.com/rhetoriclab/rhetorica-api/internal/handler"
	"github.com/rhetoriclab/rhetorica-api/internal/models"
	"github.com/rhetoriclab/rhetorica-api/internal/repository"
	"github.com/rhetoriclab/rhetorica-api/internal/router"
	"github.com/rhetoriclab/rhetorica-api/internal/service"
)

const annotationTestContent = "We hold these truths to be self-evident."

func setupAnnotationApp(t *testing.T) (*fiber.App, *gorm.DB, models.Assignment) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Class{}, &models.ClassMembership{}, &models.Assignment{}, &models.Annotation{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	annotationRepo := repository.NewAnnotationRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	annotationService := service.NewAnnotationService(annotationRepo, assignmentRepo, validate, nil, nil, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		AnnotationHandler: handler.NewAnnotationHandler(annotationService, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			if id, err := strconv.ParseUint(c.Get("X-Test-User"), 10, 64); err == nil {
				c.Locals("user_id", uint(id))
			}
			c.Locals("user_role", "student")
			return c.Next()
		},
	})

	assignment := models.Assignment{
		ClassID: 1,
		Title:   "Declaration",
		Content: annotationTestContent,
		DueDate: time.Now().UTC().Add(24 * time.Hour),
		Status:  models.AssignmentStatusActive,
	}
	require.NoError(t, db.Create(&assignment).Error)

	return app, db, assignment
}

func annotationRequest(t *testing.T, method, path string, userID uint, payload any) *http.Request {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Test-User", strconv.Itoa(int(userID)))
	return req
}

func TestAnnotationHandlerCreateRejectsMismatchedSelection(t *testing.T) {
	app, _, assignment := setupAnnotationApp(t)

	path := "/api/v1/assignments/" + strconv.Itoa(int(assignment.ID)) + "/annotations"
	req := annotationRequest(t, http.MethodPost, path, 42, map[string]any{
		"text":         "hold these lies",
		"verb":         "Refutes",
		"start_offset": 3,
		"end_offset":   18,
	})

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()
}

func TestAnnotationHandlerUpdateOwnerOnly(t *testing.T) {
	app, db, assignment := setupAnnotationApp(t)

	annotation := models.Annotation{
		AssignmentID: assignment.ID,
		UserID:       42,
		Text:         annotationTestContent[3:18],
		Verb:         "Frames",
		StartOffset:  3,
		EndOffset:    18,
	}
	require.NoError(t, db.Create(&annotation).Error)

	path := "/api/v1/annotations/" + strconv.Itoa(int(annotation.ID))
	verb := "Underscores"

	req := annotationRequest(t, http.MethodPatch, path, 99, map[string]any{"verb": verb})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	req = annotationRequest(t, http.MethodPatch, path, 42, map[string]any{"verb": verb})
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data dto.AnnotationResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	require.Equal(t, verb, body.Data.Verb)
	require.Equal(t, "Emphasis", body.Data.Category)
}
