package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/rhetoriclab/rhetorica-api/internal/config"
	"github.com/rhetoriclab/rhetorica-api/internal/handler"
	"github.com/rhetoriclab/rhetorica-api/internal/middleware"
	"github.com/rhetoriclab/rhetorica-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ClassHandler      *handler.ClassHandler
	AssignmentHandler *handler.AssignmentHandler
	AnnotationHandler *handler.AnnotationHandler
	SubmissionHandler *handler.SubmissionHandler
	ReviewHandler     *handler.ReviewHandler
	ProgressHandler   *handler.ProgressHandler
	StreamHandler     *handler.StreamHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.ClassHandler != nil {
		classes := api.Group("/classes", jwtMiddleware)
		// Join codes are short; throttle guessing.
		classes.Use("/join", middleware.RateLimit("class-join", 10, time.Minute))
		deps.ClassHandler.Register(classes)

		if deps.AssignmentHandler != nil {
			deps.AssignmentHandler.RegisterClassRoutes(classes)
		}
	}

	// The group must exist whenever any assignment-scoped handler does, not
	// just when the assignment CRUD handler is wired.
	if deps.AssignmentHandler != nil || deps.StreamHandler != nil ||
		deps.AnnotationHandler != nil || deps.SubmissionHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware)
		if deps.AssignmentHandler != nil {
			deps.AssignmentHandler.Register(assignments)
		}

		// The websocket upgrade must be bound before the annotation CRUD
		// wildcard routes so /:id/annotations/ws is not shadowed.
		if deps.StreamHandler != nil {
			deps.StreamHandler.Register(assignments)
		}
		if deps.AnnotationHandler != nil {
			deps.AnnotationHandler.RegisterAssignmentRoutes(assignments)
		}
		if deps.SubmissionHandler != nil {
			deps.SubmissionHandler.Register(assignments)
		}
	}

	if deps.AnnotationHandler != nil {
		annotations := api.Group("/annotations", jwtMiddleware)
		deps.AnnotationHandler.Register(annotations)
	}

	if deps.ReviewHandler != nil {
		review := api.Group("/review", jwtMiddleware, middleware.RequireRole("teacher"))
		deps.ReviewHandler.Register(review)
	}

	if deps.ProgressHandler != nil {
		progress := api.Group("/students/me/progress", jwtMiddleware, middleware.RequireRole("student"))
		deps.ProgressHandler.Register(progress)
	}
}
