package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/rhetoriclab/rhetorica-api/internal/config"
	"github.com/rhetoriclab/rhetorica-api/internal/database"
	"github.com/rhetoriclab/rhetorica-api/internal/handler"
	"github.com/rhetoriclab/rhetorica-api/internal/middleware"
	"github.com/rhetoriclab/rhetorica-api/internal/models"
	"github.com/rhetoriclab/rhetorica-api/internal/repository"
	"github.com/rhetoriclab/rhetorica-api/internal/router"
	"github.com/rhetoriclab/rhetorica-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Class{}, &models.ClassMembership{}, &models.Assignment{}, &models.Annotation{}, &models.Submission{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	annotationRepo := repository.NewAnnotationRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	streamService := service.NewStreamService(redisClient, cfg.EventChannelBase, natsConn, logger)
	reviewService := service.NewReviewService(assignmentRepo, annotationRepo, classRepo, userRepo, redisClient, cfg.HeatmapCacheTTL, logger)

	classService := service.NewClassService(classRepo, userRepo, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, annotationRepo, classRepo, validate, logger)
	annotationService := service.NewAnnotationService(annotationRepo, assignmentRepo, validate, streamService, reviewService, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, annotationRepo, validate, logger)
	progressService := service.NewProgressService(classRepo, assignmentRepo, submissionRepo, redisClient, cfg.ProgressCacheTTL, logger)

	rootCtx, stopStream := context.WithCancel(context.Background())
	defer stopStream()
	streamService.Start(rootCtx)

	classHandler := handler.NewClassHandler(classService, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, logger)
	annotationHandler := handler.NewAnnotationHandler(annotationService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, progressService, logger)
	reviewHandler := handler.NewReviewHandler(reviewService, logger)
	progressHandler := handler.NewProgressHandler(progressService, logger)
	streamHandler := handler.NewStreamHandler(streamService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ClassHandler:      classHandler,
		AssignmentHandler: assignmentHandler,
		AnnotationHandler: annotationHandler,
		SubmissionHandler: submissionHandler,
		ReviewHandler:     reviewHandler,
		ProgressHandler:   progressHandler,
		StreamHandler:     streamHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, natsConn)
}

func waitForShutdown(app *fiber.App, natsConn *nats.Conn) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	if natsConn != nil {
		if err := natsConn.Drain(); err != nil {
			log.Printf("nats drain failed: %v", err)
		}
	}

	log.Println("server stopped")
}
