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
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/courselab/activity-server-api/internal/config"
	"github.com/courselab/activity-server-api/internal/database"
	"github.com/courselab/activity-server-api/internal/handler"
	"github.com/courselab/activity-server-api/internal/identity"
	"github.com/courselab/activity-server-api/internal/middleware"
	"github.com/courselab/activity-server-api/internal/models"
	"github.com/courselab/activity-server-api/internal/repository"
	"github.com/courselab/activity-server-api/internal/router"
	"github.com/courselab/activity-server-api/internal/service"
	"github.com/courselab/activity-server-api/pkg/storage"
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

	if err := db.AutoMigrate(&models.Activity{}, &models.InstructorGrant{}, &models.Submission{}, &models.AuditLog{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	store, err := storage.NewCloudinaryStore(storage.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create artifact store: %v", err)
	}

	verifier, err := buildVerifier(cfg)
	if err != nil {
		log.Fatalf("failed to create identity verifier: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	activityRepo := repository.NewActivityRepository(db)
	grantRepo := repository.NewInstructorGrantRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	audit := service.NewAuditService(auditRepo, logger)
	dashboardCache := service.NewDashboardCache(redisClient, cfg.DashboardCacheTTL, logger)
	activityService := service.NewActivityService(db, activityRepo, grantRepo, validate, store, audit, dashboardCache, logger)
	authorizationService := service.NewAuthorizationService(db, grantRepo, activityRepo, validate, cfg.OpenGrantBootstrap, audit, dashboardCache, logger)
	submissionService := service.NewSubmissionService(db, submissionRepo, activityRepo, grantRepo, validate, store, audit, dashboardCache, cfg.MaxScore, logger)
	dashboardService := service.NewDashboardService(grantRepo, activityRepo, submissionRepo, dashboardCache, logger)

	activityHandler := handler.NewActivityHandler(activityService, logger)
	instructorHandler := handler.NewInstructorHandler(authorizationService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ActivityHandler:    activityHandler,
		InstructorHandler:  instructorHandler,
		SubmissionHandler:  submissionHandler,
		DashboardHandler:   dashboardHandler,
		IdentityMiddleware: middleware.RequireIdentity(verifier, logger),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func buildVerifier(cfg config.Config) (identity.Verifier, error) {
	if cfg.IdentityMode == config.IdentityModeInsecure {
		return identity.NewClaimsVerifier(), nil
	}
	return identity.NewGoogleVerifier(cfg.GoogleClientID)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
