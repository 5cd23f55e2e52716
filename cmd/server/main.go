package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vir/coach-app/internal/api"
	"vir/coach-app/internal/config"
	"vir/coach-app/internal/integration/strava"
	"vir/coach-app/internal/repository/mongo"
	"vir/coach-app/internal/service"
	"vir/coach-app/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.Info("Starting coach app server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.WithError(err).Fatal("Could not load config")
	}
	logger.Info("Configuration loaded")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logger.WithError(err).Fatal("Could not connect to MongoDB")
	}
	defer func() {
		logger.Info("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.WithError(err).Error("Failed to disconnect MongoDB")
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	logger.Info("Database connection established")

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		ensure := []struct {
			name string
			err  error
		}{
			{"users", mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))},
			{"day_plans", mongo.EnsureDayPlanIndexes(ctx, appDB.Collection("day_plans"))},
			{"routines", mongo.EnsureRoutineIndexes(ctx, appDB.Collection("routines"))},
			{"routine_items", mongo.EnsureRoutineItemIndexes(ctx, appDB.Collection("routine_items"))},
			{"exercises", mongo.EnsureExerciseIndexes(ctx, appDB.Collection("exercises"))},
			{"athlete_logs", mongo.EnsureAthleteLogIndexes(ctx, appDB.Collection("athlete_logs"))},
			{"athlete_checks", mongo.EnsureAthleteCheckIndexes(ctx, appDB.Collection("athlete_checks"))},
			{"integrations", mongo.EnsureIntegrationIndexes(ctx, appDB.Collection("integration_accounts"), appDB.Collection("external_activities"))},
		}
		for _, e := range ensure {
			if e.err != nil {
				logger.WithError(e.err).WithField("collection", e.name).Error("Index creation failed")
			}
		}
		logger.Info("Index creation process completed")
	}()

	// --- Initialize Storage ---
	var fileStorage storage.FileStorage
	if cfg.S3.BucketName != "" {
		fileStorage, err = storage.NewS3Storage(cfg.S3)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize S3 storage")
		}
		logger.Info("File storage initialized")
	} else {
		logger.Warn("S3 bucket not configured, video features disabled")
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	planRepo := mongo.NewMongoDayPlanRepository(appDB)
	routineRepo := mongo.NewMongoRoutineRepository(appDB)
	itemRepo := mongo.NewMongoRoutineItemRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	logRepo := mongo.NewMongoAthleteLogRepository(appDB)
	checkRepo := mongo.NewMongoAthleteCheckRepository(appDB)
	integrationRepo := mongo.NewMongoIntegrationRepository(appDB)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	scheduleService := service.NewScheduleService(planRepo, routineRepo, itemRepo, logRepo, checkRepo, fileStorage, service.StreakPolicy{
		LookbackDays: cfg.Progress.StreakLookbackDays,
		RestBreaks:   cfg.Progress.StrictStreak,
	})
	athleteService := service.NewAthleteService(planRepo, itemRepo, logRepo, checkRepo)
	coachService := service.NewCoachService(userRepo, planRepo, routineRepo, itemRepo, exerciseRepo, logRepo, checkRepo, scheduleService, authService)
	exerciseService := service.NewExerciseService(exerciseRepo, fileStorage)
	scriptService := service.NewScriptService(scheduleService, cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	stravaClient := strava.NewClient(cfg.Strava.ClientID, cfg.Strava.ClientSecret, cfg.Strava.RedirectURL)
	stravaService := service.NewStravaService(stravaClient, integrationRepo, cfg.JWT.Secret, logger)

	// --- Admin Bootstrap ---
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := authService.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			logger.WithError(err).Error("Admin bootstrap failed")
		}
		cancel()
	}

	// --- Initialize Gin Engine ---
	router := gin.Default()

	api.SetupRoutes(router, cfg.JWT.Secret, authService, scheduleService, scriptService,
		athleteService, coachService, exerciseService, stravaService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.WithField("address", cfg.Server.Address).Info("Server starting")

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("ListenAndServe error")
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exiting")
}
