package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitstudio/studio-app/internal/api"
	"fitstudio/studio-app/internal/config"
	"fitstudio/studio-app/internal/logging"
	"fitstudio/studio-app/internal/repository/mongo"
	"fitstudio/studio-app/internal/service"
	"fitstudio/studio-app/internal/storage"
	"fitstudio/studio-app/internal/weather"

	"github.com/gin-gonic/gin"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("could not load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging.Level)
	logger.Info("starting studio server", "address", cfg.Server.Address)

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logger.Error("could not connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		logger.Info("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.Error("failed to disconnect MongoDB", "error", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	logger.Info("database connection established", "database", cfg.Database.Name)

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureProfileIndexes(ctx, appDB.Collection("profiles"))
		mongo.EnsureInstructorIndexes(ctx, appDB.Collection("instructors"))
		mongo.EnsureMembershipIndexes(ctx, appDB.Collection("memberships"))
		mongo.EnsureRoutineIndexes(ctx, appDB.Collection("routines"))
		mongo.EnsureExerciseIndexes(ctx, appDB.Collection("exercises"))
		logger.Info("index creation process completed")
	}()

	// --- Initialize Storage ---
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		logger.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	profileRepo := mongo.NewMongoProfileRepository(appDB)
	instructorRepo := mongo.NewMongoInstructorRepository(appDB)
	membershipRepo := mongo.NewMongoMembershipRepository(appDB)
	routineRepo := mongo.NewMongoRoutineRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	txnRunner := mongo.NewMongoTxnRunner(dbClient)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, profileRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	membershipService := service.NewMembershipService(membershipRepo)
	enrollmentService := service.NewEnrollmentService(routineRepo)
	catalogService := service.NewCatalogService(userRepo, instructorRepo, routineRepo, exerciseRepo, txnRunner, fileStorage)
	memberService := service.NewMemberService(userRepo, profileRepo, membershipRepo, instructorRepo, routineRepo, exerciseRepo, txnRunner)

	// --- Weather Client ---
	var weatherClient *weather.Client
	if cfg.Weather.APIKey != "" {
		weatherClient = weather.NewClient(cfg.Weather.BaseURL, cfg.Weather.APIKey, cfg.Weather.City, cfg.Weather.Timeout)
		logger.Info("weather client configured", "city", cfg.Weather.City)
	} else {
		logger.Warn("no weather API key configured, pages render without weather")
	}

	// --- Initialize Gin Engine ---
	router := gin.Default()

	htmlTemplates := cfg.Server.TemplatesGlob != ""
	if htmlTemplates {
		router.LoadHTMLGlob(cfg.Server.TemplatesGlob)
	}
	renderer := api.NewRenderer(htmlTemplates)

	// --- Setup Routes ---
	api.SetupRoutes(
		router,
		renderer,
		authService,
		membershipService,
		enrollmentService,
		catalogService,
		memberService,
		weatherClient,
		cfg.JWT.Expiration,
		cfg.Metrics.Enabled,
	)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Info("server starting", "address", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen and serve failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exiting")
}
