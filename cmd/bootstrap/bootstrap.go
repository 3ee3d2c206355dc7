package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/christinepetrosyan/Timebook/config"
	deliveryHttp "github.com/christinepetrosyan/Timebook/internal/delivery/http"
	"github.com/christinepetrosyan/Timebook/internal/delivery/http/handler"
	"github.com/christinepetrosyan/Timebook/internal/delivery/http/middleware"
	"github.com/christinepetrosyan/Timebook/internal/domain/schedule"
	"github.com/christinepetrosyan/Timebook/internal/infrastructure/cache"
	"github.com/christinepetrosyan/Timebook/internal/infrastructure/database"
	"github.com/christinepetrosyan/Timebook/internal/infrastructure/queue"
	"github.com/christinepetrosyan/Timebook/internal/repository"
	"github.com/christinepetrosyan/Timebook/internal/service"
	"github.com/christinepetrosyan/Timebook/internal/usecase"
	"github.com/christinepetrosyan/Timebook/pkg/jwt"
	"github.com/christinepetrosyan/Timebook/pkg/validator"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	TaskClient  *asynq.Client
	LockService *service.MasterLockService
	Server      *http.Server
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	log := setupLogger(cfg.Log)
	log.Info("Configuration loaded successfully")

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone: %w", err)
	}

	// Apply schema
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(database.DSN(cfg.DB, cfg.App.Timezone)); err != nil {
			return nil, err
		}
	}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Timezone, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	log.Info("Database connected successfully")

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	log.Info("Redis connected successfully")

	app.TaskClient = queue.NewAsynqClient(cfg.Redis)
	app.LockService = service.NewMasterLockService(log, cfg.Schedule.LockTimeout)

	// Initialize all layers
	server, err := app.initializeServer(cfg, log, loc)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Server = server

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(cfg config.LogConfig) *logrus.Logger {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	return logrus.StandardLogger()
}

// initializeServer creates and configures the HTTP server
func (app *App) initializeServer(cfg *config.Config, log *logrus.Logger, loc *time.Location) (*http.Server, error) {
	sqlDB, err := app.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	slotRepo := repository.NewTimeSlotRepository()
	apptRepo := repository.NewAppointmentRepository()
	catalogRepo := repository.NewCatalogRepository()
	txManager := database.NewTxManager(app.DB, cfg.DB.QueryTimeout)

	// Initialize services
	catalogService := service.NewCatalogService(txManager, log, catalogRepo)
	auditService := service.NewAuditService(log)
	notificationService := service.NewNotificationService(app.TaskClient, log, cfg.Notify.Queue, cfg.Notify.ReminderLead)

	// Initialize usecases
	availabilityUsecase := usecase.NewAvailabilityUsecase(txManager, app.LockService, log, catalogService, slotRepo, apptRepo, auditService)
	appointmentUsecase := usecase.NewAppointmentUsecase(txManager, app.LockService, log, catalogService, slotRepo, apptRepo, auditService, notificationService)
	bookingUsecase := usecase.NewBookingUsecase(txManager, app.LockService, log, catalogService, slotRepo, apptRepo, availabilityUsecase, auditService, notificationService)
	window := schedule.Window{StartHour: cfg.Schedule.GridStartHour, EndHour: cfg.Schedule.GridEndHour}
	scheduleUsecase := usecase.NewScheduleUsecase(txManager, log, catalogService, slotRepo, apptRepo, loc, window)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(sqlDB, cfg.DB.QueryTimeout)
	scheduleHandler := handler.NewScheduleHandler(scheduleUsecase, loc)
	appointmentHandler := handler.NewAppointmentHandler(bookingUsecase, appointmentUsecase, customValidator)
	timeSlotHandler := handler.NewTimeSlotHandler(availabilityUsecase, bookingUsecase, customValidator)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, cache.NewTokenDenyList(app.RedisClient), log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.CORS.AllowedOrigins)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.Rate.RPS, cfg.Rate.Burst, log)

	// Initialize router
	router := deliveryHttp.NewRouter(healthHandler, scheduleHandler, appointmentHandler, timeSlotHandler, authMiddleware, corsMiddleware, rateLimitMiddleware)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close releases every connection and background worker.
func (app *App) Close() {
	if app.LockService != nil {
		app.LockService.Stop()
	}

	if app.TaskClient != nil {
		if err := app.TaskClient.Close(); err != nil {
			logrus.Warnf("Failed to close task client: %+v", err)
		}
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
