package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medilink/config"
	deliveryHttp "medilink/internal/delivery/http"
	"medilink/internal/delivery/http/handler"
	"medilink/internal/delivery/http/middleware"
	"medilink/internal/infrastructure/cache"
	"medilink/internal/infrastructure/database"
	"medilink/internal/infrastructure/firebase"
	"medilink/internal/infrastructure/queue"
	"medilink/internal/ledger"
	"medilink/internal/repository"
	"medilink/internal/service"
	"medilink/internal/usecase"
	"medilink/internal/worker"
	"medilink/pkg/jwt"
	"medilink/pkg/validator"

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
	Server      *http.Server
	QueueClient *asynq.Client
	Worker      *asynq.Server
	WorkerMux   *asynq.ServeMux
	Registry    ledger.Registry
	RateLimiter *middleware.RateLimiter

	cancel context.CancelFunc
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	setupLogger(cfg.App.LogLevel)
	logrus.Info("Configuration loaded successfully")

	// Apply schema migrations before the pool opens
	if err := database.RunMigrations(cfg.DB); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logrus.Info("Database migrations applied")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.IsProduction())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	logrus.Info("Redis connected successfully")

	ctx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel

	registry, err := ledger.New(ctx, cfg.Ledger, logrus.StandardLogger())
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to connect to ledger: %w", err)
	}
	app.Registry = registry

	fcm, err := firebase.NewMessagingClient(ctx, cfg.Firebase)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize firebase messaging: %w", err)
	}
	var pushSender service.PushSender
	if fcm != nil {
		pushSender = fcm
	}

	app.QueueClient = queue.NewClient(cfg.Redis)
	app.Worker = queue.NewServer(cfg.Redis, cfg.Queue, logrus.StandardLogger())

	// Initialize all layers
	app.initialize(cfg, db, redisClient, pushSender)

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

// initialize wires repositories, services, use cases and the HTTP server
func (app *App) initialize(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, pushSender service.PushSender) {
	// Initialize logger
	log := logrus.StandardLogger()

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	transactor := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	donorRepo := repository.NewDonorProfileRepository(db)
	hospitalRepo := repository.NewHospitalRepository(db)
	doctorRepo := repository.NewDoctorRepository(db)
	bloodRequestRepo := repository.NewBloodRequestRepository(db)

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	tokenStore := service.NewTokenStore(redisClient)
	otpService := service.NewOTPService(redisClient, service.NewMailer(cfg.Mail, log), cfg.OTP.TTL, cfg.OTP.Length, cfg.OTP.MaxAttempts)
	eventBus := service.NewAuthEventBus(redisClient, log)
	idempotency := service.NewIdempotencyStore(redisClient)
	notificationService := service.NewNotificationService(log, userRepo, pushSender)
	dispatcher := worker.NewDispatcher(app.QueueClient)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(transactor, log, userRepo, jwtService, tokenStore, otpService, eventBus, auditService)
	appointmentUsecase := usecase.NewAppointmentUsecase(transactor, log, appointmentRepo, doctorRepo, hospitalRepo, idempotency, dispatcher, auditService)
	donorUsecase := usecase.NewDonorRegistrationUsecase(transactor, log, donorRepo, auditService)
	hospitalUsecase := usecase.NewHospitalUsecase(transactor, log, hospitalRepo, app.Registry, auditService)
	doctorUsecase := usecase.NewDoctorUsecase(transactor, log, doctorRepo, app.Registry, auditService)
	directoryUsecase := usecase.NewDirectoryUsecase(log, hospitalRepo, doctorRepo)
	dashboardUsecase := usecase.NewDashboardUsecase(log, hospitalRepo, doctorRepo, donorRepo, appointmentRepo)
	bloodRequestUsecase := usecase.NewBloodRequestUsecase(transactor, log, bloodRequestRepo, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(log, auditLogRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator, jwtService)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator)
	donorHandler := handler.NewDonorHandler(donorUsecase, customValidator)
	directoryHandler := handler.NewDirectoryHandler(hospitalUsecase, doctorUsecase, directoryUsecase, customValidator)
	adminHandler := handler.NewAdminHandler(dashboardUsecase, bloodRequestUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, tokenStore)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigin)
	app.RateLimiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.TrustedProxies, log)

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler,
		appointmentHandler,
		donorHandler,
		directoryHandler,
		adminHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
		app.RateLimiter,
	)

	// Background jobs
	app.WorkerMux = worker.NewServeMux(notificationService, log)

	// Create server
	app.Server = newServer(fmt.Sprintf(":%s", cfg.App.Port), router.Setup())
}

// Run starts the HTTP server and the job worker, then handles graceful shutdown
func (app *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go app.RateLimiter.Cleanup(ctx)

	if err := app.Worker.Start(app.WorkerMux); err != nil {
		logrus.Fatalf("Failed to start job worker: %v", err)
	}

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

	// Drain in-flight jobs
	app.Worker.Shutdown()

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, queue, ledger)
func (app *App) Close() {
	if app.cancel != nil {
		app.cancel()
	}

	if closer, ok := app.Registry.(interface{ Close() }); ok {
		closer.Close()
	}

	if app.QueueClient != nil {
		if err := app.QueueClient.Close(); err != nil {
			logrus.Warnf("Failed to close queue client: %v", err)
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
