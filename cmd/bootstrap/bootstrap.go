package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pulsebridge-consult/config"
	deliveryHttp "pulsebridge-consult/internal/delivery/http"
	"pulsebridge-consult/internal/delivery/http/handler"
	"pulsebridge-consult/internal/delivery/http/middleware"
	"pulsebridge-consult/internal/infrastructure/cache"
	"pulsebridge-consult/internal/infrastructure/chain"
	"pulsebridge-consult/internal/infrastructure/database"
	"pulsebridge-consult/internal/infrastructure/ipfs"
	"pulsebridge-consult/internal/infrastructure/pricefeed"
	"pulsebridge-consult/internal/infrastructure/telemetry"
	"pulsebridge-consult/internal/repository"
	"pulsebridge-consult/internal/service"
	"pulsebridge-consult/internal/usecase"
	"pulsebridge-consult/pkg/jwt"
	"pulsebridge-consult/pkg/validator"

	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const chainDialTimeout = 15 * time.Second

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Chain       *chain.Client
	EntityCache *service.RedisEntityCache
	Server      *http.Server

	shutdownTracing func(context.Context) error
}

// Open loads configuration and connects Postgres and Redis. Commands that
// need more build on top of it.
func Open() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	app.Log = setupLogger(cfg.App.LogLevel)
	app.Log.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	app.Log.Info("Database connected successfully")

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(context.Background(), cfg.Redis, app.Log)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	app.Log.Info("Redis connected successfully")

	app.EntityCache = service.NewEntityCache(redisClient, cfg.Booking.CacheTTL, app.Log)

	return app, nil
}

// New creates a new App instance with the HTTP server and every dependency
// it needs initialized
func New() (*App, error) {
	app, err := Open()
	if err != nil {
		return nil, err
	}
	cfg := app.Config

	if cfg.App.AutoMigrate {
		if err := database.Migrate(cfg.DB, "up", 0); err != nil {
			app.Close()
			return nil, err
		}
	}

	shutdown, err := telemetry.Setup(context.Background(), cfg.Telemetry)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to setup telemetry: %w", err)
	}
	app.shutdownTracing = shutdown

	ctx, cancel := context.WithTimeout(context.Background(), chainDialTimeout)
	defer cancel()
	signer := chain.NewKeystoreSigner(cfg.Chain.KeystoreDir, cfg.Chain.KeystorePassphrase, cfg.Chain.ChainID)
	chainClient, err := chain.Dial(ctx, cfg.Chain, signer, app.Log)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Chain = chainClient

	if accounts := signer.Accounts(); len(accounts) == 0 {
		app.Log.Warnf("Keystore %s holds no accounts; transactions cannot be signed", cfg.Chain.KeystoreDir)
	} else {
		app.Log.Infof("Keystore holds %d signing accounts: %v", len(accounts), accounts)
	}

	if err := service.VerifyTokenDecimals(ctx, chain.NewTokenGateway(chainClient), cfg.Chain.Network, app.Log); err != nil {
		app.Close()
		return nil, err
	}

	app.Server = app.initializeServer()
	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// initializeServer creates and configures the HTTP server
func (app *App) initializeServer() *http.Server {
	cfg := app.Config
	db := app.DB
	log := app.Log
	redisClient := app.RedisClient
	network := cfg.Chain.Network
	loc := cfg.App.Location()

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	doctorProfileRepo := repository.NewDoctorProfileRepository()
	patientProfileRepo := repository.NewPatientProfileRepository()
	availabilityRepo := repository.NewAvailabilityRepository()
	attemptRepo := repository.NewBookingAttemptRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	paymentRepo := repository.NewPaymentRepository()
	taskRepo := repository.NewTaskRepository()
	reviewRepo := repository.NewReviewRepository()
	prescriptionRepo := repository.NewPrescriptionRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize gateways
	registry := chain.NewRegistryGateway(app.Chain, common.HexToAddress(network.DoctorRegistry))
	escrow := chain.NewEscrowGateway(app.Chain, common.HexToAddress(network.ConsultationEscrow))
	tokens := chain.NewTokenGateway(app.Chain)
	priceFeed := pricefeed.NewHermesClient(cfg.PriceFeed, network, log)
	documents := ipfs.NewStore(cfg.IPFS)

	// Initialize services
	auditService := service.NewAuditService(db, log, auditLogRepo)
	feeConverter := service.NewFeeConverter(priceFeed)
	allowance := service.NewAllowanceManager(tokens, app.Chain, log)
	locker := service.NewRedisAttemptLocker(redisClient, cfg.Booking.LockTTL)
	hashCache := service.NewPrescriptionHashCache(redisClient)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(db, log, userRepo, doctorProfileRepo, jwtService, redisClient, auditService, cfg.App.AdminWallets)
	doctorProfileUsecase := usecase.NewDoctorProfileUsecase(db, log, userRepo, doctorProfileRepo, reviewRepo, registry, app.Chain, documents, app.EntityCache, auditService)
	availabilityUsecase := usecase.NewAvailabilityUsecase(db, log, loc, availabilityRepo, doctorProfileRepo, app.EntityCache, auditService)
	orchestrator := usecase.NewSessionOrchestrator(usecase.SessionOrchestratorDeps{
		DB:                db,
		Log:               log,
		Location:          loc,
		Booking:           cfg.Booking,
		Network:           network,
		DoctorProfileRepo: doctorProfileRepo,
		AvailabilityRepo:  availabilityRepo,
		AttemptRepo:       attemptRepo,
		AppointmentRepo:   appointmentRepo,
		PaymentRepo:       paymentRepo,
		TaskRepo:          taskRepo,
		FeeConverter:      feeConverter,
		Allowance:         allowance,
		Locker:            locker,
		Audit:             auditService,
		Cache:             app.EntityCache,
		Escrow:            escrow,
		Waiter:            app.Chain,
		PriceFeed:         priceFeed,
	})
	consoleUsecase := usecase.NewConsoleUsecase(db, log, appointmentRepo, taskRepo, doctorProfileRepo, escrow, auditService)
	consultationUsecase := usecase.NewConsultationUsecase(db, log, doctorProfileRepo, appointmentRepo, paymentRepo, prescriptionRepo, reviewRepo,
		escrow, app.Chain, documents, hashCache, app.EntityCache, auditService)
	patientProfileUsecase := usecase.NewPatientProfileUsecase(db, log, patientProfileRepo, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// Initialize handlers
	handlers := deliveryHttp.Handlers{
		Auth:         handler.NewAuthHandler(authUsecase, customValidator, jwtService),
		Doctor:       handler.NewDoctorHandler(doctorProfileUsecase, customValidator),
		Availability: handler.NewAvailabilityHandler(availabilityUsecase, customValidator),
		Booking:      handler.NewBookingHandler(orchestrator, customValidator),
		Console:      handler.NewConsoleHandler(consoleUsecase, customValidator),
		Consultation: handler.NewConsultationHandler(consultationUsecase, customValidator, log),
		Patient:      handler.NewPatientHandler(patientProfileUsecase, customValidator),
		AuditLog:     handler.NewAuditLogHandler(auditLogUsecase),
	}

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, redisClient)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigins)

	// Initialize router
	router := deliveryHttp.NewRouter(log, handlers, authMiddleware, corsMiddleware, deliveryHttp.ServiceInfo{
		Name:    cfg.Telemetry.ServiceName,
		Version: cfg.Telemetry.ServiceVersion,
		Network: network.Name,
	})
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s, network: %s", app.Config.App.Env, app.Config.Chain.Network.Name)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
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

	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	if app.shutdownTracing != nil {
		if err := app.shutdownTracing(ctx); err != nil {
			app.Log.Warnf("Failed to flush traces: %v", err)
		}
	}

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, chain)
func (app *App) Close() {
	if app.EntityCache != nil {
		app.EntityCache.Stop()
	}

	if app.Chain != nil {
		app.Chain.Close()
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
