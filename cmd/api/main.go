package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/uniconnect/uniconnect-api/config"
	"github.com/uniconnect/uniconnect-api/internal/cache"
	"github.com/uniconnect/uniconnect-api/internal/handlers"
	"github.com/uniconnect/uniconnect-api/internal/mailer"
	"github.com/uniconnect/uniconnect-api/internal/middleware"
	"github.com/uniconnect/uniconnect-api/internal/repository"
	"github.com/uniconnect/uniconnect-api/internal/services"
	"github.com/uniconnect/uniconnect-api/pkg/db"
	"github.com/uniconnect/uniconnect-api/pkg/jwt"
	"github.com/uniconnect/uniconnect-api/pkg/logger"
	"github.com/uniconnect/uniconnect-api/pkg/metrics"
	"github.com/uniconnect/uniconnect-api/pkg/profiling"
	"github.com/uniconnect/uniconnect-api/pkg/storage"
	"github.com/uniconnect/uniconnect-api/pkg/tracing"
)

// registerPublicRoutes registers the unauthenticated API surface
func registerPublicRoutes(
	group *gin.RouterGroup,
	generalRateLimiter, registrationRateLimiter, otpRateLimiter, profileRateLimiter *middleware.RateLimiter,
	maintenanceGuard gin.HandlerFunc,
	studentHandler *handlers.StudentHandler,
	profileHandler *handlers.StudentProfileHandler,
	otpHandler *handlers.OTPHandler,
	settingsHandler *handlers.SettingsHandler,
) {

	group.GET("/students", generalRateLimiter.Middleware(), studentHandler.ListStudents)
	group.GET("/students/:id", generalRateLimiter.Middleware(), studentHandler.GetStudent)
	group.POST("/students", registrationRateLimiter.Middleware(), maintenanceGuard,
		middleware.BodySizeLimitMiddleware(256*1024), studentHandler.RegisterStudent)

	group.PATCH("/students/:id/edit", profileRateLimiter.Middleware(),
		middleware.BodySizeLimitMiddleware(256*1024), profileHandler.EditProfile)
	group.POST("/students/:id/picture", profileRateLimiter.Middleware(),
		middleware.BodySizeLimitMiddleware(10*1024*1024), profileHandler.UploadAvatar)

	group.POST("/otp/send", otpRateLimiter.Middleware(),
		middleware.BodySizeLimitMiddleware(16*1024), otpHandler.SendOTP)
	group.POST("/otp/verify", otpRateLimiter.Middleware(),
		middleware.BodySizeLimitMiddleware(16*1024), otpHandler.VerifyOTP)

	group.GET("/settings", generalRateLimiter.Middleware(), settingsHandler.GetPublicSettings)
}

// registerAdminRoutes registers the moderation surface behind the admin key.
// Per-student mutations live on /students/:id with the other student routes;
// only the method differs between the public and admin surface there.
func registerAdminRoutes(
	group *gin.RouterGroup,
	cfg *config.Config,
	adminRateLimiter *middleware.RateLimiter,
	adminStudentsHandler *handlers.AdminStudentsHandler,
	settingsHandler *handlers.SettingsHandler,
) {

	adminAuth := middleware.AdminAuthMiddleware(cfg.Auth.AdminSecretKey)

	group.PATCH("/students/:id", adminRateLimiter.Middleware(), adminAuth,
		middleware.BodySizeLimitMiddleware(256*1024), adminStudentsHandler.UpdateStudent)
	group.DELETE("/students/:id", adminRateLimiter.Middleware(), adminAuth, adminStudentsHandler.DeleteStudent)

	admin := group.Group("/admin")
	admin.Use(adminRateLimiter.Middleware())
	admin.Use(adminAuth)

	admin.GET("/students", adminStudentsHandler.ListStudents)
	admin.GET("/students/export", adminStudentsHandler.ExportStudents)

	admin.GET("/settings", settingsHandler.GetSettings)
	admin.PATCH("/settings", middleware.BodySizeLimitMiddleware(64*1024), settingsHandler.UpdateSettings)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting UniConnect API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
		cfg.Observability.ExporterEndpoint,
	)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	// Initialize continuous profiling
	profilerStop, err := profiling.InitProfiler(
		cfg.Profiling,
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
	)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer profilerStop()

	// Initialize metrics with service name from config
	metrics.Init(cfg.Observability.ServiceName)

	// Start infrastructure metrics collection
	metrics.RecordInfrastructureMetrics()

	// Initialize PostgreSQL connection pool
	pool, err := db.NewPool(context.Background(), db.PoolConfig{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		logger.Fatal("Failed to initialize database connection pool", zap.Error(err))
	}
	defer pool.Close()

	// NOTE: Database migrations are run separately via the migrate command
	// before the app starts: ./migrate or docker-compose run migrate

	// Initialize object storage client for avatars
	var storageClient storage.ClientInterface
	if cfg.Storage.AccessKeyID != "" && cfg.Storage.SecretAccessKey != "" {
		storageClient, err = storage.NewClient(
			cfg.Storage.AccessKeyID,
			cfg.Storage.SecretAccessKey,
			cfg.Storage.BucketName,
			cfg.Storage.Endpoint,
			cfg.Storage.Region,
		)
		if err != nil {
			logger.Fatal("Failed to initialize object storage client", zap.Error(err))
		}
	} else {
		logger.Warn("Object storage is not configured: avatar uploads will fail")
		storageClient = storage.Unconfigured()
	}

	// Initialize SMTP mailer
	smtpMailer, err := mailer.New(cfg.SMTP, cfg.Server.SiteName)
	if err != nil {
		logger.Fatal("Failed to initialize SMTP mailer", zap.Error(err))
	}

	// Initialize repositories
	studentRepo := repository.NewStudentRepository(pool)
	otpRepo := repository.NewOTPRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)

	// Settings cache sits in front of the singleton row
	settingsCache := cache.NewSettingsCache(
		settingsRepo.GetOrCreate,
		time.Duration(cfg.Cache.SettingsTTLSeconds)*time.Second,
	)

	// Edit tokens authorize self-service profile edits after OTP verification
	tokenManager := jwt.NewTokenManager(
		cfg.EditToken.Secret,
		cfg.EditToken.Issuer,
		cfg.EditToken.TTLMinutes,
	)

	// Initialize services
	studentService := services.NewStudentService(studentRepo)
	otpService := services.NewOTPService(otpRepo, studentRepo, smtpMailer, tokenManager)
	settingsService := services.NewSettingsService(settingsRepo, settingsCache)

	// Initialize handlers
	studentHandler := handlers.NewStudentHandler(studentService)
	profileHandler := handlers.NewStudentProfileHandler(studentService, otpService, storageClient)
	otpHandler := handlers.NewOTPHandler(otpService, cfg.IsProduction())
	adminStudentsHandler := handlers.NewAdminStudentsHandler(studentService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	healthHandler := handlers.NewHealthHandler(pool.Ping)

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// CORS: only the configured origins, plus localhost in development
	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.AdminHeaderName, handlers.EditTokenHeaderName, "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Rate limiters, scaled to how abusable each surface is
	generalRateLimiter := middleware.NewRateLimiter(100, 200)       // 100 req/sec, burst of 200
	registrationRateLimiter := middleware.NewRateLimiter(0.0333, 3) // 2 req/min, burst of 3
	otpRateLimiter := middleware.NewRateLimiter(0.0333, 3)          // 2 req/min, burst of 3 (code guessing)
	profileRateLimiter := middleware.NewRateLimiter(10, 20)         // 10 req/sec, burst of 20
	adminRateLimiter := middleware.NewRateLimiter(20, 40)           // 20 req/sec, burst of 40

	// Operational endpoints (not versioned)
	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	// API v1 routes
	v1 := router.Group("/api/v1")
	maintenanceGuard := middleware.MaintenanceMiddleware(settingsService)
	registerPublicRoutes(v1, generalRateLimiter, registrationRateLimiter, otpRateLimiter, profileRateLimiter,
		maintenanceGuard, studentHandler, profileHandler, otpHandler, settingsHandler)
	registerAdminRoutes(v1, cfg, adminRateLimiter, adminStudentsHandler, settingsHandler)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
