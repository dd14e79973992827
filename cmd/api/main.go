package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jatrackr/jatrackr-backend/internal/config"
	"github.com/jatrackr/jatrackr-backend/internal/handler"
	"github.com/jatrackr/jatrackr-backend/internal/middleware"
	mongorepo "github.com/jatrackr/jatrackr-backend/internal/repository/mongo"
	"github.com/jatrackr/jatrackr-backend/internal/repository/storage"
	"github.com/jatrackr/jatrackr-backend/internal/service"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database. The client is long-lived and shared by all
	// requests; the driver is safe for concurrent use.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	// Verify database connection
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		pingCancel()
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	pingCancel()
	log.Info().Str("database", cfg.MongoDB).Msg("Connected to database")

	db := client.Database(cfg.MongoDB)

	// Initialize repositories
	userRepo := mongorepo.NewUserRepository(db, cfg.UsersCollection)
	jobDataRepo := mongorepo.NewJobDataRepository(db, cfg.JobDataCollection)

	// Attachment storage is optional; the API runs without it.
	var attachmentRepo storage.AttachmentRepository
	if cfg.S3.Enabled() {
		s3Repo, err := storage.NewS3AttachmentRepository(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize attachment storage")
		}
		attachmentRepo = s3Repo
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Attachment storage enabled")
	} else {
		log.Warn().Msg("Attachment storage not configured; attachment endpoints disabled")
	}

	// Initialize services
	userService := service.NewUserService(userRepo)
	jobDataService := service.NewJobDataService(jobDataRepo, userRepo)
	attachmentService := service.NewAttachmentService(attachmentRepo, jobDataRepo)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userService)
	jobDataHandler := handler.NewJobDataHandler(jobDataService, attachmentService)
	attachmentHandler := handler.NewAttachmentHandler(jobDataService, attachmentService)

	// Rate limiting
	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	defer rateLimiter.Stop()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, rateLimiter, userHandler, jobDataHandler, attachmentHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
