package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fenilmodi00/legal-oracle-backend/config"
	"github.com/fenilmodi00/legal-oracle-backend/database"
	"github.com/fenilmodi00/legal-oracle-backend/handlers"
	"github.com/fenilmodi00/legal-oracle-backend/jobs"
	"github.com/fenilmodi00/legal-oracle-backend/middleware"
	"github.com/fenilmodi00/legal-oracle-backend/routes"
	"github.com/fenilmodi00/legal-oracle-backend/services"
	"github.com/fenilmodi00/legal-oracle-backend/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load config
	cfg := config.LoadConfig()
	cfg.ConfigureLogging()
	cfg.WarnInsecureDefaults()

	unified := shared.NewDefaultUnifiedConfiguration()
	unified.CourtListener.BaseURL = cfg.CourtListenerAPIRoot
	unified.Datasets.BaseURL = cfg.DatasetsServerURL
	unified.LLM.Model = cfg.GeminiModel
	unified.ValidateAndApplyDefaults()

	cacheConfig := config.DefaultCacheConfig()
	rateConfig := config.DefaultRateLimitConfig()
	unified.CourtListener.RequestRateLimit = rateConfig.PolitenessDelay

	// Connect to database when configured; without it accounts are disabled and guests are served from the session store
	var (
		profiles  services.ProfileRepository
		caseRepo  services.CaseRepository
		alertRepo services.AlertRepository
		logRepo   services.SearchLogRepository
		records   services.RecordRepository
		feedback  services.FeedbackRepository
	)
	if cfg.DatabaseURL != "" {
		if err := database.ConnectWithConfig(cfg.DatabaseURL, &unified.Database); err != nil {
			logrus.WithError(err).Fatal("Failed to connect to database")
		}
		defer database.Close()

		// Run migrations
		if err := database.Migrate("database/schema.sql"); err != nil {
			logrus.WithError(err).Warn("Migration warning")
		}
		if err := database.ValidateSchema(); err != nil {
			logrus.WithError(err).Warn("Schema validation warning")
		}

		profiles = services.NewPostgresProfileRepository(database.DB)
		caseRepo = services.NewPostgresCaseRepository(database.DB)
		alertRepo = services.NewPostgresAlertRepository(database.DB)
		logRepo = services.NewPostgresSearchLogRepository(database.DB)
		records = services.NewPostgresRecordRepository(database.DB)
		feedback = services.NewPostgresFeedbackRepository(database.DB)
	} else {
		logrus.Warn("DATABASE_URL is not set, running without persistence")
	}

	// Session store: Redis when reachable, process memory otherwise
	memorySessions := services.NewMemorySessionStoreWithTTL(cacheConfig.SessionTTL)
	var sessions services.SessionStore = memorySessions
	if cfg.RedisURL != "" {
		client, err := database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logrus.WithError(err).Warn("Redis unavailable, using in-memory sessions")
		} else {
			defer client.Close()
			sessions = services.NewRedisSessionStore(client, cacheConfig.SessionTTL)
			memorySessions = nil
		}
	}

	// Language model
	var generator services.TextGenerator
	if cfg.HasGeminiKey() {
		gemini, err := services.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, unified.LLM.Model)
		if err != nil {
			logrus.WithError(err).Warn("Gemini client unavailable, serving sample data")
		} else {
			defer gemini.Close()
			generator = gemini
		}
	} else {
		logrus.Warn("GEMINI_API_KEY is not set, serving sample data")
	}

	httpFactory := shared.NewHTTPClientFactory(unified.CourtListener.HTTPRequestTimeout)
	defer httpFactory.CleanupAllClients()

	// Services
	llmCache := services.NewCacheService("llm", cfg.GetCacheTTL(), cfg.GetLLMCacheSize())
	searchCache := services.NewCacheService("caselaw", cacheConfig.SearchTTL, cacheConfig.SearchMaxSize)
	datasetCache := services.NewCacheService("datasets", cacheConfig.DatasetTTL, cacheConfig.DatasetMaxSize)

	oracleService := services.NewOracleService(generator, llmCache, unified.LLM)
	authService := services.NewAuthService(profiles, sessions, cfg.JWTSecret)
	caseService := services.NewCaseService(oracleService, caseRepo, sessions)
	alertService := services.NewAlertService(oracleService, alertRepo, sessions)
	recordService := services.NewRecordService(records)
	caselawService := services.NewCaselawService(services.LoadCorpus(cfg.CaselawCorpusPath), searchCache, logRepo)
	courtListenerService := services.NewCourtListenerService(unified.CourtListener, cfg.CourtListenerToken, httpFactory)
	datasetService := services.NewDatasetService(unified.Datasets, datasetCache)
	feedbackService := services.NewFeedbackService(feedback)

	limiter := shared.NewKeyedRateLimiter(cfg.GetRateLimitPerMinute())

	logrus.WithFields(logrus.Fields{
		"llm_enabled":       oracleService.Enabled(),
		"llm_cache_ttl":     cfg.GetCacheTTL(),
		"search_cache_ttl":  cacheConfig.SearchTTL,
		"dataset_cache_ttl": cacheConfig.DatasetTTL,
		"rate_limit":        cfg.GetRateLimitPerMinute(),
		"skip_jwt_verify":   cfg.ShouldSkipJWTVerify(),
	}).Info("Legal oracle services initialized")

	// Jobs
	cleanupJob := jobs.NewCacheCleanupJob(limiter, llmCache, searchCache, datasetCache)
	if memorySessions != nil {
		cleanupJob.Sessions = memorySessions
	}
	expiryJob := jobs.NewAlertExpiryJob(alertService, 12*time.Hour)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	expiryJob.Start(ctx)

	go func() {
		cleanupTicker := time.NewTicker(10 * time.Minute)
		defer cleanupTicker.Stop()

		for {
			select {
			case <-cleanupTicker.C:
				cleanupJob.Run()
			case <-ctx.Done():
				return
			}
		}
	}()

	// Handlers
	hb := &handlers.HandlerBundle{
		Auth:          handlers.NewAuthHandler(authService),
		Oracle:        handlers.NewOracleHandler(oracleService, caseService, recordService),
		Cases:         handlers.NewCaseHandler(caseService),
		Alerts:        handlers.NewAlertHandler(alertService),
		Caselaw:       handlers.NewCaselawHandler(caselawService),
		CourtListener: handlers.NewCourtListenerHandler(courtListenerService),
		Datasets:      handlers.NewDatasetHandler(datasetService),
		Feedback:      handlers.NewFeedbackHandler(feedbackService),
		Admin:         handlers.NewAdminHandler(oracleService, caselawService, datasetService, courtListenerService, cleanupJob),
	}

	// Setup Fiber
	app := fiber.New(fiber.Config{
		Immutable:    true,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.RateLimit(limiter))

	// Routes
	routes.Register(app, hb, middleware.RequireAuth(authService, cfg.ShouldSkipJWTVerify()))

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		logrus.Info("Shutting down server")
		stop()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logrus.WithError(err).Error("Server shutdown failed")
		}
	}()

	// Start server
	logrus.Infof("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logrus.WithError(err).Fatal("Server failed to start")
	}

	caselawService.Wait()
}
