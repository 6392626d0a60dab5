package router

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/api/v1/handler"
	"app/internal/config"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

func New(cfg *config.Config, logger zerolog.Logger) (http.Handler, *pgxpool.Pool, error) {
	logger.Info().Msg("Router initialized")
	logger.Info().Str("environment", cfg.Environment).Msg("App environment loaded")

	// 1. Open DB connection (connection pooling)
	dsn := cfg.DatabaseURL
	// In a development environment, we want to ensure that SSL is disabled for
	// local testing. In production, the connection string should be provided
	// with the correct SSL settings.
	if cfg.Environment == "development" && !strings.Contains(dsn, "sslmode") {
		separator := "?"
		if strings.Contains(dsn, "?") {
			separator = "&"
		}
		dsn += separator + "sslmode=disable"
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		logger.Fatal().Msgf("Failed to open DB connection: %v", err)
		return nil, nil, err
	}
	if err := pool.Ping(context.Background()); err != nil {
		logger.Fatal().Msgf("Failed to ping DB: %v", err)
		return nil, nil, err
	}
	logger.Info().Msg("Database connection successful")

	// 2. Initialize validator
	validate := validator.New(validator.WithRequiredStructEnabled())

	// 3. Initialize the question generator client. Without an API key every
	// generation call lands on the deterministic fallback banks.
	timeout := time.Duration(cfg.GeneratorTimeoutSec) * time.Second
	var chat service.ChatClient
	if cfg.MockAI || cfg.OpenAIAPIKey == "" {
		logger.Warn().Msg("Question generator disabled, serving fallback questions")
		chat = service.NewDisabledChatClient()
	} else {
		chat = service.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, timeout)
	}

	// 4. Optional Redis-backed rate limiter.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn().Err(err).Msg("Redis unreachable, disabling rate limiter")
			rdb = nil
		}
	}

	// 5. Initialize repositories & services & handlers
	userRepo := repository.NewUserRepo(pool)
	sessionRepo := repository.NewSessionRepo(pool)
	messageRepo := repository.NewMessageRepo(pool)

	quotaSvc := service.NewQuotaService(userRepo, logger)
	userSvc := service.NewUserService(userRepo)
	sessionSvc := service.NewSessionService(sessionRepo, messageRepo, userRepo, quotaSvc, logger)
	evaluatorSvc := service.NewEvaluatorService(chat, timeout, logger)
	interviewSvc := service.NewInterviewService(sessionRepo, messageRepo, userRepo, evaluatorSvc, chat, timeout, logger)
	summarySvc := service.NewSummaryService(sessionRepo, messageRepo, chat, timeout, logger)
	profileSvc := service.NewProfileService(chat, timeout, logger)
	billingSvc := service.NewBillingService(cfg, userRepo, logger)

	userHandler := handler.NewUserHandler(userSvc, validate, logger)
	sessionHandler := handler.NewSessionHandler(sessionSvc, validate, logger)
	interviewHandler := handler.NewInterviewHandler(interviewSvc, validate, logger)
	summaryHandler := handler.NewSummaryHandler(summarySvc, validate, logger)
	profileHandler := handler.NewProfileHandler(profileSvc, validate, logger)
	billingHandler := handler.NewBillingHandler(billingSvc, logger)

	// 6. Initialize middleware
	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret)
	rateLimit := middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute, logger)

	// 7. Create ServeMux router
	mux := http.NewServeMux()

	apiV1Mux := http.NewServeMux()
	userHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	sessionHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	interviewHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	summaryHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	profileHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	billingHandler.RegisterRoutes(apiV1Mux, authMiddleware)

	// Mount the API v1 routes under /v1
	mux.Handle("/v1/", http.StripPrefix("/v1", rateLimit(apiV1Mux)))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// 8. Apply CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		Debug:            false,
	})

	return middleware.LoggerMiddleware(c.Handler(mux)), pool, nil
}
