package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/mindwell/wellness-api/internal/auth"
	"github.com/mindwell/wellness-api/internal/config"
	"github.com/mindwell/wellness-api/internal/database"
	"github.com/mindwell/wellness-api/internal/engine"
	"github.com/mindwell/wellness-api/internal/handlers"
	"github.com/mindwell/wellness-api/internal/logger"
	"github.com/mindwell/wellness-api/internal/middleware"
	"github.com/mindwell/wellness-api/internal/queue"
	"github.com/mindwell/wellness-api/internal/scheduler"
	"github.com/mindwell/wellness-api/internal/services/ai"
	"github.com/mindwell/wellness-api/internal/telemetry"
	"github.com/mindwell/wellness-api/internal/workers"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.Duration("analysis_interval", cfg.AnalysisInterval),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// OpenTelemetry tracing, if enabled
	var tracerProvider interface{ Shutdown(context.Context) error }
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), telemetry.DefaultServiceName, cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerProvider = tp
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	db, err := database.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()

	if err := db.Migrate(context.Background()); err != nil {
		zapLogger.Fatal("failed_to_run_migrations", zap.Error(err))
	}
	zapLogger.Info("connected_to_database")

	// Rate limiting degrades to no-op when Redis is unreachable so a cache
	// outage never takes the API down with it.
	var rateLimitMW func(http.Handler) http.Handler
	redisClient, err := middleware.NewRedisClient(cfg.RedisURL)
	if err != nil {
		zapLogger.Warn("redis_unavailable_rate_limiting_disabled", zap.Error(err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		rateLimitMW, err = middleware.RateLimit(redisClient, middleware.DefaultRateLimit)
		if err != nil {
			zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
		}
		zapLogger.Info("connected_to_redis")
	}

	// RabbitMQ is optional; without it analysis runs inline in the scheduler.
	var jobQueue queue.JobQueue
	if cfg.RabbitMQURL != "" {
		jobQueue, err = connectRabbitMQ(cfg.RabbitMQURL, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries", zap.Error(err))
		}
		defer func() {
			if err := jobQueue.Close(); err != nil {
				zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
			}
		}()
		zapLogger.Info("connected_to_rabbitmq")
	}

	trackingRepo := database.NewTrackingRepository(db)
	recRepo := database.NewRecommendationRepository(db)
	chatRepo := database.NewChatRepository(db)
	userRepo := database.NewUserRepository(db)

	eng := engine.New(engine.Thresholds{
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		MinEngagementTime:   cfg.MinEngagementSeconds,
		MinVisitCount:       1,
		MinScore:            cfg.MinScoreThreshold,
	})

	promptProvider := createPromptProvider(cfg, zapLogger, debugMode)

	verifier, err := auth.NewVerifier(cfg.JWTSecret)
	if err != nil {
		zapLogger.Fatal("jwt_secret_required", zap.Error(err))
	}

	analyzer := workers.NewUserAnalyzer(
		eng,
		trackingRepo,
		recRepo,
		chatRepo,
		promptProvider,
		jobQueue,
		cfg.FrontendURL,
		cfg.RecommendationTTL,
		zapLogger,
	)

	analysisService := scheduler.New(
		trackingRepo,
		analyzer,
		jobQueue,
		cfg.AnalysisInterval,
		cfg.AnalysisConcurrency,
		zapLogger,
	)
	analysisService.Start()
	defer analysisService.Stop()

	recommendationHandler := handlers.NewRecommendationHandler(recRepo, analysisService, zapLogger)
	trackingHandler := handlers.NewTrackingHandler(trackingRepo, chatRepo, eng, promptProvider, verifier, zapLogger)
	healthChecker := handlers.NewHealthChecker(db, jobQueue)

	r := mux.NewRouter()

	// Middleware executes in registration order, outermost first.
	if cfg.OTELEnabled && tracerProvider != nil {
		r.Use(otelmux.Middleware(telemetry.DefaultServiceName))
	}
	r.Use(middleware.SecurityHeaders(false))
	r.Use(middleware.CORSFromEnv(cfg.FrontendURL))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", versionInfo).Methods("GET")

	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	if rateLimitMW != nil {
		apiRouter.Use(rateLimitMW)
	}

	recommendationHandler.RegisterRoutes(apiRouter)
	trackingHandler.RegisterRoutes(apiRouter)

	// Diagnostic routes require a bearer token.
	diagRouter := apiRouter.NewRoute().Subrouter()
	diagRouter.Use(middleware.Auth(verifier, userRepo, zapLogger))
	trackingHandler.RegisterDiagnosticRoutes(diagRouter)

	// Catch-all for CORS preflight; the CORS middleware sets the headers.
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	analysisService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// connectRabbitMQ retries the broker connection with capped exponential
// backoff to ride out container startup ordering.
func connectRabbitMQ(amqpURL string, zapLogger *zap.Logger) (queue.JobQueue, error) {
	const maxRetries = 10
	const initialDelay = 2 * time.Second

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		jobQueue, err := queue.NewRabbitMQQueue(amqpURL)
		if err == nil {
			return jobQueue, nil
		}

		lastErr = err
		delay := initialDelay * time.Duration(1<<uint(attempt))
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Duration("retry_delay", delay),
			zap.Error(err),
		)
		time.Sleep(delay)
	}
	return nil, lastErr
}

// createPromptProvider selects the prompt provider. Without an API key the
// static provider serves canned prompts so analysis keeps working.
func createPromptProvider(cfg *config.Config, zapLogger *zap.Logger, debugMode bool) ai.PromptProvider {
	if cfg.AIProvider == "openai" {
		if cfg.OpenAIKey == "" {
			zapLogger.Warn("openai_key_not_configured_using_static_prompts")
			return ai.NewStaticProvider()
		}
		return ai.NewOpenAIProviderWithLogger(cfg.OpenAIKey, cfg.AIBaseURL, cfg.AIModel, zapLogger, debugMode)
	}

	registry := ai.NewProviderRegistry()
	ai.RegisterOpenAI(registry)
	ai.RegisterStatic(registry)

	provider, err := registry.GetProvider(cfg.AIProvider, map[string]string{
		"api_key": cfg.OpenAIKey,
		"model":   cfg.AIModel,
	})
	if err != nil {
		zapLogger.Warn("unknown_ai_provider_using_static_prompts",
			zap.String("provider", cfg.AIProvider),
			zap.Error(err),
		)
		return ai.NewStaticProvider()
	}
	return provider
}

func versionInfo(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprintf(w, `{"version":"1.0.0","timestamp":"%s"}`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		_ = err
	}
}
