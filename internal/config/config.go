package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	DatabaseURL string
	ServerPort  string
	BaseURL     string
	FrontendURL string

	AIProvider string
	OpenAIKey  string
	AIModel    string
	AIBaseURL  string

	JWTSecret string

	RedisURL         string
	RabbitMQURL      string
	RabbitMQPrefetch int

	// Recommendation engine settings.
	AnalysisInterval     time.Duration
	AnalysisConcurrency  int
	RecommendationTTL    time.Duration
	ConfidenceThreshold  float64
	MinEngagementSeconds float64
	MinScoreThreshold    float64

	ServerDebugMode bool
	WorkerDebugMode bool
	OTELEnabled     bool
	OTELEndpoint    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		AIProvider: getEnv("AI_PROVIDER", "openai"),
		OpenAIKey:  getEnv("OPENAI_API_KEY", ""),
		AIModel:    getEnv("AI_MODEL", ""),
		AIBaseURL:  getEnv("AI_BASE_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),

		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch: getEnvInt("RABBITMQ_PREFETCH", 1),

		AnalysisInterval:     getEnvDuration("ANALYSIS_INTERVAL", 5*time.Minute),
		AnalysisConcurrency:  getEnvInt("ANALYSIS_CONCURRENCY", 4),
		RecommendationTTL:    getEnvDuration("RECOMMENDATION_TTL", 24*time.Hour),
		ConfidenceThreshold:  getEnvFloat("CONFIDENCE_THRESHOLD", 0.3),
		MinEngagementSeconds: getEnvFloat("MIN_ENGAGEMENT_SECONDS", 30),
		MinScoreThreshold:    getEnvFloat("MIN_SCORE_THRESHOLD", 10.0),

		ServerDebugMode: getEnvBool("SERVER_DEBUG_MODE", false),
		WorkerDebugMode: getEnvBool("WORKER_DEBUG_MODE", false),
		OTELEnabled:     getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.AnalysisInterval <= 0 {
		return nil, fmt.Errorf("ANALYSIS_INTERVAL must be positive")
	}

	if cfg.AnalysisConcurrency < 1 {
		cfg.AnalysisConcurrency = 1
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
