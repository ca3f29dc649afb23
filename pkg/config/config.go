package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/wonny/happiness/internal/contracts"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Engine
	Engine EngineConfig

	// Reference dataset (empty = embedded default)
	ReferenceFile string

	// Redis (published dashboard cache)
	Redis RedisConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// EngineConfig holds the derived-metric policy knobs
type EngineConfig struct {
	WindowLength           int
	RefreshInterval        time.Duration
	SigmaMultiplier        float64
	WeightGood             float64
	WeightNeutral          float64
	WeightBad              float64
	SentimentDropPoints    float64
	CategoryRiskScore      int
	ManualRefreshPerMinute int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	Prefix   string
	TTL      time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	defaults := contracts.DefaultEngineParams()

	cfg := &Config{
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		Engine: EngineConfig{
			WindowLength:           getEnvAsInt("WINDOW_LENGTH", defaults.WindowLength),
			RefreshInterval:        getEnvAsDuration("REFRESH_INTERVAL", defaults.RefreshInterval.String()),
			SigmaMultiplier:        getEnvAsFloat("SIGMA_MULTIPLIER", defaults.SigmaMultiplier),
			WeightGood:             getEnvAsFloat("WEIGHT_GOOD", defaults.Weights.Good),
			WeightNeutral:          getEnvAsFloat("WEIGHT_NEUTRAL", defaults.Weights.Neutral),
			WeightBad:              getEnvAsFloat("WEIGHT_BAD", defaults.Weights.Bad),
			SentimentDropPoints:    getEnvAsFloat("SENTIMENT_DROP_POINTS", defaults.SentimentDropPoints),
			CategoryRiskScore:      getEnvAsInt("CATEGORY_RISK_SCORE", defaults.CategoryRiskScore),
			ManualRefreshPerMinute: getEnvAsInt("MANUAL_REFRESH_PER_MINUTE", 6),
		},

		ReferenceFile: getEnv("REFERENCE_FILE", ""),

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Prefix:   getEnv("REDIS_PREFIX", "happiness"),
			TTL:      getEnvAsDuration("REDIS_TTL", "5m"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// EngineParams projects the engine section into the value the core consumes.
// The core never reads the environment itself.
func (c *Config) EngineParams() contracts.EngineParams {
	return contracts.EngineParams{
		WindowLength:    c.Engine.WindowLength,
		RefreshInterval: c.Engine.RefreshInterval,
		SigmaMultiplier: c.Engine.SigmaMultiplier,
		Weights: contracts.ScoreWeights{
			Good:    c.Engine.WeightGood,
			Neutral: c.Engine.WeightNeutral,
			Bad:     c.Engine.WeightBad,
		},
		SentimentDropPoints: c.Engine.SentimentDropPoints,
		CategoryRiskScore:   c.Engine.CategoryRiskScore,
	}
}

// validate checks if configuration values are usable
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if err := c.EngineParams().Validate(); err != nil {
		return err
	}

	if c.Engine.ManualRefreshPerMinute <= 0 {
		return fmt.Errorf("MANUAL_REFRESH_PER_MINUTE must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
