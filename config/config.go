package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"swingTraderBot/internal/adapters/logger" // Import the logger package for LogLevel
)

// Config holds all application configuration.
type Config struct {
	// Broker API
	APIKey     string
	SecretKey  string
	IsTestnet  bool
	QuoteAsset string

	// Telegram notifications
	NotifyEnabled  bool
	TelegramToken  string
	TelegramChatID string

	// Trading Parameters
	TargetNotional float64 // Cash spent per new position (e.g., 10100)
	MaxPositions   int     // Global cap on concurrent open positions
	LossLimitPct   float64 // Daily loss limit in percent (e.g., -5.0)

	// Indicator / Decision Parameters
	ATRPeriod               int
	RSIPeriod               int
	StopLossCoef            float64
	TakeProfitCoef          float64
	RSIOverbought           float64
	RSIOversold             float64
	TakeProfitTriggerFactor float64

	// Cycle
	CycleInterval time.Duration // Time between sweeps (default 300s)
	BarInterval   string        // Bar resolution fetched from the broker (e.g., "5m")
	BarLookback   time.Duration // History window per evaluation (e.g., 24h)

	// Storage
	DBPath       string
	UniversePath string

	// Logging
	LogLevel logger.LogLevel // Use the LogLevel type from the logger adapter

	// Metrics
	MetricsAddr string // Empty disables the metrics endpoint

	// Connection Settings
	RequestTimeout time.Duration
}

// StorageConfig is the subset of configuration needed by read-only
// tooling that only touches the database, such as the report command.
type StorageConfig struct {
	DBPath   string
	LogLevel logger.LogLevel
}

// LoadStorageConfig loads only the storage and logging settings. Unlike
// LoadConfig it does not require broker credentials, so reporting works
// on a machine that never trades.
func LoadStorageConfig() (*StorageConfig, error) {
	_ = godotenv.Load()

	cfg := &StorageConfig{}
	cfg.DBPath = getEnv("DB_PATH", "./data/trader.db")
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("DB_PATH must not be empty")
	}
	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "info"))
	return cfg, nil
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Broker API
	cfg.APIKey = getEnv("BROKER_API_KEY", "")
	cfg.SecretKey = getEnv("BROKER_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", true) // Default to testnet for safety
	cfg.QuoteAsset = getEnv("QUOTE_ASSET", "USDT")

	if cfg.APIKey == "" {
		errs = append(errs, "BROKER_API_KEY must be set")
	}
	if cfg.SecretKey == "" {
		errs = append(errs, "BROKER_API_SECRET must be set")
	}

	// Telegram
	cfg.NotifyEnabled = getEnvAsBool("NOTIFY_ENABLED", false)
	cfg.TelegramToken = getEnv("TELEGRAM_TOKEN", "")
	cfg.TelegramChatID = getEnv("TELEGRAM_CHAT_ID", "")
	if cfg.NotifyEnabled && (cfg.TelegramToken == "" || cfg.TelegramChatID == "") {
		errs = append(errs, "TELEGRAM_TOKEN and TELEGRAM_CHAT_ID must be set when NOTIFY_ENABLED is true")
	}

	// Trading Parameters
	cfg.TargetNotional, err = getEnvAsFloatRequired("TARGET_NOTIONAL", 10100.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TARGET_NOTIONAL: %v", err))
	} else if cfg.TargetNotional <= 0 {
		errs = append(errs, "TARGET_NOTIONAL must be positive")
	}

	cfg.MaxPositions, err = getEnvAsIntRequired("MAX_POSITIONS", 10)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_POSITIONS: %v", err))
	} else if cfg.MaxPositions <= 0 {
		errs = append(errs, "MAX_POSITIONS must be positive")
	}

	cfg.LossLimitPct, err = getEnvAsFloatRequired("LOSS_LIMIT_PCT", -5.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid LOSS_LIMIT_PCT: %v", err))
	} else if cfg.LossLimitPct >= 0 {
		errs = append(errs, "LOSS_LIMIT_PCT must be negative")
	}

	// Indicator / Decision Parameters (using defaults if not set)
	cfg.ATRPeriod = getEnvAsInt("ATR_PERIOD", 14)
	cfg.RSIPeriod = getEnvAsInt("RSI_PERIOD", 14)
	cfg.StopLossCoef = getEnvAsFloat("STOP_LOSS_COEF", 2.0)
	cfg.TakeProfitCoef = getEnvAsFloat("TAKE_PROFIT_COEF", 3.0)
	cfg.RSIOverbought = getEnvAsFloat("RSI_OVERBOUGHT", 60.0)
	cfg.RSIOversold = getEnvAsFloat("RSI_OVERSOLD", 32.0)
	cfg.TakeProfitTriggerFactor = getEnvAsFloat("TAKE_PROFIT_TRIGGER_FACTOR", 1.005)

	if cfg.ATRPeriod <= 0 || cfg.RSIPeriod <= 0 {
		errs = append(errs, "indicator periods (ATR, RSI) must be positive")
	}
	if cfg.StopLossCoef <= 0 || cfg.TakeProfitCoef <= 0 {
		errs = append(errs, "risk coefficients must be positive")
	}
	if cfg.RSIOverbought <= cfg.RSIOversold || cfg.RSIOverbought > 100 || cfg.RSIOversold < 0 {
		errs = append(errs, "invalid RSI thresholds (Overbought must be > Oversold, between 0-100)")
	}
	if cfg.TakeProfitTriggerFactor <= 1.0 {
		errs = append(errs, "TAKE_PROFIT_TRIGGER_FACTOR must exceed 1.0")
	}

	// Cycle
	cycleSeconds := getEnvAsInt("CYCLE_INTERVAL_SECONDS", 300)
	if cycleSeconds <= 0 {
		errs = append(errs, "CYCLE_INTERVAL_SECONDS must be positive")
	}
	cfg.CycleInterval = time.Duration(cycleSeconds) * time.Second

	cfg.BarInterval = getEnv("BAR_INTERVAL", "5m")
	lookbackHours := getEnvAsInt("BAR_LOOKBACK_HOURS", 24)
	if lookbackHours <= 0 {
		errs = append(errs, "BAR_LOOKBACK_HOURS must be positive")
	}
	cfg.BarLookback = time.Duration(lookbackHours) * time.Hour

	// Storage
	cfg.DBPath = getEnv("DB_PATH", "./data/trader.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}
	cfg.UniversePath = getEnv("UNIVERSE_PATH", "./universe.yaml")
	if cfg.UniversePath == "" {
		errs = append(errs, "UNIVERSE_PATH must be set")
	}

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package

	// Metrics
	cfg.MetricsAddr = getEnv("METRICS_ADDR", ":9090")

	// Connection Settings
	timeoutSeconds := getEnvAsInt("REQUEST_TIMEOUT_SECONDS", 10)
	if timeoutSeconds <= 0 {
		errs = append(errs, "REQUEST_TIMEOUT_SECONDS must be positive")
	}
	cfg.RequestTimeout = time.Duration(timeoutSeconds) * time.Second

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
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

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
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

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
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
