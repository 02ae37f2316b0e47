package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// LoadEnv loads environment variables from .env file
func LoadEnv(logger *logrus.Logger) {
	files := []string{".env", ".env.dev"}
	loaded := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Overload(file); err != nil {
			if logger != nil {
				logger.WithError(err).Warnf("Failed to load %s", file)
			}
			continue
		}
		loaded = append(loaded, file)
	}
	if len(loaded) == 0 {
		if logger != nil {
			logger.Debug("No local env files loaded; relying on process environment")
		}
	} else {
		if logger != nil {
			logger.Debugf("Loaded env files: %s", strings.Join(loaded, ", "))
		}
	}
}

// GetEnv gets an environment variable with a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt gets an integer environment variable with a default value
func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetEnvFloat gets a float environment variable with a default value
func GetEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetEnvBool gets a boolean environment variable with a default value
func GetEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetLogLevel gets the log level from environment
func GetLogLevel() logrus.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// RequireEnv fetches a variable and exits the process if it is empty.
func RequireEnv(key string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		logrus.Fatalf("environment variable %s is required but not set", key)
	}
	return value
}

// LoadConfigFromEnv builds a config entirely from environment variables.
// Used by the Lambda entrypoints when SSM is not configured.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Engine: EngineConfig{
			MinAccountAgeDays:  GetEnvInt("MIN_ACCOUNT_AGE_DAYS", 90),
			BotRiskThreshold:   GetEnvFloat("BOT_RISK_THRESHOLD", 0.6),
			TopN:               GetEnvInt("SMART_TOP_N", 500),
			TopPct:             GetEnvFloat("SMART_TOP_PCT", 2.0),
			FallbackWindowDays: GetEnvInt("FALLBACK_WINDOW_DAYS", 30),
			FallbackMinScore:   GetEnvFloat("FALLBACK_MIN_SCORE", 100),
			FallbackPercentile: GetEnvFloat("FALLBACK_PERCENTILE", 80),
			PageRankDamping:    GetEnvFloat("PAGERANK_DAMPING", 0.85),
			PageRankIterations: GetEnvInt("PAGERANK_ITERATIONS", 30),
		},
		Stores: StoresConfig{
			PostgresURL:        os.Getenv("DATABASE_URL"),
			MaxOpenConns:       GetEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       GetEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeMin: GetEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			SnapshotTable:      os.Getenv("SNAPSHOT_TABLE"),
		},
		Jobs: JobsConfig{
			SmartRankFunction: GetEnv("SMARTRANK_FUNCTION", "creatorstats-smartrank"),
			SnapshotFunction:  GetEnv("SNAPSHOT_FUNCTION", "creatorstats-snapshot"),
		},
	}
	cfg.applyDefaults()
	return cfg
}
