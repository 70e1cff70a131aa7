package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"salonbook/internal/cache"
	"salonbook/internal/database"
	"salonbook/internal/external"
	"salonbook/internal/messaging"
	"salonbook/internal/models"
	"salonbook/internal/search"

	"github.com/joho/godotenv"
)

// Notification delivery modes
const (
	NotifyDirect = "direct"
	NotifyQueue  = "queue"
)

// Booking stores
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config содержит конфигурацию приложения
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	// Public base URL used for booking links and QR image URLs
	BaseURL string
	LiffID  string

	// Shared secret for admin endpoints (X-Admin-Token)
	AdminToken string

	AdmissionRule models.AdmissionRule
	NotifyMode    string
	// Store selects postgres or the in-process memory store (demos, smoke tests)
	Store string

	ReminderInterval time.Duration

	Database      database.Config
	NATS          messaging.Config
	Redis         cache.Config
	Elasticsearch search.Config
	Line          external.LineConfig
	Storage       external.StorageConfig
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	return &Config{
		Port:           getEnv("PORT", "8081"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		BaseURL:    strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8081"), "/"),
		LiffID:     getEnv("LIFF_ID", ""),
		AdminToken: getEnv("ADMIN_TOKEN", ""),

		AdmissionRule: models.AdmissionRule(getEnv("ADMISSION_RULE", string(models.RuleOverlap))),
		NotifyMode:    getEnv("NOTIFY_MODE", NotifyDirect),
		Store:         getEnv("STORE", StorePostgres),

		ReminderInterval: time.Duration(getEnvInt("REMINDER_INTERVAL_MIN", 60)) * time.Minute,

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "salon"),
			Password:           getEnv("DB_PASSWORD", "salon123"),
			DBName:             getEnv("DB_NAME", "salonbook"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			Enabled:   getEnvBool("NATS_ENABLED", false),
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "salonbook"),
			ClientID:  getEnv("NATS_CLIENT_ID", "salonbook-api"),
		},

		Redis: cache.Config{
			Enabled:     getEnvBool("REDIS_ENABLED", false),
			Addr:        getEnv("REDIS_ADDR", "localhost:6379"),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvInt("REDIS_DB", 0),
			ServicesTTL: time.Duration(getEnvInt("REDIS_SERVICES_TTL_SEC", 300)) * time.Second,
		},

		Elasticsearch: search.Config{
			Enabled:    getEnvBool("ELASTICSEARCH_ENABLED", false),
			URL:        getEnv("ELASTICSEARCH_URL", "http://localhost:9200"),
			Index:      getEnv("ELASTICSEARCH_INDEX", "salon_services"),
			Username:   getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:   getEnv("ELASTICSEARCH_PASSWORD", ""),
			MaxRetries: getEnvInt("ELASTICSEARCH_MAX_RETRIES", 3),
			Timeout:    getEnvDuration("ELASTICSEARCH_TIMEOUT", 10*time.Second),
		},

		Line: external.LineConfig{
			APIBaseURL:    getEnv("LINE_API_URL", "https://api.line.me"),
			DataBaseURL:   getEnv("LINE_DATA_API_URL", "https://api-data.line.me"),
			ChannelSecret: getEnv("LINE_CHANNEL_SECRET", ""),
			AccessToken:   getEnv("LINE_CHANNEL_ACCESS_TOKEN", ""),
			Timeout:       time.Duration(getEnvInt("LINE_TIMEOUT_SEC", 10)) * time.Second,
		},

		Storage: external.StorageConfig{
			BaseURL:      getEnv("STORAGE_URL", ""),
			ServiceKey:   getEnv("STORAGE_SERVICE_KEY", ""),
			SlipBucket:   getEnv("STORAGE_SLIP_BUCKET", "payment-slips"),
			SignedURLTTL: time.Duration(getEnvInt("STORAGE_SIGNED_URL_DAYS", 30)) * 24 * time.Hour,
			Timeout:      time.Duration(getEnvInt("STORAGE_TIMEOUT_SEC", 30)) * time.Second,
		},
	}
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленное значение переменной окружения
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration parses Go duration syntax, e.g. "15s"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
