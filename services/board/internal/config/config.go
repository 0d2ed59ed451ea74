package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	SourceHTTP       = "http"
	SourceClickHouse = "clickhouse"
)

type Config struct {
	HTTPAddr           string
	LogDevelopment     bool
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int

	PostingsSource     string
	PostingsAPIURL     string
	PostingsAPIToken   string
	PostingsAPITimeout time.Duration

	ClickHouseDSN          string
	ClickHouseMaxOpenConns int
	ClickHouseMaxIdleConns int
	ClickHouseConnMaxLife  time.Duration
	ClickHouseUsername     string
	ClickHousePassword     string
	ClickHouseDatabase     string

	NATSURL            string
	NATSConnTimeout    time.Duration
	NATSRefreshSubject string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SessionTTL         time.Duration
	SessionIdleTimeout time.Duration
	ReloadWorkers      int
	MaxBoards          int
	RefreshInterval    time.Duration

	OTELCollectorURL string
}

func LoadConfig() (*Config, error) {
	config := &Config{
		HTTPAddr:           getEnvString("HTTP_ADDR", ":8080"),
		LogDevelopment:     getEnvBool("LOG_DEVELOPMENT", false),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		RateLimitRPS:       getEnvFloat("RATE_LIMIT_RPS", 0),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 20),

		PostingsSource:     getEnvString("POSTINGS_SOURCE", SourceHTTP),
		PostingsAPIURL:     getEnvString("POSTINGS_API_URL", "http://localhost:9090"),
		PostingsAPIToken:   getEnvString("POSTINGS_API_TOKEN", ""),
		PostingsAPITimeout: getEnvDuration("POSTINGS_API_TIMEOUT", 0),

		ClickHouseDSN:          getEnvString("CLICKHOUSE_DSN", "localhost:9000"),
		ClickHouseMaxOpenConns: getEnvInt("CLICKHOUSE_MAX_OPEN_CONNS", 10),
		ClickHouseMaxIdleConns: getEnvInt("CLICKHOUSE_MAX_IDLE_CONNS", 5),
		ClickHouseConnMaxLife:  getEnvDuration("CLICKHOUSE_CONN_MAX_LIFE", time.Hour),
		ClickHouseUsername:     getEnvString("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword:     getEnvString("CLICKHOUSE_PASSWORD", ""),
		ClickHouseDatabase:     getEnvString("CLICKHOUSE_DATABASE", "shenanigigs"),

		NATSURL:            getEnvString("NATS_URL", "nats://localhost:4222"),
		NATSConnTimeout:    getEnvDuration("NATS_CONN_TIMEOUT", 10*time.Second),
		NATSRefreshSubject: getEnvString("NATS_REFRESH_SUBJECT", "postings.changed"),

		RedisAddr:     getEnvString("REDIS_ADDR", ""),
		RedisPassword: getEnvString("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		SessionTTL:         getEnvDuration("SESSION_TTL", 24*time.Hour),
		SessionIdleTimeout: getEnvDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		ReloadWorkers:      getEnvInt("RELOAD_WORKERS", 4),
		MaxBoards:          getEnvInt("MAX_BOARDS", 10000),
		RefreshInterval:    getEnvDuration("REFRESH_INTERVAL", 0),

		OTELCollectorURL: getEnvString("OTEL_COLLECTOR_URL", ""),
	}

	if config.PostingsSource != SourceHTTP && config.PostingsSource != SourceClickHouse {
		return nil, &InvalidValueError{Key: "POSTINGS_SOURCE", Value: config.PostingsSource}
	}
	if config.ReloadWorkers < 1 {
		config.ReloadWorkers = 1
	}

	return config, nil
}

type InvalidValueError struct {
	Key   string
	Value string
}

func (e *InvalidValueError) Error() string {
	return "invalid value " + strconv.Quote(e.Value) + " for " + e.Key
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
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

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
