package config

import (
	"os"
	"strings"
	"time"
)

// Config collects every environment-driven setting of the worker.
type Config struct {
	HTTPPort      string
	APIKey        string
	AllowedOrigin string
	LogLevel      string

	MongoURI    string
	MongoDBName string

	RedisAddr     string
	RedisPassword string

	AppURL       string
	AppAPISecret string
	WorkerURL    string

	ReminderDelay time.Duration
	CooldownTTL   time.Duration

	KafkaBrokers   []string
	PurchasesTopic string

	ShutdownTimeout time.Duration
}

func Load() *Config {
	return &Config{
		HTTPPort:      getEnv("HTTP_PORT", "8787"),
		APIKey:        os.Getenv("API_KEY"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName: getEnv("MONGO_DB_NAME", "remindersdb"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		AppURL:       getEnv("APP_URL", "http://localhost:3000"),
		AppAPISecret: os.Getenv("APP_API_SECRET"),
		WorkerURL:    getEnv("WORKER_URL", "http://localhost:8787"),

		ReminderDelay: getDurationEnv("CART_REMINDER_DELAY", 4*time.Hour),
		CooldownTTL:   getDurationEnv("CART_REMINDER_COOLDOWN", 6*time.Hour),

		KafkaBrokers:   strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		PurchasesTopic: getEnv("KAFKA_PURCHASES_TOPIC", "purchase-completed"),

		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
