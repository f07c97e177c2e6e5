package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName          string
	AppVersion       string
	Environment      string
	HTTPAddr         string
	AuthCookieSecure bool
	SessionTTL       time.Duration

	BillingAPIURL        string
	BillingAPITimeout    time.Duration
	ReconcileConcurrency int

	OTLPEndpoint string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimit RateLimitConfig

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
}

// RateLimitConfig throttles login attempts and serializes invoice payments.
// It needs Redis; without REDIS_ADDR both guards are off.
type RateLimitConfig struct {
	Enabled    bool
	LoginRate  float64
	LoginBurst int
	PayLockTTL time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")
	authCookieSecure := environment == "production"
	if !authCookieSecure {
		authCookieSecure = getenvBool("AUTH_COOKIE_SECURE", false)
	}

	return Config{
		AppName:              getenv("APP_SERVICE", "billdesk"),
		AppVersion:           getenv("APP_VERSION", "0.1.0"),
		Environment:          environment,
		HTTPAddr:             getenv("HTTP_ADDR", ":3000"),
		AuthCookieSecure:     authCookieSecure,
		SessionTTL:           getenvDuration("SESSION_TTL", 7*24*time.Hour),
		BillingAPIURL:        strings.TrimRight(strings.TrimSpace(getenv("BILLING_API_URL", "http://localhost:8080/kdevbill")), "/"),
		BillingAPITimeout:    getenvDuration("BILLING_API_TIMEOUT", 15*time.Second),
		ReconcileConcurrency: getenvInt("RECONCILE_CONCURRENCY", 0),
		OTLPEndpoint:         getenv("OTLP_ENDPOINT", "localhost:4317"),
		RedisAddr:            strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword:        getenv("REDIS_PASSWORD", ""),
		RedisDB:              getenvInt("REDIS_DB", 0),
		RateLimit: RateLimitConfig{
			Enabled:    getenvBool("RATE_LIMIT_ENABLED", true),
			LoginRate:  getenvFloat("RATE_LIMIT_LOGIN_RATE", 0.2),
			LoginBurst: getenvInt("RATE_LIMIT_LOGIN_BURST", 5),
			PayLockTTL: getenvDuration("RATE_LIMIT_PAY_LOCK_TTL", 30*time.Second),
		},
		DBType:               getenv("DATABASE_TYPE", "sqlite"),
		DBHost:               getenv("DATABASE_HOST", "localhost"),
		DBPort:               getenv("DATABASE_PORT", "5432"),
		DBName:               getenv("DATABASE_NAME", "billdesk"),
		DBUser:               getenv("DATABASE_USER", "postgres"),
		DBPassword:           getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:            getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:        getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:        getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime:    getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime:    getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),
	}
}

// IsProduction reports whether the service runs with production defaults.
func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
