// Package config loads the service configuration from environment variables.
// Every optional backend may be left empty, in which case main wires an
// in-memory adapter in its place.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	fsstrings "farmshop/pkg/platform/strings"
)

// Config is the complete service configuration.
type Config struct {
	Server    Server
	Database  Database
	Redis     RedisConfig
	Auth      Auth
	Mail      Mail
	Storage   Storage
	Kafka     Kafka
	Shop      Shop
	RateLimit RateLimit
	LogLevel  string
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Database configures the Postgres pool. An empty URL selects in-memory stores.
type Database struct {
	URL          string
	MaxOpenConns int
}

// RedisConfig configures the Redis client. An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Auth configures access token issuance.
type Auth struct {
	JWTSigningKey  string
	JWTIssuer      string
	AccessTokenTTL time.Duration
}

// Mail configures transactional e-mail. An empty APIKey selects the logging sender.
type Mail struct {
	ResendAPIKey string
	From         string
	AdminTo      []string
}

// Storage configures S3-compatible object storage. An empty Endpoint selects
// the in-memory store.
type Storage struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string
	UseSSL    bool
}

// Kafka configures the audit event sink. No brokers selects the in-memory sink.
type Kafka struct {
	Brokers []string
	Topic   string
}

// Shop holds storefront business settings.
type Shop struct {
	DeliveryCost    decimal.Decimal
	CartNamespace   string
	CheckoutSession time.Duration
}

// RateLimit configures the contact form limiter.
type RateLimit struct {
	Disabled     bool
	ContactLimit int
	Window       time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Server: Server{
			Addr:            getEnv("FARMSHOP_ADDR", ":8080"),
			ShutdownTimeout: 15 * time.Second,
		},
		Database: Database{
			URL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Auth: Auth{
			// Development default; override in production.
			JWTSigningKey: getEnv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:     getEnv("JWT_ISSUER", "farmshop"),
		},
		Mail: Mail{
			ResendAPIKey: os.Getenv("RESEND_API_KEY"),
			From:         getEnv("MAIL_FROM", "Farma <objednavky@farma.local>"),
			AdminTo:      fsstrings.SplitAddressList(getEnv("MAIL_ADMIN_TO", "admin@farma.local")),
		},
		Storage: Storage{
			Endpoint:  os.Getenv("STORAGE_ENDPOINT"),
			AccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
			SecretKey: os.Getenv("STORAGE_SECRET_KEY"),
			PublicURL: os.Getenv("STORAGE_PUBLIC_URL"),
			UseSSL:    os.Getenv("STORAGE_USE_SSL") == "true",
		},
		Kafka: Kafka{
			Brokers: fsstrings.SplitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("KAFKA_TOPIC", "farmshop.events"),
		},
		Shop: Shop{
			CartNamespace:   getEnv("CART_NAMESPACE", "farm-shop-cart"),
			CheckoutSession: 24 * time.Hour,
		},
		RateLimit: RateLimit{
			Disabled: os.Getenv("RATE_LIMIT_DISABLED") == "true",
			Window:   time.Hour,
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.Database.MaxOpenConns, err = getInt("DB_MAX_OPEN_CONNS", 20); err != nil {
		return nil, err
	}
	if cfg.Auth.AccessTokenTTL, err = getDuration("ACCESS_TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RateLimit.ContactLimit, err = getInt("CONTACT_RATE_LIMIT", 5); err != nil {
		return nil, err
	}

	cost := getEnv("DELIVERY_COST", "99")
	if cfg.Shop.DeliveryCost, err = decimal.NewFromString(cost); err != nil {
		return nil, fmt.Errorf("parse DELIVERY_COST %q: %w", cost, err)
	}
	if cfg.Shop.DeliveryCost.IsNegative() {
		return nil, fmt.Errorf("DELIVERY_COST must not be negative")
	}
	if cfg.Storage.PublicURL == "" && cfg.Storage.Endpoint != "" {
		scheme := "http://"
		if cfg.Storage.UseSSL {
			scheme = "https://"
		}
		cfg.Storage.PublicURL = scheme + cfg.Storage.Endpoint
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", key, raw, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", key, raw, err)
	}
	return d, nil
}
