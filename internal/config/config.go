// Package config provides configuration structures and validation for the marketplace services.
// Both binaries (api_gateway and event_processor) share one Config shape; each section maps
// to a subsystem and is validated once at startup.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds the complete application configuration with settings for all components.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Outbox      OutboxConfig
	WorkerPool  WorkerPoolConfig
	Stripe      StripeConfig
	Checkout    CheckoutConfig
	Firebase    FirebaseConfig
	Geocoding   GeocodingConfig
	Email       EmailConfig
	Stats       StatsConfig
	Sales       SalesConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// KafkaConfig contains Kafka configuration
type KafkaConfig struct {
	Brokers           string
	EventsTopic       string // Marketplace domain events (sale.recorded, listing.paid)
	NumPartitions     int
	ReplicationFactor int
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64
	DLQTopic          string
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrationsPath  string
}

// MongoDBConfig contains MongoDB configuration for the sales and stats store
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
	GeocodeCacheTTL time.Duration // Expiry for cached geocoding results
}

// OutboxConfig contains outbox pattern configuration
type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int
}

// StripeConfig contains payment gateway settings.
// An empty SecretKey is allowed at startup; payment calls then fail with a configuration error.
type StripeConfig struct {
	SecretKey string
	BaseURL   string // Overrides the gateway API endpoint, empty means the public API
	Timeout   time.Duration
}

// CheckoutConfig contains the hosted checkout settings for the listing publication fee
type CheckoutConfig struct {
	ListingFee  decimal.Decimal
	Currency    string
	ProductName string
	SuccessURL  string
	CancelURL   string
}

// FirebaseConfig contains identity provider settings
type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
}

// GeocodingConfig contains the geocoding provider and fallback location
type GeocodingConfig struct {
	BaseURL          string
	Timeout          time.Duration
	UserAgent        string
	CountryCodes     string
	DefaultLatitude  float64
	DefaultLongitude float64
	DefaultName      string
}

// EmailConfig contains transactional email provider settings
type EmailConfig struct {
	BaseURL     string
	APIKey      string
	FromAddress string
	FromName    string
	Timeout     time.Duration
}

// StatsConfig controls the seller aggregate update retries
type StatsConfig struct {
	MaxRetryAttempts int
	RetryBackoff     time.Duration
}

// SalesConfig contains sale recording defaults
type SalesConfig struct {
	HomeCurrency string
	HistoryLimit int
}

// validate checks every section and reports all problems at once
func (c *Config) validate() error {
	var validationErrors []string

	// Server
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Kafka
	if len(c.Kafka.Brokers) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.EventsTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_EVENTS_TOPIC is required")
	}
	if c.Kafka.ConsumerGroup == "" {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_GROUP is required")
	}
	if c.Kafka.MinBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MIN_BYTES must be greater than 0")
	}
	if c.Kafka.MaxBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_BYTES must be greater than 0")
	}
	if c.Kafka.MaxWait <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
	}

	// PostgreSQL
	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// MongoDB
	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MinPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MIN_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MaxConnIdleTime <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Outbox
	if c.Outbox.PollingInterval <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_POLLING_INTERVAL must be greater than 0")
	}
	if c.Outbox.BatchSize <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_BATCH_SIZE must be greater than 0")
	}
	if c.Outbox.MaxRetryAttempts <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_MAX_RETRY_ATTEMPTS must be greater than 0")
	}

	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	// Payments
	if c.Stripe.Timeout <= 0 {
		validationErrors = append(validationErrors, "STRIPE_TIMEOUT must be greater than 0")
	}
	if !c.Checkout.ListingFee.IsPositive() {
		validationErrors = append(validationErrors, "CHECKOUT_LISTING_FEE must be greater than 0")
	}
	if len(c.Checkout.Currency) != 3 {
		validationErrors = append(validationErrors, "CHECKOUT_CURRENCY must be a 3-letter code")
	}
	if c.Checkout.SuccessURL == "" {
		validationErrors = append(validationErrors, "CHECKOUT_SUCCESS_URL is required")
	}
	if c.Checkout.CancelURL == "" {
		validationErrors = append(validationErrors, "CHECKOUT_CANCEL_URL is required")
	}

	// Geocoding
	if c.Geocoding.BaseURL == "" {
		validationErrors = append(validationErrors, "GEOCODING_BASE_URL is required")
	}
	if c.Geocoding.Timeout <= 0 {
		validationErrors = append(validationErrors, "GEOCODING_TIMEOUT must be greater than 0")
	}

	// Email
	if c.Email.BaseURL == "" {
		validationErrors = append(validationErrors, "EMAIL_BASE_URL is required")
	}
	if c.Email.FromAddress == "" {
		validationErrors = append(validationErrors, "EMAIL_FROM_ADDRESS is required")
	}
	if c.Email.Timeout <= 0 {
		validationErrors = append(validationErrors, "EMAIL_TIMEOUT must be greater than 0")
	}

	// Stats and sales
	if c.Stats.MaxRetryAttempts <= 0 {
		validationErrors = append(validationErrors, "STATS_MAX_RETRY_ATTEMPTS must be greater than 0")
	}
	if c.Stats.RetryBackoff < 0 {
		validationErrors = append(validationErrors, "STATS_RETRY_BACKOFF must not be negative")
	}
	if len(c.Sales.HomeCurrency) != 3 {
		validationErrors = append(validationErrors, "SALES_HOME_CURRENCY must be a 3-letter code")
	}
	if c.Sales.HistoryLimit <= 0 {
		validationErrors = append(validationErrors, "SALES_HISTORY_LIMIT must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
